package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"coupon-service/internal/events"
	"coupon-service/internal/handler"
	"coupon-service/internal/middleware"
	"coupon-service/internal/repository"
	"coupon-service/internal/service"
	"coupon-service/pkg/config"
	"coupon-service/pkg/database"
	"coupon-service/pkg/jwtutil"
	"coupon-service/pkg/logger"
	"coupon-service/pkg/metrics"
)

func main() {
	// Load configuration (.env is optional)
	conf, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting coupon-service", conf.LogFields()...)

	// Initialize database connection and schema
	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db, conf.DB.MigrationsPath); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	publisher := events.New(conf.Kafka.Brokers, conf.Kafka.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()
	if len(conf.Kafka.Brokers) == 0 {
		log.Info("No Kafka brokers configured, domain events are disabled")
	}

	svc, err := service.New(repository.New(db), service.WithPublisher(publisher))
	if err != nil {
		log.Fatal("Failed to initialize service", zap.Error(err))
	}

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: conf.JWT.SigningKey,
		Issuer:     conf.JWT.Issuer,
	})

	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	handler.RegisterRoutes(e, handler.Handlers{
		Campaigns:         handler.NewCampaignHandler(svc),
		IndividualCoupons: handler.NewIndividualCouponHandler(svc),
		Stores:            handler.NewStoreHandler(svc),
		Health:            handler.NewHealthHandler(svc),
	}, jwt)

	go func() {
		log.Info("Listening", zap.String("port", conf.Server.Port))
		if err := e.Start(":" + conf.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down", zap.Duration("timeout", conf.Server.ShutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
