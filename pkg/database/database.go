package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"coupon-service/internal/model"
	"coupon-service/pkg/config"
	"coupon-service/pkg/logger"
)

// InitDB opens the Postgres connection and applies the pool settings
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	log := logger.GetLogger()

	pgConfig := postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: gormlogger.Default.LogMode(dbConfig.GormLogLevel()),
	})
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get database object", zap.Error(err))
		return nil, err
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	log.Info("Database connected successfully",
		zap.String("host", dbConfig.Host),
		zap.String("name", dbConfig.Name))

	return db, nil
}

// Models lists the persisted types in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.Store{},
		&model.Campaign{},
		&model.IndividualCoupon{},
	}
}

// MigrateModels creates or updates the schema from the gorm models
func MigrateModels(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// Migrate applies the SQL migrations in migrationsPath, or falls back to
// AutoMigrate when no path is configured.
func Migrate(db *gorm.DB, migrationsPath string) error {
	if migrationsPath == "" {
		return MigrateModels(db)
	}
	return RunMigrations(db, migrationsPath)
}
