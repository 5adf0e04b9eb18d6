package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"coupon-service/internal/events"
	"coupon-service/pkg/logger"
)

// Service implements the store, campaign and individual coupon operations.
// Every protected operation takes the caller's Principal explicitly.
type Service struct {
	repo    Repository
	newCode CodeGenerator
	now     func() time.Time
	events  events.Publisher
}

type Option func(*Service)

// WithCodeGenerator replaces the random code source
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(s *Service) { s.newCode = gen }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher sets the domain event publisher; events are dropped by default
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func New(repo Repository, opts ...Option) (*Service, error) {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		events: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newCode == nil {
		gen, err := NewCodeGenerator()
		if err != nil {
			return nil, err
		}
		s.newCode = gen
	}

	return s, nil
}

// Ping checks the storage connection
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// publish sends event after the write committed. A failed publish is logged
// and never fails the operation.
func (s *Service) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event",
			zap.String("type", event.Type),
			zap.String("campaign_id", event.CampaignID),
			zap.Error(err))
	}
}
