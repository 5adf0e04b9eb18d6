package service

import (
	"context"
	"time"

	"coupon-service/internal/model"
)

// StoreRepository persists stores
type StoreRepository interface {
	FindStoreByUser(ctx context.Context, userID string) (*model.Store, error)
	FindStoreByID(ctx context.Context, id string) (*model.Store, error)
	UpsertStore(ctx context.Context, store *model.Store) error
	DeleteStoreByUser(ctx context.Context, userID string) (bool, error)
}

// CampaignRepository persists campaigns
type CampaignRepository interface {
	ListCampaignsByUser(ctx context.Context, userID string) ([]model.Campaign, error)
	ListVisibleCampaigns(ctx context.Context, storeID string) ([]model.Campaign, error)
	CampaignCodeExists(ctx context.Context, code string) (bool, error)
	CreateCampaign(ctx context.Context, campaign *model.Campaign) error
	// FindOwnedCampaign returns the campaign only when its store belongs to
	// userID. With forUpdate the row stays locked until the transaction ends.
	FindOwnedCampaign(ctx context.Context, id, userID string, forUpdate bool) (*model.Campaign, error)
	UpdateCampaign(ctx context.Context, campaign *model.Campaign, columns []string) error
	DeleteCampaign(ctx context.Context, id string) error
}

// Identifier names one of the customer identifiers an individual coupon can carry
type Identifier int

const (
	IdentifierPhone Identifier = iota
	IdentifierCPF
	IdentifierEmail
)

func (i Identifier) String() string {
	switch i {
	case IdentifierPhone:
		return "telefone"
	case IdentifierCPF:
		return "cpf"
	case IdentifierEmail:
		return "email"
	}
	return "unknown"
}

// Assignment is the write applied when an individual coupon is bound to a customer.
// Nil identifiers are stored as NULL.
type Assignment struct {
	Phone      *string
	CPF        *string
	Email      *string
	AssignedAt time.Time
}

// IndividualCouponRepository persists individual coupons
type IndividualCouponRepository interface {
	FindIndividualCoupon(ctx context.Context, id string) (*model.IndividualCoupon, error)
	ListIndividualCoupons(ctx context.Context, campaignID string) ([]model.IndividualCoupon, error)
	CountIndividualCoupons(ctx context.Context, campaignID string) (int64, error)
	// ExistingIndividualCodes returns the subset of codes already in use
	ExistingIndividualCodes(ctx context.Context, codes []string) ([]string, error)
	CreateIndividualCoupons(ctx context.Context, coupons []model.IndividualCoupon) error
	// IdentifierAssigned reports whether an assigned coupon of the campaign already carries value
	IdentifierAssigned(ctx context.Context, campaignID string, field Identifier, value string) (bool, error)
	// MarkAssigned applies a only while the coupon is still unassigned and
	// reports whether the row was updated.
	MarkAssigned(ctx context.Context, id string, a Assignment) (bool, error)
}

// Repository is the storage port of the service
type Repository interface {
	StoreRepository
	CampaignRepository
	IndividualCouponRepository

	// WithTx runs fn inside one transaction; fn's error rolls it back
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	Ping(ctx context.Context) error
}
