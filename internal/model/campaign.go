package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType is the kind of benefit a campaign grants
type DiscountType string

const (
	DiscountValue      DiscountType = "VALUE"
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountGift       DiscountType = "BRINDE"
)

// Valid reports whether t is one of the known discount types
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountValue, DiscountPercentage, DiscountGift:
		return true
	}
	return false
}

// CampaignStatusActive is the status every campaign is created with
const CampaignStatusActive = "ativo"

// Campaign is a coupon template ("cupom") issued by a store.
// Value is set for VALUE and PERCENTAGE, Description only for BRINDE.
type Campaign struct {
	ID           string              `json:"id" gorm:"primaryKey;type:uuid"`
	StoreID      string              `json:"lojaId" gorm:"type:uuid;index;not null"`
	Code         string              `json:"codigo" gorm:"type:varchar(16);uniqueIndex:idx_campaigns_code;not null"`
	Type         DiscountType        `json:"tipo" gorm:"type:varchar(16);not null"`
	Value        decimal.NullDecimal `json:"valor" gorm:"type:numeric(12,2)"`
	Description  *string             `json:"descricao" gorm:"type:text"`
	Quantity     int                 `json:"quantidade" gorm:"not null"`
	ValidityDays int                 `json:"validadeDias" gorm:"not null"`
	ExpiresAt    time.Time           `json:"dataExpiracao" gorm:"not null"`
	Visible      bool                `json:"visivel" gorm:"not null"`
	Status       string              `json:"status" gorm:"type:varchar(20);not null;default:'ativo'"`
	CreatedAt    time.Time           `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time           `json:"updatedAt"`

	Store *Store `json:"loja,omitempty" gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a uuid when the caller did not
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CampaignTerms is the read-only projection of a campaign attached to its individual coupons
type CampaignTerms struct {
	Type         DiscountType        `json:"tipo"`
	Value        decimal.NullDecimal `json:"valor"`
	Description  *string             `json:"descricao"`
	ValidityDays int                 `json:"validadeDias"`
}

// Terms returns the projection of c
func (c *Campaign) Terms() CampaignTerms {
	return CampaignTerms{
		Type:         c.Type,
		Value:        c.Value,
		Description:  c.Description,
		ValidityDays: c.ValidityDays,
	}
}

// PublicCampaign is the subset of a campaign shown on a store's public page
type PublicCampaign struct {
	ID           string              `json:"id"`
	Type         DiscountType        `json:"tipo"`
	Value        decimal.NullDecimal `json:"valor"`
	Description  *string             `json:"descricao"`
	Quantity     int                 `json:"quantidade"`
	ValidityDays int                 `json:"validadeDias"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// Public returns the public projection of c
func (c *Campaign) Public() PublicCampaign {
	return PublicCampaign{
		ID:           c.ID,
		Type:         c.Type,
		Value:        c.Value,
		Description:  c.Description,
		Quantity:     c.Quantity,
		ValidityDays: c.ValidityDays,
		CreatedAt:    c.CreatedAt,
	}
}
