package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Individual coupon statuses. Only the issuer moves a coupon from available
// to assigned; used and expired are set by redemption and expiry elsewhere.
const (
	IndividualStatusAvailable = "disponivel"
	IndividualStatusAssigned  = "atribuido"
	IndividualStatusUsed      = "usado"
	IndividualStatusExpired   = "expirado"
)

// IndividualCoupon is one coded instance of a campaign's allotment.
// The partial unique indexes keep an identifier from being assigned twice
// within the same campaign.
type IndividualCoupon struct {
	ID         string     `json:"id" gorm:"primaryKey;type:uuid"`
	CampaignID string     `json:"cupomId" gorm:"type:uuid;index;not null;uniqueIndex:idx_ic_campaign_phone,priority:1,where:assigned_at IS NOT NULL;uniqueIndex:idx_ic_campaign_cpf,priority:1,where:assigned_at IS NOT NULL;uniqueIndex:idx_ic_campaign_email,priority:1,where:assigned_at IS NOT NULL"`
	Code       string     `json:"codigo" gorm:"type:varchar(16);uniqueIndex:idx_individual_coupons_code;not null"`
	Status     string     `json:"status" gorm:"type:varchar(20);not null;default:'disponivel'"`
	Phone      *string    `json:"telefone" gorm:"type:varchar(30);uniqueIndex:idx_ic_campaign_phone,priority:2,where:assigned_at IS NOT NULL"`
	CPF        *string    `json:"cpf" gorm:"column:cpf;type:varchar(14);uniqueIndex:idx_ic_campaign_cpf,priority:2,where:assigned_at IS NOT NULL"`
	Email      *string    `json:"email" gorm:"type:varchar(254);uniqueIndex:idx_ic_campaign_email,priority:2,where:assigned_at IS NOT NULL"`
	AssignedAt *time.Time `json:"dataAtribuicao"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Campaign *Campaign `json:"-" gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a uuid when the caller did not
func (ic *IndividualCoupon) BeforeCreate(tx *gorm.DB) error {
	if ic.ID == "" {
		ic.ID = uuid.NewString()
	}
	return nil
}

// Assigned reports whether the coupon has already been bound to a customer
func (ic *IndividualCoupon) Assigned() bool {
	return ic.AssignedAt != nil
}

// IndividualCouponWithTerms is an individual coupon joined with its campaign terms
type IndividualCouponWithTerms struct {
	IndividualCoupon
	Campaign CampaignTerms `json:"cupom"`
}
