package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coupon-service/internal/events"
	"coupon-service/internal/model"
	"coupon-service/pkg/logger"
	"coupon-service/prometheus"
)

// CreateCampaignInput carries the fields of a new campaign. Nil pointers are absent fields.
type CreateCampaignInput struct {
	DiscountType  string
	DiscountValue *DiscountValue
	Quantity      *int
	ValidityDays  *int
	IsVisible     *bool
}

// UpdateCampaignInput carries a partial campaign update. Only non-nil fields change.
type UpdateCampaignInput struct {
	ID            string
	DiscountType  *string
	DiscountValue *DiscountValue
	Quantity      *int
	ValidityDays  *int
	IsVisible     *bool
}

// PublicStore is the store summary shown next to its public campaigns
type PublicStore struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// PublicCampaigns is a store's public coupon page
type PublicCampaigns struct {
	Store     PublicStore            `json:"loja"`
	Campaigns []model.PublicCampaign `json:"cupons"`
}

// ownedCampaign is the one authorization predicate for campaign access:
// the campaign exists and its store belongs to p. Anything else is reported
// as NotFound with msg, so callers cannot probe for foreign campaigns.
func ownedCampaign(ctx context.Context, repo Repository, p Principal, id string, forUpdate bool, msg string) (*model.Campaign, error) {
	campaign, err := repo.FindOwnedCampaign(ctx, id, p.UserID, forUpdate)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound(msg)
	}
	if err != nil {
		return nil, internal("find campaign", err)
	}
	return campaign, nil
}

// MaxCampaignQuantity caps the individual coupons a campaign can provision
const MaxCampaignQuantity = 10000

var errQuantityTooLarge = validationError(fmt.Sprintf("Quantity must not exceed %d", MaxCampaignQuantity))

func expiration(now time.Time, validityDays int) time.Time {
	return now.AddDate(0, 0, validityDays)
}

// ListCampaigns returns the campaigns of targetUserID's store, newest first,
// each with its store. An empty targetUserID lists the caller's own.
func (s *Service) ListCampaigns(ctx context.Context, p Principal, targetUserID string) ([]model.Campaign, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if targetUserID == "" {
		targetUserID = p.UserID
	}

	campaigns, err := s.repo.ListCampaignsByUser(ctx, targetUserID)
	if err != nil {
		return nil, internal("list campaigns", err)
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}
	return campaigns, nil
}

// CreateCampaign validates in and creates a campaign for the caller's store
// under a freshly allocated code.
func (s *Service) CreateCampaign(ctx context.Context, p Principal, in CreateCampaignInput) (campaign *model.Campaign, err error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	defer func() { prometheus.ObserveCampaignOperation("create", err) }()

	if in.DiscountType == "" || in.DiscountValue == nil || in.Quantity == nil || in.ValidityDays == nil {
		return nil, validationError("Missing required fields")
	}

	discountType := model.DiscountType(in.DiscountType)
	if !discountType.Valid() {
		return nil, validationError("Invalid discount type")
	}

	value, description, err := resolveDiscount(discountType, *in.DiscountValue)
	if err != nil {
		return nil, err
	}

	if *in.Quantity <= 0 || *in.ValidityDays <= 0 {
		return nil, validationError("Quantity and validity days must be greater than 0")
	}
	if *in.Quantity > MaxCampaignQuantity {
		return nil, errQuantityTooLarge
	}

	store, err := s.repo.FindStoreByUser(ctx, p.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, &Error{Kind: KindPrecondition, Message: "User must have a registered store to create coupons"}
	}
	if err != nil {
		return nil, internal("find store", err)
	}

	visible := true
	if in.IsVisible != nil {
		visible = *in.IsVisible
	}

	now := s.now()
	campaign = &model.Campaign{
		StoreID:      store.ID,
		Type:         discountType,
		Value:        value,
		Description:  description,
		Quantity:     *in.Quantity,
		ValidityDays: *in.ValidityDays,
		ExpiresAt:    expiration(now, *in.ValidityDays),
		Visible:      visible,
		Status:       model.CampaignStatusActive,
	}

	err = allocateCode(ctx, s.newCode, func(code string) error {
		exists, err := s.repo.CampaignCodeExists(ctx, code)
		if err != nil {
			return internal("check campaign code", err)
		}
		if exists {
			return errCodeTaken
		}

		campaign.ID = ""
		campaign.Code = code
		err = s.repo.CreateCampaign(ctx, campaign)
		if _, dup := model.IsDuplicate(err); dup {
			// lost a race for the same code
			return errCodeTaken
		}
		if err != nil {
			return internal("create campaign", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Campaign created",
		zap.String("id", campaign.ID),
		zap.String("code", campaign.Code),
		zap.String("store_id", campaign.StoreID))

	s.publish(ctx, events.Event{
		Type:       events.CampaignCreated,
		CampaignID: campaign.ID,
		StoreID:    campaign.StoreID,
		Code:       campaign.Code,
	})

	return campaign, nil
}

// UpdateCampaign applies in to a campaign owned by the caller. Provided fields
// are validated with the creation rules. A new validityDays moves the
// expiration to now plus the new number of days.
func (s *Service) UpdateCampaign(ctx context.Context, p Principal, in UpdateCampaignInput) (campaign *model.Campaign, err error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, validationError("Coupon ID is required")
	}
	defer func() { prometheus.ObserveCampaignOperation("update", err) }()

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		c, err := ownedCampaign(ctx, tx, p, in.ID, true, "Coupon not found")
		if err != nil {
			return err
		}

		columns, err := s.applyUpdate(c, in)
		if err != nil {
			return err
		}
		if len(columns) == 0 {
			campaign = c
			return nil
		}

		if err := tx.UpdateCampaign(ctx, c, columns); err != nil {
			return internal("update campaign", err)
		}
		campaign = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Campaign updated", zap.String("id", campaign.ID))
	return campaign, nil
}

// applyUpdate mutates c and returns the changed columns
func (s *Service) applyUpdate(c *model.Campaign, in UpdateCampaignInput) ([]string, error) {
	var columns []string

	discountType := c.Type
	if in.DiscountType != nil {
		discountType = model.DiscountType(*in.DiscountType)
		if !discountType.Valid() {
			return nil, validationError("Invalid discount type")
		}
		if discountType != c.Type && in.DiscountValue == nil {
			return nil, validationError("Discount value is required when changing the discount type")
		}
	}

	if in.DiscountValue != nil {
		value, description, err := resolveDiscount(discountType, *in.DiscountValue)
		if err != nil {
			return nil, err
		}
		c.Type, c.Value, c.Description = discountType, value, description
		columns = append(columns, "type", "value", "description")
	}

	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, validationError("Quantity must be greater than 0")
		}
		if *in.Quantity > MaxCampaignQuantity {
			return nil, errQuantityTooLarge
		}
		c.Quantity = *in.Quantity
		columns = append(columns, "quantity")
	}

	if in.ValidityDays != nil {
		if *in.ValidityDays <= 0 {
			return nil, validationError("Validity days must be greater than 0")
		}
		c.ValidityDays = *in.ValidityDays
		c.ExpiresAt = expiration(s.now(), *in.ValidityDays)
		columns = append(columns, "validity_days", "expires_at")
	}

	if in.IsVisible != nil {
		c.Visible = *in.IsVisible
		columns = append(columns, "visible")
	}

	return columns, nil
}

// DeleteCampaign hard-deletes a campaign owned by the caller together with its individual coupons
func (s *Service) DeleteCampaign(ctx context.Context, p Principal, id string) (err error) {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if id == "" {
		return validationError("Coupon ID is required")
	}
	defer func() { prometheus.ObserveCampaignOperation("delete", err) }()

	campaign, err := ownedCampaign(ctx, s.repo, p, id, false, "Coupon not found")
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCampaign(ctx, campaign.ID); err != nil {
		return internal("delete campaign", err)
	}

	logger.FromContext(ctx).Info("Campaign deleted", zap.String("id", campaign.ID))
	s.publish(ctx, events.Event{
		Type:       events.CampaignDeleted,
		CampaignID: campaign.ID,
		StoreID:    campaign.StoreID,
		Code:       campaign.Code,
	})
	return nil
}

// ListPublicCampaigns returns the visible campaigns of a store, newest first.
// No principal is needed.
func (s *Service) ListPublicCampaigns(ctx context.Context, storeID string) (*PublicCampaigns, error) {
	if storeID == "" {
		return nil, validationError("ID da loja é obrigatório")
	}

	store, err := s.repo.FindStoreByID(ctx, storeID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, notFound("Loja não encontrada")
	}
	if err != nil {
		return nil, internal("find store", err)
	}

	campaigns, err := s.repo.ListVisibleCampaigns(ctx, store.ID)
	if err != nil {
		return nil, internal("list visible campaigns", err)
	}

	page := &PublicCampaigns{
		Store:     PublicStore{ID: store.ID, Name: store.CompanyName},
		Campaigns: make([]model.PublicCampaign, 0, len(campaigns)),
	}
	for i := range campaigns {
		page.Campaigns = append(page.Campaigns, campaigns[i].Public())
	}
	return page, nil
}
