package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"coupon-service/internal/events"
	"coupon-service/internal/model"
	"coupon-service/internal/validation"
	"coupon-service/pkg/logger"
	"coupon-service/prometheus"
)

// AssignInput identifies the customer an individual coupon is assigned to.
// At least one identifier must be present.
type AssignInput struct {
	ID    string
	Phone *string
	CPF   *string
	Email *string
}

const (
	msgCampaignNotFound   = "Cupom não encontrado"
	msgIndividualNotFound = "Cupom individual não encontrado"
	msgAlreadyAssigned    = "Este cupom já foi atribuído e não pode ser modificado"
	msgIdentifierTaken    = "Telefone, CPF ou e-mail já estão associados a outro cupom deste tipo"
)

func withTerms(coupons []model.IndividualCoupon, terms func(*model.IndividualCoupon) model.CampaignTerms) []model.IndividualCouponWithTerms {
	out := make([]model.IndividualCouponWithTerms, 0, len(coupons))
	for i := range coupons {
		out = append(out, model.IndividualCouponWithTerms{
			IndividualCoupon: coupons[i],
			Campaign:         terms(&coupons[i]),
		})
	}
	return out
}

// ListIndividualCoupons returns the individual coupons of a campaign owned by
// the caller, oldest first, each with the campaign terms.
func (s *Service) ListIndividualCoupons(ctx context.Context, p Principal, campaignID string) ([]model.IndividualCouponWithTerms, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if campaignID == "" {
		return nil, validationError("cupomId é obrigatório")
	}

	campaign, err := ownedCampaign(ctx, s.repo, p, campaignID, false, msgCampaignNotFound)
	if err != nil {
		return nil, err
	}

	coupons, err := s.repo.ListIndividualCoupons(ctx, campaign.ID)
	if err != nil {
		return nil, internal("list individual coupons", err)
	}

	return withTerms(coupons, func(ic *model.IndividualCoupon) model.CampaignTerms {
		if ic.Campaign != nil {
			return ic.Campaign.Terms()
		}
		return campaign.Terms()
	}), nil
}

// ProvisionIndividualCoupons tops the campaign's pool up to its quantity with
// available coupons under fresh unique codes and returns the created ones.
func (s *Service) ProvisionIndividualCoupons(ctx context.Context, p Principal, campaignID string) ([]model.IndividualCouponWithTerms, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if campaignID == "" {
		return nil, validationError("cupomId é obrigatório")
	}

	var (
		campaign *model.Campaign
		created  []model.IndividualCoupon
	)
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		var err error
		campaign, err = ownedCampaign(ctx, tx, p, campaignID, true, msgCampaignNotFound)
		if err != nil {
			return err
		}

		existing, err := tx.CountIndividualCoupons(ctx, campaign.ID)
		if err != nil {
			return internal("count individual coupons", err)
		}
		missing := int64(campaign.Quantity) - existing
		if missing <= 0 {
			return nil
		}
		// rows written before the quantity cap existed are topped up in chunks
		if missing > MaxCampaignQuantity {
			missing = MaxCampaignQuantity
		}

		codes, err := s.allocateCodes(ctx, tx, int(missing))
		if err != nil {
			return err
		}

		created = make([]model.IndividualCoupon, 0, len(codes))
		for _, code := range codes {
			created = append(created, model.IndividualCoupon{
				CampaignID: campaign.ID,
				Code:       code,
				Status:     model.IndividualStatusAvailable,
			})
		}

		err = tx.CreateIndividualCoupons(ctx, created)
		if _, dup := model.IsDuplicate(err); dup {
			return conflict("Códigos de cupom em conflito, tente novamente")
		}
		if err != nil {
			return internal("create individual coupons", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.IndividualCouponsProvisionedCounter.Add(float64(len(created)))
	logger.FromContext(ctx).Info("Individual coupons provisioned",
		zap.String("campaign_id", campaign.ID),
		zap.Int("count", len(created)))

	terms := campaign.Terms()
	return withTerms(created, func(*model.IndividualCoupon) model.CampaignTerms { return terms }), nil
}

// allocateCodes draws n distinct codes unused by any individual coupon. Each
// round regenerates only the codes that collided; after MaxCodeAttempts
// rounds the allocation fails with ResourceExhausted.
func (s *Service) allocateCodes(ctx context.Context, repo Repository, n int) ([]string, error) {
	chosen := make(map[string]struct{}, n)
	codes := make([]string, 0, n)

	for round := 0; round < MaxCodeAttempts && len(codes) < n; round++ {
		need := n - len(codes)
		candidates := make([]string, 0, need)
		for i := 0; i < need; i++ {
			code := s.newCode()
			if _, dup := chosen[code]; dup {
				prometheus.CodeCollisionsCounter.Inc()
				continue
			}
			chosen[code] = struct{}{}
			candidates = append(candidates, code)
		}
		if len(candidates) == 0 {
			continue
		}

		taken, err := repo.ExistingIndividualCodes(ctx, candidates)
		if err != nil {
			return nil, internal("check individual codes", err)
		}
		used := make(map[string]struct{}, len(taken))
		for _, code := range taken {
			used[code] = struct{}{}
		}
		prometheus.CodeCollisionsCounter.Add(float64(len(taken)))

		for _, code := range candidates {
			if _, ok := used[code]; !ok {
				codes = append(codes, code)
			}
		}
	}

	if len(codes) < n {
		return nil, &Error{Kind: KindExhausted, Message: "Unable to generate unique coupon code"}
	}
	return codes, nil
}

// normalizeIdentifiers trims the identifiers and drops blank ones. The CPF is
// reduced to its digits and the e-mail lowercased so equal identifiers compare equal.
func normalizeIdentifiers(in AssignInput) (Assignment, error) {
	var a Assignment
	clean := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		if s == "" {
			return nil
		}
		return &s
	}

	a.Phone = clean(in.Phone)
	a.CPF = clean(in.CPF)
	a.Email = clean(in.Email)

	if a.Phone == nil && a.CPF == nil && a.Email == nil {
		return a, validationError("Pelo menos um dos campos deve ser fornecido: telefone, cpf ou email")
	}

	if a.CPF != nil {
		if !validation.CPFFormat(*a.CPF) {
			return a, validationError("CPF inválido")
		}
		digits := validation.Digits(*a.CPF)
		a.CPF = &digits
	}

	if a.Email != nil {
		if !validation.Email(*a.Email) {
			return a, validationError("E-mail inválido")
		}
		lower := strings.ToLower(*a.Email)
		a.Email = &lower
	}

	return a, nil
}

// AssignIndividualCoupon binds an available individual coupon of a campaign
// owned by the caller to a customer. Assignment happens once: an assigned
// coupon, or an identifier already assigned within the same campaign, is a Conflict.
func (s *Service) AssignIndividualCoupon(ctx context.Context, p Principal, in AssignInput) (coupon *model.IndividualCoupon, err error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, validationError("ID do cupom individual é obrigatório")
	}

	assignment, err := normalizeIdentifiers(in)
	if err != nil {
		return nil, err
	}

	defer func() {
		switch {
		case err == nil:
			prometheus.AssignmentsCounter.WithLabelValues(prometheus.ResultSuccess).Inc()
		case errors.Is(err, ErrConflict):
			prometheus.AssignmentsCounter.WithLabelValues("conflict").Inc()
			prometheus.AssignmentConflictsCounter.Inc()
		default:
			prometheus.AssignmentsCounter.WithLabelValues(prometheus.ResultFailure).Inc()
		}
	}()

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		ic, err := tx.FindIndividualCoupon(ctx, in.ID)
		if errors.Is(err, model.ErrNotFound) {
			return notFound(msgIndividualNotFound)
		}
		if err != nil {
			return internal("find individual coupon", err)
		}

		// locks the campaign so assignments within it are serialized
		if _, err := ownedCampaign(ctx, tx, p, ic.CampaignID, true, msgIndividualNotFound); err != nil {
			return err
		}

		if ic.Assigned() {
			return conflict(msgAlreadyAssigned)
		}

		for _, id := range []struct {
			field Identifier
			value *string
		}{
			{IdentifierPhone, assignment.Phone},
			{IdentifierCPF, assignment.CPF},
			{IdentifierEmail, assignment.Email},
		} {
			if id.value == nil {
				continue
			}
			taken, err := tx.IdentifierAssigned(ctx, ic.CampaignID, id.field, *id.value)
			if err != nil {
				return internal("check identifier", err)
			}
			if taken {
				return conflict(msgIdentifierTaken)
			}
		}

		assignment.AssignedAt = s.now()
		updated, err := tx.MarkAssigned(ctx, ic.ID, assignment)
		if _, dup := model.IsDuplicate(err); dup {
			return conflict(msgIdentifierTaken)
		}
		if err != nil {
			return internal("assign individual coupon", err)
		}
		if !updated {
			return conflict(msgAlreadyAssigned)
		}

		ic.Phone, ic.CPF, ic.Email = assignment.Phone, assignment.CPF, assignment.Email
		ic.AssignedAt = &assignment.AssignedAt
		ic.Status = model.IndividualStatusAssigned
		coupon = ic
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Individual coupon assigned",
		zap.String("id", coupon.ID),
		zap.String("campaign_id", coupon.CampaignID))

	s.publish(ctx, events.Event{
		Type:               events.IndividualCouponAssigned,
		CampaignID:         coupon.CampaignID,
		IndividualCouponID: coupon.ID,
		Code:               coupon.Code,
	})
	return coupon, nil
}
