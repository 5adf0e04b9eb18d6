package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"coupon-service/internal/model"
	"coupon-service/internal/validation"
	"coupon-service/pkg/logger"
)

// StoreInput is the registration form of a store. Photo is optional.
type StoreInput struct {
	CNPJ             string
	City             string
	State            string
	ResponsibleName  string
	ResponsiblePhone string
	CompanyName      string
	Photo            *string
}

func (in StoreInput) trimmed() StoreInput {
	out := StoreInput{
		CNPJ:             strings.TrimSpace(in.CNPJ),
		City:             strings.TrimSpace(in.City),
		State:            strings.TrimSpace(in.State),
		ResponsibleName:  strings.TrimSpace(in.ResponsibleName),
		ResponsiblePhone: strings.TrimSpace(in.ResponsiblePhone),
		CompanyName:      strings.TrimSpace(in.CompanyName),
	}
	if in.Photo != nil {
		if photo := strings.TrimSpace(*in.Photo); photo != "" {
			out.Photo = &photo
		}
	}
	return out
}

func (in StoreInput) missing() []string {
	var fields []string
	for _, f := range []struct{ name, value string }{
		{"cnpj", in.CNPJ},
		{"cidade", in.City},
		{"estado", in.State},
		{"nomeResponsavel", in.ResponsibleName},
		{"telefoneResponsavel", in.ResponsiblePhone},
		{"nomeEmpresa", in.CompanyName},
	} {
		if f.value == "" {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// RegisterStore creates the caller's store or replaces its data
func (s *Service) RegisterStore(ctx context.Context, p Principal, in StoreInput) (*model.Store, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	in = in.trimmed()
	if missing := in.missing(); len(missing) > 0 {
		return nil, validationError("Campos obrigatórios não preenchidos: " + strings.Join(missing, ", "))
	}

	if !validation.CNPJMasked(in.CNPJ) {
		return nil, validationError("CNPJ deve estar no formato XX.XXX.XXX/XXXX-XX")
	}
	if !validation.CNPJ(in.CNPJ) {
		return nil, validationError("CNPJ inválido")
	}

	store := &model.Store{
		UserID:           p.UserID,
		CNPJ:             in.CNPJ,
		City:             in.City,
		State:            in.State,
		ResponsibleName:  in.ResponsibleName,
		ResponsiblePhone: in.ResponsiblePhone,
		CompanyName:      in.CompanyName,
		Photo:            in.Photo,
	}

	err := s.repo.UpsertStore(ctx, store)
	if constraint, dup := model.IsDuplicate(err); dup {
		if strings.Contains(constraint, "cnpj") {
			return nil, conflict("CNPJ já cadastrado por outra loja")
		}
		return nil, conflict("Já existe uma loja cadastrada para este usuário")
	}
	if err != nil {
		return nil, internal("upsert store", err)
	}

	logger.FromContext(ctx).Info("Store saved",
		zap.String("id", store.ID),
		zap.String("user_id", store.UserID))
	return store, nil
}

// GetStore returns the caller's store, or nil when none is registered
func (s *Service) GetStore(ctx context.Context, p Principal) (*model.Store, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	store, err := s.repo.FindStoreByUser(ctx, p.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal("find store", err)
	}
	return store, nil
}

// DeleteStore removes the caller's store; its campaigns and their
// individual coupons go with it.
func (s *Service) DeleteStore(ctx context.Context, p Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteStoreByUser(ctx, p.UserID)
	if err != nil {
		return internal("delete store", err)
	}
	if !deleted {
		return notFound("Loja não encontrada")
	}

	logger.FromContext(ctx).Info("Store deleted", zap.String("user_id", p.UserID))
	return nil
}
