package service

import (
	"context"
	"errors"
	"testing"
)

func validStore() StoreInput {
	return StoreInput{
		CNPJ:             " 11.222.333/0001-81 ",
		City:             " Recife ",
		State:            "PE",
		ResponsibleName:  "João Souza",
		ResponsiblePhone: "81988887777",
		CompanyName:      "Café do Porto",
		Photo:            strPtr("  "),
	}
}

func TestRegisterStoreValidation(t *testing.T) {
	f := newFixture(t)

	missing := validStore()
	missing.City = ""
	missing.CompanyName = "   "

	badMask := validStore()
	badMask.CNPJ = "11222333000181"

	badChecksum := validStore()
	badChecksum.CNPJ = "11.222.333/0001-82"

	sameDigits := validStore()
	sameDigits.CNPJ = "11.111.111/1111-11"

	tests := []struct {
		name    string
		in      StoreInput
		message string
	}{
		{"missing fields", missing, "Campos obrigatórios não preenchidos: cidade, nomeEmpresa"},
		{"unmasked cnpj", badMask, "CNPJ deve estar no formato XX.XXX.XXX/XXXX-XX"},
		{"bad check digit", badChecksum, "CNPJ inválido"},
		{"repeated digits", sameDigits, "CNPJ inválido"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RegisterStore(context.Background(), owner, tt.in)
			if !errors.Is(err, ErrValidation) || MessageOf(err) != tt.message {
				t.Errorf("err = %v, want %q", err, tt.message)
			}
		})
	}
}

func TestRegisterStoreUpserts(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.RegisterStore(context.Background(), owner, validStore())
	if err != nil {
		t.Fatalf("RegisterStore: %v", err)
	}
	if first.CNPJ != "11.222.333/0001-81" || first.City != "Recife" || first.Photo != nil {
		t.Errorf("values not trimmed: %+v", first)
	}

	changed := validStore()
	changed.City = "Olinda"
	changed.Photo = strPtr("https://cdn.example.com/logo.png")
	second, err := f.svc.RegisterStore(context.Background(), owner, changed)
	if err != nil {
		t.Fatalf("second RegisterStore: %v", err)
	}
	if second.ID != first.ID || second.City != "Olinda" || second.Photo == nil {
		t.Errorf("upsert = %+v", second)
	}
	if len(f.repo.stores) != 1 {
		t.Errorf("stores = %d, want 1", len(f.repo.stores))
	}
}

func TestRegisterStoreDuplicateCNPJ(t *testing.T) {
	f := newFixture(t)
	f.registerStore(t, owner, ownerCNPJ)

	_, err := f.svc.RegisterStore(context.Background(), stranger, validStore())
	if !errors.Is(err, ErrConflict) || MessageOf(err) != "CNPJ já cadastrado por outra loja" {
		t.Errorf("err = %v", err)
	}
}

func TestGetAndDeleteStore(t *testing.T) {
	f := newFixture(t, WithCodeGenerator(counter()))

	store, err := f.svc.GetStore(context.Background(), owner)
	if err != nil || store != nil {
		t.Fatalf("GetStore before registration = %+v, %v", store, err)
	}
	if err := f.svc.DeleteStore(context.Background(), owner); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete without store err = %v", err)
	}

	registered := f.registerStore(t, owner, ownerCNPJ)
	f.provisioned(t, owner, 2)

	store, err = f.svc.GetStore(context.Background(), owner)
	if err != nil || store == nil || store.ID != registered.ID {
		t.Fatalf("GetStore = %+v, %v", store, err)
	}

	if err := f.svc.DeleteStore(context.Background(), owner); err != nil {
		t.Fatalf("DeleteStore: %v", err)
	}
	if len(f.repo.stores)+len(f.repo.campaigns)+len(f.repo.coupons) != 0 {
		t.Errorf("delete left %d stores, %d campaigns, %d coupons",
			len(f.repo.stores), len(f.repo.campaigns), len(f.repo.coupons))
	}

	if _, err := f.svc.GetStore(context.Background(), Principal{}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("anonymous GetStore err = %v", err)
	}
}
