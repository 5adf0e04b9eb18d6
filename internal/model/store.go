package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the merchant ("loja") owned by exactly one principal
type Store struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID           string    `json:"userId" gorm:"type:varchar(191);uniqueIndex:idx_stores_user_id;not null"`
	CNPJ             string    `json:"cnpj" gorm:"column:cnpj;type:varchar(18);uniqueIndex:idx_stores_cnpj;not null"`
	City             string    `json:"cidade" gorm:"type:varchar(120);not null"`
	State            string    `json:"estado" gorm:"type:varchar(60);not null"`
	ResponsibleName  string    `json:"nomeResponsavel" gorm:"type:varchar(150);not null"`
	ResponsiblePhone string    `json:"telefoneResponsavel" gorm:"type:varchar(30);not null"`
	CompanyName      string    `json:"nomeEmpresa" gorm:"type:varchar(150);not null"`
	Photo            *string   `json:"foto" gorm:"type:text"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a uuid when the caller did not
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
