package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// Product is the read model for a seller listing. Catalog management is
// owned elsewhere; this service only reads it to price payment links.
type Product struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Slug      string              `gorm:"column:slug;not null"`
	Name      string              `gorm:"column:name;not null"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Currency  enums.Currency      `gorm:"column:currency;not null;default:'usd'"`
	Status    enums.ProductStatus `gorm:"column:status;not null;default:'draft'"`
	ExpiresAt *time.Time          `gorm:"column:expires_at"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
