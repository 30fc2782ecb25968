package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// PaymentIntent is the local ledger record for one attempted payment against
// the gateway. The gateway remains the source of truth for status; this row
// converges on it through webhooks and on-demand sync.
type PaymentIntent struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Slug           string    `gorm:"column:slug;not null"`
	UserUniqueName string    `gorm:"column:user_unique_name;not null"`

	GatewayIntentID string `gorm:"column:gateway_intent_id;not null;uniqueIndex"`
	// ClientSecret is indexed but not unique; lookups order by created_at
	// and take the newest row.
	ClientSecret string `gorm:"column:client_secret;not null;index"`

	Amount   int64          `gorm:"column:amount;not null"`
	Currency enums.Currency `gorm:"column:currency;not null"`

	PaymentMethodTypes pq.StringArray     `gorm:"column:payment_method_types;type:text[]"`
	Status             enums.IntentStatus `gorm:"column:status;not null;default:'initiated'"`

	CustomerName  *string `gorm:"column:customer_name"`
	CustomerEmail *string `gorm:"column:customer_email"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
