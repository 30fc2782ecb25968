package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the read model for a seller account, owned by the identity
// service. Only the fields needed to resolve payment links are mapped.
type User struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UniqueName string    `gorm:"column:unique_name;not null;uniqueIndex"`
	Email      string    `gorm:"column:email;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
