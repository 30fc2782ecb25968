package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base holds the GORM connection shared by the domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a GORM connection for embedding in a repository.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
