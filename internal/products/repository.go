package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paylinkhq/paylink-backend/internal/repo"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
)

// Repository resolves seller listings. Catalog management owns writes; this
// surface is read-only.
type Repository interface {
	FindBySellerAndSlug(ctx context.Context, sellerID uuid.UUID, slug string) (*models.Product, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindBySellerAndSlug(ctx context.Context, sellerID uuid.UUID, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if sellerID == uuid.Nil || slug == "" {
		return nil, nil
	}
	var product models.Product
	if err := r.DB(ctx).
		Where("user_id = ? AND slug = ?", sellerID, slug).
		First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}
