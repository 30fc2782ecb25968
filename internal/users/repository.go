package users

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/paylinkhq/paylink-backend/internal/repo"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
)

// Repository resolves seller accounts. The identity service owns writes;
// this surface is read-only.
type Repository interface {
	FindByUniqueName(ctx context.Context, uniqueName string) (*models.User, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a user repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindByUniqueName(ctx context.Context, uniqueName string) (*models.User, error) {
	uniqueName = strings.TrimSpace(uniqueName)
	if uniqueName == "" {
		return nil, nil
	}
	var user models.User
	if err := r.DB(ctx).
		Where("unique_name = ?", uniqueName).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
