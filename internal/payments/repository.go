package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/paylinkhq/paylink-backend/internal/repo"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
)

// Repository handles payment intent persistence.
type Repository interface {
	Create(ctx context.Context, intent *models.PaymentIntent) error
	Update(ctx context.Context, intent *models.PaymentIntent) error
	FindByGatewayIntentID(ctx context.Context, gatewayIntentID string) (*models.PaymentIntent, error)
	FindByClientSecret(ctx context.Context, clientSecret string) (*models.PaymentIntent, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a payment intent repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, intent *models.PaymentIntent) error {
	return r.DB(ctx).Create(intent).Error
}

func (r *repository) Update(ctx context.Context, intent *models.PaymentIntent) error {
	return r.DB(ctx).Save(intent).Error
}

func (r *repository) FindByGatewayIntentID(ctx context.Context, gatewayIntentID string) (*models.PaymentIntent, error) {
	if gatewayIntentID == "" {
		return nil, nil
	}
	var intent models.PaymentIntent
	if err := r.DB(ctx).
		Where("gateway_intent_id = ?", gatewayIntentID).
		First(&intent).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &intent, nil
}

// FindByClientSecret picks the newest matching row. The column is not
// unique at the storage layer, so ordering keeps the lookup deterministic.
func (r *repository) FindByClientSecret(ctx context.Context, clientSecret string) (*models.PaymentIntent, error) {
	if clientSecret == "" {
		return nil, nil
	}
	var intent models.PaymentIntent
	if err := r.DB(ctx).
		Where("client_secret = ?", clientSecret).
		Order("created_at DESC").
		First(&intent).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &intent, nil
}
