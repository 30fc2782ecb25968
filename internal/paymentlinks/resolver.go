package paymentlinks

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/paylinkhq/paylink-backend/internal/products"
	"github.com/paylinkhq/paylink-backend/internal/users"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
)

// One generic message for both the seller and the product lookup so the
// public boundary does not leak which half failed.
const invalidLinkMessage = "invalid payment link"

// ResolvedLink is a payment link verified against the seller catalog.
type ResolvedLink struct {
	Seller  *models.User
	Product *models.Product
}

// ServiceParams groups dependencies for the resolver.
type ServiceParams struct {
	UserRepo    users.Repository
	ProductRepo products.Repository
}

// Resolver turns public payment links into verified product references.
type Resolver struct {
	users    users.Repository
	products products.Repository
	now      func() time.Time
}

// NewResolver builds a payment link resolver.
func NewResolver(params ServiceParams) (*Resolver, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repo required")
	}
	return &Resolver{
		users:    params.UserRepo,
		products: params.ProductRepo,
		now:      time.Now,
	}, nil
}

// Resolve parses the link, resolves the seller by unique name and the
// product by slug. It does not check eligibility; see ValidateEligibility.
func (r *Resolver) Resolve(ctx context.Context, link string) (*ResolvedLink, error) {
	uniqueName, slug, err := SplitLink(link)
	if err != nil {
		return nil, err
	}

	seller, err := r.users.FindByUniqueName(ctx, uniqueName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve seller")
	}
	if seller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, invalidLinkMessage)
	}

	product, err := r.products.FindBySellerAndSlug(ctx, seller.ID, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, invalidLinkMessage)
	}

	return &ResolvedLink{Seller: seller, Product: product}, nil
}

// ValidateEligibility checks whether the product can accept a new payment.
// Expiration is checked first, then cancellation, then active state.
func (r *Resolver) ValidateEligibility(product *models.Product) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, invalidLinkMessage)
	}
	if product.ExpiresAt != nil && !product.ExpiresAt.After(r.now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment link has expired")
	}
	if product.Status == enums.ProductStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
	}
	if product.Status != enums.ProductStatusActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is not accepting payments")
	}
	return nil
}

// SplitLink extracts the {sellerUniqueName}/{slug} pair from a payment link
// URL. Exactly two non-empty path segments are required.
func SplitLink(link string) (uniqueName, slug string, err error) {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, invalidLinkMessage)
	}

	parsed, parseErr := url.Parse(trimmed)
	if parseErr != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, invalidLinkMessage)
	}

	path := parsed.Path
	if path == "" {
		// Bare "acme/widget" parses as an opaque or relative URL.
		path = parsed.Opaque
	}

	segments := []string{}
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) != 2 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, invalidLinkMessage)
	}
	return segments[0], segments[1], nil
}
