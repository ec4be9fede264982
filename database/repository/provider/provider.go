package providerRepo

import (
	"context"
	"errors"

	"helper/models"
)

var ErrNotFound = errors.New("provider not found")

// Repository gives access to registered providers. Candidate queries only
// ever return active providers.
type Repository interface {
	Create(ctx context.Context, p *models.Provider) error
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	GetByEmail(ctx context.Context, email string) (*models.Provider, error)

	// ActiveWithinRadius returns active providers whose location lies within
	// radiusKm of center, optionally filtered by service category.
	ActiveWithinRadius(ctx context.Context, center models.GeoPoint, radiusKm float64, categoryID string) ([]models.Provider, error)

	// ActiveTopN returns up to n active providers with no geo filtering.
	ActiveTopN(ctx context.Context, n int, categoryID string) ([]models.Provider, error)

	UpdateFCMToken(ctx context.Context, id, token string) error
	IncrementCompleted(ctx context.Context, id string) error
}
