package port

import (
	"context"

	"campaign-shop/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// GetListingView returns a cached listing view, or (nil, nil) on a miss.
	GetListingView(ctx context.Context, listingID string) (*domain.ListingView, error)

	// SetListingView caches a listing view.
	SetListingView(ctx context.Context, view *domain.ListingView) error

	// InvalidateListing drops a listing view from the cache after a trade
	// changes its stock.
	InvalidateListing(ctx context.Context, listingID string) error
}
