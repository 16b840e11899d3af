package ports

import (
	"context"

	"collection-route-service/internal/domain"
)

// Port: an optional cache for optimization results.
// Keys are expected to be content hashes of (graph, config) so a hit is
// only possible for a byte-identical run.
type ResultCache interface {
	// Get returns the cached result for key, or ok=false on a miss.
	Get(ctx context.Context, key string) (*domain.Result, bool, error)
	// Put stores the result under key.
	Put(ctx context.Context, key string, res *domain.Result) error
}
