package ports

import (
	"context"

	"collection-route-service/internal/domain"
)

// Port: a boundary for loading and replacing collection scenarios.
// A scenario is the validated location table plus the pairwise edge table
// the ingestion collaborator maintains.
type ScenarioRepository interface {
	// Retrieve all locations and edges of the stored scenario.
	LoadScenario(ctx context.Context) ([]domain.Location, []domain.Edge, error)
	// Replace the stored scenario atomically.
	ReplaceScenario(ctx context.Context, locations []domain.Location, edges []domain.Edge) error
}
