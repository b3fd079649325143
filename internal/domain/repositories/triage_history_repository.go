package repositories

import (
	"context"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
)

// TriageHistoryRepository defines the interface for the triage learning
// store
type TriageHistoryRepository interface {
	// Create persists a new anonymized history entry
	Create(ctx context.Context, entry *entities.TriageHistoryEntry) error

	// GetByID retrieves a history entry by ID
	GetByID(ctx context.Context, id string) (*entities.TriageHistoryEntry, error)

	// SeverityStats aggregates severity distribution for a detected
	// condition
	SeverityStats(ctx context.Context, condition string) ([]entities.SeverityStat, error)

	// RecordOutcome attaches a real-world outcome to a past entry
	RecordOutcome(ctx context.Context, id string, outcome *entities.TriageOutcome) error
}

// TriageHistorySearchRepository defines the interface for similarity
// lookup over past cases (e.g. Typesense)
type TriageHistorySearchRepository interface {
	// Index indexes a history entry for text search
	Index(ctx context.Context, entry *entities.TriageHistoryEntry) error

	// FindSimilar returns past cases whose complaint and symptoms
	// resemble the given text
	FindSimilar(ctx context.Context, complaint string, symptoms []string, limit int) ([]*entities.TriageHistoryEntry, error)

	// Delete removes a history entry from the index
	Delete(ctx context.Context, id string) error
}
