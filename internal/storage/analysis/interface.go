// Package analysis holds completed analysis payloads for API retrieval.
package analysis

import (
	"context"
	"time"

	"github.com/newthinker/insight/internal/core"
)

// Store defines the interface for analysis persistence.
type Store interface {
	// Save persists a payload, assigning an ID if it has none.
	Save(ctx context.Context, payload *core.AnalysisPayload) error

	// GetByID retrieves a payload by its ID.
	GetByID(ctx context.Context, id string) (*core.AnalysisPayload, error)

	// Latest retrieves the most recent payload for a ticker.
	Latest(ctx context.Context, ticker string) (*core.AnalysisPayload, error)

	// List retrieves payloads matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*core.AnalysisPayload, error)

	// Count returns the number of payloads matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing analyses.
type ListFilter struct {
	Ticker         string
	CompanyType    core.CompanyType
	Recommendation core.RecommendationLabel
	From           time.Time
	To             time.Time
	Limit          int
	Offset         int
}
