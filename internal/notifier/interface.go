// Package notifier defines the delivery contract for completed
// recommendations.
package notifier

import (
	"github.com/newthinker/insight/internal/core"
)

// Notifier defines the interface for recommendation delivery.
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Send delivers a single recommendation
	Send(rec core.Recommendation) error
}
