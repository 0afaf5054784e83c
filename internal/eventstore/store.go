package eventstore

import (
	"context"
	"time"
)

// Store persists build events.
type Store interface {
	// Append adds events in order.
	Append(ctx context.Context, events ...Event) error

	// GetByBuildID retrieves all events for one build, oldest first.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange retrieves events within a time range, oldest first.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Prune deletes everything but the events of the newest keep builds.
	Prune(ctx context.Context, keep int) error

	// Close releases resources.
	Close() error
}
