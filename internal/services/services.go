// package services defines the interfaces floodjoin uses to talk to the remote messaging service
//
// Telegram (MTProto via gotd)
package services

import (
	"context"

	"github.com/desertthunder/floodjoin/internal/models"
)

// Channels is the capability handle the join workflow needs from an already-connected client.
type Channels interface {
	// Resolve turns an identifier into an entity without searching (direct lookup).
	// Returns an error for identifiers the service can't resolve.
	Resolve(ctx context.Context, identifier string) (*models.Candidate, error)

	// Search queries the service directory and returns at most limit candidates in the order received.
	Search(ctx context.Context, query string, limit int) ([]models.Candidate, error)

	// Join issues a join request for the referenced entity.
	Join(ctx context.Context, ref models.EntityRef) error

	// Name returns the name of the service (e.g., "Telegram")
	Name() string
}

// Connector owns the client lifecycle: it connects, hands a [Channels] to fn and disconnects when fn returns.
type Connector interface {
	Connect(ctx context.Context, fn func(ctx context.Context, ch Channels) error) error
}
