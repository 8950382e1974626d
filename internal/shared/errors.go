package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidSession   = fmt.Errorf("invalid session")

	// Channel resolution and join errors
	ErrLookupFailed    = fmt.Errorf("direct lookup failed")
	ErrSearchFailed    = fmt.Errorf("channel search failed")
	ErrChannelNotFound = fmt.Errorf("could not find channel entity")
	ErrJoinFailed      = fmt.Errorf("join request failed")
	ErrNotAChannel     = fmt.Errorf("entity is not a channel")
	ErrFloodWait       = fmt.Errorf("flood wait")

	// Persistence errors
	ErrAttemptNotFound = fmt.Errorf("join attempt not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
