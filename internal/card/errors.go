package card

import "errors"

// Errors returned by configuration parsing and Actions.
// The assembly pipeline itself never returns errors.
var (
	// ErrInvalidConfig is returned when the card configuration is malformed.
	ErrInvalidConfig = errors.New("card: invalid config")

	// ErrNoTarget is returned when an action has nothing to act on.
	ErrNoTarget = errors.New("card: no target")

	// ErrUnsupportedEntity is returned when an action does not apply to an entity's domain.
	ErrUnsupportedEntity = errors.New("card: unsupported entity for action")

	// ErrInvalidDuration is returned when a pause duration is not positive.
	ErrInvalidDuration = errors.New("card: invalid duration")
)
