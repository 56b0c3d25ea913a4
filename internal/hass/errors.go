package hass

import "errors"

// Domain errors for the hass package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, hass.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID is not in the registry.
	ErrDeviceNotFound = errors.New("hass: device not found")

	// ErrEntityNotFound is returned when an entity ID is not in the registry.
	ErrEntityNotFound = errors.New("hass: entity not found")

	// ErrStateNotFound is returned when an entity has no recorded state.
	ErrStateNotFound = errors.New("hass: state not found")

	// ErrInvalidEntityID is returned when an entity ID is empty or lacks a domain.
	ErrInvalidEntityID = errors.New("hass: invalid entity id")

	// ErrInvalidDeviceID is returned when a device ID is empty.
	ErrInvalidDeviceID = errors.New("hass: invalid device id")
)
