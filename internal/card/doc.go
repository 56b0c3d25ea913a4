// Package card assembles the Pi-hole card's view model from a host snapshot.
//
// The pipeline is pure and synchronous. Given a *hass.Snapshot and a Config
// it builds a fresh SetupRecord on every call:
//
//	collect ─▶ exclude ─▶ order ─▶ classify ─▶ sort updates   (per device)
//	                                   │
//	                                   ▼
//	             merge secondary switches into the primary device
//
// # Key Types
//
//   - Entity: a normalised entity (id, state, attributes, role tag, label)
//   - Role: the named single-valued slots of a DeviceRecord
//   - DeviceRecord: one appliance's classified entities
//   - SetupRecord: every resolved appliance, primary first
//   - Config: the user-authored card configuration
//
// # Absence, not errors
//
// Unknown devices, missing states and empty configuration never produce an
// error. They are reported as absence (nil, false) so a partially loaded
// host renders what it can and self-heals on the next snapshot.
//
// # Usage
//
//	setup, ok := card.AssembleSetup(store.Snapshot(), cfg)
//	if !ok {
//	    // nothing configured
//	}
//	primary := setup.Primary()
//
// Actions turns user interactions into fire-and-forget commands issued
// through a Commander.
package card
