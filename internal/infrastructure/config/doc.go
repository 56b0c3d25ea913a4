// Package config loads the service configuration from YAML, then applies
// PIHOLECARD_* environment overrides and validates the result.
//
// The card section is the card.Config the dashboard card is built from.
// Its device_id accepts a single ID or a list:
//
//	card:
//	  device_id: [3f2a9c, 9be104]
//	  exclude_entities: [sensor.pi_hole_seen_clients]
//
// Put secrets (broker password, JWT secret, InfluxDB token) in the
// environment rather than the file. API authentication stays off until
// security.jwt.secret is set.
package config
