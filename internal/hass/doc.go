// Package hass models the host dashboard's view of the world: the state
// machine, the entity registry and the device registry.
//
// The host mirrors these three tables onto MQTT; the ingest package feeds
// them into a Store, and the card package reads immutable Snapshot copies
// taken from it.
//
// # Key Types
//
//   - EntityState: one state machine row (state string plus open attributes)
//   - EntityEntry: entity registry row linking an entity to its device
//   - DeviceEntry: device registry row carrying the display name
//   - Snapshot: the three tables at one instant, read-only during assembly
//   - Store: thread-safe holder of the latest Snapshot
//
// # Usage
//
//	store := hass.NewStore()
//	store.SetDevice(hass.DeviceEntry{ID: "dev1", Name: "Pi-hole"})
//	store.SetEntity(hass.EntityEntry{EntityID: "sensor.pi_hole_dns_queries_today", DeviceID: "dev1"})
//	store.SetState(hass.EntityState{EntityID: "sensor.pi_hole_dns_queries_today", State: "10000"})
//
//	snap := store.Snapshot() // deep copy, safe to hand to the card pipeline
//	st, ok := hass.ReadState(snap, "sensor.pi_hole_dns_queries_today", false)
//
// # Persistence
//
// Repository persists the registry tables and the last known states to
// SQLite so a restart can assemble a card before the host re-publishes.
//
// # Thread Safety
//
// Store is safe for concurrent use. Snapshot values are never shared
// with the store after they are returned.
package hass
