package hass

import (
	"strings"
	"time"
)

// Attributes holds the open-ended attribute map the host attaches to a state.
//
// Examples:
//   - Sensor: {"friendly_name": "Pi-hole DNS queries today", "unit_of_measurement": "queries"}
//   - Update: {"title": "FTL", "installed_version": "v6.0", "latest_version": "v6.1"}
type Attributes map[string]any

// Well-known attribute keys.
const (
	AttrFriendlyName = "friendly_name"
	AttrTitle        = "title"
)

// String returns the attribute as a string, or "" if missing or not a string.
func (a Attributes) String(key string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return ""
}

// EntityState is one row of the host's state machine.
type EntityState struct {
	EntityID    string     `json:"entity_id"`
	State       string     `json:"state"`
	Attributes  Attributes `json:"attributes"`
	LastChanged time.Time  `json:"last_changed,omitzero"`
	LastUpdated time.Time  `json:"last_updated,omitzero"`
}

// DeepCopy creates a complete independent copy of the EntityState.
func (s EntityState) DeepCopy() EntityState {
	cpy := s
	cpy.Attributes = Attributes(deepCopyMap(s.Attributes))
	return cpy
}

// EntityEntry is one row of the host's entity registry.
//
// TranslationKey is the semantic role tag supplied by the integration; it is
// independent of the entity ID's structure.
type EntityEntry struct {
	EntityID       string `json:"entity_id"`
	DeviceID       string `json:"device_id,omitempty"`
	Platform       string `json:"platform,omitempty"`
	TranslationKey string `json:"translation_key,omitempty"`
	Name           string `json:"name,omitempty"`
}

// DeviceEntry is one row of the host's device registry.
type DeviceEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NameByUser   string `json:"name_by_user,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
}

// DisplayName returns the user-assigned name if present, otherwise the
// integration-assigned name.
func (d DeviceEntry) DisplayName() string {
	if d.NameByUser != "" {
		return d.NameByUser
	}
	return d.Name
}

// Snapshot is the host state at one instant.
//
// A Snapshot is treated as read-only once handed to the card pipeline.
type Snapshot struct {
	States   map[string]EntityState `json:"states"`
	Entities map[string]EntityEntry `json:"entities"`
	Devices  map[string]DeviceEntry `json:"devices"`
}

// NewSnapshot returns an empty snapshot with all tables allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		States:   make(map[string]EntityState),
		Entities: make(map[string]EntityEntry),
		Devices:  make(map[string]DeviceEntry),
	}
}

// DeepCopy creates a complete independent copy of the Snapshot.
func (s *Snapshot) DeepCopy() *Snapshot {
	if s == nil {
		return nil
	}

	cpy := &Snapshot{
		States:   make(map[string]EntityState, len(s.States)),
		Entities: make(map[string]EntityEntry, len(s.Entities)),
		Devices:  make(map[string]DeviceEntry, len(s.Devices)),
	}
	for id, st := range s.States {
		cpy.States[id] = st.DeepCopy()
	}
	// Registry rows only hold strings
	for id, e := range s.Entities {
		cpy.Entities[id] = e
	}
	for id, d := range s.Devices {
		cpy.Devices[id] = d
	}
	return cpy
}

// Device looks up a device registry entry.
func (s *Snapshot) Device(id string) (DeviceEntry, bool) {
	if s == nil || id == "" {
		return DeviceEntry{}, false
	}
	d, ok := s.Devices[id]
	return d, ok
}

// EntityDomain returns the part of an entity ID before the first ".",
// e.g. "sensor" for "sensor.pi_hole_dns_queries_today".
// Returns "" if the ID has no separator.
func EntityDomain(entityID string) string {
	domain, _, found := strings.Cut(entityID, ".")
	if !found {
		return ""
	}
	return domain
}

// ValidateEntityID checks that an entity ID has the "<domain>.<name>" shape.
func ValidateEntityID(entityID string) error {
	domain, name, found := strings.Cut(entityID, ".")
	if !found || domain == "" || name == "" {
		return ErrInvalidEntityID
	}
	return nil
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case Attributes:
		return Attributes(deepCopyMap(val))
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, float64, nil) are safe to copy by value
		return v
	}
}
