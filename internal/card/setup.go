package card

import (
	"github.com/nerrad567/pihole-card-core/internal/hass"
)

// SetupRecord is every resolved device of the card. Devices[0] is the
// primary device; it holds the switches of all devices.
type SetupRecord struct {
	Devices []*DeviceRecord `json:"devices"`
}

// Primary returns the primary device, or nil when nothing resolved.
func (s *SetupRecord) Primary() *DeviceRecord {
	if s == nil || len(s.Devices) == 0 {
		return nil
	}
	return s.Devices[0]
}

// Device returns the resolved device with the given ID.
func (s *SetupRecord) Device(deviceID string) (*DeviceRecord, bool) {
	if s == nil {
		return nil, false
	}
	for _, d := range s.Devices {
		if d.DeviceID == deviceID {
			return d, true
		}
	}
	return nil, false
}

// FindEntity looks up a placed entity across all devices.
func (s *SetupRecord) FindEntity(entityID string) (*Entity, bool) {
	if s == nil {
		return nil, false
	}
	for _, d := range s.Devices {
		if e, ok := d.FindEntity(entityID); ok {
			return e, true
		}
	}
	return nil, false
}

// AssembleSetup builds the card's setup from a snapshot.
//
// Returns false only when no device is configured. Unknown devices are
// skipped; if none resolve the result is an empty, non-nil setup.
// The first resolved device becomes primary and absorbs the switches of
// every other device, re-ordered by the configured entity order. The
// other devices keep their named slots but no collections.
func AssembleSetup(snap *hass.Snapshot, cfg *Config) (*SetupRecord, bool) {
	if cfg == nil {
		return nil, false
	}
	ids := cfg.DeviceID.List()
	if len(ids) == 0 {
		return nil, false
	}

	setup := &SetupRecord{Devices: make([]*DeviceRecord, 0, len(ids))}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		rec, ok := AssembleDevice(snap, cfg, id)
		if !ok {
			continue
		}
		setup.Devices = append(setup.Devices, rec)
	}

	if len(setup.Devices) < 2 {
		return setup, true
	}

	primary := setup.Devices[0]
	switches := primary.Switches
	for _, secondary := range setup.Devices[1:] {
		switches = append(switches, secondary.Switches...)
		secondary.clearCollections()
	}
	primary.Switches = ApplyOrder(switches, cfg.EntityOrder)

	return setup, true
}
