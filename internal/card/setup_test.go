package card

import (
	"reflect"
	"testing"

	"github.com/nerrad567/pihole-card-core/internal/hass"
)

func twoDeviceSnapshot() *hass.Snapshot {
	return newSnapshot().
		device("A", "Pi-hole A").
		device("B", "Pi-hole B").
		entity("A", "binary_sensor.a_status", "status", "on", nil).
		entity("A", "switch.t1", "", "on", nil).
		entity("A", "sensor.a_seen_clients", "", "3", nil).
		entity("B", "binary_sensor.b_status", "status", "off", nil).
		entity("B", "switch.t2", "", "off", nil).
		entity("B", "button.b_restart", "", "unknown", nil).
		build()
}

func TestAssembleSetup_NoDevicesConfigured(t *testing.T) {
	snap := twoDeviceSnapshot()

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"nil device list", &Config{}},
		{"empty device list", &Config{DeviceID: DeviceIDs{}}},
		{"only blank entries", &Config{DeviceID: DeviceIDs{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup, ok := AssembleSetup(snap, tt.cfg)
			if ok || setup != nil {
				t.Errorf("AssembleSetup() = %v, %v; want nil, false", setup, ok)
			}
		})
	}
}

func TestAssembleSetup_AllInvalid(t *testing.T) {
	setup, ok := AssembleSetup(twoDeviceSnapshot(), &Config{DeviceID: DeviceIDs{"bad-id"}})
	if !ok {
		t.Fatal("AssembleSetup() returned false")
	}
	if setup == nil || setup.Devices == nil || len(setup.Devices) != 0 {
		t.Errorf("Devices = %v, want empty non-nil", setup)
	}
	if setup.Primary() != nil {
		t.Error("Primary() should be nil")
	}
}

func TestAssembleSetup_PrimaryPromotion(t *testing.T) {
	setup, ok := AssembleSetup(twoDeviceSnapshot(), &Config{DeviceID: DeviceIDs{"bad-id", "B"}})
	if !ok {
		t.Fatal("AssembleSetup() returned false")
	}
	if len(setup.Devices) != 1 {
		t.Fatalf("len(Devices) = %d, want 1", len(setup.Devices))
	}
	if setup.Primary().DeviceID != "B" {
		t.Errorf("primary = %q, want B", setup.Primary().DeviceID)
	}
	// A single device keeps its own collections.
	if !reflect.DeepEqual(ids(setup.Primary().Controls), []string{"button.b_restart"}) {
		t.Errorf("Controls = %v", ids(setup.Primary().Controls))
	}
}

func TestAssembleSetup_SwitchMerge(t *testing.T) {
	setup, ok := AssembleSetup(twoDeviceSnapshot(), &Config{DeviceID: DeviceIDs{"A", "B"}})
	if !ok {
		t.Fatal("AssembleSetup() returned false")
	}
	if len(setup.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(setup.Devices))
	}

	primary, secondary := setup.Devices[0], setup.Devices[1]

	if !reflect.DeepEqual(ids(primary.Switches), []string{"switch.t1", "switch.t2"}) {
		t.Errorf("primary Switches = %v", ids(primary.Switches))
	}
	if !reflect.DeepEqual(ids(primary.Sensors), []string{"sensor.a_seen_clients"}) {
		t.Errorf("primary Sensors = %v", ids(primary.Sensors))
	}

	for name, c := range map[string][]*Entity{
		"Sensors":  secondary.Sensors,
		"Controls": secondary.Controls,
		"Switches": secondary.Switches,
		"Updates":  secondary.Updates,
	} {
		if c == nil || len(c) != 0 {
			t.Errorf("secondary %s = %v, want empty", name, ids(c))
		}
	}

	// Named slots survive on secondaries.
	if secondary.Status == nil || secondary.Status.EntityID != "binary_sensor.b_status" {
		t.Errorf("secondary Status = %+v", secondary.Status)
	}
}

func TestAssembleSetup_MergedSwitchesReordered(t *testing.T) {
	cfg := &Config{
		DeviceID:    DeviceIDs{"A", "B"},
		EntityOrder: []string{"switch.t2"},
	}
	setup, _ := AssembleSetup(twoDeviceSnapshot(), cfg)

	want := []string{"switch.t2", "switch.t1"}
	if got := ids(setup.Primary().Switches); !reflect.DeepEqual(got, want) {
		t.Errorf("primary Switches = %v, want %v", got, want)
	}
}

func TestAssembleSetup_DuplicateDeviceIDs(t *testing.T) {
	setup, _ := AssembleSetup(twoDeviceSnapshot(), &Config{DeviceID: DeviceIDs{"A", "A"}})
	if len(setup.Devices) != 1 {
		t.Fatalf("len(Devices) = %d, want 1", len(setup.Devices))
	}
	if !reflect.DeepEqual(ids(setup.Primary().Switches), []string{"switch.t1"}) {
		t.Errorf("Switches = %v", ids(setup.Primary().Switches))
	}
}

func TestAssembleSetup_Idempotent(t *testing.T) {
	snap := twoDeviceSnapshot()
	cfg := &Config{
		DeviceID:        DeviceIDs{"A", "B"},
		ExcludeEntities: []string{"sensor.a_seen_clients"},
		EntityOrder:     []string{"switch.t2"},
	}

	first, _ := AssembleSetup(snap, cfg)
	second, _ := AssembleSetup(snap, cfg)

	if !reflect.DeepEqual(first, second) {
		t.Error("AssembleSetup() not idempotent")
	}
	if first.Devices[0] == second.Devices[0] {
		t.Error("records should not be shared between calls")
	}
}

func TestAssembleSetup_ConfigUnchanged(t *testing.T) {
	cfg := &Config{
		DeviceID:    DeviceIDs{"A", "B"},
		EntityOrder: []string{"switch.t2", "switch.t1"},
	}
	before := *cfg
	before.DeviceID = append(DeviceIDs{}, cfg.DeviceID...)
	before.EntityOrder = append([]string{}, cfg.EntityOrder...)

	_, _ = AssembleSetup(twoDeviceSnapshot(), cfg)

	if !reflect.DeepEqual(*cfg, before) {
		t.Errorf("config changed: %+v", cfg)
	}
}

func TestSetupRecord_Lookups(t *testing.T) {
	setup, _ := AssembleSetup(twoDeviceSnapshot(), &Config{DeviceID: DeviceIDs{"A", "B"}})

	if d, ok := setup.Device("B"); !ok || d.DeviceID != "B" {
		t.Errorf("Device(B) = %v, %v", d, ok)
	}
	if _, ok := setup.Device("C"); ok {
		t.Error("Device(C) should fail")
	}
	// switch.t2 now lives on the primary.
	if e, ok := setup.FindEntity("switch.t2"); !ok || e.State != "off" {
		t.Errorf("FindEntity(switch.t2) = %v, %v", e, ok)
	}
	if _, ok := setup.FindEntity("button.b_restart"); ok {
		t.Error("cleared secondary control should not be found")
	}

	var nilSetup *SetupRecord
	if nilSetup.Primary() != nil {
		t.Error("nil Primary() should be nil")
	}
	if _, ok := nilSetup.FindEntity("switch.t1"); ok {
		t.Error("nil FindEntity() should fail")
	}
}
