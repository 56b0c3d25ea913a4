package hass

import (
	"testing"
)

func TestReadState(t *testing.T) {
	snap := NewSnapshot()
	snap.States["sensor.a"] = EntityState{
		EntityID:   "sensor.a",
		State:      "42",
		Attributes: Attributes{"friendly_name": "A"},
	}
	snap.States["sensor.bare"] = EntityState{EntityID: "sensor.bare", State: "1"}

	tests := []struct {
		name       string
		snap       *Snapshot
		id         string
		synthesize bool
		wantOK     bool
		wantState  string
	}{
		{"present", snap, "sensor.a", false, true, "42"},
		{"present synthesize", snap, "sensor.a", true, true, "42"},
		{"missing", snap, "sensor.none", false, false, ""},
		{"missing synthesize", snap, "sensor.none", true, true, StateOff},
		{"empty id", snap, "", true, false, ""},
		{"nil snapshot", nil, "sensor.a", false, false, ""},
		{"nil snapshot synthesize", nil, "sensor.a", true, true, StateOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReadState(tt.snap, tt.id, tt.synthesize)
			if ok != tt.wantOK {
				t.Fatalf("ReadState() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.State != tt.wantState {
				t.Errorf("State = %q, want %q", got.State, tt.wantState)
			}
			if got.EntityID != tt.id {
				t.Errorf("EntityID = %q, want %q", got.EntityID, tt.id)
			}
			if got.Attributes == nil {
				t.Error("Attributes should never be nil")
			}
		})
	}
}

func TestReadState_ReturnsCopy(t *testing.T) {
	snap := NewSnapshot()
	snap.States["sensor.a"] = EntityState{EntityID: "sensor.a", Attributes: Attributes{"k": "v"}}

	got, _ := ReadState(snap, "sensor.a", false)
	got.Attributes["k"] = "changed"

	if snap.States["sensor.a"].Attributes["k"] != "v" {
		t.Error("ReadState() exposed snapshot attributes")
	}
}

func TestReadState_SynthesizedNotStored(t *testing.T) {
	snap := NewSnapshot()
	_, _ = ReadState(snap, "switch.missing", true)
	if len(snap.States) != 0 {
		t.Error("synthesised state was written to the snapshot")
	}
}
