package card

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	status := func(state string) *Entity {
		return &Entity{EntityID: "binary_sensor.status", State: state}
	}
	dev := func(st *Entity) *DeviceRecord {
		d := newDeviceRecord("d", "d")
		d.Status = st
		return d
	}

	tests := []struct {
		name  string
		setup *SetupRecord
		want  Summary
	}{
		{"nil setup", nil, Summary{}},
		{"empty setup", &SetupRecord{}, Summary{}},
		{
			name:  "all on",
			setup: &SetupRecord{Devices: []*DeviceRecord{dev(status("on")), dev(status("on"))}},
			want:  Summary{Total: 2, Active: 2},
		},
		{
			name:  "mixed",
			setup: &SetupRecord{Devices: []*DeviceRecord{dev(status("on")), dev(status("off")), dev(status("unavailable")), dev(nil)}},
			want:  Summary{Total: 4, Active: 1, Paused: 1, Unknown: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.setup); got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSummarize_Remaining(t *testing.T) {
	tests := []struct {
		state string
		want  int
	}{
		{"120", 120},
		{"45.9", 45},
		{"2m30s", 150},
		{"0", 0},
		{"unavailable", 0},
		{"-5", 0},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			d := newDeviceRecord("d", "d")
			d.Status = &Entity{State: "off"}
			d.RemainingUntilBlockingMode = &Entity{State: tt.state}
			got := Summarize(&SetupRecord{Devices: []*DeviceRecord{d}})
			if got.Remaining != tt.want {
				t.Errorf("Remaining = %d, want %d", got.Remaining, tt.want)
			}
		})
	}
}

func TestSummary_AllActive(t *testing.T) {
	if (Summary{}).AllActive() {
		t.Error("empty summary should not be all active")
	}
	if !(Summary{Total: 2, Active: 2}).AllActive() {
		t.Error("2/2 should be all active")
	}
	if (Summary{Total: 2, Active: 1, Paused: 1}).AllActive() {
		t.Error("1/2 should not be all active")
	}
}

func TestNumericState(t *testing.T) {
	tests := []struct {
		entity *Entity
		want   float64
		ok     bool
	}{
		{&Entity{State: "10000"}, 10000, true},
		{&Entity{State: "12.5"}, 12.5, true},
		{&Entity{State: "unavailable"}, 0, false},
		{&Entity{State: ""}, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := NumericState(tt.entity)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NumericState(%+v) = %v, %v; want %v, %v", tt.entity, got, ok, tt.want, tt.ok)
		}
	}
}
