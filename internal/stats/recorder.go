// Package stats records Pi-hole statistics history to InfluxDB.
//
// On every setup change the recorder reads the numeric statistics slots of
// each device and writes one sample per device whose values moved, plus a
// summary sample when the blocking counts change.
package stats

import (
	"maps"
	"sync"
	"time"

	"github.com/nerrad567/pihole-card-core/internal/card"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/influxdb"
)

// blockingField holds 1 while the device blocks, 0 while paused.
const blockingField = "blocking"

// Writer is the subset of the InfluxDB client the Recorder needs.
type Writer interface {
	WriteDeviceStats(stats influxdb.DeviceStats)
	WriteSummary(s influxdb.SummarySample)
}

// Recorder turns setup records into statistics samples.
//
// Thread Safety: Record is safe for concurrent use.
type Recorder struct {
	writer Writer
	now    func() time.Time

	// last holds the most recent fields written per device.
	last        map[string]map[string]float64
	lastSummary *card.Summary
	mu          sync.Mutex
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w Writer) *Recorder {
	return &Recorder{
		writer: w,
		now:    time.Now,
		last:   make(map[string]map[string]float64),
	}
}

// Record writes a sample for each device whose statistics changed since the
// previous call. Returns the number of device samples written.
func (r *Recorder) Record(setup *card.SetupRecord) int {
	if setup == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	written := 0
	present := make(map[string]bool, len(setup.Devices))
	for _, d := range setup.Devices {
		present[d.DeviceID] = true
		fields := Fields(d)
		if len(fields) == 0 || maps.Equal(fields, r.last[d.DeviceID]) {
			continue
		}
		r.writer.WriteDeviceStats(influxdb.DeviceStats{
			DeviceID:   d.DeviceID,
			DeviceName: d.Name,
			Fields:     fields,
			Time:       ts,
		})
		r.last[d.DeviceID] = fields
		written++
	}

	// A device that leaves the setup starts fresh when it returns.
	maps.DeleteFunc(r.last, func(id string, _ map[string]float64) bool {
		return !present[id]
	})

	summary := card.Summarize(setup)
	if r.lastSummary == nil || *r.lastSummary != summary {
		r.writer.WriteSummary(influxdb.SummarySample{
			Total:     summary.Total,
			Active:    summary.Active,
			Paused:    summary.Paused,
			Remaining: summary.Remaining,
			Time:      ts,
		})
		r.lastSummary = &summary
	}
	return written
}

// Fields extracts the numeric statistics of a device. Slots with
// non-numeric states are skipped; the status slot maps to a 0/1
// "blocking" field.
func Fields(d *card.DeviceRecord) map[string]float64 {
	fields := make(map[string]float64)
	if d == nil {
		return fields
	}

	for _, role := range card.AllRoles {
		e := d.Slot(role)
		if e == nil {
			continue
		}
		if role == card.RoleStatus {
			switch e.State {
			case "on":
				fields[blockingField] = 1
			case "off":
				fields[blockingField] = 0
			}
			continue
		}
		if v, ok := card.NumericState(e); ok {
			fields[role.String()] = v
		}
	}
	return fields
}
