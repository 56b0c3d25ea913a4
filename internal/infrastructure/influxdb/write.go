package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	// MeasurementStats holds per-device statistics, tagged by device.
	MeasurementStats = "pihole_stats"

	// MeasurementSummary holds the card-wide blocking counts.
	MeasurementSummary = "pihole_summary"
)

// DeviceStats is one sample of a Pi-hole device's numeric sensors.
type DeviceStats struct {
	DeviceID   string
	DeviceName string

	// Fields maps a statistic name (e.g. "dns_queries_today") to its value.
	Fields map[string]float64

	// Time defaults to now when zero.
	Time time.Time
}

// SummarySample counts devices by blocking state at one instant.
type SummarySample struct {
	Total     int
	Active    int
	Paused    int
	Remaining int
	Time      time.Time
}

// WriteDeviceStats queues one statistics sample. Samples without fields are
// dropped since InfluxDB rejects empty points.
//
//	client.WriteDeviceStats(influxdb.DeviceStats{
//	    DeviceID: "3f2a9c",
//	    Fields:   map[string]float64{"ads_blocked_today": 1204},
//	})
func (c *Client) WriteDeviceStats(stats DeviceStats) {
	if len(stats.Fields) == 0 {
		return
	}

	p := write.NewPointWithMeasurement(MeasurementStats).
		AddTag("device_id", stats.DeviceID).
		SetTime(timestamp(stats.Time))
	if stats.DeviceName != "" {
		p.AddTag("device_name", stats.DeviceName)
	}
	for name, value := range stats.Fields {
		p.AddField(name, value)
	}
	c.write(p)
}

// WriteSummary queues one summary sample.
func (c *Client) WriteSummary(s SummarySample) {
	p := write.NewPointWithMeasurement(MeasurementSummary).
		AddField("total", s.Total).
		AddField("active", s.Active).
		AddField("paused", s.Paused).
		AddField("remaining_seconds", s.Remaining).
		SetTime(timestamp(s.Time))
	c.write(p)
}

func (c *Client) write(p *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

func timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
