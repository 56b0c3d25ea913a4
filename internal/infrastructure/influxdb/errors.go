package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
var (
	// ErrDisabled is returned by Connect when recording is switched off.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrInvalidConfig indicates a missing URL or bucket.
	ErrInvalidConfig = errors.New("influxdb: invalid configuration")

	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrNotConnected     = errors.New("influxdb: not connected")
)
