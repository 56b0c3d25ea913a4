// Package command publishes the card's service calls to the host over MQTT.
//
// Each call becomes one non-retained message on
// <prefix>/command/<domain>/<service>:
//
//	{"id": "<uuid>", "target": {"device_id": "..."}, "data": {...}, "timestamp": "..."}
//
// Calls are fire-and-forget. Publish failures are logged, never returned,
// because the card does not wait for or report command outcomes.
package command
