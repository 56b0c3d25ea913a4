// Package influxdb records Pi-hole statistics history in InfluxDB v2.
//
// Two measurements are written through the batched, non-blocking write API
// of influxdb-client-go:
//
//	pihole_stats,device_id=<id>,device_name=<name> dns_queries_today=...,blocking=1
//	pihole_summary total=2i,active=1i,paused=1i,remaining_seconds=240i
//
// Tags from the influxdb.tags config section are added to every point.
//
// Usage:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // recording is off
//	}
//	defer client.Close()
//
// Write failures are asynchronous and reported through SetOnError.
package influxdb
