// Package api implements the HTTP REST API and WebSocket server for the
// Pi-hole card service.
//
// This package provides:
//   - REST endpoints for the card configuration, the assembled setup and
//     single devices
//   - Action endpoints that turn card interactions into service calls
//   - WebSocket hub pushing the re-assembled setup on every snapshot change
//   - Optional HS256 bearer token authentication
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The server sits between dashboard front-ends and the snapshot store. The
// store is fed by the MQTT ingester; actions flow out through a
// card.Commander which publishes service calls back to the host.
//
// # Graceful Degradation
//
// The server operates without MQTT. Reads and WebSocket connections work;
// actions are accepted and dropped by the commander.
package api
