// Package ingest mirrors the host's registries and states from MQTT into
// the in-memory snapshot store, writing through to the SQLite repository.
//
// A bridge on the home automation host publishes retained messages:
//
//	<prefix>/state/<entity_id>            {"state", "attributes", "last_changed", "last_updated"}
//	<prefix>/registry/entity/<entity_id>  {"device_id", "platform", "translation_key", "name"}
//	<prefix>/registry/device/<device_id>  {"name", "name_by_user", "manufacturer", "model"}
//
// An empty payload (a cleared retained message) removes the row.
//
// On startup the store is seeded from the repository so the card has data
// before the broker replays its retained messages.
package ingest
