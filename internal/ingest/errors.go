package ingest

import "errors"

var (
	// ErrUnknownTopic is returned for topics outside the ingest layout.
	ErrUnknownTopic = errors.New("ingest: unknown topic")

	// ErrInvalidPayload is returned when a message body is not valid JSON.
	ErrInvalidPayload = errors.New("ingest: invalid payload")
)
