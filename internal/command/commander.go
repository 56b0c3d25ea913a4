package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/pihole-card-core/internal/card"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/mqtt"
)

// Logger defines the logging interface used by the Commander.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher is the subset of the MQTT client the Commander needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Message is the wire form of a service call.
type Message struct {
	ID        string         `json:"id"`
	Target    card.Target    `json:"target"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// Commander implements card.Commander over MQTT.
type Commander struct {
	pub    Publisher
	topics mqtt.Topics
	qos    byte
	logger Logger
}

var _ card.Commander = (*Commander)(nil)

// New creates a Commander. A nil pub drops every call with a warning, which
// lets the API run read-only without a broker.
func New(pub Publisher, topics mqtt.Topics, qos byte) *Commander {
	return &Commander{
		pub:    pub,
		topics: topics,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the commander.
func (c *Commander) SetLogger(logger Logger) {
	c.logger = logger
}

// Call publishes cmd. It returns once the broker acknowledged the publish
// or the publish failed.
func (c *Commander) Call(ctx context.Context, cmd card.Command) {
	if err := ctx.Err(); err != nil {
		c.logger.Warn("command dropped", "domain", cmd.Domain, "service", cmd.Service, "error", err)
		return
	}
	if c.pub == nil {
		c.logger.Warn("command dropped, no broker", "domain", cmd.Domain, "service", cmd.Service)
		return
	}

	msg := Message{
		ID:        uuid.NewString(),
		Target:    cmd.Target,
		Data:      cmd.Data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to encode command", "domain", cmd.Domain, "service", cmd.Service, "error", err)
		return
	}

	topic := c.topics.Command(cmd.Domain, cmd.Service)
	if err := c.pub.Publish(topic, payload, c.qos, false); err != nil {
		c.logger.Error("failed to publish command", "topic", topic, "command_id", msg.ID, "error", err)
		return
	}
	c.logger.Info("command published",
		"topic", topic,
		"command_id", msg.ID,
		"device_id", cmd.Target.DeviceID,
		"entity_id", cmd.Target.EntityID,
	)
}
