package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/pihole-card-core/internal/hass"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/mqtt"
)

// repoTimeout bounds a single write-through to the repository.
const repoTimeout = 5 * time.Second

// Logger defines the logging interface used by the Ingester.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Subscriber is the subset of the MQTT client the Ingester needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Ingester applies host messages to a Store.
type Ingester struct {
	store  *hass.Store
	repo   hass.Repository
	topics mqtt.Topics
	logger Logger
}

// New creates an Ingester. repo may be nil to keep the snapshot in memory only.
func New(store *hass.Store, repo hass.Repository, topics mqtt.Topics) *Ingester {
	return &Ingester{
		store:  store,
		repo:   repo,
		topics: topics,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the ingester.
func (i *Ingester) SetLogger(logger Logger) {
	i.logger = logger
}

// Restore seeds the store from the repository.
func (i *Ingester) Restore(ctx context.Context) error {
	if i.repo == nil {
		return nil
	}
	snap, err := i.repo.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	i.store.Load(snap)
	return nil
}

// Subscribe registers HandleMessage for every ingest topic.
// Registries are subscribed before states so retained replays resolve
// devices first.
func (i *Ingester) Subscribe(sub Subscriber, qos byte) error {
	patterns := []string{
		i.topics.AllRegistryDevices(),
		i.topics.AllRegistryEntities(),
		i.topics.AllStates(),
	}
	for _, p := range patterns {
		if err := sub.Subscribe(p, qos, i.HandleMessage); err != nil {
			return fmt.Errorf("subscribing to %s: %w", p, err)
		}
		i.logger.Info("subscribed to host topic", "topic", p)
	}
	return nil
}

// HandleMessage applies one MQTT message to the store and repository.
func (i *Ingester) HandleMessage(topic string, payload []byte) error {
	kind, id := i.topics.Parse(topic)
	remove := len(bytes.TrimSpace(payload)) == 0

	switch kind {
	case mqtt.TopicState:
		if remove {
			return i.removeState(id)
		}
		return i.applyState(id, payload)
	case mqtt.TopicRegistryEntity:
		if remove {
			return i.removeEntity(id)
		}
		return i.applyEntity(id, payload)
	case mqtt.TopicRegistryDevice:
		if remove {
			return i.removeDevice(id)
		}
		return i.applyDevice(id, payload)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

func (i *Ingester) applyState(entityID string, payload []byte) error {
	var st hass.EntityState
	if err := json.Unmarshal(payload, &st); err != nil {
		return fmt.Errorf("%w: state %s: %w", ErrInvalidPayload, entityID, err)
	}
	st.EntityID = entityID
	if st.Attributes == nil {
		st.Attributes = hass.Attributes{}
	}

	if err := i.store.SetState(st); err != nil {
		return fmt.Errorf("state %s: %w", entityID, err)
	}
	i.logger.Debug("state updated", "entity_id", entityID, "state", st.State)

	return i.writeThrough(func(ctx context.Context) error {
		return i.repo.SaveState(ctx, st)
	})
}

func (i *Ingester) removeState(entityID string) error {
	i.store.RemoveState(entityID)
	i.logger.Debug("state removed", "entity_id", entityID)
	return i.writeThrough(func(ctx context.Context) error {
		return ignoreNotFound(i.repo.DeleteState(ctx, entityID))
	})
}

func (i *Ingester) applyEntity(entityID string, payload []byte) error {
	var e hass.EntityEntry
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("%w: entity %s: %w", ErrInvalidPayload, entityID, err)
	}
	e.EntityID = entityID

	if err := i.store.SetEntity(e); err != nil {
		return fmt.Errorf("entity %s: %w", entityID, err)
	}
	i.logger.Debug("entity registry updated", "entity_id", entityID, "device_id", e.DeviceID)

	return i.writeThrough(func(ctx context.Context) error {
		return i.repo.SaveEntity(ctx, e)
	})
}

func (i *Ingester) removeEntity(entityID string) error {
	i.store.RemoveEntity(entityID)
	return i.writeThrough(func(ctx context.Context) error {
		return ignoreNotFound(i.repo.DeleteEntity(ctx, entityID))
	})
}

func (i *Ingester) applyDevice(deviceID string, payload []byte) error {
	var d hass.DeviceEntry
	if err := json.Unmarshal(payload, &d); err != nil {
		return fmt.Errorf("%w: device %s: %w", ErrInvalidPayload, deviceID, err)
	}
	d.ID = deviceID

	if err := i.store.SetDevice(d); err != nil {
		return fmt.Errorf("device %s: %w", deviceID, err)
	}
	i.logger.Info("device registry updated", "device_id", deviceID, "name", d.DisplayName())

	return i.writeThrough(func(ctx context.Context) error {
		return i.repo.SaveDevice(ctx, d)
	})
}

func (i *Ingester) removeDevice(deviceID string) error {
	i.store.RemoveDevice(deviceID)
	i.logger.Info("device removed", "device_id", deviceID)
	return i.writeThrough(func(ctx context.Context) error {
		return ignoreNotFound(i.repo.DeleteDevice(ctx, deviceID))
	})
}

// writeThrough runs fn against the repository, if one is configured.
func (i *Ingester) writeThrough(fn func(ctx context.Context) error) error {
	if i.repo == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("persisting: %w", err)
	}
	return nil
}

// ignoreNotFound treats deleting an absent row as success.
func ignoreNotFound(err error) error {
	if errors.Is(err, hass.ErrDeviceNotFound) ||
		errors.Is(err, hass.ErrEntityNotFound) ||
		errors.Is(err, hass.ErrStateNotFound) {
		return nil
	}
	return err
}
