package card

import (
	"context"
	"sync"

	"github.com/nerrad567/pihole-card-core/internal/hass"
)

// snapshotBuilder assembles test snapshots.
type snapshotBuilder struct {
	snap *hass.Snapshot
}

func newSnapshot() *snapshotBuilder {
	return &snapshotBuilder{snap: hass.NewSnapshot()}
}

func (b *snapshotBuilder) device(id, name string) *snapshotBuilder {
	b.snap.Devices[id] = hass.DeviceEntry{ID: id, Name: name}
	return b
}

// entity registers an entity with a state. An empty tag means no role tag.
func (b *snapshotBuilder) entity(deviceID, entityID, tag, state string, attrs hass.Attributes) *snapshotBuilder {
	b.snap.Entities[entityID] = hass.EntityEntry{
		EntityID:       entityID,
		DeviceID:       deviceID,
		TranslationKey: tag,
	}
	if attrs == nil {
		attrs = hass.Attributes{}
	}
	b.snap.States[entityID] = hass.EntityState{
		EntityID:   entityID,
		State:      state,
		Attributes: attrs,
	}
	return b
}

// registryOnly registers an entity without a state.
func (b *snapshotBuilder) registryOnly(deviceID, entityID, tag string) *snapshotBuilder {
	b.snap.Entities[entityID] = hass.EntityEntry{
		EntityID:       entityID,
		DeviceID:       deviceID,
		TranslationKey: tag,
	}
	return b
}

func (b *snapshotBuilder) build() *hass.Snapshot {
	return b.snap
}

// ids returns entity IDs in order.
func ids(entities []*Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.EntityID)
	}
	return out
}

// entitiesFromIDs builds bare entities.
func entitiesFromIDs(idList ...string) []*Entity {
	out := make([]*Entity, 0, len(idList))
	for _, id := range idList {
		out = append(out, &Entity{EntityID: id, Attributes: hass.Attributes{}})
	}
	return out
}

// MockCommander records issued commands.
type MockCommander struct {
	mu       sync.Mutex
	commands []Command
}

func (m *MockCommander) Call(_ context.Context, cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, cmd)
}

func (m *MockCommander) Commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.commands))
	copy(out, m.commands)
	return out
}
