package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/pihole-card-core/internal/hass"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/mqtt"
)

// mockRepository records writes in memory.
type mockRepository struct {
	mu      sync.Mutex
	snap    *hass.Snapshot
	saveErr error
	deletes []string
	loadErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{snap: hass.NewSnapshot()}
}

func (m *mockRepository) SaveDevice(_ context.Context, d hass.DeviceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap.Devices[d.ID] = d
	return nil
}

func (m *mockRepository) DeleteDevice(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snap.Devices[id]; !ok {
		return hass.ErrDeviceNotFound
	}
	delete(m.snap.Devices, id)
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *mockRepository) SaveEntity(_ context.Context, e hass.EntityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap.Entities[e.EntityID] = e
	return nil
}

func (m *mockRepository) DeleteEntity(_ context.Context, entityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snap.Entities[entityID]; !ok {
		return hass.ErrEntityNotFound
	}
	delete(m.snap.Entities, entityID)
	m.deletes = append(m.deletes, entityID)
	return nil
}

func (m *mockRepository) SaveState(_ context.Context, st hass.EntityState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap.States[st.EntityID] = st
	return nil
}

func (m *mockRepository) DeleteState(_ context.Context, entityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snap.States[entityID]; !ok {
		return hass.ErrStateNotFound
	}
	delete(m.snap.States, entityID)
	m.deletes = append(m.deletes, entityID)
	return nil
}

func (m *mockRepository) LoadSnapshot(_ context.Context) (*hass.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snap.DeepCopy(), nil
}

// fakeSubscriber records subscriptions.
type fakeSubscriber struct {
	topics []string
	err    error
}

func (f *fakeSubscriber) Subscribe(topic string, _ byte, _ mqtt.MessageHandler) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	return nil
}

func newTestIngester() (*Ingester, *hass.Store, *mockRepository) {
	store := hass.NewStore()
	repo := newMockRepository()
	return New(store, repo, mqtt.NewTopics("piholecard")), store, repo
}

func TestHandleMessage_State(t *testing.T) {
	ing, store, repo := newTestIngester()

	payload := `{"state":"1204","attributes":{"friendly_name":"Pi-hole Ads blocked"},"last_changed":"2026-03-01T12:00:00Z"}`
	if err := ing.HandleMessage("piholecard/state/sensor.pi_hole_ads_blocked", []byte(payload)); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	st, ok := store.Snapshot().States["sensor.pi_hole_ads_blocked"]
	if !ok {
		t.Fatal("state not stored")
	}
	if st.EntityID != "sensor.pi_hole_ads_blocked" || st.State != "1204" {
		t.Errorf("state = %+v", st)
	}
	if st.Attributes.String("friendly_name") != "Pi-hole Ads blocked" {
		t.Errorf("attributes = %v", st.Attributes)
	}
	if st.LastChanged.IsZero() {
		t.Error("last_changed not parsed")
	}
	if _, ok := repo.snap.States["sensor.pi_hole_ads_blocked"]; !ok {
		t.Error("state not written through")
	}
}

func TestHandleMessage_StateWithoutAttributes(t *testing.T) {
	ing, store, _ := newTestIngester()

	if err := ing.HandleMessage("piholecard/state/switch.pi_hole", []byte(`{"state":"on"}`)); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if store.Snapshot().States["switch.pi_hole"].Attributes == nil {
		t.Error("attributes should default to an empty map")
	}
}

func TestHandleMessage_Registries(t *testing.T) {
	ing, store, repo := newTestIngester()

	msgs := []struct {
		topic   string
		payload string
	}{
		{"piholecard/registry/device/dev-a", `{"name":"Pi-hole","name_by_user":"Kitchen","model":"v6"}`},
		{"piholecard/registry/entity/sensor.pi_hole_ads_blocked", `{"device_id":"dev-a","platform":"pi_hole_v6","translation_key":"ads_blocked"}`},
	}
	for _, m := range msgs {
		if err := ing.HandleMessage(m.topic, []byte(m.payload)); err != nil {
			t.Fatalf("HandleMessage(%s) error = %v", m.topic, err)
		}
	}

	snap := store.Snapshot()
	if d := snap.Devices["dev-a"]; d.ID != "dev-a" || d.DisplayName() != "Kitchen" {
		t.Errorf("device = %+v", d)
	}
	e := snap.Entities["sensor.pi_hole_ads_blocked"]
	if e.EntityID != "sensor.pi_hole_ads_blocked" || e.DeviceID != "dev-a" || e.TranslationKey != "ads_blocked" {
		t.Errorf("entity = %+v", e)
	}
	if len(repo.snap.Devices) != 1 || len(repo.snap.Entities) != 1 {
		t.Errorf("repo devices=%d entities=%d", len(repo.snap.Devices), len(repo.snap.Entities))
	}
}

func TestHandleMessage_EmptyPayloadRemoves(t *testing.T) {
	ing, store, repo := newTestIngester()

	_ = ing.HandleMessage("piholecard/registry/device/dev-a", []byte(`{"name":"Pi-hole"}`))
	_ = ing.HandleMessage("piholecard/registry/entity/switch.pi_hole", []byte(`{"device_id":"dev-a"}`))
	_ = ing.HandleMessage("piholecard/state/switch.pi_hole", []byte(`{"state":"on"}`))

	for _, topic := range []string{
		"piholecard/state/switch.pi_hole",
		"piholecard/registry/entity/switch.pi_hole",
		"piholecard/registry/device/dev-a",
	} {
		if err := ing.HandleMessage(topic, []byte("  ")); err != nil {
			t.Fatalf("HandleMessage(%s, empty) error = %v", topic, err)
		}
	}

	snap := store.Snapshot()
	if len(snap.States)+len(snap.Entities)+len(snap.Devices) != 0 {
		t.Errorf("store not emptied: %+v", snap)
	}
	if len(repo.deletes) != 3 {
		t.Errorf("repo deletes = %v", repo.deletes)
	}
}

func TestHandleMessage_RemoveUnknownIsNoop(t *testing.T) {
	ing, _, _ := newTestIngester()

	for _, topic := range []string{
		"piholecard/state/sensor.missing",
		"piholecard/registry/entity/sensor.missing",
		"piholecard/registry/device/missing",
	} {
		if err := ing.HandleMessage(topic, nil); err != nil {
			t.Errorf("HandleMessage(%s, nil) error = %v", topic, err)
		}
	}
}

func TestHandleMessage_Errors(t *testing.T) {
	ing, store, _ := newTestIngester()

	tests := []struct {
		name    string
		topic   string
		payload string
		wantErr error
	}{
		{"unknown topic", "piholecard/system/status", `{}`, ErrUnknownTopic},
		{"foreign prefix", "other/state/sensor.x", `{}`, ErrUnknownTopic},
		{"bad state json", "piholecard/state/sensor.x", `{"state":`, ErrInvalidPayload},
		{"bad entity json", "piholecard/registry/entity/sensor.x", `[1]`, ErrInvalidPayload},
		{"bad device json", "piholecard/registry/device/d", `"x"`, ErrInvalidPayload},
		{"invalid entity id", "piholecard/state/nodomain", `{"state":"1"}`, hass.ErrInvalidEntityID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ing.HandleMessage(tt.topic, []byte(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("HandleMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if store.Revision() != 0 {
		t.Errorf("store changed on bad input, revision = %d", store.Revision())
	}
}

func TestHandleMessage_PersistFailureKeepsStore(t *testing.T) {
	ing, store, repo := newTestIngester()
	repo.saveErr = errors.New("disk full")

	err := ing.HandleMessage("piholecard/state/sensor.x", []byte(`{"state":"1"}`))
	if err == nil {
		t.Fatal("HandleMessage() expected persist error")
	}
	if _, ok := store.Snapshot().States["sensor.x"]; !ok {
		t.Error("store should still hold the state")
	}
}

func TestHandleMessage_NoRepository(t *testing.T) {
	store := hass.NewStore()
	ing := New(store, nil, mqtt.NewTopics(""))

	if err := ing.HandleMessage("piholecard/state/sensor.x", []byte(`{"state":"1"}`)); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if err := ing.HandleMessage("piholecard/state/sensor.x", nil); err != nil {
		t.Fatalf("HandleMessage(remove) error = %v", err)
	}
	if err := ing.Restore(context.Background()); err != nil {
		t.Errorf("Restore() without repository error = %v", err)
	}
}

func TestRestore(t *testing.T) {
	ing, store, repo := newTestIngester()
	repo.snap.Devices["dev-a"] = hass.DeviceEntry{ID: "dev-a", Name: "Pi-hole"}
	repo.snap.States["sensor.x"] = hass.EntityState{EntityID: "sensor.x", State: "3"}

	if err := ing.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	snap := store.Snapshot()
	if snap.Devices["dev-a"].Name != "Pi-hole" || snap.States["sensor.x"].State != "3" {
		t.Errorf("snapshot = %+v", snap)
	}

	repo.loadErr = errors.New("locked")
	if err := ing.Restore(context.Background()); err == nil {
		t.Error("Restore() expected error")
	}
}

func TestSubscribe(t *testing.T) {
	ing, _, _ := newTestIngester()
	sub := &fakeSubscriber{}

	if err := ing.Subscribe(sub, 1); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	want := []string{
		"piholecard/registry/device/+",
		"piholecard/registry/entity/+",
		"piholecard/state/+",
	}
	if len(sub.topics) != len(want) {
		t.Fatalf("topics = %v", sub.topics)
	}
	for i := range want {
		if sub.topics[i] != want[i] {
			t.Errorf("topics[%d] = %q, want %q", i, sub.topics[i], want[i])
		}
	}

	failing := &fakeSubscriber{err: mqtt.ErrNotConnected}
	if err := ing.Subscribe(failing, 1); !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}
