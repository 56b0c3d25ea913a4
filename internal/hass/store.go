package hass

import (
	"sync"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ChangeFunc is called after the store content changed.
// revision increases by one on every change.
type ChangeFunc func(revision uint64)

// Store holds the latest host snapshot.
//
// Writers are the ingest subscriber and the startup loader; readers take
// deep copies via Snapshot() so an assembly pass never observes a write.
//
// All public methods are thread-safe.
type Store struct {
	snap     *Snapshot
	revision uint64
	mu       sync.RWMutex

	listeners  []ChangeFunc
	listenerMu sync.RWMutex

	logger Logger
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		snap:   NewSnapshot(),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// OnChange registers a callback invoked after every change.
// Callbacks run synchronously on the writer's goroutine and must not block.
func (s *Store) OnChange(fn ChangeFunc) {
	s.listenerMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenerMu.Unlock()
}

// Snapshot returns a deep copy of the current content.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.DeepCopy()
}

// Revision returns the current change counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Load replaces the whole content with a copy of snap.
func (s *Store) Load(snap *Snapshot) {
	cpy := snap.DeepCopy()
	if cpy == nil {
		cpy = NewSnapshot()
	}
	s.update(func(cur *Snapshot) bool {
		*cur = *cpy
		return true
	})
	s.logger.Info("snapshot loaded",
		"states", len(cpy.States),
		"entities", len(cpy.Entities),
		"devices", len(cpy.Devices),
	)
}

// SetState records an entity's state. The state is copied.
func (s *Store) SetState(st EntityState) error {
	if err := ValidateEntityID(st.EntityID); err != nil {
		return err
	}
	cpy := st.DeepCopy()
	s.update(func(cur *Snapshot) bool {
		cur.States[cpy.EntityID] = cpy
		return true
	})
	return nil
}

// RemoveState forgets an entity's state.
func (s *Store) RemoveState(entityID string) {
	s.update(func(cur *Snapshot) bool {
		if _, ok := cur.States[entityID]; !ok {
			return false
		}
		delete(cur.States, entityID)
		return true
	})
}

// SetEntity records an entity registry entry.
func (s *Store) SetEntity(e EntityEntry) error {
	if err := ValidateEntityID(e.EntityID); err != nil {
		return err
	}
	s.update(func(cur *Snapshot) bool {
		if old, ok := cur.Entities[e.EntityID]; ok && old == e {
			return false
		}
		cur.Entities[e.EntityID] = e
		return true
	})
	return nil
}

// RemoveEntity forgets an entity registry entry.
func (s *Store) RemoveEntity(entityID string) {
	s.update(func(cur *Snapshot) bool {
		if _, ok := cur.Entities[entityID]; !ok {
			return false
		}
		delete(cur.Entities, entityID)
		return true
	})
}

// SetDevice records a device registry entry.
func (s *Store) SetDevice(d DeviceEntry) error {
	if d.ID == "" {
		return ErrInvalidDeviceID
	}
	s.update(func(cur *Snapshot) bool {
		if old, ok := cur.Devices[d.ID]; ok && old == d {
			return false
		}
		cur.Devices[d.ID] = d
		return true
	})
	return nil
}

// RemoveDevice forgets a device registry entry.
func (s *Store) RemoveDevice(id string) {
	s.update(func(cur *Snapshot) bool {
		if _, ok := cur.Devices[id]; !ok {
			return false
		}
		delete(cur.Devices, id)
		return true
	})
}

// update applies fn under the write lock and notifies listeners if fn
// reports a change.
func (s *Store) update(fn func(cur *Snapshot) bool) {
	s.mu.Lock()
	changed := fn(s.snap)
	if changed {
		s.revision++
	}
	rev := s.revision
	s.mu.Unlock()

	if !changed {
		return
	}

	s.listenerMu.RLock()
	listeners := make([]ChangeFunc, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.RUnlock()

	for _, fn := range listeners {
		fn(rev)
	}
}
