package hass

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository defines the interface for snapshot persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// SaveDevice inserts or replaces a device registry entry.
	SaveDevice(ctx context.Context, d DeviceEntry) error

	// DeleteDevice removes a device registry entry.
	// Returns ErrDeviceNotFound if the device does not exist.
	DeleteDevice(ctx context.Context, id string) error

	// SaveEntity inserts or replaces an entity registry entry.
	SaveEntity(ctx context.Context, e EntityEntry) error

	// DeleteEntity removes an entity registry entry.
	// Returns ErrEntityNotFound if the entity does not exist.
	DeleteEntity(ctx context.Context, entityID string) error

	// SaveState inserts or replaces the last known state of an entity.
	SaveState(ctx context.Context, st EntityState) error

	// DeleteState removes the last known state of an entity.
	// Returns ErrStateNotFound if no state is stored.
	DeleteState(ctx context.Context, entityID string) error

	// LoadSnapshot reads every table into a new Snapshot.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with migrations applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveDevice inserts or replaces a device registry entry.
func (r *SQLiteRepository) SaveDevice(ctx context.Context, d DeviceEntry) error {
	if d.ID == "" {
		return ErrInvalidDeviceID
	}

	query := `
		INSERT INTO devices (id, name, name_by_user, manufacturer, model, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			name_by_user = excluded.name_by_user,
			manufacturer = excluded.manufacturer,
			model = excluded.model,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.Name, d.NameByUser, d.Manufacturer, d.Model,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving device: %w", err)
	}
	return nil
}

// DeleteDevice removes a device registry entry.
func (r *SQLiteRepository) DeleteDevice(ctx context.Context, id string) error {
	return r.deleteRow(ctx, `DELETE FROM devices WHERE id = ?`, id, ErrDeviceNotFound)
}

// SaveEntity inserts or replaces an entity registry entry.
func (r *SQLiteRepository) SaveEntity(ctx context.Context, e EntityEntry) error {
	if err := ValidateEntityID(e.EntityID); err != nil {
		return err
	}

	query := `
		INSERT INTO entities (entity_id, device_id, platform, translation_key, name, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			device_id = excluded.device_id,
			platform = excluded.platform,
			translation_key = excluded.translation_key,
			name = excluded.name,
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		e.EntityID, nullableString(e.DeviceID), e.Platform, e.TranslationKey, e.Name,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving entity: %w", err)
	}
	return nil
}

// DeleteEntity removes an entity registry entry.
func (r *SQLiteRepository) DeleteEntity(ctx context.Context, entityID string) error {
	return r.deleteRow(ctx, `DELETE FROM entities WHERE entity_id = ?`, entityID, ErrEntityNotFound)
}

// SaveState inserts or replaces the last known state of an entity.
func (r *SQLiteRepository) SaveState(ctx context.Context, st EntityState) error {
	if err := ValidateEntityID(st.EntityID); err != nil {
		return err
	}

	attrs := st.Attributes
	if attrs == nil {
		attrs = Attributes{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshalling attributes: %w", err)
	}

	query := `
		INSERT INTO states (entity_id, state, attributes, last_changed, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			state = excluded.state,
			attributes = excluded.attributes,
			last_changed = excluded.last_changed,
			last_updated = excluded.last_updated`

	_, err = r.db.ExecContext(ctx, query,
		st.EntityID, st.State, string(attrsJSON),
		nullableTime(st.LastChanged), nullableTime(st.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// DeleteState removes the last known state of an entity.
func (r *SQLiteRepository) DeleteState(ctx context.Context, entityID string) error {
	return r.deleteRow(ctx, `DELETE FROM states WHERE entity_id = ?`, entityID, ErrStateNotFound)
}

// LoadSnapshot reads every table into a new Snapshot.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := NewSnapshot()

	if err := r.loadDevices(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadEntities(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadStates(ctx, snap); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *SQLiteRepository) loadDevices(ctx context.Context, snap *Snapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, name_by_user, manufacturer, model FROM devices`)
	if err != nil {
		return fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DeviceEntry
		if err := rows.Scan(&d.ID, &d.Name, &d.NameByUser, &d.Manufacturer, &d.Model); err != nil {
			return fmt.Errorf("scanning device: %w", err)
		}
		snap.Devices[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating devices: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadEntities(ctx context.Context, snap *Snapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entity_id, device_id, platform, translation_key, name FROM entities`)
	if err != nil {
		return fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e EntityEntry
		var deviceID sql.NullString
		if err := rows.Scan(&e.EntityID, &deviceID, &e.Platform, &e.TranslationKey, &e.Name); err != nil {
			return fmt.Errorf("scanning entity: %w", err)
		}
		e.DeviceID = deviceID.String
		snap.Entities[e.EntityID] = e
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating entities: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadStates(ctx context.Context, snap *Snapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entity_id, state, attributes, last_changed, last_updated FROM states`)
	if err != nil {
		return fmt.Errorf("querying states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st EntityState
		var attrsJSON string
		var lastChanged, lastUpdated sql.NullString
		if err := rows.Scan(&st.EntityID, &st.State, &attrsJSON, &lastChanged, &lastUpdated); err != nil {
			return fmt.Errorf("scanning state: %w", err)
		}
		if err := json.Unmarshal([]byte(attrsJSON), &st.Attributes); err != nil {
			return fmt.Errorf("unmarshalling attributes for %s: %w", st.EntityID, err)
		}
		st.LastChanged = parseTime(lastChanged)
		st.LastUpdated = parseTime(lastUpdated)
		snap.States[st.EntityID] = st
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating states: %w", err)
	}
	return nil
}

// deleteRow runs a single-key DELETE and maps "no rows" to notFound.
func (r *SQLiteRepository) deleteRow(ctx context.Context, query, key string, notFound error) error {
	result, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// nullableString converts an empty string to NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullableTime converts a zero time to NULL, otherwise RFC3339Nano.
func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

// parseTime parses a stored RFC3339 timestamp; invalid or NULL yields zero.
func parseTime(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
