package card

import (
	"context"
	"time"
)

// Integration service domain used for blocking control.
const integrationDomain = "pi_hole_v6"

// Target addresses a command at a device or an entity.
type Target struct {
	DeviceID string `json:"device_id,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

// Command is a backend service call.
type Command struct {
	Domain  string         `json:"domain"`
	Service string         `json:"service"`
	Target  Target         `json:"target"`
	Data    map[string]any `json:"data,omitempty"`
}

// Commander issues commands. Calls are fire-and-forget: the outcome is
// neither awaited nor reported back to the card.
type Commander interface {
	Call(ctx context.Context, cmd Command)
}

// Actions translates user interactions into commands.
type Actions struct {
	commander Commander
}

// NewActions creates an Actions issuing through commander.
func NewActions(commander Commander) *Actions {
	return &Actions{commander: commander}
}

// Toggle flips a switch entity.
func (a *Actions) Toggle(ctx context.Context, e *Entity) error {
	return a.entityCall(ctx, e, "switch", "toggle")
}

// Press presses a button entity.
func (a *Actions) Press(ctx context.Context, e *Entity) error {
	return a.entityCall(ctx, e, "button", "press")
}

// InstallUpdate installs a pending update entity.
func (a *Actions) InstallUpdate(ctx context.Context, e *Entity) error {
	return a.entityCall(ctx, e, "update", "install")
}

// Pause disables blocking on every device of the setup for d.
// Returns the number of commands issued.
func (a *Actions) Pause(ctx context.Context, setup *SetupRecord, d time.Duration) (int, error) {
	if d < time.Second {
		return 0, ErrInvalidDuration
	}
	return a.deviceCall(ctx, setup, "disable", map[string]any{
		"duration": int(d / time.Second),
	})
}

// Resume re-enables blocking on every device of the setup.
// Returns the number of commands issued.
func (a *Actions) Resume(ctx context.Context, setup *SetupRecord) (int, error) {
	return a.deviceCall(ctx, setup, "enable", nil)
}

// Refresh presses every device's refresh button. Devices without one are
// skipped. Returns the number of commands issued.
func (a *Actions) Refresh(ctx context.Context, setup *SetupRecord) (int, error) {
	return a.slotPress(ctx, setup, RoleRefreshData)
}

// PurgeDiagnosis presses every device's purge-diagnosis button.
// Returns the number of commands issued.
func (a *Actions) PurgeDiagnosis(ctx context.Context, setup *SetupRecord) (int, error) {
	return a.slotPress(ctx, setup, RolePurgeDiagnosis)
}

// entityCall issues domain.service at e after checking e's domain.
func (a *Actions) entityCall(ctx context.Context, e *Entity, domain, service string) error {
	if e == nil || e.EntityID == "" {
		return ErrNoTarget
	}
	if e.Domain() != domain {
		return ErrUnsupportedEntity
	}
	a.commander.Call(ctx, Command{
		Domain:  domain,
		Service: service,
		Target:  Target{EntityID: e.EntityID},
	})
	return nil
}

// deviceCall issues an integration service at every device.
func (a *Actions) deviceCall(ctx context.Context, setup *SetupRecord, service string, data map[string]any) (int, error) {
	if setup == nil || len(setup.Devices) == 0 {
		return 0, ErrNoTarget
	}
	for _, d := range setup.Devices {
		a.commander.Call(ctx, Command{
			Domain:  integrationDomain,
			Service: service,
			Target:  Target{DeviceID: d.DeviceID},
			Data:    data,
		})
	}
	return len(setup.Devices), nil
}

// slotPress presses the button in role's slot on every device that has one.
func (a *Actions) slotPress(ctx context.Context, setup *SetupRecord, role Role) (int, error) {
	if setup == nil {
		return 0, ErrNoTarget
	}
	issued := 0
	for _, d := range setup.Devices {
		e := d.Slot(role)
		if e == nil {
			continue
		}
		if err := a.Press(ctx, e); err != nil {
			continue
		}
		issued++
	}
	if issued == 0 {
		return 0, ErrNoTarget
	}
	return issued, nil
}
