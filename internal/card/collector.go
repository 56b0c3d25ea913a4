package card

import (
	"slices"
	"strings"

	"github.com/nerrad567/pihole-card-core/internal/hass"
)

// GlobalNoticeEntityID is the integration-level update entity. It belongs to
// no device but is shown on every device's card.
//
// TODO: move to Config once the integration exposes the notice per device.
const GlobalNoticeEntityID = "update.pi_hole_v6_integration_update"

// IsGlobalNotice reports whether entityID is the cross-device update notice.
func IsGlobalNotice(entityID string) bool {
	return entityID == GlobalNoticeEntityID
}

// CollectDeviceEntities returns every entity of deviceID that currently has
// a state, plus the global notice entity.
//
// Entities whose state is missing from the snapshot are dropped. Each label
// has deviceName removed unless the label is exactly deviceName.
//
// The result is sorted by entity ID so repeated calls agree; callers apply
// their own ordering afterwards.
func CollectDeviceEntities(snap *hass.Snapshot, deviceID, deviceName string) []*Entity {
	if snap == nil {
		return []*Entity{}
	}

	ids := make([]string, 0)
	for id, entry := range snap.Entities {
		if entry.DeviceID == deviceID || IsGlobalNotice(id) {
			ids = append(ids, id)
		}
	}
	// The notice may be known to the state machine only
	if _, registered := snap.Entities[GlobalNoticeEntityID]; !registered {
		if _, ok := snap.States[GlobalNoticeEntityID]; ok {
			ids = append(ids, GlobalNoticeEntityID)
		}
	}
	slices.Sort(ids)

	entities := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		e, ok := readEntity(snap, id)
		if !ok {
			continue
		}
		e.Name = cleanLabel(rawLabel(snap, e), deviceName)
		entities = append(entities, e)
	}
	return entities
}

// rawLabel returns the friendly name of an entity, falling back to the
// registry name and finally the entity ID.
func rawLabel(snap *hass.Snapshot, e *Entity) string {
	if name := e.Attributes.String(hass.AttrFriendlyName); name != "" {
		return name
	}
	if entry, ok := snap.Entities[e.EntityID]; ok && entry.Name != "" {
		return entry.Name
	}
	return e.EntityID
}

// cleanLabel strips the device name from a label, e.g.
// "Pi-hole Status" on device "Pi-hole" becomes "Status".
func cleanLabel(label, deviceName string) string {
	if deviceName == "" || label == deviceName {
		return label
	}
	return strings.TrimSpace(strings.Replace(label, deviceName, "", 1))
}
