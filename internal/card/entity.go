package card

import (
	"github.com/nerrad567/pihole-card-core/internal/hass"
)

// Entity is a normalised entity as used by the card.
//
// EntityID has the form "<domain>.<name>" and is unique within a device.
// TranslationKey is the backend's role tag and may be empty.
type Entity struct {
	EntityID       string          `json:"entity_id"`
	State          string          `json:"state"`
	Attributes     hass.Attributes `json:"attributes"`
	TranslationKey string          `json:"translation_key,omitempty"`
	Name           string          `json:"name"`
}

// Domain returns the structural category of the entity ID ("sensor", "switch", ...).
func (e *Entity) Domain() string {
	return hass.EntityDomain(e.EntityID)
}

// Title returns the "title" attribute, or "" if absent.
func (e *Entity) Title() string {
	return e.Attributes.String(hass.AttrTitle)
}

// clone returns an independent copy.
func (e *Entity) clone() *Entity {
	if e == nil {
		return nil
	}
	cpy := *e
	st := hass.EntityState{Attributes: e.Attributes}.DeepCopy()
	cpy.Attributes = st.Attributes
	return &cpy
}

// readEntity resolves an entity's state without synthesis.
func readEntity(snap *hass.Snapshot, entityID string) (*Entity, bool) {
	st, ok := hass.ReadState(snap, entityID, false)
	if !ok {
		return nil, false
	}

	e := &Entity{
		EntityID:   st.EntityID,
		State:      st.State,
		Attributes: st.Attributes,
	}
	if entry, ok := snap.Entities[entityID]; ok {
		e.TranslationKey = entry.TranslationKey
	}
	return e, true
}
