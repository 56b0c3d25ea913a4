package hass

// StateOff is the state assigned to synthesised entities.
const StateOff = "off"

// ReadState looks up an entity's state in a snapshot.
//
// An empty entityID is never looked up. When the entity has no state and
// synthesize is true, a placeholder with state "off" and empty attributes
// is returned instead, so callers can always render optional entities.
//
// The returned state is a copy; the snapshot is not modified.
func ReadState(snap *Snapshot, entityID string, synthesize bool) (EntityState, bool) {
	if entityID == "" {
		return EntityState{}, false
	}

	if snap != nil {
		if st, ok := snap.States[entityID]; ok {
			cpy := st.DeepCopy()
			cpy.EntityID = entityID
			if cpy.Attributes == nil {
				cpy.Attributes = Attributes{}
			}
			return cpy, true
		}
	}

	if !synthesize {
		return EntityState{}, false
	}

	return EntityState{
		EntityID:   entityID,
		State:      StateOff,
		Attributes: Attributes{},
	}, true
}
