package card

import (
	"cmp"
	"slices"
	"strings"
)

// FilterExcluded removes entities whose ID is exactly in exclude.
// Matching is case-sensitive with no prefix or pattern semantics.
// The input slice is not modified.
func FilterExcluded(entities []*Entity, exclude []string) []*Entity {
	out := make([]*Entity, 0, len(entities))
	if len(exclude) == 0 {
		return append(out, entities...)
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	for _, e := range entities {
		if _, skip := excluded[e.EntityID]; skip {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ApplyOrder sorts entities by their position in order. Entities not in
// order keep their relative input order and follow all listed entities.
// The input slice is not modified.
func ApplyOrder(entities []*Entity, order []string) []*Entity {
	out := slices.Clone(entities)
	if out == nil {
		out = []*Entity{}
	}
	if len(order) == 0 {
		return out
	}

	rank := make(map[string]int, len(order))
	for i, id := range order {
		// First occurrence wins for duplicated ids
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}
	key := func(e *Entity) int {
		if r, ok := rank[e.EntityID]; ok {
			return r
		}
		return len(order)
	}

	slices.SortStableFunc(out, func(a, b *Entity) int {
		return cmp.Compare(key(a), key(b))
	})
	return out
}

// SortUpdates orders pending updates by title, ignoring case. Entities
// without a title sort last and keep their relative order.
// The input slice is not modified.
func SortUpdates(updates []*Entity) []*Entity {
	out := slices.Clone(updates)
	if out == nil {
		out = []*Entity{}
	}

	slices.SortStableFunc(out, func(a, b *Entity) int {
		ta, tb := a.Title(), b.Title()
		switch {
		case ta == "" && tb == "":
			return 0
		case ta == "":
			return 1
		case tb == "":
			return -1
		default:
			return cmp.Or(
				cmp.Compare(strings.ToLower(ta), strings.ToLower(tb)),
				cmp.Compare(ta, tb),
			)
		}
	})
	return out
}
