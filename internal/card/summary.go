package card

import (
	"strconv"
	"time"
)

// Blocking states reported by the status slot.
const (
	statusOn  = "on"
	statusOff = "off"
)

// Summary is the header badge: how many devices are blocking.
type Summary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Paused    int `json:"paused"`
	Unknown   int `json:"unknown"`
	Remaining int `json:"remaining_seconds"`
}

// AllActive reports whether every device is blocking.
func (s Summary) AllActive() bool {
	return s.Total > 0 && s.Active == s.Total
}

// Summarize counts device blocking states. The remaining pause time comes
// from the primary device only.
func Summarize(setup *SetupRecord) Summary {
	var sum Summary
	if setup == nil {
		return sum
	}

	sum.Total = len(setup.Devices)
	for _, d := range setup.Devices {
		switch {
		case d.Status == nil:
			sum.Unknown++
		case d.Status.State == statusOn:
			sum.Active++
		case d.Status.State == statusOff:
			sum.Paused++
		default:
			sum.Unknown++
		}
	}

	if p := setup.Primary(); p != nil && p.RemainingUntilBlockingMode != nil {
		sum.Remaining = parseSeconds(p.RemainingUntilBlockingMode.State)
	}
	return sum
}

// NumericState parses an entity state as a float.
// Non-numeric states such as "unavailable" report false.
func NumericState(e *Entity) (float64, bool) {
	if e == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(e.State, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseSeconds reads a countdown state as whole seconds. It accepts a
// plain number or a duration string; anything else is 0.
func parseSeconds(state string) int {
	if v, err := strconv.ParseFloat(state, 64); err == nil && v > 0 {
		return int(v)
	}
	if d, err := time.ParseDuration(state); err == nil && d > 0 {
		return int(d / time.Second)
	}
	return 0
}
