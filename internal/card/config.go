package card

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Section names a region of the card that can be hidden or collapsed.
type Section string

// Section constants.
const (
	SectionHeader     Section = "header"
	SectionStatistics Section = "statistics"
	SectionSensors    Section = "sensors"
	SectionControls   Section = "controls"
	SectionSwitches   Section = "switches"
	SectionActions    Section = "actions"
	SectionFooter     Section = "footer"
)

// AllSections lists every section in display order.
var AllSections = []Section{
	SectionHeader,
	SectionStatistics,
	SectionSensors,
	SectionControls,
	SectionSwitches,
	SectionActions,
	SectionFooter,
}

// defaultPauseDurations are offered when the config lists none.
var defaultPauseDurations = []time.Duration{
	60 * time.Second,
	5 * time.Minute,
	15 * time.Minute,
}

// Config is the user-authored card configuration.
//
// It is read-only to the assembly pipeline.
type Config struct {
	DeviceID          DeviceIDs       `yaml:"device_id" json:"device_id"`
	Title             string          `yaml:"title,omitempty" json:"title,omitempty"`
	Icon              string          `yaml:"icon,omitempty" json:"icon,omitempty"`
	ExcludeSections   []Section       `yaml:"exclude_sections,omitempty" json:"exclude_sections,omitempty"`
	CollapsedSections []Section       `yaml:"collapsed_sections,omitempty" json:"collapsed_sections,omitempty"`
	ExcludeEntities   []string        `yaml:"exclude_entities,omitempty" json:"exclude_entities,omitempty"`
	EntityOrder       []string        `yaml:"entity_order,omitempty" json:"entity_order,omitempty"`
	Pause             []PauseDuration `yaml:"pause_durations,omitempty" json:"pause_durations,omitempty"`
}

// Validate checks section names and pause durations.
func (c *Config) Validate() error {
	var errs []string

	for _, s := range c.ExcludeSections {
		if !slices.Contains(AllSections, s) {
			errs = append(errs, fmt.Sprintf("exclude_sections: unknown section %q", s))
		}
	}
	for _, s := range c.CollapsedSections {
		if !slices.Contains(AllSections, s) {
			errs = append(errs, fmt.Sprintf("collapsed_sections: unknown section %q", s))
		}
	}
	for i, p := range c.Pause {
		if p <= 0 {
			errs = append(errs, fmt.Sprintf("pause_durations[%d]: must be positive", i))
		}
	}
	for i, id := range c.DeviceID {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, fmt.Sprintf("device_id[%d]: must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// ShowSection reports whether a section is not excluded.
func (c *Config) ShowSection(s Section) bool {
	return !slices.Contains(c.ExcludeSections, s)
}

// IsCollapsed reports whether a section starts collapsed.
func (c *Config) IsCollapsed(s Section) bool {
	return slices.Contains(c.CollapsedSections, s)
}

// PauseDurations returns the configured pause choices, or the defaults.
func (c *Config) PauseDurations() []time.Duration {
	if len(c.Pause) == 0 {
		return slices.Clone(defaultPauseDurations)
	}
	out := make([]time.Duration, len(c.Pause))
	for i, p := range c.Pause {
		out[i] = time.Duration(p)
	}
	return out
}

// DeviceIDs is one or many device identifiers. It decodes from either a
// single string or a list of strings.
type DeviceIDs []string

// List returns the identifiers, dropping empty entries.
func (d DeviceIDs) List() []string {
	out := make([]string, 0, len(d))
	for _, id := range d {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// UnmarshalYAML accepts a scalar or a sequence.
func (d *DeviceIDs) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*d = nil
			return nil
		}
		*d = DeviceIDs{value.Value}
		return nil
	case yaml.SequenceNode:
		var ids []string
		if err := value.Decode(&ids); err != nil {
			return fmt.Errorf("device_id: %w", err)
		}
		*d = ids
		return nil
	default:
		return fmt.Errorf("%w: device_id must be a string or a list", ErrInvalidConfig)
	}
}

// UnmarshalJSON accepts a string or an array of strings.
func (d *DeviceIDs) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*d = nil
		} else {
			*d = DeviceIDs{single}
		}
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("%w: device_id must be a string or a list", ErrInvalidConfig)
	}
	*d = ids
	return nil
}

// PauseDuration is a pause choice. It decodes from a number of seconds or
// a Go duration string such as "5m".
type PauseDuration time.Duration

// Seconds returns the duration in whole seconds.
func (p PauseDuration) Seconds() int {
	return int(time.Duration(p) / time.Second)
}

// String formats the duration like time.Duration.
func (p PauseDuration) String() string {
	return time.Duration(p).String()
}

// MarshalJSON encodes the duration as seconds.
func (p PauseDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Seconds())
}

// UnmarshalJSON accepts seconds or a duration string.
func (p *PauseDuration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pause duration: %w", err)
	}
	switch v := raw.(type) {
	case float64:
		d, err := pauseSeconds(v)
		if err != nil {
			return err
		}
		*p = d
		return nil
	case string:
		d, err := ParsePauseDuration(v)
		if err != nil {
			return err
		}
		*p = d
		return nil
	default:
		return fmt.Errorf("%w: pause duration must be seconds or a duration string", ErrInvalidConfig)
	}
}

// UnmarshalYAML accepts seconds or a duration string.
func (p *PauseDuration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: pause duration must be a scalar", ErrInvalidConfig)
	}
	d, err := ParsePauseDuration(value.Value)
	if err != nil {
		return err
	}
	*p = d
	return nil
}

// ParsePauseDuration parses "300" or "5.5" (seconds) or "5m".
func ParsePauseDuration(s string) (PauseDuration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return pauseSeconds(secs)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid pause duration %q", ErrInvalidConfig, s)
	}
	return PauseDuration(d), nil
}

// maxPauseSeconds is the largest magnitude a time.Duration can hold.
const maxPauseSeconds = float64(math.MaxInt64 / int64(time.Second))

// pauseSeconds converts a number of seconds, rejecting values that are not
// finite or do not fit a time.Duration.
func pauseSeconds(secs float64) (PauseDuration, error) {
	if math.IsNaN(secs) || math.Abs(secs) > maxPauseSeconds {
		return 0, fmt.Errorf("%w: pause duration %v seconds out of range", ErrInvalidConfig, secs)
	}
	return PauseDuration(time.Duration(secs * float64(time.Second))), nil
}
