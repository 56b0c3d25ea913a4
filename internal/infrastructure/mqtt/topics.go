package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "piholecard"

// TopicKind identifies what an incoming topic carries.
type TopicKind int

// TopicKind constants.
const (
	TopicUnknown TopicKind = iota
	TopicState
	TopicRegistryEntity
	TopicRegistryDevice
	TopicCommand
)

// Topics provides builders for the service's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.NewTopics("piholecard")
//	topics.State("sensor.pi_hole_dns_queries_today")
//	// Returns: "piholecard/state/sensor.pi_hole_dns_queries_today"
type Topics struct {
	prefix string
}

// NewTopics returns a builder rooted at prefix. Trailing slashes are
// trimmed; an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// =============================================================================
// Host Topics
// =============================================================================

// State returns the retained state topic of an entity.
//
// Example: piholecard/state/switch.pi_hole_group_default
func (t Topics) State(entityID string) string {
	return fmt.Sprintf("%s/state/%s", t.Prefix(), entityID)
}

// RegistryEntity returns the retained entity registry topic.
//
// Example: piholecard/registry/entity/sensor.pi_hole_ads_blocked
func (t Topics) RegistryEntity(entityID string) string {
	return fmt.Sprintf("%s/registry/entity/%s", t.Prefix(), entityID)
}

// RegistryDevice returns the retained device registry topic.
//
// Example: piholecard/registry/device/3f2a9c
func (t Topics) RegistryDevice(deviceID string) string {
	return fmt.Sprintf("%s/registry/device/%s", t.Prefix(), deviceID)
}

// Command returns the topic for a service call.
//
// Example: piholecard/command/pi_hole_v6/disable
func (t Topics) Command(domain, service string) string {
	return fmt.Sprintf("%s/command/%s/%s", t.Prefix(), domain, service)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic.
//
// Example: piholecard/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.Prefix())
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllStates matches every entity state.
//
// Pattern: piholecard/state/+
func (t Topics) AllStates() string {
	return fmt.Sprintf("%s/state/+", t.Prefix())
}

// AllRegistryEntities matches every entity registry entry.
//
// Pattern: piholecard/registry/entity/+
func (t Topics) AllRegistryEntities() string {
	return fmt.Sprintf("%s/registry/entity/+", t.Prefix())
}

// AllRegistryDevices matches every device registry entry.
//
// Pattern: piholecard/registry/device/+
func (t Topics) AllRegistryDevices() string {
	return fmt.Sprintf("%s/registry/device/+", t.Prefix())
}

// AllCommands matches every service call.
//
// Pattern: piholecard/command/+/+
func (t Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+/+", t.Prefix())
}

// Parse classifies a concrete topic under this prefix. For state and
// registry topics id is the entity or device ID; for command topics it is
// "<domain>.<service>".
func (t Topics) Parse(topic string) (kind TopicKind, id string) {
	rest, ok := strings.CutPrefix(topic, t.Prefix()+"/")
	if !ok {
		return TopicUnknown, ""
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 2 && parts[0] == "state" && parts[1] != "":
		return TopicState, parts[1]
	case len(parts) == 3 && parts[0] == "registry" && parts[2] != "":
		switch parts[1] {
		case "entity":
			return TopicRegistryEntity, parts[2]
		case "device":
			return TopicRegistryDevice, parts[2]
		}
	case len(parts) == 3 && parts[0] == "command" && parts[1] != "" && parts[2] != "":
		return TopicCommand, parts[1] + "." + parts[2]
	}
	return TopicUnknown, ""
}
