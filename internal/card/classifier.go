package card

import "fmt"

// Role identifies a named, single-valued slot of a DeviceRecord.
type Role int

// Role constants. RoleNone means "no named slot".
const (
	RoleNone Role = iota
	RoleDNSQueriesToday
	RoleDomainsBlocked
	RoleAdsBlocked
	RoleAdsPercentageBlocked
	RoleUniqueClients
	RoleUniqueDomains
	RoleStatus
	RoleRemainingUntilBlocking
	RoleLatestDataRefresh
	RoleRefreshData
	RoleInfoMessageCount
	RolePurgeDiagnosis
)

// AllRoles lists every named slot in display order.
var AllRoles = []Role{
	RoleDNSQueriesToday,
	RoleDomainsBlocked,
	RoleAdsBlocked,
	RoleAdsPercentageBlocked,
	RoleUniqueClients,
	RoleUniqueDomains,
	RoleStatus,
	RoleRemainingUntilBlocking,
	RoleLatestDataRefresh,
	RoleRefreshData,
	RoleInfoMessageCount,
	RolePurgeDiagnosis,
}

// roleTags maps backend translation keys to slots.
// Legacy keys from older integration releases map to the same slot.
var roleTags = map[string]Role{
	"dns_queries_today":                   RoleDNSQueriesToday,
	"domains_blocked":                     RoleDomainsBlocked,
	"domains_being_blocked":               RoleDomainsBlocked,
	"ads_blocked":                         RoleAdsBlocked,
	"ads_blocked_today":                   RoleAdsBlocked,
	"ads_percentage_blocked":              RoleAdsPercentageBlocked,
	"ads_percentage_blocked_today":        RoleAdsPercentageBlocked,
	"dns_unique_clients":                  RoleUniqueClients,
	"dns_unique_domains":                  RoleUniqueDomains,
	"status":                              RoleStatus,
	"remaining_until_blocking_mode":       RoleRemainingUntilBlocking,
	"latest_data_refresh":                 RoleLatestDataRefresh,
	"action_refresh_data":                 RoleRefreshData,
	"info_message_count":                  RoleInfoMessageCount,
	"action_ftl_purge_diagnosis_messages": RolePurgeDiagnosis,
}

// String returns the slot's JSON name.
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleDNSQueriesToday:
		return "dns_queries_today"
	case RoleDomainsBlocked:
		return "domains_blocked"
	case RoleAdsBlocked:
		return "ads_blocked"
	case RoleAdsPercentageBlocked:
		return "ads_percentage_blocked"
	case RoleUniqueClients:
		return "dns_unique_clients"
	case RoleUniqueDomains:
		return "dns_unique_domains"
	case RoleStatus:
		return "status"
	case RoleRemainingUntilBlocking:
		return "remaining_until_blocking_mode"
	case RoleLatestDataRefresh:
		return "latest_data_refresh"
	case RoleRefreshData:
		return "action_refresh_data"
	case RoleInfoMessageCount:
		return "info_message_count"
	case RolePurgeDiagnosis:
		return "action_ftl_purge_diagnosis_messages"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// RoleForTag returns the slot for a translation key.
func RoleForTag(tag string) (Role, bool) {
	if tag == "" {
		return RoleNone, false
	}
	r, ok := roleTags[tag]
	return r, ok
}

// Bucket identifies one of a DeviceRecord's generic collections.
type Bucket int

// Bucket constants.
const (
	BucketNone Bucket = iota
	BucketSensors
	BucketControls
	BucketSwitches
	BucketUpdates
)

// String returns the collection's JSON name.
func (b Bucket) String() string {
	switch b {
	case BucketSensors:
		return "sensors"
	case BucketControls:
		return "controls"
	case BucketSwitches:
		return "switches"
	case BucketUpdates:
		return "updates"
	default:
		return "none"
	}
}

// BucketForDomain routes an entity domain to a generic collection.
func BucketForDomain(domain string) (Bucket, bool) {
	switch domain {
	case "button":
		return BucketControls, true
	case "sensor":
		return BucketSensors, true
	case "switch":
		return BucketSwitches, true
	case "update":
		return BucketUpdates, true
	default:
		return BucketNone, false
	}
}

// Placement is where the classifier puts an entity: a named slot when Role
// is set, otherwise a generic collection.
type Placement struct {
	Role   Role
	Bucket Bucket
}

// Classify places an entity. The role tag wins; otherwise the entity ID's
// domain selects a generic collection. Entities matching neither are
// reported as no match and ignored by the caller.
func Classify(e *Entity) (Placement, bool) {
	if e == nil {
		return Placement{}, false
	}
	if role, ok := RoleForTag(e.TranslationKey); ok {
		return Placement{Role: role}, true
	}
	if bucket, ok := BucketForDomain(e.Domain()); ok {
		return Placement{Bucket: bucket}, true
	}
	return Placement{}, false
}
