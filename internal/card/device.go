package card

import (
	"github.com/nerrad567/pihole-card-core/internal/hass"
)

// DeviceRecord is the classified view of one Pi-hole appliance.
//
// Every collected, non-excluded entity sits in exactly one named slot or
// exactly one collection.
type DeviceRecord struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`

	DNSQueriesToday            *Entity `json:"dns_queries_today,omitempty"`
	DomainsBlocked             *Entity `json:"domains_blocked,omitempty"`
	AdsBlocked                 *Entity `json:"ads_blocked,omitempty"`
	AdsPercentageBlocked       *Entity `json:"ads_percentage_blocked,omitempty"`
	UniqueClients              *Entity `json:"dns_unique_clients,omitempty"`
	UniqueDomains              *Entity `json:"dns_unique_domains,omitempty"`
	Status                     *Entity `json:"status,omitempty"`
	RemainingUntilBlockingMode *Entity `json:"remaining_until_blocking_mode,omitempty"`
	LatestDataRefresh          *Entity `json:"latest_data_refresh,omitempty"`
	RefreshData                *Entity `json:"action_refresh_data,omitempty"`
	InfoMessageCount           *Entity `json:"info_message_count,omitempty"`
	PurgeDiagnosisMessages     *Entity `json:"action_ftl_purge_diagnosis_messages,omitempty"`

	Sensors  []*Entity `json:"sensors"`
	Controls []*Entity `json:"controls"`
	Switches []*Entity `json:"switches"`
	Updates  []*Entity `json:"updates"`
}

// newDeviceRecord returns a record with empty, non-nil collections.
func newDeviceRecord(id, name string) *DeviceRecord {
	return &DeviceRecord{
		DeviceID: id,
		Name:     name,
		Sensors:  []*Entity{},
		Controls: []*Entity{},
		Switches: []*Entity{},
		Updates:  []*Entity{},
	}
}

// slot returns the field backing a named role.
func (d *DeviceRecord) slot(r Role) **Entity {
	switch r {
	case RoleDNSQueriesToday:
		return &d.DNSQueriesToday
	case RoleDomainsBlocked:
		return &d.DomainsBlocked
	case RoleAdsBlocked:
		return &d.AdsBlocked
	case RoleAdsPercentageBlocked:
		return &d.AdsPercentageBlocked
	case RoleUniqueClients:
		return &d.UniqueClients
	case RoleUniqueDomains:
		return &d.UniqueDomains
	case RoleStatus:
		return &d.Status
	case RoleRemainingUntilBlocking:
		return &d.RemainingUntilBlockingMode
	case RoleLatestDataRefresh:
		return &d.LatestDataRefresh
	case RoleRefreshData:
		return &d.RefreshData
	case RoleInfoMessageCount:
		return &d.InfoMessageCount
	case RolePurgeDiagnosis:
		return &d.PurgeDiagnosisMessages
	case RoleNone:
		return nil
	default:
		return nil
	}
}

// Slot returns the entity in a named slot, or nil.
func (d *DeviceRecord) Slot(r Role) *Entity {
	if p := d.slot(r); p != nil {
		return *p
	}
	return nil
}

// collection returns the slice backing a bucket.
func (d *DeviceRecord) collection(b Bucket) *[]*Entity {
	switch b {
	case BucketSensors:
		return &d.Sensors
	case BucketControls:
		return &d.Controls
	case BucketSwitches:
		return &d.Switches
	case BucketUpdates:
		return &d.Updates
	default:
		return nil
	}
}

// place stores e according to p. A slot that is already taken keeps its
// first entity; later claimants fall back to their domain's collection, or
// to Sensors when the domain has none. It returns false only for a
// placement naming neither a role nor a collection.
func (d *DeviceRecord) place(e *Entity, p Placement) bool {
	if p.Role != RoleNone {
		if s := d.slot(p.Role); s != nil && *s == nil {
			*s = e
			return true
		}
		bucket, ok := BucketForDomain(e.Domain())
		if !ok {
			bucket = BucketSensors
		}
		p = Placement{Bucket: bucket}
	}

	c := d.collection(p.Bucket)
	if c == nil {
		return false
	}
	*c = append(*c, e)
	return true
}

// Entities returns every placed entity: filled slots in AllRoles order,
// then sensors, controls, switches and updates.
func (d *DeviceRecord) Entities() []*Entity {
	var out []*Entity
	for _, r := range AllRoles {
		if e := d.Slot(r); e != nil {
			out = append(out, e)
		}
	}
	out = append(out, d.Sensors...)
	out = append(out, d.Controls...)
	out = append(out, d.Switches...)
	out = append(out, d.Updates...)
	return out
}

// FindEntity looks up a placed entity by ID.
func (d *DeviceRecord) FindEntity(entityID string) (*Entity, bool) {
	for _, e := range d.Entities() {
		if e.EntityID == entityID {
			return e, true
		}
	}
	return nil, false
}

// clearCollections empties the generic collections.
func (d *DeviceRecord) clearCollections() {
	d.Sensors = []*Entity{}
	d.Controls = []*Entity{}
	d.Switches = []*Entity{}
	d.Updates = []*Entity{}
}

// AssembleDevice builds the record for one device.
//
// Processing order: collect, drop excluded entities, apply the configured
// order to the whole set, classify each entity once, then sort pending
// updates by title. Returns false if deviceID is not in the device registry.
func AssembleDevice(snap *hass.Snapshot, cfg *Config, deviceID string) (*DeviceRecord, bool) {
	dev, ok := snap.Device(deviceID)
	if !ok {
		return nil, false
	}
	if cfg == nil {
		cfg = &Config{}
	}

	name := dev.DisplayName()
	entities := CollectDeviceEntities(snap, deviceID, name)
	entities = FilterExcluded(entities, cfg.ExcludeEntities)
	entities = ApplyOrder(entities, cfg.EntityOrder)

	rec := newDeviceRecord(deviceID, name)
	for _, e := range entities {
		p, ok := Classify(e)
		if !ok {
			continue
		}
		if !rec.place(e, p) {
			rec.Sensors = append(rec.Sensors, e)
		}
	}
	rec.Updates = SortUpdates(rec.Updates)

	return rec, true
}
