package card

import (
	"reflect"
	"testing"

	"github.com/nerrad567/pihole-card-core/internal/hass"
)

func TestAssembleDevice_SlotAndSensor(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "sensor.dns_queries_today", "dns_queries_today", "10000", nil).
		entity("dev1", "sensor.unmapped_metric", "", "5", nil).
		build()

	rec, ok := AssembleDevice(snap, &Config{}, "dev1")
	if !ok {
		t.Fatal("AssembleDevice() returned false")
	}

	if rec.DNSQueriesToday == nil || rec.DNSQueriesToday.EntityID != "sensor.dns_queries_today" {
		t.Fatalf("DNSQueriesToday = %+v", rec.DNSQueriesToday)
	}
	if rec.DNSQueriesToday.State != "10000" {
		t.Errorf("DNSQueriesToday.State = %q", rec.DNSQueriesToday.State)
	}
	if !reflect.DeepEqual(ids(rec.Sensors), []string{"sensor.unmapped_metric"}) {
		t.Errorf("Sensors = %v", ids(rec.Sensors))
	}
	if rec.DeviceID != "dev1" || rec.Name != "Pi-hole" {
		t.Errorf("identity = %q/%q", rec.DeviceID, rec.Name)
	}
}

func TestAssembleDevice_UnknownDevice(t *testing.T) {
	snap := newSnapshot().device("dev1", "A").build()

	if rec, ok := AssembleDevice(snap, &Config{}, "nope"); ok || rec != nil {
		t.Errorf("AssembleDevice(nope) = %v, %v; want nil, false", rec, ok)
	}
	if _, ok := AssembleDevice(nil, &Config{}, "dev1"); ok {
		t.Error("AssembleDevice(nil snapshot) should fail")
	}
}

func TestAssembleDevice_UsesUserName(t *testing.T) {
	snap := newSnapshot().build()
	snap.Devices["dev1"] = hass.DeviceEntry{ID: "dev1", Name: "Pi-hole", NameByUser: "Basement DNS"}

	rec, ok := AssembleDevice(snap, nil, "dev1")
	if !ok {
		t.Fatal("AssembleDevice() returned false")
	}
	if rec.Name != "Basement DNS" {
		t.Errorf("Name = %q, want %q", rec.Name, "Basement DNS")
	}
}

func TestAssembleDevice_ExcludedNeverClassified(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "binary_sensor.pi_hole_status", "status", "on", nil).
		entity("dev1", "button.pi_hole_flush_logs", "", "unknown", nil).
		entity("dev1", "switch.pi_hole_group_default", "", "on", nil).
		build()

	cfg := &Config{ExcludeEntities: []string{"binary_sensor.pi_hole_status", "button.pi_hole_flush_logs"}}
	rec, _ := AssembleDevice(snap, cfg, "dev1")

	if rec.Status != nil {
		t.Errorf("excluded status was placed: %+v", rec.Status)
	}
	if len(rec.Controls) != 0 {
		t.Errorf("Controls = %v, want empty", ids(rec.Controls))
	}
	for _, e := range rec.Entities() {
		for _, ex := range cfg.ExcludeEntities {
			if e.EntityID == ex {
				t.Errorf("excluded entity %s present", ex)
			}
		}
	}
	if !reflect.DeepEqual(ids(rec.Switches), []string{"switch.pi_hole_group_default"}) {
		t.Errorf("Switches = %v", ids(rec.Switches))
	}
}

func TestAssembleDevice_OrderAppliesToCollections(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "button.flush_logs", "", "unknown", nil).
		entity("dev1", "button.run_gravity", "", "unknown", nil).
		build()

	rec, _ := AssembleDevice(snap, &Config{EntityOrder: []string{"button.run_gravity"}}, "dev1")

	want := []string{"button.run_gravity", "button.flush_logs"}
	if !reflect.DeepEqual(ids(rec.Controls), want) {
		t.Errorf("Controls = %v, want %v", ids(rec.Controls), want)
	}
}

func TestAssembleDevice_UpdatesSortedByTitle(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "update.pi_hole_ftl", "", "on", hass.Attributes{"title": "FTL"}).
		entity("dev1", "update.pi_hole_unknown", "", "on", nil).
		entity("dev1", "update.pi_hole_core", "", "on", hass.Attributes{"title": "Core"}).
		build()

	rec, _ := AssembleDevice(snap, nil, "dev1")

	want := []string{"update.pi_hole_core", "update.pi_hole_ftl", "update.pi_hole_unknown"}
	if !reflect.DeepEqual(ids(rec.Updates), want) {
		t.Errorf("Updates = %v, want %v", ids(rec.Updates), want)
	}
}

func TestAssembleDevice_DuplicateRoleFallsBack(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "sensor.a_ads_blocked_today", "ads_blocked_today", "1", nil).
		entity("dev1", "sensor.b_ads_blocked", "ads_blocked", "2", nil).
		build()

	rec, _ := AssembleDevice(snap, nil, "dev1")

	if rec.AdsBlocked == nil || rec.AdsBlocked.EntityID != "sensor.a_ads_blocked_today" {
		t.Fatalf("AdsBlocked = %+v", rec.AdsBlocked)
	}
	if !reflect.DeepEqual(ids(rec.Sensors), []string{"sensor.b_ads_blocked"}) {
		t.Errorf("Sensors = %v", ids(rec.Sensors))
	}
}

func TestAssembleDevice_DuplicateRoleWithoutBucket(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "binary_sensor.a_status", "status", "on", nil).
		entity("dev1", "binary_sensor.b_status", "status", "off", nil).
		build()

	rec, _ := AssembleDevice(snap, nil, "dev1")

	if rec.Status == nil || rec.Status.EntityID != "binary_sensor.a_status" {
		t.Fatalf("Status = %+v", rec.Status)
	}
	if !reflect.DeepEqual(ids(rec.Sensors), []string{"binary_sensor.b_status"}) {
		t.Errorf("Sensors = %v, want the losing status entity", ids(rec.Sensors))
	}
	if n := len(rec.Entities()); n != 2 {
		t.Errorf("placed %d entities, want 2", n)
	}
}

func TestPlace_EmptyPlacement(t *testing.T) {
	rec := newDeviceRecord("dev1", "Pi-hole")
	if rec.place(&Entity{EntityID: "light.x"}, Placement{}) {
		t.Error("place() with no role or bucket should report false")
	}
}

func TestAssembleDevice_EachEntityPlacedOnce(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "sensor.pi_hole_dns_queries_today", "dns_queries_today", "100", nil).
		entity("dev1", "sensor.pi_hole_domains_blocked", "domains_being_blocked", "90000", nil).
		entity("dev1", "sensor.pi_hole_ads_percentage", "ads_percentage_blocked_today", "12.5", nil).
		entity("dev1", "binary_sensor.pi_hole_status", "status", "on", nil).
		entity("dev1", "binary_sensor.pi_hole_other", "", "on", nil).
		entity("dev1", "sensor.pi_hole_seen_clients", "", "4", nil).
		entity("dev1", "button.pi_hole_refresh", "action_refresh_data", "unknown", nil).
		entity("dev1", "button.pi_hole_restart_dns", "", "unknown", nil).
		entity("dev1", "switch.pi_hole_group_default", "", "on", nil).
		entity("dev1", "update.pi_hole_core", "", "off", hass.Attributes{"title": "Core"}).
		build()

	rec, _ := AssembleDevice(snap, nil, "dev1")

	counts := make(map[string]int)
	for _, e := range rec.Entities() {
		counts[e.EntityID]++
	}
	for id, n := range counts {
		if n != 1 {
			t.Errorf("%s placed %d times", id, n)
		}
	}
	if _, ok := counts["binary_sensor.pi_hole_other"]; ok {
		t.Error("unmatched binary_sensor should be dropped")
	}
	// 10 registered minus the unmatched binary_sensor, plus nothing else.
	if len(counts) != 9 {
		t.Errorf("placed %d entities, want 9", len(counts))
	}
	if rec.DomainsBlocked == nil || rec.AdsPercentageBlocked == nil || rec.RefreshData == nil {
		t.Error("legacy and action tags should fill their slots")
	}
}

func TestAssembleDevice_DoesNotMutateSnapshot(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "sensor.pi_hole_dns_queries_today", "dns_queries_today", "100",
			hass.Attributes{"friendly_name": "Pi-hole DNS queries"}).
		build()
	before := snap.DeepCopy()

	rec, _ := AssembleDevice(snap, nil, "dev1")
	rec.DNSQueriesToday.Attributes["friendly_name"] = "changed"
	rec.DNSQueriesToday.State = "0"

	if !reflect.DeepEqual(snap, before) {
		t.Error("snapshot changed after assembly")
	}
}

func TestDeviceRecord_FindEntity(t *testing.T) {
	snap := newSnapshot().
		device("dev1", "Pi-hole").
		entity("dev1", "binary_sensor.pi_hole_status", "status", "on", nil).
		entity("dev1", "switch.pi_hole_group_default", "", "on", nil).
		build()
	rec, _ := AssembleDevice(snap, nil, "dev1")

	if e, ok := rec.FindEntity("switch.pi_hole_group_default"); !ok || e.State != "on" {
		t.Errorf("FindEntity(switch) = %v, %v", e, ok)
	}
	if e, ok := rec.FindEntity("binary_sensor.pi_hole_status"); !ok || e != rec.Status {
		t.Errorf("FindEntity(status) = %v, %v", e, ok)
	}
	if _, ok := rec.FindEntity("sensor.none"); ok {
		t.Error("FindEntity(missing) should fail")
	}
}
