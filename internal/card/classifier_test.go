package card

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		tag      string
		want     Placement
		wantOK   bool
	}{
		{"role tag", "sensor.pi_hole_dns_queries_today", "dns_queries_today", Placement{Role: RoleDNSQueriesToday}, true},
		{"legacy alias", "sensor.pi_hole_ads_blocked_today", "ads_blocked_today", Placement{Role: RoleAdsBlocked}, true},
		{"modern key for same slot", "sensor.pi_hole_ads_blocked", "ads_blocked", Placement{Role: RoleAdsBlocked}, true},
		{"role tag beats domain", "binary_sensor.pi_hole_status", "status", Placement{Role: RoleStatus}, true},
		{"button role", "button.pi_hole_refresh", "action_refresh_data", Placement{Role: RoleRefreshData}, true},
		{"generic sensor", "sensor.unmapped_metric", "", Placement{Bucket: BucketSensors}, true},
		{"unknown tag falls back", "sensor.pi_hole_new_metric", "brand_new_metric", Placement{Bucket: BucketSensors}, true},
		{"button", "button.flush_logs", "", Placement{Bucket: BucketControls}, true},
		{"switch", "switch.pi_hole_group_default", "", Placement{Bucket: BucketSwitches}, true},
		{"update", "update.pi_hole_core", "", Placement{Bucket: BucketUpdates}, true},
		{"unhandled domain", "binary_sensor.pi_hole_something", "", Placement{}, false},
		{"no separator", "garbage", "", Placement{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(&Entity{EntityID: tt.entityID, TranslationKey: tt.tag})
			if ok != tt.wantOK {
				t.Fatalf("Classify() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if _, ok := Classify(nil); ok {
		t.Error("Classify(nil) should not match")
	}
}

func TestRoleTagsCoverEveryRole(t *testing.T) {
	covered := make(map[Role]bool)
	for _, r := range roleTags {
		covered[r] = true
	}
	for _, r := range AllRoles {
		if !covered[r] {
			t.Errorf("role %s has no tag", r)
		}
	}
}

func TestEveryRoleHasSlot(t *testing.T) {
	d := newDeviceRecord("dev", "Dev")
	for _, r := range AllRoles {
		if d.slot(r) == nil {
			t.Errorf("role %s has no slot", r)
		}
		if r.String() == "" || r.String() == "none" {
			t.Errorf("role %d has no name", int(r))
		}
	}
	if d.slot(RoleNone) != nil {
		t.Error("RoleNone should have no slot")
	}
}

func TestBucketForDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   Bucket
		ok     bool
	}{
		{"button", BucketControls, true},
		{"sensor", BucketSensors, true},
		{"switch", BucketSwitches, true},
		{"update", BucketUpdates, true},
		{"light", BucketNone, false},
		{"", BucketNone, false},
	}
	for _, tt := range tests {
		got, ok := BucketForDomain(tt.domain)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BucketForDomain(%q) = %v, %v; want %v, %v", tt.domain, got, ok, tt.want, tt.ok)
		}
	}
}
