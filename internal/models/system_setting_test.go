package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestSwitchRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSwitch("feature.source.quora", false, now)
	if string(s.Value) != "false" || !s.UpdatedAt.Equal(now) || s.Description == "" {
		t.Fatalf("switch=%+v", s)
	}
	if enabled, ok := s.Enabled(); enabled || !ok {
		t.Fatalf("enabled=%v ok=%v want=false,true", enabled, ok)
	}
	if enabled, ok := NewSwitch("feature.scoring", true, now).Enabled(); !enabled || !ok {
		t.Fatalf("enabled=%v ok=%v want=true,true", enabled, ok)
	}
}

func TestSwitchRejectsNonBooleans(t *testing.T) {
	var missing *SystemSetting
	if _, ok := missing.Enabled(); ok {
		t.Fatalf("nil setting reported ok")
	}
	for _, raw := range []string{"", `"yes"`, "1", "{}"} {
		s := &SystemSetting{Key: "feature.bad", Value: datatypes.JSON(raw)}
		if _, ok := s.Enabled(); ok {
			t.Fatalf("value %q reported ok", raw)
		}
	}
}
