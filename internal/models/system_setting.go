package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SystemSetting is one persisted operator switch, keyed like feature.discovery or
// feature.source.github. Value holds a JSON boolean.
type SystemSetting struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string         `gorm:"type:varchar(120);not null;uniqueIndex" json:"key"`
	Value       datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time      `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"type:timestamptz;autoUpdateTime;index" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

const switchDescription = "feature switch"

// NewSwitch builds the row for a boolean switch stamped at now.
func NewSwitch(key string, enabled bool, now time.Time) *SystemSetting {
	raw, _ := json.Marshal(enabled)
	return &SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: switchDescription,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Enabled decodes Value as a switch. ok is false when the row is missing or the value
// is not a JSON boolean.
func (s *SystemSetting) Enabled() (enabled, ok bool) {
	if s == nil || len(s.Value) == 0 {
		return false, false
	}
	if err := json.Unmarshal(s.Value, &enabled); err != nil {
		return false, false
	}
	return enabled, true
}
