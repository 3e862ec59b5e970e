package models

import "time"

// SourceState mirrors each adapter's health and budget for operators.
// It is a snapshot; nothing reads it back for correctness.
type SourceState struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	DisplayName string `gorm:"type:varchar(100)" json:"display_name"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`

	HealthState   string     `gorm:"type:varchar(20);default:'UNKNOWN'" json:"health_state"`
	HealthMessage string     `gorm:"type:text" json:"health_message,omitempty"`
	LastCheckedAt *time.Time `gorm:"type:timestamptz" json:"last_checked_at,omitempty"`

	LastDiscoveryAt *time.Time `gorm:"type:timestamptz" json:"last_discovery_at,omitempty"`
	LastDiscovered  int        `gorm:"not null;default:0" json:"last_discovered"`

	RequestsRemaining int `gorm:"not null;default:0" json:"requests_remaining"`
	RequestsLimit     int `gorm:"not null;default:0" json:"requests_limit"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (SourceState) TableName() string {
	return "source_states"
}
