package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Opportunity is a normalized, scored signal discovered from one external source.
// (source, external_id) is the dedupe key.
type Opportunity struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_opportunity_source_external_id,priority:2" json:"external_id"`
	Source     DataSource `gorm:"type:varchar(30);not null;uniqueIndex:idx_opportunity_source_external_id,priority:1" json:"source"`

	Title       string `gorm:"type:varchar(500);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Type     OpportunityType   `gorm:"type:varchar(40);not null;index" json:"type"`
	Status   OpportunityStatus `gorm:"type:varchar(20);not null;index;default:'DISCOVERED'" json:"status"`
	Country  Country           `gorm:"type:varchar(5);index" json:"country,omitempty"`
	Industry Industry          `gorm:"type:varchar(40);index" json:"industry,omitempty"`

	FundingStage  FundingStage     `gorm:"type:varchar(30)" json:"funding_stage,omitempty"`
	FundingAmount *decimal.Decimal `gorm:"type:numeric(15,2)" json:"funding_amount,omitempty"`
	CompanySize   CompanySize      `gorm:"type:varchar(20)" json:"company_size,omitempty"`

	// Scores are 0..100; a zero Score means the record has not been scored yet.
	Score               decimal.Decimal  `gorm:"type:numeric(5,2);not null;default:0;index" json:"score"`
	ConfidenceScore     *decimal.Decimal `gorm:"type:numeric(5,2);not null;default:50" json:"confidence_score,omitempty"`
	EngagementPotential *decimal.Decimal `gorm:"type:numeric(5,2)" json:"engagement_potential,omitempty"`

	Tags     datatypes.JSONSlice[string]           `gorm:"type:jsonb" json:"tags,omitempty"`
	Metadata datatypes.JSONType[map[string]string] `gorm:"type:jsonb" json:"metadata,omitempty"`

	URL          string `gorm:"type:varchar(2000)" json:"url,omitempty"`
	CompanyName  string `gorm:"type:varchar(255);index" json:"company_name,omitempty"`
	Location     string `gorm:"type:varchar(255)" json:"location,omitempty"`
	ContactEmail string `gorm:"type:varchar(255)" json:"contact_email,omitempty"`

	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`
	DiscoveredAt time.Time `gorm:"type:timestamptz;not null;index" json:"discovered_at"`
	LastUpdated  time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"last_updated"`
	CreatedAt    time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// Meta returns the metadata map, never nil.
func (o *Opportunity) Meta() map[string]string {
	if o == nil {
		return map[string]string{}
	}
	m := o.Metadata.Data()
	if m == nil {
		return map[string]string{}
	}
	return m
}

func (o *Opportunity) SetMeta(m map[string]string) {
	o.Metadata = datatypes.NewJSONType(m)
}

func (o *Opportunity) IsScored() bool {
	return o != nil && o.Score.IsPositive()
}

// Confidence builds a ConfidenceScore value. A nil ConfidenceScore means the source
// asserted none; zero is a real, fully discounted value.
func Confidence(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
