package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/models"
)

type OpportunityRepository interface {
	// UpsertOpportunity inserts or refreshes a record keyed by (source, external_id).
	// Existing rows keep id, discovered_at, status and score.
	UpsertOpportunity(ctx context.Context, item *models.Opportunity) (*models.Opportunity, bool, error)
	GetOpportunityByID(ctx context.Context, id uint64) (*models.Opportunity, error)
	FindUnscored(ctx context.Context, since time.Time, limit int) ([]models.Opportunity, error)
	FindStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Opportunity, error)
	MarkInactive(ctx context.Context, ids []uint64) (int64, error)
	UpdateOpportunityStatus(ctx context.Context, id uint64, status models.OpportunityStatus) error
	UpdateOpportunityScore(ctx context.Context, id uint64, score decimal.Decimal, engagement *decimal.Decimal, status *models.OpportunityStatus) error
	ListOpportunities(ctx context.Context, params ListOpportunitiesParams) ([]models.Opportunity, error)
	CountOpportunities(ctx context.Context, params ListOpportunitiesParams) (int64, error)
	ListTrending(ctx context.Context, since time.Time, minScore decimal.Decimal, limit int) ([]models.Opportunity, error)
	CountBy(ctx context.Context, column string) ([]GroupCount, error)
}

type SourceStateRepository interface {
	UpsertSourceState(ctx context.Context, item *models.SourceState) error
	ListSourceStates(ctx context.Context) ([]models.SourceState, error)
}

type SettingsRepository interface {
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)
}

// AnalyticsRepository answers the aggregate queries behind the analytics endpoints.
type AnalyticsRepository interface {
	OpportunityTotals(ctx context.Context, highScore decimal.Decimal, highSince time.Time) (Totals, error)
	// CountDiscoveredBetween counts records discovered in [from, to). A zero to is open ended.
	CountDiscoveredBetween(ctx context.Context, from, to time.Time) (int64, error)
	DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
	// CountAllBy groups every record, active or not, by column.
	CountAllBy(ctx context.Context, column string) ([]GroupCount, error)
	SourcePerformance(ctx context.Context) ([]SourcePerformance, error)
	TopIndustries(ctx context.Context, limit int) ([]IndustryMetric, error)
}

type Repository interface {
	OpportunityRepository
	SourceStateRepository
	SettingsRepository
	AnalyticsRepository
}

type ListOpportunitiesParams struct {
	Limit  int
	Offset int

	Types         []models.OpportunityType
	Statuses      []models.OpportunityStatus
	Sources       []models.DataSource
	Countries     []models.Country
	Industries    []models.Industry
	FundingStages []models.FundingStage
	CompanySizes  []models.CompanySize

	MinScore   *decimal.Decimal
	MaxScore   *decimal.Decimal
	MinFunding *decimal.Decimal
	MaxFunding *decimal.Decimal

	DiscoveredAfter  *time.Time
	DiscoveredBefore *time.Time

	// Search matches title, description and company name case-insensitively.
	Search *string
	// Tags matches records carrying any of the tags.
	Tags   []string
	Active *bool

	OrderBy string
	Asc     *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}

type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type Totals struct {
	Total           int64           `json:"total"`
	Active          int64           `json:"active"`
	AverageScore    decimal.Decimal `json:"average_score"`
	RecentHighScore int64           `json:"recent_high_score"`
}

// DailyCount is one day bucket of discovered records.
type DailyCount struct {
	Day          time.Time       `json:"date"`
	Count        int64           `json:"count"`
	AverageScore decimal.Decimal `json:"average_score"`
}

type SourcePerformance struct {
	Source            models.DataSource `json:"source"`
	Total             int64             `json:"total"`
	AverageScore      decimal.Decimal   `json:"average_score"`
	Conversions       int64             `json:"conversions"`
	ConversionRate    float64           `json:"conversion_rate" gorm:"-"`
	AverageConfidence decimal.Decimal   `json:"average_confidence"`
}

type IndustryMetric struct {
	Industry     models.Industry `json:"industry"`
	Count        int64           `json:"count"`
	AverageScore decimal.Decimal `json:"average_score"`
}

var opportunityOrderColumns = map[string]string{
	"score":            "score",
	"confidence_score": "confidence_score",
	"discovered_at":    "discovered_at",
	"created_at":       "created_at",
	"last_updated":     "last_updated",
	"funding_amount":   "funding_amount",
	"title":            "title",
	"company_name":     "company_name",
}

// OpportunityOrderColumn maps a user supplied sort key onto a column. Unknown keys
// yield "".
func OpportunityOrderColumn(key string) string {
	return opportunityOrderColumns[strings.ToLower(strings.TrimSpace(key))]
}

var groupColumns = map[string]struct{}{
	"source": {}, "status": {}, "type": {}, "industry": {}, "country": {},
}

func GroupColumnAllowed(column string) bool {
	_, ok := groupColumns[column]
	return ok
}
