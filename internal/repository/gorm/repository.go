package gormrepository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

// opportunityContentColumns are refreshed when a record is rediscovered.
var opportunityContentColumns = []string{
	"title",
	"description",
	"type",
	"country",
	"industry",
	"funding_stage",
	"funding_amount",
	"company_size",
	"confidence_score",
	"engagement_potential",
	"tags",
	"metadata",
	"url",
	"company_name",
	"location",
	"contact_email",
	"is_active",
	"last_updated",
}

// --- opportunities ----------------------------------------------------------

func (s *Store) UpsertOpportunity(ctx context.Context, item *models.Opportunity) (*models.Opportunity, bool, error) {
	if s == nil || s.db == nil || item == nil {
		return nil, false, nil
	}
	item.ExternalID = strings.TrimSpace(item.ExternalID)
	if item.ExternalID == "" || item.Source == "" {
		return nil, false, errors.New("opportunity requires source and external_id")
	}
	item.LastUpdated = time.Now().UTC()

	var (
		stored  models.Opportunity
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Opportunity
		err := tx.Select("id").
			Where("source = ? AND external_id = ?", item.Source, item.ExternalID).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
		case err != nil:
			return err
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(opportunityContentColumns),
		}).Create(item).Error; err != nil {
			return err
		}
		return tx.Where("source = ? AND external_id = ?", item.Source, item.ExternalID).Take(&stored).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

func (s *Store) GetOpportunityByID(ctx context.Context, id uint64) (*models.Opportunity, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Opportunity
	err := s.db.WithContext(ctx).Model(&models.Opportunity{}).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) FindUnscored(ctx context.Context, since time.Time, limit int) ([]models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Opportunity
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("is_active = ?", true).
		Where("score = 0").
		Where("discovered_at >= ?", since).
		Order("discovered_at desc").
		Limit(normalizeLimit(limit, 500)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) FindStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Opportunity
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("is_active = ?", true).
		Where("last_updated < ?", cutoff).
		Order("last_updated asc").
		Limit(normalizeLimit(limit, 500)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MarkInactive(ctx context.Context, ids []uint64) (int64, error) {
	if s == nil || s.db == nil || len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_active": false, "last_updated": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (s *Store) UpdateOpportunityStatus(ctx context.Context, id uint64, status models.OpportunityStatus) error {
	if s == nil || s.db == nil {
		return nil
	}
	if id == 0 || strings.TrimSpace(string(status)) == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "last_updated": time.Now().UTC()}).
		Error
}

func (s *Store) UpdateOpportunityScore(ctx context.Context, id uint64, score decimal.Decimal, engagement *decimal.Decimal, status *models.OpportunityStatus) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	updates := map[string]any{"score": score, "last_updated": time.Now().UTC()}
	if engagement != nil {
		updates["engagement_potential"] = *engagement
	}
	if status != nil && *status != "" {
		updates["status"] = *status
	}
	return s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (s *Store) ListOpportunities(ctx context.Context, params repository.ListOpportunitiesParams) ([]models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyOpportunityFilters(s.db.WithContext(ctx).Model(&models.Opportunity{}), params)
	orderBy := repository.OpportunityOrderColumn(params.OrderBy)
	query = applyOrder(query, orderBy, params.Asc, "discovered_at")
	if orderBy != "id" {
		query = query.Order("id desc")
	}
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.Opportunity
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountOpportunities(ctx context.Context, params repository.ListOpportunitiesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyOpportunityFilters(s.db.WithContext(ctx).Model(&models.Opportunity{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListTrending(ctx context.Context, since time.Time, minScore decimal.Decimal, limit int) ([]models.Opportunity, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Opportunity
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("is_active = ?", true).
		Where("discovered_at >= ?", since).
		Where("score >= ?", minScore).
		Order("score desc").
		Order("discovered_at desc").
		Limit(normalizeLimit(limit, 50)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountBy(ctx context.Context, column string) ([]repository.GroupCount, error) {
	return s.countBy(ctx, column, true)
}

func (s *Store) CountAllBy(ctx context.Context, column string) ([]repository.GroupCount, error) {
	return s.countBy(ctx, column, false)
}

func (s *Store) countBy(ctx context.Context, column string, activeOnly bool) ([]repository.GroupCount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if !repository.GroupColumnAllowed(column) {
		return nil, fmt.Errorf("cannot group opportunities by %q", column)
	}
	query := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Select(column + " AS key, COUNT(*) AS count")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []repository.GroupCount
	if err := query.Group(column).Order("count desc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// OpportunityTotals counts all and active records, averages the active score and
// counts records scoring at least highScore discovered since highSince.
func (s *Store) OpportunityTotals(ctx context.Context, highScore decimal.Decimal, highSince time.Time) (repository.Totals, error) {
	var out repository.Totals
	if s == nil || s.db == nil {
		return out, nil
	}
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COALESCE(AVG(score) FILTER (WHERE is_active), 0) AS average_score,
			COUNT(*) FILTER (WHERE score >= ? AND discovered_at >= ?) AS recent_high_score`, highScore, highSince).
		Scan(&out).Error
	return out, err
}

func (s *Store) CountDiscoveredBetween(ctx context.Context, from, to time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Where("discovered_at >= ?", from)
	if !to.IsZero() {
		query = query.Where("discovered_at < ?", to)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) DailyCounts(ctx context.Context, since time.Time) ([]repository.DailyCount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.DailyCount
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Select("DATE_TRUNC('day', discovered_at) AS day, COUNT(*) AS count, COALESCE(AVG(score), 0) AS average_score").
		Where("discovered_at >= ?", since).
		Group("DATE_TRUNC('day', discovered_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SourcePerformance aggregates per source, best average score first.
func (s *Store) SourcePerformance(ctx context.Context) ([]repository.SourcePerformance, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.SourcePerformance
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Select(`source,
			COUNT(*) AS total,
			COALESCE(AVG(score), 0) AS average_score,
			COUNT(*) FILTER (WHERE status = ?) AS conversions,
			COALESCE(AVG(confidence_score), 0) AS average_confidence`, models.StatusConverted).
		Group("source").
		Order("average_score desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) TopIndustries(ctx context.Context, limit int) ([]repository.IndustryMetric, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.IndustryMetric
	err := s.db.WithContext(ctx).
		Model(&models.Opportunity{}).
		Select("industry, COUNT(*) AS count, COALESCE(AVG(score), 0) AS average_score").
		Where("industry IS NOT NULL AND industry <> ''").
		Group("industry").
		Order("count desc").
		Limit(normalizeLimit(limit, 5)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func applyOpportunityFilters(query *gorm.DB, params repository.ListOpportunitiesParams) *gorm.DB {
	if len(params.Types) > 0 {
		query = query.Where("type IN ?", params.Types)
	}
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	if len(params.Sources) > 0 {
		query = query.Where("source IN ?", params.Sources)
	}
	if len(params.Countries) > 0 {
		query = query.Where("country IN ?", params.Countries)
	}
	if len(params.Industries) > 0 {
		query = query.Where("industry IN ?", params.Industries)
	}
	if len(params.FundingStages) > 0 {
		query = query.Where("funding_stage IN ?", params.FundingStages)
	}
	if len(params.CompanySizes) > 0 {
		query = query.Where("company_size IN ?", params.CompanySizes)
	}
	if params.MinScore != nil {
		query = query.Where("score >= ?", *params.MinScore)
	}
	if params.MaxScore != nil {
		query = query.Where("score <= ?", *params.MaxScore)
	}
	if params.MinFunding != nil {
		query = query.Where("funding_amount >= ?", *params.MinFunding)
	}
	if params.MaxFunding != nil {
		query = query.Where("funding_amount <= ?", *params.MaxFunding)
	}
	if params.DiscoveredAfter != nil {
		query = query.Where("discovered_at >= ?", *params.DiscoveredAfter)
	}
	if params.DiscoveredBefore != nil {
		query = query.Where("discovered_at <= ?", *params.DiscoveredBefore)
	}
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		pattern := "%" + strings.TrimSpace(*params.Search) + "%"
		query = query.Where("(title ILIKE ? OR description ILIKE ? OR company_name ILIKE ?)", pattern, pattern, pattern)
	}
	if tags := cleanStrings(params.Tags); len(tags) > 0 {
		query = query.Where("jsonb_exists_any(tags, ARRAY[?]::text[])", tags)
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}
	return query
}

// --- source states ----------------------------------------------------------

func (s *Store) UpsertSourceState(ctx context.Context, item *models.SourceState) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil
	}
	columns := []string{
		"display_name",
		"enabled",
		"health_state",
		"health_message",
		"last_checked_at",
		"requests_remaining",
		"requests_limit",
		"updated_at",
	}
	if item.LastDiscoveryAt != nil {
		columns = append(columns, "last_discovery_at", "last_discovered")
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(item).Error
}

func (s *Store) ListSourceStates(ctx context.Context) ([]models.SourceState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SourceState
	if err := s.db.WithContext(ctx).
		Model(&models.SourceState{}).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- system settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := settingsQuery(s.db.WithContext(ctx), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	limit := normalizeLimit(params.Limit, 500)
	offset := normalizeOffset(params.Offset)
	var items []models.SystemSetting
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := settingsQuery(s.db.WithContext(ctx), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func settingsQuery(db *gorm.DB, params repository.ListSystemSettingsParams) *gorm.DB {
	query := db.Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		query = query.Where("key LIKE ?", strings.TrimSpace(*params.Prefix)+"%")
	}
	return query
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, raw := range items {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}
