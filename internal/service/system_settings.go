package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/psehrawa/opportunities-finder/internal/datasource"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

const (
	FeatureDiscovery      = "feature.discovery"
	FeatureScoring        = "feature.scoring"
	FeatureCleanup        = "feature.cleanup"
	FeatureHealthCheck    = "feature.health_check"
	FeatureEventsWebhook  = "feature.events.webhook"
	FeatureEventsTelegram = "feature.events.telegram"
)

const featurePrefix = "feature."

// sourceSwitchSources get a feature.source.<name> switch seeded at startup.
var sourceSwitchSources = []models.DataSource{
	models.SourceGitHub,
	models.SourceReddit,
	models.SourceHackerNews,
	models.SourceProductHunt,
	models.SourceNewsAPI,
	models.SourceBlind,
	models.SourceQuora,
}

func DefaultFeatureSwitches() map[string]bool {
	out := map[string]bool{
		FeatureDiscovery:      true,
		FeatureScoring:        true,
		FeatureCleanup:        true,
		FeatureHealthCheck:    true,
		FeatureEventsWebhook:  true,
		FeatureEventsTelegram: true,
	}
	for _, src := range sourceSwitchSources {
		out[datasource.SwitchKey(src)] = true
	}
	return out
}

// SystemSettingsService reads and writes operator feature switches. Reads fall back to
// the caller default when the store is missing or unreadable.
type SystemSettingsService struct {
	Repo repository.SettingsRepository
}

// EnsureDefaultSwitches seeds missing switches. Existing values are left alone so an
// operator's choice survives restarts.
func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	keys := make([]string, 0)
	defaults := DefaultFeatureSwitches()
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.Repo.UpsertSystemSetting(ctx, models.NewSwitch(key, defaults[key], now)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil {
		return fallback
	}
	if enabled, ok := item.Enabled(); ok {
		return enabled
	}
	return fallback
}

func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	item := models.NewSwitch(key, enabled, time.Now().UTC())
	return s.Repo.UpsertSystemSetting(ctx, item)
}

// Switches returns every stored feature.* switch. Values that are not JSON booleans are
// skipped.
func (s *SystemSettingsService) Switches(ctx context.Context) (map[string]bool, error) {
	out := map[string]bool{}
	if s == nil || s.Repo == nil {
		return out, nil
	}
	prefix := featurePrefix
	items, err := s.Repo.ListSystemSettings(ctx, repository.ListSystemSettingsParams{Prefix: &prefix})
	if err != nil {
		return nil, err
	}
	for i := range items {
		if enabled, ok := items[i].Enabled(); ok {
			out[items[i].Key] = enabled
		}
	}
	return out, nil
}

// IsFeatureKey reports whether key names a feature switch.
func IsFeatureKey(key string) bool {
	key = strings.TrimSpace(key)
	return strings.HasPrefix(key, featurePrefix) && len(key) > len(featurePrefix)
}
