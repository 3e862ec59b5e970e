package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/psehrawa/opportunities-finder/internal/datasource"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
)

// StateStore receives operator snapshots of each adapter.
type StateStore interface {
	UpsertSourceState(ctx context.Context, item *models.SourceState) error
}

// Snapshot captures an adapter's switch, health and rate budget.
func Snapshot(ctx context.Context, a datasource.Adapter, now time.Time) models.SourceState {
	src := a.Source()
	st := a.HealthStatus(ctx)
	budget := a.RateLimitStatus(ctx)
	checked := st.LastChecked
	if checked.IsZero() {
		checked = now
	}
	return models.SourceState{
		Name:              datasource.Name(src),
		DisplayName:       src.DisplayName(),
		Enabled:           a.IsEnabled(ctx),
		HealthState:       string(st.State),
		HealthMessage:     st.Message,
		LastCheckedAt:     &checked,
		RequestsRemaining: budget.Remaining,
		RequestsLimit:     budget.Limit,
		UpdatedAt:         now,
	}
}

// MirrorStates upserts a snapshot of every registered adapter. When pass is set its
// per-source counts are recorded as the latest discovery. Store errors are logged and
// skipped; the number of rows written is returned.
func (o *Orchestrator) MirrorStates(ctx context.Context, store StateStore, pass *PassResult) int {
	if o == nil || o.Registry == nil || store == nil {
		return 0
	}
	now := o.clock()
	discovered := map[models.DataSource]int{}
	if pass != nil {
		for _, s := range pass.Sources {
			discovered[s.Source] = s.Discovered
		}
	}
	written := 0
	for _, a := range o.Registry.All() {
		item := Snapshot(ctx, a, now)
		if n, ok := discovered[a.Source()]; ok {
			at := pass.FinishedAt
			item.LastDiscoveryAt = &at
			item.LastDiscovered = n
		}
		if err := store.UpsertSourceState(ctx, &item); err != nil {
			o.logger().Warn("mirror source state failed", zap.String("source", item.Name), zap.Error(err))
			continue
		}
		written++
	}
	return written
}

// SourceInfo describes one registered adapter for operators.
type SourceInfo struct {
	Name        string            `json:"name"`
	Source      models.DataSource `json:"source"`
	DisplayName string            `json:"display_name"`
	Enabled     bool              `json:"enabled"`
	Free        bool              `json:"free"`
	DailyLimit  int               `json:"daily_limit"`
	ConfigError string            `json:"config_error,omitempty"`
	Budget      ratelimit.Budget  `json:"budget"`
}

// Sources lists every registered adapter in registration order, enabled or not.
func (o *Orchestrator) Sources(ctx context.Context) []SourceInfo {
	if o == nil || o.Registry == nil {
		return nil
	}
	adapters := o.Registry.All()
	out := make([]SourceInfo, 0, len(adapters))
	for _, a := range adapters {
		src := a.Source()
		info := SourceInfo{
			Name:        datasource.Name(src),
			Source:      src,
			DisplayName: src.DisplayName(),
			Enabled:     a.IsEnabled(ctx),
			Free:        src.IsFree(),
			DailyLimit:  src.DailyLimit(),
			Budget:      a.RateLimitStatus(ctx),
		}
		if err := a.ValidateConfiguration(); err != nil {
			info.ConfigError = err.Error()
		}
		out = append(out, info)
	}
	return out
}
