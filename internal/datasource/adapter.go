package datasource

import (
	"context"
	"strings"
	"time"

	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
)

// Query narrows one discovery call. A zero Since means the adapter default;
// Limit <= 0 means no limit.
type Query struct {
	Countries []models.Country
	Since     time.Time
	Limit     int
}

// Adapter is one external content source.
//
// Discover never returns an error and never panics: failures are logged, reflected in
// HealthStatus, and whatever was collected before the failure is returned.
type Adapter interface {
	Source() models.DataSource
	IsEnabled(ctx context.Context) bool
	Discover(ctx context.Context, q Query) []models.Opportunity
	RateLimitStatus(ctx context.Context) ratelimit.Budget
	ValidateConfiguration() error
	HealthStatus(ctx context.Context) health.Status
}

// Switches reads operator feature switches.
type Switches interface {
	IsEnabled(ctx context.Context, key string, fallback bool) bool
}

// SwitchKey is the operator switch consulted by IsEnabled.
func SwitchKey(source models.DataSource) string {
	return "feature.source." + Name(source)
}

// Name is the lowercase identifier used in URLs, switches and logs.
func Name(source models.DataSource) string {
	return strings.ToLower(string(source))
}
