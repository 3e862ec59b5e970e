package events

import (
	"context"
	"strings"

	"github.com/psehrawa/opportunities-finder/internal/paas"
)

// PaaSPublisher mirrors events into the platform audit log. When Client is nil the
// client carried by ctx is used; with neither, events are dropped.
type PaaSPublisher struct {
	Client *paas.Client
}

func (p PaaSPublisher) Publish(ctx context.Context, ev Event) error {
	c := p.Client
	if c == nil {
		c = paas.ClientFromContext(ctx)
	}
	if c == nil {
		return nil
	}
	return c.CreateLog(ctx, paas.CreateLogRequest{
		Agent:  paas.Agent,
		Action: "oppfinder_" + strings.ReplaceAll(string(ev.Type), ".", "_"),
		Level:  "info",
		Details: map[string]any{
			"event_id":       ev.ID.String(),
			"opportunity_id": ev.Opportunity.ID,
			"source":         ev.Opportunity.Source,
			"status":         ev.Opportunity.Status,
			"score":          ev.Opportunity.Score.StringFixed(2),
		},
		Metadata: map[string]any{},
	})
}
