package events

import (
	"context"

	"go.uber.org/zap"
)

type LogPublisher struct {
	Logger *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, ev Event) error {
	if p.Logger == nil {
		return nil
	}
	p.Logger.Info("opportunity event",
		zap.String("event_id", ev.ID.String()),
		zap.String("type", string(ev.Type)),
		zap.Uint64("opportunity_id", ev.Opportunity.ID),
		zap.String("source", string(ev.Opportunity.Source)),
		zap.String("status", string(ev.Opportunity.Status)),
		zap.String("score", ev.Opportunity.Score.StringFixed(2)),
	)
	return nil
}
