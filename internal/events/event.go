package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/models"
)

type Type string

const (
	TypeDiscovered    Type = "opportunity.discovered"
	TypeUpdated       Type = "opportunity.updated"
	TypeScored        Type = "opportunity.scored"
	TypeStatusChanged Type = "opportunity.status_changed"
)

// Summary is the slice of an opportunity carried on the wire.
type Summary struct {
	ID             uint64                   `json:"id"`
	ExternalID     string                   `json:"external_id"`
	Source         models.DataSource        `json:"source"`
	Title          string                   `json:"title"`
	Type           models.OpportunityType   `json:"type"`
	Status         models.OpportunityStatus `json:"status"`
	PreviousStatus models.OpportunityStatus `json:"previous_status,omitempty"`
	Industry       models.Industry          `json:"industry,omitempty"`
	Country        models.Country           `json:"country,omitempty"`
	CompanyName    string                   `json:"company_name,omitempty"`
	URL            string                   `json:"url,omitempty"`
	Score          decimal.Decimal          `json:"score"`
}

type Event struct {
	ID          uuid.UUID `json:"id"`
	Type        Type      `json:"type"`
	OccurredAt  time.Time `json:"occurred_at"`
	Opportunity Summary   `json:"opportunity"`
}

// New builds an event for o. A nil opportunity yields an empty summary.
func New(t Type, o *models.Opportunity) Event {
	ev := Event{ID: uuid.New(), Type: t, OccurredAt: time.Now().UTC()}
	if o == nil {
		return ev
	}
	ev.Opportunity = Summary{
		ID:          o.ID,
		ExternalID:  o.ExternalID,
		Source:      o.Source,
		Title:       o.Title,
		Type:        o.Type,
		Status:      o.Status,
		Industry:    o.Industry,
		Country:     o.Country,
		CompanyName: o.CompanyName,
		URL:         o.URL,
		Score:       o.Score,
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every publisher. Every publisher is called; their errors
// are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Switches reads operator feature switches.
type Switches interface {
	IsEnabled(ctx context.Context, key string, fallback bool) bool
}

// Gated forwards events only while the switch Key is on.
type Gated struct {
	Key       string
	Switches  Switches
	Publisher Publisher
}

func (g Gated) Publish(ctx context.Context, ev Event) error {
	if g.Publisher == nil {
		return nil
	}
	if g.Switches != nil && !g.Switches.IsEnabled(ctx, g.Key, true) {
		return nil
	}
	return g.Publisher.Publish(ctx, ev)
}
