package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/psehrawa/opportunities-finder/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type stubSwitches map[string]bool

func (s stubSwitches) IsEnabled(_ context.Context, key string, fallback bool) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

func sampleOpportunity() *models.Opportunity {
	return &models.Opportunity{
		ID:          7,
		ExternalID:  "github-1",
		Source:      models.SourceGitHub,
		Title:       "acme/rocket",
		Type:        models.TypeTechnologyTrend,
		Status:      models.StatusAnalyzed,
		CompanyName: "acme",
		URL:         "https://github.com/acme/rocket",
		Score:       decimal.RequireFromString("85.5"),
	}
}

func TestNewCopiesSummary(t *testing.T) {
	ev := New(TypeScored, sampleOpportunity())
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", ev.ID.String())
	require.Equal(t, uint64(7), ev.Opportunity.ID)
	require.Equal(t, models.SourceGitHub, ev.Opportunity.Source)
	require.False(t, ev.OccurredAt.IsZero())

	empty := New(TypeUpdated, nil)
	require.Zero(t, empty.Opportunity.ID)
}

func TestMultiCallsEveryPublisherAndJoinsErrors(t *testing.T) {
	a := &recordingPublisher{err: errors.New("a failed")}
	b := &recordingPublisher{}
	c := &recordingPublisher{err: errors.New("c failed")}

	err := Multi{a, nil, b, c}.Publish(context.Background(), New(TypeDiscovered, sampleOpportunity()))
	require.Error(t, err)
	require.Contains(t, err.Error(), "a failed")
	require.Contains(t, err.Error(), "c failed")
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	require.Len(t, c.events, 1)
}

func TestGatedHonoursSwitch(t *testing.T) {
	inner := &recordingPublisher{}
	g := Gated{Key: "feature.events.webhook", Switches: stubSwitches{"feature.events.webhook": false}, Publisher: inner}
	require.NoError(t, g.Publish(context.Background(), New(TypeScored, nil)))
	require.Empty(t, inner.events)

	g.Switches = stubSwitches{}
	require.NoError(t, g.Publish(context.Background(), New(TypeScored, nil)))
	require.Len(t, inner.events, 1)
}

func TestWebhookPublisherPostsJSON(t *testing.T) {
	var got Event
	var eventType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventType = r.Header.Get("X-Event-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, time.Second)
	ev := New(TypeStatusChanged, sampleOpportunity())
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Equal(t, string(TypeStatusChanged), eventType)
	require.Equal(t, ev.ID, got.ID)
	require.Equal(t, "acme/rocket", got.Opportunity.Title)
}

func TestWebhookPublisherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookPublisher(srv.URL, time.Second).Publish(context.Background(), New(TypeScored, nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")

	require.Error(t, (&WebhookPublisher{}).Publish(context.Background(), New(TypeScored, nil)))
}

type stubBot struct {
	sent []tgbotapi.Chattable
}

func (b *stubBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramPublisherOnlyHighScores(t *testing.T) {
	bot := &stubBot{}
	p := &TelegramPublisher{bot: bot, chatID: 42, MinScore: decimal.NewFromInt(80)}
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, New(TypeDiscovered, sampleOpportunity())))
	low := sampleOpportunity()
	low.Score = decimal.NewFromInt(79)
	require.NoError(t, p.Publish(ctx, New(TypeScored, low)))
	require.Empty(t, bot.sent)

	require.NoError(t, p.Publish(ctx, New(TypeScored, sampleOpportunity())))
	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, int64(42), msg.ChatID)
	require.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
	require.Contains(t, msg.Text, "85\\.50")
}

func TestEscapeMarkdownV2(t *testing.T) {
	require.Equal(t, "a\\.b\\-c\\!", escapeMarkdownV2("a.b-c!"))
	require.Equal(t, "plain", escapeMarkdownV2("plain"))
}

func TestStreamHubBroadcasts(t *testing.T) {
	hub := NewStreamHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	ev := New(TypeScored, sampleOpportunity())
	require.NoError(t, hub.Publish(ctx, ev))

	_, payload, err := conn.Read(ctx)
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Equal(t, ev.ID, got.ID)
	require.Equal(t, TypeScored, got.Type)
}

func TestStreamHubPublishWithoutClients(t *testing.T) {
	var nilHub *StreamHub
	require.NoError(t, nilHub.Publish(context.Background(), New(TypeScored, nil)))
	require.NoError(t, NewStreamHub(nil).Publish(context.Background(), New(TypeScored, nil)))
}
