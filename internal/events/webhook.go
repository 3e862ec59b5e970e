package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookPublisher POSTs every event as JSON to URL.
type WebhookPublisher struct {
	URL  string
	HTTP *http.Client
}

func NewWebhookPublisher(url string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookPublisher{URL: strings.TrimSpace(url), HTTP: &http.Client{Timeout: timeout}}
}

func (p *WebhookPublisher) Publish(ctx context.Context, ev Event) error {
	if p == nil || p.URL == "" {
		return errors.New("webhook url is empty")
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", string(ev.Type))
	client := p.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook http %d", resp.StatusCode)
	}
	return nil
}
