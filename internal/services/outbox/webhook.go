package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
)

type Endpoint struct {
	Name string
	URL  string
}

type envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// WebhookSink fans an event out to every downstream consumer endpoint. A
// non-2xx from any consumer fails the whole attempt and the event stays
// pending; consumers that already acked de-duplicate the redelivery by event id.
type WebhookSink struct {
	client    *http.Client
	endpoints []Endpoint
}

func NewWebhookSink(client *http.Client, endpoints []Endpoint) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}

	return &WebhookSink{
		client:    client,
		endpoints: endpoints,
	}
}

func (s *WebhookSink) Deliver(ctx context.Context, event model.DomainEvent) error {
	if len(s.endpoints) == 0 {
		return fmt.Errorf("no consumer endpoints configured")
	}

	body, err := json.Marshal(envelope{
		EventID:    event.ID.String(),
		EventType:  event.EventType,
		OccurredAt: event.OccurredAt,
		Payload:    json.RawMessage(event.Payload),
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	for _, endpoint := range s.endpoints {
		if err := s.post(ctx, endpoint, body); err != nil {
			return fmt.Errorf("deliver to %s: %w", endpoint.Name, err)
		}
	}

	return nil
}

func (s *WebhookSink) post(ctx context.Context, endpoint Endpoint, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}
