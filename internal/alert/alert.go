// Package alert sends operational incidents to PagerDuty's Events API
// v2. When no routing key is configured, Notifier is a no-op so the
// socket listener never has to branch on whether alerting is enabled.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const eventsEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Notifier triggers and resolves PagerDuty incidents. All methods are
// best-effort: a delivery failure is logged and swallowed, never
// propagated to the caller.
type Notifier struct {
	routingKey string
	endpoint   string
	http       *http.Client
}

// New builds a Notifier. An empty routingKey produces a Notifier whose
// methods do nothing.
func New(routingKey string) *Notifier {
	return &Notifier{
		routingKey: routingKey,
		endpoint:   eventsEndpoint,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a routing key was configured.
func (n *Notifier) Enabled() bool {
	return n.routingKey != ""
}

type pagerDutyEvent struct {
	RoutingKey  string                 `json:"routing_key"`
	EventAction string                 `json:"event_action"`
	DedupKey    string                 `json:"dedup_key"`
	Payload     *pagerDutyEventPayload `json:"payload,omitempty"`
}

type pagerDutyEventPayload struct {
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Severity string `json:"severity"`
}

func (n *Notifier) send(ctx context.Context, event pagerDutyEvent) {
	if !n.Enabled() {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("alert: failed to encode event")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("alert: failed to build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("alert: delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("alert: backend rejected event")
	}
}

// Trigger opens an incident identified by dedupKey with the given
// summary. source identifies the component raising the alert (e.g.
// "socket-listener").
func (n *Notifier) Trigger(ctx context.Context, dedupKey, source, summary string) {
	n.send(ctx, pagerDutyEvent{
		RoutingKey:  n.routingKey,
		EventAction: "trigger",
		DedupKey:    dedupKey,
		Payload: &pagerDutyEventPayload{
			Summary:  summary,
			Source:   source,
			Severity: "error",
		},
	})
}

// Resolve closes the incident identified by dedupKey.
func (n *Notifier) Resolve(ctx context.Context, dedupKey string) {
	n.send(ctx, pagerDutyEvent{
		RoutingKey:  n.routingKey,
		EventAction: "resolve",
		DedupKey:    dedupKey,
	})
}

// DedupKey builds a stable dedup key for a named incident class.
func DedupKey(class string) string {
	return fmt.Sprintf("acp-seller:%s", class)
}
