// Package webhook implements an HTTP webhook notifier
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/insight/internal/core"
)

// Webhook implements the Notifier interface for HTTP webhooks
type Webhook struct {
	name    string
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a new Webhook notifier
func New(name, url string, headers map[string]string) (*Webhook, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook %s: url is required", name)
	}
	if name == "" {
		name = "webhook"
	}
	return &Webhook{
		name:    name,
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (w *Webhook) Name() string { return w.name }

func (w *Webhook) Send(rec core.Recommendation) error {
	return w.post(recommendationToPayload(rec))
}

func recommendationToPayload(rec core.Recommendation) map[string]any {
	payload := map[string]any{
		"type":            "recommendation",
		"ticker":          rec.Ticker,
		"recommendation":  rec.Recommendation,
		"confidence":      rec.Confidence,
		"consensus_score": rec.ConsensusScore,
		"risk_level":      rec.RiskLevel,
		"summary":         rec.Summary,
		"generated_at":    time.Now().UTC().Format(time.RFC3339),
	}
	if rec.TargetPrice != nil {
		payload["target_price"] = *rec.TargetPrice
	}
	if rec.UpsidePotential != nil {
		payload["upside_potential"] = *rec.UpsidePotential
	}
	return payload
}

func (w *Webhook) post(payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
