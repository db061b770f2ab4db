package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

type Slack struct {
	Webhook  string
	Client   *http.Client
	Attempts int
}

// NewSlack returns nil when no webhook is configured.
func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook:  webhook,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Attempts: defaultAttempts,
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Deliver(ctx context.Context, message string) error {
	if s == nil || s.Webhook == "" {
		return errors.New("slack disabled")
	}
	body, err := json.Marshal(slackPayload{Text: message})
	if err != nil {
		return err
	}
	return retry(ctx, s.Attempts, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.Client.Do(req)
		if err != nil {
			return errors.Wrap(err, "slack webhook")
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return permanentOn4xx(resp.StatusCode, errors.Errorf("slack webhook: status %d", resp.StatusCode))
		}
		return nil
	})
}
