package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts messages to a channel through the Bot API sendMessage call.
type Telegram struct {
	APIBase   string
	Token     string
	ChannelID string
	Client    *http.Client
	Attempts  int
}

// NewTelegram returns nil when the channel is disabled (empty or "0" chat
// id, or empty token). channelID is a numeric id or an @channelusername.
func NewTelegram(apiBase, token, channelID string) *Telegram {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" || channelID == "0" || token == "" {
		return nil
	}
	if apiBase == "" {
		apiBase = telegramAPI
	}
	return &Telegram{
		APIBase:   strings.TrimRight(apiBase, "/"),
		Token:     token,
		ChannelID: channelID,
		Client:    &http.Client{Timeout: 10 * time.Second},
		Attempts:  defaultAttempts,
	}
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Deliver(ctx context.Context, message string) error {
	if t == nil {
		return errors.New("telegram disabled")
	}
	q := url.Values{}
	q.Set("chat_id", t.ChannelID)
	q.Set("text", message)
	endpoint := t.APIBase + "/bot" + t.Token + "/sendMessage?" + q.Encode()

	return retry(ctx, t.Attempts, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		resp, err := t.Client.Do(req)
		if err != nil {
			// the error string contains the bot token via the URL
			return errors.New("telegram sendMessage: " + redact(err.Error(), t.Token))
		}
		defer resp.Body.Close()

		var out telegramResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)
		if resp.StatusCode/100 != 2 || !out.OK {
			return permanentOn4xx(resp.StatusCode,
				errors.Errorf("telegram sendMessage: status %d: %s", resp.StatusCode, out.Description))
		}
		return nil
	})
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<token>")
}
