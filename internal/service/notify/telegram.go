package notify

import (
	"context"
	"fmt"
	"time"

	"CryptoHunter/pkg/http"
)

// Telegram delivers alert text through the Bot API sendMessage call.
type Telegram struct {
	apiURL string
	token  string
	chatID string
	client *http.Client
}

// NewTelegram creates a Telegram notifier. apiURL is overridable for tests;
// empty means the public Bot API.
func NewTelegram(apiURL, token, chatID string, timeout time.Duration) *Telegram {
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &Telegram{
		apiURL: apiURL,
		token:  token,
		chatID: chatID,
		client: http.NewClient(http.WithTimeout(timeout)),
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, text string) error {
	var resp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	err := t.client.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token),
		Body: map[string]interface{}{
			"chat_id":    t.chatID,
			"text":       "🐂 *Crypto Hunter Alert*\n\n" + text,
			"parse_mode": "Markdown",
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram send: %s", resp.Description)
	}
	return nil
}
