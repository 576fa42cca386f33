package notify

import (
	"context"
	"fmt"
	"time"

	"CryptoHunter/pkg/http"
)

// Feishu delivers alert text through a group bot webhook.
type Feishu struct {
	webhookURL string
	client     *http.Client
}

// NewFeishu creates a Feishu notifier.
func NewFeishu(webhookURL string, timeout time.Duration) *Feishu {
	return &Feishu{
		webhookURL: webhookURL,
		client:     http.NewClient(http.WithTimeout(timeout)),
	}
}

func (f *Feishu) Name() string { return "feishu" }

func (f *Feishu) Send(ctx context.Context, text string) error {
	var resp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	err := f.client.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodPost,
		URL:    f.webhookURL,
		Body: map[string]interface{}{
			"msg_type": "text",
			"content":  map[string]string{"text": "🐂 Crypto Hunter\n\n" + text},
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("feishu send: %w", err)
	}
	if resp.Code != 0 {
		return fmt.Errorf("feishu send: code %d: %s", resp.Code, resp.Msg)
	}
	return nil
}
