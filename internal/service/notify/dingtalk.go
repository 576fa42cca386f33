package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"CryptoHunter/pkg/http"
)

// DingTalk delivers alert text through a group robot webhook. When a secret
// is configured the request is signed the way the robot security setting
// requires: HMAC-SHA256 over "{timestamp}\n{secret}", base64, url-escaped.
type DingTalk struct {
	webhookURL string
	secret     string
	client     *http.Client
}

// NewDingTalk creates a DingTalk notifier.
func NewDingTalk(webhookURL, secret string, timeout time.Duration) *DingTalk {
	return &DingTalk{
		webhookURL: webhookURL,
		secret:     secret,
		client:     http.NewClient(http.WithTimeout(timeout)),
	}
}

func (d *DingTalk) Name() string { return "dingtalk" }

func (d *DingTalk) Send(ctx context.Context, text string) error {
	var resp struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	err := d.client.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodPost,
		URL:    d.signedURL(time.Now()),
		Body: map[string]interface{}{
			"msgtype": "text",
			"text":    map[string]string{"content": "🐂 Crypto Hunter\n\n" + text},
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("dingtalk send: %w", err)
	}
	if resp.ErrCode != 0 {
		return fmt.Errorf("dingtalk send: errcode %d: %s", resp.ErrCode, resp.ErrMsg)
	}
	return nil
}

func (d *DingTalk) signedURL(now time.Time) string {
	if d.secret == "" {
		return d.webhookURL
	}
	ts := now.UnixMilli()
	mac := hmac.New(sha256.New, []byte(d.secret))
	fmt.Fprintf(mac, "%d\n%s", ts, d.secret)
	sign := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return fmt.Sprintf("%s&timestamp=%d&sign=%s", d.webhookURL, ts, sign)
}
