package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"CryptoHunter/internal/domain/repository"
	"CryptoHunter/pkg/logger"
)

type stubMetrics struct {
	mu       sync.Mutex
	outcomes map[string]string
}

func (m *stubMetrics) RecordCycle(string)              {}
func (m *stubMetrics) RecordAlert(string, string)      {}
func (m *stubMetrics) RecordFetchError(string)         {}
func (m *stubMetrics) RecordLastPrice(string, float64) {}
func (m *stubMetrics) RecordLatency(string, float64)   {}

func (m *stubMetrics) RecordNotification(channel, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]string)
	}
	m.outcomes[channel] = outcome
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestTelegramSend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/bottoken123/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, "token123", "chat42", 5*time.Second)
	if err := tg.Send(context.Background(), "SOL moved"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["chat_id"] != "chat42" {
		t.Fatalf("chat_id = %v", got["chat_id"])
	}
	if text, _ := got["text"].(string); !strings.Contains(text, "SOL moved") {
		t.Fatalf("text = %v", got["text"])
	}
}

func TestTelegramAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, "t", "c", 5*time.Second)
	err := tg.Send(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestFeishuSend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"code":0}`))
	}))
	defer srv.Close()

	fs := NewFeishu(srv.URL, 5*time.Second)
	if err := fs.Send(context.Background(), "report"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["msg_type"] != "text" {
		t.Fatalf("msg_type = %v", got["msg_type"])
	}
}

func TestDingTalkSignedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("timestamp") == "" || q.Get("sign") == "" {
			t.Errorf("missing signature params: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer srv.Close()

	dt := NewDingTalk(srv.URL+"?access_token=abc", "secret", 5*time.Second)
	if err := dt.Send(context.Background(), "report"); err != nil {
		t.Fatalf("send: %v", err)
	}
}

type okNotifier struct{ name string }

func (n okNotifier) Name() string                       { return n.name }
func (n okNotifier) Send(context.Context, string) error { return nil }

type badNotifier struct{}

func (badNotifier) Name() string                       { return "bad" }
func (badNotifier) Send(context.Context, string) error { return errors.New("down") }

func TestFanoutCountsDeliveries(t *testing.T) {
	m := &stubMetrics{}
	f := NewFanout([]repository.Notifier{okNotifier{"a"}, badNotifier{}, okNotifier{"b"}}, m, testLogger(t))

	if got := f.Broadcast(context.Background(), "text"); got != 2 {
		t.Fatalf("delivered = %d, want 2", got)
	}
	if m.outcomes["bad"] != "error" || m.outcomes["a"] != "ok" {
		t.Fatalf("outcomes = %v", m.outcomes)
	}
}
