package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"CryptoHunter/internal/domain/models"
	drepo "CryptoHunter/internal/domain/repository"
	"CryptoHunter/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements a SnapshotStream backed by the Binance miniTicker
// WebSocket feed. Each frame carries close and open prices for the rolling
// 24h window, which is enough to derive a live snapshot between REST polls.
type Stream struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	// mu guards conn and connected; Reconnect swaps the connection while
	// the ping and read goroutines are still running.
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates a Binance miniTicker SnapshotStream.
func NewStream(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.SnapshotStream {
	return &Stream{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("binance stream connected")
	return nil
}

func (s *Stream) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Subscribe subscribes to the miniTicker channel for configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	conn, connected := s.conn, s.connected
	s.mu.Unlock()
	if conn == nil || !connected {
		return fmt.Errorf("binance stream not connected")
	}
	params := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		params = append(params, strings.ToLower(sym)+"usdt@miniTicker")
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     1,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.log.Info("binance stream subscribed", logger.Strings("channels", params))
	return nil
}

type miniTicker struct {
	Event       string `json:"e"`
	Symbol      string `json:"s"`
	Close       string `json:"c"`
	Open        string `json:"o"`
	QuoteVolume string `json:"q"`
}

// Read streams snapshots and errors.
func (s *Stream) Read(ctx context.Context) (<-chan *models.CoinSnapshot, <-chan error) {
	snaps := make(chan *models.CoinSnapshot, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if conn := s.current(); conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(snaps)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := s.current()
				if conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var m miniTicker
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore subscribe acks and other frames
					continue
				}
				if m.Event != "24hrMiniTicker" {
					continue
				}
				snap := tickerToSnapshot(m)
				if snap == nil {
					continue
				}
				select {
				case snaps <- snap:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return snaps, errs
}

func tickerToSnapshot(m miniTicker) *models.CoinSnapshot {
	price, err := strconv.ParseFloat(m.Close, 64)
	if err != nil || price <= 0 {
		return nil
	}
	open, _ := strconv.ParseFloat(m.Open, 64)
	volume, _ := strconv.ParseFloat(m.QuoteVolume, 64)

	var change float64
	if open > 0 {
		change = (price - open) / open * 100
	}

	symbol := strings.TrimSuffix(m.Symbol, "USDT")
	return &models.CoinSnapshot{
		Symbol:           symbol,
		Name:             symbol,
		Price:            price,
		PercentChange24h: change,
		Volume24h:        volume,
		Sources:          []string{"binance-ws"},
		FetchedAt:        time.Now(),
	}
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.connected = false
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
