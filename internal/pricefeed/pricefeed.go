// Package pricefeed streams chainlink and binance crypto prices from the
// Polymarket real-time data service, with ref-counted symbol subscriptions.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	BaseURL = "wss://ws-live-data.polymarket.com"

	TopicCryptoPricesChainlink = "crypto_prices_chainlink"
	TopicCryptoPrices          = "crypto_prices"

	HandshakeTimeout      = 30 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	DefaultReconnectDelay = time.Second
)

// PricePayload is the latest tick for one symbol.
type PricePayload struct {
	Symbol            string  `json:"symbol"`
	Timestamp         int64   `json:"timestamp"`
	Value             float64 `json:"value"`
	FullAccuracyValue string  `json:"full_accuracy_value,omitempty"`
}

type feedMessage struct {
	Topic     string          `json:"topic"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type subscriptionItem struct {
	Topic   string `json:"topic"`
	Type    string `json:"type"`
	Filters string `json:"filters"`
}

type subscriptionMessage struct {
	Action        string             `json:"action"`
	Subscriptions []subscriptionItem `json:"subscriptions"`
}

// toSubscriptionItem routes a symbol to its upstream source: chainlink
// symbols carry a slash ("btc/usd"), binance pairs do not ("btcusdt").
func toSubscriptionItem(symbol string) subscriptionItem {
	if strings.Contains(symbol, "/") {
		return subscriptionItem{
			Topic:   TopicCryptoPricesChainlink,
			Type:    "*",
			Filters: fmt.Sprintf(`{"symbol":%q}`, symbol),
		}
	}
	return subscriptionItem{
		Topic:   TopicCryptoPrices,
		Type:    "update",
		Filters: fmt.Sprintf(`{"symbol":%q}`, symbol),
	}
}

// Config customizes a Feed; the zero value works against production.
type Config struct {
	URL            string
	Logger         *slog.Logger
	ReconnectDelay time.Duration
}

// Feed maintains one connection to the real-time data service. Symbol
// subscriptions are ref-counted: only 0->1 transitions send a wire subscribe
// and only 1->0 transitions send a wire unsubscribe.
type Feed struct {
	url            string
	log            *slog.Logger
	reconnectDelay time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	dialing bool
	closing bool
	refs    map[string]int
	prices  map[string]PricePayload
}

// New creates a Feed pre-subscribed (ref count 1) to the given symbols.
// Call Connect or Subscribe to start streaming.
func New(cfg Config, symbols ...string) *Feed {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	url := cfg.URL
	if url == "" {
		url = BaseURL
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	f := &Feed{
		url:            url,
		log:            logger.With("component", "pricefeed"),
		reconnectDelay: delay,
		refs:           make(map[string]int),
		prices:         make(map[string]PricePayload),
	}
	for _, symbol := range symbols {
		f.refs[symbol] = 1
	}
	return f
}

// Connect dials the feed and subscribes to every symbol with a positive ref
// count. Connecting an already-connected feed is a no-op.
func (f *Feed) Connect(ctx context.Context) error {
	f.mu.Lock()
	if f.conn != nil || f.dialing {
		f.mu.Unlock()
		return nil
	}
	f.dialing = true
	f.closing = false
	f.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, f.url, http.Header{})
	if err != nil {
		f.mu.Lock()
		f.dialing = false
		f.mu.Unlock()
		return fmt.Errorf("couldn't connect price feed: %w", err)
	}
	f.log.Info("price feed connected", "status", resp.Status)

	f.mu.Lock()
	f.conn = conn
	f.dialing = false
	active := f.activeSymbolsLocked()
	f.mu.Unlock()

	if len(active) > 0 {
		if err := f.sendSubscription(conn, "subscribe", active); err != nil {
			f.mu.Lock()
			f.conn = nil
			f.mu.Unlock()
			conn.Close()
			return fmt.Errorf("couldn't subscribe price feed: %w", err)
		}
	}

	go f.readLoop(conn)
	return nil
}

// Disconnect closes the connection and disables auto-reconnect.
func (f *Feed) Disconnect() {
	f.mu.Lock()
	conn := f.conn
	f.conn = nil
	f.closing = true
	f.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

// Subscribe bumps the ref count for each symbol. Newly activated symbols are
// subscribed on the wire; a first subscribe also triggers the connect.
func (f *Feed) Subscribe(ctx context.Context, symbols ...string) error {
	f.mu.Lock()
	activated := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		f.refs[symbol]++
		if f.refs[symbol] == 1 {
			activated = append(activated, symbol)
		}
	}
	conn := f.conn
	f.mu.Unlock()

	if conn == nil {
		// Connect subscribes every active symbol itself.
		return f.Connect(ctx)
	}
	if len(activated) == 0 {
		return nil
	}
	if err := f.sendSubscription(conn, "subscribe", activated); err != nil {
		return fmt.Errorf("couldn't subscribe symbols: %w", err)
	}
	return nil
}

// Unsubscribe drops one reference per symbol; symbols reaching zero are
// removed and unsubscribed on the wire. Counts never go negative.
func (f *Feed) Unsubscribe(symbols ...string) error {
	f.mu.Lock()
	deactivated := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		count, ok := f.refs[symbol]
		if !ok || count <= 0 {
			continue
		}
		if count == 1 {
			delete(f.refs, symbol)
			deactivated = append(deactivated, symbol)
			continue
		}
		f.refs[symbol] = count - 1
	}
	conn := f.conn
	f.mu.Unlock()

	if conn == nil || len(deactivated) == 0 {
		return nil
	}
	if err := f.sendSubscription(conn, "unsubscribe", deactivated); err != nil {
		return fmt.Errorf("couldn't unsubscribe symbols: %w", err)
	}
	return nil
}

// Price returns the most recent payload for symbol, if any tick arrived.
func (f *Feed) Price(symbol string) (PricePayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.prices[symbol]
	return payload, ok
}

// RefCount reports the current subscriber count for symbol.
func (f *Feed) RefCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs[symbol]
}

func (f *Feed) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn != nil
}

func (f *Feed) activeSymbolsLocked() []string {
	active := make([]string, 0, len(f.refs))
	for symbol, count := range f.refs {
		if count > 0 {
			active = append(active, symbol)
		}
	}
	return active
}

func (f *Feed) sendSubscription(conn *websocket.Conn, action string, symbols []string) error {
	items := make([]subscriptionItem, 0, len(symbols))
	for _, symbol := range symbols {
		items = append(items, toSubscriptionItem(symbol))
	}
	conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
	return conn.WriteJSON(subscriptionMessage{Action: action, Subscriptions: items})
}

func (f *Feed) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			f.mu.Lock()
			if f.conn == conn {
				f.conn = nil
			}
			closing := f.closing
			f.mu.Unlock()
			conn.Close()

			if closing {
				return
			}
			f.log.Warn("price feed disconnected", "error", err)
			f.reconnect()
			return
		}
		f.handleMessage(data)
	}
}

func (f *Feed) reconnect() {
	for {
		time.Sleep(f.reconnectDelay)

		f.mu.Lock()
		closing := f.closing
		f.mu.Unlock()
		if closing {
			return
		}

		if err := f.Connect(context.Background()); err != nil {
			f.log.Warn("price feed reconnect failed", "error", err)
			continue
		}
		return
	}
}

func (f *Feed) handleMessage(data []byte) {
	var msg feedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		f.log.Warn("couldn't parse price feed message", "error", err)
		return
	}
	if len(msg.Payload) == 0 {
		return
	}

	var payload PricePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		f.log.Warn("couldn't parse price payload", "error", err)
		return
	}
	if payload.Symbol == "" {
		// connection acks and batched snapshots carry no symbol
		return
	}

	f.mu.Lock()
	f.prices[payload.Symbol] = payload
	f.mu.Unlock()
}
