package pricefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

type feedServer struct {
	srv    *httptest.Server
	frames chan subscriptionMessage
	conns  chan *websocket.Conn
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{
		frames: make(chan subscriptionMessage, 32),
		conns:  make(chan *websocket.Conn, 8),
	}
	upgrader := websocket.Upgrader{}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.conns <- conn
		for {
			var msg subscriptionMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			fs.frames <- msg
		}
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *feedServer) url() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http")
}

func (fs *feedServer) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-fs.conns:
		return conn
	case <-time.After(testTimeout):
		t.Fatal("no connection arrived")
		return nil
	}
}

func (fs *feedServer) frame(t *testing.T) subscriptionMessage {
	t.Helper()
	select {
	case msg := <-fs.frames:
		return msg
	case <-time.After(testTimeout):
		t.Fatal("no subscription frame arrived")
		return subscriptionMessage{}
	}
}

func TestToSubscriptionItem(t *testing.T) {
	tests := []struct {
		symbol    string
		wantTopic string
		wantType  string
	}{
		{"btc/usd", TopicCryptoPricesChainlink, "*"},
		{"sol/usd", TopicCryptoPricesChainlink, "*"},
		{"btcusdt", TopicCryptoPrices, "update"},
		{"ethusdt", TopicCryptoPrices, "update"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			item := toSubscriptionItem(tt.symbol)
			assert.Equal(t, tt.wantTopic, item.Topic)
			assert.Equal(t, tt.wantType, item.Type)

			var filter struct {
				Symbol string `json:"symbol"`
			}
			require.NoError(t, json.Unmarshal([]byte(item.Filters), &filter))
			assert.Equal(t, tt.symbol, filter.Symbol)
		})
	}
}

func TestConnectSubscribesSeededSymbols(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url()}, "btcusdt", "eth/usd")
	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Disconnect()

	msg := fs.frame(t)
	assert.Equal(t, "subscribe", msg.Action)
	require.Len(t, msg.Subscriptions, 2)

	assert.Equal(t, 1, feed.RefCount("btcusdt"))
	assert.Equal(t, 1, feed.RefCount("eth/usd"))
}

func TestConnectTwiceIsNoOp(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url()}, "btcusdt")
	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Disconnect()
	fs.conn(t)

	require.NoError(t, feed.Connect(context.Background()))
	assert.Len(t, fs.conns, 0)
}

func TestSubscribeRefCounting(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url()}, "btcusdt")
	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Disconnect()
	fs.frame(t) // initial subscribe

	// second reference: no wire traffic
	require.NoError(t, feed.Subscribe(context.Background(), "btcusdt"))
	assert.Equal(t, 2, feed.RefCount("btcusdt"))
	assert.Len(t, fs.frames, 0)

	// first unsubscribe only drops the count
	require.NoError(t, feed.Unsubscribe("btcusdt"))
	assert.Equal(t, 1, feed.RefCount("btcusdt"))
	assert.Len(t, fs.frames, 0)

	// last unsubscribe goes out on the wire
	require.NoError(t, feed.Unsubscribe("btcusdt"))
	assert.Equal(t, 0, feed.RefCount("btcusdt"))
	msg := fs.frame(t)
	assert.Equal(t, "unsubscribe", msg.Action)
	require.Len(t, msg.Subscriptions, 1)

	// extra unsubscribes never go negative
	require.NoError(t, feed.Unsubscribe("btcusdt"))
	assert.Equal(t, 0, feed.RefCount("btcusdt"))
}

func TestSubscribeNewSymbolSendsWireSubscribe(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url()}, "btcusdt")
	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Disconnect()
	fs.frame(t)

	require.NoError(t, feed.Subscribe(context.Background(), "eth/usd"))
	msg := fs.frame(t)
	assert.Equal(t, "subscribe", msg.Action)
	require.Len(t, msg.Subscriptions, 1)
	assert.Equal(t, TopicCryptoPricesChainlink, msg.Subscriptions[0].Topic)
}

func TestSubscribeWhileDisconnectedConnects(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url()})
	require.NoError(t, feed.Subscribe(context.Background(), "btcusdt"))
	defer feed.Disconnect()

	msg := fs.frame(t)
	assert.Equal(t, "subscribe", msg.Action)
	assert.True(t, feed.IsConnected())
}

func TestPriceCache(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url()}, "btcusdt")
	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Disconnect()

	conn := fs.conn(t)
	tick := map[string]any{
		"topic":     TopicCryptoPrices,
		"type":      "update",
		"timestamp": 1700000000000,
		"payload": map[string]any{
			"symbol":    "btcusdt",
			"timestamp": 1700000000000,
			"value":     64250.5,
		},
	}
	require.NoError(t, conn.WriteJSON(tick))

	require.Eventually(t, func() bool {
		_, ok := feed.Price("btcusdt")
		return ok
	}, testTimeout, 5*time.Millisecond)

	payload, ok := feed.Price("btcusdt")
	require.True(t, ok)
	assert.Equal(t, 64250.5, payload.Value)
	assert.Equal(t, int64(1700000000000), payload.Timestamp)

	_, ok = feed.Price("ethusdt")
	assert.False(t, ok)
}

func TestAutoReconnectResubscribes(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url(), ReconnectDelay: 10 * time.Millisecond}, "btcusdt")
	require.NoError(t, feed.Connect(context.Background()))
	defer feed.Disconnect()

	conn := fs.conn(t)
	fs.frame(t)

	// server drops the connection; the feed should come back on its own
	conn.Close()

	fs.conn(t)
	msg := fs.frame(t)
	assert.Equal(t, "subscribe", msg.Action)
	require.Eventually(t, feed.IsConnected, testTimeout, 5*time.Millisecond)
}

func TestDisconnectStopsReconnect(t *testing.T) {
	fs := newFeedServer(t)

	feed := New(Config{URL: fs.url(), ReconnectDelay: 10 * time.Millisecond}, "btcusdt")
	require.NoError(t, feed.Connect(context.Background()))
	fs.conn(t)

	feed.Disconnect()

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, fs.conns, 0)
	assert.False(t, feed.IsConnected())
}

func TestDefaultSingleton(t *testing.T) {
	ResetForTests()
	t.Cleanup(ResetForTests)

	first := Default()
	second := Default()
	assert.Same(t, first, second)

	ResetForTests()
	third := Default()
	assert.NotSame(t, first, third)
}

func TestTickerSymbol(t *testing.T) {
	tests := []struct {
		ticker  string
		source  string
		want    string
		wantErr bool
	}{
		{"btc", SourceChainlink, "btc/usd", false},
		{"btc", SourceBinance, "btcusdt", false},
		{"xrp", SourceChainlink, "xrp/usd", false},
		{"doge", SourceBinance, "", true},
		{"btc", "kraken", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ticker+"/"+tt.source, func(t *testing.T) {
			got, err := TickerSymbol(tt.ticker, tt.source)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
