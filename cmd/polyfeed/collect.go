package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"polyfeed/internal/book"
	"polyfeed/internal/gamma"
	"polyfeed/internal/pricefeed"
	"polyfeed/internal/realtime"
	"polyfeed/internal/store"
	"polyfeed/pkg/httpclient"

	"github.com/spf13/cobra"
)

const (
	defaultSnapshotInterval = 15 * time.Second
	defaultBookDepth        = 10
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Stream market data into the database",
	RunE:  runCollect,
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg, err := readConfig(configPath)
	if err != nil {
		return fmt.Errorf("couldn't read config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	pool, err := store.NewPool(ctx, store.PoolConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		PoolSize: cfg.Database.PoolSize,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return fmt.Errorf("couldn't connect to database: %w", err)
	}
	st := store.New(pool)
	defer st.Close()
	logger.Info("connected to database")

	gammaClient := newGammaClient(cfg)
	assetIDs, err := syncMarkets(ctx, gammaClient, st, cfg, logger)
	if err != nil {
		return fmt.Errorf("couldn't sync markets: %w", err)
	}
	if len(assetIDs) == 0 {
		return fmt.Errorf("no open markets matched the collector filters")
	}
	logger.Info("markets synced", "assets", len(assetIDs))

	tracker := book.NewTracker(logger)
	channel := realtime.NewMarketChannel(realtime.Config{
		URL:          cfg.Realtime.URL,
		PingInterval: cfg.Realtime.PingInterval.Duration(),
		Logger:       logger,
		OnMessage: func(msg *realtime.Message) {
			tracker.Apply(msg)
			if msg.EventType == realtime.LastTradePriceEvent {
				recordTrade(ctx, st, msg.LastTradePrice, logger)
			}
		},
		OnError: func(err error) {
			logger.Warn("market channel error", "error", err)
		},
		OnClose: func(code int) {
			logger.Warn("market channel closed", "code", code)
		},
	})
	if err := channel.Connect(ctx, assetIDs, false); err != nil {
		return fmt.Errorf("couldn't connect market channel: %w", err)
	}
	defer channel.Disconnect()

	feed := pricefeed.New(pricefeed.Config{
		URL:    cfg.PriceFeed.URL,
		Logger: logger,
	}, cfg.PriceFeed.Symbols...)
	if len(cfg.PriceFeed.Symbols) > 0 {
		if err := feed.Connect(ctx); err != nil {
			return fmt.Errorf("couldn't connect price feed: %w", err)
		}
		defer feed.Disconnect()
	}

	interval := cfg.Collector.SnapshotInterval.Duration()
	if interval <= 0 {
		interval = defaultSnapshotInterval
	}
	depth := cfg.Collector.BookDepth
	if depth <= 0 {
		depth = defaultBookDepth
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			recordSnapshots(ctx, st, tracker, depth, logger)
			recordPrices(ctx, st, feed, cfg.PriceFeed.Symbols, logger)
		}
	}
}

func newGammaClient(cfg *config) *gamma.Client {
	var opts []httpclient.Option
	if cfg.Gamma.RateLimitPerSec > 0 {
		opts = append(opts, httpclient.WithRateLimit(cfg.Gamma.RateLimitPerSec, 1))
	}
	return gamma.New(cfg.Gamma.URL, opts...)
}

// syncMarkets upserts every open market matching the collector filters and
// returns their clob token ids.
func syncMarkets(ctx context.Context, client *gamma.Client, st *store.Store, cfg *config, logger *slog.Logger) ([]string, error) {
	closed := false
	params := gamma.ListParams{
		TagSlug: cfg.Collector.TagSlug,
		Closed:  &closed,
		Limit:   cfg.Collector.MarketLimit,
	}

	var assetIDs []string
	for event, err := range client.Events(ctx, params) {
		if err != nil {
			return nil, err
		}

		if err := st.UpsertEvent(ctx, store.UpsertEventParams{
			ID:        event.ID,
			Slug:      event.Slug,
			Title:     event.Title,
			StartDate: time.Unix(event.StartTimestamp, 0).UTC(),
			EndDate:   time.Unix(event.EndTimestamp, 0).UTC(),
			Closed:    event.Closed,
		}); err != nil {
			return nil, err
		}

		for _, market := range event.Markets {
			if market.ConditionID == "" {
				continue
			}
			if err := st.UpsertMarket(ctx, store.UpsertMarketParams{
				ConditionID: market.ConditionID,
				EventID:     event.ID,
				Question:    market.Question,
				Slug:        market.Slug,
				TokenIDs:    market.TokenIDs,
				Outcomes:    market.Outcomes,
				EndDate:     time.Unix(market.EndTimestamp, 0).UTC(),
				Closed:      market.Closed,
			}); err != nil {
				return nil, err
			}
			assetIDs = append(assetIDs, market.TokenIDs...)
		}

		logger.Debug("event synced", "event", event.Slug, "markets", len(event.Markets))
	}
	return assetIDs, nil
}

func recordTrade(ctx context.Context, st *store.Store, ltp *realtime.LastTradePriceMessage, logger *slog.Logger) {
	err := st.InsertTrade(ctx, store.InsertTradeParams{
		AssetID:         ltp.AssetID,
		Market:          ltp.Market,
		Price:           ltp.Price.Float64(),
		Size:            ltp.Size.Float64(),
		Side:            string(ltp.Side),
		TransactionHash: ltp.TransactionHash,
		Timestamp:       time.UnixMilli(int64(ltp.Timestamp)).UTC(),
	})
	if err != nil {
		logger.Warn("couldn't record trade", "asset", ltp.AssetID, "error", err)
	}
}

func recordSnapshots(ctx context.Context, st *store.Store, tracker *book.Tracker, depth int, logger *slog.Logger) {
	snapshots := tracker.Snapshots(depth)
	if len(snapshots) == 0 {
		return
	}

	now := time.Now().UTC()
	rows := make([]store.BookSnapshotRow, 0, len(snapshots))
	for _, snap := range snapshots {
		row := store.BookSnapshotRow{AssetID: snap.AssetID, CapturedAt: now}
		for _, lvl := range snap.Bids {
			row.BidPrices = append(row.BidPrices, lvl.Price.Float64())
			row.BidSizes = append(row.BidSizes, lvl.Size.Float64())
		}
		for _, lvl := range snap.Asks {
			row.AskPrices = append(row.AskPrices, lvl.Price.Float64())
			row.AskSizes = append(row.AskSizes, lvl.Size.Float64())
		}
		rows = append(rows, row)
	}

	if err := st.InsertBookSnapshots(ctx, rows); err != nil {
		logger.Warn("couldn't record book snapshots", "error", err)
		return
	}
	logger.Debug("book snapshots recorded", "count", len(rows))
}

func recordPrices(ctx context.Context, st *store.Store, feed *pricefeed.Feed, symbols []string, logger *slog.Logger) {
	for _, symbol := range symbols {
		payload, ok := feed.Price(symbol)
		if !ok {
			continue
		}
		err := st.InsertPriceTick(ctx, store.InsertPriceTickParams{
			Symbol:    payload.Symbol,
			Value:     payload.Value,
			Timestamp: time.UnixMilli(payload.Timestamp).UTC(),
		})
		if err != nil {
			logger.Warn("couldn't record price tick", "symbol", symbol, "error", err)
		}
	}
}
