package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the connection pool with the collector's write queries.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	s.pool.Close()
}

// WithTx runs fn inside a transaction, rolling back on error.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type UpsertEventParams struct {
	ID        string
	Slug      string
	Title     string
	StartDate time.Time
	EndDate   time.Time
	Closed    bool
}

const upsertEventSQL = `
INSERT INTO events (id, slug, title, start_date, end_date, closed, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (id) DO UPDATE SET
    slug = EXCLUDED.slug,
    title = EXCLUDED.title,
    start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date,
    closed = EXCLUDED.closed,
    updated_at = now()`

func (s *Store) UpsertEvent(ctx context.Context, p UpsertEventParams) error {
	_, err := s.pool.Exec(ctx, upsertEventSQL,
		p.ID, p.Slug, p.Title, p.StartDate, p.EndDate, p.Closed)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", p.ID, err)
	}
	return nil
}

type UpsertMarketParams struct {
	ConditionID string
	EventID     string
	Question    string
	Slug        string
	TokenIDs    []string
	Outcomes    []string
	EndDate     time.Time
	Closed      bool
}

const upsertMarketSQL = `
INSERT INTO markets (condition_id, event_id, question, slug, token_ids, outcomes, end_date, closed, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (condition_id) DO UPDATE SET
    event_id = EXCLUDED.event_id,
    question = EXCLUDED.question,
    slug = EXCLUDED.slug,
    token_ids = EXCLUDED.token_ids,
    outcomes = EXCLUDED.outcomes,
    end_date = EXCLUDED.end_date,
    closed = EXCLUDED.closed,
    updated_at = now()`

func (s *Store) UpsertMarket(ctx context.Context, p UpsertMarketParams) error {
	_, err := s.pool.Exec(ctx, upsertMarketSQL,
		p.ConditionID, p.EventID, p.Question, p.Slug, p.TokenIDs, p.Outcomes, p.EndDate, p.Closed)
	if err != nil {
		return fmt.Errorf("upsert market %s: %w", p.ConditionID, err)
	}
	return nil
}

type InsertTradeParams struct {
	AssetID         string
	Market          string
	Price           float64
	Size            float64
	Side            string
	TransactionHash string
	Timestamp       time.Time
}

const insertTradeSQL = `
INSERT INTO trades (asset_id, market, price, size, side, transaction_hash, traded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT DO NOTHING`

func (s *Store) InsertTrade(ctx context.Context, p InsertTradeParams) error {
	_, err := s.pool.Exec(ctx, insertTradeSQL,
		p.AssetID, p.Market, p.Price, p.Size, p.Side, p.TransactionHash, p.Timestamp)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", p.TransactionHash, err)
	}
	return nil
}

type InsertPriceTickParams struct {
	Symbol    string
	Value     float64
	Timestamp time.Time
}

const insertPriceTickSQL = `
INSERT INTO price_ticks (symbol, value, observed_at)
VALUES ($1, $2, $3)`

func (s *Store) InsertPriceTick(ctx context.Context, p InsertPriceTickParams) error {
	_, err := s.pool.Exec(ctx, insertPriceTickSQL, p.Symbol, p.Value, p.Timestamp)
	if err != nil {
		return fmt.Errorf("insert price tick %s: %w", p.Symbol, err)
	}
	return nil
}

type BookSnapshotRow struct {
	AssetID    string
	BidPrices  []float64
	BidSizes   []float64
	AskPrices  []float64
	AskSizes   []float64
	CapturedAt time.Time
}

const insertBookSnapshotSQL = `
INSERT INTO book_snapshots (asset_id, bid_prices, bid_sizes, ask_prices, ask_sizes, captured_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// InsertBookSnapshots writes all rows in a single batch round trip.
func (s *Store) InsertBookSnapshots(ctx context.Context, rows []BookSnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertBookSnapshotSQL,
			r.AssetID, r.BidPrices, r.BidSizes, r.AskPrices, r.AskSizes, r.CapturedAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert book snapshot %s: %w", rows[i].AssetID, err)
		}
	}
	return nil
}
