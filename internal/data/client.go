// Package data consumes Polymarket data-api endpoints: positions, trades,
// leaderboards and portfolio values.
package data

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"polyfeed/pkg/httpclient"
	"polyfeed/pkg/pagination"
)

const (
	DefaultBaseURL = "https://data-api.polymarket.com"

	DefaultPositionsBatchSize       = 100
	DefaultTradesBatchSize          = 150
	DefaultLeaderboardBatchSize     = 50
	DefaultClosedPositionsBatchSize = 50
	DefaultActivityBatchSize        = 500
)

var okStatuses = []int{200}

type Client struct {
	http *httpclient.Client
}

func New(baseURL string, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpclient.New(baseURL, opts...)}
}

// PositionsParams filters the /positions list.
type PositionsParams struct {
	Address       string
	ConditionIDs  []string
	SizeThreshold float64
	Redeemable    *bool
	Mergeable     *bool
	SortBy        string
	SortDirection string
	Title         string
	Limit         int
	BatchSize     int
}

func (p PositionsParams) values(limit, offset int) url.Values {
	values := url.Values{}
	values.Set("user", p.Address)
	values.Set("sizeThreshold", strconv.FormatFloat(p.SizeThreshold, 'f', -1, 64))
	if len(p.ConditionIDs) > 0 {
		values.Set("market", strings.Join(p.ConditionIDs, ","))
	}
	if p.Redeemable != nil {
		values.Set("redeemable", strconv.FormatBool(*p.Redeemable))
	}
	if p.Mergeable != nil {
		values.Set("mergeable", strconv.FormatBool(*p.Mergeable))
	}
	if p.SortBy != "" {
		values.Set("sortBy", p.SortBy)
	}
	if p.SortDirection != "" {
		values.Set("sortDirection", p.SortDirection)
	}
	if p.Title != "" {
		values.Set("title", p.Title)
	}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))
	return values
}

// GetPositionsPage fetches one page of /positions.
func (c *Client) GetPositionsPage(ctx context.Context, params PositionsParams, limit, offset int) ([]Position, error) {
	positions, err := httpclient.GetResource[[]Position](ctx, c.http, "/positions", params.values(limit, offset), okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get positions page at offset %d: %w", offset, err)
	}
	return positions, nil
}

// Positions iterates the user's positions until the endpoint is exhausted.
func (c *Client) Positions(ctx context.Context, params PositionsParams) iter.Seq2[Position, error] {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultPositionsBatchSize
	}
	return pagination.Offset(ctx, func(ctx context.Context, limit, offset int) ([]Position, error) {
		return c.GetPositionsPage(ctx, params, limit, offset)
	}, pagination.Config[Position]{
		BatchSize: batchSize,
		Limit:     params.Limit,
	})
}

// TradesParams filters the /trades list.
type TradesParams struct {
	Address      string
	ConditionIDs []string
	EventID      string
	TakerOnly    bool
	FilterType   string
	FilterAmount float64
	Side         string
	Limit        int
	BatchSize    int
}

func (p TradesParams) values(limit, offset int) url.Values {
	values := url.Values{}
	values.Set("user", p.Address)
	values.Set("takerOnly", strconv.FormatBool(p.TakerOnly))
	if len(p.ConditionIDs) > 0 {
		values.Set("market", strings.Join(p.ConditionIDs, ","))
	}
	if p.EventID != "" {
		values.Set("eventId", p.EventID)
	}
	if p.FilterType != "" {
		values.Set("filterType", p.FilterType)
		values.Set("filterAmount", strconv.FormatFloat(p.FilterAmount, 'f', -1, 64))
	}
	if p.Side != "" {
		values.Set("side", p.Side)
	}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))
	return values
}

// TradeKey is the composite identity used to suppress duplicate trades. The
// endpoint sorts by timestamp descending, which is not a stable total order
// under concurrent inserts, so the same logical trade can reappear in later,
// not necessarily adjacent, pages.
func TradeKey(t Trade) string {
	return t.TransactionHash + "|" + t.Asset + "|" +
		strconv.FormatFloat(t.Size, 'f', -1, 64) + "|" +
		strconv.FormatFloat(t.Price, 'f', -1, 64)
}

// GetTradesPage fetches one page of /trades.
func (c *Client) GetTradesPage(ctx context.Context, params TradesParams, limit, offset int) ([]Trade, error) {
	trades, err := httpclient.GetResource[[]Trade](ctx, c.http, "/trades", params.values(limit, offset), okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get trades page at offset %d: %w", offset, err)
	}
	return trades, nil
}

// Trades iterates the user's trades with cross-page deduplication: the key
// set spans the whole call, and the page offset still advances by the raw
// page length so skipped duplicates never shift the window.
func (c *Client) Trades(ctx context.Context, params TradesParams) iter.Seq2[Trade, error] {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultTradesBatchSize
	}
	return pagination.Offset(ctx, func(ctx context.Context, limit, offset int) ([]Trade, error) {
		return c.GetTradesPage(ctx, params, limit, offset)
	}, pagination.Config[Trade]{
		BatchSize: batchSize,
		Limit:     params.Limit,
		Key:       TradeKey,
	})
}

// LeaderboardParams filters the /v1/leaderboard list.
type LeaderboardParams struct {
	Window    string
	RankType  string
	Limit     int
	BatchSize int
}

func (p LeaderboardParams) values(limit, offset int) url.Values {
	values := url.Values{}
	if p.Window != "" {
		values.Set("window", p.Window)
	}
	if p.RankType != "" {
		values.Set("rankType", p.RankType)
	}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))
	return values
}

// GetLeaderboardPage fetches one page of the trader leaderboard.
func (c *Client) GetLeaderboardPage(ctx context.Context, params LeaderboardParams, limit, offset int) ([]LeaderboardEntry, error) {
	entries, err := httpclient.GetResource[[]LeaderboardEntry](ctx, c.http, "/v1/leaderboard", params.values(limit, offset), okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get leaderboard page at offset %d: %w", offset, err)
	}
	return entries, nil
}

// Leaderboard iterates the trader leaderboard.
func (c *Client) Leaderboard(ctx context.Context, params LeaderboardParams) iter.Seq2[LeaderboardEntry, error] {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultLeaderboardBatchSize
	}
	return pagination.Offset(ctx, func(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
		return c.GetLeaderboardPage(ctx, params, limit, offset)
	}, pagination.Config[LeaderboardEntry]{
		BatchSize: batchSize,
		Limit:     params.Limit,
	})
}

// GetPortfolioValue fetches the user's portfolio value, optionally scoped to
// condition ids.
func (c *Client) GetPortfolioValue(ctx context.Context, address string, conditionIDs []string) (float64, error) {
	values := url.Values{}
	values.Set("user", address)
	for _, conditionID := range conditionIDs {
		values.Add("market", conditionID)
	}
	resp, err := httpclient.GetResource[[]UserValue](ctx, c.http, "/value", values, okStatuses)
	if err != nil {
		return 0, fmt.Errorf("couldn't get portfolio value for %s: %w", address, err)
	}
	if len(resp) == 0 {
		return 0, nil
	}
	return resp[0].Value, nil
}

// GetTraded fetches the user's lifetime traded volume.
func (c *Client) GetTraded(ctx context.Context, address string) (float64, error) {
	values := url.Values{}
	values.Set("user", address)
	resp, err := httpclient.GetResource[struct {
		User   string  `json:"user"`
		Traded float64 `json:"traded"`
	}](ctx, c.http, "/traded", values, okStatuses)
	if err != nil {
		return 0, fmt.Errorf("couldn't get traded volume for %s: %w", address, err)
	}
	return resp.Traded, nil
}

// GetPriceHistory fetches sampled price history for a token.
func (c *Client) GetPriceHistory(ctx context.Context, tokenID string, fidelityMin int, startTimestamp int64) ([]PricePoint, error) {
	values := url.Values{}
	values.Set("market", tokenID)
	values.Set("fidelity", strconv.Itoa(fidelityMin))
	values.Set("startTs", strconv.FormatInt(startTimestamp, 10))
	resp, err := httpclient.GetResource[struct {
		History []PricePoint `json:"history"`
	}](ctx, c.http, "/prices-history", values, okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get price history for %s: %w", tokenID, err)
	}
	return resp.History, nil
}

// ClosedPositionsParams filters the /closed-positions list.
type ClosedPositionsParams struct {
	Address       string
	ConditionIDs  []string
	SortBy        string
	SortDirection string
	Limit         int
	BatchSize     int
}

func (p ClosedPositionsParams) values(limit, offset int) url.Values {
	values := url.Values{}
	values.Set("user", p.Address)
	if len(p.ConditionIDs) > 0 {
		values.Set("market", strings.Join(p.ConditionIDs, ","))
	}
	if p.SortBy != "" {
		values.Set("sortBy", p.SortBy)
	}
	if p.SortDirection != "" {
		values.Set("sortDirection", p.SortDirection)
	}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))
	return values
}

// GetClosedPositionsPage fetches one page of /closed-positions.
func (c *Client) GetClosedPositionsPage(ctx context.Context, params ClosedPositionsParams, limit, offset int) ([]ClosedPosition, error) {
	positions, err := httpclient.GetResource[[]ClosedPosition](ctx, c.http, "/closed-positions", params.values(limit, offset), okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get closed positions page at offset %d: %w", offset, err)
	}
	return positions, nil
}

// ClosedPositions iterates the user's settled positions.
func (c *Client) ClosedPositions(ctx context.Context, params ClosedPositionsParams) iter.Seq2[ClosedPosition, error] {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultClosedPositionsBatchSize
	}
	return pagination.Offset(ctx, func(ctx context.Context, limit, offset int) ([]ClosedPosition, error) {
		return c.GetClosedPositionsPage(ctx, params, limit, offset)
	}, pagination.Config[ClosedPosition]{
		BatchSize: batchSize,
		Limit:     params.Limit,
	})
}

// ActivityParams filters the /activity list.
type ActivityParams struct {
	Address      string
	ConditionIDs []string
	Type         string // TRADE, SPLIT, MERGE, REDEEM
	Side         string
	Limit        int
	BatchSize    int
}

func (p ActivityParams) values(limit, offset int) url.Values {
	values := url.Values{}
	values.Set("user", p.Address)
	if len(p.ConditionIDs) > 0 {
		values.Set("market", strings.Join(p.ConditionIDs, ","))
	}
	if p.Type != "" {
		values.Set("type", p.Type)
	}
	if p.Side != "" {
		values.Set("side", p.Side)
	}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))
	return values
}

// GetActivityPage fetches one page of /activity.
func (c *Client) GetActivityPage(ctx context.Context, params ActivityParams, limit, offset int) ([]Activity, error) {
	activity, err := httpclient.GetResource[[]Activity](ctx, c.http, "/activity", params.values(limit, offset), okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get activity page at offset %d: %w", offset, err)
	}
	return activity, nil
}

// Activities iterates the user's activity log, newest first.
func (c *Client) Activities(ctx context.Context, params ActivityParams) iter.Seq2[Activity, error] {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultActivityBatchSize
	}
	return pagination.Offset(ctx, func(ctx context.Context, limit, offset int) ([]Activity, error) {
		return c.GetActivityPage(ctx, params, limit, offset)
	}, pagination.Config[Activity]{
		BatchSize: batchSize,
		Limit:     params.Limit,
	})
}
