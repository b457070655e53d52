package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"polyfeed/internal/price"
)

// Number is a float the wire may encode as a raw number or a decimal string.
type Number float64

var _ json.Unmarshaler = (*Number)(nil)

func (n *Number) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("couldn't parse number %q: %w", data, err)
	}
	*n = Number(v)
	return nil
}

// Timestamp is a unix epoch value sent as a decimal string or raw number.
type Timestamp int64

var _ json.Unmarshaler = (*Timestamp)(nil)

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var n Number
	if err := n.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("couldn't parse timestamp: %w", err)
	}
	*t = Timestamp(n)
	return nil
}

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type OrderType string

const (
	GTC OrderType = "GTC"
	FOK OrderType = "FOK"
	GTD OrderType = "GTD"
	FAK OrderType = "FAK"
)

type MakerOrder struct {
	AssetID       string      `json:"asset_id"`
	FeeRateBPS    Number      `json:"fee_rate_bps"`
	MakerAddress  string      `json:"maker_address"`
	MatchedAmount price.Size  `json:"matched_amount"`
	OrderID       string      `json:"order_id"`
	Outcome       string      `json:"outcome"`
	OutcomeIndex  int         `json:"outcome_index"`
	Owner         string      `json:"owner"`
	Price         price.Price `json:"price"`
	Side          Side        `json:"side"`
}

type TradeMessage struct {
	AssetID         string       `json:"asset_id"`
	BucketIndex     int          `json:"bucket_index"`
	FeeRateBPS      Number       `json:"fee_rate_bps"`
	ID              string       `json:"id"`
	LastUpdate      Timestamp    `json:"last_update"`
	MakerAddress    string       `json:"maker_address"`
	MakerOrders     []MakerOrder `json:"maker_orders"`
	Market          string       `json:"market"`
	MatchTime       Timestamp    `json:"match_time"`
	Outcome         string       `json:"outcome"`
	Owner           string       `json:"owner"`
	Price           price.Price  `json:"price"`
	Side            Side         `json:"side"`
	Size            price.Size   `json:"size"`
	Status          string       `json:"status"`
	TakerOrderID    string       `json:"taker_order_id"`
	Timestamp       Timestamp    `json:"timestamp"`
	TradeOwner      string       `json:"trade_owner"`
	TraderSide      string       `json:"trader_side"`
	TransactionHash string       `json:"transaction_hash"`
}

type OrderMessage struct {
	AssociateTrades []string    `json:"associate_trades"`
	AssetID         string      `json:"asset_id"`
	CreatedAt       Timestamp   `json:"created_at"`
	Expiration      Timestamp   `json:"expiration"`
	ID              string      `json:"id"`
	MakerAddress    string      `json:"maker_address"`
	Market          string      `json:"market"`
	OrderOwner      string      `json:"order_owner"`
	OrderType       OrderType   `json:"order_type"`
	OriginalSize    price.Size  `json:"original_size"`
	Outcome         string      `json:"outcome"`
	Owner           string      `json:"owner"`
	Price           price.Price `json:"price"`
	Side            Side        `json:"side"`
	SizeMatched     price.Size  `json:"size_matched"`
	Status          string      `json:"status"`
	Timestamp       Timestamp   `json:"timestamp"`
	Type            string      `json:"type"`
}

type OrderSummary struct {
	Price price.Price `json:"price"`
	Size  price.Size  `json:"size"`
}

type BookMessage struct {
	Asks      []OrderSummary `json:"asks"`
	AssetID   string         `json:"asset_id"`
	Bids      []OrderSummary `json:"bids"`
	Hash      string         `json:"hash"`
	Market    string         `json:"market"`
	Timestamp Timestamp      `json:"timestamp"`
}

type PriceChange struct {
	AssetID string      `json:"asset_id"`
	BestAsk price.Price `json:"best_ask"`
	BestBid price.Price `json:"best_bid"`
	Hash    string      `json:"hash"`
	Price   price.Price `json:"price"`
	Side    Side        `json:"side"`
	Size    price.Size  `json:"size"`
}

type PriceChangeMessage struct {
	Market       string        `json:"market"`
	PriceChanges []PriceChange `json:"price_changes"`
	Timestamp    Timestamp     `json:"timestamp"`
}

type TickSizeChangeMessage struct {
	AssetID     string      `json:"asset_id"`
	Market      string      `json:"market"`
	NewTickSize price.Price `json:"new_tick_size"`
	OldTickSize price.Price `json:"old_tick_size"`
	Timestamp   Timestamp   `json:"timestamp"`
}

type LastTradePriceMessage struct {
	AssetID         string      `json:"asset_id"`
	FeeRateBPS      Number      `json:"fee_rate_bps"`
	Market          string      `json:"market"`
	Price           price.Price `json:"price"`
	Side            Side        `json:"side"`
	Size            price.Size  `json:"size"`
	Timestamp       Timestamp   `json:"timestamp"`
	TransactionHash string      `json:"transaction_hash"`
}

type BestBidAskMessage struct {
	AssetID   string      `json:"asset_id"`
	BestAsk   price.Price `json:"best_ask"`
	BestBid   price.Price `json:"best_bid"`
	Market    string      `json:"market"`
	Spread    price.Price `json:"spread"`
	Timestamp Timestamp   `json:"timestamp"`
}

type EventMessage struct {
	Description string `json:"description"`
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Ticker      string `json:"ticker"`
	Title       string `json:"title"`
}

type NewMarketMessage struct {
	AssetsIDs    []string     `json:"assets_ids"`
	Description  string       `json:"description"`
	EventMessage EventMessage `json:"event_message"`
	ID           string       `json:"id"`
	Market       string       `json:"market"`
	Outcomes     []string     `json:"outcomes"`
	Question     string       `json:"question"`
	Slug         string       `json:"slug"`
	Timestamp    Timestamp    `json:"timestamp"`
}

type MarketResolvedMessage struct {
	AssetsIDs      []string     `json:"assets_ids"`
	Description    string       `json:"description"`
	EventMessage   EventMessage `json:"event_message"`
	ID             string       `json:"id"`
	Market         string       `json:"market"`
	Outcomes       []string     `json:"outcomes"`
	Question       string       `json:"question"`
	Slug           string       `json:"slug"`
	Timestamp      Timestamp    `json:"timestamp"`
	WinningAssetID string       `json:"winning_asset_id"`
	WinningOutcome string       `json:"winning_outcome"`
}
