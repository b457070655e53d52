package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TradeEvent          = "trade"
	OrderEvent          = "order"
	BookEvent           = "book"
	PriceChangeEvent    = "price_change"
	TickSizeChangeEvent = "tick_size_change"
	LastTradePriceEvent = "last_trade_price"
	BestBidAskEvent     = "best_bid_ask"
	NewMarketEvent      = "new_market"
	MarketResolvedEvent = "market_resolved"
)

// ErrUnknownEventType reports an inbound frame whose event_type is not part
// of the channel protocol. The translation fails; the frame is never coerced
// into a default shape.
var ErrUnknownEventType = errors.New("unknown event type")

// Message holds exactly one parsed channel message, selected by EventType.
type Message struct {
	EventType      string                 `json:"event_type"`
	Trade          *TradeMessage          `json:"trade,omitempty"`
	Order          *OrderMessage          `json:"order,omitempty"`
	Book           *BookMessage           `json:"book,omitempty"`
	PriceChange    *PriceChangeMessage    `json:"price_change,omitempty"`
	TickSizeChange *TickSizeChangeMessage `json:"tick_size_change,omitempty"`
	LastTradePrice *LastTradePriceMessage `json:"last_trade_price,omitempty"`
	BestBidAsk     *BestBidAskMessage     `json:"best_bid_ask,omitempty"`
	NewMarket      *NewMarketMessage      `json:"new_market,omitempty"`
	MarketResolved *MarketResolvedMessage `json:"market_resolved,omitempty"`
}

// ParseMessage translates one raw channel frame into its typed variant based
// on the event_type discriminant.
func ParseMessage(raw []byte) (*Message, error) {
	base := &Message{}
	if err := json.Unmarshal(raw, base); err != nil {
		return nil, fmt.Errorf("couldn't parse base message: %w", err)
	}

	switch base.EventType {
	case TradeEvent:
		t := &TradeMessage{}
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, fmt.Errorf("couldn't parse trade event: %w", err)
		}
		return &Message{EventType: TradeEvent, Trade: t}, nil
	case OrderEvent:
		o := &OrderMessage{}
		if err := json.Unmarshal(raw, o); err != nil {
			return nil, fmt.Errorf("couldn't parse order event: %w", err)
		}
		return &Message{EventType: OrderEvent, Order: o}, nil
	case BookEvent:
		b := &BookMessage{}
		if err := json.Unmarshal(raw, b); err != nil {
			return nil, fmt.Errorf("couldn't parse book event: %w", err)
		}
		return &Message{EventType: BookEvent, Book: b}, nil
	case PriceChangeEvent:
		pc := &PriceChangeMessage{}
		if err := json.Unmarshal(raw, pc); err != nil {
			return nil, fmt.Errorf("couldn't parse price change event: %w", err)
		}
		return &Message{EventType: PriceChangeEvent, PriceChange: pc}, nil
	case TickSizeChangeEvent:
		tsc := &TickSizeChangeMessage{}
		if err := json.Unmarshal(raw, tsc); err != nil {
			return nil, fmt.Errorf("couldn't parse tick size change event: %w", err)
		}
		return &Message{EventType: TickSizeChangeEvent, TickSizeChange: tsc}, nil
	case LastTradePriceEvent:
		ltp := &LastTradePriceMessage{}
		if err := json.Unmarshal(raw, ltp); err != nil {
			return nil, fmt.Errorf("couldn't parse last trade price event: %w", err)
		}
		return &Message{EventType: LastTradePriceEvent, LastTradePrice: ltp}, nil
	case BestBidAskEvent:
		bba := &BestBidAskMessage{}
		if err := json.Unmarshal(raw, bba); err != nil {
			return nil, fmt.Errorf("couldn't parse best bid ask event: %w", err)
		}
		return &Message{EventType: BestBidAskEvent, BestBidAsk: bba}, nil
	case NewMarketEvent:
		nm := &NewMarketMessage{}
		if err := json.Unmarshal(raw, nm); err != nil {
			return nil, fmt.Errorf("couldn't parse new market event: %w", err)
		}
		return &Message{EventType: NewMarketEvent, NewMarket: nm}, nil
	case MarketResolvedEvent:
		mr := &MarketResolvedMessage{}
		if err := json.Unmarshal(raw, mr); err != nil {
			return nil, fmt.Errorf("couldn't parse market resolved event: %w", err)
		}
		return &Message{EventType: MarketResolvedEvent, MarketResolved: mr}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, base.EventType)
	}
}
