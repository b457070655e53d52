package gamma

import "encoding/json"

// Float tolerates numbers that the API encodes as strings, numbers or null;
// anything unparseable coerces to zero.
type Float float64

var _ json.Unmarshaler = (*Float)(nil)

func (f *Float) UnmarshalJSON(data []byte) error {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*f = 0
		return nil
	}
	*f = Float(v)
	return nil
}

// StringArray handles the double-encoded JSON arrays the API is fond of:
// `"[\"Yes\", \"No\"]"`. A plain JSON array is accepted too.
type StringArray []string

var _ json.Unmarshaler = (*StringArray)(nil)

func (a *StringArray) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return json.Unmarshal([]byte(s), (*[]string)(a))
	}
	return json.Unmarshal(data, (*[]string)(a))
}

// RawMarket is a market record as the API returns it.
type RawMarket struct {
	ID                       string  `json:"id"`
	Slug                     string  `json:"slug"`
	Question                 string  `json:"question"`
	ConditionID              string  `json:"conditionId"`
	GroupItemTitle           string  `json:"groupItemTitle"`
	GroupItemThreshold       string  `json:"groupItemThreshold"`
	EventStartTime           string  `json:"eventStartTime"`
	StartDate                string  `json:"startDate"`
	EndDate                  string  `json:"endDate"`
	CreatedAt                string  `json:"createdAt"`
	UpdatedAt                string  `json:"updatedAt"`
	Outcomes                 string  `json:"outcomes"`
	OutcomePrices            string  `json:"outcomePrices"`
	ClobTokenIDs             string  `json:"clobTokenIds"`
	Ready                    bool    `json:"ready"`
	Active                   bool    `json:"active"`
	Closed                   bool    `json:"closed"`
	AcceptingOrders          bool    `json:"acceptingOrders"`
	AcceptingOrdersTimestamp string  `json:"acceptingOrdersTimestamp"`
	Spread                   float64 `json:"spread"`
	UmaResolutionStatuses    string  `json:"umaResolutionStatuses"`
	VolumeNum                Float   `json:"volumeNum"`
	Volume24hr               Float   `json:"volume24hr"`
	Volume1wk                Float   `json:"volume1wk"`
	Volume1mo                Float   `json:"volume1mo"`
	Volume1yr                Float   `json:"volume1yr"`
	Liquidity                Float   `json:"liquidity"`
}

type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// RawEvent is an event record as the API returns it.
type RawEvent struct {
	ID                  string      `json:"id"`
	Slug                string      `json:"slug"`
	SeriesSlug          string      `json:"seriesSlug"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Image               string      `json:"image"`
	Icon                string      `json:"icon"`
	StartDate           string      `json:"startDate"`
	EndDate             string      `json:"endDate"`
	CreatedAt           string      `json:"createdAt"`
	CreationDate        string      `json:"creationDate"`
	UpdatedAt           string      `json:"updatedAt"`
	Active              bool        `json:"active"`
	Closed              bool        `json:"closed"`
	Markets             []RawMarket `json:"markets"`
	Tags                []Tag       `json:"tags"`
	Volume              Float       `json:"volume"`
	Volume24hr          Float       `json:"volume24hr"`
	Volume1wk           Float       `json:"volume1wk"`
	Volume1mo           Float       `json:"volume1mo"`
	Volume1yr           Float       `json:"volume1yr"`
	Liquidity           Float       `json:"liquidity"`
	OpenInterest        Float       `json:"openInterest"`
	UmaResolutionStatus string      `json:"umaResolutionStatus"`
}

// Market is the canonical market record.
type Market struct {
	ID          string
	Slug        string
	Question    string
	ConditionID string
	// Title prefers the group item title, falling back to the question.
	Title string
	Index int

	// ConditionStartTimestamp is the start of the event period, eg. 13:00
	// for Bitcoin Up-and-Down 13:00-14:00, whereas StartTimestamp is the
	// market activation time, often the day before.
	ConditionStartTimestamp int64
	StartTimestamp          int64
	EndTimestamp            int64
	CreatedTimestamp        int64
	UpdatedTimestamp        int64

	Outcomes      []string
	OutcomePrices []float64
	TokenIDs      []string

	Ready                    bool
	Active                   bool
	Closed                   bool
	AcceptingOrders          bool
	AcceptingOrdersTimestamp int64
	Spread                   float64
	UmaResolutionStatuses    []string

	Volume     float64
	Volume24hr float64
	Volume1wk  float64
	Volume1mo  float64
	Volume1yr  float64
	Liquidity  float64
}

// Event is the canonical event record.
type Event struct {
	ID          string
	Slug        string
	SeriesSlug  string
	Title       string
	Description string
	ImageURL    string
	IconURL     string

	StartTimestamp    int64
	EndTimestamp      int64
	CreatedTimestamp  int64
	UpdatedTimestamp  int64

	Active  bool
	Closed  bool
	Markets []Market
	Tags    []Tag

	Volume              float64
	Volume24hr          float64
	Volume1wk           float64
	Volume1mo           float64
	Volume1yr           float64
	Liquidity           float64
	OpenInterest        float64
	UmaResolutionStatus string
}
