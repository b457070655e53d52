package gamma

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp turns the API's date strings into unix seconds. The API is
// inconsistent: offsets may arrive as "+00" instead of "+00:00" and
// fractional seconds may carry more than nanosecond precision. Returns 0 for
// empty or unparseable input.
func ParseTimestamp(date string) int64 {
	if date == "" {
		return 0
	}

	normalized := date
	if strings.HasSuffix(normalized, "+00") {
		normalized = strings.TrimSuffix(normalized, "+00") + "+00:00"
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.Unix()
		}
	}
	return 0
}

func safeFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// CanonicalMarket maps a raw market record into the canonical shape,
// decoding the double-encoded array fields and normalizing timestamps.
func CanonicalMarket(raw RawMarket) Market {
	m := Market{
		ID:          raw.ID,
		Slug:        raw.Slug,
		Question:    raw.Question,
		ConditionID: raw.ConditionID,
		Title:       raw.GroupItemTitle,

		ConditionStartTimestamp: ParseTimestamp(raw.EventStartTime),
		StartTimestamp:          ParseTimestamp(raw.StartDate),
		EndTimestamp:            ParseTimestamp(raw.EndDate),
		CreatedTimestamp:        ParseTimestamp(raw.CreatedAt),
		UpdatedTimestamp:        ParseTimestamp(raw.UpdatedAt),

		Ready:                    raw.Ready,
		Active:                   raw.Active,
		Closed:                   raw.Closed,
		AcceptingOrders:          raw.AcceptingOrders,
		AcceptingOrdersTimestamp: ParseTimestamp(raw.AcceptingOrdersTimestamp),
		Spread:                   raw.Spread,

		Volume:     float64(raw.VolumeNum),
		Volume24hr: float64(raw.Volume24hr),
		Volume1wk:  float64(raw.Volume1wk),
		Volume1mo:  float64(raw.Volume1mo),
		Volume1yr:  float64(raw.Volume1yr),
		Liquidity:  float64(raw.Liquidity),
	}

	if m.Title == "" {
		m.Title = raw.Question
	}
	if idx, err := strconv.Atoi(raw.GroupItemThreshold); err == nil {
		m.Index = idx
	}

	// these three travel together: give up on all of them if one is broken
	var outcomes, tokenIDs []string
	var priceStrings []string
	if err := json.Unmarshal([]byte(raw.Outcomes), &outcomes); err == nil {
		if err := json.Unmarshal([]byte(raw.OutcomePrices), &priceStrings); err == nil {
			if err := json.Unmarshal([]byte(raw.ClobTokenIDs), &tokenIDs); err == nil {
				m.Outcomes = outcomes
				m.TokenIDs = tokenIDs
				m.OutcomePrices = make([]float64, len(priceStrings))
				for i, p := range priceStrings {
					m.OutcomePrices[i] = safeFloat(p)
				}
			}
		}
	}

	var statuses []string
	if err := json.Unmarshal([]byte(raw.UmaResolutionStatuses), &statuses); err == nil {
		m.UmaResolutionStatuses = statuses
	}

	return m
}

// CanonicalEvent maps a raw event record into the canonical shape.
func CanonicalEvent(raw RawEvent) Event {
	created := raw.CreatedAt
	if created == "" {
		// two fields for the same thing with diverging values; createdAt wins
		created = raw.CreationDate
	}

	e := Event{
		ID:          raw.ID,
		Slug:        raw.Slug,
		SeriesSlug:  raw.SeriesSlug,
		Title:       raw.Title,
		Description: raw.Description,
		ImageURL:    raw.Image,
		IconURL:     raw.Icon,

		StartTimestamp:   ParseTimestamp(raw.StartDate),
		EndTimestamp:     ParseTimestamp(raw.EndDate),
		CreatedTimestamp: ParseTimestamp(created),
		UpdatedTimestamp: ParseTimestamp(raw.UpdatedAt),

		Active: raw.Active,
		Closed: raw.Closed,
		Tags:   raw.Tags,

		Volume:              float64(raw.Volume),
		Volume24hr:          float64(raw.Volume24hr),
		Volume1wk:           float64(raw.Volume1wk),
		Volume1mo:           float64(raw.Volume1mo),
		Volume1yr:           float64(raw.Volume1yr),
		Liquidity:           float64(raw.Liquidity),
		OpenInterest:        float64(raw.OpenInterest),
		UmaResolutionStatus: raw.UmaResolutionStatus,
	}

	e.Markets = make([]Market, 0, len(raw.Markets))
	for _, m := range raw.Markets {
		e.Markets = append(e.Markets, CanonicalMarket(m))
	}

	return e
}
