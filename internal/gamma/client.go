// Package gamma consumes Polymarket gamma endpoints: event and market
// metadata, list pagination and public search.
package gamma

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"polyfeed/pkg/httpclient"
	"polyfeed/pkg/pagination"
)

const (
	DefaultBaseURL = "https://gamma-api.polymarket.com"

	// DefaultListBatchSize is the per-page limit for the /events and
	// /markets lists.
	DefaultListBatchSize = 500
	// DefaultSearchLimit caps a search unless the caller asks otherwise.
	DefaultSearchLimit = 10000
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

// ListParams filters the /events and /markets lists. Limit caps the whole
// iteration; BatchSize the per-page fetch.
type ListParams struct {
	Order     string
	Ascending bool
	Active    *bool
	Closed    *bool
	TagSlug   string
	Limit     int
	BatchSize int
}

func (p ListParams) values(limit, offset int) url.Values {
	values := url.Values{}
	if p.Order != "" {
		values.Set("order", p.Order)
		values.Set("ascending", strconv.FormatBool(p.Ascending))
	}
	if p.Active != nil {
		values.Set("active", strconv.FormatBool(*p.Active))
	}
	if p.Closed != nil {
		values.Set("closed", strconv.FormatBool(*p.Closed))
	}
	if p.TagSlug != "" {
		values.Set("tag_slug", p.TagSlug)
	}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))
	return values
}

func isNumericID(slugOrID string) bool {
	_, err := strconv.ParseInt(slugOrID, 10, 64)
	return err == nil
}

// GetRawEvent fetches one event by numeric id or slug.
func (c *Client) GetRawEvent(ctx context.Context, slugOrID string) (*RawEvent, error) {
	endpoint := "/events/slug/" + url.PathEscape(slugOrID)
	if isNumericID(slugOrID) {
		endpoint = "/events/" + slugOrID
	}
	event, err := httpclient.GetResource[*RawEvent](ctx, c.http, endpoint, nil, okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get event %s: %w", slugOrID, err)
	}
	return event, nil
}

// GetEvent fetches one event and canonicalizes it.
func (c *Client) GetEvent(ctx context.Context, slugOrID string) (*Event, error) {
	raw, err := c.GetRawEvent(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	event := CanonicalEvent(*raw)
	return &event, nil
}

// GetRawEventsPage fetches one page of the /events list.
func (c *Client) GetRawEventsPage(ctx context.Context, params ListParams, limit, offset int) ([]RawEvent, error) {
	events, err := httpclient.GetResource[[]RawEvent](ctx, c.http, "/events", params.values(limit, offset), okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get events page at offset %d: %w", offset, err)
	}
	return events, nil
}

// RawEvents iterates the /events list. The server repeats records near page
// boundaries, so records are deduplicated by id across the whole call.
func (c *Client) RawEvents(ctx context.Context, params ListParams) iter.Seq2[RawEvent, error] {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultListBatchSize
	}
	return pagination.Offset(ctx, func(ctx context.Context, limit, offset int) ([]RawEvent, error) {
		return c.GetRawEventsPage(ctx, params, limit, offset)
	}, pagination.Config[RawEvent]{
		BatchSize: batchSize,
		Limit:     params.Limit,
		Key:       func(e RawEvent) string { return e.ID },
	})
}

// Events iterates the /events list in canonical form.
func (c *Client) Events(ctx context.Context, params ListParams) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for raw, err := range c.RawEvents(ctx, params) {
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(CanonicalEvent(raw), nil) {
				return
			}
		}
	}
}

// EventsUpdatedSince iterates events updated after sinceTimestamp, newest
// first. The list endpoint cannot filter by timestamp, so it walks the
// updatedAt-descending order and stops at the boundary.
func (c *Client) EventsUpdatedSince(ctx context.Context, sinceTimestamp int64, params ListParams) iter.Seq2[Event, error] {
	params.Order = "updatedAt"
	params.Ascending = false
	return func(yield func(Event, error) bool) {
		for event, err := range c.Events(ctx, params) {
			if err != nil {
				yield(Event{}, err)
				return
			}
			if event.UpdatedTimestamp <= sinceTimestamp {
				return
			}
			if !yield(event, nil) {
				return
			}
		}
	}
}

// GetRawMarket fetches one market by numeric id or slug.
func (c *Client) GetRawMarket(ctx context.Context, slugOrID string) (*RawMarket, error) {
	endpoint := "/markets/slug/" + url.PathEscape(slugOrID)
	if isNumericID(slugOrID) {
		endpoint = "/markets/" + slugOrID
	}
	market, err := httpclient.GetResource[*RawMarket](ctx, c.http, endpoint, nil, okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get market %s: %w", slugOrID, err)
	}
	return market, nil
}

// GetMarket fetches one market and canonicalizes it.
func (c *Client) GetMarket(ctx context.Context, slugOrID string) (*Market, error) {
	raw, err := c.GetRawMarket(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	market := CanonicalMarket(*raw)
	return &market, nil
}

// GetRawMarketsPage fetches one page of the /markets list.
func (c *Client) GetRawMarketsPage(ctx context.Context, params ListParams, limit, offset int) ([]RawMarket, error) {
	markets, err := httpclient.GetResource[[]RawMarket](ctx, c.http, "/markets", params.values(limit, offset), okStatuses)
	if err != nil {
		return nil, fmt.Errorf("couldn't get markets page at offset %d: %w", offset, err)
	}
	return markets, nil
}

// RawMarkets iterates the /markets list, deduplicated by id.
func (c *Client) RawMarkets(ctx context.Context, params ListParams) iter.Seq2[RawMarket, error] {
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultListBatchSize
	}
	return pagination.Offset(ctx, func(ctx context.Context, limit, offset int) ([]RawMarket, error) {
		return c.GetRawMarketsPage(ctx, params, limit, offset)
	}, pagination.Config[RawMarket]{
		BatchSize: batchSize,
		Limit:     params.Limit,
		Key:       func(m RawMarket) string { return m.ID },
	})
}

// Markets iterates the /markets list in canonical form.
func (c *Client) Markets(ctx context.Context, params ListParams) iter.Seq2[Market, error] {
	return func(yield func(Market, error) bool) {
		for raw, err := range c.RawMarkets(ctx, params) {
			if err != nil {
				yield(Market{}, err)
				return
			}
			if !yield(CanonicalMarket(raw), nil) {
				return
			}
		}
	}
}

// SearchParams filters the /public-search endpoint.
type SearchParams struct {
	Query     string
	Tags      []string
	Sort      string
	Ascending bool
	Limit     int
}

type searchResponse struct {
	Events     []RawEvent `json:"events"`
	Pagination struct {
		HasMore bool `json:"hasMore"`
	} `json:"pagination"`
}

// GetRawSearchPage fetches one page of /public-search and reports whether
// more pages remain.
func (c *Client) GetRawSearchPage(ctx context.Context, params SearchParams, page int) ([]RawEvent, bool, error) {
	query := params.Query
	if query == "" {
		// the endpoint rejects an absent query
		query = " "
	}
	values := url.Values{}
	values.Set("q", query)
	for _, tag := range params.Tags {
		values.Add("events_tag", tag)
	}
	if params.Sort != "" {
		values.Set("sort", params.Sort)
		values.Set("ascending", strconv.FormatBool(params.Ascending))
	}
	values.Set("page", strconv.Itoa(page))

	resp, err := httpclient.GetResource[*searchResponse](ctx, c.http, "/public-search", values, okStatuses)
	if err != nil {
		return nil, false, fmt.Errorf("couldn't search events page %d: %w", page, err)
	}
	if resp == nil {
		// a literal null body decodes to a nil response
		return nil, false, nil
	}
	return resp.Events, resp.Pagination.HasMore, nil
}

// SearchEvents iterates /public-search results in canonical form. Unlike the
// offset lists, this endpoint signals exhaustion with pagination.hasMore.
func (c *Client) SearchEvents(ctx context.Context, params SearchParams) iter.Seq2[Event, error] {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	raw := pagination.Pages(ctx, func(ctx context.Context, page int) ([]RawEvent, bool, error) {
		return c.GetRawSearchPage(ctx, params, page)
	}, limit)

	return func(yield func(Event, error) bool) {
		for event, err := range raw {
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(CanonicalEvent(event), nil) {
				return
			}
		}
	}
}
