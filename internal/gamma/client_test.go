package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEventByIDAndSlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events/42":
			fmt.Fprint(w, `{"id":"42","slug":"by-id","title":"By id"}`)
		case "/events/slug/rain-week":
			fmt.Fprint(w, `{"id":"77","slug":"rain-week","title":"Rain"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)

	byID, err := client.GetEvent(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "by-id", byID.Slug)

	bySlug, err := client.GetEvent(context.Background(), "rain-week")
	require.NoError(t, err)
	assert.Equal(t, "77", bySlug.ID)
}

func TestEventsDeduplicatesAcrossPages(t *testing.T) {
	// event "2" straddles the page boundary, as the live API does when
	// records shift underneath the walk
	pages := map[int]string{
		0: `[{"id":"1"},{"id":"2"}]`,
		2: `[{"id":"2"},{"id":"3"}]`,
		4: `[]`,
	}
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/events", r.URL.Path)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)
		body, ok := pages[offset]
		require.True(t, ok, "unexpected offset %d", offset)
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	client := New(srv.URL)
	var ids []string
	for event, err := range client.Events(context.Background(), ListParams{BatchSize: 2}) {
		require.NoError(t, err)
		ids = append(ids, event.ID)
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, []int{0, 2, 4}, offsets)
}

func TestEventsLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		fmt.Fprintf(w, `[{"id":"%d"},{"id":"%d"}]`, offset, offset+1)
	}))
	defer srv.Close()

	client := New(srv.URL)
	var ids []string
	for event, err := range client.Events(context.Background(), ListParams{BatchSize: 2, Limit: 3}) {
		require.NoError(t, err)
		ids = append(ids, event.ID)
	}

	assert.Len(t, ids, 3)
	assert.Equal(t, 2, calls)
}

func TestEventsUpdatedSinceStopsAtBoundary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "updatedAt", r.URL.Query().Get("order"))
		assert.Equal(t, "false", r.URL.Query().Get("ascending"))
		if r.URL.Query().Get("offset") != "0" {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[
			{"id":"new","updatedAt":"2024-01-20T00:00:00Z"},
			{"id":"old","updatedAt":"2024-01-01T00:00:00Z"}
		]`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	since := ParseTimestamp("2024-01-10T00:00:00Z")
	var ids []string
	for event, err := range client.EventsUpdatedSince(context.Background(), since, ListParams{}) {
		require.NoError(t, err)
		ids = append(ids, event.ID)
	}

	assert.Equal(t, []string{"new"}, ids)
}

func TestSearchEventsFollowsHasMore(t *testing.T) {
	var pagesAsked []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/public-search", r.URL.Path)
		page := r.URL.Query().Get("page")
		pagesAsked = append(pagesAsked, page)

		resp := map[string]any{
			"events":     []map[string]any{{"id": "p" + page}},
			"pagination": map[string]any{"hasMore": page == "0"},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client := New(srv.URL)
	var ids []string
	for event, err := range client.SearchEvents(context.Background(), SearchParams{Query: "rain"}) {
		require.NoError(t, err)
		ids = append(ids, event.ID)
	}

	assert.Equal(t, []string{"p0", "p1"}, ids)
	assert.Equal(t, []string{"0", "1"}, pagesAsked)
}

func TestSearchEventsDefaultsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// an empty search still needs a q parameter
		assert.Equal(t, " ", r.URL.Query().Get("q"))
		assert.Equal(t, []string{"weather"}, r.URL.Query()["events_tag"])
		fmt.Fprint(w, `{"events":[],"pagination":{"hasMore":false}}`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	for _, err := range client.SearchEvents(context.Background(), SearchParams{Tags: []string{"weather"}}) {
		require.NoError(t, err)
	}
}

func TestSearchEventsNullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `null`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	for _, err := range client.SearchEvents(context.Background(), SearchParams{Query: "rain"}) {
		require.NoError(t, err)
		t.Fatal("expected no events from a null body")
	}
}

func TestListParamsValues(t *testing.T) {
	active := true
	closed := false
	params := ListParams{
		Order:     "volume",
		Ascending: true,
		Active:    &active,
		Closed:    &closed,
		TagSlug:   "weather",
	}

	values := params.values(100, 40)
	assert.Equal(t, "volume", values.Get("order"))
	assert.Equal(t, "true", values.Get("ascending"))
	assert.Equal(t, "true", values.Get("active"))
	assert.Equal(t, "false", values.Get("closed"))
	assert.Equal(t, "weather", values.Get("tag_slug"))
	assert.Equal(t, "100", values.Get("limit"))
	assert.Equal(t, "40", values.Get("offset"))
}
