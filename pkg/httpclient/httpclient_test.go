package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetResource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/widgets", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"name":"gear","count":3}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	params := url.Values{}
	params.Set("limit", "7")

	got, err := GetResource[widget](context.Background(), client, "/widgets", params, []int{200})
	require.NoError(t, err)
	assert.Equal(t, widget{Name: "gear", Count: 3}, got)
}

func TestGetResourceSlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"name":"a"},{"name":"b"}]`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	got, err := GetResource[[]widget](context.Background(), client, "/widgets", nil, []int{200})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGetResourceUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := GetResource[widget](context.Background(), client, "/widgets", nil, []int{200})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Contains(t, err.Error(), "not here")
}

func TestGetResourceAllowedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"name":"made"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	got, err := GetResource[widget](context.Background(), client, "/widgets", nil, []int{200, 201})
	require.NoError(t, err)
	assert.Equal(t, "made", got.Name)
}

func TestGetResourceBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{nope`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := GetResource[widget](context.Background(), client, "/widgets", nil, []int{200})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't decode")
}

func TestGetResourceContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(srv.URL, WithRateLimit(1, 1))
	_, err := GetResource[widget](ctx, client, "/widgets", nil, []int{200})
	require.Error(t, err)
}
