package sitesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchEncodesQueryAndKeepsOrder(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`[{"title":"B","url":"/b"},{"title":"A","url":"/a","summary":"s","date":"2024-01-01"}]`))
	}))
	defer srv.Close()

	results, err := NewClient(srv.URL+"/", srv.Client(), "test").Search(context.Background(), "rock & roll")
	require.NoError(t, err)

	assert.Equal(t, "rock & roll", gotQuery)
	require.Len(t, results, 2)
	assert.Equal(t, "B", results[0].Title)
	assert.Equal(t, "A", results[1].Title)
	assert.Empty(t, results[0].Summary)
}

func TestSearchNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client(), "").Search(context.Background(), "x")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestSearchMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client(), "").Search(context.Background(), "x")
	assert.Error(t, err)
}
