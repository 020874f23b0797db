package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func TestPageWalker_FollowsCursor(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			next := server.URL + "/v2/items/?page=2"
			json.NewEncoder(w).Encode(map[string]any{"results": []item{{"a"}, {"b"}}, "next": next})
		case "2":
			json.NewEncoder(w).Encode(map[string]any{"results": []item{{"c"}}, "next": nil})
		default:
			t.Errorf("unexpected page %q", r.URL.RawQuery)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	d := NewDispatcher(Config{BaseURL: server.URL})
	walker := NewPageWalker[item](d, "v2/items/")

	first, err := walker.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []item{{"a"}, {"b"}}, first)
	assert.True(t, walker.HasMore())
	assert.Equal(t, server.URL+"/v2/items/?page=2", walker.Cursor())

	rest, err := walker.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []item{{"c"}}, rest)
	assert.False(t, walker.HasMore())
	assert.Empty(t, walker.Cursor())

	done, err := walker.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, done)
}

func TestPageWalker_FailureEndsWalk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	walker := NewPageWalker[item](NewDispatcher(Config{BaseURL: server.URL}), "v2/items/")

	items, err := walker.Next(context.Background())
	require.Error(t, err)
	assert.Nil(t, items)
	assert.False(t, walker.HasMore())
	assert.Empty(t, walker.Cursor())
}

func TestListPage_MissingFieldsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	next, items, err := ListPage[item](context.Background(), NewDispatcher(Config{BaseURL: server.URL}), "v2/items/")
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
