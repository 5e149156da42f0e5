package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"achievement-hub/core/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "secret", r.URL.Query().Get("key"))
			assert.Equal(t, "1", r.URL.Query().Get("fixed"))
			assert.Equal(t, "token", r.Header.Get("X-Authorization"))
			_, _ = w.Write([]byte(`{"value": 7}`))
		case "/missing":
			http.Error(w, "no such title", http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`{not json`))
		}
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	err := provider.GetJSON(context.Background(), srv.Client(), srv.URL+"/ok?fixed=1",
		url.Values{"key": {"secret"}}, http.Header{"X-Authorization": {"token"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Value)

	err = provider.GetJSON(context.Background(), srv.Client(), srv.URL+"/missing", url.Values{"key": {"secret"}}, nil, &out)
	require.Error(t, err)
	assert.True(t, provider.IsStatus(err, http.StatusNotFound))
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "no such title")

	err = provider.GetJSON(context.Background(), srv.Client(), srv.URL+"/broken", nil, nil, &out)
	assert.ErrorContains(t, err, "decode")
	assert.False(t, provider.IsStatus(err, http.StatusNotFound))
}

func TestGetJSON_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := provider.GetJSON(ctx, srv.Client(), srv.URL, url.Values{"key": {"secret"}}, nil, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "secret")
}
