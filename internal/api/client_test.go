package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostJSON tests the JSON POST helper
func TestPostJSON(t *testing.T) {
	t.Run("successful post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST method, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
			}
			var req CreateSessionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(SessionResponse{ID: "abc", Params: Params{Species: []string{}, MaxMass: 6000}})
		}))
		defer server.Close()

		var out SessionResponse
		err := PostJSON(context.Background(), server.URL, CreateSessionRequest{}, &out)
		require.NoError(t, err)
		assert.Equal(t, "abc", out.ID)
	})

	t.Run("nil output", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		assert.NoError(t, PostJSON(context.Background(), server.URL, map[string]string{}, nil))
	})

	t.Run("server error carries message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(Error{Error: "invalid json"})
		}))
		defer server.Close()

		err := PostJSON(context.Background(), server.URL, struct{}{}, nil)
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadRequest, se.Code)
		assert.Equal(t, "invalid json", se.Message)
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		assert.Error(t, PostJSON(ctx, server.URL, struct{}{}, nil))
	})

	t.Run("unmarshalable body", func(t *testing.T) {
		err := PostJSON(context.Background(), "http://127.0.0.1:0", make(chan int), nil)
		assert.Error(t, err)
	})
}

// TestGetJSON tests the JSON GET helper
func TestGetJSON(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		var out Summary
		err := GetJSON(context.Background(), server.URL, &out)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("invalid json response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		var out Summary
		assert.Error(t, GetJSON(context.Background(), server.URL, &out))
	})
}

// TestClientRoutes tests that each client call hits the expected route
func TestClientRoutes(t *testing.T) {
	type hit struct{ method, path string }
	var hits []hit

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, hit{r.Method, r.URL.EscapedPath()})
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/health":
			w.WriteHeader(http.StatusOK)
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	ctx := context.Background()
	c := NewClient(server.URL + "/")

	require.NoError(t, c.Health(ctx))
	_, err := c.Controls(ctx)
	require.NoError(t, err)
	_, err = c.CreateSession(ctx, CreateSessionRequest{})
	require.NoError(t, err)
	_, err = c.Sessions(ctx)
	require.NoError(t, err)
	_, err = c.Session(ctx, "s1")
	require.NoError(t, err)
	_, err = c.SetSpecies(ctx, "s1", []string{"Adelie"})
	require.NoError(t, err)
	_, err = c.SetMaxMass(ctx, "s1", 4000)
	require.NoError(t, err)
	_, err = c.Summary(ctx, "s1")
	require.NoError(t, err)
	_, err = c.Table(ctx, "s1")
	require.NoError(t, err)
	_, err = c.Scatter(ctx, "s1")
	require.NoError(t, err)
	_, err = c.Stats(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, c.CloseSession(ctx, "a/b"))

	want := []hit{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/controls"},
		{http.MethodPost, "/sessions"},
		{http.MethodGet, "/sessions"},
		{http.MethodGet, "/sessions/s1"},
		{http.MethodPut, "/sessions/s1/species"},
		{http.MethodPut, "/sessions/s1/mass"},
		{http.MethodGet, "/sessions/s1/summary"},
		{http.MethodGet, "/sessions/s1/table"},
		{http.MethodGet, "/sessions/s1/scatter"},
		{http.MethodGet, "/sessions/s1/stats"},
		{http.MethodDelete, "/sessions/a%2Fb"},
	}
	assert.Equal(t, want, hits)
}
