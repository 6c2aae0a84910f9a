package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHit(t *testing.T) {
	var got endpointHit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/hit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "afisha")
	at := time.Date(2026, 6, 15, 18, 30, 0, 0, time.UTC)
	require.NoError(t, c.RecordHit(context.Background(), "/events/42", "1.2.3.4", at))

	assert.Equal(t, "afisha", got.App)
	assert.Equal(t, "/events/42", got.URI)
	assert.Equal(t, "1.2.3.4", got.IP)
	assert.Equal(t, "2026-06-15 18:30:00", got.Timestamp)
}

func TestRecordHitErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "afisha")
	assert.Error(t, c.RecordHit(context.Background(), "/events", "1.2.3.4", time.Now()))
}

func TestIsFirstVisit(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"first", "true", true},
		{"repeat", "false", false},
		{"whitespace tolerated", "true\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/unique", r.URL.Path)
				assert.Equal(t, "/events/42", r.URL.Query().Get("uri"))
				assert.Equal(t, "1.2.3.4", r.URL.Query().Get("ip"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, "afisha")
			first, err := c.IsFirstVisit(context.Background(), "/events/42", "1.2.3.4")
			require.NoError(t, err)
			assert.Equal(t, tt.want, first)
		})
	}
}

func TestIsFirstVisitBadResponses(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := New(srv.URL, "afisha").IsFirstVisit(context.Background(), "/events", "1.2.3.4")
		assert.Error(t, err)
	})

	t.Run("unparseable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("maybe"))
		}))
		defer srv.Close()

		_, err := New(srv.URL, "afisha").IsFirstVisit(context.Background(), "/events", "1.2.3.4")
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := New(srv.URL, "afisha").IsFirstVisit(context.Background(), "/events", "1.2.3.4")
		assert.Error(t, err)
	})
}
