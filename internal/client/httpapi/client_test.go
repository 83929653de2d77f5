package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/seatmap"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

func TestClient_Seats(t *testing.T) {
	t.Run("スナップショットを取得できる", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/v1/showtimes/st-1/seats", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"showtime_id": "st-1",
				"version":     42,
				"seats": []map[string]any{
					{"row": 1, "column": 1, "display_id": "A1", "status": "free"},
					{"row": 1, "column": 2, "display_id": "A2", "status": "held", "holder_id": "h-1"},
					{"row": 1, "column": 3, "display_id": "A3", "status": "sold"},
				},
			})
		}))
		defer srv.Close()

		client := New(srv.URL, 5*time.Second)
		snap, err := client.Seats(context.Background(), "st-1")

		require.NoError(t, err)
		assert.Equal(t, "st-1", snap.ShowtimeID)
		assert.Equal(t, int64(42), snap.Version)
		require.Len(t, snap.Seats, 3)
		assert.Equal(t, seat.StatusHeld, snap.Seats[1].Status)
		assert.Equal(t, "h-1", snap.Seats[1].HolderID)
		assert.False(t, snap.FetchedAt.IsZero())
	})

	t.Run("404はエラーになる", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client := New(srv.URL, 5*time.Second)
		_, err := client.Seats(context.Background(), "missing")

		assert.Error(t, err)
	})
}

func TestClient_Acquire(t *testing.T) {
	t.Run("確保成功でバージョンが返る", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/showtimes/st-1/seats/acquire", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, float64(2), req["row"])
			assert.Equal(t, float64(3), req["column"])
			assert.Equal(t, "h-1", req["holder_id"])

			json.NewEncoder(w).Encode(map[string]any{"version": 7})
		}))
		defer srv.Close()

		client := New(srv.URL, 5*time.Second)
		version, err := client.Acquire(context.Background(), "st-1", seat.NewRef(2, 3), "h-1")

		require.NoError(t, err)
		assert.Equal(t, int64(7), version)
	})

	t.Run("409はErrSeatConflictに写像される", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{"error": "座席は他のユーザーが確保中です"})
		}))
		defer srv.Close()

		client := New(srv.URL, 5*time.Second)
		_, err := client.Acquire(context.Background(), "st-1", seat.NewRef(1, 1), "h-1")

		assert.ErrorIs(t, err, seatmap.ErrSeatConflict)
	})

	t.Run("5xxは通常のエラーになる", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := New(srv.URL, 5*time.Second)
		_, err := client.Acquire(context.Background(), "st-1", seat.NewRef(1, 1), "h-1")

		assert.Error(t, err)
		assert.NotErrorIs(t, err, seatmap.ErrSeatConflict)
	})
}

func TestClient_Release(t *testing.T) {
	t.Run("解放成功でバージョンが返る", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/showtimes/st-1/seats/release", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"version": 8})
		}))
		defer srv.Close()

		client := New(srv.URL, 5*time.Second)
		version, err := client.Release(context.Background(), "st-1", seat.NewRef(1, 1), "h-1")

		require.NoError(t, err)
		assert.Equal(t, int64(8), version)
	})
}
