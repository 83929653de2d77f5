package hold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

func TestNew(t *testing.T) {
	ref := seat.NewRef(1, 5)
	h := New("showtime-1", ref, "holder-1", 10*time.Minute)

	assert.Equal(t, "showtime-1", h.ShowtimeID)
	assert.Equal(t, ref, h.Seat)
	assert.Equal(t, "holder-1", h.HolderID)
	assert.False(t, h.IsExpired())
	assert.Greater(t, h.Remaining(), 9*time.Minute)
}

func TestHold_IsExpired(t *testing.T) {
	t.Run("期限内のホールドは有効", func(t *testing.T) {
		h := New("showtime-1", seat.NewRef(1, 1), "holder-1", time.Minute)
		assert.False(t, h.IsExpired())
	})

	t.Run("期限を過ぎたホールドは無効", func(t *testing.T) {
		h := Hold{
			ShowtimeID: "showtime-1",
			Seat:       seat.NewRef(1, 1),
			HolderID:   "holder-1",
			ExpiresAt:  time.Now().Add(-time.Second),
		}
		assert.True(t, h.IsExpired())
		assert.Equal(t, time.Duration(0), h.Remaining())
	})
}

func TestHold_Validate(t *testing.T) {
	t.Run("有効なホールド", func(t *testing.T) {
		h := New("showtime-1", seat.NewRef(1, 1), "holder-1", time.Minute)
		require.NoError(t, h.Validate())
	})

	t.Run("上映回IDなし", func(t *testing.T) {
		h := New("", seat.NewRef(1, 1), "holder-1", time.Minute)
		assert.ErrorIs(t, h.Validate(), ErrShowtimeIDRequired)
	})

	t.Run("ホルダーIDなし", func(t *testing.T) {
		h := New("showtime-1", seat.NewRef(1, 1), "", time.Minute)
		assert.ErrorIs(t, h.Validate(), ErrHolderIDRequired)
	})
}
