package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/hold"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client, err := NewClient(&Config{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// testShowtimeID はテストごとに独立したキー空間を使うためのID
func testShowtimeID() string {
	return "test-show-" + uuid.New().String()
}

func TestHoldStore_AcquireRelease(t *testing.T) {
	client := setupTestRedis(t)
	store := NewHoldStore(client)
	ctx := context.Background()
	ref := seat.NewRef(1, 1)

	t.Run("空席を確保できる", func(t *testing.T) {
		showtimeID := testShowtimeID()
		ver, err := store.Acquire(ctx, showtimeID, ref, "holder-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ver)

		holds, _, err := store.ByShowtime(ctx, showtimeID)
		require.NoError(t, err)
		require.Len(t, holds, 1)
		assert.Equal(t, "holder-1", holds[0].HolderID)
		assert.InDelta(t, time.Minute.Seconds(), holds[0].Remaining().Seconds(), 5)
	})

	t.Run("他ホルダーの座席は確保できない", func(t *testing.T) {
		showtimeID := testShowtimeID()
		_, err := store.Acquire(ctx, showtimeID, ref, "holder-1", time.Minute)
		require.NoError(t, err)

		_, err = store.Acquire(ctx, showtimeID, ref, "holder-2", time.Minute)
		assert.ErrorIs(t, err, hold.ErrSeatHeldByOther)
	})

	t.Run("再取得はTTLを延長する", func(t *testing.T) {
		showtimeID := testShowtimeID()
		ver1, err := store.Acquire(ctx, showtimeID, ref, "holder-1", time.Second)
		require.NoError(t, err)

		ver2, err := store.Acquire(ctx, showtimeID, ref, "holder-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, ver1, ver2)

		holds, _, err := store.ByShowtime(ctx, showtimeID)
		require.NoError(t, err)
		require.Len(t, holds, 1)
		assert.Greater(t, holds[0].Remaining(), 30*time.Second)
	})

	t.Run("解放後は別ホルダーが確保できる", func(t *testing.T) {
		showtimeID := testShowtimeID()
		_, err := store.Acquire(ctx, showtimeID, ref, "holder-1", time.Minute)
		require.NoError(t, err)

		_, err = store.Release(ctx, showtimeID, ref, "holder-1")
		require.NoError(t, err)

		_, err = store.Acquire(ctx, showtimeID, ref, "holder-2", time.Minute)
		require.NoError(t, err)
	})

	t.Run("非所有者の解放はホールドを壊さない", func(t *testing.T) {
		showtimeID := testShowtimeID()
		_, err := store.Acquire(ctx, showtimeID, ref, "holder-1", time.Minute)
		require.NoError(t, err)

		_, err = store.Release(ctx, showtimeID, ref, "holder-2")
		require.NoError(t, err)

		holds, _, err := store.ByShowtime(ctx, showtimeID)
		require.NoError(t, err)
		require.Len(t, holds, 1)
		assert.Equal(t, "holder-1", holds[0].HolderID)
	})
}

func TestHoldStore_TTLExpiry(t *testing.T) {
	client := setupTestRedis(t)
	store := NewHoldStore(client)
	ctx := context.Background()
	showtimeID := testShowtimeID()
	ref := seat.NewRef(3, 3)

	_, err := store.Acquire(ctx, showtimeID, ref, "holder-1", 100*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	// 失効後は一覧から消え、別ホルダーが確保できる
	holds, _, err := store.ByShowtime(ctx, showtimeID)
	require.NoError(t, err)
	assert.Empty(t, holds)

	_, err = store.Acquire(ctx, showtimeID, ref, "holder-2", time.Minute)
	require.NoError(t, err)
}

func TestHoldStore_ReleaseAllByHolder(t *testing.T) {
	client := setupTestRedis(t)
	store := NewHoldStore(client)
	ctx := context.Background()
	showtimeID := testShowtimeID()

	for _, ref := range []seat.Ref{seat.NewRef(1, 1), seat.NewRef(1, 2)} {
		_, err := store.Acquire(ctx, showtimeID, ref, "holder-1", time.Minute)
		require.NoError(t, err)
	}
	_, err := store.Acquire(ctx, showtimeID, seat.NewRef(2, 2), "holder-2", time.Minute)
	require.NoError(t, err)

	released, _, err := store.ReleaseAllByHolder(ctx, showtimeID, "holder-1")
	require.NoError(t, err)
	assert.Len(t, released, 2)

	holds, _, err := store.ByShowtime(ctx, showtimeID)
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, "holder-2", holds[0].HolderID)
}

func TestHoldStore_VersionMonotonic(t *testing.T) {
	client := setupTestRedis(t)
	store := NewHoldStore(client)
	ctx := context.Background()
	showtimeID := testShowtimeID()

	ver1, err := store.Acquire(ctx, showtimeID, seat.NewRef(1, 1), "holder-1", time.Minute)
	require.NoError(t, err)

	ver2, err := store.Acquire(ctx, showtimeID, seat.NewRef(1, 2), "holder-1", time.Minute)
	require.NoError(t, err)
	assert.Greater(t, ver2, ver1)

	ver3, err := store.Release(ctx, showtimeID, seat.NewRef(1, 1), "holder-1")
	require.NoError(t, err)
	assert.Greater(t, ver3, ver2)

	_, ver4, err := store.ByShowtime(ctx, showtimeID)
	require.NoError(t, err)
	assert.Equal(t, ver3, ver4)
}
