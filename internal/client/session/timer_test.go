package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_States(t *testing.T) {
	t.Run("初期状態はidle", func(t *testing.T) {
		timer := NewTimer(time.Minute, time.Second)
		assert.Equal(t, TimerIdle, timer.State())
		assert.Equal(t, time.Minute, timer.Remaining())
	})

	t.Run("開始でrunningになる", func(t *testing.T) {
		timer := NewTimer(time.Minute, 10*time.Millisecond)
		timer.Start()
		defer timer.Stop()
		assert.Equal(t, TimerRunning, timer.State())
	})

	t.Run("停止でstoppedになる", func(t *testing.T) {
		timer := NewTimer(time.Minute, 10*time.Millisecond)
		timer.Start()
		timer.Stop()
		assert.Equal(t, TimerStopped, timer.State())
	})

	t.Run("二重Startは無視される", func(t *testing.T) {
		timer := NewTimer(time.Minute, 10*time.Millisecond)
		timer.Start()
		timer.Start()
		timer.Stop()
		assert.Equal(t, TimerStopped, timer.State())
	})

	t.Run("二重Stopはパニックしない", func(t *testing.T) {
		timer := NewTimer(time.Minute, 10*time.Millisecond)
		timer.Start()
		timer.Stop()
		timer.Stop()
	})
}

func TestTimer_Expiry(t *testing.T) {
	t.Run("満了でOnExpireがちょうど1回呼ばれる", func(t *testing.T) {
		timer := NewTimer(50*time.Millisecond, 10*time.Millisecond)
		var fired int32
		expired := make(chan struct{})
		timer.OnExpire(func() {
			if atomic.AddInt32(&fired, 1) == 1 {
				close(expired)
			}
		})

		timer.Start()

		select {
		case <-expired:
		case <-time.After(time.Second):
			t.Fatal("timer did not expire in time")
		}

		// 満了後に追加発火がないことを確認
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
		assert.Equal(t, TimerExpired, timer.State())
		assert.Equal(t, time.Duration(0), timer.Remaining())
	})

	t.Run("満了後のStopは何もしない", func(t *testing.T) {
		timer := NewTimer(30*time.Millisecond, 10*time.Millisecond)
		expired := make(chan struct{})
		timer.OnExpire(func() { close(expired) })
		timer.Start()
		<-expired

		timer.Stop()
		assert.Equal(t, TimerExpired, timer.State())
	})
}

func TestTimer_Extend(t *testing.T) {
	t.Run("延長で残り時間が初期値に戻る", func(t *testing.T) {
		timer := NewTimer(100*time.Millisecond, 10*time.Millisecond)
		timer.Start()
		defer timer.Stop()

		time.Sleep(50 * time.Millisecond)
		assert.Less(t, timer.Remaining(), 100*time.Millisecond)

		timer.Extend()
		assert.Greater(t, timer.Remaining(), 80*time.Millisecond)
	})

	t.Run("延長で満了が先送りされる", func(t *testing.T) {
		timer := NewTimer(80*time.Millisecond, 10*time.Millisecond)
		var fired int32
		timer.OnExpire(func() { atomic.AddInt32(&fired, 1) })
		timer.Start()

		// 満了直前に延長
		time.Sleep(50 * time.Millisecond)
		timer.Extend()
		time.Sleep(50 * time.Millisecond)

		assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
		assert.Equal(t, TimerRunning, timer.State())
		timer.Stop()
	})

	t.Run("停止後のExtendは無視される", func(t *testing.T) {
		timer := NewTimer(time.Minute, 10*time.Millisecond)
		timer.Start()
		timer.Stop()
		timer.Extend()
		assert.Equal(t, TimerStopped, timer.State())
	})
}

func TestTimer_OnTick(t *testing.T) {
	t.Run("刻みごとに残り時間が通知される", func(t *testing.T) {
		timer := NewTimer(200*time.Millisecond, 20*time.Millisecond)
		var mu sync.Mutex
		var ticks []time.Duration
		timer.OnTick(func(remaining time.Duration) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		})

		timer.Start()
		time.Sleep(90 * time.Millisecond)
		timer.Stop()

		mu.Lock()
		defer mu.Unlock()
		assert.GreaterOrEqual(t, len(ticks), 2)
		// 残り時間は単調減少
		for i := 1; i < len(ticks); i++ {
			assert.Less(t, ticks[i], ticks[i-1])
		}
	})
}
