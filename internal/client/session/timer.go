package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// TimerState はセッションタイマーの状態を表す
type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerExpired TimerState = "expired"
	TimerStopped TimerState = "stopped"
)

// DefaultSessionBudget は購入セッションの既定持ち時間
const DefaultSessionBudget = 5 * time.Minute

// Timer は購入セッションの残り時間を数えるカウントダウンタイマー
// 満了時はOnExpireをちょうど1回だけ呼ぶ。Extendで持ち時間を初期値に戻せる
type Timer struct {
	budget       time.Duration
	tickInterval time.Duration
	onTick       func(remaining time.Duration)
	onExpire     func()

	mu        sync.Mutex
	state     TimerState
	remaining time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewTimer は新しいセッションタイマーを作成
func NewTimer(budget, tickInterval time.Duration) *Timer {
	if budget <= 0 {
		budget = DefaultSessionBudget
	}
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &Timer{
		budget:       budget,
		tickInterval: tickInterval,
		state:        TimerIdle,
		remaining:    budget,
	}
}

// OnTick は1秒ごとの残り時間通知コールバックを設定する
// Start前に呼ぶこと
func (t *Timer) OnTick(fn func(remaining time.Duration)) {
	t.onTick = fn
}

// OnExpire は満了時コールバックを設定する。Start前に呼ぶこと
func (t *Timer) OnExpire(fn func()) {
	t.onExpire = fn
}

// Start はカウントダウンを開始する。既に動作中なら何もしない
func (t *Timer) Start() {
	t.mu.Lock()
	if t.state == TimerRunning {
		t.mu.Unlock()
		return
	}
	t.state = TimerRunning
	t.remaining = t.budget
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	logger.Debug("セッションタイマー開始", zap.Duration("budget", t.budget))

	go t.run(stopCh, doneCh)
}

// Stop はカウントダウンを止める。満了済み・停止済みなら何もしない
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.state != TimerRunning {
		t.mu.Unlock()
		return
	}
	t.state = TimerStopped
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Extend は残り時間を持ち時間の初期値に戻す
// 動作中でなければ何もしない
func (t *Timer) Extend() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		return
	}
	t.remaining = t.budget
	logger.Debug("セッションタイマー延長", zap.Duration("budget", t.budget))
}

// State は現在のタイマー状態を返す
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining は残り時間を返す
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) run(stopCh, doneCh chan struct{}) {
	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			expired := t.tick()
			if expired {
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		}
	}
}

// tick は残り時間を1刻み減らし、満了したかを返す
func (t *Timer) tick() bool {
	t.mu.Lock()
	if t.state != TimerRunning {
		t.mu.Unlock()
		return false
	}
	t.remaining -= t.tickInterval
	if t.remaining <= 0 {
		t.remaining = 0
		t.state = TimerExpired
		t.mu.Unlock()
		logger.Info("セッションタイマー満了")
		return true
	}
	remaining := t.remaining
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(remaining)
	}
	return false
}
