package seatmap

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// DefaultPollInterval は座席スナップショットの既定ポーリング間隔
const DefaultPollInterval = 3 * time.Second

// SnapshotFunc は新しいスナップショットを受け取るコールバック
type SnapshotFunc func(*Snapshot)

// Poller は座席スナップショットを定期取得するワーカー
// 取得失敗は記録して次の周期まで待つ。直近の成功スナップショットは
// Last()で参照できる
type Poller struct {
	api        API
	showtimeID string
	interval   time.Duration
	onSnapshot SnapshotFunc

	mu   sync.RWMutex
	last *Snapshot

	kickCh chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewPoller は新しいポーラーを作成
func NewPoller(api API, showtimeID string, interval time.Duration, onSnapshot SnapshotFunc) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		api:        api,
		showtimeID: showtimeID,
		interval:   interval,
		onSnapshot: onSnapshot,
		kickCh:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start はポーリングループを開始する。開始直後に1回即時取得する
func (p *Poller) Start(ctx context.Context) {
	logger.Info("座席マップポーラー開始",
		zap.String("showtime_id", p.showtimeID),
		zap.Duration("interval", p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer close(p.doneCh)

	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("座席マップポーラー停止（コンテキストキャンセル）")
			return
		case <-p.stopCh:
			logger.Info("座席マップポーラー停止（シグナル受信）")
			return
		case <-p.kickCh:
			p.poll(ctx)
			ticker.Reset(p.interval)
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Stop はポーラーを停止
func (p *Poller) Stop() {
	close(p.stopCh)
	<-p.doneCh
}

// Refresh は次の周期を待たず即時ポーリングを要求する
// 要求済みの場合は何もしない
func (p *Poller) Refresh() {
	select {
	case p.kickCh <- struct{}{}:
	default:
	}
}

// Last は直近の成功スナップショットを返す。未取得の場合はnil
func (p *Poller) Last() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// poll は1回のスナップショット取得を実行する
// 失敗してもエラーを返さない（次の周期で再試行するだけ）
func (p *Poller) poll(ctx context.Context) {
	snap, err := p.api.Seats(ctx, p.showtimeID)
	if err != nil {
		logger.Warn("座席スナップショット取得に失敗",
			zap.String("showtime_id", p.showtimeID),
			zap.Error(err),
		)
		return
	}

	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()

	if p.onSnapshot != nil {
		p.onSnapshot(snap)
	}
}
