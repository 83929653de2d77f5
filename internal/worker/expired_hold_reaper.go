package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// HoldPurger は期限切れホールドを掃除するインターフェース
type HoldPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// ExpiredHoldReaper は期限切れホールドを定期的に掃除するワーカー
// Redis バックエンドでは TTL が自然に失効させるため不要で、
// インメモリストア利用時のみ起動する
type ExpiredHoldReaper struct {
	purger   HoldPurger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewExpiredHoldReaper は新しいリーパーを作成
func NewExpiredHoldReaper(purger HoldPurger, interval time.Duration) *ExpiredHoldReaper {
	return &ExpiredHoldReaper{
		purger:   purger,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はリーパーを開始
func (r *ExpiredHoldReaper) Start(ctx context.Context) {
	logger.Info("期限切れホールドリーパー開始",
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れホールドリーパー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("期限切れホールドリーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

// Stop はリーパーを停止
func (r *ExpiredHoldReaper) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// reap は期限切れホールドを削除
func (r *ExpiredHoldReaper) reap(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れホールドの掃除開始")

	count, err := r.purger.PurgeExpired(ctx)
	if err != nil {
		log.Error("期限切れホールドの掃除失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れホールドを解放", zap.Int("count", count))
	} else {
		log.Debug("期限切れホールドなし")
	}
}
