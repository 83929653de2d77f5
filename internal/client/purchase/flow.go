package purchase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/continuity"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/holdctl"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/navguard"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/seatmap"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/session"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// Options はフローの調整パラメータ
type Options struct {
	PollInterval  time.Duration // 座席マップのポーリング間隔
	SessionBudget time.Duration // セッションタイマーの持ち時間
	TickInterval  time.Duration // タイマーの刻み（テスト用に短縮可）
}

// HandOff は決済など外部画面へ渡すスナップショット
type HandOff struct {
	Seats            []seat.Ref
	RemainingSeconds int
}

// Flow は座席選択から確認画面までの購入フロー全体を束ねる
// ポーラー・セッション・タイマー・コントローラー・リゾルバー・ガードを
// 1つのライフサイクルとして管理する
type Flow struct {
	sess     *session.PurchaseSession
	timer    *session.Timer
	poller   *seatmap.Poller
	ctrl     *holdctl.Controller
	resolver *continuity.Resolver
	guard    *navguard.Guard

	mu        sync.Mutex
	started   bool
	ctx       context.Context
	cancel    context.CancelFunc
	onExpired func()
}

// NewFlow は購入フローを組み立てる
func NewFlow(api seatmap.API, showtimeID, holderID string, opts Options) *Flow {
	f := &Flow{}
	f.sess = session.New(showtimeID, holderID)
	f.timer = session.NewTimer(opts.SessionBudget, opts.TickInterval)
	f.ctrl = holdctl.New(api, f.sess, func() {
		if f.poller != nil {
			f.poller.Refresh()
		}
	})
	f.poller = seatmap.NewPoller(api, showtimeID, opts.PollInterval, f.ctrl.ApplySnapshot)
	f.resolver = continuity.New(api, f.ctrl, f.sess)
	f.guard = navguard.New(f.sess, f.abandon)
	f.timer.OnExpire(f.expire)
	return f
}

// Session は購入セッションを返す
func (f *Flow) Session() *session.PurchaseSession {
	return f.sess
}

// Timer はセッションタイマーを返す
func (f *Flow) Timer() *session.Timer {
	return f.timer
}

// Guard は離脱ガードを返す。画面遷移のフックに接続する
func (f *Flow) Guard() *navguard.Guard {
	return f.guard
}

// Snapshot は直近の座席スナップショットを返す。未取得ならnil
func (f *Flow) Snapshot() *seatmap.Snapshot {
	return f.poller.Last()
}

// OnExpired はセッション満了の通知コールバックを設定する（画面表示用）
// Start前に呼ぶこと
func (f *Flow) OnExpired(fn func()) {
	f.onExpired = fn
}

// Start は座席マップのポーリングを開始する
func (f *Flow) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return
	}
	f.started = true
	f.ctx, f.cancel = context.WithCancel(ctx)
	f.mu.Unlock()

	go f.poller.Start(f.ctx)
}

// Close はフロー全体を停止する。保持中のホールドは解放しない
// （アプリ終了時はサーバー側TTLに任せる）
func (f *Flow) Close() {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	f.started = false
	cancel := f.cancel
	f.mu.Unlock()

	f.timer.Stop()
	cancel()
	f.poller.Stop()
}

// ToggleSeat は座席タップを処理する
// 最初の座席確保が成功したときにセッションタイマーを開始する
func (f *Flow) ToggleSeat(ctx context.Context, ref seat.Ref) error {
	err := f.ctrl.Toggle(ctx, ref, f.poller.Last())
	if err != nil {
		return err
	}
	if f.sess.HasActiveSelection() && f.timer.State() != session.TimerRunning {
		f.timer.Start()
	}
	return nil
}

// ExtendSession は残り時間を持ち時間の初期値に戻し、
// 保持中のホールドのTTLも再確保で延長する
func (f *Flow) ExtendSession(ctx context.Context) {
	f.timer.Extend()
	for _, ref := range f.sess.Seats() {
		if err := f.ctrl.Acquire(ctx, ref); err != nil {
			logger.Warn("セッション延長時のホールド更新に失敗",
				zap.String("seat", ref.DisplayID()),
				zap.Error(err),
			)
		}
	}
}

// Reenter は購入フロー後段から座席選択画面へ戻ったときの復帰処理
func (f *Flow) Reenter(ctx context.Context) (*continuity.Result, error) {
	result, err := f.resolver.Restore(ctx, f.sess.Seats())
	if err != nil {
		return nil, err
	}
	f.poller.Refresh()
	return result, nil
}

// CompleteCheckout は購入確定後の後始末を行う
// 座席は販売済みに変わっているため解放は行わない
func (f *Flow) CompleteCheckout() {
	f.timer.Stop()
	f.sess.Clear()
	f.poller.Refresh()
}

// HandOffState は決済画面など外部へ渡す現在の選択内容を返す
func (f *Flow) HandOffState() HandOff {
	return HandOff{
		Seats:            f.sess.Seats(),
		RemainingSeconds: int(f.timer.Remaining().Seconds()),
	}
}

// expire はセッション満了時の共通クリーンアップ
func (f *Flow) expire() {
	logger.Info("セッション満了によりホールドを解放")
	f.cleanup()
	if f.onExpired != nil {
		f.onExpired()
	}
}

// abandon は購入フロー離脱時の共通クリーンアップ
func (f *Flow) abandon() {
	logger.Info("購入フロー離脱によりホールドを解放")
	f.timer.Stop()
	f.cleanup()
}

// cleanup はホールド全解放と選択リセットを行う
// 満了・離脱の両経路から同じ処理を通す
func (f *Flow) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := f.ctrl.ReleaseAll(ctx); err != nil {
		logger.Warn("ホールド解放の一部が失敗（TTLで自然失効する）", zap.Error(err))
	}
	f.sess.Clear()
	f.poller.Refresh()
}
