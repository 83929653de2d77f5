package holdctl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/seatmap"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/session"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// ErrSeatBusy は同じ座席への操作が進行中で新しい操作を受け付けられないことを表す
var ErrSeatBusy = errors.New("この座席への操作が進行中です")

// ErrSeatUnavailable は他者確保済み・販売済みの座席を選択しようとしたことを表す
var ErrSeatUnavailable = errors.New("この座席は選択できません")

// Controller は座席ホールドの取得・解放を調停する
// ローカル選択集合を楽観的に更新し、サーバーの応答で確定または巻き戻す
// 同一座席への操作は同時に1つだけ許可する
type Controller struct {
	api    seatmap.API
	sess   *session.PurchaseSession
	resync func()

	mu                  sync.Mutex
	inFlight            map[seat.Ref]struct{}
	lastMutationVersion int64
}

// New は新しいコントローラーを作成
// resyncは競合検出後などに即時ポーリングを促すためのフック（nil可）
func New(api seatmap.API, sess *session.PurchaseSession, resync func()) *Controller {
	return &Controller{
		api:      api,
		sess:     sess,
		resync:   resync,
		inFlight: make(map[seat.Ref]struct{}),
	}
}

// Acquire は座席を確保し選択集合に加える
// 既に選択済みの座席はTTL延長のための再確保として扱う
// 競合時はローカル選択を巻き戻し、再同期を促してからErrSeatUnavailableを返す
func (c *Controller) Acquire(ctx context.Context, ref seat.Ref) error {
	if err := c.begin(ref); err != nil {
		return err
	}
	defer c.end(ref)

	renewal := c.sess.Has(ref)
	if !renewal {
		// 楽観的更新：応答を待たずに選択済みとして扱う
		c.sess.Add(ref)
	}

	version, err := c.api.Acquire(ctx, c.sess.ShowtimeID(), ref, c.sess.HolderID())
	if err != nil {
		if !renewal {
			c.sess.Remove(ref)
		}
		c.requestResync()
		if errors.Is(err, seatmap.ErrSeatConflict) {
			logger.Debug("座席確保で競合、選択を巻き戻し",
				zap.String("seat", ref.DisplayID()),
			)
			return ErrSeatUnavailable
		}
		return fmt.Errorf("座席確保に失敗: %w", err)
	}

	c.recordVersion(version)
	// 次のポーリング周期を待たず確定状態を画面へ反映する
	c.requestResync()
	return nil
}

// Release は座席のホールドを解放し選択集合から外す
// サーバー側の解放が失敗してもローカル選択は必ず外す（ベストエフォート解放）
func (c *Controller) Release(ctx context.Context, ref seat.Ref) error {
	if err := c.begin(ref); err != nil {
		return err
	}
	defer c.end(ref)

	c.sess.Remove(ref)

	version, err := c.api.Release(ctx, c.sess.ShowtimeID(), ref, c.sess.HolderID())
	if err != nil {
		logger.Warn("座席解放に失敗（ローカル選択は解除済み）",
			zap.String("seat", ref.DisplayID()),
			zap.Error(err),
		)
		c.requestResync()
		return fmt.Errorf("座席解放に失敗: %w", err)
	}

	c.recordVersion(version)
	c.requestResync()
	return nil
}

// ReleaseAll は選択中の全座席を解放する
// 一部の解放が失敗しても残りを続行し、失敗をまとめて返す
func (c *Controller) ReleaseAll(ctx context.Context) error {
	var errs []error
	for _, ref := range c.sess.Seats() {
		if err := c.Release(ctx, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Toggle は座席のタップ操作を解決する
// 自分が選択中なら解放、空席なら確保、それ以外はErrSeatUnavailable
func (c *Controller) Toggle(ctx context.Context, ref seat.Ref, snap *seatmap.Snapshot) error {
	if c.sess.Has(ref) {
		return c.Release(ctx, ref)
	}

	if snap != nil {
		if st := snap.State(ref); st != nil {
			if st.Status == seat.StatusSold {
				return ErrSeatUnavailable
			}
			if st.Status == seat.StatusHeld && st.HolderID != c.sess.HolderID() {
				return ErrSeatUnavailable
			}
		}
	}

	return c.Acquire(ctx, ref)
}

// ApplySnapshot はポーリング結果をローカル選択集合に反映する
// 自分の操作より古いスナップショットは破棄する（ポーリング遅延で
// 確保直後の座席が空席に見える問題の対策）
// 操作進行中の座席はスナップショットでは確定させない
func (c *Controller) ApplySnapshot(snap *seatmap.Snapshot) {
	if snap == nil {
		return
	}

	c.mu.Lock()
	if snap.Version < c.lastMutationVersion {
		c.mu.Unlock()
		logger.Debug("古いスナップショットを破棄",
			zap.Int64("snapshot_version", snap.Version),
			zap.Int64("last_mutation_version", c.lastMutationVersion),
		)
		return
	}
	inFlight := make(map[seat.Ref]struct{}, len(c.inFlight))
	for ref := range c.inFlight {
		inFlight[ref] = struct{}{}
	}
	c.mu.Unlock()

	holderID := c.sess.HolderID()
	for _, ref := range c.sess.Seats() {
		if _, busy := inFlight[ref]; busy {
			continue
		}
		st := snap.State(ref)
		if st == nil || st.Status != seat.StatusHeld || st.HolderID != holderID {
			logger.Info("選択座席のホールドが失われたため選択を解除",
				zap.String("seat", ref.DisplayID()),
			)
			c.sess.Remove(ref)
		}
	}
}

// begin は座席への操作開始を登録する。進行中ならErrSeatBusy
func (c *Controller) begin(ref seat.Ref) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[ref]; busy {
		return ErrSeatBusy
	}
	c.inFlight[ref] = struct{}{}
	return nil
}

func (c *Controller) end(ref seat.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, ref)
}

// recordVersion は自分の操作が作ったサーバー側バージョンを記録する
func (c *Controller) recordVersion(version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version > c.lastMutationVersion {
		c.lastMutationVersion = version
	}
}

func (c *Controller) requestResync() {
	if c.resync != nil {
		c.resync()
	}
}
