package continuity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/seatmap"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/session"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// Result は座席選択画面への復帰処理の結果
type Result struct {
	// Restored は自分のホールドが生きていてTTLを延長できた座席
	Restored []seat.Ref
	// Recovered はホールドが失効していたが空席のまま残っており再確保できた座席
	Recovered []seat.Ref
	// Lost はホールド失効後に他者に取られた・販売済みになった座席
	Lost []seat.Ref
}

// Restorable は復帰対応の操作を提供するコントローラーの窓口
type Restorable interface {
	Acquire(ctx context.Context, ref seat.Ref) error
}

// Resolver は購入フロー後段から座席選択画面に戻ったとき、
// 選択中だった座席の現況を解決する
// 判定は1回の新鮮なスナップショット取得に基づいて行う
type Resolver struct {
	api  seatmap.API
	ctrl Restorable
	sess *session.PurchaseSession
}

// New は新しいリゾルバーを作成
func New(api seatmap.API, ctrl Restorable, sess *session.PurchaseSession) *Resolver {
	return &Resolver{api: api, ctrl: ctrl, sess: sess}
}

// Restore は復帰時の座席ごとの現況を解決する
// prior は復帰前に選択していた座席集合
// スナップショット取得に失敗した場合のみエラーを返す。座席単位の失敗は
// Result.Lostに計上してエラーにしない
func (r *Resolver) Restore(ctx context.Context, prior []seat.Ref) (*Result, error) {
	result := &Result{}
	if len(prior) == 0 {
		return result, nil
	}

	snap, err := r.api.Seats(ctx, r.sess.ShowtimeID())
	if err != nil {
		return nil, fmt.Errorf("復帰時のスナップショット取得に失敗: %w", err)
	}

	holderID := r.sess.HolderID()
	for _, ref := range prior {
		st := snap.State(ref)
		switch {
		case st == nil:
			// レイアウト外。通常起きないが失われたものとして扱う
			r.lose(result, ref)

		case st.Status == seat.StatusHeld && st.HolderID == holderID:
			// ホールドが生きている。再確保でTTLを延長する
			if err := r.ctrl.Acquire(ctx, ref); err != nil {
				r.lose(result, ref)
				continue
			}
			result.Restored = append(result.Restored, ref)

		case st.Status == seat.StatusFree:
			// 失効していたが空席のまま。取り直す
			if err := r.ctrl.Acquire(ctx, ref); err != nil {
				r.lose(result, ref)
				continue
			}
			result.Recovered = append(result.Recovered, ref)

		default:
			// 他者確保中または販売済み
			r.lose(result, ref)
		}
	}

	logger.Info("座席選択画面への復帰を解決",
		zap.Int("restored", len(result.Restored)),
		zap.Int("recovered", len(result.Recovered)),
		zap.Int("lost", len(result.Lost)),
	)

	return result, nil
}

// lose は座席を喪失として記録し、ローカル選択からも外す
func (r *Resolver) lose(result *Result, ref seat.Ref) {
	result.Lost = append(result.Lost, ref)
	r.sess.Remove(ref)
	logger.Info("復帰時に座席を喪失",
		zap.String("seat", ref.DisplayID()),
	)
}
