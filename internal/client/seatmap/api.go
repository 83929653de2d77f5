package seatmap

import (
	"context"
	"errors"
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// ErrSeatConflict は座席が他者に確保済み・販売済みで取得できなかったことを表す
var ErrSeatConflict = errors.New("座席は既に確保または販売済みです")

// API はショータイム＆シートマップサービスへのクライアント側の窓口
type API interface {
	// Seats は上映回の座席スナップショットを取得する
	Seats(ctx context.Context, showtimeID string) (*Snapshot, error)
	// Acquire は座席を確保する。競合時はErrSeatConflictを返す
	Acquire(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error)
	// Release は座席のホールドを解放する。非保有座席の解放は成功として扱われる
	Release(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error)
}

// SeatState はスナップショット内の1座席の状態
type SeatState struct {
	Ref      seat.Ref
	Status   seat.Status
	HolderID string
}

// Snapshot は1回のポーリングで得た座席グリッド全体の状態
// Versionはサーバー側の変更ごとに単調増加する
type Snapshot struct {
	ShowtimeID string
	Version    int64
	FetchedAt  time.Time
	Seats      []SeatState
}

// State は指定座席の状態を返す。レイアウト外の場合はnil
func (s *Snapshot) State(ref seat.Ref) *SeatState {
	for i := range s.Seats {
		if s.Seats[i].Ref == ref {
			return &s.Seats[i]
		}
	}
	return nil
}

// OwnedBy は指定ホルダーが確保中の座席一覧を返す
func (s *Snapshot) OwnedBy(holderID string) []seat.Ref {
	if holderID == "" {
		return nil
	}
	var refs []seat.Ref
	for i := range s.Seats {
		if s.Seats[i].Status == seat.StatusHeld && s.Seats[i].HolderID == holderID {
			refs = append(refs, s.Seats[i].Ref)
		}
	}
	return refs
}
