package hold

import (
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// DefaultTTL はホールドの既定の有効期間
// クライアントのセッションタイマー（5分）＋延長1回分（5分）を必ず覆う
const DefaultTTL = 10 * time.Minute

// Hold は座席の一時確保を表す値オブジェクト
// (座席, ホルダー, 期限) の三つ組で、再取得のたびに期限が延長される
type Hold struct {
	ShowtimeID string
	Seat       seat.Ref
	HolderID   string
	ExpiresAt  time.Time
}

// New は新しいホールドを作成する
func New(showtimeID string, ref seat.Ref, holderID string, ttl time.Duration) Hold {
	return Hold{
		ShowtimeID: showtimeID,
		Seat:       ref,
		HolderID:   holderID,
		ExpiresAt:  time.Now().Add(ttl),
	}
}

// IsExpired はホールドが期限切れかを返す
func (h Hold) IsExpired() bool {
	return time.Now().After(h.ExpiresAt)
}

// Remaining はホールドの残り有効時間を返す（期限切れなら0）
func (h Hold) Remaining() time.Duration {
	d := time.Until(h.ExpiresAt)
	if d < 0 {
		return 0
	}
	return d
}

// Validate はホールドの検証を行う
func (h Hold) Validate() error {
	if h.ShowtimeID == "" {
		return ErrShowtimeIDRequired
	}
	if h.HolderID == "" {
		return ErrHolderIDRequired
	}
	return nil
}
