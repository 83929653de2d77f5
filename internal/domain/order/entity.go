package order

import (
	"errors"
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// Order ドメインのエラー定義
var (
	ErrOrderNotFound      = errors.New("注文が見つかりません")
	ErrNoSeatsHeld        = errors.New("確定できる座席がありません")
	ErrShowtimeIDRequired = errors.New("上映回IDは必須です")
	ErrHolderIDRequired   = errors.New("ホルダーIDは必須です")
)

// Order は確定済みの注文を表す
// コミットサービスがホールド中の座席を販売済みへ変換した結果
type Order struct {
	ID         string
	ShowtimeID string
	HolderID   string
	Seats      []seat.Ref
	CreatedAt  time.Time
}

// NewOrder は新しい注文を作成する
func NewOrder(showtimeID, holderID string, seats []seat.Ref) *Order {
	return &Order{
		ShowtimeID: showtimeID,
		HolderID:   holderID,
		Seats:      seats,
		CreatedAt:  time.Now(),
	}
}

// Validate は注文の検証を行う
func (o *Order) Validate() error {
	if o.ShowtimeID == "" {
		return ErrShowtimeIDRequired
	}
	if o.HolderID == "" {
		return ErrHolderIDRequired
	}
	if len(o.Seats) == 0 {
		return ErrNoSeatsHeld
	}
	return nil
}
