package showtime

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// Repository は上映回リポジトリのインターフェース
type Repository interface {
	// Create は新しい上映回を作成する
	Create(ctx context.Context, st *Showtime) error

	// GetByID はIDから上映回を取得する
	GetByID(ctx context.Context, id string) (*Showtime, error)

	// SoldSeats は上映回の販売済み座席一覧を返す
	SoldSeats(ctx context.Context, showtimeID string) ([]seat.Ref, error)

	// MarkSold は座席を販売済みとして記録する（トランザクション必須）
	MarkSold(ctx context.Context, tx *sqlx.Tx, showtimeID, orderID string, refs []seat.Ref) error
}
