package order

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository は注文リポジトリのインターフェース
type Repository interface {
	// Create は新しい注文を作成する（トランザクション必須）
	Create(ctx context.Context, tx *sqlx.Tx, o *Order) error

	// GetByID はIDから注文を取得する
	GetByID(ctx context.Context, id string) (*Order, error)
}
