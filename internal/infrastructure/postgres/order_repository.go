package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/order"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

type orderRow struct {
	ID         string    `db:"id"`
	ShowtimeID string    `db:"showtime_id"`
	HolderID   string    `db:"holder_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type OrderRepository struct{ db *sqlx.DB }

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, tx *sqlx.Tx, o *order.Order) error {
	query := `INSERT INTO orders (id, showtime_id, holder_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, query, o.ID, o.ShowtimeID, o.HolderID, o.CreatedAt); err != nil {
		return fmt.Errorf("注文の作成に失敗: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var row orderRow
	query := `SELECT id, showtime_id, holder_id, created_at FROM orders WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("注文取得に失敗: %w", err)
	}

	// 座席は販売記録から復元する
	type soldRow struct {
		Row    int `db:"seat_row"`
		Column int `db:"seat_column"`
	}
	var soldRows []soldRow
	seatQuery := `SELECT seat_row, seat_column FROM sold_seats
		WHERE order_id = $1 ORDER BY seat_row, seat_column`
	if err := r.db.SelectContext(ctx, &soldRows, seatQuery, id); err != nil {
		return nil, fmt.Errorf("注文座席の取得に失敗: %w", err)
	}

	seats := make([]seat.Ref, len(soldRows))
	for i, sr := range soldRows {
		seats[i] = seat.NewRef(sr.Row, sr.Column)
	}

	return &order.Order{
		ID:         row.ID,
		ShowtimeID: row.ShowtimeID,
		HolderID:   row.HolderID,
		Seats:      seats,
		CreatedAt:  row.CreatedAt,
	}, nil
}
