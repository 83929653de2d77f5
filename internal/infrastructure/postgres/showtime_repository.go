package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
)

type showtimeRow struct {
	ID           string    `db:"id"`
	MovieTitle   string    `db:"movie_title"`
	AuditoriumID string    `db:"auditorium_id"`
	Rows         int       `db:"rows"`
	Columns      int       `db:"columns"`
	StartsAt     time.Time `db:"starts_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *showtimeRow) toEntity() *showtime.Showtime {
	return &showtime.Showtime{
		ID: r.ID, MovieTitle: r.MovieTitle, AuditoriumID: r.AuditoriumID,
		Rows: r.Rows, Columns: r.Columns, StartsAt: r.StartsAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type ShowtimeRepository struct{ db *sqlx.DB }

func NewShowtimeRepository(db *sqlx.DB) *ShowtimeRepository {
	return &ShowtimeRepository{db: db}
}

func (r *ShowtimeRepository) Create(ctx context.Context, st *showtime.Showtime) error {
	query := `INSERT INTO showtimes (movie_title, auditorium_id, rows, columns, starts_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		st.MovieTitle, st.AuditoriumID, st.Rows, st.Columns,
		st.StartsAt, st.CreatedAt, st.UpdatedAt).Scan(&st.ID)
}

func (r *ShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	var row showtimeRow
	query := `SELECT id, movie_title, auditorium_id, rows, columns, starts_at, created_at, updated_at
		FROM showtimes WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, showtime.ErrShowtimeNotFound
		}
		return nil, fmt.Errorf("上映回取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ShowtimeRepository) SoldSeats(ctx context.Context, showtimeID string) ([]seat.Ref, error) {
	type soldRow struct {
		Row    int `db:"seat_row"`
		Column int `db:"seat_column"`
	}
	var rows []soldRow
	query := `SELECT seat_row, seat_column FROM sold_seats
		WHERE showtime_id = $1 ORDER BY seat_row, seat_column`
	if err := r.db.SelectContext(ctx, &rows, query, showtimeID); err != nil {
		return nil, fmt.Errorf("販売済み座席の取得に失敗: %w", err)
	}
	refs := make([]seat.Ref, len(rows))
	for i, row := range rows {
		refs[i] = seat.NewRef(row.Row, row.Column)
	}
	return refs, nil
}

func (r *ShowtimeRepository) MarkSold(ctx context.Context, tx *sqlx.Tx, showtimeID, orderID string, refs []seat.Ref) error {
	if len(refs) == 0 {
		return nil
	}

	// マルチバリューINSERT。UNIQUE(showtime_id, seat_row, seat_column)制約が
	// 二重販売を最終的に防ぐ
	query := `INSERT INTO sold_seats (showtime_id, order_id, seat_row, seat_column, sold_at) VALUES `
	args := make([]interface{}, 0, len(refs)*5)
	placeholders := make([]string, 0, len(refs))
	now := time.Now()

	for i, ref := range refs {
		base := i * 5
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, showtimeID, orderID, ref.Row, ref.Column, now)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("販売済み座席の登録に失敗: %w", err)
	}
	return nil
}
