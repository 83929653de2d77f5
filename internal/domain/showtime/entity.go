package showtime

import (
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// Showtime は上映回エンティティを表す
// 座席レイアウト（行×列）は購入フローの間は不変
type Showtime struct {
	ID           string
	MovieTitle   string
	AuditoriumID string
	Rows         int
	Columns      int
	StartsAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewShowtime は新しい上映回を作成する
func NewShowtime(movieTitle, auditoriumID string, rows, columns int, startsAt time.Time) *Showtime {
	now := time.Now()
	return &Showtime{
		MovieTitle:   movieTitle,
		AuditoriumID: auditoriumID,
		Rows:         rows,
		Columns:      columns,
		StartsAt:     startsAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Capacity は座席総数を返す
func (s *Showtime) Capacity() int {
	return s.Rows * s.Columns
}

// Contains は座席位置がこの上映回のレイアウト内かを返す
func (s *Showtime) Contains(ref seat.Ref) bool {
	return ref.InLayout(s.Rows, s.Columns)
}

// Layout は全座席位置を行優先の順序で返す
func (s *Showtime) Layout() []seat.Ref {
	refs := make([]seat.Ref, 0, s.Capacity())
	for row := 1; row <= s.Rows; row++ {
		for col := 1; col <= s.Columns; col++ {
			refs = append(refs, seat.NewRef(row, col))
		}
	}
	return refs
}

// Validate は上映回の検証を行う
func (s *Showtime) Validate() error {
	if s.MovieTitle == "" {
		return ErrMovieTitleRequired
	}
	if s.AuditoriumID == "" {
		return ErrAuditoriumIDRequired
	}
	if s.Rows < 1 || s.Columns < 1 {
		return ErrInvalidLayout
	}
	return nil
}
