package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
)

// ShowtimeService は上映回の登録・参照を行う
// 座席ホールドの前提となる最小限の管理面のみを持つ
type ShowtimeService struct {
	showtimeRepo showtime.Repository
}

func NewShowtimeService(sr showtime.Repository) *ShowtimeService {
	return &ShowtimeService{showtimeRepo: sr}
}

type CreateShowtimeInput struct {
	MovieTitle   string
	AuditoriumID string
	Rows         int
	Columns      int
	StartsAt     time.Time
}

func (s *ShowtimeService) CreateShowtime(ctx context.Context, input CreateShowtimeInput) (*showtime.Showtime, error) {
	st := showtime.NewShowtime(input.MovieTitle, input.AuditoriumID, input.Rows, input.Columns, input.StartsAt)
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if err := s.showtimeRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *ShowtimeService) GetShowtime(ctx context.Context, id string) (*showtime.Showtime, error) {
	return s.showtimeRepo.GetByID(ctx, id)
}
