package handler

import (
	"context"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/application"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/order"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
)

// SeatMapServiceInterface はシートマップサービスのインターフェース
type SeatMapServiceInterface interface {
	Seats(ctx context.Context, showtimeID string) (*application.SeatMap, error)
	Acquire(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error)
	Release(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error)
}

// CommitServiceInterface はコミットサービスのインターフェース
type CommitServiceInterface interface {
	Commit(ctx context.Context, showtimeID, holderID string) (*order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
}

// ShowtimeServiceInterface は上映回サービスのインターフェース
type ShowtimeServiceInterface interface {
	CreateShowtime(ctx context.Context, input application.CreateShowtimeInput) (*showtime.Showtime, error)
	GetShowtime(ctx context.Context, id string) (*showtime.Showtime, error)
}
