package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/hold"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/metrics"
)

// SeatMap は上映回の座席グリッド全体のスナップショット
// Versionは状態が変わるたびに単調増加する
type SeatMap struct {
	ShowtimeID string
	Version    int64
	Seats      []*seat.Seat
}

// SeatMapService はショータイム＆シートマップサービスの本体
// レイアウト（不変）・販売済み座席（postgres）・有効なホールド（Store）を
// 重ねて権威ある座席状態を組み立てる
type SeatMapService struct {
	showtimeRepo showtime.Repository
	holds        hold.Store
	holdTTL      time.Duration
	metrics      *metrics.Metrics
}

func NewSeatMapService(sr showtime.Repository, hs hold.Store, holdTTL time.Duration, m *metrics.Metrics) *SeatMapService {
	if holdTTL <= 0 {
		holdTTL = hold.DefaultTTL
	}
	return &SeatMapService{showtimeRepo: sr, holds: hs, holdTTL: holdTTL, metrics: m}
}

// Seats は上映回の全座席状態を返す。ポーリングに対して安全（冪等）
func (s *SeatMapService) Seats(ctx context.Context, showtimeID string) (*SeatMap, error) {
	start := time.Now()
	sm, err := s.buildSeatMap(ctx, showtimeID)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.SeatMapPollDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
	return sm, err
}

func (s *SeatMapService) buildSeatMap(ctx context.Context, showtimeID string) (*SeatMap, error) {
	st, err := s.showtimeRepo.GetByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	sold, err := s.showtimeRepo.SoldSeats(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("販売済み座席の取得に失敗: %w", err)
	}
	soldSet := make(map[seat.Ref]struct{}, len(sold))
	for _, ref := range sold {
		soldSet[ref] = struct{}{}
	}

	liveHolds, version, err := s.holds.ByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("ホールドの取得に失敗: %w", err)
	}
	holders := make(map[seat.Ref]string, len(liveHolds))
	for _, h := range liveHolds {
		holders[h.Seat] = h.HolderID
	}

	seats := make([]*seat.Seat, 0, st.Capacity())
	for _, ref := range st.Layout() {
		se := &seat.Seat{Ref: ref, Status: seat.StatusFree}
		if _, ok := soldSet[ref]; ok {
			se.Status = seat.StatusSold
		} else if holderID, ok := holders[ref]; ok {
			se.Status = seat.StatusHeld
			se.HolderID = holderID
		}
		seats = append(seats, se)
	}

	if s.metrics != nil {
		s.metrics.ActiveHolds.Set(float64(len(liveHolds)))
	}

	return &SeatMap{ShowtimeID: showtimeID, Version: version, Seats: seats}, nil
}

// Acquire は座席を確保する。既に同一ホルダーが確保している場合はTTLの延長
// 販売済み・他ホルダー確保中はhold.ErrSeatHeldByOther相当の競合として扱う
func (s *SeatMapService) Acquire(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error) {
	if holderID == "" {
		return 0, hold.ErrHolderIDRequired
	}

	st, err := s.showtimeRepo.GetByID(ctx, showtimeID)
	if err != nil {
		return 0, err
	}
	if !st.Contains(ref) {
		return 0, seat.ErrSeatOutOfLayout
	}

	sold, err := s.showtimeRepo.SoldSeats(ctx, showtimeID)
	if err != nil {
		return 0, fmt.Errorf("販売済み座席の取得に失敗: %w", err)
	}
	for _, soldRef := range sold {
		if soldRef == ref {
			s.countAcquire("conflict")
			return 0, seat.ErrSeatSold
		}
	}

	version, err := s.holds.Acquire(ctx, showtimeID, ref, holderID, s.holdTTL)
	if err != nil {
		if errors.Is(err, hold.ErrSeatHeldByOther) {
			s.countAcquire("conflict")
			logger.Debug("座席の確保で競合",
				zap.String("showtime_id", showtimeID),
				zap.String("seat", ref.DisplayID()),
				zap.String("holder_id", holderID),
			)
			return version, err
		}
		s.countAcquire("error")
		return 0, fmt.Errorf("ホールド取得に失敗: %w", err)
	}

	s.countAcquire("acquired")
	return version, nil
}

// Release は座席のホールドを解放する
// 呼び出し元が確保していない座席の解放は何もしない成功として扱う
func (s *SeatMapService) Release(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error) {
	if holderID == "" {
		return 0, hold.ErrHolderIDRequired
	}

	version, err := s.holds.Release(ctx, showtimeID, ref, holderID)
	if err != nil {
		s.countRelease("error")
		return 0, fmt.Errorf("ホールド解放に失敗: %w", err)
	}
	s.countRelease("released")
	return version, nil
}

func (s *SeatMapService) countAcquire(status string) {
	if s.metrics != nil {
		s.metrics.HoldAcquiresTotal.WithLabelValues(status).Inc()
	}
}

func (s *SeatMapService) countRelease(status string) {
	if s.metrics != nil {
		s.metrics.HoldReleasesTotal.WithLabelValues(status).Inc()
	}
}
