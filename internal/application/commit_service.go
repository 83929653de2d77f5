package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/hold"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/order"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// CommitService はホールド中の座席を支払済みの注文へ変換する
// 座席をheldからsoldへ遷移させる唯一の経路
type CommitService struct {
	db           *sqlx.DB
	showtimeRepo showtime.Repository
	orderRepo    order.Repository
	holds        hold.Store
}

func NewCommitService(db *sqlx.DB, sr showtime.Repository, or order.Repository, hs hold.Store) *CommitService {
	return &CommitService{db: db, showtimeRepo: sr, orderRepo: or, holds: hs}
}

// Commit はホルダーが現在確保している全座席を1トランザクションで販売済みにする
// 確保座席が1つもない場合はorder.ErrNoSeatsHeldを返す
func (s *CommitService) Commit(ctx context.Context, showtimeID, holderID string) (*order.Order, error) {
	if holderID == "" {
		return nil, order.ErrHolderIDRequired
	}
	if _, err := s.showtimeRepo.GetByID(ctx, showtimeID); err != nil {
		return nil, err
	}

	liveHolds, _, err := s.holds.ByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("ホールドの取得に失敗: %w", err)
	}
	var seats []seat.Ref
	for _, h := range liveHolds {
		if h.HolderID == holderID {
			seats = append(seats, h.Seat)
		}
	}
	if len(seats) == 0 {
		return nil, order.ErrNoSeatsHeld
	}

	o := order.NewOrder(showtimeID, holderID, seats)
	o.ID = uuid.New().String()
	if err := o.Validate(); err != nil {
		return nil, err
	}

	// トランザクション
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.Create(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := s.showtimeRepo.MarkSold(ctx, tx, showtimeID, o.ID, seats); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	// 販売済みが常にホールドに優先するため、解放は確定後でよい
	if _, _, err := s.holds.ReleaseAllByHolder(ctx, showtimeID, holderID); err != nil {
		logger.Warn("確定後のホールド解放に失敗（TTLで自然回収される）",
			zap.String("showtime_id", showtimeID),
			zap.String("holder_id", holderID),
			zap.Error(err),
		)
	}

	logger.Info("座席を販売済みに確定",
		zap.String("order_id", o.ID),
		zap.String("showtime_id", showtimeID),
		zap.Int("seats", len(seats)),
	)
	return o, nil
}

// GetOrder はIDから注文を取得する
func (s *CommitService) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}
