package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/order"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
)

type CommitHandler struct {
	service CommitServiceInterface
}

func NewCommitHandler(s CommitServiceInterface) *CommitHandler {
	return &CommitHandler{service: s}
}

type CommitRequest struct {
	HolderID string `json:"holder_id" validate:"required"`
}

type OrderResponse struct {
	ID         string    `json:"id"`
	ShowtimeID string    `json:"showtime_id"`
	HolderID   string    `json:"holder_id"`
	Seats      []string  `json:"seats"`
	CreatedAt  time.Time `json:"created_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	seats := make([]string, len(o.Seats))
	for i, ref := range o.Seats {
		seats[i] = ref.DisplayID()
	}
	return OrderResponse{
		ID: o.ID, ShowtimeID: o.ShowtimeID, HolderID: o.HolderID,
		Seats: seats, CreatedAt: o.CreatedAt,
	}
}

// Commit はホルダーの確保座席をまとめて販売済みへ確定する
func (h *CommitHandler) Commit(c echo.Context) error {
	showtimeID := c.Param("id")
	var req CommitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	o, err := h.service.Commit(c.Request().Context(), showtimeID, req.HolderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNoSeatsHeld):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, showtime.ErrShowtimeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

// GetOrder は注文を取得する
func (h *CommitHandler) GetOrder(c echo.Context) error {
	id := c.Param("order_id")
	o, err := h.service.GetOrder(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}
