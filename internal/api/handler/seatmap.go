package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/application"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/hold"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
)

type SeatMapHandler struct {
	service SeatMapServiceInterface
}

func NewSeatMapHandler(s SeatMapServiceInterface) *SeatMapHandler {
	return &SeatMapHandler{service: s}
}

type SeatStateResponse struct {
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	DisplayID string `json:"display_id"`
	Status    string `json:"status"`
	HolderID  string `json:"holder_id,omitempty"`
}

type SeatMapResponse struct {
	ShowtimeID string              `json:"showtime_id"`
	Version    int64               `json:"version"`
	Seats      []SeatStateResponse `json:"seats"`
}

type SeatMutationRequest struct {
	Row      int    `json:"row" validate:"required,min=1"`
	Column   int    `json:"column" validate:"required,min=1"`
	HolderID string `json:"holder_id" validate:"required"`
}

type SeatMutationResponse struct {
	Version int64 `json:"version"`
}

func toSeatMapResponse(sm *application.SeatMap) SeatMapResponse {
	seats := make([]SeatStateResponse, len(sm.Seats))
	for i, se := range sm.Seats {
		seats[i] = SeatStateResponse{
			Row:       se.Ref.Row,
			Column:    se.Ref.Column,
			DisplayID: se.Ref.DisplayID(),
			Status:    string(se.Status),
			HolderID:  se.HolderID,
		}
	}
	return SeatMapResponse{ShowtimeID: sm.ShowtimeID, Version: sm.Version, Seats: seats}
}

// GetSeats は上映回の全座席状態を返す。ポーリング用途を想定した冪等なGET
func (h *SeatMapHandler) GetSeats(c echo.Context) error {
	showtimeID := c.Param("id")
	sm, err := h.service.Seats(c.Request().Context(), showtimeID)
	if err != nil {
		if errors.Is(err, showtime.ErrShowtimeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toSeatMapResponse(sm))
}

// Acquire は座席を確保する。競合（他ホルダー確保中・販売済み）は409
func (h *SeatMapHandler) Acquire(c echo.Context) error {
	showtimeID := c.Param("id")
	var req SeatMutationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	version, err := h.service.Acquire(c.Request().Context(), showtimeID, seat.NewRef(req.Row, req.Column), req.HolderID)
	if err != nil {
		switch {
		case errors.Is(err, hold.ErrSeatHeldByOther), errors.Is(err, seat.ErrSeatSold):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, showtime.ErrShowtimeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, seat.ErrSeatOutOfLayout), errors.Is(err, hold.ErrHolderIDRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, SeatMutationResponse{Version: version})
}

// Release は座席のホールドを解放する
// 確保していない座席の解放も200（何もしない成功）
func (h *SeatMapHandler) Release(c echo.Context) error {
	showtimeID := c.Param("id")
	var req SeatMutationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	version, err := h.service.Release(c.Request().Context(), showtimeID, seat.NewRef(req.Row, req.Column), req.HolderID)
	if err != nil {
		if errors.Is(err, hold.ErrHolderIDRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, SeatMutationResponse{Version: version})
}
