package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/application"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/showtime"
)

type ShowtimeHandler struct {
	service ShowtimeServiceInterface
}

func NewShowtimeHandler(s ShowtimeServiceInterface) *ShowtimeHandler {
	return &ShowtimeHandler{service: s}
}

type CreateShowtimeRequest struct {
	MovieTitle   string    `json:"movie_title" validate:"required"`
	AuditoriumID string    `json:"auditorium_id" validate:"required"`
	Rows         int       `json:"rows" validate:"required,min=1,max=100"`
	Columns      int       `json:"columns" validate:"required,min=1,max=100"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
}

type ShowtimeResponse struct {
	ID           string    `json:"id"`
	MovieTitle   string    `json:"movie_title"`
	AuditoriumID string    `json:"auditorium_id"`
	Rows         int       `json:"rows"`
	Columns      int       `json:"columns"`
	StartsAt     time.Time `json:"starts_at"`
}

func toShowtimeResponse(st *showtime.Showtime) ShowtimeResponse {
	return ShowtimeResponse{
		ID: st.ID, MovieTitle: st.MovieTitle, AuditoriumID: st.AuditoriumID,
		Rows: st.Rows, Columns: st.Columns, StartsAt: st.StartsAt,
	}
}

func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req CreateShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	st, err := h.service.CreateShowtime(c.Request().Context(), application.CreateShowtimeInput{
		MovieTitle:   req.MovieTitle,
		AuditoriumID: req.AuditoriumID,
		Rows:         req.Rows,
		Columns:      req.Columns,
		StartsAt:     req.StartsAt,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toShowtimeResponse(st))
}

func (h *ShowtimeHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	st, err := h.service.GetShowtime(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, showtime.ErrShowtimeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toShowtimeResponse(st))
}
