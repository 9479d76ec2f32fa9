package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gopkg.in/guregu/null.v4"

	"github.com/iliyamo/parking-lot-reservation/internal/middleware"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/queue"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
	"github.com/iliyamo/parking-lot-reservation/internal/service"
)

// ReservationHandler bundles dependencies for the booking endpoints.
type ReservationHandler struct {
	Parking *service.ParkingService
	Stats   *service.StatsService
}

func NewReservationHandler(parking *service.ParkingService, stats *service.StatsService) *ReservationHandler {
	return &ReservationHandler{Parking: parking, Stats: stats}
}

// ----- DTOs -----

type bookReq struct {
	LotID uint64 `json:"lot_id"`
}

type reservationView struct {
	ID               uint64     `json:"id"`
	SpotID           uint64     `json:"spot_id"`
	LotID            uint64     `json:"lot_id"`
	SpotNumber       int        `json:"spot_number"`
	UserID           uint64     `json:"user_id"`
	ParkingTimestamp time.Time  `json:"parking_timestamp"`
	LeavingTimestamp null.Time  `json:"leaving_timestamp"`
	CostPerHour      float64    `json:"parking_cost_per_hour"`
	TotalCost        null.Float `json:"total_cost"`
}

func reservationToView(r *model.Reservation) reservationView {
	return reservationView{
		ID:               r.ID,
		SpotID:           r.SpotID,
		LotID:            r.LotID,
		SpotNumber:       r.SpotNumber,
		UserID:           r.UserID,
		ParkingTimestamp: r.ParkingTimestamp,
		LeavingTimestamp: r.LeavingTimestamp,
		CostPerHour:      r.ParkingCostPerHour,
		TotalCost:        r.TotalCost,
	}
}

// Book allocates the first available spot in the requested lot to the
// caller. Admins manage lots, they do not park. A user may hold at
// most one open reservation at a time.
func (h *ReservationHandler) Book(c echo.Context) error {
	if middleware.Role(c) == model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admins cannot book spots"})
	}

	var req bookReq
	if err := c.Bind(&req); err != nil || req.LotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lot_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := middleware.UserID(c)
	if _, err := h.Parking.ActiveReservation(ctx, userID); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "active reservation already exists"})
	} else if !errors.Is(err, repository.ErrReservationNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	res, err := h.Parking.BookSpot(ctx, userID, req.LotID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		case errors.Is(err, service.ErrNoAvailableSpot):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no available spot in lot"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	// Best effort: a broker outage never fails the booking.
	if lot, lerr := h.Parking.Lot(ctx, res.LotID); lerr == nil {
		_ = queue.PublishSpotBooked(ctx, queue.SpotBookedEvent{
			ReservationID: res.ID,
			UserID:        res.UserID,
			LotID:         res.LotID,
			LotName:       lot.PrimeLocationName,
			SpotNumber:    res.SpotNumber,
			CostPerHour:   res.ParkingCostPerHour,
			BookedAt:      res.ParkingTimestamp.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, reservationToView(res))
}

// Release closes a reservation, bills it and frees the spot. Users
// release their own reservations; admins may release anyone's.
func (h *ReservationHandler) Release(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Parking.Reservation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.UserID != middleware.UserID(c) && middleware.Role(c) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	}

	closed, err := h.Parking.ReleaseSpot(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyReleased):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already released"})
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}

	_ = queue.PublishSpotReleased(ctx, queue.SpotReleasedEvent{
		ReservationID: closed.ID,
		UserID:        closed.UserID,
		LotID:         closed.LotID,
		SpotNumber:    closed.SpotNumber,
		DurationHours: closed.DurationHours(closed.LeavingTimestamp.Time),
		TotalCost:     closed.TotalCost.ValueOrZero(),
		ReleasedAt:    closed.LeavingTimestamp.Time.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, reservationToView(closed))
}

// MyReservations returns the caller's full history, newest first.
func (h *ReservationHandler) MyReservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Parking.ReservationsForUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	views := make([]reservationView, 0, len(list))
	for i := range list {
		views = append(views, reservationToView(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// MyStats returns the caller's reservation summary plus spending
// bucketed by month.
func (h *ReservationHandler) MyStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID := middleware.UserID(c)
	overview, err := h.Stats.UserOverview(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	monthly, err := h.Stats.MonthlySpending(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"summary":          overview,
		"monthly_spending": monthly,
	})
}
