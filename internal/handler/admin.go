package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
	"github.com/iliyamo/parking-lot-reservation/internal/service"
)

// AdminHandler bundles dependencies for the admin endpoints. All
// routes using it sit behind the ADMIN role middleware.
type AdminHandler struct {
	Store   repository.Store
	Parking *service.ParkingService
	Stats   *service.StatsService
}

func NewAdminHandler(store repository.Store, parking *service.ParkingService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{Store: store, Parking: parking, Stats: stats}
}

// ----- DTOs -----

type lotReq struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	PinCode       string  `json:"pin_code"`
	PricePerHour  float64 `json:"price_per_hour"`
	NumberOfSpots int     `json:"number_of_spots"`
}

func (r *lotReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	switch {
	case r.Name == "":
		return "name required"
	case r.PricePerHour < 0:
		return "price_per_hour must not be negative"
	case r.NumberOfSpots < 0:
		return "number_of_spots must not be negative"
	}
	return ""
}

type spotView struct {
	ID         uint64 `json:"id"`
	SpotNumber int    `json:"spot_number"`
	Status     string `json:"status"`
}

type adminUserView struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLot creates a lot and seeds its numbered spots.
func (h *AdminHandler) CreateLot(c echo.Context) error {
	var req lotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lot := &model.ParkingLot{
		PrimeLocationName:    req.Name,
		Address:              req.Address,
		PinCode:              req.PinCode,
		PricePerHour:         req.PricePerHour,
		MaximumNumberOfSpots: req.NumberOfSpots,
	}
	if err := h.Parking.CreateLot(ctx, lot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lot failed"})
	}
	summary, err := h.Parking.LotSummary(ctx, lot.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusCreated, summary)
}

// UpdateLot rewrites a lot's attributes and resizes its spot set.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	var req lotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lot := &model.ParkingLot{
		ID:                   id,
		PrimeLocationName:    req.Name,
		Address:              req.Address,
		PinCode:              req.PinCode,
		PricePerHour:         req.PricePerHour,
		MaximumNumberOfSpots: req.NumberOfSpots,
	}
	if err := h.Parking.UpdateLot(ctx, lot); err != nil {
		if errors.Is(err, repository.ErrLotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lot failed"})
	}
	summary, err := h.Parking.LotSummary(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, summary)
}

// DeleteLot removes a lot and its spots. Lots with occupied spots
// cannot be removed.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Parking.DeleteLot(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrLotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		case errors.Is(err, service.ErrOccupiedSpots):
			return c.JSON(http.StatusConflict, echo.Map{"error": "lot has occupied spots"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete lot failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "lot deleted"})
}

// ListSpots returns a lot's spots ordered by spot number.
func (h *AdminHandler) ListSpots(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	spots, err := h.Parking.SpotsForLot(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	views := make([]spotView, 0, len(spots))
	for _, s := range spots {
		views = append(views, spotView{ID: s.ID, SpotNumber: s.SpotNumber, Status: string(s.Status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"spots": views})
}

// ListUsers returns all regular accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Store.Users().ListNonAdmins(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	views := make([]adminUserView, 0, len(users))
	for _, u := range users {
		views = append(views, adminUserView{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": views})
}

// DeleteUser removes a user together with their reservation history.
// Any spot the user currently occupies is freed first so the lot's
// counts stay consistent.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Store.InTx(ctx, func(tx repository.Store) error {
		if active, aerr := tx.Reservations().ActiveByUser(ctx, id); aerr == nil {
			if serr := tx.Spots().UpdateStatus(ctx, active.SpotID, model.StatusAvailable); serr != nil {
				return serr
			}
		} else if !errors.Is(aerr, repository.ErrReservationNotFound) {
			return aerr
		}
		if terr := tx.Tokens().RevokeAllForUser(ctx, id); terr != nil {
			return terr
		}
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// Overview returns the system-wide counters plus the per-lot
// breakdown for the admin dashboard.
func (h *AdminHandler) Overview(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Stats.AdminOverview(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	lots, err := h.Parking.LotSummaries(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"summary": stats,
		"lots":    lots,
	})
}
