// Package router maps URL paths to handlers and attaches the
// authentication middleware per route group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-reservation/internal/handler"
	"github.com/iliyamo/parking-lot-reservation/internal/middleware"
	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated lot browse endpoints.
// Guests can see lots and their availability before creating an
// account.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler) {
	e.GET("/v1/lots", b.ListLots)
	e.GET("/v1/lots/:id", b.GetLot)
}

// RegisterAuth registers the token endpoints under /v1/auth plus the
// authenticated /v1/me profile route.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, so it needs no JWT.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.GET("/me", a.Me)
}

// RegisterReservations registers the booking endpoints. Booking and
// releasing require authentication; ownership checks happen in the
// handlers since admins may release any reservation.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))

	auth.POST("/reservations", r.Book)
	auth.POST("/reservations/:id/release", r.Release)
	auth.GET("/my-reservations", r.MyReservations)
	auth.GET("/me/stats", r.MyStats)
}

// RegisterAdmin registers the lot, user and statistics management
// endpoints. Everything here requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.POST("/lots", a.CreateLot)
	admin.PUT("/lots/:id", a.UpdateLot)
	admin.DELETE("/lots/:id", a.DeleteLot)
	admin.GET("/lots/:id/spots", a.ListSpots)

	admin.GET("/users", a.ListUsers)
	admin.DELETE("/users/:id", a.DeleteUser)

	admin.GET("/stats", a.Overview)
}
