// Package handler contains the HTTP handlers. Handlers parse and
// validate requests, call the services, and map service errors to
// status codes; no business rules live here.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers and
// monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
