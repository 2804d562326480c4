package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pingup-api",
	})
}

// Banner answers the root path
func Banner(c echo.Context) error {
	return c.String(http.StatusOK, "PingUp server is running")
}
