package handler

import (
	"net/http"

	"foodbridge/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck handles GET /health.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, &HealthResponse{Status: "ok"})
}
