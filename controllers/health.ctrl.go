package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nostrchest/chest.go/lib/service"
)

// HealthController : engine status for operators and probes.
type HealthController struct {
	svc *service.ChestService
}

func NewHealthController(svc *service.ChestService) *HealthController {
	return &HealthController{svc: svc}
}

// Check reports per-relay connection state and ingestion counters.
// Degraded (store unavailable) answers 503 so probes catch it.
func (controller *HealthController) Check(c echo.Context) error {
	status := controller.svc.Health()
	code := http.StatusOK
	if status.Degraded {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
