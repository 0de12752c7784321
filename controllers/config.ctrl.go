package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nostrchest/chest.go/lib/service"
)

// ConfigController : static echo of the loaded settings. Secrets carry
// `json:"-"` on the Config struct and never leave the process.
type ConfigController struct {
	svc *service.ChestService
}

func NewConfigController(svc *service.ChestService) *ConfigController {
	return &ConfigController{svc: svc}
}

func (controller *ConfigController) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, controller.svc.Config)
}
