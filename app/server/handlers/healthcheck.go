package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) HealthCheck(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (a *App) HealthCheckDB(c echo.Context) error {
	rctx := c.Request().Context()

	if err := a.db.WithContext(rctx).Exec("SELECT 1").Error; err != nil {
		a.l.Error("failed to ping database", zap.Error(err))
		return a.erMsg(c, http.StatusInternalServerError, "Database connection failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "Database connection established"})
}
