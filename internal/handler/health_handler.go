package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func RegisterHealth(api *echo.Group) {
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
}
