package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/obs"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			obs.Logger.Error("request failed",
				"request_id", obs.RequestID(c.Request().Context()),
				"path", c.Path(),
				"err", err,
			)
			resp := ErrorResponse{Error: he.Message}
			if he.Cause != nil {
				resp.Details = he.Cause.Error()
			}
			return c.JSON(he.Status, resp)
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	obs.Logger.Error("request failed", "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Details: err.Error()})
}

// AuthJWTが入れたuser_id（認証なしのときはfalse）
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// 認証ありなら本人以外は403
func authorizeUser(c echo.Context, userID int64) error {
	authID, ok := getUserIDFromContext(c)
	if !ok {
		return nil
	}
	if authID != userID {
		return usecase.Forbidden()
	}
	return nil
}

// /users/:id の id を読んで本人確認まで
func pathUser(c echo.Context) (int64, error) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return 0, err
	}
	if err := authorizeUser(c, userID); err != nil {
		return 0, err
	}
	return userID, nil
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.Validation("invalid %s", name)
	}
	return id, nil
}
