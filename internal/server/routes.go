package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Orders   *handler.OrderHandler
	Wishlist *handler.WishlistHandler
}

// 全部 /api 以下。JWT_SECRETがあればユーザー系はbearer必須。
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	api := e.Group("/api")

	var userMW []echo.MiddlewareFunc
	if cfg.AuthEnabled() {
		userMW = append(userMW, middleware.AuthJWT(cfg.JWTSecret))
	}

	handler.RegisterHealth(api)
	h.Products.RegisterRoutes(api)
	h.Cart.RegisterRoutes(api, userMW...)
	h.Wishlist.RegisterRoutes(api, userMW...)
	h.Orders.RegisterRoutes(api, userMW...)
}
