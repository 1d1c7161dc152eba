package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

// DI
func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

type AddWishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *WishlistHandler) RegisterRoutes(api *echo.Group, mws ...echo.MiddlewareFunc) {
	g := api.Group("/users/:id/wishlist", mws...)

	g.GET("", h.list)
	g.POST("", h.add)
	g.DELETE("/clear", h.clear)
	g.DELETE("/:product_id", h.remove)
}

func (h *WishlistHandler) list(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	items, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (h *WishlistHandler) add(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	var req AddWishlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "product_id is required"})
	}

	it, err := h.uc.Add(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":       "Added to wishlist",
		"wishlist_item": it,
	})
}

func (h *WishlistHandler) remove(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.Remove(c.Request().Context(), userID, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Removed from wishlist"})
}

func (h *WishlistHandler) clear(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	n, err := h.uc.Clear(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":       "Wishlist cleared",
		"items_removed": n,
	})
}
