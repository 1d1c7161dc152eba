package handler

import (
	"fmt"
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /users/:id/cart のHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int64 `json:"quantity"`
}

type CartItemsRequest struct {
	Items []AddCartRequest `json:"items"`
}

type CartItemResponse struct {
	Message  string                 `json:"message"`
	CartItem usecase.CartItemOutput `json:"cart_item"`
}

type BatchAddResponse struct {
	Message     string                 `json:"message"`
	AddedCount  int                    `json:"added_count"`
	FailedCount int                    `json:"failed_count"`
	Errors      []string               `json:"errors"`
	Failed      []usecase.BatchFailure `json:"failed"`
}

// /users/:id/cart 以下を登録（/clear などは /:item_id より先）
func (h *CartHandler) RegisterRoutes(api *echo.Group, mws ...echo.MiddlewareFunc) {
	g := api.Group("/users/:id/cart", mws...)

	g.GET("", h.getCart)
	g.POST("", h.addItem)
	g.DELETE("/clear", h.clear)
	g.POST("/sync", h.sync)
	g.POST("/validate", h.validate)
	g.POST("/batch", h.batchAdd)
	g.GET("/stats", h.stats)
	g.PUT("/:item_id", h.updateItem)
	g.DELETE("/:item_id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ProductID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "product_id is required"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, toAddCartInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, CartItemResponse{Message: "Item added to cart", CartItem: out})
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}
	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity is required"})
	}

	out, removed, err := h.uc.SetQuantity(c.Request().Context(), userID, itemID, *req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	if removed {
		return c.JSON(http.StatusOK, map[string]string{"message": "Item removed from cart"})
	}
	return c.JSON(http.StatusOK, CartItemResponse{Message: "Cart item updated", CartItem: out})
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}
	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.RemoveItem(c.Request().Context(), userID, itemID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	n, err := h.uc.Clear(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":       "Cart cleared",
		"items_removed": n,
	})
}

func (h *CartHandler) sync(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	var req CartItemsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.SyncItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		in := usecase.SyncItemInput{ProductID: it.ProductID}
		if it.Quantity != nil {
			in.Quantity = *it.Quantity
		}
		items = append(items, in)
	}

	n, err := h.uc.Sync(c.Request().Context(), userID, items)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Cart synced successfully",
		"items_synced": n,
	})
}

func (h *CartHandler) validate(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Validate(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) batchAdd(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	var req CartItemsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.AddCartInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, toAddCartInput(it))
	}

	out, err := h.uc.BatchAdd(c.Request().Context(), userID, items)
	if err != nil {
		return writeError(c, err)
	}

	errs := make([]string, 0, len(out.Failed))
	for _, f := range out.Failed {
		errs = append(errs, f.Reason)
	}
	return c.JSON(http.StatusOK, BatchAddResponse{
		Message:     fmt.Sprintf("Added %d items to cart", len(out.Succeeded)),
		AddedCount:  len(out.Succeeded),
		FailedCount: len(out.Failed),
		Errors:      errs,
		Failed:      out.Failed,
	})
}

func (h *CartHandler) stats(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Stats(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// quantity省略時は1
func toAddCartInput(req AddCartRequest) usecase.AddCartInput {
	in := usecase.AddCartInput{ProductID: req.ProductID, Quantity: 1}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	return in
}
