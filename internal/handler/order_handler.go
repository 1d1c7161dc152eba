package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type PlaceOrderItemRequest struct {
	ProductID int64        `json:"product_id"`
	Quantity  int64        `json:"quantity"`
	Price     *model.Money `json:"price"`
}

type PlaceOrderRequest struct {
	UserID      int64                   `json:"user_id"`
	TotalAmount *model.Money            `json:"total_amount"`
	Items       []PlaceOrderItemRequest `json:"items"`
}

type PlaceOrderResponse struct {
	OrderID     int64       `json:"order_id"`
	TotalAmount model.Money `json:"total_amount"`
	Message     string      `json:"message"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, mws ...echo.MiddlewareFunc) {
	g := api.Group("", mws...)
	g.POST("/orders", h.placeOrder)
	g.GET("/orders/:id", h.getOrder)
	g.GET("/users/:id/orders", h.listForUser)
}

// Idempotency-Key ヘッダがあれば同じキーの再送は同じ注文を返す
func (h *OrderHandler) placeOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id is required"})
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		return writeError(c, err)
	}

	items := make([]usecase.PlaceOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PlaceOrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), usecase.PlaceOrderInput{
		UserID:         req.UserID,
		TotalAmount:    req.TotalAmount,
		Items:          items,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return writeError(c, err)
	}

	status := http.StatusCreated
	if out.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, PlaceOrderResponse{
		OrderID:     out.OrderID,
		TotalAmount: out.TotalAmount,
		Message:     "Order created",
	})
}

func (h *OrderHandler) getOrder(c echo.Context) error {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	if err := authorizeUser(c, out.UserID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) listForUser(c echo.Context) error {
	userID, err := pathUser(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListOrdersForUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
