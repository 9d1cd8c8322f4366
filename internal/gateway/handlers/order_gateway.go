package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mercato-system/internal/database/models"
	"mercato-system/internal/gateway/middleware"
	ordersvc "mercato-system/internal/services/order/handler"
)

type OrderService interface {
	CreateOrder(ctx context.Context, shopID int64, req ordersvc.CreateOrderRequest) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, adminID int64, req ordersvc.UpdateOrderStatusRequest) (*models.Order, error)
	ListOrders(ctx context.Context, shopID int64) ([]models.Order, error)
	GetOrder(ctx context.Context, shopID, orderID int64) (*models.Order, error)
}

type OrderHTTPHandler struct {
	orders OrderService
}

func NewOrderHTTPHandler(orders OrderService) *OrderHTTPHandler {
	return &OrderHTTPHandler{orders: orders}
}

type createOrderBody struct {
	ShopID int64 `json:"shopId"`
	ordersvc.CreateOrderRequest
}

// POST /api/admin/orders: admin creates an order on behalf of a shop.
func (h *OrderHTTPHandler) CreateOrderForShop(c *gin.Context) {
	var body createOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}
	if body.ShopID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "shopId is required"})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), body.ShopID, body.CreateOrderRequest)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// POST /api/shop/orders
func (h *OrderHTTPHandler) CreateOrder(c *gin.Context) {
	var req ordersvc.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), middleware.ShopIDFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// GET /api/admin/orders
func (h *OrderHTTPHandler) ListAllOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), 0)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/admin/orders/shop/:shopId
func (h *OrderHTTPHandler) ListOrdersByShop(c *gin.Context) {
	shopID, ok := parseID(c, "shopId")
	if !ok {
		return
	}
	orders, err := h.orders.ListOrders(c.Request.Context(), shopID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/shop/orders
func (h *OrderHTTPHandler) ListShopOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), middleware.ShopIDFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/admin/orders/:id
func (h *OrderHTTPHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), 0, orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GET /api/shop/orders/:id
func (h *OrderHTTPHandler) GetShopOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), middleware.ShopIDFrom(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PUT /api/admin/orders/update-status
func (h *OrderHTTPHandler) UpdateOrderStatus(c *gin.Context) {
	var req ordersvc.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}
	if req.OrderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "orderId is required"})
		return
	}

	claims := middleware.ClaimsFrom(c)
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}
