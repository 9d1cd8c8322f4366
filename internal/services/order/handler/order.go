package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mercato-system/config"
	"mercato-system/internal/database/models"
	"mercato-system/internal/fault"
	"mercato-system/internal/seqid"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

func dec(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

type CreateOrderRequest struct {
	Items []OrderItemInput `json:"items"`
	Tax   decimal.Decimal  `json:"tax"`
}

type OrderItemInput struct {
	ProductID int64           `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

type UpdateOrderStatusRequest struct {
	OrderID   int64  `json:"orderId"`
	Status    string `json:"status"`
	InvoiceID *int64 `json:"invoiceId"`
}

type OrderHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logrus.Logger
}

func NewOrderHandler(db *gorm.DB, redisClient *redis.Client) *OrderHandler {
	return &OrderHandler{
		db:    db,
		redis: redisClient,
		log:   config.GetLogger(),
	}
}

// CreateOrder records a shop's request for goods from the admin. Pricing
// reads the selling price for the requested unit from the admin product's
// price list; no stock is moved, an order is a request, not a transfer.
func (s *OrderHandler) CreateOrder(ctx context.Context, shopID int64, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fault.InvalidInput("order must have at least one item")
	}
	if req.Tax.IsNegative() {
		return nil, fault.InvalidInput("tax percent cannot be negative")
	}
	for _, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fault.InvalidInput("quantity must be greater than 0 for product %d", item.ProductID)
		}
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var shop models.Shop
	if err := tx.Where("id = ?", shopID).First(&shop).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, fault.NotFound("shop %d not found", shopID)
		}
		return nil, fault.Internal("database error", err)
	}

	now := time.Now()
	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, itemReq := range req.Items {
		var product models.Product
		if err := tx.Preload("Prices").
			Where("id = ? AND owner_kind = ?", itemReq.ProductID, models.OwnerAdmin).
			First(&product).Error; err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				return nil, fault.NotFound("product %d not found", itemReq.ProductID)
			}
			return nil, fault.Internal("database error", err)
		}

		unit := itemReq.Unit
		if unit == "" {
			unit = product.Unit
		}
		sellingPrice, ok := sellingPriceForUnit(product, unit)
		if !ok {
			tx.Rollback()
			return nil, fault.InvalidInput("product %s has no price for unit %q", product.SKU, unit)
		}

		lineTotal := itemReq.Quantity.Mul(sellingPrice)
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			Quantity:    itemReq.Quantity.String(),
			UnitPrice:   sellingPrice.StringFixed(2),
			TotalPrice:  lineTotal.StringFixed(2),
			ProductName: product.ProductName,
			ProductSKU:  product.SKU,
			Unit:        unit,
			CreatedAt:   now,
		})
	}

	taxAmount := subtotal.Mul(req.Tax).Div(decimal.NewFromInt(100))
	grandTotal := subtotal.Add(taxAmount)

	orderNumber, err := seqid.NextOrderNumber(tx)
	if err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to allocate order number", err)
	}

	order := models.Order{
		OrderNumber: orderNumber,
		ShopID:      shop.ID,
		Items:       items,
		Subtotal:    subtotal.StringFixed(2),
		TaxPercent:  req.Tax.StringFixed(2),
		TaxAmount:   taxAmount.StringFixed(2),
		GrandTotal:  grandTotal.StringFixed(2),
		Status:      models.OrderStatusPending,
		OrderDate:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to create order", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fault.Internal("failed to commit transaction", err)
	}

	s.publishOrderEvent(ctx, OrderEvent{
		EventType:   EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ShopID:      order.ShopID,
		Status:      order.Status,
		GrandTotal:  order.GrandTotal,
		Timestamp:   time.Now(),
	})

	return &order, nil
}

// UpdateOrderStatus advances an order along Pending -> Processed -> Invoiced.
// Backward transitions are rejected. Moving to Invoiced records the acting
// admin and, when given, the invoice raised from the order.
func (s *OrderHandler) UpdateOrderStatus(ctx context.Context, adminID int64, req UpdateOrderStatusRequest) (*models.Order, error) {
	rank, ok := orderStatusRank(req.Status)
	if !ok {
		return nil, fault.InvalidInput("unknown order status %q", req.Status)
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var order models.Order
	if err := tx.Preload("Items").Where("id = ?", req.OrderID).First(&order).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, fault.NotFound("order %d not found", req.OrderID)
		}
		return nil, fault.Internal("database error", err)
	}

	currentRank, _ := orderStatusRank(order.Status)
	if rank < currentRank {
		tx.Rollback()
		return nil, fault.InvalidState("cannot move order %s from %s back to %s",
			order.OrderNumber, order.Status, req.Status)
	}

	order.Status = req.Status
	order.AdminID = &adminID
	if req.Status == models.OrderStatusInvoiced && req.InvoiceID != nil {
		order.InvoiceID = req.InvoiceID
	}
	order.UpdatedAt = time.Now()

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to update order", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fault.Internal("failed to commit transaction", err)
	}

	s.publishOrderEvent(ctx, OrderEvent{
		EventType:   EventOrderStatusChanged,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ShopID:      order.ShopID,
		Status:      order.Status,
		GrandTotal:  order.GrandTotal,
		Timestamp:   time.Now(),
	})

	return &order, nil
}

// ListOrders returns all orders, newest first. shopID filters to one shop
// when non-zero.
func (s *OrderHandler) ListOrders(ctx context.Context, shopID int64) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items").Order("order_date DESC")
	if shopID != 0 {
		query = query.Where("shop_id = ?", shopID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fault.Internal("database error", err)
	}
	return orders, nil
}

// GetOrder loads one order. When shopID is non-zero the order must belong
// to that shop.
func (s *OrderHandler) GetOrder(ctx context.Context, shopID, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fault.NotFound("order %d not found", orderID)
		}
		return nil, fault.Internal("database error", err)
	}
	if shopID != 0 && order.ShopID != shopID {
		return nil, fault.Forbidden("order %s does not belong to this shop", order.OrderNumber)
	}
	return &order, nil
}

// sellingPriceForUnit picks the selling price entry matching the unit.
func sellingPriceForUnit(product models.Product, unit string) (decimal.Decimal, bool) {
	for _, p := range product.Prices {
		if p.Unit == unit {
			return dec(p.SellingPrice), true
		}
	}
	return decimal.Zero, false
}

func orderStatusRank(status string) (int, bool) {
	switch status {
	case models.OrderStatusPending:
		return 0, true
	case models.OrderStatusProcessed:
		return 1, true
	case models.OrderStatusInvoiced:
		return 2, true
	default:
		return 0, false
	}
}

type OrderEvent struct {
	EventType   string    `json:"event_type"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	ShopID      int64     `json:"shop_id"`
	Status      string    `json:"status"`
	GrandTotal  string    `json:"grand_total"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *OrderHandler) publishOrderEvent(ctx context.Context, event OrderEvent) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		s.log.Warnf("failed to marshal order event: %v", err)
		return
	}

	channel := fmt.Sprintf("backoffice:events:%s", event.EventType)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		s.log.Warnf("failed to publish order event: %v", err)
	}
	if err := s.redis.Publish(ctx, "backoffice:events:all", eventJSON).Err(); err != nil {
		s.log.Warnf("failed to publish to all channel: %v", err)
	}
}
