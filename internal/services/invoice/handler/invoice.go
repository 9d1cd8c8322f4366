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
	"gorm.io/gorm/clause"

	"mercato-system/config"
	"mercato-system/internal/database/models"
	"mercato-system/internal/fault"
	"mercato-system/internal/seqid"
)

const (
	INVOICE_CACHE_PREFIX       = "invoice:"
	PENDING_INVOICE_CACHE_KEY  = "invoice:pending:"
	EventInvoiceCreated        = "invoice.created"
	EventInvoiceConfirmed      = "invoice.confirmed"
	EventInvoicePartialConfirm = "invoice.partially_confirmed"
	CACHE_TTL_SHORT            = 5 * time.Minute
	DefaultStockAlertThreshold = "5"
)

// dec parses a stored decimal column, treating malformed values as zero.
func dec(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

type CreateInvoiceRequest struct {
	ShopID int64              `json:"shopId"`
	Items  []InvoiceItemInput `json:"items"`
	Tax    decimal.Decimal    `json:"tax"`
}

type InvoiceItemInput struct {
	ProductID int64           `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Unit      string          `json:"unit"`
}

type ConfirmInvoiceRequest struct {
	ConfirmedItems     []int64                    `json:"confirmedItems"`
	ReceivedQuantities map[string]decimal.Decimal `json:"receivedQuantities"`
}

type ConfirmResult struct {
	Status            string `json:"status"`
	ConfirmedProducts int    `json:"confirmedProducts"`
}

type InvoiceHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logrus.Logger
}

func NewInvoiceHandler(db *gorm.DB, redisClient *redis.Client) *InvoiceHandler {
	return &InvoiceHandler{
		db:    db,
		redis: redisClient,
		log:   config.GetLogger(),
	}
}

// CreateInvoice commits a goods transfer from the admin inventory to a shop.
// Source stock is deducted per item inside the same transaction that
// persists the invoice; any failure rolls the whole batch back.
func (s *InvoiceHandler) CreateInvoice(ctx context.Context, adminID int64, req CreateInvoiceRequest) (*models.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, fault.InvalidInput("invoice must have at least one item")
	}
	if req.Tax.IsNegative() {
		return nil, fault.InvalidInput("tax percent cannot be negative")
	}
	for _, item := range req.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fault.InvalidInput("quantity must be greater than 0 for product %d", item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fault.InvalidInput("unit price cannot be negative for product %d", item.ProductID)
		}
		if item.Unit == "" {
			return nil, fault.InvalidInput("unit is required for product %d", item.ProductID)
		}
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var shop models.Shop
	if err := tx.Where("id = ?", req.ShopID).First(&shop).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, fault.NotFound("shop %d not found", req.ShopID)
		}
		return nil, fault.Internal("database error", err)
	}

	now := time.Now()
	subtotal := decimal.Zero
	items := make([]models.InvoiceItem, 0, len(req.Items))

	for _, itemReq := range req.Items {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", itemReq.ProductID).
			First(&product).Error; err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				return nil, fault.NotFound("product %d not found", itemReq.ProductID)
			}
			return nil, fault.Internal("database error", err)
		}

		if product.Owner.Kind != models.OwnerAdmin || product.Owner.ID != adminID {
			tx.Rollback()
			return nil, fault.Forbidden("product %s is not owned by the requesting admin", product.SKU)
		}

		// Negative stock is allowed: the transfer is committed even when
		// the source count is off.
		product.StockLevel = dec(product.StockLevel).Sub(itemReq.Quantity).String()
		product.UpdatedAt = now
		if err := tx.Save(&product).Error; err != nil {
			tx.Rollback()
			return nil, fault.Internal("failed to update source stock", err)
		}

		lineTotal := itemReq.Quantity.Mul(itemReq.UnitPrice)
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.InvoiceItem{
			ProductID:   product.ID,
			Quantity:    itemReq.Quantity.String(),
			UnitPrice:   itemReq.UnitPrice.StringFixed(2),
			TotalPrice:  lineTotal.StringFixed(2),
			ProductName: product.ProductName,
			ProductSKU:  product.SKU,
			Unit:        itemReq.Unit,
			CreatedAt:   now,
		})
	}

	taxAmount := subtotal.Mul(req.Tax).Div(decimal.NewFromInt(100))
	grandTotal := subtotal.Add(taxAmount)

	invoiceNumber, err := seqid.NextInvoiceNumber(tx)
	if err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to allocate invoice number", err)
	}

	invoice := models.Invoice{
		InvoiceNumber: invoiceNumber,
		AdminID:       adminID,
		ShopID:        shop.ID,
		Items:         items,
		Subtotal:      subtotal.StringFixed(2),
		TaxPercent:    req.Tax.StringFixed(2),
		TaxAmount:     taxAmount.StringFixed(2),
		GrandTotal:    grandTotal.StringFixed(2),
		Status:        models.InvoiceStatusPending,
		IssueDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to create invoice", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fault.Internal("failed to commit transaction", err)
	}

	s.invalidateInvoiceCaches(ctx, shop.ID)
	s.publishInvoiceEvent(ctx, InvoiceEvent{
		EventType:     EventInvoiceCreated,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		ShopID:        invoice.ShopID,
		Status:        invoice.Status,
		GrandTotal:    invoice.GrandTotal,
		Timestamp:     time.Now(),
	})

	return &invoice, nil
}

// ListAdminInvoices returns the admin's invoices, newest first.
func (s *InvoiceHandler) ListAdminInvoices(ctx context.Context, adminID int64) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("admin_id = ?", adminID).
		Order("issue_date DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fault.Internal("database error", err)
	}
	return invoices, nil
}

// ListShopInvoices returns every invoice addressed to the shop, newest first.
func (s *InvoiceHandler) ListShopInvoices(ctx context.Context, shopID int64) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("shop_id = ?", shopID).
		Order("issue_date DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fault.Internal("database error", err)
	}
	return invoices, nil
}

// LatestPendingInvoice returns the most recent Pending invoice for the shop,
// or nil when there is none. Cache-aside with a short TTL.
func (s *InvoiceHandler) LatestPendingInvoice(ctx context.Context, shopID int64) (*models.Invoice, error) {
	cacheKey := fmt.Sprintf("%s%d", PENDING_INVOICE_CACHE_KEY, shopID)

	val, err := s.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var cached models.Invoice
		if jerr := json.Unmarshal([]byte(val), &cached); jerr == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		s.log.WithField("key", cacheKey).Warnf("redis error on GET, falling back to DB: %v", err)
	}

	var invoice models.Invoice
	err = s.db.WithContext(ctx).
		Preload("Items").
		Where("shop_id = ? AND status = ?", shopID, models.InvoiceStatusPending).
		Order("issue_date DESC").
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fault.Internal("database error", err)
	}

	if jsonData, jerr := json.Marshal(&invoice); jerr == nil {
		_ = s.redis.Set(ctx, cacheKey, jsonData, CACHE_TTL_SHORT).Err()
	}

	return &invoice, nil
}

func (s *InvoiceHandler) invalidateInvoiceCaches(ctx context.Context, shopIDs ...int64) {
	for _, id := range shopIDs {
		cacheKey := fmt.Sprintf("%s%d", PENDING_INVOICE_CACHE_KEY, id)
		_ = s.redis.Del(ctx, cacheKey)
	}
}

type InvoiceEvent struct {
	EventType     string    `json:"event_type"`
	InvoiceID     int64     `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ShopID        int64     `json:"shop_id"`
	Status        string    `json:"status"`
	GrandTotal    string    `json:"grand_total"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *InvoiceHandler) publishInvoiceEvent(ctx context.Context, event InvoiceEvent) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		s.log.Warnf("failed to marshal invoice event: %v", err)
		return
	}

	channel := fmt.Sprintf("backoffice:events:%s", event.EventType)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		s.log.Warnf("failed to publish invoice event: %v", err)
	}
	if err := s.redis.Publish(ctx, "backoffice:events:all", eventJSON).Err(); err != nil {
		s.log.Warnf("failed to publish to all channel: %v", err)
	}
}
