package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mercato-system/internal/database/models"
	"mercato-system/internal/fault"
)

// ConfirmInvoice is the shop-side receipt reconciliation. Each item named in
// the request is marked confirmed with the quantity actually received, the
// shop's own inventory is credited by that quantity (creating the shop's
// product from the admin's if it does not exist yet), and the invoice's
// aggregate status is recomputed. The whole pass is one transaction.
func (s *InvoiceHandler) ConfirmInvoice(ctx context.Context, shopID, invoiceID int64, req ConfirmInvoiceRequest) (*ConfirmResult, error) {
	received, err := parseReceivedQuantities(req.ReceivedQuantities)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoice models.Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("id = ?", invoiceID).
		First(&invoice).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, fault.NotFound("invoice %d not found", invoiceID)
		}
		return nil, fault.Internal("database error", err)
	}

	if invoice.ShopID != shopID {
		tx.Rollback()
		return nil, fault.Forbidden("invoice %s does not belong to this shop", invoice.InvoiceNumber)
	}
	if invoice.Status == models.InvoiceStatusConfirmed {
		tx.Rollback()
		return nil, fault.InvalidState("invoice %s is already confirmed", invoice.InvoiceNumber)
	}

	touched := applyItemConfirmations(invoice.Items, req.ConfirmedItems, received)

	for _, i := range touched {
		item := &invoice.Items[i]
		if err := tx.Save(item).Error; err != nil {
			tx.Rollback()
			return nil, fault.Internal("failed to update invoice item", err)
		}

		recv := decimal.Zero
		if item.ReceivedQuantity != nil {
			recv = dec(*item.ReceivedQuantity)
		}
		if err := s.creditShopStock(tx, shopID, item, recv); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	newStatus := resolveInvoiceStatus(invoice.Items)
	now := time.Now()
	if newStatus == models.InvoiceStatusConfirmed {
		// Refreshed on every pass that lands on Confirmed, not set-once.
		invoice.ConfirmedDate = &now
	}
	invoice.Status = newStatus
	invoice.UpdatedAt = now

	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to update invoice", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fault.Internal("failed to commit transaction", err)
	}

	s.invalidateInvoiceCaches(ctx, shopID)
	eventType := EventInvoicePartialConfirm
	if newStatus == models.InvoiceStatusConfirmed {
		eventType = EventInvoiceConfirmed
	}
	s.publishInvoiceEvent(ctx, InvoiceEvent{
		EventType:     eventType,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		ShopID:        invoice.ShopID,
		Status:        newStatus,
		GrandTotal:    invoice.GrandTotal,
		Timestamp:     time.Now(),
	})

	return &ConfirmResult{Status: newStatus, ConfirmedProducts: len(touched)}, nil
}

// creditShopStock increments the shop-owned product matching the item's SKU,
// creating it as a clone of the admin product when the shop has never
// stocked it before.
func (s *InvoiceHandler) creditShopStock(tx *gorm.DB, shopID int64, item *models.InvoiceItem, received decimal.Decimal) error {
	var shopProduct models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_kind = ? AND owner_id = ? AND sku = ?", models.OwnerShop, shopID, item.ProductSKU).
		First(&shopProduct).Error

	if err == nil {
		shopProduct.StockLevel = dec(shopProduct.StockLevel).Add(received).String()
		shopProduct.UpdatedAt = time.Now()
		if err := tx.Save(&shopProduct).Error; err != nil {
			return fault.Internal("failed to update shop stock", err)
		}
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fault.Internal("database error", err)
	}

	shopProduct = models.Product{
		SKU:                 item.ProductSKU,
		ProductName:         item.ProductName,
		Unit:                item.Unit,
		StockLevel:          received.String(),
		StockAlertThreshold: DefaultStockAlertThreshold,
		Owner:               models.ShopOwner(shopID),
	}

	// Clone category and price list from the source admin product when it
	// still exists; the snapshots on the item cover the rest.
	var source models.Product
	if serr := tx.Preload("Prices").Where("id = ?", item.ProductID).First(&source).Error; serr == nil {
		shopProduct.ProductName = source.ProductName
		shopProduct.Category = source.Category
		for _, p := range source.Prices {
			shopProduct.Prices = append(shopProduct.Prices, models.ProductPrice{
				Unit:         p.Unit,
				NetPrice:     p.NetPrice,
				SellingPrice: p.SellingPrice,
			})
		}
	} else if serr != gorm.ErrRecordNotFound {
		return fault.Internal("database error", serr)
	}

	if err := tx.Create(&shopProduct).Error; err != nil {
		return fault.Internal("failed to create shop product", err)
	}
	return nil
}

// applyItemConfirmations marks every invoice item named in confirmedIDs as
// shop-confirmed with its received quantity (0 when the caller sent none)
// and returns the indexes touched in this pass. Items outside confirmedIDs
// are left as they are, including confirmations from earlier passes.
func applyItemConfirmations(items []models.InvoiceItem, confirmedIDs []int64, received map[int64]decimal.Decimal) []int {
	confirmed := make(map[int64]bool, len(confirmedIDs))
	for _, id := range confirmedIDs {
		confirmed[id] = true
	}

	var touched []int
	for i := range items {
		if !confirmed[items[i].ProductID] {
			continue
		}
		qty := received[items[i].ProductID].String()
		items[i].ReceivedQuantity = &qty
		items[i].ShopConfirmed = true
		touched = append(touched, i)
	}
	return touched
}

// resolveInvoiceStatus recomputes the aggregate invoice status:
// Confirmed when every item is confirmed with its exact requested quantity,
// Partial when anything has actually been received, Pending otherwise.
// A confirmed item with zero received quantity never counts as received.
func resolveInvoiceStatus(items []models.InvoiceItem) string {
	allConfirmedExact := true
	anyReceived := false

	for _, item := range items {
		if !item.ShopConfirmed {
			allConfirmedExact = false
			continue
		}
		recv := decimal.Zero
		if item.ReceivedQuantity != nil {
			recv = dec(*item.ReceivedQuantity)
		}
		if recv.GreaterThan(decimal.Zero) {
			anyReceived = true
		}
		if !recv.Equal(dec(item.Quantity)) {
			allConfirmedExact = false
		}
	}

	switch {
	case allConfirmedExact:
		return models.InvoiceStatusConfirmed
	case anyReceived:
		return models.InvoiceStatusPartial
	default:
		return models.InvoiceStatusPending
	}
}

func parseReceivedQuantities(raw map[string]decimal.Decimal) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(raw))
	for key, qty := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fault.InvalidInput("invalid product id %q in receivedQuantities", key)
		}
		if qty.IsNegative() {
			return nil, fault.InvalidInput("received quantity cannot be negative for product %s", key)
		}
		out[id] = qty
	}
	return out, nil
}
