package handler

import (
	"context"
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

func dec(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

type CreateBillRequest struct {
	CustomerName string          `json:"customerName"`
	Items        []BillItemInput `json:"items"`
	Tax          decimal.Decimal `json:"tax"`
}

type BillItemInput struct {
	ProductID int64           `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type BillingHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logrus.Logger
}

func NewBillingHandler(db *gorm.DB, redisClient *redis.Client) *BillingHandler {
	return &BillingHandler{
		db:    db,
		redis: redisClient,
		log:   config.GetLogger(),
	}
}

// CreateBill records an over-the-counter sale against the owner's own
// inventory. Each line deducts stock under a row lock, prices come from the
// product's selling price for its base unit, and the bill number is
// allocated in the owner's scope, all in one transaction.
func (s *BillingHandler) CreateBill(ctx context.Context, owner models.Owner, req CreateBillRequest) (*models.Bill, error) {
	if len(req.Items) == 0 {
		return nil, fault.InvalidInput("bill must have at least one item")
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

	now := time.Now()
	subtotal := decimal.Zero
	items := make([]models.BillItem, 0, len(req.Items))

	for _, itemReq := range req.Items {
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Prices").
			Where("id = ?", itemReq.ProductID).
			First(&product).Error; err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				return nil, fault.NotFound("product %d not found", itemReq.ProductID)
			}
			return nil, fault.Internal("database error", err)
		}

		if product.Owner != owner {
			tx.Rollback()
			return nil, fault.Forbidden("product %s is not in this inventory", product.SKU)
		}

		sellingPrice, ok := baseSellingPrice(product)
		if !ok {
			tx.Rollback()
			return nil, fault.InvalidInput("product %s has no price for unit %q", product.SKU, product.Unit)
		}

		product.StockLevel = dec(product.StockLevel).Sub(itemReq.Quantity).String()
		product.UpdatedAt = now
		if err := tx.Save(&product).Error; err != nil {
			tx.Rollback()
			return nil, fault.Internal("failed to update stock", err)
		}

		lineTotal := itemReq.Quantity.Mul(sellingPrice)
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.BillItem{
			ProductID:   product.ID,
			Quantity:    itemReq.Quantity.String(),
			UnitPrice:   sellingPrice.StringFixed(2),
			TotalPrice:  lineTotal.StringFixed(2),
			ProductName: product.ProductName,
			ProductSKU:  product.SKU,
			Unit:        product.Unit,
			CreatedAt:   now,
		})
	}

	billNumber, err := s.nextBillNumber(tx, owner)
	if err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to allocate bill number", err)
	}

	taxAmount := subtotal.Mul(req.Tax).Div(decimal.NewFromInt(100))
	grandTotal := subtotal.Add(taxAmount)

	bill := models.Bill{
		BillNumber:   billNumber,
		Owner:        owner,
		Items:        items,
		Subtotal:     subtotal.StringFixed(2),
		TaxPercent:   req.Tax.StringFixed(2),
		TaxAmount:    taxAmount.StringFixed(2),
		GrandTotal:   grandTotal.StringFixed(2),
		CustomerName: req.CustomerName,
		BillDate:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := tx.Create(&bill).Error; err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to create bill", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fault.Internal("failed to commit transaction", err)
	}

	return &bill, nil
}

// ListBills returns the owner's bills, newest first.
func (s *BillingHandler) ListBills(ctx context.Context, owner models.Owner) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("owner_kind = ? AND owner_id = ?", owner.Kind, owner.ID).
		Order("bill_date DESC").
		Find(&bills).Error
	if err != nil {
		return nil, fault.Internal("database error", err)
	}
	return bills, nil
}

// baseSellingPrice picks the selling price entry for the product's own unit.
func baseSellingPrice(product models.Product) (decimal.Decimal, bool) {
	for _, p := range product.Prices {
		if p.Unit == product.Unit {
			return dec(p.SellingPrice), true
		}
	}
	return decimal.Zero, false
}

func (s *BillingHandler) nextBillNumber(tx *gorm.DB, owner models.Owner) (string, error) {
	if owner.Kind == models.OwnerAdmin {
		return seqid.NextAdminBillNumber(tx)
	}

	var shop models.Shop
	if err := tx.Where("id = ?", owner.ID).First(&shop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", fmt.Errorf("shop %d not found", owner.ID)
		}
		return "", err
	}
	return seqid.NextShopBillNumber(tx, shop.ShopCode)
}
