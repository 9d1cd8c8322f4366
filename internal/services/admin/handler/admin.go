package handler

import (
	"context"
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

type CreateShopRequest struct {
	ShopName string `json:"shopName"`
	Location string `json:"location"`
}

type CreateProductRequest struct {
	SKU                 string              `json:"sku"`
	ProductName         string              `json:"productName"`
	Category            string              `json:"category"`
	Unit                string              `json:"unit"`
	StockLevel          decimal.Decimal     `json:"stockLevel"`
	StockAlertThreshold decimal.Decimal     `json:"stockAlertThreshold"`
	Prices              []ProductPriceInput `json:"prices"`
}

type ProductPriceInput struct {
	Unit         string          `json:"unit"`
	NetPrice     decimal.Decimal `json:"netPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

type AdminHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logrus.Logger
}

func NewAdminHandler(db *gorm.DB, redisClient *redis.Client) *AdminHandler {
	return &AdminHandler{
		db:    db,
		redis: redisClient,
		log:   config.GetLogger(),
	}
}

// CreateShop registers a shop and allocates its shop code in the same
// transaction, so two shops can never race into the same code.
func (s *AdminHandler) CreateShop(ctx context.Context, req CreateShopRequest) (*models.Shop, error) {
	if req.ShopName == "" {
		return nil, fault.InvalidInput("shopName is required")
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	shopCode, err := seqid.NextShopCode(tx, req.ShopName)
	if err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to allocate shop code", err)
	}

	now := time.Now()
	shop := models.Shop{
		ShopName:  req.ShopName,
		Location:  req.Location,
		ShopCode:  shopCode,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tx.Create(&shop).Error; err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to create shop", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fault.Internal("failed to commit transaction", err)
	}

	return &shop, nil
}

func (s *AdminHandler) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&shops).Error; err != nil {
		return nil, fault.Internal("database error", err)
	}
	return shops, nil
}

// CreateProduct adds a product to the owner's inventory. SKUs are unique
// per owner.
func (s *AdminHandler) CreateProduct(ctx context.Context, owner models.Owner, req CreateProductRequest) (*models.Product, error) {
	if req.SKU == "" {
		return nil, fault.InvalidInput("sku is required")
	}
	if req.ProductName == "" {
		return nil, fault.InvalidInput("productName is required")
	}
	if req.Unit == "" {
		return nil, fault.InvalidInput("unit is required")
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing models.Product
	err := tx.Where("owner_kind = ? AND owner_id = ? AND sku = ?", owner.Kind, owner.ID, req.SKU).
		First(&existing).Error
	if err == nil {
		tx.Rollback()
		return nil, fault.Conflict("product with SKU %s already exists", req.SKU)
	}
	if err != gorm.ErrRecordNotFound {
		tx.Rollback()
		return nil, fault.Internal("database error", err)
	}

	now := time.Now()
	product := models.Product{
		SKU:                 req.SKU,
		ProductName:         req.ProductName,
		Category:            req.Category,
		Unit:                req.Unit,
		StockLevel:          req.StockLevel.String(),
		StockAlertThreshold: req.StockAlertThreshold.String(),
		Owner:               owner,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	for _, p := range req.Prices {
		product.Prices = append(product.Prices, models.ProductPrice{
			Unit:         p.Unit,
			NetPrice:     p.NetPrice.StringFixed(2),
			SellingPrice: p.SellingPrice.StringFixed(2),
		})
	}

	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, fault.Internal("failed to create product", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fault.Internal("failed to commit transaction", err)
	}

	return &product, nil
}

func (s *AdminHandler) ListProducts(ctx context.Context, owner models.Owner) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Prices").
		Where("owner_kind = ? AND owner_id = ?", owner.Kind, owner.ID).
		Order("product_name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fault.Internal("database error", err)
	}
	return products, nil
}

// ListLowStock returns the owner's products at or below their alert
// threshold.
func (s *AdminHandler) ListLowStock(ctx context.Context, owner models.Owner) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", owner.Kind, owner.ID).
		Where("stock_level <= stock_alert_threshold").
		Order("product_name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fault.Internal("database error", err)
	}
	return products, nil
}
