package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mercato-system/internal/database/models"
	"mercato-system/internal/gateway/middleware"
	adminsvc "mercato-system/internal/services/admin/handler"
)

type AdminService interface {
	CreateShop(ctx context.Context, req adminsvc.CreateShopRequest) (*models.Shop, error)
	ListShops(ctx context.Context) ([]models.Shop, error)
	CreateProduct(ctx context.Context, owner models.Owner, req adminsvc.CreateProductRequest) (*models.Product, error)
	ListProducts(ctx context.Context, owner models.Owner) ([]models.Product, error)
	ListLowStock(ctx context.Context, owner models.Owner) ([]models.Product, error)
}

type AdminHTTPHandler struct {
	admin AdminService
}

func NewAdminHTTPHandler(admin AdminService) *AdminHTTPHandler {
	return &AdminHTTPHandler{admin: admin}
}

// POST /api/admin/shops
func (h *AdminHTTPHandler) CreateShop(c *gin.Context) {
	var req adminsvc.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	shop, err := h.admin.CreateShop(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Shop created successfully", "shop": shop})
}

// GET /api/admin/shops
func (h *AdminHTTPHandler) ListShops(c *gin.Context) {
	shops, err := h.admin.ListShops(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

// POST /api/admin/products
func (h *AdminHTTPHandler) CreateProduct(c *gin.Context) {
	var req adminsvc.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	claims := middleware.ClaimsFrom(c)
	product, err := h.admin.CreateProduct(c.Request.Context(), models.AdminOwner(claims.UserID), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

// GET /api/admin/products
func (h *AdminHTTPHandler) ListAdminProducts(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	products, err := h.admin.ListProducts(c.Request.Context(), models.AdminOwner(claims.UserID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/admin/products/low-stock
func (h *AdminHTTPHandler) ListLowStock(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	products, err := h.admin.ListLowStock(c.Request.Context(), models.AdminOwner(claims.UserID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/shop/products
func (h *AdminHTTPHandler) ListShopProducts(c *gin.Context) {
	products, err := h.admin.ListProducts(c.Request.Context(), models.ShopOwner(middleware.ShopIDFrom(c)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}
