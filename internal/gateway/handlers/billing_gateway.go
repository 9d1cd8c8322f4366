package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mercato-system/internal/database/models"
	"mercato-system/internal/gateway/middleware"
	billingsvc "mercato-system/internal/services/billing/handler"
)

type BillingService interface {
	CreateBill(ctx context.Context, owner models.Owner, req billingsvc.CreateBillRequest) (*models.Bill, error)
	ListBills(ctx context.Context, owner models.Owner) ([]models.Bill, error)
}

type BillingHTTPHandler struct {
	billing BillingService
}

func NewBillingHTTPHandler(billing BillingService) *BillingHTTPHandler {
	return &BillingHTTPHandler{billing: billing}
}

func (h *BillingHTTPHandler) createBill(c *gin.Context, owner models.Owner) {
	var req billingsvc.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	bill, err := h.billing.CreateBill(c.Request.Context(), owner, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Bill created successfully", "bill": bill})
}

// POST /api/admin/bills
func (h *BillingHTTPHandler) CreateAdminBill(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	h.createBill(c, models.AdminOwner(claims.UserID))
}

// POST /api/shop/bills
func (h *BillingHTTPHandler) CreateShopBill(c *gin.Context) {
	h.createBill(c, models.ShopOwner(middleware.ShopIDFrom(c)))
}

// GET /api/admin/bills
func (h *BillingHTTPHandler) ListAdminBills(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	bills, err := h.billing.ListBills(c.Request.Context(), models.AdminOwner(claims.UserID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

// GET /api/shop/bills
func (h *BillingHTTPHandler) ListShopBills(c *gin.Context) {
	bills, err := h.billing.ListBills(c.Request.Context(), models.ShopOwner(middleware.ShopIDFrom(c)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}
