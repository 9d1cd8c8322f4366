package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mercato-system/internal/database/models"
	"mercato-system/internal/gateway/middleware"
	invoicesvc "mercato-system/internal/services/invoice/handler"
)

// InvoiceService is the slice of the invoice lifecycle the HTTP layer needs.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, adminID int64, req invoicesvc.CreateInvoiceRequest) (*models.Invoice, error)
	ListAdminInvoices(ctx context.Context, adminID int64) ([]models.Invoice, error)
	ListShopInvoices(ctx context.Context, shopID int64) ([]models.Invoice, error)
	LatestPendingInvoice(ctx context.Context, shopID int64) (*models.Invoice, error)
	ConfirmInvoice(ctx context.Context, shopID, invoiceID int64, req invoicesvc.ConfirmInvoiceRequest) (*invoicesvc.ConfirmResult, error)
}

type InvoiceHTTPHandler struct {
	invoices InvoiceService
}

func NewInvoiceHTTPHandler(invoices InvoiceService) *InvoiceHTTPHandler {
	return &InvoiceHTTPHandler{invoices: invoices}
}

// POST /api/admin/invoices
func (h *InvoiceHTTPHandler) CreateInvoice(c *gin.Context) {
	var req invoicesvc.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	claims := middleware.ClaimsFrom(c)
	invoice, err := h.invoices.CreateInvoice(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invoice created successfully",
		"invoice": invoice,
	})
}

// GET /api/admin/invoices
func (h *InvoiceHTTPHandler) ListAdminInvoices(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	invoices, err := h.invoices.ListAdminInvoices(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GET /api/shop/invoices/pending
func (h *InvoiceHTTPHandler) LatestPendingInvoice(c *gin.Context) {
	invoice, err := h.invoices.LatestPendingInvoice(c.Request.Context(), middleware.ShopIDFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if invoice == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// GET /api/shop/invoices/all
func (h *InvoiceHTTPHandler) ListShopInvoices(c *gin.Context) {
	invoices, err := h.invoices.ListShopInvoices(c.Request.Context(), middleware.ShopIDFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// POST /api/shop/invoices/:invoiceId/confirm
func (h *InvoiceHTTPHandler) ConfirmInvoice(c *gin.Context) {
	invoiceID, ok := parseID(c, "invoiceId")
	if !ok {
		return
	}

	var req invoicesvc.ConfirmInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.invoices.ConfirmInvoice(c.Request.Context(), middleware.ShopIDFrom(c), invoiceID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Invoice confirmation recorded",
		"status":            result.Status,
		"confirmedProducts": result.ConfirmedProducts,
	})
}
