package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato-system/internal/database/models"
	"mercato-system/internal/fault"
	"mercato-system/internal/gateway/middleware"
	invoicesvc "mercato-system/internal/services/invoice/handler"
	"mercato-system/internal/utils"
)

type stubInvoiceService struct {
	createFn  func(ctx context.Context, adminID int64, req invoicesvc.CreateInvoiceRequest) (*models.Invoice, error)
	pendingFn func(ctx context.Context, shopID int64) (*models.Invoice, error)
	confirmFn func(ctx context.Context, shopID, invoiceID int64, req invoicesvc.ConfirmInvoiceRequest) (*invoicesvc.ConfirmResult, error)
}

func (s *stubInvoiceService) CreateInvoice(ctx context.Context, adminID int64, req invoicesvc.CreateInvoiceRequest) (*models.Invoice, error) {
	return s.createFn(ctx, adminID, req)
}

func (s *stubInvoiceService) ListAdminInvoices(ctx context.Context, adminID int64) ([]models.Invoice, error) {
	return nil, nil
}

func (s *stubInvoiceService) ListShopInvoices(ctx context.Context, shopID int64) ([]models.Invoice, error) {
	return nil, nil
}

func (s *stubInvoiceService) LatestPendingInvoice(ctx context.Context, shopID int64) (*models.Invoice, error) {
	return s.pendingFn(ctx, shopID)
}

func (s *stubInvoiceService) ConfirmInvoice(ctx context.Context, shopID, invoiceID int64, req invoicesvc.ConfirmInvoiceRequest) (*invoicesvc.ConfirmResult, error) {
	return s.confirmFn(ctx, shopID, invoiceID, req)
}

func invoiceTestRouter(svc InvoiceService, claims *utils.Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, claims)
		c.Next()
	})

	h := NewInvoiceHTTPHandler(svc)
	r.POST("/api/admin/invoices", h.CreateInvoice)
	r.GET("/api/shop/invoices/pending", h.LatestPendingInvoice)
	r.POST("/api/shop/invoices/:invoiceId/confirm", h.ConfirmInvoice)
	return r
}

func TestCreateInvoiceReturns201(t *testing.T) {
	svc := &stubInvoiceService{
		createFn: func(ctx context.Context, adminID int64, req invoicesvc.CreateInvoiceRequest) (*models.Invoice, error) {
			assert.Equal(t, int64(9), adminID)
			assert.Equal(t, int64(3), req.ShopID)
			return &models.Invoice{
				InvoiceNumber: "INV-2025-001",
				ShopID:        req.ShopID,
				Status:        models.InvoiceStatusPending,
				GrandTotal:    "157.50",
			}, nil
		},
	}
	r := invoiceTestRouter(svc, &utils.Claims{UserID: 9, Role: middleware.RoleAdmin})

	body := `{"shopId":3,"items":[{"productId":1,"quantity":10,"unitPrice":10,"unit":"pcs"}],"tax":5}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/invoices", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message string         `json:"message"`
		Invoice models.Invoice `json:"invoice"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INV-2025-001", resp.Invoice.InvoiceNumber)
	assert.Equal(t, models.InvoiceStatusPending, resp.Invoice.Status)
}

func TestCreateInvoiceMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", fault.InvalidInput("invoice must have at least one item"), http.StatusBadRequest},
		{"shop not found", fault.NotFound("shop 3 not found"), http.StatusNotFound},
		{"foreign product", fault.Forbidden("product X is not owned by the requesting admin"), http.StatusForbidden},
		{"internal", fault.Internal("database error", assert.AnError), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubInvoiceService{
				createFn: func(ctx context.Context, adminID int64, req invoicesvc.CreateInvoiceRequest) (*models.Invoice, error) {
					return nil, tt.err
				},
			}
			r := invoiceTestRouter(svc, &utils.Claims{UserID: 9, Role: middleware.RoleAdmin})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/invoices", bytes.NewBufferString(`{"shopId":3}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLatestPendingInvoiceReturnsNullWhenNone(t *testing.T) {
	svc := &stubInvoiceService{
		pendingFn: func(ctx context.Context, shopID int64) (*models.Invoice, error) {
			assert.Equal(t, int64(4), shopID)
			return nil, nil
		},
	}
	r := invoiceTestRouter(svc, &utils.Claims{UserID: 2, Role: middleware.RoleShop, ShopID: 4})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/shop/invoices/pending", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestConfirmInvoiceResponseShape(t *testing.T) {
	svc := &stubInvoiceService{
		confirmFn: func(ctx context.Context, shopID, invoiceID int64, req invoicesvc.ConfirmInvoiceRequest) (*invoicesvc.ConfirmResult, error) {
			assert.Equal(t, int64(4), shopID)
			assert.Equal(t, int64(17), invoiceID)
			assert.Equal(t, []int64{1, 2}, req.ConfirmedItems)
			return &invoicesvc.ConfirmResult{Status: models.InvoiceStatusPartial, ConfirmedProducts: 2}, nil
		},
	}
	r := invoiceTestRouter(svc, &utils.Claims{UserID: 2, Role: middleware.RoleShop, ShopID: 4})

	body := `{"confirmedItems":[1,2],"receivedQuantities":{"1":10,"2":3}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shop/invoices/17/confirm", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status            string `json:"status"`
		ConfirmedProducts int    `json:"confirmedProducts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.InvoiceStatusPartial, resp.Status)
	assert.Equal(t, 2, resp.ConfirmedProducts)
}

func TestConfirmInvoiceRejectsBadID(t *testing.T) {
	r := invoiceTestRouter(&stubInvoiceService{}, &utils.Claims{UserID: 2, Role: middleware.RoleShop, ShopID: 4})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shop/invoices/abc/confirm", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmInvoiceAlreadyConfirmedIsBadRequest(t *testing.T) {
	svc := &stubInvoiceService{
		confirmFn: func(ctx context.Context, shopID, invoiceID int64, req invoicesvc.ConfirmInvoiceRequest) (*invoicesvc.ConfirmResult, error) {
			return nil, fault.InvalidState("invoice INV-2025-001 is already confirmed")
		},
	}
	r := invoiceTestRouter(svc, &utils.Claims{UserID: 2, Role: middleware.RoleShop, ShopID: 4})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shop/invoices/17/confirm", bytes.NewBufferString(`{"confirmedItems":[1]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "already confirmed")
}
