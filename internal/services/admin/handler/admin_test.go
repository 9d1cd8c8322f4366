package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato-system/internal/database/models"
	"mercato-system/internal/fault"
)

func TestCreateShopRejectsEmptyName(t *testing.T) {
	s := &AdminHandler{}

	_, err := s.CreateShop(context.Background(), CreateShopRequest{Location: "Downtown"})

	require.Error(t, err)
	assert.Equal(t, fault.KindInvalidInput, fault.KindOf(err))
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{name: "missing sku", req: CreateProductRequest{ProductName: "Rice", Unit: "kg"}},
		{name: "missing name", req: CreateProductRequest{SKU: "RCE-01", Unit: "kg"}},
		{name: "missing unit", req: CreateProductRequest{SKU: "RCE-01", ProductName: "Rice"}},
	}

	s := &AdminHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateProduct(context.Background(), models.AdminOwner(1), tt.req)
			require.Error(t, err)
			assert.Equal(t, fault.KindInvalidInput, fault.KindOf(err))
		})
	}
}
