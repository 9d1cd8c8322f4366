package handler

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato-system/internal/database/models"
	"mercato-system/internal/fault"
)

func TestBaseSellingPrice(t *testing.T) {
	product := models.Product{
		Unit: "pcs",
		Prices: []models.ProductPrice{
			{Unit: "box", SellingPrice: "120.00"},
			{Unit: "pcs", SellingPrice: "12.50"},
		},
	}

	price, ok := baseSellingPrice(product)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("12.50")))

	// No entry for the base unit means the bill line cannot be priced.
	_, ok = baseSellingPrice(models.Product{Unit: "pcs", Prices: []models.ProductPrice{{Unit: "box", SellingPrice: "120.00"}}})
	assert.False(t, ok)

	_, ok = baseSellingPrice(models.Product{Unit: "pcs"})
	assert.False(t, ok)
}

func TestCreateBillRejectsEmptyItems(t *testing.T) {
	s := &BillingHandler{}

	_, err := s.CreateBill(context.Background(), models.AdminOwner(1), CreateBillRequest{
		CustomerName: "Walk-in",
	})

	require.Error(t, err)
	assert.Equal(t, fault.KindInvalidInput, fault.KindOf(err))
}

func TestCreateBillRejectsNonPositiveQuantity(t *testing.T) {
	s := &BillingHandler{}

	_, err := s.CreateBill(context.Background(), models.ShopOwner(4), CreateBillRequest{
		Items: []BillItemInput{
			{ProductID: 1, Quantity: decimal.NewFromInt(-1)},
		},
	})

	require.Error(t, err)
	assert.Equal(t, fault.KindInvalidInput, fault.KindOf(err))
}

func TestCreateBillRejectsNegativeTax(t *testing.T) {
	s := &BillingHandler{}

	_, err := s.CreateBill(context.Background(), models.ShopOwner(4), CreateBillRequest{
		Tax: decimal.NewFromInt(-10),
		Items: []BillItemInput{
			{ProductID: 1, Quantity: decimal.NewFromInt(1)},
		},
	})

	require.Error(t, err)
	assert.Equal(t, fault.KindInvalidInput, fault.KindOf(err))
}
