package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato-system/internal/database/models"
	"mercato-system/internal/fault"
)

func item(productID int64, quantity string) models.InvoiceItem {
	return models.InvoiceItem{ProductID: productID, Quantity: quantity}
}

func confirmedItem(productID int64, quantity, received string) models.InvoiceItem {
	it := item(productID, quantity)
	it.ShopConfirmed = true
	it.ReceivedQuantity = &received
	return it
}

func TestApplyItemConfirmations(t *testing.T) {
	items := []models.InvoiceItem{item(1, "10"), item(2, "5"), item(3, "2")}
	received := map[int64]decimal.Decimal{
		1: decimal.NewFromInt(10),
		2: decimal.NewFromInt(3),
	}

	touched := applyItemConfirmations(items, []int64{1, 2}, received)

	assert.Equal(t, []int{0, 1}, touched)
	require.NotNil(t, items[0].ReceivedQuantity)
	assert.Equal(t, "10", *items[0].ReceivedQuantity)
	assert.True(t, items[0].ShopConfirmed)
	require.NotNil(t, items[1].ReceivedQuantity)
	assert.Equal(t, "3", *items[1].ReceivedQuantity)

	// Item 3 was not named in this pass and stays untouched.
	assert.False(t, items[2].ShopConfirmed)
	assert.Nil(t, items[2].ReceivedQuantity)
}

func TestApplyItemConfirmationsDefaultsToZero(t *testing.T) {
	items := []models.InvoiceItem{item(1, "10")}

	touched := applyItemConfirmations(items, []int64{1}, map[int64]decimal.Decimal{})

	assert.Equal(t, []int{0}, touched)
	require.NotNil(t, items[0].ReceivedQuantity)
	assert.Equal(t, "0", *items[0].ReceivedQuantity)
	assert.True(t, items[0].ShopConfirmed)
}

func TestApplyItemConfirmationsKeepsEarlierPasses(t *testing.T) {
	items := []models.InvoiceItem{confirmedItem(1, "10", "10"), item(2, "5")}

	touched := applyItemConfirmations(items, []int64{2}, map[int64]decimal.Decimal{
		2: decimal.NewFromInt(5),
	})

	assert.Equal(t, []int{1}, touched)
	require.NotNil(t, items[0].ReceivedQuantity)
	assert.Equal(t, "10", *items[0].ReceivedQuantity)
}

func TestResolveInvoiceStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []models.InvoiceItem
		want  string
	}{
		{
			name:  "nothing confirmed stays pending",
			items: []models.InvoiceItem{item(1, "10"), item(2, "5")},
			want:  models.InvoiceStatusPending,
		},
		{
			name:  "all confirmed with exact quantities",
			items: []models.InvoiceItem{confirmedItem(1, "10", "10"), confirmedItem(2, "5", "5")},
			want:  models.InvoiceStatusConfirmed,
		},
		{
			name:  "subset confirmed is partial",
			items: []models.InvoiceItem{confirmedItem(1, "10", "10"), item(2, "5")},
			want:  models.InvoiceStatusPartial,
		},
		{
			name:  "short delivery is partial even when all confirmed",
			items: []models.InvoiceItem{confirmedItem(1, "10", "7"), confirmedItem(2, "5", "5")},
			want:  models.InvoiceStatusPartial,
		},
		{
			name:  "all confirmed with zero received stays pending",
			items: []models.InvoiceItem{confirmedItem(1, "10", "0"), confirmedItem(2, "5", "0")},
			want:  models.InvoiceStatusPending,
		},
		{
			name:  "zero received on one item with others exact is partial",
			items: []models.InvoiceItem{confirmedItem(1, "10", "10"), confirmedItem(2, "5", "0")},
			want:  models.InvoiceStatusPartial,
		},
		{
			name:  "fractional quantities compare exactly",
			items: []models.InvoiceItem{confirmedItem(1, "2.500", "2.5")},
			want:  models.InvoiceStatusConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveInvoiceStatus(tt.items))
		})
	}
}

func TestParseReceivedQuantities(t *testing.T) {
	got, err := parseReceivedQuantities(map[string]decimal.Decimal{
		"1": decimal.NewFromInt(10),
		"7": decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	assert.True(t, got[1].Equal(decimal.NewFromInt(10)))
	assert.True(t, got[7].Equal(decimal.RequireFromString("2.5")))
}

func TestParseReceivedQuantitiesRejectsBadKey(t *testing.T) {
	_, err := parseReceivedQuantities(map[string]decimal.Decimal{
		"abc": decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindInvalidInput, fault.KindOf(err))
}

func TestParseReceivedQuantitiesRejectsNegative(t *testing.T) {
	_, err := parseReceivedQuantities(map[string]decimal.Decimal{
		"1": decimal.NewFromInt(-3),
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindInvalidInput, fault.KindOf(err))
}
