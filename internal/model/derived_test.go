package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBOQRecalculateTotals(t *testing.T) {
	b := BillOfQuantity{
		MenuItems: []BOQMenuItem{
			{MenuID: 1, Quantity: 2, UnitPriceCents: 1000, TotalPriceCents: 999999},
			{MenuID: 2, Quantity: 3, UnitPriceCents: 500},
		},
		// A client-submitted total must be overwritten.
		TotalAmountCents: 1,
	}
	b.RecalculateTotals()

	assert.Equal(t, uint64(2000), b.MenuItems[0].TotalPriceCents)
	assert.Equal(t, uint64(1500), b.MenuItems[1].TotalPriceCents)
	assert.Equal(t, uint64(3500), b.TotalAmountCents)
}

func TestBOQRecalculateTotalsEmpty(t *testing.T) {
	b := BillOfQuantity{TotalAmountCents: 42}
	b.RecalculateTotals()
	assert.Equal(t, uint64(0), b.TotalAmountCents)
}

func TestMenuRecalculateTotals(t *testing.T) {
	m := Menu{
		Ingredients: []MenuIngredient{
			{IngredientID: 10, Quantity: 2.5},
			{IngredientID: 11, Quantity: 1},
		},
	}
	m.RecalculateTotals(map[uint64]uint64{10: 200, 11: 1000})

	assert.Equal(t, 3.5, m.TotalQuantity)
	assert.Equal(t, uint64(1500), m.EstimatedCostCents)
}

func TestIngredientRefreshStockStatus(t *testing.T) {
	i := Ingredient{CurrentStock: 5, MinimumStock: 2}
	i.RefreshStockStatus()
	assert.Equal(t, StockOK, i.Status)

	i.CurrentStock = 2 // at the minimum counts as low
	i.RefreshStockStatus()
	assert.Equal(t, StockLow, i.Status)
}
