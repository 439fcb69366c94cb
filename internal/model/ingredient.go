package model

import "time"

// Stock status values derived from current vs minimum stock.
const (
	StockOK  = "OK"
	StockLow = "Low"
)

// Ingredient is a purchasable raw material with pricing and stock levels.
// Status is derived: OK while current stock exceeds the minimum, Low
// otherwise.  It is recomputed on every write, never set by callers.
type Ingredient struct {
	ID             uint64    `json:"id"`               // ingredients.id
	Name           string    `json:"name"`             // ingredients.name
	CategoryID     uint64    `json:"category_id"`      // ingredients.category_id
	UnitPriceCents uint64    `json:"unit_price_cents"` // ingredients.unit_price_cents
	Unit           string    `json:"unit"`             // ingredients.unit (kg, g, ml, pieces)
	CurrentStock   float64   `json:"current_stock"`    // ingredients.current_stock
	MinimumStock   float64   `json:"minimum_stock"`    // ingredients.minimum_stock
	Status         string    `json:"status"`           // ingredients.status (derived)
	CompanyID      uint64    `json:"company_id"`       // ingredients.company_id
	CreatedBy      uint64    `json:"created_by"`       // ingredients.created_by
	CreatedAt      time.Time `json:"created_at"`       // ingredients.created_at
}

// RefreshStockStatus recomputes the derived status from stock levels.
func (i *Ingredient) RefreshStockStatus() {
	if i.CurrentStock > i.MinimumStock {
		i.Status = StockOK
	} else {
		i.Status = StockLow
	}
}
