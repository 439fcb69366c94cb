package model

import "time"

// MenuIngredient links a menu to one of its ingredients with the quantity
// needed to prepare it.
type MenuIngredient struct {
	ID           uint64  `json:"id"`            // menu_ingredients.id
	MenuID       uint64  `json:"menu_id"`       // menu_ingredients.menu_id
	IngredientID uint64  `json:"ingredient_id"` // menu_ingredients.ingredient_id
	Quantity     float64 `json:"quantity"`      // menu_ingredients.quantity
}

// Menu is a dish or package offered by the catering company.  TotalQuantity
// and EstimatedCostCents are derived from the ingredient list: the quantity
// sum and the sum of ingredient unit prices times quantities.  Both are
// recomputed server-side whenever ingredients change.
type Menu struct {
	ID                 uint64           `json:"id"`                   // menus.id
	Name               string           `json:"name"`                 // menus.name
	Description        *string          `json:"description,omitempty"` // menus.description (nullable)
	Ingredients        []MenuIngredient `json:"ingredients"`          // menu_ingredients rows
	TotalQuantity      float64          `json:"total_quantity"`       // menus.total_quantity (derived)
	EstimatedCostCents uint64           `json:"estimated_cost_cents"` // menus.estimated_cost_cents (derived)
	CompanyID          uint64           `json:"company_id"`           // menus.company_id
	CreatedBy          uint64           `json:"created_by"`           // menus.created_by
	CreatedAt          time.Time        `json:"created_at"`           // menus.created_at
}

// RecalculateTotals recomputes the derived quantity total.  The estimated
// cost needs ingredient prices, so the repository computes it with the
// prices it just loaded; unitPrices maps ingredient ID to unit price.
func (m *Menu) RecalculateTotals(unitPrices map[uint64]uint64) {
	var qty float64
	var cost uint64
	for _, ing := range m.Ingredients {
		qty += ing.Quantity
		if p, ok := unitPrices[ing.IngredientID]; ok {
			cost += uint64(float64(p) * ing.Quantity)
		}
	}
	m.TotalQuantity = qty
	m.EstimatedCostCents = cost
}
