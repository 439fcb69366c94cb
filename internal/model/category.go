package model

import "time"

// Category groups ingredients or menus.  Names are unique per company.
type Category struct {
	ID          uint64    `json:"id"`                    // categories.id
	Name        string    `json:"name"`                  // categories.name
	Description *string   `json:"description,omitempty"` // categories.description (nullable)
	Type        string    `json:"type"`                  // categories.type ('ingredient' | 'menu')
	CompanyID   uint64    `json:"company_id"`            // categories.company_id
	CreatedAt   time.Time `json:"created_at"`            // categories.created_at
}
