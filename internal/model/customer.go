package model

import "time"

// Customer is a client of the catering company.  Customers are plain
// tenant-scoped records; they carry contact and social-media details used
// when preparing quotes and bills of quantity.
type Customer struct {
	ID            uint64    `json:"id"`                  // customers.id
	CompanyName   string    `json:"company_name"`        // customers.company_name
	ContactPerson string    `json:"contact_person"`      // customers.contact_person
	Address       *string   `json:"address,omitempty"`   // customers.address (nullable)
	Email         *string   `json:"email,omitempty"`     // customers.email (nullable)
	Mobile        string    `json:"mobile"`              // customers.mobile
	Twitter       *string   `json:"twitter,omitempty"`   // customers.twitter (nullable)
	Instagram     *string   `json:"instagram,omitempty"` // customers.instagram (nullable)
	Facebook      *string   `json:"facebook,omitempty"`  // customers.facebook (nullable)
	Discord       *string   `json:"discord,omitempty"`   // customers.discord (nullable)
	LinkedIn      *string   `json:"linkedin,omitempty"`  // customers.linkedin (nullable)
	CateringType  *string   `json:"catering_type,omitempty"` // customers.catering_type (nullable)
	DateJoined    time.Time `json:"date_joined"`         // customers.date_joined
	CreatedBy     uint64    `json:"created_by"`          // customers.created_by
	CompanyID     uint64    `json:"company_id"`          // customers.company_id
	CreatedAt     time.Time `json:"created_at"`          // customers.created_at
}
