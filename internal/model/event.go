package model

import "time"

// Event is a catering engagement for a customer: a wedding, conference,
// corporate event and so on.  Bills of quantity reference exactly one event.
type Event struct {
	ID                  uint64    `json:"id"`                    // events.id
	EventName           string    `json:"event_name"`            // events.event_name
	EventType           string    `json:"event_type"`            // events.event_type
	NumberOfGuests      uint32    `json:"number_of_guests"`      // events.number_of_guests
	CateringServiceType string    `json:"catering_service_type"` // events.catering_service_type
	EventDate           time.Time `json:"event_date"`            // events.event_date
	StartTime           string    `json:"start_time"`            // events.start_time (HH:MM)
	EndTime             string    `json:"end_time"`              // events.end_time (HH:MM)
	CustomerID          uint64    `json:"customer_id"`           // events.customer_id
	CreatedBy           uint64    `json:"created_by"`            // events.created_by
	CompanyID           uint64    `json:"company_id"`            // events.company_id
	CreatedAt           time.Time `json:"created_at"`            // events.created_at
}
