package repository

import (
	"context"
	"database/sql"

	"github.com/aslboq/catering-backend/internal/model"
)

type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

const eventCols = "id,event_name,event_type,number_of_guests,catering_service_type,event_date,start_time,end_time,customer_id,created_by,company_id,created_at"

func scanEvent(sc interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := sc.Scan(&e.ID, &e.EventName, &e.EventType, &e.NumberOfGuests,
		&e.CateringServiceType, &e.EventDate, &e.StartTime, &e.EndTime,
		&e.CustomerID, &e.CreatedBy, &e.CompanyID, &e.CreatedAt)
	return e, err
}

// Create inserts an event and returns its ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO events (event_name, event_type, number_of_guests, catering_service_type, event_date, start_time, end_time, customer_id, created_by, company_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		e.EventName, e.EventType, e.NumberOfGuests, e.CateringServiceType,
		e.EventDate, e.StartTime, e.EndTime, e.CustomerID, e.CreatedBy, e.CompanyID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	e.ID = uint64(id)
	return e.ID, nil
}

// GetByID fetches an event within a company.
func (r *EventRepo) GetByID(ctx context.Context, id, companyID uint64) (model.Event, error) {
	return scanEvent(r.DB.QueryRowContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE id=? AND company_id=? LIMIT 1", id, companyID))
}

// List returns a page of the company's events, newest first.
func (r *EventRepo) List(ctx context.Context, companyID uint64, limit, offset int) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE company_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of an event within a company.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE events SET event_name=?, event_type=?, number_of_guests=?, catering_service_type=?, event_date=?, start_time=?, end_time=?, customer_id=?
		 WHERE id=? AND company_id=?`,
		e.EventName, e.EventType, e.NumberOfGuests, e.CateringServiceType,
		e.EventDate, e.StartTime, e.EndTime, e.CustomerID, e.ID, e.CompanyID)
	return err
}

// Delete removes an event within a company.
func (r *EventRepo) Delete(ctx context.Context, id, companyID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM events WHERE id=? AND company_id=?", id, companyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
