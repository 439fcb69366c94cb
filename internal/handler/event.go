package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/repository"
)

// EventHandler serves tenant-scoped event CRUD.
type EventHandler struct {
	Events    *repository.EventRepo
	Customers *repository.CustomerRepo
}

func NewEventHandler(e *repository.EventRepo, cu *repository.CustomerRepo) *EventHandler {
	return &EventHandler{Events: e, Customers: cu}
}

type eventReq struct {
	EventName           string `json:"event_name"`
	EventType           string `json:"event_type"`
	NumberOfGuests      uint32 `json:"number_of_guests"`
	CateringServiceType string `json:"catering_service_type"`
	EventDate           string `json:"event_date"` // YYYY-MM-DD
	StartTime           string `json:"start_time"` // HH:MM
	EndTime             string `json:"end_time"`   // HH:MM
	CustomerID          uint64 `json:"customer_id"`
}

func (req *eventReq) validate() (time.Time, string) {
	req.EventName = strings.TrimSpace(req.EventName)
	req.EventType = strings.TrimSpace(req.EventType)
	if req.EventName == "" || req.EventType == "" || req.CustomerID == 0 {
		return time.Time{}, "event_name/event_type/customer_id required"
	}
	if req.NumberOfGuests == 0 {
		return time.Time{}, "number_of_guests must be at least 1"
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.EventDate))
	if err != nil {
		return time.Time{}, "event_date must be YYYY-MM-DD"
	}
	for _, v := range []string{req.StartTime, req.EndTime} {
		if _, err := time.Parse("15:04", strings.TrimSpace(v)); err != nil {
			return time.Time{}, "start_time/end_time must be HH:MM"
		}
	}
	return date, ""
}

func (h *EventHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cid, _ := getCompanyID(c)

	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, req.CustomerID, cid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ev := model.Event{
		EventName:           req.EventName,
		EventType:           req.EventType,
		NumberOfGuests:      req.NumberOfGuests,
		CateringServiceType: req.CateringServiceType,
		EventDate:           date,
		StartTime:           strings.TrimSpace(req.StartTime),
		EndTime:             strings.TrimSpace(req.EndTime),
		CustomerID:          req.CustomerID,
		CreatedBy:           uid,
		CompanyID:           cid,
	}
	if _, err := h.Events.Create(ctx, &ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, ev)
}

func (h *EventHandler) Get(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) List(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	list, err := h.Events.List(ctx, cid, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": list})
}

func (h *EventHandler) Update(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Customers.GetByID(ctx, req.CustomerID, cid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ev.EventName = req.EventName
	ev.EventType = req.EventType
	ev.NumberOfGuests = req.NumberOfGuests
	ev.CateringServiceType = req.CateringServiceType
	ev.EventDate = date
	ev.StartTime = strings.TrimSpace(req.StartTime)
	ev.EndTime = strings.TrimSpace(req.EndTime)
	ev.CustomerID = req.CustomerID

	if err := h.Events.Update(ctx, &ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) Delete(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if err := h.Events.Delete(ctx, id, cid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
