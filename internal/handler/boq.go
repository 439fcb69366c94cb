package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/queue"
	"github.com/aslboq/catering-backend/internal/repository"
	queuepublisher "github.com/aslboq/catering-backend/internal/service"
	"github.com/aslboq/catering-backend/internal/workflow"
)

// BOQHandler serves bill-of-quantity CRUD and the approval workflow
// endpoints. All state transitions go through the workflow package; the
// handler only translates its sentinels into HTTP statuses.
type BOQHandler struct {
	BOQs      *repository.BOQRepo
	Events    *repository.EventRepo
	Customers *repository.CustomerRepo
	Flow      *workflow.Workflow
}

func NewBOQHandler(b *repository.BOQRepo, e *repository.EventRepo, cu *repository.CustomerRepo, w *workflow.Workflow) *BOQHandler {
	return &BOQHandler{BOQs: b, Events: e, Customers: cu, Flow: w}
}

type boqItemReq struct {
	MenuID         uint64 `json:"menu_id"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint64 `json:"unit_price_cents"`
}
type boqReq struct {
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	EventID     uint64       `json:"event_id"`
	CustomerID  uint64       `json:"customer_id"`
	MenuItems   []boqItemReq `json:"menu_items"`
}
type decisionReq struct {
	Comment *string `json:"comment"`
}

func (h *BOQHandler) actor(c echo.Context) (workflow.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return workflow.Actor{}, err
	}
	cid, err := getCompanyID(c)
	if err != nil {
		return workflow.Actor{}, err
	}
	return workflow.Actor{UserID: uid, CompanyID: cid, Role: getRole(c)}, nil
}

// buildBOQ validates a request body into a document scoped to the actor.
// Whatever totals the client sent are ignored; RecalculateTotals derives
// them from quantity and unit price.
func (h *BOQHandler) buildBOQ(ctx context.Context, req boqReq, actor workflow.Actor) (*model.BillOfQuantity, string, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.EventID == 0 || req.CustomerID == 0 {
		return nil, "title/event_id/customer_id required", nil
	}
	if len(req.MenuItems) == 0 {
		return nil, "at least one menu item required", nil
	}
	for _, it := range req.MenuItems {
		if it.MenuID == 0 || it.Quantity == 0 {
			return nil, "menu items need menu_id and quantity >= 1", nil
		}
	}

	// Referenced event and customer must live in the actor's company.
	if _, err := h.Events.GetByID(ctx, req.EventID, actor.CompanyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, "event not found", nil
		}
		return nil, "", err
	}
	if _, err := h.Customers.GetByID(ctx, req.CustomerID, actor.CompanyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, "customer not found", nil
		}
		return nil, "", err
	}

	b := &model.BillOfQuantity{
		Title:       req.Title,
		Description: req.Description,
		EventID:     req.EventID,
		CustomerID:  req.CustomerID,
		Status:      model.BOQStatusDraft,
		CompanyID:   actor.CompanyID,
		CreatedBy:   actor.UserID,
	}
	for _, it := range req.MenuItems {
		b.MenuItems = append(b.MenuItems, model.BOQMenuItem{
			MenuID:         it.MenuID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	b.RecalculateTotals()
	return b, "", nil
}

// Create stores a new draft document.
func (h *BOQHandler) Create(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req boqReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	b, msg, err := h.buildBOQ(ctx, req, actor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if msg != "" {
		status := http.StatusBadRequest
		if strings.HasSuffix(msg, "not found") {
			status = http.StatusNotFound
		}
		return c.JSON(status, echo.Map{"error": msg})
	}

	if _, err := h.BOQs.Create(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create boq failed"})
	}
	return c.JSON(http.StatusCreated, b)
}

// Get returns one document with its line items.
func (h *BOQHandler) Get(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	b, err := h.BOQs.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "boq not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// List returns a page of documents, optionally filtered by ?status.
func (h *BOQHandler) List(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status := strings.ToLower(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", model.BOQStatusDraft, model.BOQStatusPending, model.BOQStatusApproved,
		model.BOQStatusRejected, model.BOQStatusPublished:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	list, err := h.BOQs.List(ctx, actor.CompanyID, status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"boqs": list})
}

// Update rewrites a draft or rejected document. Documents in the approval
// pipeline or beyond are immutable through this endpoint.
func (h *BOQHandler) Update(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req boqReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	existing, err := h.BOQs.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "boq not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if existing.Status != model.BOQStatusDraft && existing.Status != model.BOQStatusRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only draft or rejected boqs can be edited"})
	}
	if actor.Role == model.RoleUser && existing.CreatedBy != actor.UserID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	b, msg, err := h.buildBOQ(ctx, req, actor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if msg != "" {
		status := http.StatusBadRequest
		if strings.HasSuffix(msg, "not found") {
			status = http.StatusNotFound
		}
		return c.JSON(status, echo.Map{"error": msg})
	}
	b.ID = existing.ID
	b.Status = existing.Status
	b.CreatedBy = existing.CreatedBy

	if err := h.BOQs.Update(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update boq failed"})
	}
	return c.JSON(http.StatusOK, b)
}

// Delete removes a draft document.
func (h *BOQHandler) Delete(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	existing, err := h.BOQs.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "boq not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if existing.Status != model.BOQStatusDraft {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only draft boqs can be deleted"})
	}
	if actor.Role == model.RoleUser && existing.CreatedBy != actor.UserID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.BOQs.Delete(ctx, id, actor.CompanyID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "boq not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete boq failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit moves a document into the approval queue.
func (h *BOQHandler) Submit(c echo.Context) error {
	return h.transition(c, func(ctx context.Context, actor workflow.Actor, id uint64) (*model.BillOfQuantity, error) {
		return h.Flow.Submit(ctx, actor, id)
	})
}

// Publish finalizes an approved document.
func (h *BOQHandler) Publish(c echo.Context) error {
	return h.transition(c, func(ctx context.Context, actor workflow.Actor, id uint64) (*model.BillOfQuantity, error) {
		return h.Flow.Publish(ctx, actor, id)
	})
}

func (h *BOQHandler) transition(c echo.Context, fn func(context.Context, workflow.Actor, uint64) (*model.BillOfQuantity, error)) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	b, err := fn(ctx, actor, id)
	if err != nil {
		return workflowError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Approve records an APPROVED decision and announces it on the broker.
func (h *BOQHandler) Approve(c echo.Context) error {
	return h.decide(c, h.Flow.Approve)
}

// Reject records a REJECTED decision and announces it on the broker.
func (h *BOQHandler) Reject(c echo.Context) error {
	return h.decide(c, h.Flow.Reject)
}

func (h *BOQHandler) decide(c echo.Context, fn func(context.Context, workflow.Actor, uint64, *string) (*model.BillOfQuantity, *model.Approval, error)) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	// An empty body is a decision without comment; a body that fails to
	// bind must not silently become one.
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	b, a, err := fn(ctx, actor, id, req.Comment)
	if err != nil {
		return workflowError(c, err)
	}

	// The decision is committed; the event is best effort and a broker
	// outage must not fail the request.
	ev := queue.BOQDecidedEvent{
		BOQID:            b.ID,
		Title:            b.Title,
		CompanyID:        b.CompanyID,
		SupervisorID:     a.SupervisorID,
		Decision:         a.Decision,
		TotalAmountCents: b.TotalAmountCents,
		DecidedAt:        a.DecidedAt.Format(time.RFC3339),
	}
	if a.Comment != nil {
		ev.Comment = *a.Comment
	}
	go func() { _ = queuepublisher.PublishBOQDecided(context.Background(), ev) }()

	return c.JSON(http.StatusOK, echo.Map{"boq": b, "approval": a})
}

// ApprovalQueue lists pending documents for reviewers.
func (h *BOQHandler) ApprovalQueue(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	list, err := h.Flow.ApprovalQueue(ctx, actor)
	if err != nil {
		return workflowError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"boqs": list})
}

// History returns the approval audit trail of a document.
func (h *BOQHandler) History(c echo.Context) error {
	actor, err := h.actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	hist, err := h.Flow.History(ctx, actor, id)
	if err != nil {
		return workflowError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"approvals": hist})
}

// workflowError maps workflow sentinels onto the HTTP status table.
func workflowError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "boq not found"})
	case errors.Is(err, workflow.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, workflow.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status transition"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
}
