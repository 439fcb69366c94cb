package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/workflow"
)

type memBOQStore struct {
	docs map[uint64]*model.BillOfQuantity
}

func (s *memBOQStore) GetByID(_ context.Context, id, companyID uint64) (*model.BillOfQuantity, error) {
	b, ok := s.docs[id]
	if !ok || b.CompanyID != companyID {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (s *memBOQStore) UpdateStatus(_ context.Context, id, companyID uint64, from []string, to string) (bool, error) {
	b, ok := s.docs[id]
	if !ok || b.CompanyID != companyID {
		return false, nil
	}
	for _, st := range from {
		if b.Status == st {
			b.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (s *memBOQStore) ListByStatus(_ context.Context, companyID uint64, status string) ([]model.BillOfQuantity, error) {
	var out []model.BillOfQuantity
	for _, b := range s.docs {
		if b.CompanyID == companyID && b.Status == status {
			out = append(out, *b)
		}
	}
	return out, nil
}

type memApprovalStore struct {
	rows []model.Approval
}

func (s *memApprovalStore) Create(_ context.Context, a *model.Approval) error {
	a.ID = uint64(len(s.rows) + 1)
	s.rows = append(s.rows, *a)
	return nil
}

func (s *memApprovalStore) ListByBOQ(_ context.Context, boqID, companyID uint64) ([]model.Approval, error) {
	var out []model.Approval
	for _, a := range s.rows {
		if a.BOQID == boqID && a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func decisionContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/boqs/1/approve", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/boqs/:id/approve")
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set("user_id", uint64(9))
	c.Set("company_id", uint64(3))
	c.Set("role", model.RoleSupervisor)
	return c, rec
}

func pendingFixture() (*memBOQStore, *memApprovalStore, *BOQHandler) {
	store := &memBOQStore{docs: map[uint64]*model.BillOfQuantity{
		1: {ID: 1, CompanyID: 3, CreatedBy: 7, Title: "summer gala", Status: model.BOQStatusPending},
	}}
	audit := &memApprovalStore{}
	return store, audit, &BOQHandler{Flow: workflow.New(store, audit)}
}

// A body that fails to bind must not go through as a comment-less
// approval; the document stays pending and no audit row is written.
func TestDecisionRejectsMalformedBody(t *testing.T) {
	store, audit, h := pendingFixture()

	c, rec := decisionContext(echo.New(), `{"comment":`)
	require.NoError(t, h.Approve(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.BOQStatusPending, store.docs[1].Status)
	assert.Empty(t, audit.rows)
}

func TestDecisionAcceptsEmptyBody(t *testing.T) {
	store, audit, h := pendingFixture()

	c, rec := decisionContext(echo.New(), "")
	require.NoError(t, h.Approve(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.BOQStatusApproved, store.docs[1].Status)
	require.Len(t, audit.rows, 1)
	assert.Equal(t, model.DecisionApproved, audit.rows[0].Decision)
	assert.Nil(t, audit.rows[0].Comment)
	assert.Equal(t, uint64(9), audit.rows[0].SupervisorID)
}

func TestDecisionWithComment(t *testing.T) {
	store, audit, h := pendingFixture()

	c, rec := decisionContext(echo.New(), `{"comment":"prices confirmed with vendor"}`)
	require.NoError(t, h.Approve(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.BOQStatusApproved, store.docs[1].Status)
	require.Len(t, audit.rows, 1)
	require.NotNil(t, audit.rows[0].Comment)
	assert.Equal(t, "prices confirmed with vendor", *audit.rows[0].Comment)
}
