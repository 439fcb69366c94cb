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

// MenuHandler serves tenant-scoped menu CRUD. The estimated cost is derived
// from current ingredient unit prices on every write; clients never set it.
type MenuHandler struct {
	Menus       *repository.MenuRepo
	Ingredients *repository.IngredientRepo
}

func NewMenuHandler(m *repository.MenuRepo, i *repository.IngredientRepo) *MenuHandler {
	return &MenuHandler{Menus: m, Ingredients: i}
}

type menuIngredientReq struct {
	IngredientID uint64  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}
type menuReq struct {
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Ingredients []menuIngredientReq `json:"ingredients"`
}

func (req *menuReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name required"
	}
	if len(req.Ingredients) == 0 {
		return "at least one ingredient required"
	}
	for _, ing := range req.Ingredients {
		if ing.IngredientID == 0 || ing.Quantity <= 0 {
			return "ingredients need ingredient_id and quantity > 0"
		}
	}
	return ""
}

// buildMenu resolves the ingredient list against the tenant's catalog and
// recomputes the derived totals. An unknown ingredient ID is a 404, same as
// any other cross-tenant reference.
func (h *MenuHandler) buildMenu(ctx context.Context, req menuReq, uid, cid uint64) (*model.Menu, string, error) {
	m := &model.Menu{
		Name:        req.Name,
		Description: req.Description,
		CompanyID:   cid,
		CreatedBy:   uid,
	}
	ids := make([]uint64, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		m.Ingredients = append(m.Ingredients, model.MenuIngredient{
			IngredientID: ing.IngredientID,
			Quantity:     ing.Quantity,
		})
		ids = append(ids, ing.IngredientID)
	}

	prices, err := h.Ingredients.UnitPrices(ctx, cid, ids)
	if err != nil {
		return nil, "", err
	}
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			return nil, "ingredient not found", nil
		}
	}
	m.RecalculateTotals(prices)
	return m, "", nil
}

func (h *MenuHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cid, _ := getCompanyID(c)

	var req menuReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	m, msg, err := h.buildMenu(ctx, req, uid, cid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if msg != "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
	}

	if _, err := h.Menus.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create menu failed"})
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MenuHandler) Get(c echo.Context) error {
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

	m, err := h.Menus.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MenuHandler) List(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	list, err := h.Menus.List(ctx, cid, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"menus": list})
}

func (h *MenuHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cid, _ := getCompanyID(c)
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req menuReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	existing, err := h.Menus.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	m, msg, err := h.buildMenu(ctx, req, uid, cid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if msg != "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
	}
	m.ID = existing.ID
	m.CreatedBy = existing.CreatedBy

	if err := h.Menus.Update(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update menu failed"})
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MenuHandler) Delete(c echo.Context) error {
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

	if err := h.Menus.Delete(ctx, id, cid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete menu failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
