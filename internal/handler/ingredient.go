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

// IngredientHandler serves tenant-scoped ingredient CRUD. Stock status is
// derived server-side; clients cannot set it.
type IngredientHandler struct {
	Ingredients *repository.IngredientRepo
	Categories  *repository.CategoryRepo
}

func NewIngredientHandler(i *repository.IngredientRepo, cat *repository.CategoryRepo) *IngredientHandler {
	return &IngredientHandler{Ingredients: i, Categories: cat}
}

type ingredientReq struct {
	Name           string  `json:"name"`
	CategoryID     uint64  `json:"category_id"`
	UnitPriceCents uint64  `json:"unit_price_cents"`
	Unit           string  `json:"unit"`
	CurrentStock   float64 `json:"current_stock"`
	MinimumStock   float64 `json:"minimum_stock"`
}

func (req *ingredientReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" || req.Unit == "" || req.CategoryID == 0 {
		return "name/unit/category_id required"
	}
	if req.CurrentStock < 0 || req.MinimumStock < 0 {
		return "stock levels must not be negative"
	}
	return ""
}

func (h *IngredientHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cid, _ := getCompanyID(c)

	var req ingredientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if _, err := h.Categories.GetByID(ctx, req.CategoryID, cid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ing := model.Ingredient{
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		UnitPriceCents: req.UnitPriceCents,
		Unit:           req.Unit,
		CurrentStock:   req.CurrentStock,
		MinimumStock:   req.MinimumStock,
		CompanyID:      cid,
		CreatedBy:      uid,
	}
	if _, err := h.Ingredients.Create(ctx, &ing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ingredient failed"})
	}
	return c.JSON(http.StatusCreated, ing)
}

func (h *IngredientHandler) Get(c echo.Context) error {
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

	ing, err := h.Ingredients.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ingredient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, ing)
}

func (h *IngredientHandler) List(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	list, err := h.Ingredients.List(ctx, cid, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ingredients": list})
}

func (h *IngredientHandler) Update(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req ingredientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	ing, err := h.Ingredients.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ingredient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if _, err := h.Categories.GetByID(ctx, req.CategoryID, cid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	ing.Name = req.Name
	ing.CategoryID = req.CategoryID
	ing.UnitPriceCents = req.UnitPriceCents
	ing.Unit = req.Unit
	ing.CurrentStock = req.CurrentStock
	ing.MinimumStock = req.MinimumStock

	if err := h.Ingredients.Update(ctx, &ing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update ingredient failed"})
	}
	return c.JSON(http.StatusOK, ing)
}

func (h *IngredientHandler) Delete(c echo.Context) error {
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

	if err := h.Ingredients.Delete(ctx, id, cid); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ingredient not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "ingredient is still in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete ingredient failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
