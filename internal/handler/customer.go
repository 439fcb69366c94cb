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

// CustomerHandler serves tenant-scoped customer CRUD.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
}

func NewCustomerHandler(r *repository.CustomerRepo) *CustomerHandler {
	return &CustomerHandler{Customers: r}
}

type customerReq struct {
	CompanyName   string  `json:"company_name"`
	ContactPerson string  `json:"contact_person"`
	Address       *string `json:"address"`
	Email         *string `json:"email"`
	Mobile        string  `json:"mobile"`
	Twitter       *string `json:"twitter"`
	Instagram     *string `json:"instagram"`
	Facebook      *string `json:"facebook"`
	Discord       *string `json:"discord"`
	LinkedIn      *string `json:"linkedin"`
	CateringType  *string `json:"catering_type"`
}

func (req *customerReq) validate() string {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.ContactPerson = strings.TrimSpace(req.ContactPerson)
	req.Mobile = strings.TrimSpace(req.Mobile)
	if req.CompanyName == "" || req.ContactPerson == "" || req.Mobile == "" {
		return "company_name/contact_person/mobile required"
	}
	if req.Email != nil {
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}
	return ""
}

func (h *CustomerHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cid, _ := getCompanyID(c)

	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	cust := model.Customer{
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Address:       req.Address,
		Email:         req.Email,
		Mobile:        req.Mobile,
		Twitter:       req.Twitter,
		Instagram:     req.Instagram,
		Facebook:      req.Facebook,
		Discord:       req.Discord,
		LinkedIn:      req.LinkedIn,
		CateringType:  req.CateringType,
		CreatedBy:     uid,
		CompanyID:     cid,
	}
	if _, err := h.Customers.Create(ctx, &cust); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create customer failed"})
	}
	return c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) Get(c echo.Context) error {
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

	cust, err := h.Customers.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) List(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit, offset := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	list, err := h.Customers.List(ctx, cid, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": list})
}

func (h *CustomerHandler) Update(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cust.CompanyName = req.CompanyName
	cust.ContactPerson = req.ContactPerson
	cust.Address = req.Address
	cust.Email = req.Email
	cust.Mobile = req.Mobile
	cust.Twitter = req.Twitter
	cust.Instagram = req.Instagram
	cust.Facebook = req.Facebook
	cust.Discord = req.Discord
	cust.LinkedIn = req.LinkedIn
	cust.CateringType = req.CateringType

	if err := h.Customers.Update(ctx, &cust); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update customer failed"})
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
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

	if err := h.Customers.Delete(ctx, id, cid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete customer failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
