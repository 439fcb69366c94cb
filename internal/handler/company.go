package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aslboq/catering-backend/internal/config"
	"github.com/aslboq/catering-backend/internal/mailer"
	"github.com/aslboq/catering-backend/internal/model"
	"github.com/aslboq/catering-backend/internal/otp"
	"github.com/aslboq/catering-backend/internal/repository"
)

// CompanyHandler serves tenant onboarding: registration, OTP verification,
// resend and email availability.
type CompanyHandler struct {
	Cfg       config.Config
	Companies *repository.CompanyRepo
	Users     *repository.UserRepo
	Codes     *otp.Engine
	Mail      mailer.Mailer
}

func NewCompanyHandler(cfg config.Config, co *repository.CompanyRepo, u *repository.UserRepo,
	e *otp.Engine, m mailer.Mailer) *CompanyHandler {
	return &CompanyHandler{Cfg: cfg, Companies: co, Users: u, Codes: e, Mail: m}
}

type companyRegisterReq struct {
	CompanyName          string  `json:"company_name"`
	CompanyEmail         string  `json:"company_email"`
	CompanyAddress       string  `json:"company_address"`
	CompanyContactNumber string  `json:"company_contact_number"`
	CompanyLogo          *string `json:"company_logo"`
	AdminUsername        string  `json:"admin_username"`
	AdminPassword        string  `json:"admin_password"`
}
type companyVerifyReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
type companyResendReq struct {
	Email string `json:"email"`
}

// Register creates an unverified company together with its pending primary
// admin, then mails a verification code to the company address. The code's
// meta pins both IDs so verifying it can flip exactly this pair.
func (h *CompanyHandler) Register(c echo.Context) error {
	var req companyRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.CompanyEmail = normalizeEmail(req.CompanyEmail)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.AdminUsername = strings.TrimSpace(req.AdminUsername)
	if req.CompanyName == "" || req.CompanyEmail == "" || req.AdminUsername == "" || req.AdminPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_name/company_email/admin_username/admin_password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	company := model.Company{
		CompanyName:          req.CompanyName,
		CompanyEmail:         req.CompanyEmail,
		CompanyAddress:       req.CompanyAddress,
		CompanyContactNumber: req.CompanyContactNumber,
		CompanyLogo:          req.CompanyLogo,
	}
	admin := model.User{
		Username: req.AdminUsername,
		Email:    req.CompanyEmail,
		Role:     model.RoleAdmin,
		IsActive: true,
	}
	// Company and admin land in one transaction: a duplicate on either
	// unique key leaves no partial state behind, so the address can be
	// retried once the conflict is resolved.
	companyID, adminID, err := h.Companies.CreateWithAdmin(ctx, &company, &admin, req.AdminPassword, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create company failed"})
	}

	if err := h.sendRegistrationCode(ctx, companyID, adminID, req.CompanyEmail); err != nil {
		if err == otp.ErrRateLimited {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many codes requested"})
		}
		if err == errMailFailed {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not send verification email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"company_id": companyID,
		"admin_id":   adminID,
		"message":    "verification code sent",
	})
}

// errMailFailed distinguishes a delivery failure from an issuance failure
// inside sendRegistrationCode so callers can answer 503 vs 500.
var errMailFailed = errors.New("mail delivery failed")

func (h *CompanyHandler) sendRegistrationCode(ctx context.Context, companyID, adminID uint64, email string) error {
	meta := map[string]string{
		"companyId":   strconv.FormatUint(companyID, 10),
		"adminUserId": strconv.FormatUint(adminID, 10),
	}
	code, _, err := h.Codes.Issue(ctx, model.SubjectCompanyReg, email, &companyID, meta)
	if err != nil {
		return err
	}
	if err := h.Mail.Send(ctx, mailer.OTPMessage(email, model.SubjectCompanyReg, code, h.Cfg.OTPTTLMin)); err != nil {
		return errMailFailed
	}
	return nil
}

// VerifyOTP confirms a company registration code. On success both the
// company and its pending primary admin become verified in one go.
func (h *CompanyHandler) VerifyOTP(c echo.Context) error {
	var req companyVerifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	company, err := h.Companies.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	admin, err := h.Users.FindPendingAdmin(ctx, company.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	meta := map[string]string{
		"companyId":   strconv.FormatUint(company.ID, 10),
		"adminUserId": strconv.FormatUint(admin.ID, 10),
	}
	res, err := h.Codes.Verify(ctx, model.SubjectCompanyReg, req.Email, req.Code, meta)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	if !res.OK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}

	if err := h.Companies.MarkVerified(ctx, company.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	if err := h.Users.MarkVerified(ctx, admin.ID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"company_id": company.ID,
		"admin_id":   admin.ID,
		"message":    "company verified",
	})
}

// ResendOTP issues a fresh registration code for a company that has not
// completed verification yet. Unknown emails get 404, verified companies
// get 400.
func (h *CompanyHandler) ResendOTP(c echo.Context) error {
	var req companyResendReq
	if err := c.Bind(&req); err != nil || normalizeEmail(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := normalizeEmail(req.Email)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	company, err := h.Companies.GetByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if company.IsVerified {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company already verified"})
	}
	admin, err := h.Users.FindPendingAdmin(ctx, company.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "pending admin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.sendRegistrationCode(ctx, company.ID, admin.ID, email); err != nil {
		if err == otp.ErrRateLimited {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many codes requested"})
		}
		if err == errMailFailed {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not send verification email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}

// CheckEmail reports whether an email is still available for registration.
// Both company and user addresses count as taken.
func (h *CompanyHandler) CheckEmail(c echo.Context) error {
	email := normalizeEmail(c.QueryParam("email"))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	taken, err := h.Companies.EmailExists(ctx, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !taken {
		if _, err := h.Users.GetByEmail(ctx, email); err == nil {
			taken = true
		} else if err != sql.ErrNoRows {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"available": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"available": true})
}

// Get returns the authenticated actor's own company.
func (h *CompanyHandler) Get(c echo.Context) error {
	cid, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	company, err := h.Companies.GetByID(ctx, cid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, company)
}
