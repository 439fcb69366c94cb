package handler

import (
	"context"
	"database/sql"
	"fmt"
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
	"github.com/aslboq/catering-backend/internal/utils"
)

// AuthHandler bundles dependencies for user registration, login, token
// lifecycle and password reset endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Companies *repository.CompanyRepo
	Tokens    *repository.TokenRepo
	Resets    *repository.ResetTokenRepo
	Codes     *otp.Engine
	Mail      mailer.Mailer
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, co *repository.CompanyRepo,
	t *repository.TokenRepo, rs *repository.ResetTokenRepo, e *otp.Engine, m mailer.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Companies: co, Tokens: t, Resets: rs, Codes: e, Mail: m}
}

// ----- DTOs -----

type registerReq struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	CompanyID uint64  `json:"company_id"`
	Role      string  `json:"role"` // user | supervisor
}
type verifyOTPReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
type preferencesReq struct {
	ForceLogoutOnClose *bool `json:"force_logout_on_close"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID                 uint64 `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	CompanyID          uint64 `json:"company_id"`
	ForceLogoutOnClose bool   `json:"force_logout_on_close"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		Role:               u.Role,
		CompanyID:          u.CompanyID,
		ForceLogoutOnClose: u.ForceLogoutOnClose,
	}
}

// Register creates a pending (unverified) user inside an existing verified
// company and mails a verification code bound to that user. No tokens are
// issued until the code is confirmed.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" || req.CompanyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password/company_id required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != model.RoleSupervisor {
		role = model.RoleUser
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	company, err := h.Companies.GetByID(ctx, req.CompanyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !company.IsVerified {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company not verified"})
	}

	// Companies and users share one login namespace; an address already
	// registered as a company email cannot become a user account. The
	// users unique key covers the user-vs-user case.
	if taken, err := h.Companies.EmailExists(ctx, req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}

	u := model.User{
		Username:  req.Username,
		Email:     req.Email,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CompanyID: req.CompanyID,
		IsActive:  true,
	}
	uid, err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	// Bind the code to this pending user so it cannot verify anyone else.
	meta := map[string]string{"pendingUserId": strconv.FormatUint(uid, 10)}
	code, _, err := h.Codes.Issue(ctx, model.SubjectUserReg, req.Email, &req.CompanyID, meta)
	if err != nil {
		if err == otp.ErrRateLimited {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many codes requested"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	// Delivery is blocking: if the mail cannot go out the client must know
	// no code is coming. The persisted row still counts toward the window.
	if err := h.Mail.Send(ctx, mailer.OTPMessage(req.Email, model.SubjectUserReg, code, h.Cfg.OTPTTLMin)); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not send verification email"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user_id": uid,
		"message": "verification code sent",
	})
}

// VerifyOTP confirms a user registration code and returns the first token
// pair for the now-verified account.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
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

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	meta := map[string]string{"pendingUserId": strconv.FormatUint(u.ID, 10)}
	res, err := h.Codes.Verify(ctx, model.SubjectUserReg, req.Email, req.Code, meta)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	if !res.OK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}

	if err := h.Users.MarkVerified(ctx, u.ID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	u.IsVerified = true

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Login verifies credentials and returns a fresh token pair. Deactivated
// accounts get 403; unverified accounts must finish OTP verification first.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account deactivated"})
	}
	if !u.IsVerified {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account not verified"})
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.CompanyID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashTokenRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashTokenRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account deactivated"})
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess validates a refresh token and returns a new access token
// WITHOUT rotating the refresh token. Lets clients obtain a fresh
// short-lived access token while reusing an existing session.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashTokenRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.CompanyID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes a specific refresh token when one is supplied, or every
// session of the authenticated user otherwise (protected route, so the JWT
// middleware has already populated the context).
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashTokenRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword mails a single-use reset link. The response is always 200
// so the endpoint cannot be used to enumerate registered emails.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || normalizeEmail(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := normalizeEmail(req.Email)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	accepted := echo.Map{"message": "if the email exists, a reset link has been sent"}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		// Unknown address gets the same answer as a known one.
		return c.JSON(http.StatusOK, accepted)
	}

	raw, err := utils.RandomHex(32)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	exp := time.Now().UTC().Add(time.Duration(h.Cfg.ResetTTLMin) * time.Minute)
	if err := h.Resets.Store(ctx, u.ID, utils.HashTokenRaw(raw), exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(h.Cfg.FrontendURL, "/"), raw)
	if err := h.Mail.Send(ctx, mailer.ResetMessage(email, link, h.Cfg.ResetTTLMin)); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not send reset email"})
	}
	return c.JSON(http.StatusOK, accepted)
}

// ResetPassword redeems a reset token and stores the new password. All
// existing sessions are revoked so a stolen refresh token dies with the
// old password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	token := strings.TrimSpace(req.Token)
	if token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	userID, err := h.Resets.Redeem(ctx, utils.HashTokenRaw(token))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Users.UpdatePassword(ctx, userID, req.Password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	_ = h.Tokens.RevokeAllForUser(ctx, userID)

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// UpdatePreferences lets a user change their own session preferences.
// The path ID must match the authenticated user.
func (h *AuthHandler) UpdatePreferences(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if id != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req preferencesReq
	if err := c.Bind(&req); err != nil || req.ForceLogoutOnClose == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "force_logout_on_close required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if err := h.Users.UpdateForceLogout(ctx, uid, *req.ForceLogoutOnClose); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"force_logout_on_close": *req.ForceLogoutOnClose})
}

// Me returns the identity claims of the current token.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":    c.Get("user_id"),
		"company_id": c.Get("company_id"),
		"role":       c.Get("role"),
	})
}
