// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aslboq/catering-backend/internal/config"
	"github.com/aslboq/catering-backend/internal/handler"
	"github.com/aslboq/catering-backend/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication surface. Registration, login,
// OTP verification and the password reset flow are unauthenticated and sit
// behind the IP/route token bucket; session endpoints live under the JWT
// group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, cfg config.Config, rl config.RateLimitConfig, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(rl, rdb)

	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/verify-otp", a.VerifyOTP)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	// Logout accepts a refresh token in the body, so it works without a JWT.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/users/:id/preferences", a.UpdatePreferences)
	auth.POST("/logout", a.Logout)
}

// RegisterCompany registers tenant onboarding endpoints. All but the
// company detail view are unauthenticated; they carry the same token
// bucket as the auth group because they can trigger outbound mail.
func RegisterCompany(e *echo.Echo, h *handler.CompanyHandler, cfg config.Config, rl config.RateLimitConfig, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(rl, rdb)

	g := e.Group("/v1/company", limiter)
	g.POST("/register", h.Register)
	g.POST("/verify-otp", h.VerifyOTP)
	g.POST("/resend-otp", h.ResendOTP)
	g.GET("/check-email", h.CheckEmail)

	auth := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/company", h.Get)
}
