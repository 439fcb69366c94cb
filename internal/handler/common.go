package handler // handler defines the HTTP handlers behind the router

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// dbTimeout caps every database-bound call made from a handler.
const dbTimeoutSeconds = 5

// getUserID extracts the authenticated user's ID from the context. JWTAuth
// stores it as uint64, but tolerate the other numeric shapes in case a
// handler runs behind a different auth layer in tests.
func getUserID(c echo.Context) (uint64, error) {
	return ctxUint64(c, "user_id")
}

// getCompanyID extracts the tenant scope of the request. Every repository
// call below an authenticated handler must be scoped with this value.
func getCompanyID(c echo.Context) (uint64, error) {
	return ctxUint64(c, "company_id")
}

// getRole extracts the role claim stored by JWTAuth.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

func ctxUint64(c echo.Context, key string) (uint64, error) {
	switch t := c.Get(key).(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pageParams reads ?page and ?limit with sane bounds and converts them to
// LIMIT/OFFSET values. Page starts at 1; limit defaults to 20, capped at 100.
func pageParams(c echo.Context) (limit, offset int) {
	page := 1
	limit = 20
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return limit, (page - 1) * limit
}

// normalizeEmail lowercases and trims an email for lookups and storage.
func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
