package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aslboq/catering-backend/internal/config"
)

// captureWriter captures the response body and status while forwarding
// everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		remain := cw.limit - cw.size
		if cw.limit <= 0 || int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else if remain > 0 {
			cw.buf.Write(b[:remain])
		}
		cw.size += int64(len(b))
	}
	return cw.ResponseWriter.Write(b)
}

// NewTenantCache caches GET responses per tenant. The key carries the
// company ID from the JWT context and a per-tenant version counter; every
// write request through this middleware bumps the counter, which orphans
// all of the tenant's cached entries at once. The TTL then only bounds how
// long orphans occupy memory. Responses from one company can never be
// served to another because the company ID is part of the key. Must run
// after JWTAuth.
func NewTenantCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cid, ok := c.Get("company_id").(uint64)
			if !ok {
				return next(c)
			}
			ctx := c.Request().Context()
			verKey := fmt.Sprintf("%s:ver:company:%d", cfg.Prefix, cid)

			if c.Request().Method != http.MethodGet {
				// A write changes what subsequent reads should see.
				_ = rdb.Incr(context.Background(), verKey).Err()
				return next(c)
			}

			ver, err := rdb.Get(ctx, verKey).Result()
			if err != nil {
				ver = "0" // missing counter or Redis error; both read as version zero
			}
			key := tenantCacheKey(cfg.Prefix, cid, ver, c.Request().URL.RequestURI())

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
				c.Response().Header().Set("X-Cache", "HIT")
				c.Response().WriteHeader(http.StatusOK)
				_, _ = c.Response().Write(body)
				return nil
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only complete 200 bodies are worth replaying.
			if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
				_ = rdb.SetEx(context.Background(), key, cw.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}

func tenantCacheKey(prefix string, companyID uint64, version, uri string) string {
	sum := sha1.Sum([]byte(uri))
	return prefix + ":company:" + strconv.FormatUint(companyID, 10) + ":v" + version + ":" + fmt.Sprintf("%x", sum[:])
}
