package httpserver

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/sessionhub/internal/app"
	apperrors "github.com/pscheid92/sessionhub/internal/platform/errors"
	"golang.org/x/time/rate"
)

const rateLimiterExpiry = 5 * time.Minute

// Key prefixes keep session ids and client addresses in separate buckets.
const (
	sessionKeyPrefix = "session:"
	ipKeyPrefix      = "ip:"
)

// newSessionRateLimiter limits gateway-opening requests per session. Requests without a
// usable number fall back to the client address.
func newSessionRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: rateLimitKey,
		Store:               store,
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			err := apperrors.RateLimitError("too many requests, retry later").WithField("reason", "rate_limited")
			if sessionID, ok := strings.CutPrefix(identifier, sessionKeyPrefix); ok {
				err = err.WithField("session_id", sessionID)
			}
			return HandleError(c, err)
		},
	})
}

func rateLimitKey(c echo.Context) (string, error) {
	number := c.QueryParam("number")
	if number == "" {
		number = c.FormValue("number")
	}
	if sessionID := app.NormalizeIdentifier(number); sessionID != "" {
		return sessionKeyPrefix + sessionID, nil
	}
	return ipKeyPrefix + c.RealIP(), nil
}
