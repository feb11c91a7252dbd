package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type contextKey string

const staffKey contextKey = "staff"

// StaffClaims is the token issued to lab staff. Name is recorded as the performer of
// bench and report actions.
type StaffClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Logger writes one structured line per request.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt.
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}

// Recovery turns a handler panic into a 500 and logs the stack.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)

					logger.Error().
						Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")

					err = writeError(c, http.StatusInternalServerError, "Internal", "internal server error")
				}
			}()
			return next(c)
		}
	}
}

// StaffAuth verifies HS256 bearer tokens and puts the staff name on the request
// context. With an empty signing key tokens are not required, which is how local and
// test setups run; a token that is sent is still verified.
func StaffAuth(signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				if len(signingKey) == 0 {
					return next(c)
				}
				return writeError(c, http.StatusUnauthorized, "Unauthorized", "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return writeError(c, http.StatusUnauthorized, "Unauthorized", "invalid authorization format")
			}
			if len(signingKey) == 0 {
				return writeError(c, http.StatusUnauthorized, "Unauthorized", "token authentication is not configured")
			}

			claims := &StaffClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
				return signingKey, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return writeError(c, http.StatusUnauthorized, "Unauthorized", "invalid token")
			}

			name := claims.Name
			if name == "" {
				name = claims.Subject
			}
			ctx := context.WithValue(c.Request().Context(), staffKey, name)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// StaffFromContext returns the authenticated staff name, or "" for anonymous calls.
func StaffFromContext(ctx context.Context) string {
	name, _ := ctx.Value(staffKey).(string)
	return name
}

// performer prefers the authenticated identity over the name in the request body.
func performer(c echo.Context, fromBody string) string {
	if name := StaffFromContext(c.Request().Context()); name != "" {
		return name
	}
	return fromBody
}
