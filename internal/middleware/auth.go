package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deppfellow/oracle-automation/internal/errs"
	"github.com/deppfellow/oracle-automation/internal/server"
)

const (
	APIKeyHeader = "X-API-Key"

	// apiKeyClient is the client name recorded for key-authenticated calls.
	apiKeyClient = "api-key"
)

type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireAuth checks the X-API-Key header against auth.api_key. With no
// key configured every request is let through.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	expected := []byte(auth.server.Config.Auth.APIKey)

	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(echo.Context) bool {
			return len(expected) == 0
		},
		KeyLookup: "header:" + APIKeyHeader,
		Validator: func(key string, c echo.Context) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
				return false, nil
			}
			c.Set(ClientKey, apiKeyClient)
			return true, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			GetLogger(c).Warn().
				Err(err).
				Str("function", "RequireAuth").
				Msg("rejected request without a valid API key")
			return errs.NewUnauthorizedError("Unauthorized", false)
		},
	})(next)
}
