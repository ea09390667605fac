package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/echotube/echotube/internal/models"
	"github.com/echotube/echotube/internal/repo"
	"github.com/echotube/echotube/internal/tokens"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// AccountSource lets the middleware reload the token subject. Lookups are
// expected to report a missing row as repo.ErrNotFound; any other error is
// treated as a store failure.
type AccountSource interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
}

type Auth struct {
	Secret   []byte
	Accounts AccountSource
}

func NewAuth(secret []byte, accounts AccountSource) *Auth {
	return &Auth{Secret: secret, Accounts: accounts}
}

// RequireAuth is the sole gate in front of protected routes: it verifies
// the bearer token, then reloads the account so deletions, role changes and
// account expiry take effect on the very next request. The role stored in
// the context comes from the store, not from the token.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		claims, err := tokens.Parse(tokenStr, m.Secret)
		if err != nil {
			if errors.Is(err, tokens.ErrExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		account, err := m.Accounts.GetAccount(c.Request().Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown account")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if account.Expired(time.Now()) {
			return echo.NewHTTPError(http.StatusForbidden, "account expired")
		}

		c.Set(CtxUserID, account.ID)
		c.Set(CtxUsername, account.Username)
		c.Set(CtxRole, account.Role)

		return next(c)
	}
}
