package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/service"
	"github.com/echotube/echotube/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      transport.UserInfoFrom(res.Account),
	})
}

// Verify answers "who am I" for a bearer token. RequireAuth has already
// re-validated the account, so this only reloads the fresh user object.
func (h *AuthHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	account, err := h.Svc.Verify(ctx, actor(c).ID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": transport.UserInfoFrom(account),
	})
}
