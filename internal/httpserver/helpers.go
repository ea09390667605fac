package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/echotube/echotube/internal/middleware"
	"github.com/echotube/echotube/internal/repo"
	"github.com/echotube/echotube/internal/service"
)

// actor pulls the authenticated identity RequireAuth stored on the context.
func actor(c echo.Context) service.Actor {
	a := service.Actor{}
	if v, ok := c.Get(middleware.CtxUserID).(string); ok {
		a.ID = v
	}
	if v, ok := c.Get(middleware.CtxUsername).(string); ok {
		a.Username = v
	}
	if v, ok := c.Get(middleware.CtxRole).(string); ok {
		a.Role = v
	}
	return a
}

// httpError maps service and repository failures onto the error taxonomy.
// Internal details never reach the client; they are logged by the request
// middleware instead.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	case errors.Is(err, repo.ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, "username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrAccountExpired):
		return echo.NewHTTPError(http.StatusForbidden, service.ErrAccountExpired.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrMalformedSnapshot):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
