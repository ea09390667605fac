package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/service"
	"github.com/echotube/echotube/internal/transport"
)

type ConfigHTTP struct {
	Svc *service.ConfigService
}

// Get returns the raw value, or JSON null for an absent key, matching what
// the UI expects when probing optional settings.
func (h *ConfigHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()

	value, err := h.Svc.Get(ctx, actor(c), c.Param("key"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, value)
}

func (h *ConfigHTTP) Set(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "config_set")

	var req transport.SetConfigRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("config_set_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Set(ctx, actor(c), req.Key, req.Value); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "config saved"})
}
