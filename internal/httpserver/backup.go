package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/service"
	"github.com/echotube/echotube/internal/transport"
)

type BackupHTTP struct {
	Svc *service.BackupService
}

func (h *BackupHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()

	snapshot, err := h.Svc.Export(ctx, actor(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *BackupHTTP) Import(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "backup_import")

	var req transport.ImportRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("backup_import_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Import(ctx, actor(c), req.Data); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "backup restored"})
}
