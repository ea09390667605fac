package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/service"
	"github.com/echotube/echotube/internal/transport"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

func (h *AccountHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	accounts, err := h.Svc.List(ctx, actor(c))
	if err != nil {
		return httpError(err)
	}

	out := make([]transport.UserInfo, 0, len(accounts))
	for i := range accounts {
		out = append(out, transport.UserInfoFrom(&accounts[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AccountHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_create")

	var req transport.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("account_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	account, err := h.Svc.Create(ctx, actor(c), req.Username, req.Password, req.Role, req.ExpiryDate)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "account created",
		"userId":  account.ID,
	})
}

func (h *AccountHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_update")

	var req transport.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("account_update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	account, err := h.Svc.Update(ctx, actor(c), c.Param("id"), service.AccountPatch{
		Password:    req.Password,
		Role:        req.Role,
		ExpiryDate:  req.ExpiryDate,
		ClearExpiry: req.ClearExpiry,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.UserInfoFrom(account))
}

func (h *AccountHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Delete(ctx, actor(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account deleted"})
}
