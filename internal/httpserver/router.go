package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/echotube/echotube/internal/metrics"
	"github.com/echotube/echotube/internal/middleware"
	"github.com/echotube/echotube/internal/repo"
	"github.com/echotube/echotube/internal/transport"
)

type Deps struct {
	Auth     *AuthHTTP
	Accounts *AccountHTTP
	Videos   *VideoHTTP
	Configs  *ConfigHTTP
	Backup   *BackupHTTP

	AuthMW       *middleware.Auth
	LoginLimiter *middleware.LoginLimiter
	Repo         *repo.GormRepo
	Gatherer     prometheus.Gatherer

	// AllowedOrigins is the explicit CORS allowlist; a wildcard is never
	// configured here.
	AllowedOrigins []string
}

func Register(e *echo.Echo, d *Deps) {
	if len(d.AllowedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
			AllowCredentials: true,
		}))
	}

	e.GET("/api/health", func(c echo.Context) error {
		res := transport.HealthResponse{Status: "ok", Store: "connected"}
		if err := d.Repo.Ping(); err != nil {
			res.Status = "degraded"
			res.Store = "disconnected"
		}
		return c.JSON(http.StatusOK, res)
	})

	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	var loginMW []echo.MiddlewareFunc
	if d.LoginLimiter != nil {
		loginMW = append(loginMW, d.LoginLimiter.Middleware())
	}
	e.POST("/api/auth/login", d.Auth.Login, loginMW...)

	api := e.Group("/api", d.AuthMW.RequireAuth)

	api.GET("/auth/verify", d.Auth.Verify)

	api.GET("/users", d.Accounts.List)
	api.POST("/users", d.Accounts.Create)
	api.PUT("/users/:id", d.Accounts.Update)
	api.DELETE("/users/:id", d.Accounts.Delete)

	api.GET("/videos", d.Videos.List)
	api.POST("/videos", d.Videos.Create)
	api.GET("/videos/search", d.Videos.Search)
	api.GET("/videos/:id", d.Videos.Get)
	api.PUT("/videos/:id", d.Videos.Update)
	api.DELETE("/videos/:id", d.Videos.Delete)
	api.POST("/videos/:id/checkin", d.Videos.CheckIn)

	api.GET("/config/:key", d.Configs.Get)
	api.POST("/config", d.Configs.Set)

	api.GET("/backup/export", d.Backup.Export)
	api.POST("/backup/import", d.Backup.Import)
}
