package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/echotube/echotube/internal/logging"
	"github.com/echotube/echotube/internal/service"
	"github.com/echotube/echotube/internal/transport"
)

type VideoHTTP struct {
	Svc *service.VideoService
}

func (h *VideoHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	videos, err := h.Svc.List(ctx, actor(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, videos)
}

func (h *VideoHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()

	video, err := h.Svc.Get(ctx, actor(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, video)
}

func (h *VideoHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "video_create")

	var req transport.CreateVideoRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("video_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	video, err := h.Svc.Create(ctx, actor(c), service.CreateVideoInput{
		Title:       req.Title,
		VideoID:     req.VideoID,
		VideoSource: req.VideoSource,
		Subtitles:   req.Subtitles,
		Keywords:    req.Keywords,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, video)
}

func (h *VideoHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "video_update")

	var req transport.PatchVideoRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("video_update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	video, err := h.Svc.Update(ctx, actor(c), c.Param("id"), service.VideoPatch{
		Title:       req.Title,
		VideoID:     req.VideoID,
		VideoSource: req.VideoSource,
		Subtitles:   req.Subtitles,
		Keywords:    req.Keywords,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, video)
}

func (h *VideoHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.Svc.Delete(ctx, actor(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "video deleted"})
}

func (h *VideoHTTP) CheckIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "video_checkin")

	var req transport.CheckInRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkin_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.CheckIn(ctx, actor(c), c.Param("id"), req.Step)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.CheckInResponse{
		Message:      "check-in recorded",
		TotalRecords: res.TotalRecords,
		DistinctDays: res.DistinctDays,
	})
}

func (h *VideoHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()

	videos, err := h.Svc.SearchVideos(ctx, actor(c), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, videos)
}
