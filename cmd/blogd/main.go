// Command blogd serves the blog API over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-blog-cache/blog"
	"github.com/goliatone/go-blog-cache/pkg/config"
	"github.com/goliatone/go-blog-cache/pkg/di"
	"github.com/goliatone/go-blog-cache/pkg/errors"
	"github.com/goliatone/go-blog-cache/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	container, err := di.NewContainer(cfg, log)
	if err != nil {
		log.Fatal("failed to build service graph", zap.Error(err))
	}
	defer container.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	h := &handler{posts: container.Posts(), cfg: cfg}
	h.register(e)

	go func() {
		log.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

type handler struct {
	posts *blog.Posts
	cfg   *config.Config
}

func (h *handler) register(e *echo.Echo) {
	e.GET("/posts", h.list)
	e.GET("/posts/:id", h.get)
	e.GET("/users/:username/posts", h.listByAuthor)
	e.POST("/posts", h.create)
	e.PUT("/posts/:id", h.edit)
	e.DELETE("/posts/:id", h.remove)
}

type postBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

func (h *handler) list(c echo.Context) error {
	page := h.pageParam(c)
	result, err := h.posts.List(c.Request().Context(), page, h.cfg.PageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *handler) listByAuthor(c echo.Context) error {
	page := h.pageParam(c)
	result, err := h.posts.ListByAuthor(c.Request().Context(), c.Param("username"), page, h.cfg.PageSize)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	post, err := h.posts.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *handler) create(c echo.Context) error {
	var body postBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	post, err := h.posts.Create(c.Request().Context(), body.Title, body.Content, body.Author)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *handler) edit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	var body postBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	post, err := h.posts.Edit(c.Request().Context(), id, body.Title, body.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *handler) remove(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	if err := h.posts.Remove(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		return 1
	}
	return page
}

// httpError maps service error codes onto HTTP statuses.
func httpError(err error) error {
	switch errors.CodeOf(err) {
	case errors.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	case errors.ErrInvalidInput:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.ErrDataUnavailable:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
