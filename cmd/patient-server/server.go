package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
	"github.com/ywu256/MAPD713-Project/internal/platform/middleware"
)

type routeRegistrar interface {
	RegisterRoutes(g *echo.Group)
}

// newEcho builds the HTTP server with the global middleware chain, the
// health endpoints and every domain route.
func newEcho(logger zerolog.Logger, bodyLimit string, dbHealth echo.HandlerFunc, registrars ...routeRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	// Logger sits outside Recovery so panicked requests are still logged.
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", dbHealth)

	root := e.Group("")
	for _, r := range registrars {
		r.RegisterRoutes(root)
	}
	return e
}
