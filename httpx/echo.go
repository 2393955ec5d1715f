// Package httpx wraps echo for serving and resty for calling JSON HTTP APIs.
package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Context aliases echo.Context so route code only imports httpx.
type Context = echo.Context

type HandlerFunc = echo.HandlerFunc

type MiddlewareFunc = echo.MiddlewareFunc

// Echo wraps the router handed to route registrars.
type Echo struct{ *echo.Echo }

func newEcho() *Echo { return &Echo{echo.New()} }

// GET registers a GET route.
func (e *Echo) GET(path string, h HandlerFunc, mw ...MiddlewareFunc) {
	e.Echo.GET(path, h, mw...)
}

// DELETE registers a DELETE route.
func (e *Echo) DELETE(path string, h HandlerFunc, mw ...MiddlewareFunc) {
	e.Echo.DELETE(path, h, mw...)
}

// WrapHandler mounts a net/http handler such as promhttp.
func WrapHandler(h http.Handler) HandlerFunc { return echo.WrapHandler(h) }

// HTTPError builds an error the server renders as {"error": message}.
func HTTPError(code int, message any) error { return echo.NewHTTPError(code, message) }
