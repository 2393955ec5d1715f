package httpx

import "github.com/labstack/echo/v4"

// Router registers routes under a shared path prefix.
type Router struct {
	group *echo.Group
}

func NewRouter(e *Echo, prefix string, mw ...MiddlewareFunc) *Router {
	if e == nil || e.Echo == nil {
		return &Router{}
	}
	return &Router{group: e.Group(prefix, mw...)}
}

func (r *Router) GET(path string, h HandlerFunc, mw ...MiddlewareFunc) *Router {
	return r.add(echo.GET, path, h, mw)
}

func (r *Router) DELETE(path string, h HandlerFunc, mw ...MiddlewareFunc) *Router {
	return r.add(echo.DELETE, path, h, mw)
}

func (r *Router) add(method, path string, h HandlerFunc, mw []MiddlewareFunc) *Router {
	if r.group != nil && h != nil {
		r.group.Add(method, path, h, mw...)
	}
	return r
}
