// Package api exposes row services over HTTP using the same envelope format
// remote.HTTPSource consumes, so one rowcache instance can serve as the
// upstream of another.
package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adeilh/rowcache/dataservice"
	"github.com/adeilh/rowcache/httpx"
	"github.com/adeilh/rowcache/result"
)

const defaultLimit = 20

// Rows is the read surface of a dataservice.Service.
type Rows[T any] interface {
	FindRows(ctx context.Context, offset, limit int) (result.List[T], error)
	GetRow(ctx context.Context, id int64) (result.Result[T], error)
}

// Evicter is implemented by services that can drop a cached row.
type Evicter interface {
	Evict(id int64) (bool, error)
}

// Register mounts GET prefix and GET prefix/:id. When svc also implements
// Evicter, DELETE prefix/:id/cache drops the cached copy.
func Register[T any](e *httpx.Echo, prefix string, svc Rows[T]) {
	r := httpx.NewRouter(e, prefix)
	r.GET("", listHandler(svc)).GET("/:id", rowHandler(svc))
	if ev, ok := svc.(Evicter); ok {
		r.DELETE("/:id/cache", evictHandler(ev))
	}
}

// RegisterOps mounts the liveness probe and the metrics endpoint.
func RegisterOps(e *httpx.Echo, gatherer prometheus.Gatherer) {
	e.GET("/healthz", func(c httpx.Context) error {
		return c.JSON(httpx.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		e.GET("/metrics", httpx.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

func listHandler[T any](svc Rows[T]) httpx.HandlerFunc {
	return func(c httpx.Context) error {
		offset, err := intParam(c.QueryParam("offset"), 0)
		if err != nil {
			return httpx.HTTPError(httpx.StatusBadRequest, "offset must be an integer")
		}
		limit, err := intParam(c.QueryParam("limit"), defaultLimit)
		if err != nil {
			return httpx.HTTPError(httpx.StatusBadRequest, "limit must be an integer")
		}
		page, err := svc.FindRows(c.Request().Context(), offset, limit)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(httpx.StatusOK, page)
	}
}

func rowHandler[T any](svc Rows[T]) httpx.HandlerFunc {
	return func(c httpx.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return httpx.HTTPError(httpx.StatusBadRequest, "id must be an integer")
		}
		row, err := svc.GetRow(c.Request().Context(), id)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(httpx.StatusOK, row)
	}
}

func evictHandler(ev Evicter) httpx.HandlerFunc {
	return func(c httpx.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return httpx.HTTPError(httpx.StatusBadRequest, "id must be an integer")
		}
		ok, err := ev.Evict(id)
		if err != nil {
			return serviceError(err)
		}
		if !ok {
			return httpx.HTTPError(httpx.StatusServiceUnavailable, "cache entry not removed")
		}
		return c.NoContent(httpx.StatusNoContent)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func serviceError(err error) error {
	if errors.Is(err, dataservice.ErrInvalidWindow) {
		return httpx.HTTPError(httpx.StatusBadRequest, err.Error())
	}
	return httpx.HTTPError(httpx.StatusServiceUnavailable, err.Error())
}
