// Package dataservice decides, per request, whether rows are served from the
// local cache or the remote source.
//
// List queries prefer the cache: the first window (offset 0) is read from the
// cache and only fetched remotely when the cached copy is missing, malformed
// or carries a domain error. Later windows always go to the remote. By-id
// queries prefer the remote and fall back to the cached row when the remote
// fails. Every successful remote fetch is written back to the cache in the
// background.
package dataservice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/adeilh/rowcache/accessor"
	"github.com/adeilh/rowcache/remote"
	"github.com/adeilh/rowcache/result"
)

var (
	ErrInvalidWindow = errors.New("dataservice: invalid window")
	ErrExhausted     = errors.New("dataservice: no source produced a result")
	ErrNotCached     = errors.New("dataservice: no cached value")
)

// Ops names the accessor table operations a Service uses. RowRemove is
// optional.
type Ops struct {
	PageGet   string
	PageSet   string
	RowGet    string
	RowSet    string
	RowRemove string
}

type Options struct {
	Logger  *zap.Logger
	Metrics *Metrics
}

type Option func(*Options)

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// Service serves one entity type. It shares, but does not own, the proxy's
// store and the remote source.
type Service[T any] struct {
	source    remote.Source[T]
	pageGet   accessor.Getter[result.List[T]]
	pageSet   accessor.Setter[result.List[T]]
	rowGet    accessor.Getter[result.Result[T]]
	rowSet    accessor.Setter[result.Result[T]]
	rowRemove *accessor.Remover

	log     *zap.Logger
	metrics *Metrics
	pending sync.WaitGroup
}

// New validates table and resolves every operation named in ops.
func New[T any](proxy *accessor.Proxy, table accessor.Table, ops Ops, source remote.Source[T], opts ...Option) (*Service[T], error) {
	if proxy == nil || source == nil {
		return nil, errors.New("dataservice: proxy and source are required")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	cfg := Options{Logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	s := &Service[T]{source: source, log: cfg.Logger, metrics: cfg.Metrics}
	var err error
	if s.pageGet, err = accessor.NewGetter[result.List[T]](proxy, table, ops.PageGet); err != nil {
		return nil, err
	}
	if s.pageSet, err = accessor.NewSetter[result.List[T]](proxy, table, ops.PageSet); err != nil {
		return nil, err
	}
	if s.rowGet, err = accessor.NewGetter[result.Result[T]](proxy, table, ops.RowGet); err != nil {
		return nil, err
	}
	if s.rowSet, err = accessor.NewSetter[result.Result[T]](proxy, table, ops.RowSet); err != nil {
		return nil, err
	}
	if ops.RowRemove != "" {
		remover, err := accessor.NewRemover(proxy, table, ops.RowRemove)
		if err != nil {
			return nil, err
		}
		s.rowRemove = &remover
	}
	return s, nil
}

// FindRows returns one window of rows.
//
// A non-nil error means no envelope was produced; an envelope carrying a
// domain error is returned as is.
func (s *Service[T]) FindRows(ctx context.Context, offset, limit int) (result.List[T], error) {
	if offset < 0 || limit <= 0 {
		return result.List[T]{}, fmt.Errorf("%w: offset %d limit %d", ErrInvalidWindow, offset, limit)
	}
	if offset != 0 {
		return s.fetchList(ctx, offset, limit, nil)
	}

	cached, err := s.cachedPage(offset, limit)
	if err == nil {
		s.log.Debug("serving rows from cache", zap.Int("offset", offset), zap.Int("limit", limit))
		return cached, nil
	}
	if errors.Is(err, accessor.ErrKeyDerivation) {
		return result.List[T]{}, err
	}
	s.metrics.fallback(queryList, "remote")
	s.log.Debug("cached rows unusable, fetching remote",
		zap.Int("offset", offset), zap.Int("limit", limit), zap.Error(err))
	return s.fetchList(ctx, offset, limit, err)
}

// GetRow returns the row with the given id, preferring the remote copy.
func (s *Service[T]) GetRow(ctx context.Context, id int64) (result.Result[T], error) {
	res, err := s.source.FetchByID(ctx, id)
	switch {
	case err != nil:
		s.metrics.remoteFetch(queryRow, "transport_error")
	case !res.OK():
		s.metrics.remoteFetch(queryRow, "domain_error")
		err = res.Err()
	default:
		s.metrics.remoteFetch(queryRow, "ok")
		s.writeBack(queryRow)(s.rowSet.Prepare(res, id))
		s.log.Debug("serving row from remote", zap.Int64("id", id))
		return res, nil
	}

	s.metrics.fallback(queryRow, "cache")
	s.log.Warn("remote row fetch failed, falling back to cache", zap.Int64("id", id), zap.Error(err))

	cached, found, cacheErr := s.rowGet.Get(id)
	switch {
	case cacheErr != nil:
		s.metrics.cacheRead(queryRow, cacheOutcome(cacheErr))
		return result.Result[T]{}, exhausted(err, cacheErr)
	case !found:
		s.metrics.cacheRead(queryRow, "miss")
		return result.Result[T]{}, exhausted(err, ErrNotCached)
	case !cached.OK():
		s.metrics.cacheRead(queryRow, "domain_error")
	default:
		s.metrics.cacheRead(queryRow, "hit")
	}
	s.log.Debug("serving row from cache", zap.Int64("id", id))
	return cached, nil
}

// Evict removes the cached copy of a row.
func (s *Service[T]) Evict(id int64) (bool, error) {
	if s.rowRemove == nil {
		return false, fmt.Errorf("%w: no remove operation configured", accessor.ErrUnknownOperation)
	}
	return s.rowRemove.Remove(id)
}

// Wait blocks until every scheduled write-back has finished.
func (s *Service[T]) Wait() {
	s.pending.Wait()
}

func (s *Service[T]) cachedPage(offset, limit int) (result.List[T], error) {
	page, found, err := s.pageGet.Get(offset, ".", limit)
	if err != nil {
		s.metrics.cacheRead(queryList, cacheOutcome(err))
		return result.List[T]{}, err
	}
	if !found {
		s.metrics.cacheRead(queryList, "miss")
		return result.List[T]{}, ErrNotCached
	}
	if !page.OK() {
		s.metrics.cacheRead(queryList, "domain_error")
		return result.List[T]{}, page.Err()
	}
	if page.Offset != offset || page.Limit != limit {
		s.metrics.cacheRead(queryList, "invalid")
		return result.List[T]{}, fmt.Errorf("%w: cached window %d/%d, requested %d/%d",
			result.ErrWindow, page.Offset, page.Limit, offset, limit)
	}
	if err := page.CheckWindow(); err != nil {
		s.metrics.cacheRead(queryList, "invalid")
		return result.List[T]{}, err
	}
	s.metrics.cacheRead(queryList, "hit")
	return page, nil
}

func (s *Service[T]) fetchList(ctx context.Context, offset, limit int, prior error) (result.List[T], error) {
	page, err := s.source.FetchList(ctx, offset, limit)
	if err != nil {
		s.metrics.remoteFetch(queryList, "transport_error")
		s.log.Warn("remote rows fetch failed",
			zap.Int("offset", offset), zap.Int("limit", limit), zap.Error(err))
		return result.List[T]{}, exhausted(prior, err)
	}
	if !page.OK() {
		s.metrics.remoteFetch(queryList, "domain_error")
		s.log.Warn("remote rows returned a domain error",
			zap.Int("offset", offset), zap.Int("limit", limit), zap.Error(page.Err()))
		return page, nil
	}
	s.metrics.remoteFetch(queryList, "ok")
	s.writeBack(queryList)(s.pageSet.Prepare(page, offset, ".", limit))
	s.log.Debug("serving rows from remote", zap.Int("offset", offset), zap.Int("limit", limit))
	return page, nil
}

// writeBack returns a scheduler for one prepared write. The value is
// already encoded on the caller's goroutine, so the caller may mutate what it
// was handed; only the store call runs in the background. Failures are
// logged and counted only.
func (s *Service[T]) writeBack(query string) func(accessor.PendingWrite, error) {
	return func(w accessor.PendingWrite, err error) {
		if err != nil {
			s.metrics.writeBack(query, "failed")
			s.log.Warn("cache write-back not encoded", zap.String("query", query), zap.Error(err))
			return
		}
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			if !w.Commit() {
				s.metrics.writeBack(query, "failed")
				s.log.Warn("cache write-back not persisted", zap.String("query", query), zap.String("key", w.Key))
				return
			}
			s.metrics.writeBack(query, "ok")
		}()
	}
}

func cacheOutcome(err error) string {
	if errors.Is(err, accessor.ErrDecode) {
		return "decode_error"
	}
	return "error"
}

func exhausted(causes ...error) error {
	return fmt.Errorf("%w: %w", ErrExhausted, errors.Join(causes...))
}
