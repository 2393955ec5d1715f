package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/adeilh/rowcache/httpx"
	"github.com/adeilh/rowcache/result"
)

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	ListPath        string
	ItemPath        string
	BreakerName     string
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Logger          *zap.Logger
}

type HTTPOption func(*HTTPOptions)

// WithPaths overrides the list and item endpoints. The item path receives
// "/{id}" appended.
func WithPaths(list, item string) HTTPOption {
	return func(o *HTTPOptions) {
		if list != "" {
			o.ListPath = list
		}
		if item != "" {
			o.ItemPath = item
		}
	}
}

// WithBreaker opens the circuit after failures consecutive transport errors
// and probes again after cooldown.
func WithBreaker(name string, failures uint32, cooldown time.Duration) HTTPOption {
	return func(o *HTTPOptions) {
		if name != "" {
			o.BreakerName = name
		}
		if failures > 0 {
			o.BreakerFailures = failures
		}
		if cooldown > 0 {
			o.BreakerCooldown = cooldown
		}
	}
}

func WithLogger(l *zap.Logger) HTTPOption {
	return func(o *HTTPOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

func defaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		ListPath:        "/rows",
		ItemPath:        "/rows",
		BreakerName:     "remote",
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
		Logger:          zap.NewNop(),
	}
}

// HTTPSource fetches envelopes from a JSON HTTP upstream:
//
//	GET {ListPath}?offset=N&limit=M -> result.List[T]
//	GET {ItemPath}/{id}             -> result.Result[T]
type HTTPSource[T any] struct {
	client   *httpx.Client
	listPath string
	itemPath string
	breaker  *gobreaker.CircuitBreaker[struct{}]
}

func NewHTTPSource[T any](client *httpx.Client, opts ...HTTPOption) *HTTPSource[T] {
	cfg := defaultHTTPOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	log := cfg.Logger
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("remote circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &HTTPSource[T]{
		client:   client,
		listPath: cfg.ListPath,
		itemPath: strings.TrimSuffix(cfg.ItemPath, "/"),
		breaker:  breaker,
	}
}

func (s *HTTPSource[T]) FetchList(ctx context.Context, offset, limit int) (result.List[T], error) {
	var out result.List[T]
	err := s.call(func() error {
		return s.client.GetJSON(ctx, s.listPath, map[string]string{
			"offset": strconv.Itoa(offset),
			"limit":  strconv.Itoa(limit),
		}, &out)
	})
	if err != nil {
		return result.List[T]{}, err
	}
	return out, nil
}

func (s *HTTPSource[T]) FetchByID(ctx context.Context, id int64) (result.Result[T], error) {
	var out result.Result[T]
	err := s.call(func() error {
		return s.client.GetJSON(ctx, s.itemPath+"/"+strconv.FormatInt(id, 10), nil, &out)
	})
	if err != nil {
		return result.Result[T]{}, err
	}
	return out, nil
}

// State reports the circuit breaker state.
func (s *HTTPSource[T]) State() gobreaker.State {
	return s.breaker.State()
}

func (s *HTTPSource[T]) call(fn func() error) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}
