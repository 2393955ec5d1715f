// Package remote defines the upstream a DataService falls back to and an
// HTTP implementation of it.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/adeilh/rowcache/result"
)

// ErrTransport marks a failure to obtain an envelope from the upstream at
// all, as opposed to a domain error carried inside one.
var ErrTransport = errors.New("remote: transport failure")

// Source fetches rows from the upstream. Implementations must honor ctx and
// report failures as errors wrapping ErrTransport.
type Source[T any] interface {
	FetchList(ctx context.Context, offset, limit int) (result.List[T], error)
	FetchByID(ctx context.Context, id int64) (result.Result[T], error)
}

// Funcs adapts plain functions into a Source.
type Funcs[T any] struct {
	List func(ctx context.Context, offset, limit int) (result.List[T], error)
	ByID func(ctx context.Context, id int64) (result.Result[T], error)
}

func (f Funcs[T]) FetchList(ctx context.Context, offset, limit int) (result.List[T], error) {
	if f.List == nil {
		return result.List[T]{}, fmt.Errorf("%w: list not supported", ErrTransport)
	}
	return f.List(ctx, offset, limit)
}

func (f Funcs[T]) FetchByID(ctx context.Context, id int64) (result.Result[T], error) {
	if f.ByID == nil {
		return result.Result[T]{}, fmt.Errorf("%w: by-id not supported", ErrTransport)
	}
	return f.ByID(ctx, id)
}
