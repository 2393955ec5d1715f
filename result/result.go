// Package result holds the envelopes returned by both the cache and the
// remote paths, so callers never need to know where a response came from.
package result

import (
	"errors"
	"fmt"
)

var ErrWindow = errors.New("result: list window out of range")

// Error is a domain failure reported inside an envelope.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("result: code %d", e.Code)
	}
	return fmt.Sprintf("result: code %d: %s", e.Code, e.Message)
}

// Result carries one payload. Data is meaningful only when Code is zero.
type Result[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Success wraps a payload.
func Success[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

// Failure builds an envelope for a domain error.
func Failure[T any](code int, message string) Result[T] {
	return Result[T]{Code: code, Message: message}
}

func (r Result[T]) OK() bool { return r.Code == 0 }

// Err returns the domain error carried by r, or nil.
func (r Result[T]) Err() error {
	if r.Code == 0 {
		return nil
	}
	return &Error{Code: r.Code, Message: r.Message}
}

// List carries one window of rows. Total is the server-reported row count;
// zero means unknown.
type List[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Items   []T    `json:"items"`
	Total   int    `json:"total"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

// Page wraps a successful window.
func Page[T any](items []T, total, offset, limit int) List[T] {
	return List[T]{Items: items, Total: total, Offset: offset, Limit: limit}
}

// ListFailure builds a list envelope for a domain error.
func ListFailure[T any](code int, message string) List[T] {
	return List[T]{Code: code, Message: message}
}

func (l List[T]) OK() bool { return l.Code == 0 }

func (l List[T]) Err() error {
	if l.Code == 0 {
		return nil
	}
	return &Error{Code: l.Code, Message: l.Message}
}

// CheckWindow reports whether Items fits the served window.
func (l List[T]) CheckWindow() error {
	n := len(l.Items)
	switch {
	case l.Offset < 0 || l.Limit < 0:
		return fmt.Errorf("%w: offset %d limit %d", ErrWindow, l.Offset, l.Limit)
	case n > l.Limit:
		return fmt.Errorf("%w: %d items exceed limit %d", ErrWindow, n, l.Limit)
	case l.Total > 0 && l.Offset+n > l.Total:
		return fmt.Errorf("%w: offset %d + %d items exceed total %d", ErrWindow, l.Offset, n, l.Total)
	}
	return nil
}
