// Package accessor maps declared get/set operations onto a key/value store.
//
// Every cached entity is described by a Table of operation names to
// {prefix, kind} pairs. Keys are derived from the prefix and the call's
// arguments (see ReadKey and WriteKey) and values are stored in their codec
// text form.
package accessor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/adeilh/rowcache/codec"
)

var (
	ErrKeyDerivation    = errors.New("accessor: key derivation failed")
	ErrDecode           = errors.New("accessor: stored value does not decode")
	ErrEncode           = errors.New("accessor: value does not encode")
	ErrUnknownOperation = errors.New("accessor: unknown operation")
	ErrKindMismatch     = errors.New("accessor: operation kind mismatch")
)

// KeyValueStore is the persistence contract the proxy needs.
type KeyValueStore interface {
	Get(key, def string) string
	Put(key, value string) bool
	Remove(key string) bool
}

type Options struct {
	Codec  codec.Codec
	Logger *zap.Logger
}

type Option func(*Options)

// WithCodec replaces the default JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		if c != nil {
			o.Codec = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Proxy performs key derivation and encoding on behalf of declared
// operations.
type Proxy struct {
	store KeyValueStore
	codec codec.Codec
	log   *zap.Logger
}

func NewProxy(store KeyValueStore, opts ...Option) *Proxy {
	cfg := Options{Codec: codec.JSON{}, Logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Proxy{store: store, codec: cfg.Codec, log: cfg.Logger}
}

// Get decodes the value stored under the read key of (prefix, args) into
// target. It reports false with a nil error when nothing is stored.
func (p *Proxy) Get(prefix string, target any, args ...any) (bool, error) {
	key, err := ReadKey(prefix, args...)
	if err != nil {
		return false, err
	}
	raw := p.store.Get(key, "")
	if raw == "" {
		return false, nil
	}
	if err := p.codec.Decode(raw, target); err != nil {
		p.log.Debug("cached value does not decode", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("%w: key %q: %v", ErrDecode, key, err)
	}
	return true, nil
}

// Set stores the last argument under the write key derived from the others.
// The boolean is the store's own result.
func (p *Proxy) Set(prefix string, args ...any) (bool, error) {
	w, err := p.Prepare(prefix, args...)
	if err != nil {
		return false, err
	}
	return w.Commit(), nil
}

// Prepare derives the write key and encodes the value now, leaving only the
// store call for Commit. The value may be mutated once Prepare returns.
func (p *Proxy) Prepare(prefix string, args ...any) (PendingWrite, error) {
	key, value, err := WriteKey(prefix, args...)
	if err != nil {
		return PendingWrite{}, err
	}
	text, err := p.codec.Encode(value)
	if err != nil {
		return PendingWrite{}, fmt.Errorf("%w: key %q: %v", ErrEncode, key, err)
	}
	return PendingWrite{store: p.store, Key: key, Text: text}, nil
}

// PendingWrite is an encoded value not yet handed to the store.
type PendingWrite struct {
	store KeyValueStore
	Key   string
	Text  string
}

// Commit stores the encoded text and reports the store's result.
func (w PendingWrite) Commit() bool {
	if w.store == nil {
		return false
	}
	return w.store.Put(w.Key, w.Text)
}

// Remove deletes the value stored under the read key of (prefix, args).
func (p *Proxy) Remove(prefix string, args ...any) (bool, error) {
	key, err := ReadKey(prefix, args...)
	if err != nil {
		return false, err
	}
	return p.store.Remove(key), nil
}
