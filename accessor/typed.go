package accessor

// Getter is a statically typed read operation resolved from a Table.
type Getter[T any] struct {
	proxy  *Proxy
	prefix string
}

// NewGetter resolves op as a GET operation of table.
func NewGetter[T any](p *Proxy, table Table, op string) (Getter[T], error) {
	def, err := table.Lookup(op, Get)
	if err != nil {
		return Getter[T]{}, err
	}
	return Getter[T]{proxy: p, prefix: def.Prefix}, nil
}

// Get returns the stored value for args and whether one was found.
func (g Getter[T]) Get(args ...any) (T, bool, error) {
	var v T
	found, err := g.proxy.Get(g.prefix, &v, args...)
	if err != nil || !found {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

// Setter is a statically typed write operation resolved from a Table.
type Setter[T any] struct {
	proxy  *Proxy
	prefix string
}

func NewSetter[T any](p *Proxy, table Table, op string) (Setter[T], error) {
	def, err := table.Lookup(op, Set)
	if err != nil {
		return Setter[T]{}, err
	}
	return Setter[T]{proxy: p, prefix: def.Prefix}, nil
}

// Set stores value under the key derived from keyArgs.
func (s Setter[T]) Set(value T, keyArgs ...any) (bool, error) {
	return s.proxy.Set(s.prefix, withValue(keyArgs, value)...)
}

// Prepare encodes value for the key derived from keyArgs without storing it.
func (s Setter[T]) Prepare(value T, keyArgs ...any) (PendingWrite, error) {
	return s.proxy.Prepare(s.prefix, withValue(keyArgs, value)...)
}

func withValue(keyArgs []any, value any) []any {
	args := make([]any, 0, len(keyArgs)+1)
	args = append(args, keyArgs...)
	return append(args, value)
}

// Remover is a delete operation resolved from a Table.
type Remover struct {
	proxy  *Proxy
	prefix string
}

func NewRemover(p *Proxy, table Table, op string) (Remover, error) {
	def, err := table.Lookup(op, Remove)
	if err != nil {
		return Remover{}, err
	}
	return Remover{proxy: p, prefix: def.Prefix}, nil
}

func (r Remover) Remove(args ...any) (bool, error) {
	return r.proxy.Remove(r.prefix, args...)
}
