package accessor

import (
	"fmt"
	"sort"
)

// Kind selects how a declared operation derives its key and what it does
// with the store.
type Kind int

const (
	Get Kind = iota + 1
	Set
	Remove
)

func (k Kind) String() string {
	switch k {
	case Get:
		return "GET"
	case Set:
		return "SET"
	case Remove:
		return "REMOVE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Definition binds one logical operation to its key namespace.
type Definition struct {
	Prefix string
	Kind   Kind
}

// Table maps operation names to their definitions. It is the single place
// where cache key namespaces are declared.
type Table map[string]Definition

// Validate rejects empty prefixes, unknown kinds and two distinct operations
// declaring the same prefix for the same kind.
func (t Table) Validate() error {
	type slot struct {
		prefix string
		kind   Kind
	}
	owners := make(map[slot]string, len(t))
	for _, op := range t.names() {
		def := t[op]
		if def.Prefix == "" {
			return fmt.Errorf("%w: operation %q has an empty prefix", ErrKeyDerivation, op)
		}
		if def.Kind < Get || def.Kind > Remove {
			return fmt.Errorf("accessor: operation %q has unknown kind %v", op, def.Kind)
		}
		s := slot{def.Prefix, def.Kind}
		if other, dup := owners[s]; dup {
			return fmt.Errorf("accessor: operations %q and %q both declare %s %q", other, op, def.Kind, def.Prefix)
		}
		owners[s] = op
	}
	return nil
}

// Lookup returns the definition of op and checks it has the expected kind.
func (t Table) Lookup(op string, kind Kind) (Definition, error) {
	def, ok := t[op]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	if def.Kind != kind {
		return Definition{}, fmt.Errorf("%w: %q is %s, want %s", ErrKindMismatch, op, def.Kind, kind)
	}
	return def, nil
}

func (t Table) names() []string {
	names := make([]string, 0, len(t))
	for op := range t {
		names = append(names, op)
	}
	sort.Strings(names)
	return names
}
