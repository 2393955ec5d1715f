package accessor

import (
	"fmt"
	"strings"
)

// ReadKey derives the storage key for a read: prefix followed by every
// argument in order.
func ReadKey(prefix string, args ...any) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty prefix", ErrKeyDerivation)
	}
	return join(prefix, args), nil
}

// WriteKey derives the storage key for a write. The last argument is the
// value to store and is not part of the key.
func WriteKey(prefix string, args ...any) (string, any, error) {
	if prefix == "" {
		return "", nil, fmt.Errorf("%w: empty prefix", ErrKeyDerivation)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: no value supplied for %q", ErrKeyDerivation, prefix)
	}
	last := len(args) - 1
	return join(prefix, args[:last]), args[last], nil
}

func join(prefix string, args []any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, arg := range args {
		fmt.Fprint(&b, arg)
	}
	return b.String()
}
