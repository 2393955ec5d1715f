// Package codec converts typed payloads to and from their stored text form.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("codec: malformed payload")

// Codec serializes values to text and back.
type Codec interface {
	Encode(v any) (string, error)
	Decode(data string, v any) error
}

// JSON encodes values as JSON text. Unknown fields are ignored on decode and
// missing fields keep their zero value, so adding a field to a stored type
// stays readable against older blobs.
type JSON struct{}

func (JSON) Encode(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("codec: encode %T: %w", v, err)
	}
	return string(raw), nil
}

func (JSON) Decode(data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
