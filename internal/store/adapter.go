package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Load for a key that was never saved.
var ErrKeyNotFound = errors.New("store: key not found")

// CodecError reports a value that could not be encoded or decoded.
type CodecError struct {
	Op  string // "encode" or "decode"
	Key string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Adapter is a key/value persistence backend holding JSON documents.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Get retrieves a value by key. Returns nil, false, nil if not found.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)

	// Set stores a value by key.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes a key. No error if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys in sorted order.
	Keys(ctx context.Context) ([]string, error)
}

// Load reads the value at key and decodes it into T.
// A missing key returns ErrKeyNotFound.
func Load[T any](ctx context.Context, a Adapter, key string) (T, error) {
	var v T
	raw, ok, err := a.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrKeyNotFound
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &CodecError{Op: "decode", Key: key, Err: err}
	}
	return v, nil
}

// Save encodes v and stores it at key.
func Save[T any](ctx context.Context, a Adapter, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &CodecError{Op: "encode", Key: key, Err: err}
	}
	return a.Set(ctx, key, raw)
}
