package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is a typed JSON view over one named document.
type Record[T any] struct {
	docs Documents
	name string
}

func NewRecord[T any](docs Documents, name string) *Record[T] {
	return &Record[T]{docs: docs, name: name}
}

func (r *Record[T]) Name() string { return r.name }

// Read returns found=false with a zero T when the document is absent.
func (r *Record[T]) Read(ctx context.Context) (v T, found bool, err error) {
	raw, err := r.docs.Load(ctx, r.name)
	if errors.Is(err, ErrNotExist) {
		return v, false, nil
	}
	if err != nil {
		return v, false, unavailable("read "+r.name, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, unavailable("decode "+r.name, err)
	}
	return v, true, nil
}

func (r *Record[T]) Write(ctx context.Context, v T) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return unavailable("encode "+r.name, err)
	}
	if err := r.docs.Save(ctx, r.name, raw); err != nil {
		return unavailable("write "+r.name, err)
	}
	return nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
