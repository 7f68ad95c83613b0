package storage

import (
	"context"
	"errors"
)

var (
	ErrNotExist    = errors.New("record does not exist")
	ErrUnavailable = errors.New("storage unavailable")
)

// Documents persists named records as whole snapshots. A Save replaces the
// previous snapshot for that name entirely; there are no partial writes.
type Documents interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}
