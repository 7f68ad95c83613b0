package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend     string
	DataDir     string
	Files       map[string]string
	PebbleDir   string
	DatabaseURL string
}

func Open(ctx context.Context, opts Options) (Documents, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileDocuments(opts.DataDir, opts.Files)
	case BackendMemory:
		return NewMemDocuments(), nil
	case BackendPebble:
		dir := opts.PebbleDir
		if dir == "" {
			dir = filepath.Join(opts.DataDir, "pebble")
		}
		return OpenPebbleDocuments(dir)
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("storage %q requires a database url", opts.Backend)
		}
		return OpenPostgresDocuments(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
