package storage

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
)

const pebbleKeyPrefix = "doc/"

type PebbleDocuments struct {
	db *pebble.DB
}

func OpenPebbleDocuments(dir string) (*PebbleDocuments, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleDocuments{db: db}, nil
}

func (d *PebbleDocuments) Load(_ context.Context, name string) ([]byte, error) {
	val, closer, err := d.db.Get(pebbleKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), val...), nil
}

func (d *PebbleDocuments) Save(_ context.Context, name string, data []byte) error {
	return d.db.Set(pebbleKey(name), data, pebble.Sync)
}

func (d *PebbleDocuments) Ping(context.Context) error {
	_, closer, err := d.db.Get([]byte(pebbleKeyPrefix))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return closer.Close()
}

func (d *PebbleDocuments) Close() error {
	return d.db.Close()
}

func pebbleKey(name string) []byte {
	return []byte(pebbleKeyPrefix + name)
}
