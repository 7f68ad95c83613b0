package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileDocuments keeps each record in its own JSON file under Dir. Saves go
// through a temp file and rename so a crash never leaves a torn record.
type FileDocuments struct {
	Dir   string
	Files map[string]string
}

func NewFileDocuments(dir string, files map[string]string) (*FileDocuments, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileDocuments{Dir: dir, Files: files}, nil
}

func (d *FileDocuments) path(name string) string {
	if f, ok := d.Files[name]; ok && f != "" {
		if filepath.IsAbs(f) {
			return f
		}
		return filepath.Join(d.Dir, f)
	}
	return filepath.Join(d.Dir, name+".json")
}

func (d *FileDocuments) Load(_ context.Context, name string) ([]byte, error) {
	b, err := os.ReadFile(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return b, err
}

func (d *FileDocuments) Save(_ context.Context, name string, data []byte) error {
	target := d.path(name)

	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (d *FileDocuments) Ping(context.Context) error {
	_, err := os.Stat(d.Dir)
	return err
}

func (d *FileDocuments) Close() error { return nil }
