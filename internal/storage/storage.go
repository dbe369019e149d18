// Package storage persists exported mix files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

// ErrNotFound is returned when a stored object does not exist.
var ErrNotFound = errors.New("stored file not found")

// Object describes a stored file.
type Object struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store keeps exported files by name.
type Store interface {
	// Save writes data under name and returns its location.
	Save(ctx context.Context, name string, data []byte) (string, error)
	// Open returns a reader for the file and its size in bytes.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	Remove(ctx context.Context, name string) error
	// List returns all stored files.
	List(ctx context.Context) ([]Object, error)
}

// New creates the store selected by the configuration.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch config.StorageDriver(cfg.Storage.Driver) {
	case config.StorageLocal:
		return NewLocalStore(cfg.Audio.OutputPath), nil
	case config.StorageMinio:
		return NewMinioStore(ctx, &cfg.Storage)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
