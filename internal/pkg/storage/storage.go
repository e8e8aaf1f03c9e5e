package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage is the object store used for generated artifacts such as
// ledger statements.
type Storage interface {
	// Put stores an object under key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Exists reports whether key is already stored.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the URL under which key is served.
	GetURL(key string) string
}

const (
	DriverS3    = "s3"
	DriverLocal = "local"
)

// Config selects and configures a storage backend.
type Config struct {
	Driver string

	S3Endpoint  string // empty for AWS, set for MinIO or R2
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	LocalDir string
	LocalURL string
}

// New builds the backend named by cfg.Driver.
func New(cfg Config) (Storage, error) {
	switch cfg.Driver {
	case DriverS3:
		return NewS3Storage(cfg)
	case DriverLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
