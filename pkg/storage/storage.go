// Package storage uploads user media and returns the public URL to store on documents.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Object is one uploaded file
type Object struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaStore persists media objects
type MediaStore interface {
	// Upload stores obj under folder and returns its public URL
	Upload(ctx context.Context, folder string, obj Object) (string, error)
	// Name identifies the backend in logs and metrics
	Name() string
}

// Config selects and configures a MediaStore
type Config struct {
	Kind      string // "inline" or "s3"
	Bucket    string
	Region    string
	Prefix    string
	CDNBase   string
	Endpoint  string
	AccessKey string
	SecretKey string
}

const (
	KindInline = "inline"
	KindS3     = "s3"
)

// New builds the media store named by cfg.Kind
func New(ctx context.Context, cfg Config) (MediaStore, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", KindInline:
		return NewInlineStore(), nil
	case KindS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown media store %q", cfg.Kind)
	}
}

// objectKey builds "<prefix>/<folder>/<uuid><ext>"
func objectKey(prefix, folder, filename string) string {
	name := uuid.New().String() + strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(prefix, "/"), strings.Trim(folder, "/"), name)
}
