package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// InlineStore encodes media as a data URL. Used for local development without an object store.
type InlineStore struct{}

func NewInlineStore() *InlineStore { return &InlineStore{} }

func (s *InlineStore) Name() string { return "inline" }

func (s *InlineStore) Upload(_ context.Context, _ string, obj Object) (string, error) {
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", obj.Filename, err)
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
