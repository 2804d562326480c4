package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/anonto42/pingup/backend/pkg/storage"
)

// MediaStore records uploads and returns predictable URLs. Setting Err fails every upload.
type MediaStore struct {
	mu      sync.Mutex
	Uploads []string
	Err     error
}

func (m *MediaStore) Name() string { return "test" }

func (m *MediaStore) Upload(_ context.Context, folder string, obj storage.Object) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if obj.Body != nil {
		_, _ = io.Copy(io.Discard, obj.Body)
	}
	m.Uploads = append(m.Uploads, folder+"/"+obj.Filename)
	return fmt.Sprintf("https://cdn.test/%s/%s", folder, obj.Filename), nil
}

// Image builds a small upload with the given name and MIME type
func Image(name, contentType string) storage.Object {
	return storage.Object{Filename: name, ContentType: contentType, Size: 3, Body: strings.NewReader("img")}
}
