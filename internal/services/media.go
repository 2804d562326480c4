package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/metrics"
	"github.com/anonto42/pingup/backend/pkg/storage"
)

const (
	MaxImageBytes = 5 << 20
	MaxVideoBytes = 25 << 20

	FolderPosts    = "pingup/posts"
	FolderStories  = "pingup/stories"
	FolderMessages = "pingup/messages"
	FolderProfiles = "pingup/profiles"
	FolderCovers   = "pingup/covers"
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var videoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

func validateImage(obj storage.Object) error {
	if !imageTypes[strings.ToLower(obj.ContentType)] {
		return apperr.Validation("Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed.")
	}
	if obj.Size > MaxImageBytes {
		return apperr.Validation("File too large. Maximum size is 5MB.")
	}
	return nil
}

// validateStoryMedia accepts images and short videos
func validateStoryMedia(obj storage.Object) error {
	ct := strings.ToLower(obj.ContentType)
	if videoTypes[ct] {
		if obj.Size > MaxVideoBytes {
			return apperr.Validation("File too large. Maximum video size is 25MB.")
		}
		return nil
	}
	return validateImage(obj)
}

// uploader wraps a media store with metrics and error classification
type uploader struct {
	store storage.MediaStore
}

func (u uploader) upload(ctx context.Context, folder string, obj storage.Object) (string, error) {
	url, err := u.store.Upload(ctx, folder, obj)
	metrics.RecordUpload(u.store.Name(), err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("store", u.store.Name()).Str("folder", folder).Msg("media upload failed")
		return "", apperr.External("Failed to upload media", fmt.Errorf("upload %s: %w", obj.Filename, err))
	}
	return url, nil
}
