package media

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"

	"github.com/blogai/internal/db"
	"gorm.io/gorm"
)

// Library resolves form images into hosted URLs and keeps a ledger of uploads.
type Library struct {
	uploader Uploader
	db       *gorm.DB
}

// NewLibrary creates a Library. A nil gdb disables the ledger.
func NewLibrary(uploader Uploader, gdb *gorm.DB) *Library {
	return &Library{uploader: uploader, db: gdb}
}

// ResolveImage turns the image field of a form into the URL to save.
// Remote URLs and empty values pass through unchanged. A data URL is
// uploaded, and any failure is reported as ErrUploadFailed so the caller can
// abort the whole save.
func (l *Library) ResolveImage(ctx context.Context, owner, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "", nil
	case IsRemote(value):
		return value, nil
	case !IsDataURL(value):
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, ErrInvalidDataURL)
	}

	mimeType, data, err := DecodeDataURL(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if l.uploader == nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, ErrNotConfigured)
	}

	name := "image" + extensionFor(mimeType)
	asset, err := l.uploader.Upload(ctx, name, data)
	if err != nil {
		if errors.Is(err, ErrUploadFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	l.record(owner, name, asset)
	return asset.URL, nil
}

func (l *Library) record(owner, name string, asset Asset) {
	if l.db == nil {
		return
	}
	row := db.MediaAsset{
		URL:          asset.URL,
		PublicID:     asset.PublicID,
		Format:       asset.Format,
		Width:        asset.Width,
		Height:       asset.Height,
		Bytes:        asset.Bytes,
		OriginalName: name,
		OwnerEmail:   strings.ToLower(strings.TrimSpace(owner)),
	}
	if err := l.db.Create(&row).Error; err != nil {
		log.Printf("[MEDIA] failed to record upload %s: %v", asset.URL, err)
	}
}

// Recent lists the latest uploads of owner, newest first.
func (l *Library) Recent(owner string, limit int) ([]db.MediaAsset, error) {
	if l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 24
	}
	var assets []db.MediaAsset
	err := l.db.
		Where("owner_email = ?", strings.ToLower(strings.TrimSpace(owner))).
		Order("created_at desc").
		Limit(limit).
		Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
