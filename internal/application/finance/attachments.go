package finance

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landerp/backend/internal/domain/shared"
)

// allowedContentTypes lists what may be attached to a receipt or expense.
// SVG is excluded because it can carry script.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ObjectStorage is the part of the object store attachments need
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AttachmentConfig holds presigned URL lifetimes
type AttachmentConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultAttachmentConfig returns the default configuration
func DefaultAttachmentConfig() AttachmentConfig {
	return AttachmentConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// attachments issues presigned URLs for scanned receipts and vouchers
type attachments struct {
	storage ObjectStorage
	config  AttachmentConfig
}

func newAttachments(storage ObjectStorage, config AttachmentConfig) *attachments {
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = DefaultAttachmentConfig().UploadURLExpiry
	}
	if config.DownloadURLExpiry <= 0 {
		config.DownloadURLExpiry = DefaultAttachmentConfig().DownloadURLExpiry
	}
	return &attachments{storage: storage, config: config}
}

// storageKey builds "<kind>/<owner id>/<random>.<ext>"
func (a *attachments) storageKey(kind string, ownerID uuid.UUID, req AttachmentUploadRequest) (string, error) {
	if a.storage == nil {
		return "", shared.NewInvalidStateError("Attachment storage is not configured")
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !allowedContentTypes[contentType] {
		return "", shared.NewValidationError("Content type not allowed: " + req.ContentType)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(req.FileName)))
	return fmt.Sprintf("%s/%s/%s%s", kind, ownerID, uuid.New(), ext), nil
}

func (a *attachments) uploadURL(ctx context.Context, key, contentType string) (*AttachmentURLResponse, error) {
	url, expiresAt, err := a.storage.GenerateUploadURL(ctx, key, strings.ToLower(strings.TrimSpace(contentType)), a.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return &AttachmentURLResponse{URL: url, StorageKey: key, ExpiresAt: expiresAt}, nil
}

func (a *attachments) downloadURL(ctx context.Context, key string) (*AttachmentURLResponse, error) {
	if a.storage == nil {
		return nil, shared.NewInvalidStateError("Attachment storage is not configured")
	}
	if key == "" {
		return nil, shared.NewDomainError(shared.CodeNotFound, "No document is attached")
	}
	exists, err := a.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check attachment: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Attached document has not been uploaded")
	}
	url, expiresAt, err := a.storage.GenerateDownloadURL(ctx, key, a.config.DownloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return &AttachmentURLResponse{URL: url, StorageKey: key, ExpiresAt: expiresAt}, nil
}
