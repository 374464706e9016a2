// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alrehab/agriexport-go/internal/imaging"
	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/store"
	"github.com/alrehab/agriexport-go/internal/util"
)

// Upload limits
const (
	MaxUploadSize    = 5 * 1024 * 1024 // 5MB
	DefaultUploadDir = "./uploads"

	sniffLen = 512
)

var (
	// ErrUploadTooLarge is returned when the upload exceeds MaxUploadSize.
	ErrUploadTooLarge = errors.New("file exceeds the 5MB upload limit")

	// ErrUnsupportedType is returned when the sniffed MIME type is not an
	// allowed image format.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// UploadService handles image uploads for products and certificates.
type UploadService struct {
	db        *sql.DB
	processor *imaging.Processor
	events    *EventService
	uploadDir string
}

// NewUploadService creates a new upload service.
func NewUploadService(db *sql.DB, uploadDir string) *UploadService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	return &UploadService{
		db:        db,
		processor: imaging.NewProcessor(uploadDir),
		events:    NewEventService(db),
		uploadDir: uploadDir,
	}
}

// Upload validates, processes and stores an uploaded image. The MIME type
// is sniffed from the file content, never trusted from the request.
func (s *UploadService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID int64) (*model.Media, error) {
	if header.Size > MaxUploadSize {
		return nil, ErrUploadTooLarge
	}

	// Sniff content type from the first bytes
	buf := make([]byte, sniffLen)
	n, err := file.Read(buf)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	mimeType := s.processor.DetectMimeType(buf[:n])
	if !model.IsSupportedUploadType(mimeType) {
		return nil, fmt.Errorf("file type %s is not allowed: %w", mimeType, ErrUnsupportedType)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewinding upload: %w", err)
	}

	fileUUID := uuid.New().String()

	filename, err := util.SanitizeFilename(sanitizeFilename(header.Filename))
	if err != nil {
		return nil, fmt.Errorf("invalid filename: %w", err)
	}

	processResult, err := s.processor.ProcessImage(file, fileUUID, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	variants, err := s.processor.CreateAllVariants(processResult.FilePath, fileUUID, filename)
	if err != nil {
		// Keep the original even if some variants failed
		_ = s.events.LogUploadEvent(ctx, model.EventLevelWarning,
			fmt.Sprintf("failed to create some variants for %s: %v", fileUUID, err), nil, "", nil)
	}

	thumbnail := sql.NullString{}
	for _, v := range variants {
		if v.Type == model.VariantThumbnail {
			thumbnail = sql.NullString{String: s.variantURL(model.VariantThumbnail, fileUUID, filename), Valid: true}
		}
	}

	queries := store.New(s.db)
	media, err := queries.CreateMedia(ctx, store.CreateMediaParams{
		UUID:       fileUUID,
		Filename:   filename,
		MimeType:   processResult.MimeType,
		Size:       processResult.Size,
		Width:      util.NullInt64FromValue(int64(processResult.Width)),
		Height:     util.NullInt64FromValue(int64(processResult.Height)),
		URL:        s.originalURL(fileUUID, filename),
		Thumbnail:  thumbnail,
		UploadedBy: userID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		// Clean up uploaded files on error
		_ = s.processor.DeleteMediaFiles(fileUUID)
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	return &media, nil
}

// Delete removes a media item and its files.
func (s *UploadService) Delete(ctx context.Context, mediaUUID string) error {
	queries := store.New(s.db)

	media, err := queries.GetMediaByUUID(ctx, mediaUUID)
	if err != nil {
		return fmt.Errorf("failed to get media: %w", err)
	}

	if err := queries.DeleteMedia(ctx, media.ID); err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	// Delete files from disk. DB record is already gone, so only log.
	if err := s.processor.DeleteMediaFiles(media.UUID); err != nil {
		_ = s.events.LogUploadEvent(ctx, model.EventLevelWarning,
			fmt.Sprintf("failed to delete files for media %s: %v", media.UUID, err), nil, "", nil)
	}

	return nil
}

func (s *UploadService) originalURL(uuid, filename string) string {
	return fmt.Sprintf("/uploads/originals/%s/%s", uuid, filename)
}

func (s *UploadService) variantURL(variant, uuid, filename string) string {
	return fmt.Sprintf("/uploads/%s/%s/%s", variant, uuid, filename)
}

func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)

	if filepath.Ext(filename) == "" {
		filename += ".jpg"
	}

	return filename
}
