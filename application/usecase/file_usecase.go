package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"golang.org/x/sync/errgroup"
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/jpg":          true,
	"image/png":          true,
	"image/gif":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-excel":                                                  true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":                   true,
	"application/zip":              true,
	"application/x-rar-compressed": true,
	"video/mp4":                    true,
	"video/quicktime":              true,
	"video/x-msvideo":              true,
}

var allowedExtensions = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".txt": true,
	".zip": true, ".rar": true,
	".mp4": true, ".mov": true, ".avi": true,
}

// FileUseCase validates uploads and sends them to blob storage concurrently.
type FileUseCase struct {
	storage  outbound.FileStorage
	maxFiles int
	maxBytes int64
}

func NewFileUseCase(storage outbound.FileStorage, maxFiles int, maxBytes int64) *FileUseCase {
	return &FileUseCase{
		storage:  storage,
		maxFiles: maxFiles,
		maxBytes: maxBytes,
	}
}

func (uc *FileUseCase) MaxFiles() int { return uc.maxFiles }

func (uc *FileUseCase) MaxBytes() int64 { return uc.maxBytes }

// UploadAll uploads every file in parallel. The first failure cancels the
// remaining uploads; refs are returned in input order.
func (uc *FileUseCase) UploadAll(ctx context.Context, folder outbound.StorageFolder, files []outbound.FileUpload) ([]entity.FileRef, error) {
	if len(files) == 0 {
		return nil, apperror.Validation("No files uploaded")
	}
	if uc.maxFiles > 0 && len(files) > uc.maxFiles {
		return nil, apperror.New(apperror.KindValidation, apperror.ErrCodeTooManyFiles,
			fmt.Sprintf("At most %d files can be uploaded at once", uc.maxFiles), nil)
	}
	for _, f := range files {
		if err := uc.validate(f); err != nil {
			return nil, err
		}
	}

	refs := make([]entity.FileRef, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			ref, err := uc.storage.Upload(gctx, folder, f)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if appErr, ok := apperror.As(err); ok {
			return nil, appErr
		}
		return nil, apperror.FileStorage("failed to upload files", err)
	}

	return refs, nil
}

func (uc *FileUseCase) validate(f outbound.FileUpload) error {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !allowedExtensions[ext] || !allowedMimeTypes[strings.ToLower(f.MimeType)] {
		return apperror.New(apperror.KindValidation, apperror.ErrCodeUnsupportedFile,
			"Only images, documents, archives, and videos are allowed", nil).WithField(f.Name, f.MimeType)
	}
	if uc.maxBytes > 0 && f.Size > uc.maxBytes {
		return apperror.New(apperror.KindValidation, apperror.ErrCodeUnsupportedFile,
			"File is too large", nil).WithField(f.Name, fmt.Sprintf("exceeds %d bytes", uc.maxBytes))
	}
	return nil
}
