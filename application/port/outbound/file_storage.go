package outbound

import (
	"context"
	"io"

	"github.com/fixora/taskhub/domain/entity"
)

// StorageFolder names a logical destination for uploads.
type StorageFolder string

const (
	FolderTaskFiles   StorageFolder = "tasks"
	FolderRemarkFiles StorageFolder = "remarks"
	FolderPosters     StorageFolder = "events"
)

type FileUpload struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

type FileStorage interface {
	Upload(ctx context.Context, folder StorageFolder, file FileUpload) (entity.FileRef, error)
}
