package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFileUseCase_UploadAll(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps input order", func(t *testing.T) {
		storage := &mockFileStorage{}
		for _, name := range []string{"a.pdf", "b.docx", "c.mp4"} {
			storage.On("Upload", mock.Anything, outbound.FolderRemarkFiles, name).
				Return(entity.FileRef{FileID: name, URL: "https://drive/" + name}, nil)
		}
		uc := NewFileUseCase(storage, 5, 1<<20)

		refs, err := uc.UploadAll(ctx, outbound.FolderRemarkFiles, []outbound.FileUpload{
			{Name: "a.pdf", MimeType: "application/pdf"},
			{Name: "b.docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
			{Name: "c.mp4", MimeType: "video/mp4"},
		})
		require.NoError(t, err)
		require.Len(t, refs, 3)
		assert.Equal(t, "a.pdf", refs[0].FileID)
		assert.Equal(t, "c.mp4", refs[2].FileID)
	})

	t.Run("rejects disallowed type before uploading", func(t *testing.T) {
		storage := &mockFileStorage{}
		uc := NewFileUseCase(storage, 5, 1<<20)

		_, err := uc.UploadAll(ctx, outbound.FolderTaskFiles, []outbound.FileUpload{
			{Name: "run.exe", MimeType: "application/octet-stream"},
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.ErrCodeUnsupportedFile, appErr.Code)
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects oversize and too many", func(t *testing.T) {
		uc := NewFileUseCase(&mockFileStorage{}, 2, 10)

		_, err := uc.UploadAll(ctx, outbound.FolderTaskFiles, []outbound.FileUpload{{Name: "a.pdf", MimeType: "application/pdf", Size: 11}})
		assert.True(t, apperror.IsValidation(err))

		_, err = uc.UploadAll(ctx, outbound.FolderTaskFiles, make([]outbound.FileUpload, 3))
		appErr, _ := apperror.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperror.ErrCodeTooManyFiles, appErr.Code)

		_, err = uc.UploadAll(ctx, outbound.FolderTaskFiles, nil)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("storage failure becomes storage error", func(t *testing.T) {
		storage := &mockFileStorage{}
		storage.On("Upload", mock.Anything, outbound.FolderTaskFiles, "a.pdf").
			Return(entity.FileRef{}, errors.New("quota exceeded"))
		uc := NewFileUseCase(storage, 5, 1<<20)

		_, err := uc.UploadAll(ctx, outbound.FolderTaskFiles, []outbound.FileUpload{{Name: "a.pdf", MimeType: "application/pdf"}})
		assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
	})
}
