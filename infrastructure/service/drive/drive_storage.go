package drive

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/infrastructure/service/logger"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	RootFolderName = "Curin Files"
	folderMimeType = "application/vnd.google-apps.folder"
	uploadFields   = "id,name,mimeType,size,createdTime,webViewLink,webContentLink"
)

var subFolderNames = map[outbound.StorageFolder]string{
	outbound.FolderTaskFiles:   "Task Files",
	outbound.FolderRemarkFiles: "Remark Files",
	outbound.FolderPosters:     "Event Posters",
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	RefreshToken string
	// FolderIDs pins folders by id; anything missing is found or created under RootFolderName.
	FolderIDs map[outbound.StorageFolder]string
}

// OAuthConfig is shared by the storage client and the consent bootstrap routes.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{drive.DriveFileScope},
		Endpoint:     google.Endpoint,
	}
}

type DriveStorage struct {
	files  *drive.Service
	logger logger.Logger

	mu        sync.Mutex
	folderIDs map[outbound.StorageFolder]string
	rootID    string
}

// NewDriveStorage authenticates with the stored refresh token.
func NewDriveStorage(ctx context.Context, cfg Config, log logger.Logger) (*DriveStorage, error) {
	oauthCfg := OAuthConfig(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL)
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	return NewWithOptions(ctx, cfg.FolderIDs, log, option.WithTokenSource(ts))
}

func NewWithOptions(ctx context.Context, folderIDs map[outbound.StorageFolder]string, log logger.Logger, opts ...option.ClientOption) (*DriveStorage, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}

	ids := make(map[outbound.StorageFolder]string, len(folderIDs))
	for k, v := range folderIDs {
		if v != "" {
			ids[k] = v
		}
	}

	return &DriveStorage{
		files:     svc,
		logger:    log,
		folderIDs: ids,
	}, nil
}

// Upload stores the file and makes it readable by link.
func (s *DriveStorage) Upload(ctx context.Context, folder outbound.StorageFolder, file outbound.FileUpload) (entity.FileRef, error) {
	parentID, err := s.folderID(ctx, folder)
	if err != nil {
		s.logger.Warn(ctx, "Could not resolve drive folder, uploading to root", map[string]interface{}{
			"folder": string(folder),
			"error":  err.Error(),
		})
	}

	name := storedName(file.Name)
	meta := &drive.File{Name: name, MimeType: file.MimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	created, err := s.files.Files.Create(meta).
		Media(file.Content, googleapi.ContentType(file.MimeType)).
		Fields(uploadFields).
		Context(ctx).
		Do()
	if err != nil {
		return entity.FileRef{}, apperror.FileStorage("failed to upload file to drive", err)
	}

	_, err = s.files.Permissions.Create(created.Id, &drive.Permission{Role: "reader", Type: "anyone"}).
		Context(ctx).
		Do()
	if err != nil {
		return entity.FileRef{}, apperror.FileStorage("failed to share uploaded file", err)
	}

	uploadedAt, err := time.Parse(time.RFC3339, created.CreatedTime)
	if err != nil {
		uploadedAt = time.Now().UTC()
	}
	size := created.Size
	if size == 0 {
		size = file.Size
	}

	return entity.FileRef{
		FileID:       created.Id,
		Filename:     created.Name,
		OriginalName: file.Name,
		MimeType:     file.MimeType,
		Size:         size,
		URL:          created.WebViewLink,
		DownloadURL:  created.WebContentLink,
		UploadedAt:   uploadedAt,
	}, nil
}

// folderID resolves the destination folder once and caches it.
func (s *DriveStorage) folderID(ctx context.Context, folder outbound.StorageFolder) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.folderIDs[folder]; ok {
		return id, nil
	}

	if s.rootID == "" {
		id, err := s.findOrCreateFolder(ctx, RootFolderName, "")
		if err != nil {
			return "", err
		}
		s.rootID = id
	}

	name, ok := subFolderNames[folder]
	if !ok {
		name = string(folder)
	}
	id, err := s.findOrCreateFolder(ctx, name, s.rootID)
	if err != nil {
		return "", err
	}
	s.folderIDs[folder] = id
	return id, nil
}

func (s *DriveStorage) findOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}

	list, err := s.files.Files.List().Q(query).Fields("files(id,name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to find folder %s: %w", name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	meta := &drive.File{Name: name, MimeType: folderMimeType}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	created, err := s.files.Files.Create(meta).Fields("id,name").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", name, err)
	}
	s.logger.Info(ctx, "Created drive folder", map[string]interface{}{"name": name, "id": created.Id})
	return created.Id, nil
}

func storedName(original string) string {
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], original)
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// DisabledStorage rejects uploads when Drive credentials are absent.
type DisabledStorage struct{}

func (DisabledStorage) Upload(context.Context, outbound.StorageFolder, outbound.FileUpload) (entity.FileRef, error) {
	return entity.FileRef{}, apperror.FileStorage("file storage is not configured", nil)
}
