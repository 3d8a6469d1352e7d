package drive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/infrastructure/service/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type fakeDrive struct {
	mu      sync.Mutex
	created []string
	lists   int
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files"):
		f.lists++
		_ = json.NewEncoder(w).Encode(map[string]any{"files": []any{}})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/files"):
		body, _ := io.ReadAll(r.Body)
		var file drive.File
		_ = json.Unmarshal(body, &file)
		f.created = append(f.created, file.Name)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "id-" + file.Name, "name": file.Name})
	default:
		http.NotFound(w, r)
	}
}

func newTestStorage(t *testing.T, pinned map[outbound.StorageFolder]string) (*DriveStorage, *fakeDrive) {
	t.Helper()
	fake := &fakeDrive{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	log := logger.NewStructuredLogger(logger.LoggerConfig{Level: "error", Output: io.Discard})
	s, err := NewWithOptions(context.Background(), pinned, log,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return s, fake
}

func TestFolderIDCreatesHierarchyOnce(t *testing.T) {
	s, fake := newTestStorage(t, nil)

	id, err := s.folderID(context.Background(), outbound.FolderTaskFiles)
	require.NoError(t, err)
	assert.Equal(t, "id-Task Files", id)
	assert.Equal(t, []string{RootFolderName, "Task Files"}, fake.created)

	_, err = s.folderID(context.Background(), outbound.FolderTaskFiles)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.lists)

	_, err = s.folderID(context.Background(), outbound.FolderRemarkFiles)
	require.NoError(t, err)
	assert.Equal(t, []string{RootFolderName, "Task Files", "Remark Files"}, fake.created)
}

func TestFolderIDPinned(t *testing.T) {
	s, fake := newTestStorage(t, map[outbound.StorageFolder]string{outbound.FolderPosters: "posters-folder"})

	id, err := s.folderID(context.Background(), outbound.FolderPosters)
	require.NoError(t, err)
	assert.Equal(t, "posters-folder", id)
	assert.Empty(t, fake.created)
}

func TestDisabledStorage(t *testing.T) {
	_, err := DisabledStorage{}.Upload(context.Background(), outbound.FolderTaskFiles, outbound.FileUpload{Name: "a.pdf"})
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
}

func TestOAuthConfig(t *testing.T) {
	cfg := OAuthConfig("id", "secret", "http://localhost/cb")
	assert.Equal(t, []string{drive.DriveFileScope}, cfg.Scopes)
	assert.Contains(t, cfg.AuthCodeURL("state"), "client_id=id")
}

func TestStoredName(t *testing.T) {
	assert.True(t, strings.HasSuffix(storedName("report.pdf"), "-report.pdf"))
	assert.Equal(t, `it\'s`, escapeQuery("it's"))
}
