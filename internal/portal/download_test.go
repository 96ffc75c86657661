package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stubFileContent = []byte("%PDF-1.4 contenuto del modulo")

// newStubDownloadServer serves attachment downloads: file 900 succeeds with a
// Content-Disposition name, file 901 has no disposition header and file 999
// always fails
func newStubDownloadServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	router.Get(pathBoard, requireSessionCookies(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("action") != "file_download" {
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		switch request.URL.Query().Get("com_id") {
		case "900":
			writer.Header().Set("Content-Disposition", `attachment; filename="modulo.pdf"`)
			writer.Write(stubFileContent)
		case "901":
			writer.Write(stubFileContent)
		default:
			writer.WriteHeader(http.StatusInternalServerError)
		}
	}))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestDownload(t *testing.T) {
	server := newStubDownloadServer(t)
	session := NewSessionFromToken(newTestClient(t, server.URL), stubToken, stubUsername)
	dir := t.TempDir()

	path, err := session.Download(context.Background(), Attachment{NoticeID: "101", FileID: "900"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "modulo.pdf"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stubFileContent, content)
}

func TestDownloadFallbackFilename(t *testing.T) {
	server := newStubDownloadServer(t)
	session := NewSessionFromToken(newTestClient(t, server.URL), stubToken, stubUsername)
	dir := t.TempDir()

	path, err := session.Download(context.Background(), Attachment{NoticeID: "101", FileID: "901"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "allegato_901"), path)
}

func TestDownloadCreatesTargetDir(t *testing.T) {
	server := newStubDownloadServer(t)
	session := NewSessionFromToken(newTestClient(t, server.URL), stubToken, stubUsername)
	dir := filepath.Join(t.TempDir(), "nested", "target")

	_, err := session.Download(context.Background(), Attachment{NoticeID: "101", FileID: "900"}, dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "modulo.pdf"))
	assert.NoError(t, err)
}

func TestDownloadFailureLeavesNoArtifact(t *testing.T) {
	server := newStubDownloadServer(t)
	session := NewSessionFromToken(newTestClient(t, server.URL), stubToken, stubUsername)
	dir := t.TempDir()

	_, err := session.Download(context.Background(), Attachment{NoticeID: "101", FileID: "999"}, dir)
	require.Error(t, err)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a failed download must not leave files behind")
}

func TestDownloadAllReportsPartialFailure(t *testing.T) {
	server := newStubDownloadServer(t)
	session := NewSessionFromToken(newTestClient(t, server.URL), stubToken, stubUsername)
	dir := t.TempDir()

	attachments := []Attachment{
		{NoticeID: "101", FileID: "900"},
		{NoticeID: "101", FileID: "999"},
		{NoticeID: "101", FileID: "901"},
	}
	results, err := session.DownloadAll(context.Background(), attachments, dir)
	require.Error(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, filepath.Join(dir, "modulo.pdf"), results[0].Path)
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[1].Path)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, filepath.Join(dir, "allegato_901"), results[2].Path)
}

func TestDownloadBytes(t *testing.T) {
	server := newStubDownloadServer(t)
	session := NewSessionFromToken(newTestClient(t, server.URL), stubToken, stubUsername)

	name, content, err := session.DownloadBytes(context.Background(), Attachment{NoticeID: "101", FileID: "900"})
	require.NoError(t, err)
	assert.Equal(t, "modulo.pdf", name)
	assert.Equal(t, stubFileContent, content)
}

func TestDownloadAllBytes(t *testing.T) {
	server := newStubDownloadServer(t)
	session := NewSessionFromToken(newTestClient(t, server.URL), stubToken, stubUsername)

	files, err := session.DownloadAllBytes(context.Background(), []Attachment{
		{NoticeID: "101", FileID: "900"},
		{NoticeID: "101", FileID: "901"},
	})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "modulo.pdf", files[0].Name)
	assert.Equal(t, "allegato_901", files[1].Name)
	assert.Equal(t, stubFileContent, files[0].Content)
}

func TestAttachmentFilename(t *testing.T) {
	assert.Equal(t, "modulo.pdf", attachmentFilename(`attachment; filename="modulo.pdf"`, "900"))
	assert.Equal(t, "modulo.pdf", attachmentFilename(`attachment; filename=modulo.pdf`, "900"))
	assert.Equal(t, "modulo.pdf", attachmentFilename(`attachment; filename=modulo.pdf; size=123`, "900"))
	assert.Equal(t, "allegato_900", attachmentFilename("", "900"))
	assert.Equal(t, "allegato_900", attachmentFilename("inline", "900"))
}
