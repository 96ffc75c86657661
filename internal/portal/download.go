package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DownloadResult represents the outcome of a single attachment download
// within a batch. Path is empty when Err is set.
type DownloadResult struct {
	Attachment Attachment
	Path       string
	Err        error
}

var dispositionFilename = regexp.MustCompile(`filename=([^;]+)`)

// attachmentFilename extracts the file name out of a Content-Disposition
// header, falling back to a name derived from the file ID
func attachmentFilename(disposition, fileID string) string {
	if match := dispositionFilename.FindStringSubmatch(disposition); match != nil {
		if name := strings.Trim(strings.TrimSpace(match[1]), `"`); name != "" {
			return name
		}
	}
	return "allegato_" + fileID
}

// fetchAttachment issues the download request and resolves the target file name
func (session *Session) fetchAttachment(ctx context.Context, attachment Attachment) (*http.Response, string, error) {
	query := url.Values{}
	query.Set("action", "file_download")
	query.Set("com_id", attachment.FileID)

	resp, err := session.client.get(ctx, pathBoard, query, session.cookies())
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", statusError("download attachment", resp.StatusCode)
	}
	return resp, attachmentFilename(resp.Header.Get("Content-Disposition"), attachment.FileID), nil
}

// Download streams a single attachment into dir, creating the directory if
// needed, and returns the path of the written file. The bytes are staged in a
// temporary file that is renamed into place only once the body has been fully
// copied, so a failed download leaves no partial artifact behind.
func (session *Session) Download(ctx context.Context, attachment Attachment, dir string) (string, error) {
	resp, name, err := session.fetchAttachment(ctx, attachment)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", wrap(KindIO, "download attachment", err)
	}

	target := filepath.Join(dir, name)
	temp := target + "." + uuid.NewString() + ".part"

	file, err := os.Create(temp)
	if err != nil {
		return "", wrap(KindIO, "download attachment", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(temp)
		return "", wrap(KindTransport, "download attachment", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temp)
		return "", wrap(KindIO, "download attachment", err)
	}
	if err := os.Rename(temp, target); err != nil {
		os.Remove(temp)
		return "", wrap(KindIO, "download attachment", err)
	}

	log.Info().Str("file", target).Msg("attachment downloaded")
	return target, nil
}

// DownloadAll downloads every given attachment into dir, sequentially and in
// input order. The batch is not atomic: it returns one result per attachment
// and a non-nil summary error whenever at least one download failed.
func (session *Session) DownloadAll(ctx context.Context, attachments []Attachment, dir string) ([]DownloadResult, error) {
	results := make([]DownloadResult, 0, len(attachments))
	failed := 0
	for _, attachment := range attachments {
		path, err := session.Download(ctx, attachment, dir)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("allegato_id", attachment.FileID).Msg("attachment download failed")
		}
		results = append(results, DownloadResult{Attachment: attachment, Path: path, Err: err})
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d attachment downloads failed", failed, len(attachments))
	}
	return results, nil
}

// DownloadBytes fetches a single attachment into memory and returns its file
// name together with its content
func (session *Session) DownloadBytes(ctx context.Context, attachment Attachment) (string, []byte, error) {
	resp, name, err := session.fetchAttachment(ctx, attachment)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, wrap(KindTransport, "download attachment", err)
	}
	return name, content, nil
}

// File represents an attachment downloaded into memory
type File struct {
	Name    string
	Content []byte
}

// DownloadAllBytes fetches every given attachment into memory, preserving the
// input order. It stops at the first failure.
func (session *Session) DownloadAllBytes(ctx context.Context, attachments []Attachment) ([]File, error) {
	files := make([]File, 0, len(attachments))
	for _, attachment := range attachments {
		name, content, err := session.DownloadBytes(ctx, attachment)
		if err != nil {
			return files, err
		}
		files = append(files, File{Name: name, Content: content})
	}
	return files, nil
}
