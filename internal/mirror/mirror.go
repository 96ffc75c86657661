// Package mirror materializes notice-board content on the local filesystem
package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/classeviva-tools/spaggiari/internal/portal"
)

// readmeName is the file the notice body text is written to inside each
// notice folder
const readmeName = "README.txt"

// Result represents the outcome of mirroring a single notice
type Result struct {
	Notice    portal.Notice
	Dir       string
	Downloads []portal.DownloadResult
	Err       error
}

// Notices mirrors every given notice into baseDir/<codice>/: the notice body
// is written to README.txt and all attachments are downloaded next to it.
// Notices are processed sequentially and independently; the returned summary
// error is non-nil when at least one notice failed.
func Notices(ctx context.Context, session *portal.Session, notices []portal.Notice, baseDir string) ([]Result, error) {
	results := make([]Result, 0, len(notices))
	failed := 0
	for _, notice := range notices {
		result := one(ctx, session, notice, baseDir)
		if result.Err != nil {
			failed++
			log.Warn().Err(result.Err).Str("notice", notice.ID).Int("codice", notice.Code).Msg("could not mirror notice")
		}
		results = append(results, result)
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d notices could not be mirrored", failed, len(notices))
	}
	return results, nil
}

func one(ctx context.Context, session *portal.Session, notice portal.Notice, baseDir string) Result {
	result := Result{Notice: notice}

	detail, err := session.GetNotice(ctx, notice.ID)
	if err != nil {
		result.Err = err
		return result
	}

	result.Dir = filepath.Join(baseDir, strconv.Itoa(notice.Code))
	if err := os.MkdirAll(result.Dir, 0o755); err != nil {
		result.Err = &portal.Error{Kind: portal.KindIO, Op: "mirror notice", Wrapping: err}
		return result
	}
	if err := os.WriteFile(filepath.Join(result.Dir, readmeName), []byte(detail.Text), 0o644); err != nil {
		result.Err = &portal.Error{Kind: portal.KindIO, Op: "mirror notice", Wrapping: err}
		return result
	}

	result.Downloads, result.Err = session.DownloadAll(ctx, detail.Attachments, result.Dir)
	if result.Err == nil {
		log.Info().Str("dir", result.Dir).Int("attachments", len(detail.Attachments)).Msg("notice mirrored")
	}
	return result
}
