package portal

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// NoticeDetail represents the full content of a single notice (comunicazione)
type NoticeDetail struct {
	ID          string
	Text        string
	Attachments []Attachment
}

// Attachment represents a downloadable file attached to a notice.
// The portal identifies it by the pair of notice and file IDs carried on the
// download anchors; the human-readable file name only surfaces at download
// time via the Content-Disposition header.
type Attachment struct {
	NoticeID string
	FileID   string
}

// Markup anchors of the notice detail page
const (
	selectorAttachment = "a.dwl_allegato"
	selectorText       = "div.comunicazione_testo"
)

// GetNotice fetches the full content of the notice with the given identifier.
// The identifier is expected to come from a previous board listing; anything
// else is rejected by the portal itself.
func (session *Session) GetNotice(ctx context.Context, id string) (*NoticeDetail, error) {
	query := url.Values{}
	query.Set("action", "risposta_com")
	query.Set("com_id", id)

	resp, err := session.client.get(ctx, pathNotice, query, session.cookies())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get notice", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, wrap(KindParse, "get notice", err)
	}

	detail := &NoticeDetail{
		ID:   id,
		Text: strings.Join(strings.Fields(doc.Find(selectorText).First().Text()), " "),
	}
	doc.Find(selectorAttachment).Each(func(_ int, anchor *goquery.Selection) {
		detail.Attachments = append(detail.Attachments, Attachment{
			NoticeID: anchor.AttrOr("comunicazione_id", ""),
			FileID:   anchor.AttrOr("allegato_id", ""),
		})
	})

	log.Debug().Str("notice", id).Int("attachments", len(detail.Attachments)).Msg("notice fetched")
	return detail, nil
}
