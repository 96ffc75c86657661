package portal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// Notice represents a single board entry (a "circolare") as listed by the
// portal. The field set mirrors the listing endpoint's JSON records; dates are
// kept as the portal's own string representation.
type Notice struct {
	ID          string  `json:"id"`
	Code        int     `json:"codice"`
	Title       string  `json:"titolo"`
	Text        string  `json:"testo"`
	Start       string  `json:"data_start"`
	Stop        string  `json:"data_stop"`
	Type        string  `json:"tipo_com"`
	TypeFilter  string  `json:"tipo_com_filtro"`
	TypeDesc    string  `json:"tipo_com_desc"`
	FileName    *string `json:"nome_file"`
	Requests    string  `json:"richieste"`
	RelationID  string  `json:"id_relazione"`
	ReadReceipt string  `json:"conf_lettura"`
	ReplyFlag   string  `json:"flag_risp"`
	ReplyText   *string `json:"testo_risp"`
	ReplyFile   *string `json:"file_risp"`
	AcceptFlag  string  `json:"flag_accettazione"`
	Modified    string  `json:"modificato"`
	EventDate   string  `json:"evento_data"`
}

// Board represents the personal notice board (bacheca) listing.
// Read holds previously read notices; New holds newly arrived ones and is nil
// whenever the portal omits the section. Both preserve the portal's order.
type Board struct {
	Read []Notice `json:"read"`
	New  []Notice `json:"msg_new"`
}

// GetBoard fetches the personal notice board of the session's account
func (session *Session) GetBoard(ctx context.Context) (*Board, error) {
	query := url.Values{}
	query.Set("action", "get_comunicazioni")
	query.Set("ncna", "1")

	resp, err := session.client.get(ctx, pathBoard, query, session.cookies())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get board", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrap(KindTransport, "get board", err)
	}

	board := &Board{}
	if err := json.Unmarshal(body, board); err != nil {
		return nil, wrap(KindParse, "get board", err)
	}

	log.Debug().Int("read", len(board.Read)).Int("new", len(board.New)).Msg("board fetched")
	return board, nil
}
