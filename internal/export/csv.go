// Package export renders board listings into exchange formats
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/classeviva-tools/spaggiari/internal/portal"
)

// boardHeader lists the CSV columns, one per notice field plus the section
// ("read" or "msg_new") the notice was listed under
var boardHeader = []string{
	"tipo",
	"id",
	"codice",
	"titolo",
	"testo",
	"data_start",
	"data_stop",
	"tipo_com",
	"tipo_com_filtro",
	"tipo_com_desc",
	"nome_file",
	"richieste",
	"id_relazione",
	"conf_lettura",
	"flag_risp",
	"testo_risp",
	"file_risp",
	"flag_accettazione",
	"modificato",
	"evento_data",
}

// WriteBoardCSV writes the given board as CSV, read notices first, preserving
// the portal's order within each section
func WriteBoardCSV(writer io.Writer, board *portal.Board) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(boardHeader); err != nil {
		return err
	}
	for _, notice := range board.Read {
		if err := csvWriter.Write(record("read", notice)); err != nil {
			return err
		}
	}
	for _, notice := range board.New {
		if err := csvWriter.Write(record("msg_new", notice)); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func record(section string, notice portal.Notice) []string {
	return []string{
		section,
		notice.ID,
		strconv.Itoa(notice.Code),
		notice.Title,
		notice.Text,
		notice.Start,
		notice.Stop,
		notice.Type,
		notice.TypeFilter,
		notice.TypeDesc,
		orEmpty(notice.FileName),
		notice.Requests,
		notice.RelationID,
		notice.ReadReceipt,
		notice.ReplyFlag,
		orEmpty(notice.ReplyText),
		orEmpty(notice.ReplyFile),
		notice.AcceptFlag,
		notice.Modified,
		notice.EventDate,
	}
}

func orEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
