package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classeviva-tools/spaggiari/internal/portal"
)

func TestWriteBoardCSV(t *testing.T) {
	fileName := "orario.pdf"
	board := &portal.Board{
		Read: []portal.Notice{
			{ID: "101", Code: 320, Title: "Orario definitivo", FileName: &fileName},
			{ID: "102", Code: 321, Title: "Assemblea di istituto"},
		},
		New: []portal.Notice{
			{ID: "103", Code: 322, Title: "Sciopero del personale"},
		},
	}

	buffer := &bytes.Buffer{}
	require.NoError(t, WriteBoardCSV(buffer, board))

	rows, err := csv.NewReader(buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, boardHeader, rows[0])
	assert.Equal(t, []string{"read", "101", "320", "Orario definitivo"}, rows[1][:4])
	assert.Equal(t, "orario.pdf", rows[1][10])
	assert.Equal(t, []string{"read", "102", "321", "Assemblea di istituto"}, rows[2][:4])
	assert.Equal(t, "", rows[2][10])
	assert.Equal(t, []string{"msg_new", "103", "322", "Sciopero del personale"}, rows[3][:4])
}

func TestWriteBoardCSVEmptyBoard(t *testing.T) {
	buffer := &bytes.Buffer{}
	require.NoError(t, WriteBoardCSV(buffer, &portal.Board{}))

	rows, err := csv.NewReader(buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, boardHeader, rows[0])
}
