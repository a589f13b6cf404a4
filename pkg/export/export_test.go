package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Result Report",
		Headers: []string{"Student", "Score"},
		Rows: [][]string{
			{"Nimal Perera", "82"},
			{"Kamala Silva", "67"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Student", "Score"}, records[0])
	assert.Equal(t, []string{"Kamala Silva", "67"}, records[2])
}

func TestCSVRenderEscapesCells(t *testing.T) {
	data := Dataset{
		Headers: []string{"Paper"},
		Rows:    [][]string{{`Term Test, "Revised"`}},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `Term Test, "Revised"`, records[1][0])
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only one cell"})

	_, err := NewCSVExporter().Render(data)
	assert.Error(t, err)

	_, err = NewPDFExporter().Render(data)
	assert.Error(t, err)
}

func TestRenderRejectsMissingHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Rows: [][]string{{"x"}}})
	assert.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(out), "%PDF"), "output should be a PDF document")
}
