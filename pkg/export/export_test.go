package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"studentId", "studentName", "finalScore"},
		Rows: []map[string]string{
			{"studentId": "s-1", "studentName": "Siti, Aminah", "finalScore": "82.5"},
			{"studentId": "s-2", "studentName": `Budi "Bud" Santoso`, "finalScore": "70"},
		},
	}
}

func TestCSVRenderQuotesDelimiter(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.Equal(t, "studentId,studentName,finalScore\n"+
		"s-1,\"Siti, Aminah\",82.5\n"+
		"s-2,\"Budi \"\"Bud\"\" Santoso\",70\n", string(out))
}

func TestCSVParseRoundTrip(t *testing.T) {
	exporter := NewCSVExporter()
	in := sampleDataset()
	out, err := exporter.Render(in)
	require.NoError(t, err)

	parsed, err := exporter.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, in.Headers, parsed.Headers)
	assert.Equal(t, in.Rows, parsed.Rows)
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewCSVExporter().Parse(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(PDFDocument{
		Title:        "Legger Nilai",
		Subtitle:     "Kelas X IPA 1",
		Data:         sampleDataset(),
		ColumnWidths: map[string]float64{"studentId": 40},
		Footer:       []string{"Jumlah siswa: 2"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths([]string{"a", "b", "c"}, map[string]float64{"a": 77})
	assert.Equal(t, []float64{77, 100, 100}, widths)
}
