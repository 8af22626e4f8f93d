package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"DAY", "08:00-08:55", "12:00-13:15"},
		Rows: []map[string]string{
			{"DAY": "MONDAY", "08:00-08:55": "ER2251\n#", "12:00-13:15": "Lunch"},
			{"DAY": "TUESDAY", "08:00-08:55": "P-ER2254", "12:00-13:15": "Lunch"},
		},
		Highlight: map[int]map[string]bool{1: {"08:00-08:55": true}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "DAY,08:00-08:55,12:00-13:15\nMONDAY,\"ER2251\n#\",Lunch\nTUESDAY,P-ER2254,Lunch\n", string(out))
}

func TestCSVExporterCustomComma(t *testing.T) {
	out, err := NewCSVExporterWithComma(';').Render(Dataset{Headers: []string{"A", "B"}, Rows: []map[string]string{{"A": "1", "B": "2"}}})
	require.NoError(t, err)
	assert.Equal(t, "A;B\n1;2\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Weekly timetable")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	require.Error(t, err)
}

func TestDatasetHighlighted(t *testing.T) {
	data := sampleDataset()
	assert.True(t, data.highlighted(1, "08:00-08:55"))
	assert.False(t, data.highlighted(0, "08:00-08:55"))
	assert.False(t, Dataset{}.highlighted(0, "DAY"))
}
