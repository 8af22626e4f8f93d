package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-board/internal/dto"
	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
	"github.com/noah-isme/sma-timetable-board/pkg/export"
)

type failingCSV struct{}

func (failingCSV) Render(export.Dataset) ([]byte, error) { return nil, errors.New("disk full") }

func exportBoard(t *testing.T) *models.Board {
	grid := mustGrid(t,
		models.PlacedEntry{Cell: models.Cell{Day: 0, Period: 0}, Entry: models.Entry{ID: "MON-1", Label: "ER2251", Location: "#"}},
		models.PlacedEntry{Cell: models.Cell{Day: 1, Period: 5}, Entry: models.Entry{ID: "TUE-6", Label: "P-MN2102"}},
	)
	return &models.Board{ID: "b/1", Version: 3, Grid: grid}
}

func TestBuildGridDataset(t *testing.T) {
	data := BuildGridDataset(exportBoard(t).Grid)

	require.Len(t, data.Headers, 11)
	assert.Equal(t, "DAY", data.Headers[0])
	require.Len(t, data.Rows, 5)

	monday := data.Rows[0]
	assert.Equal(t, "MONDAY", monday["DAY"])
	assert.Equal(t, "ER2251\n#", monday[data.Headers[1]])
	assert.Equal(t, "Lunch", monday[data.Headers[5]])
	assert.Equal(t, "", monday[data.Headers[2]])

	assert.Equal(t, "P-MN2102", data.Rows[1][data.Headers[6]])
	assert.True(t, data.Highlight[1][data.Headers[6]])
	assert.False(t, data.Highlight[0][data.Headers[1]])
}

func TestExportServiceRenderCSV(t *testing.T) {
	svc := NewExportService(nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC) }

	file, err := svc.Render(exportBoard(t), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "timetable_b_1_v3_20250106.csv", file.Filename)
	lines := strings.SplitN(string(file.Content), "\n", 2)
	assert.True(t, strings.HasPrefix(lines[0], "DAY,"))
}

func TestExportServiceRenderPDF(t *testing.T) {
	file, err := NewExportService(nil, nil, nil).Render(exportBoard(t), dto.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
}

func TestExportServiceRenderErrors(t *testing.T) {
	_, err := NewExportService(nil, nil, nil).Render(exportBoard(t), "xlsx")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = NewExportService(nil, failingCSV{}, nil).Render(exportBoard(t), dto.ExportFormatCSV)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	_, err = NewExportService(nil, nil, nil).Render(nil, dto.ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
