package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-board/internal/dto"
	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
	"github.com/noah-isme/sma-timetable-board/pkg/export"
)

const dayHeader = "DAY"

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders boards into printable files.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Render produces the board in the requested format. An empty format means CSV.
func (s *ExportService) Render(board *models.Board, format dto.ExportFormat) (*dto.ExportedFile, error) {
	if board == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "board not found")
	}
	if format == "" {
		format = dto.ExportFormatCSV
	}
	data := BuildGridDataset(board.Grid)
	filename := s.buildFilename(board, format)

	var (
		content     []byte
		contentType string
		err         error
	)
	switch format {
	case dto.ExportFormatCSV:
		content, err = s.csv.Render(data)
		contentType = "text/csv"
	case dto.ExportFormatPDF:
		content, err = s.pdf.Render(data, "Weekly timetable")
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render board export")
	}
	s.logger.Debug("board exported", zap.String("board_id", board.ID), zap.String("format", string(format)), zap.Int("bytes", len(content)))
	return &dto.ExportedFile{Filename: filename, ContentType: contentType, Content: content}, nil
}

func (s *ExportService) buildFilename(board *models.Board, format dto.ExportFormat) string {
	name := fmt.Sprintf("timetable_%s_v%d_%s", board.ID, board.Version, s.now().UTC().Format("20060102"))
	return fmt.Sprintf("%s.%s", sanitizeFilename(name), format)
}

func sanitizeFilename(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, raw)
	return strings.Trim(cleaned, "_")
}

// BuildGridDataset lays the grid out as one row per day and one column per period. The break
// column shows the break label; practical sessions are highlighted.
func BuildGridDataset(grid models.Grid) export.Dataset {
	headers := make([]string, 0, len(grid.Layout.Periods)+1)
	headers = append(headers, dayHeader)
	for _, p := range grid.Layout.Periods {
		headers = append(headers, p.Label())
	}

	breakLabel := grid.Layout.BreakLabel
	if breakLabel == "" {
		breakLabel = "Break"
	}

	data := export.Dataset{Headers: headers, Highlight: map[int]map[string]bool{}}
	for day, row := range grid.Cells {
		record := map[string]string{dayHeader: dayName(grid.Layout, day)}
		for period, entry := range row {
			header := headers[period+1]
			switch {
			case period == grid.Layout.BreakPeriod:
				record[header] = breakLabel
			case entry == nil:
				record[header] = ""
			default:
				record[header] = cellText(entry)
				if entry.Practical() {
					if data.Highlight[day] == nil {
						data.Highlight[day] = map[string]bool{}
					}
					data.Highlight[day][header] = true
				}
			}
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}

func dayName(layout models.Layout, day int) string {
	if day < len(layout.Days) {
		return layout.Days[day]
	}
	return fmt.Sprintf("DAY %d", day+1)
}

func cellText(entry *models.Entry) string {
	if entry.Location == "" {
		return entry.Label
	}
	return entry.Label + "\n" + entry.Location
}
