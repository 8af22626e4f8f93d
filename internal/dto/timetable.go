package dto

import "github.com/noah-isme/sma-timetable-board/internal/models"

// CellRef is a cell coordinate as sent by clients. Both fields are required so an omitted
// coordinate is rejected instead of decoding to 0.
type CellRef struct {
	Day    *int `json:"day" validate:"required,min=0"`
	Period *int `json:"period" validate:"required,min=0"`
}

// CellRefOf wraps a grid cell.
func CellRefOf(c models.Cell) *CellRef {
	day, period := c.Day, c.Period
	return &CellRef{Day: &day, Period: &period}
}

// Cell converts a validated reference into a grid cell.
func (r CellRef) Cell() models.Cell {
	var c models.Cell
	if r.Day != nil {
		c.Day = *r.Day
	}
	if r.Period != nil {
		c.Period = *r.Period
	}
	return c
}

// MoveEntryRequest is sent by the renderer when a drag completes.
type MoveEntryRequest struct {
	Source      *CellRef `json:"source" validate:"required"`
	Destination *CellRef `json:"destination" validate:"required"`
}

// MoveEntryResponse returns the replacement board plus what the move did.
type MoveEntryResponse struct {
	Board       *models.Board      `json:"board"`
	Outcome     models.MoveOutcome `json:"outcome"`
	Moved       *models.Entry      `json:"moved,omitempty"`
	Displaced   *models.Entry      `json:"displaced,omitempty"`
	RelocatedTo *models.Cell       `json:"relocatedTo,omitempty"`
}

// CellResponse is the content of a single cell.
type CellResponse struct {
	Cell         models.Cell   `json:"cell"`
	Entry        *models.Entry `json:"entry"`
	Practical    bool          `json:"practical"`
	DropDisabled bool          `json:"dropDisabled"`
}

// LayoutResponse describes the grid shape for the renderer.
type LayoutResponse struct {
	Layout          models.Layout `json:"layout"`
	Rows            int           `json:"rows"`
	Columns         int           `json:"columns"`
	DisabledPeriods []int         `json:"disabledPeriods"`
}

// DroppableResponse answers whether a cell accepts drops.
type DroppableResponse struct {
	Cell         models.Cell `json:"cell"`
	DropDisabled bool        `json:"dropDisabled"`
}

// ExportFormat is a supported board export format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportBoardRequest selects the export format.
type ExportBoardRequest struct {
	Format ExportFormat `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportedFile is a rendered export ready to be streamed.
type ExportedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
