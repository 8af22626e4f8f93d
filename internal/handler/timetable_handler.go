package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-board/internal/dto"
	"github.com/noah-isme/sma-timetable-board/internal/models"
	"github.com/noah-isme/sma-timetable-board/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
	"github.com/noah-isme/sma-timetable-board/pkg/response"
)

type timetableBoard interface {
	Layout(ctx context.Context) (*dto.LayoutResponse, error)
	Droppable(ctx context.Context, cell models.Cell) (*dto.DroppableResponse, error)
	CreateBoard(ctx context.Context) (*models.Board, error)
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	DeleteBoard(ctx context.Context, id string) error
	GetCell(ctx context.Context, id string, cell models.Cell) (*dto.CellResponse, error)
	EmptyCells(ctx context.Context, id string) ([]models.Cell, error)
	Move(ctx context.Context, id string, req dto.MoveEntryRequest) (*dto.MoveEntryResponse, error)
	Reset(ctx context.Context, id string) (*models.Board, error)
	Export(ctx context.Context, id string, req dto.ExportBoardRequest) (*dto.ExportedFile, error)
}

// TimetableHandler exposes the drag-and-drop board endpoints.
type TimetableHandler struct {
	service timetableBoard
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Layout godoc
// @Summary Describe the timetable grid
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/layout [get]
func (h *TimetableHandler) Layout(c *gin.Context) {
	layout, err := h.service.Layout(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, layout)
}

// Droppable godoc
// @Summary Tell whether a cell accepts drops
// @Tags Timetable
// @Produce json
// @Param day path int true "Day index"
// @Param period path int true "Period index"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/cells/{day}/{period}/droppable [get]
func (h *TimetableHandler) Droppable(c *gin.Context) {
	cell, err := cellFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Droppable(c.Request.Context(), cell)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Create godoc
// @Summary Open a board session with the initial timetable
// @Tags Timetable
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /timetable/boards [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	board, err := h.service.CreateBoard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, board)
}

// Get godoc
// @Summary Get the current board state
// @Tags Timetable
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/boards/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	board, err := h.service.GetBoard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, map[string]interface{}{"version": board.Version})
}

// Delete godoc
// @Summary Close a board session
// @Tags Timetable
// @Param id path string true "Board ID"
// @Success 204
// @Router /timetable/boards/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteBoard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Cell godoc
// @Summary Get the content of one cell
// @Tags Timetable
// @Produce json
// @Param id path string true "Board ID"
// @Param day path int true "Day index"
// @Param period path int true "Period index"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/boards/{id}/cells/{day}/{period} [get]
func (h *TimetableHandler) Cell(c *gin.Context) {
	cell, err := cellFromPath(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.GetCell(c.Request.Context(), c.Param("id"), cell)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// EmptyCells godoc
// @Summary List empty cells in row-major order
// @Tags Timetable
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/boards/{id}/empty-cells [get]
func (h *TimetableHandler) EmptyCells(c *gin.Context) {
	cells, err := h.service.EmptyCells(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cells, map[string]interface{}{"count": len(cells)})
}

// Move godoc
// @Summary Apply a completed drag
// @Description Moves the entry at source onto destination. An occupied destination pushes its entry to a free cell; drops on the break period are ignored.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param payload body dto.MoveEntryRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetable/boards/{id}/moves [post]
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	result, err := h.service.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"outcome": result.Outcome})
}

// Reset godoc
// @Summary Restore the initial timetable
// @Tags Timetable
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/boards/{id}/reset [post]
func (h *TimetableHandler) Reset(c *gin.Context) {
	board, err := h.service.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board)
}

// Export godoc
// @Summary Download the board as CSV or PDF
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Board ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /timetable/boards/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var req dto.ExportBoardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

func cellFromPath(c *gin.Context) (models.Cell, error) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		return models.Cell{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "day must be an integer")
	}
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		return models.Cell{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "period must be an integer")
	}
	return models.Cell{Day: day, Period: period}, nil
}
