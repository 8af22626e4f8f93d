package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
)

// PlacementStrategy picks where a displaced entry lands. candidates is never empty and is row-major;
// origin is the cell the entry was displaced from.
type PlacementStrategy interface {
	Pick(origin models.Cell, candidates []models.Cell) models.Cell
}

// PlacementFunc adapts a plain function to PlacementStrategy.
type PlacementFunc func(origin models.Cell, candidates []models.Cell) models.Cell

// Pick implements PlacementStrategy.
func (f PlacementFunc) Pick(origin models.Cell, candidates []models.Cell) models.Cell {
	return f(origin, candidates)
}

// RandomPlacement draws uniformly from the candidates. Not safe for concurrent use.
type RandomPlacement struct {
	rng *rand.Rand
}

// NewRandomPlacement seeds the generator; a zero seed uses the current time.
func NewRandomPlacement(seed int64) *RandomPlacement {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPlacement{rng: rand.New(rand.NewSource(seed))}
}

// Pick implements PlacementStrategy.
func (p *RandomPlacement) Pick(_ models.Cell, candidates []models.Cell) models.Cell {
	return candidates[p.rng.Intn(len(candidates))]
}

// NearestPlacement takes the candidate closest to the origin by Manhattan distance.
type NearestPlacement struct{}

// Pick implements PlacementStrategy. Ties keep the earliest row-major candidate.
func (NearestPlacement) Pick(origin models.Cell, candidates []models.Cell) models.Cell {
	best := candidates[0]
	bestDist := manhattan(origin, best)
	for _, c := range candidates[1:] {
		if d := manhattan(origin, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func manhattan(a, b models.Cell) int {
	return abs(a.Day-b.Day) + abs(a.Period-b.Period)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Reassign applies a drop of the entry at req.Source onto req.Destination and returns the next grid.
// The input grid is never modified. A destination in the break column is a no-op; a destination
// outside the grid fails with ErrInvalidTarget and a source outside it with ErrOutOfRange.
// An occupied destination pushes its entry to a cell chosen by strategy among the empty cells left
// after the source is cleared. With no such cell the displaced entry is dropped and the result's
// outcome is MoveOutcomeDiscarded. strategy is required.
func Reassign(grid models.Grid, req models.MoveRequest, strategy PlacementStrategy) (*models.MoveResult, error) {
	if strategy == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "placement strategy is required")
	}
	if grid.Contains(req.Destination) && grid.DropDisabled(req.Destination) {
		return &models.MoveResult{Grid: grid, Outcome: models.MoveOutcomeRejected}, nil
	}
	if !grid.Contains(req.Destination) {
		return nil, appErrors.Wrap(
			appErrors.Clone(appErrors.ErrOutOfRange, fmt.Sprintf("destination %s outside %dx%d grid", req.Destination, grid.Rows(), grid.Columns())),
			appErrors.ErrInvalidTarget.Code, appErrors.ErrInvalidTarget.Status,
			fmt.Sprintf("cannot drop on %s", req.Destination),
		)
	}
	moved, err := grid.Get(req.Source.Day, req.Source.Period)
	if err != nil {
		return nil, err
	}

	next := grid.Clone()
	result := &models.MoveResult{Outcome: models.MoveOutcomeMoved, Moved: moved}

	// Both cells were range-checked above, so the rows can be written directly.
	next.Cells[req.Source.Day][req.Source.Period] = nil

	if displaced := next.Cells[req.Destination.Day][req.Destination.Period]; displaced != nil {
		result.Displaced = displaced
		candidates := next.PlacementCandidates()
		if len(candidates) == 0 {
			result.Outcome = models.MoveOutcomeDiscarded
		} else {
			target := strategy.Pick(req.Destination, candidates)
			if !containsCell(candidates, target) {
				return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("placement strategy chose non-candidate cell %s", target))
			}
			next.Cells[target.Day][target.Period] = displaced
			result.Outcome = models.MoveOutcomeRelocated
			result.RelocatedTo = &target
		}
	}

	next.Cells[req.Destination.Day][req.Destination.Period] = moved
	result.Grid = next
	return result, nil
}

func containsCell(cells []models.Cell, c models.Cell) bool {
	for _, candidate := range cells {
		if candidate == c {
			return true
		}
	}
	return false
}
