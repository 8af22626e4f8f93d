package repository

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/sma-timetable-board/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-board/pkg/errors"
)

//go:embed seeds/default_timetable.yaml
var defaultTimetableYAML []byte

// SeedEntryDef is one placement in a seed file.
type SeedEntryDef struct {
	ID     string `yaml:"id"`
	Day    int    `yaml:"day"`
	Period int    `yaml:"period"`
	Code   string `yaml:"code"`
	Room   string `yaml:"room,omitempty"`
}

// SeedFile is the YAML document describing a layout and its initial entries.
type SeedFile struct {
	Days        []string        `yaml:"days"`
	Periods     []models.Period `yaml:"periods"`
	BreakPeriod int             `yaml:"breakPeriod"`
	BreakLabel  string          `yaml:"breakLabel"`
	Entries     []SeedEntryDef  `yaml:"entries"`
}

// ToModel converts the file into a named seed.
func (f SeedFile) ToModel(id string) models.Seed {
	placements := make([]models.PlacedEntry, 0, len(f.Entries))
	for _, e := range f.Entries {
		placements = append(placements, models.PlacedEntry{
			Cell:  models.Cell{Day: e.Day, Period: e.Period},
			Entry: models.Entry{ID: e.ID, Label: e.Code, Location: e.Room},
		})
	}
	return models.Seed{
		ID: id,
		Layout: models.Layout{
			Days:        f.Days,
			Periods:     f.Periods,
			BreakPeriod: f.BreakPeriod,
			BreakLabel:  f.BreakLabel,
		},
		Placements: placements,
	}
}

// ParseSeedFile decodes a YAML seed document.
func ParseSeedFile(data []byte) (SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return SeedFile{}, fmt.Errorf("decode seed yaml: %w", err)
	}
	return f, nil
}

// FileSeedRepository loads seeds from a YAML file, or from the embedded reference timetable when
// no path is configured.
type FileSeedRepository struct {
	path string
	id   string
}

// NewFileSeedRepository builds repository. An empty path selects the embedded default.
func NewFileSeedRepository(path, id string) *FileSeedRepository {
	return &FileSeedRepository{path: path, id: id}
}

// Load implements the seed source used by the timetable service.
func (r *FileSeedRepository) Load(ctx context.Context) (*models.Seed, error) {
	f, err := r.read()
	if err != nil {
		return nil, err
	}
	seed := f.ToModel(r.id)
	return &seed, nil
}

// File returns the raw seed document, used when importing into the database.
func (r *FileSeedRepository) File() (SeedFile, error) {
	return r.read()
}

func (r *FileSeedRepository) read() (SeedFile, error) {
	data := defaultTimetableYAML
	if r.path != "" {
		raw, err := os.ReadFile(r.path)
		if err != nil {
			return SeedFile{}, fmt.Errorf("read seed file %s: %w", r.path, err)
		}
		data = raw
	}
	return ParseSeedFile(data)
}

type seedSlotLister interface {
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableSeedSlot, error)
}

// DatabaseSeedRepository takes the layout from a seed file and the placements from timetable_seed_slots.
type DatabaseSeedRepository struct {
	layout *FileSeedRepository
	slots  seedSlotLister
	id     string
}

// NewDatabaseSeedRepository builds repository.
func NewDatabaseSeedRepository(layout *FileSeedRepository, slots seedSlotLister, id string) *DatabaseSeedRepository {
	return &DatabaseSeedRepository{layout: layout, slots: slots, id: id}
}

// Load implements the seed source used by the timetable service.
// A timetable with no stored rows is ErrNotFound rather than an empty board.
func (r *DatabaseSeedRepository) Load(ctx context.Context) (*models.Seed, error) {
	f, err := r.layout.read()
	if err != nil {
		return nil, err
	}
	rows, err := r.slots.ListByTimetable(ctx, r.id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no seed rows for timetable %s", r.id))
	}
	seed := f.ToModel(r.id)
	seed.Placements = make([]models.PlacedEntry, 0, len(rows))
	for _, row := range rows {
		seed.Placements = append(seed.Placements, row.Placement())
	}
	return &seed, nil
}

// SeedSlotsFromFile flattens a seed file into rows for timetable_seed_slots.
func SeedSlotsFromFile(f SeedFile, timetableID string) []models.TimetableSeedSlot {
	slots := make([]models.TimetableSeedSlot, 0, len(f.Entries))
	for _, e := range f.Entries {
		slot := models.TimetableSeedSlot{
			TimetableID: timetableID,
			DayIndex:    e.Day,
			PeriodIndex: e.Period,
			EntryID:     e.ID,
			Code:        e.Code,
		}
		if e.Room != "" {
			room := e.Room
			slot.Room = &room
		}
		slots = append(slots, slot)
	}
	return slots
}
