package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-board/internal/dto"
	"github.com/noah-isme/sma-timetable-board/internal/models"
	"github.com/noah-isme/sma-timetable-board/internal/service"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the initial timetable as CSV or PDF",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", string(dto.ExportFormatCSV), "csv or pdf")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (stdout when empty)")
	exportCmd.Flags().StringVarP(&seedFilePath, "file", "f", "", "seed YAML file (embedded default when empty)")
	exportCmd.Flags().StringVar(&seedTargetID, "id", "", "seed id (TIMETABLE_SEED_ID when empty)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	_, seed, err := readSeed(rt)
	if err != nil {
		return err
	}
	grid, err := models.NewGrid(seed.Layout, seed.Placements)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	board := &models.Board{ID: seed.ID, SeedID: seed.ID, Grid: grid, CreatedAt: now, UpdatedAt: now}

	file, err := service.NewExportService(rt.logger, nil, nil).Render(board, dto.ExportFormat(exportFormat))
	if err != nil {
		return err
	}

	if exportOut == "" {
		_, err = cmd.OutOrStdout().Write(file.Content)
		return err
	}
	if err := os.WriteFile(exportOut, file.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", exportOut, len(file.Content))
	return err
}
