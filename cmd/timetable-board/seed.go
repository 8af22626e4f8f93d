package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-board/internal/models"
	"github.com/noah-isme/sma-timetable-board/internal/repository"
)

var (
	seedFilePath string
	seedTargetID string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage the initial timetable",
}

var seedValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a seed file describes a valid grid",
	RunE:  runSeedValidate,
}

var seedImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a seed file into timetable_seed_slots",
	RunE:  runSeedImport,
}

func init() {
	seedCmd.PersistentFlags().StringVarP(&seedFilePath, "file", "f", "", "seed YAML file (embedded default when empty)")
	seedCmd.PersistentFlags().StringVar(&seedTargetID, "id", "", "seed id (TIMETABLE_SEED_ID when empty)")
	seedCmd.AddCommand(seedValidateCmd, seedImportCmd)
	rootCmd.AddCommand(seedCmd)
}

func readSeed(rt *runtime) (repository.SeedFile, models.Seed, error) {
	id := seedTargetID
	if id == "" {
		id = rt.cfg.Timetable.SeedID
	}
	f, err := repository.NewFileSeedRepository(seedFilePath, id).File()
	if err != nil {
		return repository.SeedFile{}, models.Seed{}, err
	}
	seed := f.ToModel(id)
	if _, err := models.NewGrid(seed.Layout, seed.Placements); err != nil {
		return repository.SeedFile{}, models.Seed{}, fmt.Errorf("seed %s: %w", id, err)
	}
	return f, seed, nil
}

func runSeedValidate(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	_, seed, err := readSeed(rt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "seed %s ok: %d days, %d periods, %d entries\n",
		seed.ID, len(seed.Layout.Days), len(seed.Layout.Periods), len(seed.Placements))
	return err
}

func runSeedImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	f, seed, err := readSeed(rt)
	if err != nil {
		return err
	}
	db, err := rt.database(ctx)
	if err != nil {
		return err
	}
	repo := repository.NewTimetableSeedRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := repo.BeginTxx(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := repo.DeleteByTimetable(ctx, tx, seed.ID); err != nil {
		return err
	}
	slots := repository.SeedSlotsFromFile(f, seed.ID)
	if err := repo.UpsertBatch(ctx, tx, slots); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	rt.logger.Info("timetable seed imported", zap.String("seed_id", seed.ID), zap.Int("slots", len(slots)))
	return nil
}
