package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/equation_evolution/pkg/engine"
	"github.com/wildfunctions/equation_evolution/pkg/experiment"
	"github.com/wildfunctions/equation_evolution/pkg/model"
	"github.com/wildfunctions/equation_evolution/pkg/storage"
)

func runExperiment(cmd *cobra.Command, _ []string) error {
	cfg := experiment.DefaultConfig()
	if configPath != "" {
		loaded, err := experiment.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyOverrides(cmd, &cfg)

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closeStore(store)

	e, err := experiment.New(cfg, experiment.WithStore(store), experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	defer startMetrics()()
	run, err := e.Run(ctx)
	if err != nil {
		return interrupted(run, err)
	}
	return writeRun(cmd.OutOrStdout(), e, run)
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, run, err := loadRun(ctx, args[0])
	if err != nil {
		return err
	}
	defer closeStore(store)

	cfg, err := experiment.ConfigOf(*run)
	if err != nil {
		return err
	}
	e, err := experiment.New(cfg, experiment.WithStore(store), experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	defer startMetrics()()
	if err := e.Resume(ctx, run); err != nil {
		return interrupted(run, err)
	}
	return writeRun(cmd.OutOrStdout(), e, run)
}

func runRedoRemoval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, run, err := loadRun(ctx, args[0])
	if err != nil {
		return err
	}
	defer closeStore(store)

	cfg, err := experiment.ConfigOf(*run)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("removal-generations") {
		cfg.Removal.MaxGenerations = removalGenerations
	}
	if flags.Changed("workers") {
		cfg.Removal.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Removal.Seed = seed
	}
	if flags.Changed("special-removal") {
		cfg.SpecialRemoval = specialRemoval
	}

	e, err := experiment.New(cfg, experiment.WithStore(store), experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	defer startMetrics()()
	if err := e.RedoRemoval(ctx, run); err != nil {
		return interrupted(run, err)
	}
	return writeRun(cmd.OutOrStdout(), e, run)
}

// applyOverrides copies every flag the user set into cfg.
func applyOverrides(cmd *cobra.Command, cfg *experiment.Config) {
	flags := cmd.Flags()
	if flags.Changed("benign") {
		cfg.Benign, cfg.BenignName = benign, ""
	}
	if flags.Changed("malware") {
		cfg.Malware, cfg.MalwareName = malware, ""
	}
	if flags.Changed("representation") {
		cfg.Representation = representation
	}
	if flags.Changed("evaluation") {
		cfg.Evaluation = evaluation
	}
	if flags.Changed("pool") {
		cfg.Pool = poolName
	}
	if flags.Changed("insertion-start") {
		cfg.Insertion.Start = insertionStart
	}
	if flags.Changed("insertion-stop") {
		cfg.Insertion.Stop = insertionStop
	}
	if flags.Changed("special-removal") {
		cfg.SpecialRemoval = specialRemoval
	}
	if flags.Changed("store") {
		cfg.Store.Backend = storeBackend
	}
	if flags.Changed("store-path") {
		cfg.Store.Path = storePath
	}

	for _, phase := range []*engine.Config{&cfg.Creation, &cfg.Removal} {
		if flags.Changed("population") {
			phase.Population = population
		}
		if flags.Changed("generations") {
			phase.MaxGenerations = generations
		}
		if flags.Changed("workers") {
			phase.Workers = workers
		}
		if flags.Changed("checkpoint-every") {
			phase.CheckpointEvery = checkpointEvery
		}
		if flags.Changed("hof-size") {
			phase.HallOfFameSize = hallOfFameSize
		}
	}
	if flags.Changed("removal-generations") {
		cfg.Removal.MaxGenerations = removalGenerations
	}
	if flags.Changed("seed") {
		cfg.Creation.Seed = seed
		cfg.Removal.Seed = seed + 1
	}
}

// loadRun opens the store named by the global flags and fetches a run.
func loadRun(ctx context.Context, id string) (storage.Store, *model.RunRecord, error) {
	if storeBackend == "" || storeBackend == storage.BackendMemory {
		return nil, nil, errors.New("stored runs need a persistent --store (sqlite or badger)")
	}
	store, err := openStore(ctx, storeBackend, storePath)
	if err != nil {
		return nil, nil, err
	}
	run, ok, err := store.GetRun(ctx, id)
	if err != nil {
		closeStore(store)
		return nil, nil, err
	}
	if !ok {
		closeStore(store)
		return nil, nil, fmt.Errorf("run %s not found", id)
	}
	return store, &run, nil
}

func closeStore(store storage.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}

func startMetrics() func() {
	if metricsAddr == "" {
		return func() {}
	}
	return serveMetrics(metricsAddr)
}

// interrupted adds the run id to err so the run can be resumed.
func interrupted(run *model.RunRecord, err error) error {
	if run == nil || run.ID == "" {
		return err
	}
	if errors.Is(err, context.Canceled) {
		slog.Warn("run interrupted", "run_id", run.ID)
	}
	return fmt.Errorf("run %s: %w", run.ID, err)
}

// writeRun prints the run in the selected format and writes the LaTeX file
// when one was asked for.
func writeRun(w io.Writer, e *experiment.Experiment, run *model.RunRecord) error {
	reports, err := e.Reports(run)
	if err != nil {
		return err
	}
	title := run.BenignName + " / " + run.MalwareName

	switch format {
	case "json":
		if err := engine.WriteJSONReport(w, run); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	case "latex":
		engine.WriteHallOfFameLatex(w, title, reports...)
	default:
		writeText(w, run, reports)
	}

	if latexPath != "" {
		f, err := os.Create(latexPath)
		if err != nil {
			return fmt.Errorf("create latex file: %w", err)
		}
		engine.WriteHallOfFameLatex(f, title, reports...)
		if err := f.Close(); err != nil {
			return fmt.Errorf("write latex file: %w", err)
		}
		slog.Info("wrote latex", "path", latexPath)
	}
	return nil
}

func writeText(w io.Writer, run *model.RunRecord, reports []engine.Report) {
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "Benign:  %s = %s\n", run.BenignName, run.BenignEquation)
	fmt.Fprintf(w, "Malware: %s = %s on [%g, %g]\n", run.MalwareName, run.MalwareEquation,
		float64(run.InsertionStart), float64(run.InsertionStop))
	fmt.Fprintf(w, "Mode:    %s genomes, %s evaluation\n", run.Representation, run.Evaluation)

	phases := map[string]*model.PhaseRecord{
		experiment.PhaseCreation: run.Creation,
		experiment.PhaseRemoval:  run.Removal,
	}
	for _, r := range reports {
		engine.WriteTextReport(w, r)
		if showLogbook {
			fmt.Fprintln(w, "--- Logbook ---")
			if err := model.Logbook(phases[r.Phase].Logbook).WriteTable(w); err != nil {
				slog.Warn("write logbook", "error", err)
			}
		}
	}

	if c := run.Comparison; c != nil {
		fmt.Fprintln(w, "\n========== COMPARISON ==========")
		fmt.Fprintf(w, "Sizes:              original %d, creation %d, removal %d\n", c.OriginalSize, c.CreationSize, c.RemovalSize)
		fmt.Fprintf(w, "Exact duplicate:    %t\n", c.ExactDuplicate)
		fmt.Fprintf(w, "Original contained: %t\n", c.OriginalContained)
		fmt.Fprintf(w, "Simplified removal: %s\n", c.SimplifiedRemoval)
	}
}
