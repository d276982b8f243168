package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/equation_evolution/pkg/pool"
)

// --- Global Command Variables ---
var (
	configPath   string
	verbose      bool
	format       string
	storeBackend string
	storePath    string
	metricsAddr  string
	latexPath    string
	showLogbook  bool

	benign             string
	malware            string
	representation     string
	evaluation         string
	poolName           string
	insertionStart     float64
	insertionStop      float64
	population         int
	generations        int
	removalGenerations int
	workers            int
	seed               uint64
	checkpointEvery    int
	hallOfFameSize     int
	specialRemoval     bool

	rootCmd = &cobra.Command{
		Use:          "equation_evolution",
		Short:        "Evolve a piecewise trojan into an equation and evolve it back out",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(verbose)
		},
	}

	// --- Experiments ---
	runCmd = &cobra.Command{
		Use:     "run",
		Aliases: []string{"evolve"},
		Short:   "Run the creation and removal phases for one benign/malware pair",
		Args:    cobra.NoArgs,
		RunE:    runExperiment,
	}
	resumeCmd = &cobra.Command{
		Use:   "resume [run-id]",
		Short: "Continue an interrupted run from its latest checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  runResume,
	}
	redoRemovalCmd = &cobra.Command{
		Use:   "redo-removal [run-id]",
		Short: "Evolve the removal phase of a stored run again",
		Args:  cobra.ExactArgs(1),
		RunE:  runRedoRemoval,
	}

	// --- Catalogs ---
	equationsCmd = &cobra.Command{
		Use:   "equations",
		Short: "List the named equations",
		Args:  cobra.NoArgs,
		RunE:  runListEquations,
	}
	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "List the runs kept in the store",
		Args:  cobra.NoArgs,
		RunE:  runListRuns,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every generation")
	pf.StringVar(&format, "format", "text", "output format (text, json, latex)")
	pf.StringVar(&storeBackend, "store", "", "store backend (memory, sqlite, badger)")
	pf.StringVar(&storePath, "store-path", "", "sqlite file or badger directory")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	for _, cmd := range []*cobra.Command{runCmd, resumeCmd, redoRemovalCmd} {
		f := cmd.Flags()
		f.StringVar(&latexPath, "latex", "", "also write the hall of fame as a LaTeX document to this file")
		f.BoolVar(&showLogbook, "logbook", false, "print the per-generation statistics in text output")
	}

	f := runCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "experiment YAML file")
	f.StringVar(&benign, "benign", "", "benign equation or catalog name")
	f.StringVar(&malware, "malware", "", "malware equation or catalog name")
	f.StringVar(&representation, "representation", "", "genome representation (direct, gaussian)")
	f.StringVar(&evaluation, "evaluation", "", "fitness evaluation (points, integral)")
	f.StringVar(&poolName, "pool", "", "primitive pool ("+strings.Join(pool.Names(), ", ")+")")
	f.Float64Var(&insertionStart, "insertion-start", 0, "start of the malware interval")
	f.Float64Var(&insertionStop, "insertion-stop", 0, "end of the malware interval")
	f.IntVar(&population, "population", 0, "population size of both phases")
	f.IntVar(&generations, "generations", 0, "generation cap of both phases")
	f.IntVar(&removalGenerations, "removal-generations", 0, "generation cap of the removal phase")
	f.IntVar(&workers, "workers", 0, "parallel fitness evaluations")
	f.Uint64Var(&seed, "seed", 0, "random seed of the creation phase; removal uses seed+1")
	f.IntVar(&checkpointEvery, "checkpoint-every", 0, "checkpoint every n generations (0 = never)")
	f.IntVar(&hallOfFameSize, "hof-size", 0, "hall of fame capacity")
	f.BoolVar(&specialRemoval, "special-removal", false, "also minimize the size difference to the benign tree")

	f = redoRemovalCmd.Flags()
	f.IntVar(&removalGenerations, "removal-generations", 0, "generation cap of the removal phase")
	f.IntVar(&workers, "workers", 0, "parallel fitness evaluations")
	f.Uint64Var(&seed, "seed", 0, "random seed of the removal phase")
	f.BoolVar(&specialRemoval, "special-removal", false, "also minimize the size difference to the benign tree")

	rootCmd.AddCommand(runCmd, resumeCmd, redoRemovalCmd, equationsCmd, runsCmd)
}
