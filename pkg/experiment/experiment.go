// Package experiment runs the creation phase, which evolves a benign
// function into one that also follows a malware function on an insertion
// interval, and the removal phase, which evolves the result back toward the
// benign function.
package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wildfunctions/equation_evolution/pkg/engine"
	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/fitness"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/model"
	"github.com/wildfunctions/equation_evolution/pkg/pool"
	"github.com/wildfunctions/equation_evolution/pkg/storage"
	"github.com/wildfunctions/equation_evolution/pkg/strategy"
)

// Phase names used for logs, metrics and checkpoints.
const (
	PhaseCreation = "creation"
	PhaseRemoval  = "removal"
)

// ErrRunMismatch is returned when a stored run was made from different
// equations than the experiment continuing it.
var ErrRunMismatch = errors.New("run does not match experiment")

// Experiment holds the parsed inputs of one creation and removal run.
type Experiment struct {
	cfg     Config
	benign  expr.ExprNode
	malware expr.ExprNode
	pool    pool.Pool
	points  []float64
	store   storage.Store
	logger  *slog.Logger
}

// Option configures an Experiment.
type Option func(*Experiment)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithStore persists checkpoints and run records. The store must already be
// initialized.
func WithStore(s storage.Store) Option {
	return func(e *Experiment) { e.store = s }
}

// New validates cfg and parses both equations. A malformed equation is
// reported as *expr.MalformedExpressionError before anything runs.
func New(cfg Config, opts ...Option) (*Experiment, error) {
	cfg.ResolveEquations()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	benign, err := expr.Parse(cfg.Benign)
	if err != nil {
		return nil, fmt.Errorf("benign equation: %w", err)
	}
	malware, err := expr.Parse(cfg.Malware)
	if err != nil {
		return nil, fmt.Errorf("malware equation: %w", err)
	}
	p, err := pool.Get(cfg.Pool)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	points, err := cfg.TestPoints.Points()
	if err != nil {
		return nil, fmt.Errorf("%w: test points: %v", ErrInvalidConfig, err)
	}
	if cfg.Representation == RepresentationGaussian {
		if _, err := strategy.NewGaussianInit(strategy.Random{}, benign, cfg.ParamRange); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	e := &Experiment{
		cfg:     cfg,
		benign:  benign,
		malware: malware,
		pool:    p,
		points:  points,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the resolved configuration.
func (e *Experiment) Config() Config {
	return e.cfg
}

// Run starts a new run: creation, then removal from the creation champion.
// The returned record is also saved when a store is configured. On error the
// record holds whatever phases finished.
func (e *Experiment) Run(ctx context.Context) (*model.RunRecord, error) {
	run, err := e.newRecord()
	if err != nil {
		return nil, err
	}
	e.logger.Info("experiment started",
		"run_id", run.ID,
		"benign", e.cfg.BenignName,
		"malware", e.cfg.MalwareName,
		"representation", e.cfg.Representation,
		"evaluation", e.cfg.Evaluation)
	if err := e.save(ctx, run); err != nil {
		return run, err
	}
	return run, e.proceed(ctx, run)
}

// Resume continues a stored run. Finished phases are kept; an unfinished
// phase restarts from its latest checkpoint, or from scratch when there is
// none.
func (e *Experiment) Resume(ctx context.Context, run *model.RunRecord) error {
	if err := e.matches(run); err != nil {
		return err
	}
	e.logger.Info("experiment resumed", "run_id", run.ID)
	return e.proceed(ctx, run)
}

// RedoRemoval discards the removal phase of a stored run and evolves it again
// from the stored creation champion with this experiment's removal config.
// The run's stored config is replaced so a later Resume rebuilds the same
// removal phase.
func (e *Experiment) RedoRemoval(ctx context.Context, run *model.RunRecord) error {
	if err := e.matches(run); err != nil {
		return err
	}
	if run.Creation == nil || len(run.Creation.HallOfFame) == 0 {
		return fmt.Errorf("run %s has no finished creation phase", run.ID)
	}
	cfgJSON, err := e.encodeConfig()
	if err != nil {
		return err
	}
	e.logger.Info("redoing removal", "run_id", run.ID)
	run.Config = cfgJSON
	run.Removal = nil
	run.Comparison = nil
	return e.removal(ctx, run, false)
}

func (e *Experiment) matches(run *model.RunRecord) error {
	if run.BenignEquation != e.benign.String() || run.MalwareEquation != e.malware.String() {
		return fmt.Errorf("%w: run %s evolves %s into %s", ErrRunMismatch, run.ID, run.BenignEquation, run.MalwareEquation)
	}
	if run.Representation != e.cfg.Representation {
		return fmt.Errorf("%w: run %s uses the %s representation", ErrRunMismatch, run.ID, run.Representation)
	}
	return nil
}

// encodeConfig is the form stored in RunRecord.Config, which Resume reads
// back through ConfigOf.
func (e *Experiment) encodeConfig() ([]byte, error) {
	data, err := json.Marshal(e.cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func (e *Experiment) newRecord() (*model.RunRecord, error) {
	cfgJSON, err := e.encodeConfig()
	if err != nil {
		return nil, err
	}
	return &model.RunRecord{
		VersionedRecord: storage.Stamp(),
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		BenignName:      e.cfg.BenignName,
		MalwareName:     e.cfg.MalwareName,
		BenignEquation:  e.benign.String(),
		MalwareEquation: e.malware.String(),
		Representation:  e.cfg.Representation,
		Evaluation:      e.cfg.Evaluation,
		TestPoints:      model.Floats(e.points),
		InsertionStart:  model.Float(e.cfg.Insertion.Start),
		InsertionStop:   model.Float(e.cfg.Insertion.Stop),
		Seed:            e.cfg.Creation.Seed,
		Config:          cfgJSON,
	}, nil
}

func (e *Experiment) proceed(ctx context.Context, run *model.RunRecord) error {
	if run.Creation == nil {
		if err := e.creation(ctx, run); err != nil {
			return err
		}
	}
	if run.Removal == nil {
		return e.removal(ctx, run, true)
	}
	return nil
}

func (e *Experiment) creation(ctx context.Context, run *model.RunRecord) error {
	eng, err := e.creationEngine(run.ID)
	if err != nil {
		return err
	}
	res, err := e.runPhase(ctx, eng, run.ID, PhaseCreation, true)
	if err != nil {
		return fmt.Errorf("creation: %w", err)
	}
	run.Creation = phaseRecord(res, e.cfg.Creation, e.cfg.Weights)
	return e.save(ctx, run)
}

func (e *Experiment) removal(ctx context.Context, run *model.RunRecord, resume bool) error {
	creationFactory, err := genome.NewFactory(e.cfg.Weights)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	champion, err := run.Creation.HallOfFame[0].Individual(creationFactory, e.benign)
	if err != nil {
		return fmt.Errorf("creation champion: %w", err)
	}

	eng, weights, err := e.removalEngine(run.ID, champion.Genome)
	if err != nil {
		return err
	}
	res, err := e.runPhase(ctx, eng, run.ID, PhaseRemoval, resume)
	if err != nil {
		return fmt.Errorf("removal: %w", err)
	}
	run.Removal = phaseRecord(res, e.cfg.Removal, weights)
	comparison := Compare(e.benign, champion.Genome, res.Best().Genome)
	run.Comparison = &comparison
	e.logger.Info("experiment finished",
		"run_id", run.ID,
		"creation_generations", run.Creation.GenerationsUsed,
		"removal_generations", run.Removal.GenerationsUsed,
		"exact_duplicate", comparison.ExactDuplicate,
		"original_contained", comparison.OriginalContained)
	return e.save(ctx, run)
}

// runPhase resumes from the phase checkpoint when allowed and one exists.
func (e *Experiment) runPhase(ctx context.Context, eng *engine.Engine, runID, phase string, resume bool) (*engine.Result, error) {
	if resume && e.store != nil {
		cp, ok, err := e.store.GetCheckpoint(ctx, runID, phase)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint: %w", err)
		}
		if ok {
			return eng.Resume(ctx, cp)
		}
	}
	return eng.Run(ctx)
}

func (e *Experiment) save(ctx context.Context, run *model.RunRecord) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SaveRun(ctx, *run); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (e *Experiment) engineOptions(runID, phase string) []engine.Option {
	opts := []engine.Option{
		engine.WithLogger(e.logger.With("run_id", runID)),
		engine.WithPhase(phase),
	}
	if e.store != nil {
		opts = append(opts, engine.WithCheckpointer(e.store, runID))
	}
	if e.cfg.Representation == RepresentationGaussian {
		opts = append(opts, engine.WithBase(e.benign))
	}
	return opts
}

func (e *Experiment) variation(cfg engine.Config) (strategy.Crossover, strategy.Mutator) {
	uniform := strategy.Uniform{Pool: e.pool, MinHeight: cfg.SubTreeHeightMin, MaxHeight: cfg.SubTreeHeightMax}
	if e.cfg.Representation == RepresentationGaussian {
		return strategy.StaticLimit{Crossover: strategy.GaussianCrossover{}, MaxHeight: cfg.MaxTreeHeight},
			strategy.StaticLimitMutator{Mutator: strategy.GaussianMutator{Uniform: uniform}, MaxHeight: cfg.MaxTreeHeight}
	}
	return strategy.StaticLimit{Crossover: strategy.OnePoint{}, MaxHeight: cfg.MaxTreeHeight},
		strategy.StaticLimitMutator{Mutator: uniform, MaxHeight: cfg.MaxTreeHeight}
}

func selector() strategy.Selector {
	t := strategy.Tournament{Size: strategy.DefaultTournamentSize}
	return strategy.ReplaceInfinite{Selector: t, Replacement: t}
}

func (e *Experiment) creationEngine(runID string) (*engine.Engine, error) {
	factory, err := genome.NewFactory(e.cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	benignF, malwareF := expr.Compile(e.benign), expr.Compile(e.malware)
	var eval fitness.Evaluator
	switch e.cfg.Evaluation {
	case EvaluationIntegral:
		eval, err = fitness.NewPiecewiseIntegral(e.cfg.TestPoints.Start, e.cfg.TestPoints.Stop, benignF, malwareF, e.cfg.Insertion)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	default:
		eval = fitness.NewPiecewise(e.points, benignF, malwareF, e.cfg.Insertion)
	}

	random := strategy.Random{Pool: e.pool, MinHeight: e.cfg.InitHeightMin, MaxHeight: e.cfg.InitHeightMax}
	var initializer strategy.Initializer = strategy.SeedMix{Random: random, Benign: e.benign, Malware: e.malware}
	if e.cfg.Representation == RepresentationGaussian {
		initializer, err = strategy.NewGaussianInit(random, e.benign, e.cfg.ParamRange)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	cx, mut := e.variation(e.cfg.Creation)
	ops := engine.Operators{Initializer: initializer, Crossover: cx, Mutator: mut, Selector: selector()}
	return engine.New(e.cfg.Creation, factory, eval, ops, e.engineOptions(runID, PhaseCreation)...)
}

func (e *Experiment) removalEngine(runID string, champion genome.Genome) (*engine.Engine, []float64, error) {
	benignF := expr.Compile(e.benign)
	var eval fitness.Evaluator
	switch {
	case e.cfg.Evaluation == EvaluationIntegral:
		in, err := fitness.NewIntegral(e.cfg.TestPoints.Start, e.cfg.TestPoints.Stop, benignF, nil, "error")
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		eval = in
	case e.cfg.SpecialRemoval:
		eval = fitness.NewSingle(e.points, benignF).WithSizeReference(e.benign)
	default:
		eval = fitness.NewSingle(e.points, benignF)
	}

	weights := make([]float64, len(eval.Objectives()))
	for i := range weights {
		weights[i] = e.cfg.RemovalWeight
	}
	factory, err := genome.NewFactory(weights)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cx, mut := e.variation(e.cfg.Removal)
	ops := engine.Operators{
		Initializer: strategy.FromIndividual{Source: champion, Mutator: mut},
		Crossover:   cx,
		Mutator:     mut,
		Selector:    selector(),
	}
	eng, err := engine.New(e.cfg.Removal, factory, eval, ops, e.engineOptions(runID, PhaseRemoval)...)
	return eng, weights, err
}

func phaseRecord(res *engine.Result, cfg engine.Config, weights []float64) *model.PhaseRecord {
	return &model.PhaseRecord{
		Objectives:      res.Objectives,
		Weights:         model.Floats(weights),
		HallOfFame:      model.NewIndividualRecords(res.HallOfFame.Items()),
		GenerationsUsed: res.GenerationsUsed,
		MaxGenerations:  res.MaxGenerations,
		TargetError:     model.Float(cfg.TargetError),
		Logbook:         model.NewLogRecords(res.Logbook),
		RNGState:        res.RNGState,
		Duration:        res.Duration,
	}
}
