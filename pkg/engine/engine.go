package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/fitness"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/hof"
	"github.com/wildfunctions/equation_evolution/pkg/model"
	"github.com/wildfunctions/equation_evolution/pkg/stats"
	"github.com/wildfunctions/equation_evolution/pkg/strategy"
)

// seedStream is the PCG stream paired with Config.Seed.
const seedStream = 0x9e3779b97f4a7c15

// Operators are the pluggable pieces of the generational loop.
type Operators struct {
	Initializer strategy.Initializer
	Crossover   strategy.Crossover
	Mutator     strategy.Mutator
	Selector    strategy.Selector
}

// StopFunc is consulted before every generation; returning true ends the run.
type StopFunc func(pop []*genome.Individual, h *hof.HallOfFame) bool

// TargetReached stops once the best archived individual scores at or below
// target on every objective.
func TargetReached(target float64) StopFunc {
	return func(_ []*genome.Individual, h *hof.HallOfFame) bool {
		best := h.Best()
		return best != nil && best.Fitness.Within(target)
	}
}

// Checkpointer receives run snapshots between generations.
type Checkpointer interface {
	SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error
}

// Engine runs generational genetic programming over one population.
type Engine struct {
	cfg     Config
	factory *genome.Factory
	eval    fitness.Evaluator
	ops     Operators
	stop    StopFunc
	logger  *slog.Logger

	phase        string
	runID        string
	base         expr.ExprNode
	checkpointer Checkpointer

	pcg *rand.PCG
	rng *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStop replaces the default TargetReached(cfg.TargetError) predicate.
func WithStop(stop StopFunc) Option {
	return func(e *Engine) { e.stop = stop }
}

// WithPhase labels logs, metrics and checkpoints.
func WithPhase(phase string) Option {
	return func(e *Engine) { e.phase = phase }
}

// WithCheckpointer stores a snapshot every cfg.CheckpointEvery generations
// under runID.
func WithCheckpointer(c Checkpointer, runID string) Option {
	return func(e *Engine) {
		e.checkpointer = c
		e.runID = runID
	}
}

// WithBase records the shared base tree of Gaussian genomes so checkpoints
// can be restored.
func WithBase(base expr.ExprNode) Option {
	return func(e *Engine) { e.base = base }
}

// New validates the configuration and wires the engine.
func New(cfg Config, factory *genome.Factory, eval fitness.Evaluator, ops Operators, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil || eval == nil {
		return nil, errors.New("engine needs a genome factory and an evaluator")
	}
	if ops.Initializer == nil || ops.Crossover == nil || ops.Mutator == nil || ops.Selector == nil {
		return nil, errors.New("engine needs an initializer, crossover, mutator and selector")
	}
	if n := len(eval.Objectives()); n != factory.Objectives() {
		return nil, fmt.Errorf("%w: evaluator has %d objectives but %d weights are configured",
			ErrInvalidConfig, n, factory.Objectives())
	}

	pcg := rand.NewPCG(cfg.Seed, seedStream)
	e := &Engine{
		cfg:     cfg,
		factory: factory,
		eval:    eval,
		ops:     ops,
		stop:    TargetReached(cfg.TargetError),
		logger:  slog.Default(),
		phase:   "evolve",
		pcg:     pcg,
		rng:     rand.New(pcg),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result is the outcome of a run.
type Result struct {
	HallOfFame      *hof.HallOfFame
	Population      []*genome.Individual
	GenerationsUsed int
	MaxGenerations  int
	Objectives      []string
	Logbook         stats.Logbook
	RNGState        []byte
	Duration        time.Duration
}

// Best returns the top of the hall of fame.
func (r *Result) Best() *genome.Individual {
	return r.HallOfFame.Best()
}

// state is everything the loop carries between generations.
type state struct {
	gen     int
	pop     []*genome.Individual
	hof     *hof.HallOfFame
	logbook stats.Logbook
}

// Run initializes a population and evolves it until the generation cap or
// the stop predicate ends the run. Cancelling ctx stops the run between
// generations; the partial result is returned along with ctx's error.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	e.logger.Info("evolution started",
		"phase", e.phase,
		"population", e.cfg.Population,
		"max_generations", e.cfg.MaxGenerations,
		"seed", e.cfg.Seed,
		"workers", e.cfg.workers())

	genomes := e.ops.Initializer.Initialize(e.cfg.Population, e.rng)
	st := &state{pop: make([]*genome.Individual, len(genomes)), hof: hof.New(e.cfg.HallOfFameSize)}
	for i, g := range genomes {
		st.pop[i] = e.factory.New(g)
	}

	nevals, err := e.evaluate(st.pop)
	if err != nil {
		return e.result(st, start), err
	}
	e.archive(st, nevals)

	return e.loop(ctx, st, start)
}

func (e *Engine) loop(ctx context.Context, st *state, start time.Time) (*Result, error) {
	for st.gen < e.cfg.MaxGenerations && !(e.cfg.EarlyStop && e.stop(st.pop, st.hof)) {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("evolution cancelled", "phase", e.phase, "generation", st.gen)
			return e.result(st, start), err
		}

		st.gen++
		offspring := e.ops.Selector.Select(st.pop, len(st.pop), e.rng)
		offspring = strategy.VarAnd(offspring, e.ops.Crossover, e.ops.Mutator,
			e.cfg.CrossoverProbability, e.cfg.MutationProbability, e.rng)

		nevals, err := e.evaluate(offspring)
		if err != nil {
			return e.result(st, start), err
		}
		st.pop = offspring
		e.archive(st, nevals)
		generationsTotal.WithLabelValues(e.phase).Inc()

		if e.checkpointer != nil && e.cfg.CheckpointEvery > 0 && st.gen%e.cfg.CheckpointEvery == 0 {
			if err := e.saveCheckpoint(ctx, st); err != nil {
				checkpointsTotal.WithLabelValues(e.phase, "error").Inc()
				return e.result(st, start), fmt.Errorf("checkpoint generation %d: %w", st.gen, err)
			}
			checkpointsTotal.WithLabelValues(e.phase, "ok").Inc()
		}
	}

	res := e.result(st, start)
	best := res.Best()
	attrs := []any{"phase", e.phase, "generations", st.gen, "duration", res.Duration}
	if best != nil {
		attrs = append(attrs, "best", best.String(), "fitness", best.Fitness.String())
	}
	e.logger.Info("evolution finished", attrs...)
	return res, nil
}

// archive updates the hall of fame and appends the logbook row of the
// current generation.
func (e *Engine) archive(st *state, nevals int) {
	improved := st.hof.Update(st.pop)
	rec := stats.Compile(st.gen, nevals, st.pop, e.eval.Objectives())
	st.logbook = append(st.logbook, rec)

	best := st.hof.Best()
	if best == nil {
		return
	}
	for i, name := range e.eval.Objectives() {
		bestFitness.WithLabelValues(e.phase, name).Set(best.Fitness.Values[i])
	}
	e.logger.Debug("generation",
		"phase", e.phase,
		"gen", st.gen,
		"nevals", nevals,
		"best", best.Fitness.String())
	if improved {
		e.logger.Info("hall of fame improved",
			"phase", e.phase,
			"gen", st.gen,
			"best", best.String(),
			"fitness", best.Fitness.String())
	}
}

// evaluate computes the fitness of every individual whose fitness is stale,
// in parallel. The RNG is never touched here, so results do not depend on
// the worker count.
func (e *Engine) evaluate(pop []*genome.Individual) (int, error) {
	var invalid []*genome.Individual
	for _, ind := range pop {
		if !ind.Fitness.Valid {
			invalid = append(invalid, ind)
		}
	}

	start := time.Now()
	want := e.factory.Objectives()
	values := make([][]float64, len(invalid))

	var g errgroup.Group
	g.SetLimit(e.cfg.workers())
	for i, ind := range invalid {
		g.Go(func() error {
			v := e.eval.Evaluate(ind)
			if len(v) != want {
				return fmt.Errorf("evaluator returned %d values for %s, want %d", len(v), ind, want)
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i, ind := range invalid {
		ind.Fitness.Set(values[i])
	}
	evaluationsTotal.WithLabelValues(e.phase).Add(float64(len(invalid)))
	evaluationDuration.WithLabelValues(e.phase).Observe(time.Since(start).Seconds())
	return len(invalid), nil
}

func (e *Engine) result(st *state, start time.Time) *Result {
	rngState, err := e.pcg.MarshalBinary()
	if err != nil {
		e.logger.Error("marshal rng state", "error", err)
	}
	return &Result{
		HallOfFame:      st.hof,
		Population:      st.pop,
		GenerationsUsed: st.gen,
		MaxGenerations:  e.cfg.MaxGenerations,
		Objectives:      e.eval.Objectives(),
		Logbook:         st.logbook,
		RNGState:        rngState,
		Duration:        time.Since(start),
	}
}
