package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/fitness"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/hof"
	"github.com/wildfunctions/equation_evolution/pkg/model"
	"github.com/wildfunctions/equation_evolution/pkg/pool"
	"github.com/wildfunctions/equation_evolution/pkg/stats"
	"github.com/wildfunctions/equation_evolution/pkg/storage"
	"github.com/wildfunctions/equation_evolution/pkg/strategy"
)

var (
	benign  = expr.MustParse("x")
	malware = expr.MustParse("add(x, 1)")
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Population = 20
	cfg.MaxGenerations = 50
	cfg.TargetError = 0
	cfg.Workers = 2
	cfg.Seed = 42
	return cfg
}

func operators(t *testing.T, cfg Config) Operators {
	t.Helper()
	p, err := pool.Get("trojan")
	require.NoError(t, err)
	mut := strategy.Uniform{Pool: p, MinHeight: cfg.SubTreeHeightMin, MaxHeight: cfg.SubTreeHeightMax}
	return Operators{
		Initializer: strategy.SeedMix{
			Random:  strategy.Random{Pool: p, MinHeight: 1, MaxHeight: 2},
			Benign:  benign,
			Malware: malware,
		},
		Crossover: strategy.StaticLimit{Crossover: strategy.OnePoint{}, MaxHeight: cfg.MaxTreeHeight},
		Mutator:   strategy.StaticLimitMutator{Mutator: mut, MaxHeight: cfg.MaxTreeHeight},
		Selector:  strategy.Tournament{Size: strategy.DefaultTournamentSize},
	}
}

func piecewise(t *testing.T) fitness.Evaluator {
	t.Helper()
	pts, err := fitness.DefaultRange().Points()
	require.NoError(t, err)
	return fitness.NewPiecewise(pts, expr.Compile(benign), expr.Compile(malware), fitness.DefaultInterval())
}

func newEngine(t *testing.T, cfg Config, eval fitness.Evaluator, opts ...Option) *Engine {
	t.Helper()
	weights := make([]float64, len(eval.Objectives()))
	for i := range weights {
		weights[i] = -2
	}
	f, err := genome.NewFactory(weights)
	require.NoError(t, err)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	e, err := New(cfg, f, eval, operators(t, cfg), opts...)
	require.NoError(t, err)
	return e
}

// fingerprint is the comparable content of a result.
type fingerprint struct {
	Population []string
	Fitness    [][]float64
	HallOfFame []string
	Logbook    stats.Logbook
	Gens       int
	RNG        []byte
}

func fingerprintOf(res *Result) fingerprint {
	fp := fingerprint{Logbook: res.Logbook, Gens: res.GenerationsUsed, RNG: res.RNGState}
	for _, ind := range res.Population {
		fp.Population = append(fp.Population, ind.String())
		fp.Fitness = append(fp.Fitness, ind.Fitness.Values)
	}
	for _, ind := range res.HallOfFame.Items() {
		fp.HallOfFame = append(fp.HallOfFame, ind.String()+" "+ind.Fitness.String())
	}
	return fp
}

func TestEngine_PiecewiseMalwareErrorNeverRises(t *testing.T) {
	var benignErr, malwareErr []float64
	stop := TargetReached(0)
	track := func(pop []*genome.Individual, h *hof.HallOfFame) bool {
		best := h.Best()
		benignErr = append(benignErr, best.Fitness.Values[0])
		malwareErr = append(malwareErr, best.Fitness.Values[1])
		return stop(pop, h)
	}

	cfg := testConfig()
	res, err := newEngine(t, cfg, piecewise(t), WithStop(track)).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, malwareErr)
	require.LessOrEqual(t, res.GenerationsUsed, cfg.MaxGenerations)
	if res.GenerationsUsed < cfg.MaxGenerations {
		assert.True(t, res.Best().Fitness.Within(0))
	}

	// Benign error is ranked first. Once the champion matches the benign
	// function outside the interval, only the malware error can improve.
	first := -1
	for i, v := range benignErr {
		if v == 0 {
			first = i
			break
		}
	}
	require.NotEqual(t, -1, first, "benign seed never reached the hall of fame")
	for i := first + 1; i < len(malwareErr); i++ {
		assert.Equal(t, 0.0, benignErr[i])
		assert.LessOrEqual(t, malwareErr[i], malwareErr[i-1], "malware error rose at generation %d", i)
	}
}

func TestEngine_SingleTargetFromRandomTrees(t *testing.T) {
	pts, err := fitness.DefaultRange().Points()
	require.NoError(t, err)
	var inside []float64
	for _, x := range pts {
		if fitness.DefaultInterval().Contains(x) {
			inside = append(inside, x)
		}
	}
	eval := fitness.NewSingle(inside, expr.Compile(malware))

	var history []float64
	stop := TargetReached(0)
	track := func(pop []*genome.Individual, h *hof.HallOfFame) bool {
		history = append(history, h.Best().Fitness.Values[0])
		return stop(pop, h)
	}

	cfg := testConfig()
	p, err := pool.Get("trojan")
	require.NoError(t, err)
	ops := operators(t, cfg)
	ops.Initializer = strategy.Random{Pool: p, MinHeight: 1, MaxHeight: 2}
	f, err := genome.NewFactory([]float64{-2})
	require.NoError(t, err)
	e, err := New(cfg, f, eval, ops, WithLogger(quietLogger()), WithStop(track))
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1], "error rose at generation %d", i)
	}
	assert.LessOrEqual(t, res.Best().Fitness.Values[0], history[0])
	if res.GenerationsUsed < cfg.MaxGenerations {
		assert.Equal(t, 0.0, res.Best().Fitness.Values[0])
	}
}

func TestEngine_PiecewiseHallOfFameIsMonotonic(t *testing.T) {
	var history []genome.Fitness
	track := func(pop []*genome.Individual, h *hof.HallOfFame) bool {
		history = append(history, h.Best().Fitness.Clone())
		return false
	}

	cfg := testConfig()
	cfg.MaxGenerations = 30
	res, err := newEngine(t, cfg, piecewise(t), WithStop(track)).Run(context.Background())
	require.NoError(t, err)

	// The predicate is consulted before each offspring generation.
	require.Len(t, history, cfg.MaxGenerations)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i-1].Better(&history[i]), "hall of fame got worse at generation %d", i)
	}
	// The benign seed is a perfect match outside the interval.
	assert.Equal(t, 0.0, res.Best().Fitness.Values[0])
	assert.Equal(t, cfg.MaxGenerations, res.GenerationsUsed)
	assert.Len(t, res.Logbook, cfg.MaxGenerations+1)
}

func TestEngine_GenerationBound(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 5
	cfg.EarlyStop = false
	res, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.GenerationsUsed)
	assert.Equal(t, 5, res.MaxGenerations)
	require.Len(t, res.Logbook, 6)
	for i, rec := range res.Logbook {
		assert.Equal(t, i, rec.Gen)
	}
	assert.Equal(t, cfg.Population, res.Logbook[0].NEvals)

	cfg.MaxGenerations = 0
	res, err = newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.GenerationsUsed)
	assert.Len(t, res.Logbook, 1)
}

func TestEngine_StopsEarlyWhenTargetMet(t *testing.T) {
	cfg := testConfig()
	cfg.TargetError = 1e9
	res, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.GenerationsUsed)
}

func TestEngine_Deterministic(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 15
	cfg.EarlyStop = false
	cfg.Workers = 1
	a, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)

	cfg.Workers = 8
	b, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(fingerprintOf(a), fingerprintOf(b), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("same seed produced different runs (-first +second):\n%s", diff)
	}

	cfg.Seed = 43
	c, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, fingerprintOf(a).RNG, fingerprintOf(c).RNG)
}

// recorder keeps every checkpoint after a trip through the codec.
type recorder struct {
	checkpoints []model.Checkpoint
}

func (r *recorder) SaveCheckpoint(_ context.Context, cp model.Checkpoint) error {
	data, err := storage.EncodeCheckpoint(cp)
	if err != nil {
		return err
	}
	decoded, err := storage.DecodeCheckpoint(data)
	if err != nil {
		return err
	}
	r.checkpoints = append(r.checkpoints, decoded)
	return nil
}

func TestEngine_ResumeIsBitIdentical(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 20
	cfg.EarlyStop = false
	cfg.CheckpointEvery = 10

	rec := &recorder{}
	full, err := newEngine(t, cfg, piecewise(t), WithCheckpointer(rec, "run-1"), WithPhase("creation")).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rec.checkpoints, 2)

	cp := rec.checkpoints[0]
	assert.Equal(t, 10, cp.Generation)
	assert.Equal(t, "run-1", cp.RunID)
	assert.Equal(t, "creation", cp.Phase)

	resumed, err := newEngine(t, cfg, piecewise(t)).Resume(context.Background(), cp)
	require.NoError(t, err)

	if diff := cmp.Diff(fingerprintOf(full), fingerprintOf(resumed), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("resumed run diverged (-full +resumed):\n%s", diff)
	}
}

func TestEngine_ResumeRejectsMismatchedWeights(t *testing.T) {
	cfg := testConfig()
	_, err := newEngine(t, cfg, piecewise(t)).Resume(context.Background(), model.Checkpoint{Weights: []model.Float{-1}})
	assert.ErrorIs(t, err, ErrCheckpointMismatch)
}

func TestEngine_ZeroProbabilitiesOnlySelect(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 10
	cfg.CrossoverProbability = 0
	cfg.MutationProbability = 0

	var initial map[string]bool
	track := func(pop []*genome.Individual, h *hof.HallOfFame) bool {
		if initial == nil {
			initial = map[string]bool{}
			for _, ind := range pop {
				initial[ind.String()] = true
			}
		}
		for _, ind := range pop {
			require.True(t, initial[ind.String()], "%s was never in the initial population", ind)
			require.True(t, ind.Fitness.Valid)
		}
		return false
	}

	res, err := newEngine(t, cfg, piecewise(t), WithStop(track)).Run(context.Background())
	require.NoError(t, err)
	for _, rec := range res.Logbook[1:] {
		assert.Equal(t, 0, rec.NEvals, "generation %d re-evaluated unchanged individuals", rec.Gen)
	}
}

func TestEngine_PopulationOfOne(t *testing.T) {
	cfg := testConfig()
	cfg.Population = 1
	cfg.MaxGenerations = 5
	cfg.EarlyStop = false
	res, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Population, 1)
	assert.Equal(t, 5, res.GenerationsUsed)
}

func TestEngine_HeightInvariant(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 40
	cfg.EarlyStop = false
	cfg.MaxTreeHeight = 5
	cfg.MutationProbability = 0.5
	res, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)
	for _, ind := range res.Population {
		assert.LessOrEqual(t, ind.Genome.Height(), cfg.MaxTreeHeight)
	}
}

func TestEngine_CancelledBetweenGenerations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	cfg.EarlyStop = false
	res, err := newEngine(t, cfg, piecewise(t)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.GenerationsUsed)
	assert.NotNil(t, res.Best())
}

func TestEngine_CheckpointFailureAborts(t *testing.T) {
	cfg := testConfig()
	cfg.EarlyStop = false
	cfg.CheckpointEvery = 3
	boom := errors.New("disk full")
	res, err := newEngine(t, cfg, piecewise(t), WithCheckpointer(failing{boom}, "run")).Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, res.GenerationsUsed)
}

type failing struct{ err error }

func (f failing) SaveCheckpoint(context.Context, model.Checkpoint) error { return f.err }

func TestEngine_Metrics(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 3
	cfg.EarlyStop = false
	before := testutil.ToFloat64(generationsTotal.WithLabelValues("metrics-test"))
	evalsBefore := testutil.ToFloat64(evaluationsTotal.WithLabelValues("metrics-test"))

	res, err := newEngine(t, cfg, piecewise(t), WithPhase("metrics-test")).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before+3, testutil.ToFloat64(generationsTotal.WithLabelValues("metrics-test")))
	var evals int
	for _, rec := range res.Logbook {
		evals += rec.NEvals
	}
	assert.Equal(t, evalsBefore+float64(evals), testutil.ToFloat64(evaluationsTotal.WithLabelValues("metrics-test")))
	assert.Equal(t, res.Best().Fitness.Values[1],
		testutil.ToFloat64(bestFitness.WithLabelValues("metrics-test", "malware")))
}

func TestEngine_InvalidConfig(t *testing.T) {
	f, err := genome.NewFactory([]float64{-2, -2})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Population = 0
	_, err = New(cfg, f, piecewise(t), operators(t, testConfig()))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig()
	cfg.SubTreeHeightMin, cfg.SubTreeHeightMax = 3, 1
	_, err = New(cfg, f, piecewise(t), operators(t, testConfig()))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig()
	cfg.MutationProbability = 1.5
	_, err = New(cfg, f, piecewise(t), operators(t, testConfig()))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	single, err := genome.NewFactory([]float64{-1})
	require.NoError(t, err)
	_, err = New(testConfig(), single, piecewise(t), operators(t, testConfig()))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(testConfig(), f, piecewise(t), Operators{})
	assert.Error(t, err)
}
