package strategy

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/pool"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func trojanPool(t *testing.T) pool.Pool {
	t.Helper()
	p, err := pool.Get("trojan")
	require.NoError(t, err)
	return p
}

func direct(s string) genome.Genome {
	return genome.NewDirect(expr.MustParse(s))
}

func scored(t *testing.T, s string, values ...float64) *genome.Individual {
	t.Helper()
	weights := make([]float64, len(values))
	for i := range weights {
		weights[i] = -1
	}
	f, err := genome.NewFactory(weights)
	require.NoError(t, err)
	ind := f.New(direct(s))
	ind.Fitness.Set(values)
	return ind
}

func TestOnePointPreservesNodeCount(t *testing.T) {
	rng := testRNG(1)
	for i := 0; i < 200; i++ {
		a := direct("add(mul(x, x), sin(x))")
		b := direct("sub(x, div(1, cos(x)))")
		before := a.Size() + b.Size()
		a, b = OnePoint{}.Mate(a, b, rng)
		require.Equal(t, before, a.Size()+b.Size())
		require.NotEqual(t, "x", a.String(), "the root is never swapped")
	}
}

func TestOnePointLeavesSingleNodeTreesAlone(t *testing.T) {
	a, b := OnePoint{}.Mate(direct("x"), direct("add(x, 1)"), testRNG(2))
	assert.Equal(t, "x", a.String())
	assert.Equal(t, "add(x, 1)", b.String())
}

func TestOnePointDoesNotAlias(t *testing.T) {
	rng := testRNG(3)
	a, b := OnePoint{}.Mate(direct("add(x, 1)"), direct("mul(x, -1)"), rng)
	before := b.String()
	mutateTree(a, trojanPool(t), 2, 2, rng)
	assert.Equal(t, before, b.String())
}

func TestUniformMutationChangesTree(t *testing.T) {
	rng := testRNG(4)
	m := Uniform{Pool: trojanPool(t), MinHeight: 1, MaxHeight: 3}
	changed := 0
	for i := 0; i < 100; i++ {
		g := m.Mutate(direct("add(x, 1)"), rng)
		// Replacing the root yields a tree of height 1..3; replacing a leaf
		// yields height 2..4.
		require.LessOrEqual(t, g.Height(), 4)
		if g.String() != "add(x, 1)" {
			changed++
		}
	}
	assert.Greater(t, changed, 50)
}

func TestStaticLimitHeightInvariant(t *testing.T) {
	rng := testRNG(5)
	p := trojanPool(t)
	const maxHeight = 6

	cx := StaticLimit{Crossover: OnePoint{}, MaxHeight: maxHeight}
	mut := StaticLimitMutator{Mutator: Uniform{Pool: p, MinHeight: 1, MaxHeight: 3}, MaxHeight: maxHeight}

	pop := Random{Pool: p, MinHeight: 1, MaxHeight: 3}.Initialize(30, rng)
	for gen := 0; gen < 50; gen++ {
		for i := 1; i < len(pop); i += 2 {
			pop[i-1], pop[i] = cx.Mate(pop[i-1], pop[i], rng)
		}
		for i := range pop {
			pop[i] = mut.Mutate(pop[i], rng)
		}
		for _, g := range pop {
			require.LessOrEqual(t, g.Height(), maxHeight)
		}
	}
}

func TestStaticLimitRestoresOriginal(t *testing.T) {
	rng := testRNG(6)
	tall := Uniform{Pool: trojanPool(t), MinHeight: 5, MaxHeight: 5}
	mut := StaticLimitMutator{Mutator: tall, MaxHeight: 1}
	g := mut.Mutate(direct("add(x, 1)"), rng)
	assert.Equal(t, "add(x, 1)", g.String())
}

func TestVarAndZeroProbabilityIsNoOp(t *testing.T) {
	rng := testRNG(7)
	p := trojanPool(t)
	selected := []*genome.Individual{
		scored(t, "add(x, 1)", 1),
		scored(t, "mul(x, x)", 2),
		scored(t, "sin(x)", 3),
	}
	cx := OnePoint{}
	mut := Uniform{Pool: p, MinHeight: 1, MaxHeight: 2}

	offspring := VarAnd(selected, cx, mut, 0, 0, rng)
	require.Len(t, offspring, 3)
	for i, ind := range offspring {
		assert.Equal(t, selected[i].String(), ind.String())
		assert.True(t, ind.Fitness.Valid, "untouched offspring keep their fitness")
		assert.NotSame(t, selected[i], ind)
	}
}

func TestVarAndInvalidatesModified(t *testing.T) {
	rng := testRNG(8)
	selected := []*genome.Individual{scored(t, "add(x, 1)", 1), scored(t, "mul(x, x)", 2)}
	mut := Uniform{Pool: trojanPool(t), MinHeight: 1, MaxHeight: 2}

	offspring := VarAnd(selected, OnePoint{}, mut, 1, 1, rng)
	for _, ind := range offspring {
		assert.False(t, ind.Fitness.Valid)
	}
	assert.Equal(t, "add(x, 1)", selected[0].String(), "parents are never modified")
	assert.True(t, selected[0].Fitness.Valid)
}

func TestTournamentPopulationOfOne(t *testing.T) {
	only := scored(t, "x", 1)
	chosen := Tournament{Size: 3}.Select([]*genome.Individual{only}, 5, testRNG(9))
	require.Len(t, chosen, 5)
	for _, c := range chosen {
		assert.Same(t, only, c)
	}
}

func TestTournamentFavoursFitter(t *testing.T) {
	pop := []*genome.Individual{
		scored(t, "x", 10),
		scored(t, "add(x, 1)", 0.1),
		scored(t, "mul(x, x)", 5),
	}
	counts := map[string]int{}
	for _, c := range (Tournament{Size: 3}).Select(pop, 3000, testRNG(10)) {
		counts[c.String()]++
	}
	// P(best drawn at least once in 3) = 1 - (2/3)^3 = 19/27.
	assert.InDelta(t, 3000*19.0/27.0, counts["add(x, 1)"], 150)
	assert.Greater(t, counts["add(x, 1)"], counts["mul(x, x)"])
	assert.Greater(t, counts["mul(x, x)"], counts["x"])
}

func TestReplaceInfinite(t *testing.T) {
	finite := scored(t, "x", 1)
	broken := scored(t, "div(1, x)", math.Inf(1))
	pop := []*genome.Individual{broken, finite, broken}

	sel := ReplaceInfinite{Selector: Tournament{Size: 3}, Replacement: Tournament{Size: 3}}
	for _, c := range sel.Select(pop, 10, testRNG(11)) {
		assert.Same(t, finite, c)
	}
	assert.Same(t, broken, pop[0], "caller's population is untouched")

	all := []*genome.Individual{broken}
	assert.Same(t, broken, sel.Select(all, 1, testRNG(12))[0])
}

func TestSeedMix(t *testing.T) {
	s := SeedMix{
		Random:  Random{Pool: trojanPool(t), MinHeight: 1, MaxHeight: 2},
		Benign:  expr.MustParse("x"),
		Malware: expr.MustParse("add(x, 1)"),
	}
	counts := map[string]int{}
	for _, g := range s.Initialize(900, testRNG(13)) {
		counts[g.String()]++
	}
	assert.InDelta(t, 300, counts["x"], 60)
	assert.InDelta(t, 300, counts["add(x, 1)"], 60)
}

func TestFromIndividualKeepsFirstCopy(t *testing.T) {
	src := direct("add(mul(x, x), 1)")
	init := FromIndividual{Source: src, Mutator: Uniform{Pool: trojanPool(t), MinHeight: 1, MaxHeight: 2}}
	out := init.Initialize(10, testRNG(14))
	require.Len(t, out, 10)
	assert.Equal(t, src.String(), out[0].String())
	assert.NotSame(t, src, out[0])
	assert.Equal(t, "add(mul(x, x), 1)", src.String())
}

func TestGaussianInitRejectsZeroOnlyRange(t *testing.T) {
	inner := Random{Pool: trojanPool(t), MinHeight: 1, MaxHeight: 2}
	_, err := NewGaussianInit(inner, expr.MustParse("x"), ParamRange{Min: 0, Max: 0})
	assert.ErrorIs(t, err, ErrZeroWidthRange)

	_, err = NewGaussianInit(inner, expr.MustParse("x"), ParamRange{Min: 2, Max: 1})
	assert.Error(t, err)
}

func TestGaussianInitParameters(t *testing.T) {
	inner := Random{Pool: trojanPool(t), MinHeight: 1, MaxHeight: 2}
	base := expr.MustParse("x")
	gi, err := NewGaussianInit(inner, base, DefaultParamRange())
	require.NoError(t, err)

	for _, g := range gi.Initialize(200, testRNG(15)) {
		gg := g.(*genome.Gaussian)
		assert.NotZero(t, gg.C)
		for _, v := range []float64{gg.A, gg.B, gg.C} {
			assert.Equal(t, math.Trunc(v), v)
			assert.True(t, v >= -3 && v <= 3)
		}
		assert.Same(t, base, gg.Base)
	}
}

func TestGaussianOperatorsKeepWidthNonZero(t *testing.T) {
	rng := testRNG(16)
	p := trojanPool(t)
	base := expr.MustParse("x")
	gi, err := NewGaussianInit(Random{Pool: p, MinHeight: 1, MaxHeight: 2}, base, ParamRange{Min: -1, Max: 1})
	require.NoError(t, err)

	pop := gi.Initialize(20, rng)
	cx := GaussianCrossover{}
	mut := GaussianMutator{Uniform{Pool: p, MinHeight: 1, MaxHeight: 2}}
	for gen := 0; gen < 100; gen++ {
		for i := 1; i < len(pop); i += 2 {
			pop[i-1], pop[i] = cx.Mate(pop[i-1], pop[i], rng)
		}
		for i := range pop {
			pop[i] = mut.Mutate(pop[i], rng)
			require.NotZero(t, pop[i].(*genome.Gaussian).C)
		}
	}
}

func TestGaussianBlendStaysBetweenParents(t *testing.T) {
	rng := testRNG(17)
	base := expr.MustParse("x")
	for i := 0; i < 100; i++ {
		a := &genome.Gaussian{A: -2, B: 1, C: 1, Root: expr.MustParse("add(x, 1)"), Base: base}
		b := &genome.Gaussian{A: 2, B: 3, C: 3, Root: expr.MustParse("mul(x, x)"), Base: base}
		ca, cb := GaussianCrossover{}.Mate(a, b, rng)
		for _, g := range []*genome.Gaussian{ca.(*genome.Gaussian), cb.(*genome.Gaussian)} {
			assert.True(t, g.A >= -2 && g.A <= 2)
			assert.True(t, g.B >= 1 && g.B <= 3)
			assert.True(t, g.C >= 1 && g.C <= 3)
		}
	}
}
