package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/stats"
)

func TestFloatEncodesNonFinite(t *testing.T) {
	data, err := json.Marshal([]Float{Float(math.Inf(1)), Float(math.Inf(-1)), Float(math.NaN()), 0.1})
	require.NoError(t, err)
	assert.Equal(t, `["+Inf","-Inf","NaN",0.1]`, string(data))

	var back []Float
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsInf(float64(back[0]), 1))
	assert.True(t, math.IsInf(float64(back[1]), -1))
	assert.True(t, math.IsNaN(float64(back[2])))
	assert.Equal(t, Float(0.1), back[3])
}

func TestFloatRejectsGarbage(t *testing.T) {
	var f Float
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &f))
}

func TestGaussianIndividualRecord(t *testing.T) {
	f, err := genome.NewFactory([]float64{-1})
	require.NoError(t, err)
	base := expr.MustParse("x")

	g, err := genome.NewGaussian(1.5, -2, 3, expr.MustParse("sin(x)"), base)
	require.NoError(t, err)
	ind := f.New(g)
	ind.Fitness.Set([]float64{math.Inf(1)})

	rec := NewIndividualRecord(ind)
	assert.Equal(t, KindGaussian, rec.Kind)

	back, err := rec.Individual(f, base)
	require.NoError(t, err)
	assert.Equal(t, ind.String(), back.String())
	assert.True(t, math.IsInf(back.Fitness.Values[0], 1))

	_, err = rec.Individual(f, nil)
	assert.Error(t, err)
}

func TestIndividualRecordChecksObjectiveCount(t *testing.T) {
	f, err := genome.NewFactory([]float64{-1, -1})
	require.NoError(t, err)
	rec := IndividualRecord{Kind: KindDirect, Tree: "x", Fitness: []Float{1}, Valid: true}
	_, err = rec.Individual(f, nil)
	assert.Error(t, err)

	rec = IndividualRecord{Kind: KindDirect, Tree: "add(x,", Valid: false}
	_, err = rec.Individual(f, nil)
	var malformed *expr.MalformedExpressionError
	assert.ErrorAs(t, err, &malformed)
}

func TestLogbookConversion(t *testing.T) {
	l := stats.Logbook{{Gen: 1, NEvals: 5, Fields: map[string]stats.Summary{
		"error": {Avg: math.Inf(1), Std: math.NaN(), Min: 0.5, Max: math.Inf(1)},
	}}}
	data, err := json.Marshal(NewLogRecords(l))
	require.NoError(t, err)

	var recs []LogRecord
	require.NoError(t, json.Unmarshal(data, &recs))
	back := Logbook(recs)
	require.Len(t, back, 1)
	assert.Equal(t, 5, back[0].NEvals)
	assert.Equal(t, 0.5, back[0].Fields["error"].Min)
	assert.True(t, math.IsNaN(back[0].Fields["error"].Std))
}
