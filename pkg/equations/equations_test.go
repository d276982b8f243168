package equations

import (
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/equation_evolution/pkg/expr"
)

func TestCatalogParses(t *testing.T) {
	names := Names()
	require.Len(t, names, 24)
	assert.True(t, sort.StringsAreSorted(names))

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tree, err := Get(name)
			require.NoError(t, err)
			if strings.HasPrefix(name, "large") {
				assert.Greater(t, tree.NodeCount(), 100)
				return
			}
			f := expr.Compile(tree)
			for x := -2.0; x < 2.25; x += 0.25 {
				assert.False(t, math.IsNaN(f(x)), "%s(%g) is NaN", name, x)
			}
		})
	}
}

func TestCatalogValues(t *testing.T) {
	cases := []struct {
		name string
		x    float64
		want float64
	}{
		{"linear1", 3, 3},
		{"linear2", 3, 4},
		{"linear3", 2, 8},
		{"polynomial3", 2, 16},
		{"exponential2", 2, 8},
		{"reciprocal3", 2, -3},
		{"root1", 9, 3},
		{"sin1", 0, 0},
		{"cos3", -1, 3},
	}
	for _, tc := range cases {
		tree, err := Get(tc.name)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, expr.Compile(tree)(tc.x), 1e-12, tc.name)
	}
}

func TestResolve(t *testing.T) {
	eq, name := Resolve("linear2")
	assert.Equal(t, "add(x, 1)", eq)
	assert.Equal(t, "linear2", name)

	eq, name = Resolve("mul(x, x)")
	assert.Equal(t, "mul(x, x)", eq)
	assert.Equal(t, "mul(x, x)", name)

	_, err := Get("nope")
	assert.Error(t, err)
}
