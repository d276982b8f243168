package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReports(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 2
	cfg.EarlyStop = false
	cfg.HallOfFameSize = 3
	res, err := newEngine(t, cfg, piecewise(t)).Run(context.Background())
	require.NoError(t, err)

	r := NewReport("creation", res)
	assert.Equal(t, 2, r.GenerationsUsed)
	require.NotEmpty(t, r.HallOfFame)
	assert.Equal(t, 1, r.HallOfFame[0].Rank)
	assert.GreaterOrEqual(t, r.Evaluations, cfg.Population)

	var text bytes.Buffer
	WriteTextReport(&text, r)
	assert.Contains(t, text.String(), "CREATION")
	assert.Contains(t, text.String(), "Generations: 2 of 2")
	assert.Contains(t, text.String(), r.HallOfFame[0].Genome)

	var js bytes.Buffer
	require.NoError(t, WriteJSONReport(&js, r))
	var back map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &back))
	assert.Equal(t, "creation", back["phase"])

	var tex bytes.Buffer
	WriteHallOfFameLatex(&tex, "x_to_x+1", r)
	assert.True(t, strings.HasPrefix(tex.String(), `\documentclass{article}`))
	assert.Contains(t, tex.String(), `x\_to\_x+1`)
	assert.Contains(t, tex.String(), `\end{document}`)
}
