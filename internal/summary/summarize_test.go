package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simulatorCSV mirrors the simulator's data file: the header carries one extra
// "# ARGS" cell that data rows do not.
const simulatorCSV = `Generation,Environment,# Organisms Mutated,B/D Ratio,Fitness,Δfit+ mean,Δfit- mean,Δfit net mean,# ARGS seed=1234 loci=10 startorgs=100 maxorgs=1000 mutability=0.1 neutral-range=0 max-fitness=100 quiet=false
1,0,12,0.500000,10.000000,0.1,-0.1,0.0
2,0,9,1.500000,20.000000,0.1,-0.1,0.0
3,1,7,2.000000,NaN,NaN,NaN,NaN
4,1,5,,30.000000,0.1,-0.1,0.0
`

func TestSummarizeSimulatorOutput(t *testing.T) {
	result, err := Summarize(context.Background(), strings.NewReader(simulatorCSV), Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, result.RowsRead)
	assert.Equal(t, 0, result.RowsSkipped)
	assert.Equal(t, "1234", result.Seed.String())
	require.Len(t, result.Environments, 2)

	env0, env1 := result.Environments[0], result.Environments[1]
	assert.Equal(t, 0, env0.Env)
	assert.Equal(t, 2, env0.NumGens)
	assert.InDelta(t, 1.0, env0.AvgBD, 1e-9)
	assert.InDelta(t, 15.0, env0.AvgFitness, 1e-9)
	assert.Equal(t, "1234", env0.Seed.String())

	assert.Equal(t, 1, env1.Env)
	assert.Equal(t, 2, env1.NumGens)
	assert.InDelta(t, 1.0, env1.AvgBD, 1e-9, "missing B/D counts toward num_gens")
	assert.InDelta(t, 15.0, env1.AvgFitness, 1e-9, "NaN fitness counts toward num_gens")
	assert.Equal(t, "0.0", env1.DiffBD.String())
	assert.Equal(t, "0.5", env1.BDJump.String())
}

func TestSummarizeHeaderOnly(t *testing.T) {
	result, err := Summarize(context.Background(), strings.NewReader("Environment,B/D Ratio,Fitness\n"), Options{})
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Equal(t, 0, result.RowsRead)
}

func TestSummarizeEmptyInput(t *testing.T) {
	result, err := Summarize(context.Background(), strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestSummarizeBlankEnvironmentsOnly(t *testing.T) {
	in := "Environment,B/D Ratio,Fitness\n,1,1\n ,2,2\n"
	result, err := Summarize(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Equal(t, 2, result.RowsRead)
	assert.Equal(t, 2, result.RowsSkipped)
}

func TestSummarizeMissingColumns(t *testing.T) {
	in := "Environment,Other\n1,x\n1,y\n"
	result, err := Summarize(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, result.Environments, 1)

	s := result.Environments[0]
	assert.Equal(t, 2, s.NumGens)
	assert.False(t, s.InitialBD.IsSet())
	assert.True(t, s.DiffBD.IsNA())
	assert.False(t, result.Seed.IsSet())
}

func TestSummarizeSeedColonHeader(t *testing.T) {
	in := "Environment,B/D Ratio,SEED:77\n1,1.0\n"
	result, err := Summarize(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.Equal(t, "77", result.Seed.String())
	assert.Equal(t, "77", result.Environments[0].Seed.String())
}

func TestSummarizeNonNumericEnvironmentFails(t *testing.T) {
	in := "Environment,B/D Ratio\n1,1\nx,2\n"
	_, err := Summarize(context.Background(), strings.NewReader(in), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestSummarizeMalformedCSVFails(t *testing.T) {
	in := "Environment,B/D Ratio\n1,\"unterminated\n"
	_, err := Summarize(context.Background(), strings.NewReader(in), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read csv row 1")
}

func TestSummarizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Summarize(ctx, strings.NewReader("Environment\n1\n"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeEnvironmentSetMatchesInput(t *testing.T) {
	in := "Environment,B/D Ratio\n5,1\n3,1\n,1\n5,1\n7,1\n3,1\n"
	result, err := Summarize(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)

	got := map[int]int{}
	for _, s := range result.Environments {
		got[s.Env] = s.NumGens
	}
	assert.Equal(t, map[int]int{3: 2, 5: 2, 7: 1}, got)
}
