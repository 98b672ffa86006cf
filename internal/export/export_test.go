package export

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/harrison/envsummary/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleEnvironments() []*models.EnvironmentStats {
	env1 := models.NewEnvironmentStats(1, models.Int(42))
	env1.InitialBD = models.Float(1)
	env1.FinalBD = models.Float(3)
	env1.MinBD = models.Float(1)
	env1.MaxBD = models.Float(3)
	env1.AvgBD = 2
	env1.NumGens = 2
	env1.AvgFitness = 12.5
	env1.DiffBD = models.Float(2)
	env1.BDJump = models.NA()

	env2 := models.NewEnvironmentStats(2, models.Int(42))
	env2.NumGens = 1
	env2.AvgFitness = 0.00001
	env2.DiffBD = models.NA()
	env2.BDJump = models.NA()

	return []*models.EnvironmentStats{env1, env2}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleEnvironments()))

	want := "avg_bd,avg_fitness,bd_jump,diff_bd,env,final_bd,initial_bd,max_bd,min_bd,num_gens,seed\n" +
		"2.0,12.5,N/A,2.0,1,3.0,1.0,3.0,1.0,2,42\n" +
		"0.0,1.0e-05,N/A,N/A,2,,,,,1,42\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVUnsetSeed(t *testing.T) {
	env := models.NewEnvironmentStats(0, models.OptionalInt{})
	env.NumGens = 1
	env.DiffBD = models.NA()
	env.BDJump = models.NA()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*models.EnvironmentStats{env}))

	assert.Contains(t, buf.String(), "\n0.0,0.0,N/A,N/A,0,,,,,1,\n")
}

func TestWriteCSVDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteCSV(&a, sampleEnvironments()))
	require.NoError(t, WriteCSV(&b, sampleEnvironments()))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, nil)
	assert.ErrorIs(t, err, ErrNoEnvironments)
	assert.Zero(t, buf.Len())
}

func TestWriteWorkbookMatchesTable(t *testing.T) {
	envs := sampleEnvironments()

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, envs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	columns, rows, err := Table(envs)
	require.NoError(t, err)

	for j, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		got, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}

	for i, row := range rows {
		for j, want := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			got, err := f.GetCellValue(SheetName, cell, excelize.Options{RawCellValue: true})
			require.NoError(t, err)

			if want == "" || want == models.NotApplicable {
				assert.Equal(t, want, got, "cell %s", cell)
				continue
			}
			wantNum, err := strconv.ParseFloat(want, 64)
			require.NoError(t, err)
			gotNum, err := strconv.ParseFloat(got, 64)
			require.NoError(t, err, "cell %s should be numeric, got %q", cell, got)
			assert.InDelta(t, wantNum, gotNum, 1e-12, "cell %s", cell)
		}
	}
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteWorkbook(&buf, nil), ErrNoEnvironments)
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, "", cellValue(""))
	assert.Equal(t, "N/A", cellValue("N/A"))
	assert.Equal(t, int64(7), cellValue("7"))
	assert.Equal(t, 2.5, cellValue("2.5"))
	assert.Equal(t, 1e-05, cellValue("1.0e-05"))
	assert.Equal(t, "Infinity", cellValue("Infinity"))
}

func TestWriteEdges(t *testing.T) {
	edges := []models.EdgeSnapshot{
		{Environment: 0, Tag: models.EdgeBegin, Generation: 1, Mutated: models.Float(12), BDRatio: models.Float(0.5), Fitness: models.Float(10)},
		{Environment: 0, Tag: models.EdgeEnd, Generation: 2, Mutated: models.Float(9), Fitness: models.Float(20)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEdges(&buf, "run.csv", edges))

	want := "file,Environment,Tag,Generation,Mutated,B/D Ratio,Fitness\n" +
		"run.csv,0,begin,1,12.0,0.5,10.0\n" +
		"run.csv,0,end,2,9.0,,20.0\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteEdgesEmptyWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEdges(&buf, "run.csv", nil))
	assert.Equal(t, "file,Environment,Tag,Generation,Mutated,B/D Ratio,Fitness\n", buf.String())
}
