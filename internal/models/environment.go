package models

import (
	"sort"
	"strconv"
)

// Summary column names
const (
	FieldAvgBD      = "avg_bd"
	FieldAvgFitness = "avg_fitness"
	FieldBDJump     = "bd_jump"
	FieldDiffBD     = "diff_bd"
	FieldEnv        = "env"
	FieldFinalBD    = "final_bd"
	FieldInitialBD  = "initial_bd"
	FieldMaxBD      = "max_bd"
	FieldMinBD      = "min_bd"
	FieldNumGens    = "num_gens"
	FieldSeed       = "seed"
)

// EnvironmentStats accumulates statistics for one environment of a simulation run.
//
// AvgBD and AvgFitness hold running sums until the record is finalized, after
// which they hold the sum divided by NumGens. Rows with a missing value still
// count toward NumGens, so missing values pull the averages down.
type EnvironmentStats struct {
	Seed       OptionalInt   // Run seed, unset if none was found before this record was created
	Env        int           // Environment id
	InitialBD  OptionalFloat // First present B/D ratio
	FinalBD    OptionalFloat // Last present B/D ratio
	MinBD      OptionalFloat // Smallest present B/D ratio
	MaxBD      OptionalFloat // Largest present B/D ratio
	AvgBD      float64       // Sum, then mean over NumGens
	NumGens    int           // Rows seen for this environment
	AvgFitness float64       // Sum, then mean over NumGens
	DiffBD     OptionalFloat // FinalBD - InitialBD, or N/A
	BDJump     OptionalFloat // InitialBD - previous environment's FinalBD, or N/A
}

// NewEnvironmentStats creates an empty record for env tagged with seed.
func NewEnvironmentStats(env int, seed OptionalInt) *EnvironmentStats {
	return &EnvironmentStats{
		Seed: seed,
		Env:  env,
	}
}

// Field is one named summary value.
type Field struct {
	Name  string
	Value string
}

// Fields returns every summary value of the record, in declaration order.
func (s *EnvironmentStats) Fields() []Field {
	return []Field{
		{FieldSeed, s.Seed.String()},
		{FieldEnv, strconv.Itoa(s.Env)},
		{FieldInitialBD, s.InitialBD.String()},
		{FieldFinalBD, s.FinalBD.String()},
		{FieldMinBD, s.MinBD.String()},
		{FieldMaxBD, s.MaxBD.String()},
		{FieldAvgBD, FormatFloat(s.AvgBD)},
		{FieldNumGens, strconv.Itoa(s.NumGens)},
		{FieldAvgFitness, FormatFloat(s.AvgFitness)},
		{FieldDiffBD, s.DiffBD.String()},
		{FieldBDJump, s.BDJump.String()},
	}
}

// ColumnNames returns the record's field names sorted lexicographically.
func (s *EnvironmentStats) ColumnNames() []string {
	fields := s.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}

// Values returns the record's values in the given column order.
// Unknown column names yield empty strings.
func (s *EnvironmentStats) Values(columns []string) []string {
	byName := make(map[string]string, len(columns))
	for _, f := range s.Fields() {
		byName[f.Name] = f.Value
	}

	values := make([]string, len(columns))
	for i, name := range columns {
		values[i] = byName[name]
	}
	return values
}
