package summary

import (
	"sort"

	"github.com/harrison/envsummary/internal/models"
)

// Finalize converts running sums to averages, computes diff_bd and bd_jump,
// and returns the records sorted by environment id. Records are modified in
// place; call it once per record set.
func Finalize(envs []*models.EnvironmentStats) []*models.EnvironmentStats {
	for _, s := range envs {
		if s.NumGens > 0 {
			s.AvgBD /= float64(s.NumGens)
			s.AvgFitness /= float64(s.NumGens)
		}
		s.DiffBD = difference(s.FinalBD, s.InitialBD)
	}

	sorted := make([]*models.EnvironmentStats, len(envs))
	copy(sorted, envs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Env < sorted[j].Env
	})

	for i, s := range sorted {
		if i == 0 {
			s.BDJump = models.NA()
			continue
		}
		s.BDJump = difference(s.InitialBD, sorted[i-1].FinalBD)
	}

	return sorted
}

// difference returns a - b, or N/A when either side is missing.
func difference(a, b models.OptionalFloat) models.OptionalFloat {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok || !bok {
		return models.NA()
	}
	return models.Float(av - bv)
}
