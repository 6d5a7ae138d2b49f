package query

import (
	"math"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// Statistics summarizes one review date.
type Statistics struct {
	Fecha        string
	Total        int
	Activas      int
	ConProblemas int
	Inactivas    int
	// SinRevisar counts stations with no review on Fecha.
	SinRevisar int
}

// Revisadas returns how many stations were reviewed.
func (s Statistics) Revisadas() int {
	return s.Total - s.SinRevisar
}

// ProgressPercent returns the rounded share of reviewed stations, 0 when
// there are no stations.
func (s Statistics) ProgressPercent() int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Revisadas()) / float64(s.Total) * 100))
}

// ComputeStatistics counts outcomes among reviews dated fecha and the
// stations left unreviewed that day.
func ComputeStatistics(stations []storage.Station, reviews []storage.Review, fecha string) Statistics {
	stats := Statistics{Fecha: fecha, Total: len(stations)}
	reviewed := make(map[string]struct{}, len(reviews))
	for _, review := range reviews {
		if review.Fecha != fecha {
			continue
		}
		reviewed[review.StationID] = struct{}{}
		switch review.Estado {
		case storage.EstadoActivo:
			stats.Activas++
		case storage.EstadoProblema:
			stats.ConProblemas++
		case storage.EstadoInactivo:
			stats.Inactivas++
		}
	}
	for _, station := range stations {
		if _, ok := reviewed[station.ID]; !ok {
			stats.SinRevisar++
		}
	}
	return stats
}

// DepartamentoSummary is the statistics of one department on one date.
type DepartamentoSummary struct {
	Departamento string
	Statistics
}

// GroupByDepartamento computes per-department statistics for fecha, ordered
// by department name. Reviews of unknown stations are ignored.
func GroupByDepartamento(stations []storage.Station, reviews []storage.Review, fecha string) []DepartamentoSummary {
	byDep := make(map[string][]storage.Station)
	depOf := make(map[string]string, len(stations))
	for _, station := range stations {
		byDep[station.Departamento] = append(byDep[station.Departamento], station)
		depOf[station.ID] = station.Departamento
	}
	reviewsByDep := make(map[string][]storage.Review)
	for _, review := range reviews {
		dep, ok := depOf[review.StationID]
		if !ok {
			continue
		}
		reviewsByDep[dep] = append(reviewsByDep[dep], review)
	}

	deps := Departamentos(stations)
	out := make([]DepartamentoSummary, 0, len(deps))
	for _, dep := range deps {
		out = append(out, DepartamentoSummary{
			Departamento: dep,
			Statistics:   ComputeStatistics(byDep[dep], reviewsByDep[dep], fecha),
		})
	}
	return out
}
