package query

import (
	"context"
	"fmt"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// Source is the read surface the façade needs from storage.
type Source interface {
	GetAllStations(ctx context.Context) ([]storage.Station, error)
	GetStationsByDepartamento(ctx context.Context, departamento string) ([]storage.Station, error)
	GetStationsByActivo(ctx context.Context, activo bool) ([]storage.Station, error)
	ListStations(ctx context.Context, cond storage.Condition) ([]storage.Station, error)
	GetReviewsByDate(ctx context.Context, fecha string) ([]storage.Review, error)
}

// Reader recomputes views from storage on every call and holds no state.
type Reader struct {
	source Source
}

// NewReader builds a Reader over source.
func NewReader(source Source) *Reader {
	return &Reader{source: source}
}

// Stations returns the stations matching filter. A department filter is
// served by the department index, otherwise SoloActivas uses the activo index.
func (r *Reader) Stations(ctx context.Context, filter Filter) ([]storage.Station, error) {
	var (
		stations []storage.Station
		err      error
	)
	switch {
	case filter.Departamento != "":
		stations, err = r.source.GetStationsByDepartamento(ctx, filter.Departamento)
	case filter.SoloActivas:
		stations, err = r.source.GetStationsByActivo(ctx, true)
	default:
		stations, err = r.source.GetAllStations(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	return filter.Apply(stations), nil
}

// FilterStations returns stations matching an AIP-160 expression.
func (r *Reader) FilterStations(ctx context.Context, expression string) ([]storage.Station, error) {
	cond, err := ParseStationFilter(expression)
	if err != nil {
		return nil, err
	}
	stations, err := r.source.ListStations(ctx, cond)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}

// Statistics computes the statistics of fecha.
func (r *Reader) Statistics(ctx context.Context, fecha string) (Statistics, error) {
	stations, reviews, err := r.load(ctx, fecha)
	if err != nil {
		return Statistics{}, err
	}
	return ComputeStatistics(stations, reviews, fecha), nil
}

// Summary computes per-department statistics of fecha.
func (r *Reader) Summary(ctx context.Context, fecha string) ([]DepartamentoSummary, error) {
	stations, reviews, err := r.load(ctx, fecha)
	if err != nil {
		return nil, err
	}
	return GroupByDepartamento(stations, reviews, fecha), nil
}

func (r *Reader) load(ctx context.Context, fecha string) ([]storage.Station, []storage.Review, error) {
	if err := storage.ValidateFecha(fecha); err != nil {
		return nil, nil, err
	}
	stations, err := r.source.GetAllStations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load stations: %w", err)
	}
	reviews, err := r.source.GetReviewsByDate(ctx, fecha)
	if err != nil {
		return nil, nil, fmt.Errorf("load reviews: %w", err)
	}
	return stations, reviews, nil
}
