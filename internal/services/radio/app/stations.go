package app

import (
	"context"
	"strconv"

	"github.com/louisbranch/radiocontrol/internal/services/radio/auth"
	"github.com/louisbranch/radiocontrol/internal/services/radio/query"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// AddStation creates a station.
func (s *Service) AddStation(ctx context.Context, station storage.Station) (created storage.Station, err error) {
	ctx, span := s.start(ctx, "AddStation")
	defer func() { finish(span, err) }()

	if err := s.require(ctx, auth.PermissionAdd); err != nil {
		return storage.Station{}, err
	}
	created, err = s.store.AddStation(ctx, station)
	if err != nil {
		return storage.Station{}, mapError(err, station.ID)
	}
	s.notify(ctx, storage.ActionCreate, storage.EntityStation, "Nueva estación: "+stationLabel(created), map[string]string{
		"station_id": created.ID,
	})
	return created, nil
}

// UpdateStation overwrites an existing station.
func (s *Service) UpdateStation(ctx context.Context, station storage.Station) (updated storage.Station, err error) {
	ctx, span := s.start(ctx, "UpdateStation")
	defer func() { finish(span, err) }()

	if err := s.require(ctx, auth.PermissionEdit); err != nil {
		return storage.Station{}, err
	}
	updated, err = s.store.UpdateStation(ctx, station)
	if err != nil {
		return storage.Station{}, mapError(err, station.ID)
	}
	s.notify(ctx, storage.ActionUpdate, storage.EntityStation, "Estación actualizada: "+stationLabel(updated), map[string]string{
		"station_id": updated.ID,
	})
	return updated, nil
}

// DeleteStation removes a station and all of its reviews. It returns how many
// reviews were removed with it.
func (s *Service) DeleteStation(ctx context.Context, stationID string) (removed int, err error) {
	ctx, span := s.start(ctx, "DeleteStation")
	defer func() { finish(span, err) }()

	if err := s.require(ctx, auth.PermissionDelete); err != nil {
		return 0, err
	}
	station, err := s.store.GetStation(ctx, stationID)
	if err != nil {
		return 0, mapError(err, stationID)
	}
	removed, err = s.store.DeleteStation(ctx, stationID)
	if err != nil {
		return 0, mapError(err, stationID)
	}
	s.notify(ctx, storage.ActionDelete, storage.EntityStation, "Estación eliminada: "+stationLabel(station), map[string]string{
		"station_id": stationID,
		"reviews":    strconv.Itoa(removed),
	})
	return removed, nil
}

// GetStation returns one station.
func (s *Service) GetStation(ctx context.Context, stationID string) (station storage.Station, err error) {
	ctx, span := s.start(ctx, "GetStation")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return storage.Station{}, err
	}
	station, err = s.store.GetStation(ctx, stationID)
	return station, mapError(err, stationID)
}

// ListStations returns the stations matching filter in insertion order.
func (s *Service) ListStations(ctx context.Context, filter query.Filter) (stations []storage.Station, err error) {
	ctx, span := s.start(ctx, "ListStations")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	stations, err = s.reader.Stations(ctx, filter)
	return stations, mapError(err, "")
}

// FilterStations returns the stations matching an AIP-160 filter expression.
func (s *Service) FilterStations(ctx context.Context, expression string) (stations []storage.Station, err error) {
	ctx, span := s.start(ctx, "FilterStations")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	stations, err = s.reader.FilterStations(ctx, expression)
	return stations, mapError(err, "")
}

// Departamentos returns the sorted distinct departments.
func (s *Service) Departamentos(ctx context.Context) (departamentos []string, err error) {
	ctx, span := s.start(ctx, "Departamentos")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	departamentos, err = s.store.ListDepartamentos(ctx)
	return departamentos, mapError(err, "")
}
