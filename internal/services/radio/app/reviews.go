package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/louisbranch/radiocontrol/internal/services/radio/auth"
	"github.com/louisbranch/radiocontrol/internal/services/radio/query"
	"github.com/louisbranch/radiocontrol/internal/services/radio/review"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// SaveReview records that a station was reviewed on a date, creating or
// overwriting the single review for that pair.
func (s *Service) SaveReview(ctx context.Context, in review.Input) (outcome review.Outcome, err error) {
	ctx, span := s.start(ctx, "SaveReview")
	defer func() { finish(span, err) }()

	if err := s.require(ctx, auth.PermissionReview); err != nil {
		return review.Outcome{}, err
	}
	var station storage.Station
	if strings.TrimSpace(in.StationID) != "" {
		if station, err = s.store.GetStation(ctx, in.StationID); err != nil {
			return review.Outcome{}, mapError(err, in.StationID)
		}
	}
	outcome, err = s.resolver.Save(ctx, in)
	if err != nil {
		return review.Outcome{}, mapError(err, in.StationID)
	}
	saved := outcome.Review
	s.notify(ctx, storage.ActionReview, storage.EntityReview, "Revisión: "+stationLabel(station)+" ("+string(saved.Estado)+")", map[string]string{
		"review_id":  saved.ID,
		"station_id": saved.StationID,
		"fecha":      saved.Fecha,
		"estado":     string(saved.Estado),
		"created":    strconv.FormatBool(outcome.Created),
	})
	return outcome, nil
}

// DeleteReview removes one review.
func (s *Service) DeleteReview(ctx context.Context, reviewID string) (err error) {
	ctx, span := s.start(ctx, "DeleteReview")
	defer func() { finish(span, err) }()

	if err := s.require(ctx, auth.PermissionReview); err != nil {
		return err
	}
	existing, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return mapError(err, reviewID)
	}
	if err := s.store.DeleteReview(ctx, reviewID); err != nil {
		return mapError(err, reviewID)
	}
	s.notify(ctx, storage.ActionDelete, storage.EntityReview, "Revisión eliminada: "+existing.Fecha, map[string]string{
		"review_id":  existing.ID,
		"station_id": existing.StationID,
		"fecha":      existing.Fecha,
	})
	return nil
}

// ReviewsByDate returns every review for fecha.
func (s *Service) ReviewsByDate(ctx context.Context, fecha string) (reviews []storage.Review, err error) {
	ctx, span := s.start(ctx, "ReviewsByDate")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	if err := storage.ValidateFecha(fecha); err != nil {
		return nil, err
	}
	reviews, err = s.store.GetReviewsByDate(ctx, fecha)
	return reviews, mapError(err, "")
}

// ReviewsByStation returns every review for one station.
func (s *Service) ReviewsByStation(ctx context.Context, stationID string) (reviews []storage.Review, err error) {
	ctx, span := s.start(ctx, "ReviewsByStation")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	reviews, err = s.store.GetReviewsByStation(ctx, stationID)
	return reviews, mapError(err, "")
}

// Statistics summarizes the review progress on fecha.
func (s *Service) Statistics(ctx context.Context, fecha string) (stats query.Statistics, err error) {
	ctx, span := s.start(ctx, "Statistics")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return query.Statistics{}, err
	}
	stats, err = s.reader.Statistics(ctx, fecha)
	return stats, mapError(err, "")
}

// Summary groups the review progress on fecha by department.
func (s *Service) Summary(ctx context.Context, fecha string) (summary []query.DepartamentoSummary, err error) {
	ctx, span := s.start(ctx, "Summary")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	summary, err = s.reader.Summary(ctx, fecha)
	return summary, mapError(err, "")
}
