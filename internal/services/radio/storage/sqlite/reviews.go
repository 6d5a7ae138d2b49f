package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

const reviewColumns = `id, station_id, fecha, estado, notas, hora_revision`

const insertReviewSQL = `INSERT INTO reviews (id, station_id, fecha, estado, notas, hora_revision)
VALUES (:id, :station_id, :fecha, :estado, :notas, :hora_revision)`

const updateReviewSQL = `UPDATE reviews SET
    station_id = :station_id,
    fecha = :fecha,
    estado = :estado,
    notas = :notas,
    hora_revision = :hora_revision
WHERE id = :id`

type reviewRow struct {
	ID           string `db:"id"`
	StationID    string `db:"station_id"`
	Fecha        string `db:"fecha"`
	Estado       string `db:"estado"`
	Notas        string `db:"notas"`
	HoraRevision string `db:"hora_revision"`
}

func toReviewRow(review storage.Review) reviewRow {
	return reviewRow{
		ID:           review.ID,
		StationID:    review.StationID,
		Fecha:        review.Fecha,
		Estado:       string(review.Estado),
		Notas:        review.Notas,
		HoraRevision: review.HoraRevision,
	}
}

func (r reviewRow) toReview() storage.Review {
	return storage.Review{
		ID:           r.ID,
		StationID:    r.StationID,
		Fecha:        r.Fecha,
		Estado:       storage.Estado(r.Estado),
		Notas:        r.Notas,
		HoraRevision: r.HoraRevision,
	}
}

func toReviews(rows []reviewRow) []storage.Review {
	out := make([]storage.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toReview())
	}
	return out
}

// AddReview inserts a review. A second review for the same station and date
// fails with storage.ErrAlreadyExists.
func (s *Store) AddReview(ctx context.Context, review storage.Review) (storage.Review, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Review{}, err
	}
	review, err := review.Normalized()
	if err != nil {
		return storage.Review{}, err
	}
	if review.ID, err = s.assignID(review.ID); err != nil {
		return storage.Review{}, err
	}

	if _, err := s.db.NamedExecContext(ctx, insertReviewSQL, toReviewRow(review)); err != nil {
		if isUniqueViolation(err) {
			return storage.Review{}, storage.ErrAlreadyExists
		}
		return storage.Review{}, fmt.Errorf("add review: %w", err)
	}
	return review, nil
}

// UpdateReview replaces the full record at review.ID.
func (s *Store) UpdateReview(ctx context.Context, review storage.Review) (storage.Review, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Review{}, err
	}
	review, err := review.Normalized()
	if err != nil {
		return storage.Review{}, err
	}
	if review.ID == "" {
		return storage.Review{}, storage.ErrNotFound
	}

	res, err := s.db.NamedExecContext(ctx, updateReviewSQL, toReviewRow(review))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Review{}, storage.ErrAlreadyExists
		}
		return storage.Review{}, fmt.Errorf("update review: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return storage.Review{}, err
	}
	return review, nil
}

// DeleteReview removes one review. Its station is untouched.
func (s *Store) DeleteReview(ctx context.Context, reviewID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, strings.TrimSpace(reviewID))
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return requireAffected(res)
}

// GetReview returns one review by id.
func (s *Store) GetReview(ctx context.Context, reviewID string) (storage.Review, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Review{}, err
	}
	var row reviewRow
	err := s.db.GetContext(ctx, &row, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, strings.TrimSpace(reviewID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Review{}, storage.ErrNotFound
		}
		return storage.Review{}, fmt.Errorf("get review: %w", err)
	}
	return row.toReview(), nil
}

// GetAllReviews returns every review in insertion order.
func (s *Store) GetAllReviews(ctx context.Context) ([]storage.Review, error) {
	return s.selectReviews(ctx, "list reviews", ``)
}

// GetReviewsByStation returns the reviews of one station.
func (s *Store) GetReviewsByStation(ctx context.Context, stationID string) ([]storage.Review, error) {
	return s.selectReviews(ctx, "list station reviews", `WHERE station_id = ?`, stationID)
}

// GetReviewsByDate returns the reviews recorded on fecha.
func (s *Store) GetReviewsByDate(ctx context.Context, fecha string) ([]storage.Review, error) {
	return s.selectReviews(ctx, "list date reviews", `WHERE fecha = ?`, fecha)
}

// GetReviewByStationAndDate returns the review for one station on one date.
// More than one match is logged as an integrity problem and the lowest id wins.
func (s *Store) GetReviewByStationAndDate(ctx context.Context, stationID, fecha string) (storage.Review, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Review{}, err
	}
	var rows []reviewRow
	err := s.db.SelectContext(
		ctx,
		&rows,
		`SELECT `+reviewColumns+` FROM reviews WHERE station_id = ? AND fecha = ? ORDER BY id`,
		strings.TrimSpace(stationID),
		strings.TrimSpace(fecha),
	)
	if err != nil {
		return storage.Review{}, fmt.Errorf("get review by station and date: %w", err)
	}
	switch len(rows) {
	case 0:
		return storage.Review{}, storage.ErrNotFound
	case 1:
	default:
		log.Printf("data integrity: %d reviews for station %s on %s, using %s", len(rows), stationID, fecha, rows[0].ID)
	}
	return rows[0].toReview(), nil
}

func (s *Store) selectReviews(ctx context.Context, op string, where string, args ...any) ([]storage.Review, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + reviewColumns + ` FROM reviews`
	if where != "" {
		query += ` ` + where
	}
	query += ` ORDER BY rowid`

	var rows []reviewRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toReviews(rows), nil
}
