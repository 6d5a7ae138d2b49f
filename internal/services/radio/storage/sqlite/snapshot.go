package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// ReplaceAll clears both collections and inserts the given records with their
// ids and timestamps verbatim, all in one transaction. Any failure rolls back
// and leaves the previous contents in place.
func (s *Store) ReplaceAll(ctx context.Context, stations []storage.Station, reviews []storage.Review) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := clearAll(ctx, tx); err != nil {
		return err
	}

	insertStation, err := tx.PrepareNamedContext(ctx, insertStationSQL)
	if err != nil {
		return fmt.Errorf("prepare station insert: %w", err)
	}
	defer insertStation.Close()
	for i, station := range stations {
		normalized, err := station.Normalized()
		if err != nil {
			return fmt.Errorf("%w: station %d: %w", storage.ErrInvalidFormat, i, err)
		}
		if normalized.ID == "" {
			return fmt.Errorf("%w: station %d: id is required", storage.ErrInvalidFormat, i)
		}
		if _, err := insertStation.ExecContext(ctx, toStationRow(normalized)); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: station %s", storage.ErrAlreadyExists, normalized.ID)
			}
			return fmt.Errorf("insert station %s: %w", normalized.ID, err)
		}
	}

	insertReview, err := tx.PrepareNamedContext(ctx, insertReviewSQL)
	if err != nil {
		return fmt.Errorf("prepare review insert: %w", err)
	}
	defer insertReview.Close()
	for i, review := range reviews {
		normalized, err := review.Normalized()
		if err != nil {
			return fmt.Errorf("%w: review %d: %w", storage.ErrInvalidFormat, i, err)
		}
		if normalized.ID == "" {
			return fmt.Errorf("%w: review %d: id is required", storage.ErrInvalidFormat, i)
		}
		if _, err := insertReview.ExecContext(ctx, toReviewRow(normalized)); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: review %s", storage.ErrAlreadyExists, normalized.ID)
			}
			return fmt.Errorf("insert review %s: %w", normalized.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func clearAll(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews`); err != nil {
		return fmt.Errorf("clear reviews: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stations`); err != nil {
		return fmt.Errorf("clear stations: %w", err)
	}
	return nil
}
