// Package review saves daily station reviews, keeping at most one review per
// station and date.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// Store is the review persistence the resolver needs.
type Store interface {
	GetReviewByStationAndDate(ctx context.Context, stationID, fecha string) (storage.Review, error)
	AddReview(ctx context.Context, review storage.Review) (storage.Review, error)
	UpdateReview(ctx context.Context, review storage.Review) (storage.Review, error)
}

// Input is one "station S was reviewed on date D" request.
type Input struct {
	StationID string
	Fecha     string
	Estado    storage.Estado
	Notas     string
}

// Outcome is the persisted review and whether it was newly created.
type Outcome struct {
	Review  storage.Review
	Created bool
}

// Resolver turns review inputs into inserts or in-place updates.
type Resolver struct {
	store Store
	now   func() time.Time
	locks *keyLocks
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock that stamps horaRevision.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver builds a resolver over store.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store: store,
		now:   time.Now,
		locks: newKeyLocks(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save records in. An existing review for the same station and date keeps its
// id and gets estado, notas and horaRevision overwritten; otherwise a new
// review is added. Calls for the same key are serialized, and an insert that
// loses a race to another writer is retried once as an update.
func (r *Resolver) Save(ctx context.Context, in Input) (Outcome, error) {
	if r == nil || r.store == nil {
		return Outcome{}, fmt.Errorf("review store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	candidate, err := storage.Review{
		StationID: in.StationID,
		Fecha:     in.Fecha,
		Estado:    in.Estado,
		Notas:     in.Notas,
	}.Normalized()
	if err != nil {
		return Outcome{}, err
	}

	release := r.locks.lock(candidate.StationID + "\x00" + candidate.Fecha)
	defer release()

	candidate.HoraRevision = r.now().Format(storage.TimeLayout)

	existing, err := r.store.GetReviewByStationAndDate(ctx, candidate.StationID, candidate.Fecha)
	switch {
	case err == nil:
		return r.overwrite(ctx, existing, candidate)
	case !errors.Is(err, storage.ErrNotFound):
		return Outcome{}, fmt.Errorf("lookup review: %w", err)
	}

	created, err := r.store.AddReview(ctx, candidate)
	if err == nil {
		return Outcome{Review: created, Created: true}, nil
	}
	if !errors.Is(err, storage.ErrAlreadyExists) {
		return Outcome{}, fmt.Errorf("add review: %w", err)
	}

	existing, err = r.store.GetReviewByStationAndDate(ctx, candidate.StationID, candidate.Fecha)
	if err != nil {
		return Outcome{}, fmt.Errorf("reload review after duplicate insert: %w", err)
	}
	return r.overwrite(ctx, existing, candidate)
}

func (r *Resolver) overwrite(ctx context.Context, existing, candidate storage.Review) (Outcome, error) {
	existing.Estado = candidate.Estado
	existing.Notas = candidate.Notas
	existing.HoraRevision = candidate.HoraRevision
	updated, err := r.store.UpdateReview(ctx, existing)
	if err != nil {
		return Outcome{}, fmt.Errorf("update review: %w", err)
	}
	return Outcome{Review: updated}, nil
}
