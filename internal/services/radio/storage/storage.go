// Package storage defines persistence contracts for radio stations, their
// daily reviews and the change history.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates an id or (station, date) pair is already taken.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidFormat indicates a snapshot payload could not be accepted.
	ErrInvalidFormat = errors.New("invalid data format")
	// ErrStorageUnavailable indicates the database could not be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrCascadeInconsistent indicates a station delete would leave orphaned reviews.
	ErrCascadeInconsistent = errors.New("cascade delete left orphaned reviews")
)

// Condition is a pre-translated SQL WHERE fragment with positional params.
type Condition struct {
	Clause string
	Params []any
}

// Empty reports whether the condition filters nothing.
func (c Condition) Empty() bool {
	return c.Clause == ""
}

// StationStore persists station records.
type StationStore interface {
	AddStation(ctx context.Context, station Station) (Station, error)
	UpdateStation(ctx context.Context, station Station) (Station, error)
	// DeleteStation removes the station and all of its reviews, returning how
	// many reviews were removed.
	DeleteStation(ctx context.Context, id string) (int, error)
	GetStation(ctx context.Context, id string) (Station, error)
	GetAllStations(ctx context.Context) ([]Station, error)
	GetStationsByDepartamento(ctx context.Context, departamento string) ([]Station, error)
	GetStationsByActivo(ctx context.Context, activo bool) ([]Station, error)
	ListStations(ctx context.Context, cond Condition) ([]Station, error)
	ListDepartamentos(ctx context.Context) ([]string, error)
}

// ReviewStore persists review records.
type ReviewStore interface {
	AddReview(ctx context.Context, review Review) (Review, error)
	UpdateReview(ctx context.Context, review Review) (Review, error)
	DeleteReview(ctx context.Context, id string) error
	GetReview(ctx context.Context, id string) (Review, error)
	GetAllReviews(ctx context.Context) ([]Review, error)
	GetReviewsByStation(ctx context.Context, stationID string) ([]Review, error)
	GetReviewsByDate(ctx context.Context, fecha string) ([]Review, error)
	// GetReviewByStationAndDate returns ErrNotFound when no review exists.
	GetReviewByStationAndDate(ctx context.Context, stationID, fecha string) (Review, error)
}

// SnapshotStore replaces both collections at once.
type SnapshotStore interface {
	ReplaceAll(ctx context.Context, stations []Station, reviews []Review) error
}

// HistoryStore persists change history entries.
type HistoryStore interface {
	// AppendHistory stores entry and keeps only the newest limit entries.
	AppendHistory(ctx context.Context, entry HistoryEntry, limit int) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
}

// Store groups every radio persistence contract.
type Store interface {
	StationStore
	ReviewStore
	SnapshotStore
	HistoryStore
	Close() error
}
