package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// Store is the persistence the serializer reads from and replaces.
type Store interface {
	GetAllStations(ctx context.Context) ([]storage.Station, error)
	GetAllReviews(ctx context.Context) ([]storage.Review, error)
	ReplaceAll(ctx context.Context, stations []storage.Station, reviews []storage.Review) error
}

// Counts reports how many records a snapshot carried.
type Counts struct {
	Stations int
	Reviews  int
}

// Serializer moves whole-store snapshots in and out of a Store.
type Serializer struct {
	store Store
	now   func() time.Time
}

// Option configures a Serializer.
type Option func(*Serializer)

// WithClock sets the clock used for exportDate.
func WithClock(now func() time.Time) Option {
	return func(s *Serializer) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Serializer over store.
func New(store Store, opts ...Option) *Serializer {
	s := &Serializer{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export writes every station and review to w as indented JSON.
func (s *Serializer) Export(ctx context.Context, w io.Writer) (Counts, error) {
	stations, err := s.store.GetAllStations(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("load stations: %w", err)
	}
	reviews, err := s.store.GetAllReviews(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("load reviews: %w", err)
	}
	data, err := Encode(stations, reviews, s.now())
	if err != nil {
		return Counts{}, err
	}
	if _, err := w.Write(data); err != nil {
		return Counts{}, fmt.Errorf("write snapshot: %w", err)
	}
	return Counts{Stations: len(stations), Reviews: len(reviews)}, nil
}

// Import reads a snapshot from r and replaces the whole store with it.
// Existing records absent from the snapshot are lost. Nothing changes when
// the payload is rejected or the replace fails.
func (s *Serializer) Import(ctx context.Context, r io.Reader) (Counts, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Counts{}, fmt.Errorf("read snapshot: %w", err)
	}
	stations, reviews, err := Decode(data)
	if err != nil {
		return Counts{}, err
	}
	if err := s.store.ReplaceAll(ctx, stations, reviews); err != nil {
		return Counts{}, fmt.Errorf("replace store: %w", err)
	}
	return Counts{Stations: len(stations), Reviews: len(reviews)}, nil
}

// Encode renders a snapshot document.
func Encode(stations []storage.Station, reviews []storage.Review, exportedAt time.Time) ([]byte, error) {
	doc := document{
		Version:    FormatVersion,
		ExportDate: formatTimestamp(exportedAt),
		Stations:   make([]stationRecord, 0, len(stations)),
		Reviews:    make([]reviewRecord, 0, len(reviews)),
	}
	for _, station := range stations {
		doc.Stations = append(doc.Stations, fromStation(station))
	}
	for _, review := range reviews {
		doc.Reviews = append(doc.Reviews, fromReview(review))
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a snapshot document. Structural and record
// problems wrap storage.ErrInvalidFormat; repeated ids or repeated
// (station, date) pairs wrap storage.ErrAlreadyExists.
func Decode(data []byte) ([]storage.Station, []storage.Review, error) {
	var doc inbound
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", storage.ErrInvalidFormat, err)
	}
	if doc.Stations == nil {
		return nil, nil, fmt.Errorf("%w: stations array is required", storage.ErrInvalidFormat)
	}
	if doc.Reviews == nil {
		return nil, nil, fmt.Errorf("%w: reviews array is required", storage.ErrInvalidFormat)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, nil, err
	}

	stations := make([]storage.Station, 0, len(*doc.Stations))
	stationIDs := make(map[string]struct{}, len(*doc.Stations))
	for i, record := range *doc.Stations {
		station, err := record.toStation()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: station %d: %w", storage.ErrInvalidFormat, i, err)
		}
		if station, err = station.Normalized(); err != nil {
			return nil, nil, fmt.Errorf("%w: station %d: %w", storage.ErrInvalidFormat, i, err)
		}
		if station.ID == "" {
			return nil, nil, fmt.Errorf("%w: station %d: id is required", storage.ErrInvalidFormat, i)
		}
		if _, dup := stationIDs[station.ID]; dup {
			return nil, nil, fmt.Errorf("%w: station id %s repeated", storage.ErrAlreadyExists, station.ID)
		}
		stationIDs[station.ID] = struct{}{}
		stations = append(stations, station)
	}

	reviews := make([]storage.Review, 0, len(*doc.Reviews))
	reviewIDs := make(map[string]struct{}, len(*doc.Reviews))
	pairs := make(map[[2]string]struct{}, len(*doc.Reviews))
	for i, record := range *doc.Reviews {
		review, err := record.toReview().Normalized()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: review %d: %w", storage.ErrInvalidFormat, i, err)
		}
		if review.ID == "" {
			return nil, nil, fmt.Errorf("%w: review %d: id is required", storage.ErrInvalidFormat, i)
		}
		if _, dup := reviewIDs[review.ID]; dup {
			return nil, nil, fmt.Errorf("%w: review id %s repeated", storage.ErrAlreadyExists, review.ID)
		}
		pair := [2]string{review.StationID, review.Fecha}
		if _, dup := pairs[pair]; dup {
			return nil, nil, fmt.Errorf("%w: station %s reviewed twice on %s", storage.ErrAlreadyExists, review.StationID, review.Fecha)
		}
		reviewIDs[review.ID] = struct{}{}
		pairs[pair] = struct{}{}
		reviews = append(reviews, review)
	}
	return stations, reviews, nil
}

// checkVersion accepts a missing version and any 1.x version.
func checkVersion(version string) error {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil
	}
	major, _, _ := strings.Cut(version, ".")
	if major != supportedMajor {
		return fmt.Errorf("%w: unsupported version %s", storage.ErrInvalidFormat, version)
	}
	return nil
}
