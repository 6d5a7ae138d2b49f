package app

import (
	"context"
	"io"
	"strconv"

	"github.com/louisbranch/radiocontrol/internal/services/radio/auth"
	"github.com/louisbranch/radiocontrol/internal/services/radio/history"
	"github.com/louisbranch/radiocontrol/internal/services/radio/snapshot"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// Export writes a full snapshot to w.
func (s *Service) Export(ctx context.Context, w io.Writer) (counts snapshot.Counts, err error) {
	ctx, span := s.start(ctx, "Export")
	defer func() { finish(span, err) }()

	if err := s.require(ctx, auth.PermissionExport); err != nil {
		return snapshot.Counts{}, err
	}
	counts, err = s.snapshot.Export(ctx, w)
	return counts, mapError(err, "")
}

// Import replaces every station and review with the snapshot read from r.
func (s *Service) Import(ctx context.Context, r io.Reader) (counts snapshot.Counts, err error) {
	ctx, span := s.start(ctx, "Import")
	defer func() { finish(span, err) }()

	if err := s.require(ctx, auth.PermissionImport); err != nil {
		return snapshot.Counts{}, err
	}
	counts, err = s.snapshot.Import(ctx, r)
	if err != nil {
		return snapshot.Counts{}, mapError(err, "")
	}
	s.notify(ctx, storage.ActionImport, storage.EntitySystem, "Importación de datos", map[string]string{
		"stations": strconv.Itoa(counts.Stations),
		"reviews":  strconv.Itoa(counts.Reviews),
	})
	return counts, nil
}

// History lists change history entries newest first.
func (s *Service) History(ctx context.Context, q history.Query) (entries []storage.HistoryEntry, err error) {
	ctx, span := s.start(ctx, "History")
	defer func() { finish(span, err) }()

	if _, err := s.session(ctx); err != nil {
		return nil, err
	}
	entries, err = s.history.List(ctx, q)
	return entries, mapError(err, "")
}
