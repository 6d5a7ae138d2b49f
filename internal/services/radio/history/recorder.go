// Package history records and lists the change audit trail.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/radiocontrol/internal/platform/requestctx"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// DefaultLimit is how many entries are retained.
const DefaultLimit = 1000

const exportLayout = "2006-01-02_150405"

// ExportFileName returns the conventional file name for a history export taken at t.
func ExportFileName(t time.Time) string {
	return "historial_" + t.Format(exportLayout) + ".json"
}

// Query narrows a history listing.
type Query struct {
	Action string
	Entity string
	Search string
	Limit  int
}

// Recorder appends entries attributed to the actor in context.
type Recorder struct {
	store storage.HistoryStore
	limit int
}

// NewRecorder builds a Recorder retaining at most limit entries. A
// non-positive limit uses DefaultLimit.
func NewRecorder(store storage.HistoryStore, limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{store: store, limit: limit}
}

// Record appends one entry.
func (r *Recorder) Record(ctx context.Context, action storage.HistoryAction, entity storage.HistoryEntity, details string, metadata map[string]string) error {
	if r == nil || r.store == nil {
		return errors.New("history recorder is not configured")
	}
	actor := requestctx.ActorOrSystem(ctx)
	return r.store.AppendHistory(ctx, storage.HistoryEntry{
		User:     actor.Username,
		Role:     actor.Role,
		Action:   action,
		Entity:   entity,
		Details:  strings.TrimSpace(details),
		Metadata: metadata,
	}, r.limit)
}

// List returns entries newest first.
func (r *Recorder) List(ctx context.Context, query Query) ([]storage.HistoryEntry, error) {
	if r == nil || r.store == nil {
		return nil, errors.New("history recorder is not configured")
	}
	filter := storage.HistoryFilter{
		Search: strings.TrimSpace(query.Search),
		Limit:  query.Limit,
	}
	if strings.TrimSpace(query.Action) != "" {
		action, err := storage.ParseHistoryAction(query.Action)
		if err != nil {
			return nil, err
		}
		filter.Action = action
	}
	if strings.TrimSpace(query.Entity) != "" {
		entity, err := storage.ParseHistoryEntity(query.Entity)
		if err != nil {
			return nil, err
		}
		filter.Entity = entity
	}
	if filter.Limit <= 0 || filter.Limit > r.limit {
		filter.Limit = r.limit
	}
	return r.store.ListHistory(ctx, filter)
}
