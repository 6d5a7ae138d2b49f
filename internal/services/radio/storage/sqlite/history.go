package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

type historyRow struct {
	ID        string `db:"id"`
	Timestamp int64  `db:"timestamp"`
	User      string `db:"username"`
	Role      string `db:"role"`
	Action    string `db:"action"`
	Entity    string `db:"entity"`
	Details   string `db:"details"`
	Metadata  string `db:"metadata"`
}

func (r historyRow) toEntry() (storage.HistoryEntry, error) {
	entry := storage.HistoryEntry{
		ID:        r.ID,
		Timestamp: fromMillis(r.Timestamp),
		User:      r.User,
		Role:      r.Role,
		Action:    storage.HistoryAction(r.Action),
		Entity:    storage.HistoryEntity(r.Entity),
		Details:   r.Details,
	}
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &entry.Metadata); err != nil {
			return storage.HistoryEntry{}, fmt.Errorf("decode history metadata %s: %w", r.ID, err)
		}
	}
	return entry, nil
}

// AppendHistory stores entry and trims the table to the newest limit entries.
// A non-positive limit keeps everything.
func (s *Store) AppendHistory(ctx context.Context, entry storage.HistoryEntry, limit int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	var err error
	if entry.ID, err = s.assignID(strings.TrimSpace(entry.ID)); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.stamp()
	}
	metadata := []byte("{}")
	if len(entry.Metadata) > 0 {
		if metadata, err = json.Marshal(entry.Metadata); err != nil {
			return fmt.Errorf("encode history metadata: %w", err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO change_history (id, timestamp, username, role, action, entity, details, metadata)
		 VALUES (:id, :timestamp, :username, :role, :action, :entity, :details, :metadata)`,
		historyRow{
			ID:        entry.ID,
			Timestamp: toMillis(entry.Timestamp),
			User:      entry.User,
			Role:      entry.Role,
			Action:    string(entry.Action),
			Entity:    string(entry.Entity),
			Details:   entry.Details,
			Metadata:  string(metadata),
		},
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append history: %w", err)
	}
	if limit > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM change_history
			  WHERE seq NOT IN (SELECT seq FROM change_history ORDER BY seq DESC LIMIT ?)`,
			limit,
		); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListHistory returns entries newest first.
func (s *Store) ListHistory(ctx context.Context, filter storage.HistoryFilter) ([]storage.HistoryEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var (
		clauses []string
		args    []any
	)
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Entity != "" {
		clauses = append(clauses, "entity = ?")
		args = append(args, string(filter.Entity))
	}
	query := `SELECT id, timestamp, username, role, action, entity, details, metadata FROM change_history`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY seq DESC`

	var rows []historyRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]storage.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		if search != "" && !matchesSearch(entry, search) {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// matchesSearch compares with Unicode case folding.
func matchesSearch(entry storage.HistoryEntry, search string) bool {
	if strings.Contains(strings.ToLower(entry.User), search) ||
		strings.Contains(strings.ToLower(entry.Details), search) {
		return true
	}
	for _, value := range entry.Metadata {
		if strings.Contains(strings.ToLower(value), search) {
			return true
		}
	}
	return false
}
