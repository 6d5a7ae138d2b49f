package storage

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
)

// HistoryAction names the kind of change recorded.
type HistoryAction string

const (
	ActionCreate HistoryAction = "create"
	ActionUpdate HistoryAction = "update"
	ActionDelete HistoryAction = "delete"
	ActionReview HistoryAction = "review"
	ActionImport HistoryAction = "import"
	ActionLogin  HistoryAction = "login"
	ActionLogout HistoryAction = "logout"
)

// ParseHistoryAction parses an action name.
func ParseHistoryAction(value string) (HistoryAction, error) {
	action := HistoryAction(strings.ToLower(strings.TrimSpace(value)))
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete, ActionReview, ActionImport, ActionLogin, ActionLogout:
		return action, nil
	default:
		return "", unknownHistoryValue("action", value)
	}
}

// HistoryEntity names what a change touched.
type HistoryEntity string

const (
	EntityStation HistoryEntity = "station"
	EntityReview  HistoryEntity = "review"
	EntitySystem  HistoryEntity = "system"
)

// ParseHistoryEntity parses an entity name.
func ParseHistoryEntity(value string) (HistoryEntity, error) {
	entity := HistoryEntity(strings.ToLower(strings.TrimSpace(value)))
	switch entity {
	case EntityStation, EntityReview, EntitySystem:
		return entity, nil
	default:
		return "", unknownHistoryValue("entity", value)
	}
}

func unknownHistoryValue(kind, value string) error {
	reason := "unknown history " + kind + " " + value
	return apperrors.WithMetadata(apperrors.CodeInvalidFormat, reason, map[string]string{"reason": reason})
}

// HistoryEntry is one audit record.
type HistoryEntry struct {
	ID        string
	Timestamp time.Time
	User      string
	Role      string
	Action    HistoryAction
	Entity    HistoryEntity
	Details   string
	Metadata  map[string]string
}

// HistoryFilter narrows a history listing. Zero values match everything.
type HistoryFilter struct {
	Action HistoryAction
	Entity HistoryEntity
	// Search matches user, details and metadata values case-insensitively.
	Search string
	Limit  int
}
