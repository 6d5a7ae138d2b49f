// Package app is the radio control application service. Every call checks
// the acting session's permissions, runs the storage operation, and notifies
// the change history on success.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
	"github.com/louisbranch/radiocontrol/internal/platform/requestctx"
	"github.com/louisbranch/radiocontrol/internal/services/radio/auth"
	"github.com/louisbranch/radiocontrol/internal/services/radio/history"
	"github.com/louisbranch/radiocontrol/internal/services/radio/query"
	"github.com/louisbranch/radiocontrol/internal/services/radio/review"
	"github.com/louisbranch/radiocontrol/internal/services/radio/snapshot"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

const tracerName = "github.com/louisbranch/radiocontrol/internal/services/radio/app"

// SessionStore persists the logged-in session between invocations.
type SessionStore interface {
	Save(session auth.Session) error
	Load() (auth.Session, error)
	Clear() error
}

// Config wires the service collaborators.
type Config struct {
	Store        storage.Store
	Authorizer   *auth.Authorizer
	Sessions     SessionStore
	HistoryLimit int
	Now          func() time.Time
}

// Service is the radio control application service.
type Service struct {
	store    storage.Store
	authz    *auth.Authorizer
	sessions SessionStore
	history  *history.Recorder
	reader   *query.Reader
	resolver *review.Resolver
	snapshot *snapshot.Serializer
	tracer   trace.Tracer
}

// New builds a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Authorizer == nil {
		return nil, errors.New("authorizer is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:    cfg.Store,
		authz:    cfg.Authorizer,
		sessions: cfg.Sessions,
		history:  history.NewRecorder(cfg.Store, cfg.HistoryLimit),
		reader:   query.NewReader(cfg.Store),
		resolver: review.NewResolver(cfg.Store, review.WithClock(cfg.Now)),
		snapshot: snapshot.New(cfg.Store, snapshot.WithClock(cfg.Now)),
		tracer:   otel.Tracer(tracerName),
	}, nil
}

func (s *Service) start(ctx context.Context, name string) (context.Context, trace.Span) {
	actor := requestctx.ActorOrSystem(ctx)
	return s.tracer.Start(ctx, "radio."+name, trace.WithAttributes(
		attribute.String("radio.user", actor.Username),
		attribute.String("radio.role", actor.Role),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	}
	span.End()
}

// session returns the acting session from context.
func (s *Service) session(ctx context.Context) (auth.Session, error) {
	actor, ok := requestctx.ActorFromContext(ctx)
	if !ok {
		return auth.Session{}, apperrors.New(apperrors.CodeAuthSessionMissing, "no active session")
	}
	return auth.Session{Username: actor.Username, Role: auth.Role(actor.Role)}, nil
}

func (s *Service) require(ctx context.Context, perm auth.Permission) error {
	session, err := s.session(ctx)
	if err != nil {
		return err
	}
	return s.authz.Require(session, perm)
}

// notify records a history entry. Failures are logged and never change the
// result of the operation that triggered them.
func (s *Service) notify(ctx context.Context, action storage.HistoryAction, entity storage.HistoryEntity, details string, metadata map[string]string) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}
	if err := s.history.Record(ctx, action, entity, details, metadata); err != nil {
		log.Printf("history %s %s: %v", action, entity, err)
	}
}

// mapError converts storage sentinels to coded domain errors.
func mapError(err error, id string) error {
	if err == nil {
		return nil
	}
	var metadata map[string]string
	if id != "" {
		metadata = map[string]string{"id": id}
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, "record not found", metadata, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.WrapWithMetadata(apperrors.CodeDuplicateKey, "record already exists", metadata, err)
	case errors.Is(err, storage.ErrInvalidFormat):
		reason := strings.TrimPrefix(err.Error(), storage.ErrInvalidFormat.Error()+": ")
		return apperrors.WrapWithMetadata(apperrors.CodeInvalidFormat, "invalid data format", map[string]string{"reason": reason}, err)
	case errors.Is(err, storage.ErrCascadeInconsistent):
		return apperrors.WrapWithMetadata(apperrors.CodeCascadeInconsistent, "cascade delete inconsistent", metadata, err)
	case errors.Is(err, storage.ErrStorageUnavailable):
		return apperrors.Wrap(apperrors.CodeStorageUnavailable, "storage unavailable", err)
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("radio storage: %w", err)
}

func stationLabel(station storage.Station) string {
	return station.Departamento + " - " + station.Localidad
}
