package sqlite

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

func TestAddReviewEnforcesStationDateUniqueness(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	first, err := store.AddReview(ctx, storage.Review{
		StationID:    "st-1",
		Fecha:        "2024-05-01",
		Estado:       storage.EstadoActivo,
		Notas:        "ok",
		HoraRevision: "09:30:15",
	})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated review id")
	}

	_, err = store.AddReview(ctx, storage.Review{StationID: "st-1", Fecha: "2024-05-01", Estado: storage.EstadoProblema})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("second review error = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if _, err := store.AddReview(ctx, storage.Review{StationID: "st-1", Fecha: "2024-05-02", Estado: storage.EstadoActivo}); err != nil {
		t.Fatalf("review on another date: %v", err)
	}
}

func TestAddReviewValidates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.AddReview(context.Background(), storage.Review{StationID: "st-1", Fecha: "2024-13-01", Estado: storage.EstadoActivo})
	if got := apperrors.CodeOf(err); got != apperrors.CodeReviewInvalidFecha {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeReviewInvalidFecha)
	}
}

func TestUpdateReview(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	added, err := store.AddReview(ctx, storage.Review{StationID: "st-1", Fecha: "2024-05-01", Estado: storage.EstadoActivo})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	added.Estado = storage.EstadoProblema
	added.Notas = "audio cut"
	if _, err := store.UpdateReview(ctx, added); err != nil {
		t.Fatalf("update review: %v", err)
	}
	got, err := store.GetReview(ctx, added.ID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if got != added {
		t.Fatalf("review = %+v, want %+v", got, added)
	}

	missing := added
	missing.ID = "missing"
	if _, err := store.UpdateReview(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update missing error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestUpdateReviewIntoTakenPairIsRejected(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.AddReview(ctx, storage.Review{StationID: "st-1", Fecha: "2024-05-01", Estado: storage.EstadoActivo}); err != nil {
		t.Fatalf("add review: %v", err)
	}
	other, err := store.AddReview(ctx, storage.Review{StationID: "st-1", Fecha: "2024-05-02", Estado: storage.EstadoActivo})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	other.Fecha = "2024-05-01"
	if _, err := store.UpdateReview(ctx, other); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("update error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestDeleteReviewKeepsStation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	station, err := store.AddStation(ctx, testStation("Lima", "Centro"))
	if err != nil {
		t.Fatalf("add station: %v", err)
	}
	review, err := store.AddReview(ctx, storage.Review{StationID: station.ID, Fecha: "2024-05-01", Estado: storage.EstadoActivo})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	if err := store.DeleteReview(ctx, review.ID); err != nil {
		t.Fatalf("delete review: %v", err)
	}
	if _, err := store.GetStation(ctx, station.ID); err != nil {
		t.Fatalf("station after review delete: %v", err)
	}
	if err := store.DeleteReview(ctx, review.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestReviewLookups(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for _, review := range []storage.Review{
		{StationID: "a", Fecha: "2024-05-01", Estado: storage.EstadoActivo},
		{StationID: "b", Fecha: "2024-05-01", Estado: storage.EstadoInactivo},
		{StationID: "a", Fecha: "2024-05-02", Estado: storage.EstadoProblema},
	} {
		if _, err := store.AddReview(ctx, review); err != nil {
			t.Fatalf("add review: %v", err)
		}
	}

	byDate, err := store.GetReviewsByDate(ctx, "2024-05-01")
	if err != nil {
		t.Fatalf("by date: %v", err)
	}
	if len(byDate) != 2 {
		t.Fatalf("by date = %d, want 2", len(byDate))
	}
	byStation, err := store.GetReviewsByStation(ctx, "a")
	if err != nil {
		t.Fatalf("by station: %v", err)
	}
	if len(byStation) != 2 {
		t.Fatalf("by station = %d, want 2", len(byStation))
	}
	all, err := store.GetAllReviews(ctx)
	if err != nil {
		t.Fatalf("all reviews: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all reviews = %d, want 3", len(all))
	}

	got, err := store.GetReviewByStationAndDate(ctx, "a", "2024-05-02")
	if err != nil {
		t.Fatalf("by station and date: %v", err)
	}
	if got.Estado != storage.EstadoProblema {
		t.Fatalf("estado = %s, want %s", got.Estado, storage.EstadoProblema)
	}
	if _, err := store.GetReviewByStationAndDate(ctx, "b", "2024-05-02"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing pair error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestReviewByStationAndDateWithDuplicateRows(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.sqlDB.ExecContext(ctx, `DROP INDEX idx_reviews_station_fecha`); err != nil {
		t.Fatalf("drop unique index: %v", err)
	}
	for _, id := range []string{"r2", "r1"} {
		if _, err := store.AddReview(ctx, storage.Review{ID: id, StationID: "st-1", Fecha: "2024-05-01", Estado: storage.EstadoActivo}); err != nil {
			t.Fatalf("add review %s: %v", id, err)
		}
	}

	got, err := store.GetReviewByStationAndDate(ctx, "st-1", "2024-05-01")
	if err != nil {
		t.Fatalf("review by station and date: %v", err)
	}
	if got.ID != "r1" {
		t.Fatalf("review id = %q, want %q", got.ID, "r1")
	}
}
