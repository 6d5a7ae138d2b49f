package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage/sqlite"
)

func openTempStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "radio.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func clockAt(hour, minute, second int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, time.May, 1, hour, minute, second, 0, time.Local)
	}
}

func TestSaveAddThenReReview(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	station, err := store.AddStation(ctx, storage.Station{Departamento: "Lima", Localidad: "Centro", Activo: true})
	if err != nil {
		t.Fatalf("add station: %v", err)
	}

	first, err := NewResolver(store, WithClock(clockAt(9, 0, 0))).Save(ctx, Input{
		StationID: station.ID,
		Fecha:     "2024-05-01",
		Estado:    storage.EstadoActivo,
		Notas:     "ok",
	})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if !first.Created {
		t.Fatal("first save must create")
	}
	if first.Review.HoraRevision != "09:00:00" {
		t.Fatalf("horaRevision = %q, want 09:00:00", first.Review.HoraRevision)
	}

	second, err := NewResolver(store, WithClock(clockAt(17, 45, 3))).Save(ctx, Input{
		StationID: station.ID,
		Fecha:     "2024-05-01",
		Estado:    storage.EstadoProblema,
		Notas:     "audio cut",
	})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Created {
		t.Fatal("second save must update")
	}
	if second.Review.ID != first.Review.ID {
		t.Fatalf("review id = %q, want reused %q", second.Review.ID, first.Review.ID)
	}

	reviews, err := store.GetReviewsByDate(ctx, "2024-05-01")
	if err != nil {
		t.Fatalf("reviews by date: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("reviews = %d, want 1", len(reviews))
	}
	got := reviews[0]
	if got.Estado != storage.EstadoProblema || got.Notas != "audio cut" || got.HoraRevision != "17:45:03" {
		t.Fatalf("review = %+v, want latest call reflected", got)
	}
}

func TestSaveConcurrentCallsKeepOneReview(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	resolver := NewResolver(store)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := resolver.Save(ctx, Input{
				StationID: "st-1",
				Fecha:     "2024-05-01",
				Estado:    storage.EstadoActivo,
				Notas:     fmt.Sprintf("writer %d", i),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	reviews, err := store.GetReviewsByStation(ctx, "st-1")
	if err != nil {
		t.Fatalf("reviews by station: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("reviews = %d, want 1", len(reviews))
	}
	if resolver.locks.size() != 0 {
		t.Fatalf("idle locks = %d, want 0", resolver.locks.size())
	}
}

func TestSaveValidatesInput(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(&fakeStore{})
	_, err := resolver.Save(context.Background(), Input{StationID: "st-1", Fecha: "2024-05-01", Estado: "bien"})
	if got := apperrors.CodeOf(err); got != apperrors.CodeReviewInvalidEstado {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeReviewInvalidEstado)
	}
}

// fakeStore simulates another writer inserting between lookup and insert.
type fakeStore struct {
	mu       sync.Mutex
	stored   *storage.Review
	lookups  int
	raceOnce bool
	lookErr  error
}

func (f *fakeStore) GetReviewByStationAndDate(_ context.Context, stationID, fecha string) (storage.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.lookErr != nil {
		return storage.Review{}, f.lookErr
	}
	if f.stored == nil {
		return storage.Review{}, storage.ErrNotFound
	}
	return *f.stored, nil
}

func (f *fakeStore) AddReview(_ context.Context, review storage.Review) (storage.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.raceOnce {
		f.raceOnce = false
		f.stored = &storage.Review{ID: "other-writer", StationID: review.StationID, Fecha: review.Fecha, Estado: storage.EstadoInactivo}
		return storage.Review{}, storage.ErrAlreadyExists
	}
	review.ID = "new"
	f.stored = &review
	return review, nil
}

func (f *fakeStore) UpdateReview(_ context.Context, review storage.Review) (storage.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = &review
	return review, nil
}

func TestSaveRetriesDuplicateInsertAsUpdate(t *testing.T) {
	t.Parallel()

	store := &fakeStore{raceOnce: true}
	out, err := NewResolver(store, WithClock(clockAt(8, 0, 0))).Save(context.Background(), Input{
		StationID: "st-1",
		Fecha:     "2024-05-01",
		Estado:    storage.EstadoProblema,
		Notas:     "mine",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if out.Created {
		t.Fatal("retry path must report an update")
	}
	if out.Review.ID != "other-writer" || out.Review.Estado != storage.EstadoProblema || out.Review.Notas != "mine" {
		t.Fatalf("review = %+v", out.Review)
	}
	if store.lookups != 2 {
		t.Fatalf("lookups = %d, want 2", store.lookups)
	}
}

func TestSavePropagatesLookupFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk I/O error")
	_, err := NewResolver(&fakeStore{lookErr: boom}).Save(context.Background(), Input{
		StationID: "st-1",
		Fecha:     "2024-05-01",
		Estado:    storage.EstadoActivo,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("save error = %v, want %v", err, boom)
	}
}

func TestKeyLocksSerializeSameKey(t *testing.T) {
	t.Parallel()

	locks := newKeyLocks()
	release := locks.lock("a")
	acquired := make(chan struct{})
	go func() {
		unlock := locks.lock("a")
		close(acquired)
		unlock()
	}()

	otherDone := make(chan struct{})
	go func() {
		locks.lock("b")()
		close(otherDone)
	}()
	<-otherDone

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held key")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	<-acquired
}
