package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

var fixedNow = time.Date(2024, time.May, 1, 9, 30, 15, 123456789, time.UTC)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	var (
		mu   sync.Mutex
		next int
	)
	store, err := Open(
		filepath.Join(t.TempDir(), "radio.db"),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() (string, error) {
			mu.Lock()
			defer mu.Unlock()
			next++
			return fmt.Sprintf("gen-%03d", next), nil
		}),
	)
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

func testStation(departamento, localidad string) storage.Station {
	return storage.Station{
		Departamento: departamento,
		Localidad:    localidad,
		Frecuencias: storage.Frecuencias{
			Karibena: "96.5",
			Exitosa:  "95.5",
		},
		AccesoRemoto: storage.AccesoRemoto{
			Disponible:   true,
			TipoSoftware: storage.SoftwareAnyDesk,
			IDRemoto:     "123 456 789",
			Password:     "secreto",
		},
		ContactoAdministrador: "Juan Pérez 999888777",
		Activo:                true,
		Observaciones:         "Torre principal",
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("")
	if !errors.Is(err, storage.ErrStorageUnavailable) {
		t.Fatalf("Open(\"\") error = %v, want %v", err, storage.ErrStorageUnavailable)
	}
}

func TestOpenFailsFastOnUnusablePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	_, err := Open(filepath.Join(blocker, "nested", "radio.db"))
	if !errors.Is(err, storage.ErrStorageUnavailable) {
		t.Fatalf("Open error = %v, want %v", err, storage.ErrStorageUnavailable)
	}
}

func TestOpenCreatesParentDirAndReopens(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "data", "radio.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	added, err := store.AddStation(context.Background(), testStation("Lima", "Centro"))
	if err != nil {
		t.Fatalf("add station: %v", err)
	}
	if len(added.ID) != 26 {
		t.Fatalf("generated id = %q, want 26 chars", added.ID)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetStation(context.Background(), added.ID); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if _, err := store.GetAllStations(context.Background()); err == nil {
		t.Fatal("expected not configured error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.AddStation(ctx, testStation("Lima", "Centro")); !errors.Is(err, context.Canceled) {
		t.Fatalf("AddStation error = %v, want %v", err, context.Canceled)
	}
}
