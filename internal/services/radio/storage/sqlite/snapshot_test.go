package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

func seedStore(t *testing.T, store *Store) (storage.Station, storage.Review) {
	t.Helper()

	ctx := context.Background()
	station, err := store.AddStation(ctx, testStation("Lima", "Centro"))
	if err != nil {
		t.Fatalf("seed station: %v", err)
	}
	review, err := store.AddReview(ctx, storage.Review{StationID: station.ID, Fecha: "2024-05-01", Estado: storage.EstadoActivo})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return station, review
}

func TestReplaceAllIsDestructive(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	seedStore(t, store)

	imported := testStation("Cusco", "Sicuani")
	imported.ID = "imported-1"
	imported.UltimaActualizacion = time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC)
	importedReview := storage.Review{ID: "r-1", StationID: "imported-1", Fecha: "2023-12-31", Estado: storage.EstadoInactivo, HoraRevision: "23:59:00"}

	if err := store.ReplaceAll(ctx, []storage.Station{imported}, []storage.Review{importedReview}); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	stations, err := store.GetAllStations(ctx)
	if err != nil {
		t.Fatalf("get stations: %v", err)
	}
	if !reflect.DeepEqual(stations, []storage.Station{imported}) {
		t.Fatalf("stations = %+v, want only imported", stations)
	}
	reviews, err := store.GetAllReviews(ctx)
	if err != nil {
		t.Fatalf("get reviews: %v", err)
	}
	if !reflect.DeepEqual(reviews, []storage.Review{importedReview}) {
		t.Fatalf("reviews = %+v, want only imported", reviews)
	}
}

func TestReplaceAllRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stations []storage.Station
		reviews  []storage.Review
		want     error
	}{
		{
			name:     "duplicate station id",
			stations: []storage.Station{{ID: "s", Departamento: "a", Localidad: "b"}, {ID: "s", Departamento: "c", Localidad: "d"}},
			want:     storage.ErrAlreadyExists,
		},
		{
			name:     "duplicate review pair",
			stations: []storage.Station{{ID: "s", Departamento: "a", Localidad: "b"}},
			reviews: []storage.Review{
				{ID: "r1", StationID: "s", Fecha: "2024-05-01", Estado: storage.EstadoActivo},
				{ID: "r2", StationID: "s", Fecha: "2024-05-01", Estado: storage.EstadoActivo},
			},
			want: storage.ErrAlreadyExists,
		},
		{
			name:     "invalid station",
			stations: []storage.Station{{ID: "s", Localidad: "b"}},
			want:     storage.ErrInvalidFormat,
		},
		{
			name:    "review without id",
			reviews: []storage.Review{{StationID: "s", Fecha: "2024-05-01", Estado: storage.EstadoActivo}},
			want:    storage.ErrInvalidFormat,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := openTempStore(t)
			ctx := context.Background()
			station, review := seedStore(t, store)

			err := store.ReplaceAll(ctx, tc.stations, tc.reviews)
			if !errors.Is(err, tc.want) {
				t.Fatalf("replace error = %v, want %v", err, tc.want)
			}
			if _, err := store.GetStation(ctx, station.ID); err != nil {
				t.Fatalf("seed station lost after failed replace: %v", err)
			}
			if _, err := store.GetReview(ctx, review.ID); err != nil {
				t.Fatalf("seed review lost after failed replace: %v", err)
			}
		})
	}
}
