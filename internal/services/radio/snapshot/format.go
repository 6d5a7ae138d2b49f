// Package snapshot exports and imports the whole station and review
// collections as a versioned JSON document.
package snapshot

import (
	"strings"
	"time"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

const (
	// FormatVersion is written to every export.
	FormatVersion = "1.0"
	// supportedMajor is the only major version accepted on import.
	supportedMajor = "1"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
	backupLayout    = "2006-01-02-150405"
)

// BackupFileName returns the conventional file name for an export taken at t.
func BackupFileName(t time.Time) string {
	return "radio-backup-" + t.Format(backupLayout) + ".json"
}

type document struct {
	Version    string          `json:"version"`
	ExportDate string          `json:"exportDate"`
	Stations   []stationRecord `json:"stations"`
	Reviews    []reviewRecord  `json:"reviews"`
}

// inbound distinguishes absent and null arrays from empty ones.
type inbound struct {
	Version    string           `json:"version"`
	ExportDate string           `json:"exportDate"`
	Stations   *[]stationRecord `json:"stations"`
	Reviews    *[]reviewRecord  `json:"reviews"`
}

type frecuenciasRecord struct {
	Karibena string `json:"karibena"`
	Exitosa  string `json:"exitosa"`
	LaKalle  string `json:"laKalle"`
	SaborMix string `json:"saborMix"`
}

type accesoRemotoRecord struct {
	Disponible   bool   `json:"disponible"`
	TipoSoftware string `json:"tipoSoftware"`
	IDRemoto     string `json:"idRemoto"`
	Password     string `json:"password"`
}

type stationRecord struct {
	ID                    string             `json:"id"`
	Departamento          string             `json:"departamento"`
	Localidad             string             `json:"localidad"`
	Frecuencias           frecuenciasRecord  `json:"frecuencias"`
	AccesoRemoto          accesoRemotoRecord `json:"accesoRemoto"`
	ContactoAdministrador string             `json:"contactoAdministrador"`
	Activo                bool               `json:"activo"`
	Observaciones         string             `json:"observaciones"`
	UltimaActualizacion   string             `json:"ultimaActualizacion"`
}

// reviewRecord carries revisado for older readers; it is always true on
// export and ignored on import.
type reviewRecord struct {
	ID           string `json:"id"`
	StationID    string `json:"stationId"`
	Fecha        string `json:"fecha"`
	Revisado     bool   `json:"revisado"`
	Estado       string `json:"estado"`
	Notas        string `json:"notas"`
	HoraRevision string `json:"horaRevision"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

func fromStation(station storage.Station) stationRecord {
	return stationRecord{
		ID:           station.ID,
		Departamento: station.Departamento,
		Localidad:    station.Localidad,
		Frecuencias: frecuenciasRecord{
			Karibena: station.Frecuencias.Karibena,
			Exitosa:  station.Frecuencias.Exitosa,
			LaKalle:  station.Frecuencias.LaKalle,
			SaborMix: station.Frecuencias.SaborMix,
		},
		AccesoRemoto: accesoRemotoRecord{
			Disponible:   station.AccesoRemoto.Disponible,
			TipoSoftware: string(station.AccesoRemoto.TipoSoftware),
			IDRemoto:     station.AccesoRemoto.IDRemoto,
			Password:     station.AccesoRemoto.Password,
		},
		ContactoAdministrador: station.ContactoAdministrador,
		Activo:                station.Activo,
		Observaciones:         station.Observaciones,
		UltimaActualizacion:   formatTimestamp(station.UltimaActualizacion),
	}
}

func (r stationRecord) toStation() (storage.Station, error) {
	updatedAt, err := parseTimestamp(r.UltimaActualizacion)
	if err != nil {
		return storage.Station{}, err
	}
	kind, err := storage.ParseSoftwareKind(r.AccesoRemoto.TipoSoftware)
	if err != nil {
		return storage.Station{}, err
	}
	return storage.Station{
		ID:           r.ID,
		Departamento: r.Departamento,
		Localidad:    r.Localidad,
		Frecuencias: storage.Frecuencias{
			Karibena: r.Frecuencias.Karibena,
			Exitosa:  r.Frecuencias.Exitosa,
			LaKalle:  r.Frecuencias.LaKalle,
			SaborMix: r.Frecuencias.SaborMix,
		},
		AccesoRemoto: storage.AccesoRemoto{
			Disponible:   r.AccesoRemoto.Disponible,
			TipoSoftware: kind,
			IDRemoto:     r.AccesoRemoto.IDRemoto,
			Password:     r.AccesoRemoto.Password,
		},
		ContactoAdministrador: r.ContactoAdministrador,
		Activo:                r.Activo,
		Observaciones:         r.Observaciones,
		UltimaActualizacion:   updatedAt,
	}, nil
}

func fromReview(review storage.Review) reviewRecord {
	return reviewRecord{
		ID:           review.ID,
		StationID:    review.StationID,
		Fecha:        review.Fecha,
		Revisado:     true,
		Estado:       string(review.Estado),
		Notas:        review.Notas,
		HoraRevision: review.HoraRevision,
	}
}

func (r reviewRecord) toReview() storage.Review {
	return storage.Review{
		ID:           r.ID,
		StationID:    r.StationID,
		Fecha:        r.Fecha,
		Estado:       storage.Estado(r.Estado),
		Notas:        r.Notas,
		HoraRevision: r.HoraRevision,
	}
}
