package storage

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
)

// SoftwareKind names the remote access tool installed at a station.
type SoftwareKind string

const (
	SoftwareNone       SoftwareKind = ""
	SoftwareTeamViewer SoftwareKind = "TeamViewer"
	SoftwareAnyDesk    SoftwareKind = "AnyDesk"
	SoftwareOther      SoftwareKind = "Otro"
)

// SoftwareKinds lists every valid kind, the empty kind included.
var SoftwareKinds = []SoftwareKind{SoftwareNone, SoftwareTeamViewer, SoftwareAnyDesk, SoftwareOther}

// Valid reports whether k is a known kind.
func (k SoftwareKind) Valid() bool {
	switch k {
	case SoftwareNone, SoftwareTeamViewer, SoftwareAnyDesk, SoftwareOther:
		return true
	default:
		return false
	}
}

// ParseSoftwareKind accepts kind names case-insensitively.
func ParseSoftwareKind(value string) (SoftwareKind, error) {
	trimmed := strings.TrimSpace(value)
	for _, kind := range SoftwareKinds {
		if strings.EqualFold(trimmed, string(kind)) {
			return kind, nil
		}
	}
	return SoftwareNone, apperrors.WithMetadata(
		apperrors.CodeStationInvalidSoftware,
		"unsupported remote software "+value,
		map[string]string{"value": value},
	)
}

// Frecuencias holds the four fixed brand frequency slots.
type Frecuencias struct {
	Karibena string
	Exitosa  string
	LaKalle  string
	SaborMix string
}

// AccesoRemoto describes remote access to a station.
type AccesoRemoto struct {
	Disponible   bool
	TipoSoftware SoftwareKind
	IDRemoto     string
	Password     string
}

// Station is one radio relay site.
type Station struct {
	ID                    string
	Departamento          string
	Localidad             string
	Frecuencias           Frecuencias
	AccesoRemoto          AccesoRemoto
	ContactoAdministrador string
	Activo                bool
	Observaciones         string
	UltimaActualizacion   time.Time
}

// Normalized trims the location fields and validates the record.
func (s Station) Normalized() (Station, error) {
	s.ID = strings.TrimSpace(s.ID)
	s.Departamento = strings.TrimSpace(s.Departamento)
	s.Localidad = strings.TrimSpace(s.Localidad)
	if s.Departamento == "" {
		return Station{}, apperrors.New(apperrors.CodeStationDepartamentoEmpty, "departamento is required")
	}
	if s.Localidad == "" {
		return Station{}, apperrors.New(apperrors.CodeStationLocalidadEmpty, "localidad is required")
	}
	if !s.AccesoRemoto.TipoSoftware.Valid() {
		return Station{}, apperrors.WithMetadata(
			apperrors.CodeStationInvalidSoftware,
			"unsupported remote software "+string(s.AccesoRemoto.TipoSoftware),
			map[string]string{"value": string(s.AccesoRemoto.TipoSoftware)},
		)
	}
	return s, nil
}
