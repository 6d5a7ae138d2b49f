package storage

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
)

const (
	// DateLayout is the calendar date format of Review.Fecha.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day format of Review.HoraRevision.
	TimeLayout = "15:04:05"
)

// Estado is the operational outcome recorded by a review.
type Estado string

const (
	EstadoActivo   Estado = "activo"
	EstadoProblema Estado = "problema"
	EstadoInactivo Estado = "inactivo"
)

// Valid reports whether e is a known outcome.
func (e Estado) Valid() bool {
	switch e {
	case EstadoActivo, EstadoProblema, EstadoInactivo:
		return true
	default:
		return false
	}
}

// ParseEstado accepts outcome names case-insensitively.
func ParseEstado(value string) (Estado, error) {
	estado := Estado(strings.ToLower(strings.TrimSpace(value)))
	if !estado.Valid() {
		return "", invalidEstado(value)
	}
	return estado, nil
}

func invalidEstado(value string) error {
	return apperrors.WithMetadata(
		apperrors.CodeReviewInvalidEstado,
		"invalid review estado "+value,
		map[string]string{"value": value},
	)
}

// ValidateFecha checks that fecha is a real YYYY-MM-DD date.
func ValidateFecha(fecha string) error {
	parsed, err := time.Parse(DateLayout, fecha)
	if err != nil || parsed.Format(DateLayout) != fecha {
		return apperrors.WrapWithMetadata(
			apperrors.CodeReviewInvalidFecha,
			"invalid review fecha "+fecha,
			map[string]string{"value": fecha},
			err,
		)
	}
	return nil
}

// Review records the inspection of one station on one date. A review's
// existence means the station was reviewed that day.
type Review struct {
	ID           string
	StationID    string
	Fecha        string
	Estado       Estado
	Notas        string
	HoraRevision string
}

// Normalized trims identifiers and validates the record.
func (r Review) Normalized() (Review, error) {
	r.ID = strings.TrimSpace(r.ID)
	r.StationID = strings.TrimSpace(r.StationID)
	r.Fecha = strings.TrimSpace(r.Fecha)
	if r.StationID == "" {
		return Review{}, apperrors.New(apperrors.CodeReviewStationEmpty, "review station id is required")
	}
	if err := ValidateFecha(r.Fecha); err != nil {
		return Review{}, err
	}
	if !r.Estado.Valid() {
		return Review{}, invalidEstado(string(r.Estado))
	}
	return r, nil
}
