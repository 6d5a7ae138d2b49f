// Package query derives read-side views (filters, statistics, department
// summaries) from stations and reviews.
package query

import (
	"sort"
	"strings"

	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// Filter narrows a station list. Zero values match everything.
type Filter struct {
	// Departamento must equal the station department exactly.
	Departamento string
	// Busqueda is a case-insensitive substring matched against departamento,
	// localidad, contactoAdministrador and observaciones.
	Busqueda    string
	SoloActivas bool
}

// Matches reports whether station passes every set criterion.
func (f Filter) Matches(station storage.Station) bool {
	if f.Departamento != "" && station.Departamento != f.Departamento {
		return false
	}
	if f.SoloActivas && !station.Activo {
		return false
	}
	search := strings.ToLower(strings.TrimSpace(f.Busqueda))
	if search == "" {
		return true
	}
	for _, field := range []string{
		station.Departamento,
		station.Localidad,
		station.ContactoAdministrador,
		station.Observaciones,
	} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Apply returns the stations that match f, preserving order.
func (f Filter) Apply(stations []storage.Station) []storage.Station {
	out := make([]storage.Station, 0, len(stations))
	for _, station := range stations {
		if f.Matches(station) {
			out = append(out, station)
		}
	}
	return out
}

// Departamentos returns the sorted distinct departments of stations.
func Departamentos(stations []storage.Station) []string {
	seen := make(map[string]struct{}, len(stations))
	out := make([]string, 0)
	for _, station := range stations {
		if _, ok := seen[station.Departamento]; ok {
			continue
		}
		seen[station.Departamento] = struct{}{}
		out = append(out, station.Departamento)
	}
	sort.Strings(out)
	return out
}
