package radiocontrol

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/louisbranch/radiocontrol/internal/platform/requestctx"
	"github.com/louisbranch/radiocontrol/internal/services/radio/auth"
	"github.com/louisbranch/radiocontrol/internal/services/radio/query"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

const timestampLayout = "2006-01-02 15:04:05"

func withSession(ctx context.Context, session auth.Session) context.Context {
	return requestctx.WithActor(ctx, session.Actor())
}

func joinPermissions(perms []auth.Permission) string {
	names := make([]string, 0, len(perms))
	for _, perm := range perms {
		names = append(names, string(perm))
	}
	return strings.Join(names, ", ")
}

func (r *runner) writeJSON(value any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// table writes tab-separated rows aligned in columns.
func (r *runner) table(headerKey string, headerArgs []any, rows [][]string) error {
	if len(rows) == 0 {
		r.println("cli.list.empty")
		return nil
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, r.p.Sprintf(headerKey, headerArgs...))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (r *runner) yesNo(value bool) string {
	if value {
		return r.p.Sprintf("cli.yes")
	}
	return r.p.Sprintf("cli.no")
}

type sessionView struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	LoginAt     string   `json:"loginAt"`
	ExpiresAt   string   `json:"expiresAt"`
	Permissions []string `json:"permissions"`
}

func newSessionView(session auth.Session, ttl time.Duration, perms []auth.Permission) sessionView {
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	names := make([]string, 0, len(perms))
	for _, perm := range perms {
		names = append(names, string(perm))
	}
	return sessionView{
		Username:    session.Username,
		Role:        string(session.Role),
		LoginAt:     session.LoginAt.Local().Format(timestampLayout),
		ExpiresAt:   session.LoginAt.Add(ttl).Local().Format(timestampLayout),
		Permissions: names,
	}
}

type frecuenciasView struct {
	Karibena string `json:"karibena"`
	Exitosa  string `json:"exitosa"`
	LaKalle  string `json:"laKalle"`
	SaborMix string `json:"saborMix"`
}

type accesoRemotoView struct {
	Disponible   bool   `json:"disponible"`
	TipoSoftware string `json:"tipoSoftware"`
	IDRemoto     string `json:"idRemoto"`
	Password     string `json:"password"`
}

type stationView struct {
	ID                    string           `json:"id"`
	Departamento          string           `json:"departamento"`
	Localidad             string           `json:"localidad"`
	Frecuencias           frecuenciasView  `json:"frecuencias"`
	AccesoRemoto          accesoRemotoView `json:"accesoRemoto"`
	ContactoAdministrador string           `json:"contactoAdministrador"`
	Activo                bool             `json:"activo"`
	Observaciones         string           `json:"observaciones"`
	UltimaActualizacion   time.Time        `json:"ultimaActualizacion"`
	Revision              *reviewView      `json:"revision,omitempty"`
}

func newStationView(station storage.Station) stationView {
	return stationView{
		ID:           station.ID,
		Departamento: station.Departamento,
		Localidad:    station.Localidad,
		Frecuencias: frecuenciasView{
			Karibena: station.Frecuencias.Karibena,
			Exitosa:  station.Frecuencias.Exitosa,
			LaKalle:  station.Frecuencias.LaKalle,
			SaborMix: station.Frecuencias.SaborMix,
		},
		AccesoRemoto: accesoRemotoView{
			Disponible:   station.AccesoRemoto.Disponible,
			TipoSoftware: string(station.AccesoRemoto.TipoSoftware),
			IDRemoto:     station.AccesoRemoto.IDRemoto,
			Password:     station.AccesoRemoto.Password,
		},
		ContactoAdministrador: station.ContactoAdministrador,
		Activo:                station.Activo,
		Observaciones:         station.Observaciones,
		UltimaActualizacion:   station.UltimaActualizacion,
	}
}

type reviewView struct {
	ID           string `json:"id"`
	StationID    string `json:"stationId"`
	Fecha        string `json:"fecha"`
	Estado       string `json:"estado"`
	Notas        string `json:"notas"`
	HoraRevision string `json:"horaRevision"`
	Created      *bool  `json:"created,omitempty"`
}

func newReviewView(review storage.Review) reviewView {
	return reviewView{
		ID:           review.ID,
		StationID:    review.StationID,
		Fecha:        review.Fecha,
		Estado:       string(review.Estado),
		Notas:        review.Notas,
		HoraRevision: review.HoraRevision,
	}
}

type statisticsView struct {
	Fecha        string `json:"fecha"`
	Total        int    `json:"total"`
	Activas      int    `json:"activas"`
	ConProblemas int    `json:"conProblemas"`
	Inactivas    int    `json:"inactivas"`
	SinRevisar   int    `json:"sinRevisar"`
	Progreso     int    `json:"progreso"`
}

func newStatisticsView(stats query.Statistics) statisticsView {
	return statisticsView{
		Fecha:        stats.Fecha,
		Total:        stats.Total,
		Activas:      stats.Activas,
		ConProblemas: stats.ConProblemas,
		Inactivas:    stats.Inactivas,
		SinRevisar:   stats.SinRevisar,
		Progreso:     stats.ProgressPercent(),
	}
}

type summaryView struct {
	Departamento string `json:"departamento"`
	statisticsView
}

type historyView struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	User      string            `json:"user"`
	Role      string            `json:"role"`
	Action    string            `json:"action"`
	Entity    string            `json:"entity"`
	Details   string            `json:"details"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func newHistoryView(entry storage.HistoryEntry) historyView {
	return historyView{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		User:      entry.User,
		Role:      entry.Role,
		Action:    string(entry.Action),
		Entity:    string(entry.Entity),
		Details:   entry.Details,
		Metadata:  entry.Metadata,
	}
}
