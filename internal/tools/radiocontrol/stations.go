package radiocontrol

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/louisbranch/radiocontrol/internal/services/radio/query"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// stationFlags binds the editable station fields to a flag set.
type stationFlags struct {
	departamento   string
	localidad      string
	karibena       string
	exitosa        string
	laKalle        string
	saborMix       string
	remote         bool
	software       string
	remoteID       string
	remotePassword string
	contacto       string
	inactive       bool
	observaciones  string
}

func bindStationFlags(fs *flag.FlagSet) *stationFlags {
	f := &stationFlags{}
	fs.StringVar(&f.departamento, "departamento", "", "department")
	fs.StringVar(&f.localidad, "localidad", "", "locality")
	fs.StringVar(&f.karibena, "karibena", "", "La Karibeña frequency")
	fs.StringVar(&f.exitosa, "exitosa", "", "Exitosa frequency")
	fs.StringVar(&f.laKalle, "la-kalle", "", "La Kalle frequency")
	fs.StringVar(&f.saborMix, "sabor-mix", "", "Sabor Mix frequency")
	fs.BoolVar(&f.remote, "remote", false, "remote access available")
	fs.StringVar(&f.software, "software", "", "remote access software (TeamViewer|AnyDesk|Otro)")
	fs.StringVar(&f.remoteID, "remote-id", "", "remote access id")
	fs.StringVar(&f.remotePassword, "remote-password", "", "remote access password")
	fs.StringVar(&f.contacto, "contacto", "", "administrator contact")
	fs.BoolVar(&f.inactive, "inactive", false, "mark the station inactive")
	fs.StringVar(&f.observaciones, "observaciones", "", "notes")
	return f
}

// apply copies the flags that were set on the command line onto station.
func (f *stationFlags) apply(fs *flag.FlagSet, station storage.Station) (storage.Station, error) {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "departamento":
			station.Departamento = f.departamento
		case "localidad":
			station.Localidad = f.localidad
		case "karibena":
			station.Frecuencias.Karibena = f.karibena
		case "exitosa":
			station.Frecuencias.Exitosa = f.exitosa
		case "la-kalle":
			station.Frecuencias.LaKalle = f.laKalle
		case "sabor-mix":
			station.Frecuencias.SaborMix = f.saborMix
		case "remote":
			station.AccesoRemoto.Disponible = f.remote
		case "software":
			kind, parseErr := storage.ParseSoftwareKind(f.software)
			if parseErr != nil {
				err = parseErr
				return
			}
			station.AccesoRemoto.TipoSoftware = kind
		case "remote-id":
			station.AccesoRemoto.IDRemoto = f.remoteID
		case "remote-password":
			station.AccesoRemoto.Password = f.remotePassword
		case "contacto":
			station.ContactoAdministrador = f.contacto
		case "inactive":
			station.Activo = !f.inactive
		case "observaciones":
			station.Observaciones = f.observaciones
		}
	})
	return station, err
}

func (r *runner) station(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageErrorf("station: a subcommand is required (add|update|delete|get|list)")
	}
	switch args[0] {
	case "add":
		return r.stationAdd(ctx, args[1:])
	case "update":
		return r.stationUpdate(ctx, args[1:])
	case "delete":
		return r.stationDelete(ctx, args[1:])
	case "get":
		return r.stationGet(ctx, args[1:])
	case "list":
		return r.stationList(ctx, args[1:])
	default:
		return usageErrorf("station: unknown subcommand %q", args[0])
	}
}

func (r *runner) stationAdd(ctx context.Context, args []string) error {
	fs := r.flags("station add")
	id := fs.String("id", "", "station id (generated when empty)")
	fields := bindStationFlags(fs)
	if err := r.parse(fs, args); err != nil {
		return err
	}
	station, err := fields.apply(fs, storage.Station{ID: strings.TrimSpace(*id), Activo: true})
	if err != nil {
		return err
	}
	created, err := r.svc.AddStation(ctx, station)
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(newStationView(created))
	}
	r.println("cli.station.added", created.ID)
	return nil
}

func (r *runner) stationUpdate(ctx context.Context, args []string) error {
	fs := r.flags("station update")
	id := fs.String("id", "", "station id")
	fields := bindStationFlags(fs)
	if err := r.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return usageErrorf("station update: -id is required")
	}
	existing, err := r.svc.GetStation(ctx, *id)
	if err != nil {
		return err
	}
	station, err := fields.apply(fs, existing)
	if err != nil {
		return err
	}
	updated, err := r.svc.UpdateStation(ctx, station)
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(newStationView(updated))
	}
	r.println("cli.station.updated", updated.ID)
	return nil
}

func (r *runner) stationDelete(ctx context.Context, args []string) error {
	fs := r.flags("station delete")
	id := fs.String("id", "", "station id")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return usageErrorf("station delete: -id is required")
	}
	removed, err := r.svc.DeleteStation(ctx, *id)
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(map[string]any{"id": *id, "reviewsRemoved": removed})
	}
	r.println("cli.station.deleted", *id, removed)
	return nil
}

func (r *runner) stationGet(ctx context.Context, args []string) error {
	fs := r.flags("station get")
	id := fs.String("id", "", "station id")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return usageErrorf("station get: -id is required")
	}
	station, err := r.svc.GetStation(ctx, *id)
	if err != nil {
		return err
	}
	view := newStationView(station)
	if r.cfg.JSONOutput {
		return r.writeJSON(view)
	}
	details := [][2]string{
		{"id", view.ID},
		{"departamento", view.Departamento},
		{"localidad", view.Localidad},
		{"karibena", view.Frecuencias.Karibena},
		{"exitosa", view.Frecuencias.Exitosa},
		{"laKalle", view.Frecuencias.LaKalle},
		{"saborMix", view.Frecuencias.SaborMix},
		{"accesoRemoto", r.yesNo(view.AccesoRemoto.Disponible)},
		{"tipoSoftware", view.AccesoRemoto.TipoSoftware},
		{"idRemoto", view.AccesoRemoto.IDRemoto},
		{"contactoAdministrador", view.ContactoAdministrador},
		{"activo", r.yesNo(view.Activo)},
		{"observaciones", view.Observaciones},
		{"ultimaActualizacion", station.UltimaActualizacion.Local().Format(timestampLayout)},
	}
	for _, detail := range details {
		r.println("cli.station.detail", detail[0], detail[1])
	}
	return nil
}

func (r *runner) stationList(ctx context.Context, args []string) error {
	fs := r.flags("station list")
	var filter query.Filter
	fs.StringVar(&filter.Departamento, "departamento", "", "only this department")
	fs.StringVar(&filter.Busqueda, "search", "", "case-insensitive search")
	fs.BoolVar(&filter.SoloActivas, "active", false, "only active stations")
	expression := fs.String("filter", "", `AIP-160 filter, e.g. departamento = "Lima" AND activo = true`)
	date := fs.String("date", r.today(), "review date shown in the listing")
	if err := r.parse(fs, args); err != nil {
		return err
	}

	var (
		stations []storage.Station
		err      error
	)
	if strings.TrimSpace(*expression) != "" {
		stations, err = r.svc.FilterStations(ctx, *expression)
		stations = filter.Apply(stations)
	} else {
		stations, err = r.svc.ListStations(ctx, filter)
	}
	if err != nil {
		return err
	}
	reviews, err := r.svc.ReviewsByDate(ctx, *date)
	if err != nil {
		return err
	}
	byStation := make(map[string]storage.Review, len(reviews))
	for _, review := range reviews {
		byStation[review.StationID] = review
	}

	if r.cfg.JSONOutput {
		views := make([]stationView, 0, len(stations))
		for _, station := range stations {
			view := newStationView(station)
			if review, ok := byStation[station.ID]; ok {
				rv := newReviewView(review)
				view.Revision = &rv
			}
			views = append(views, view)
		}
		return r.writeJSON(views)
	}

	rows := make([][]string, 0, len(stations))
	for _, station := range stations {
		estado := "-"
		if review, ok := byStation[station.ID]; ok {
			estado = string(review.Estado)
		}
		remote := "-"
		if station.AccesoRemoto.Disponible {
			remote = string(station.AccesoRemoto.TipoSoftware)
			if remote == "" {
				remote = r.yesNo(true)
			}
		}
		rows = append(rows, []string{station.ID, station.Departamento, station.Localidad, r.yesNo(station.Activo), remote, estado})
	}
	return r.table("cli.header.stations", []any{*date}, rows)
}

func (r *runner) departments(ctx context.Context) error {
	departamentos, err := r.svc.Departamentos(ctx)
	if err != nil {
		return err
	}
	if r.cfg.JSONOutput {
		return r.writeJSON(departamentos)
	}
	if len(departamentos) == 0 {
		r.println("cli.list.empty")
		return nil
	}
	for _, departamento := range departamentos {
		fmt.Fprintln(r.out, departamento)
	}
	return nil
}
