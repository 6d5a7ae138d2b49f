package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

const stationColumns = `id, departamento, localidad,
       freq_karibena, freq_exitosa, freq_la_kalle, freq_sabor_mix,
       remote_available, remote_software, remote_id, remote_password,
       contacto_administrador, activo, observaciones, ultima_actualizacion`

const insertStationSQL = `INSERT INTO stations (
    id, departamento, localidad,
    freq_karibena, freq_exitosa, freq_la_kalle, freq_sabor_mix,
    remote_available, remote_software, remote_id, remote_password,
    contacto_administrador, activo, observaciones, ultima_actualizacion
) VALUES (
    :id, :departamento, :localidad,
    :freq_karibena, :freq_exitosa, :freq_la_kalle, :freq_sabor_mix,
    :remote_available, :remote_software, :remote_id, :remote_password,
    :contacto_administrador, :activo, :observaciones, :ultima_actualizacion
)`

const updateStationSQL = `UPDATE stations SET
    departamento = :departamento,
    localidad = :localidad,
    freq_karibena = :freq_karibena,
    freq_exitosa = :freq_exitosa,
    freq_la_kalle = :freq_la_kalle,
    freq_sabor_mix = :freq_sabor_mix,
    remote_available = :remote_available,
    remote_software = :remote_software,
    remote_id = :remote_id,
    remote_password = :remote_password,
    contacto_administrador = :contacto_administrador,
    activo = :activo,
    observaciones = :observaciones,
    ultima_actualizacion = :ultima_actualizacion
WHERE id = :id`

type stationRow struct {
	ID                    string `db:"id"`
	Departamento          string `db:"departamento"`
	Localidad             string `db:"localidad"`
	FreqKaribena          string `db:"freq_karibena"`
	FreqExitosa           string `db:"freq_exitosa"`
	FreqLaKalle           string `db:"freq_la_kalle"`
	FreqSaborMix          string `db:"freq_sabor_mix"`
	RemoteAvailable       bool   `db:"remote_available"`
	RemoteSoftware        string `db:"remote_software"`
	RemoteID              string `db:"remote_id"`
	RemotePassword        string `db:"remote_password"`
	ContactoAdministrador string `db:"contacto_administrador"`
	Activo                bool   `db:"activo"`
	Observaciones         string `db:"observaciones"`
	UltimaActualizacion   int64  `db:"ultima_actualizacion"`
}

func toStationRow(station storage.Station) stationRow {
	return stationRow{
		ID:                    station.ID,
		Departamento:          station.Departamento,
		Localidad:             station.Localidad,
		FreqKaribena:          station.Frecuencias.Karibena,
		FreqExitosa:           station.Frecuencias.Exitosa,
		FreqLaKalle:           station.Frecuencias.LaKalle,
		FreqSaborMix:          station.Frecuencias.SaborMix,
		RemoteAvailable:       station.AccesoRemoto.Disponible,
		RemoteSoftware:        string(station.AccesoRemoto.TipoSoftware),
		RemoteID:              station.AccesoRemoto.IDRemoto,
		RemotePassword:        station.AccesoRemoto.Password,
		ContactoAdministrador: station.ContactoAdministrador,
		Activo:                station.Activo,
		Observaciones:         station.Observaciones,
		UltimaActualizacion:   toMillis(station.UltimaActualizacion),
	}
}

func (r stationRow) toStation() storage.Station {
	return storage.Station{
		ID:           r.ID,
		Departamento: r.Departamento,
		Localidad:    r.Localidad,
		Frecuencias: storage.Frecuencias{
			Karibena: r.FreqKaribena,
			Exitosa:  r.FreqExitosa,
			LaKalle:  r.FreqLaKalle,
			SaborMix: r.FreqSaborMix,
		},
		AccesoRemoto: storage.AccesoRemoto{
			Disponible:   r.RemoteAvailable,
			TipoSoftware: storage.SoftwareKind(r.RemoteSoftware),
			IDRemoto:     r.RemoteID,
			Password:     r.RemotePassword,
		},
		ContactoAdministrador: r.ContactoAdministrador,
		Activo:                r.Activo,
		Observaciones:         r.Observaciones,
		UltimaActualizacion:   fromMillis(r.UltimaActualizacion),
	}
}

func toStations(rows []stationRow) []storage.Station {
	out := make([]storage.Station, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toStation())
	}
	return out
}

// AddStation inserts a station, assigning an id when none is given.
func (s *Store) AddStation(ctx context.Context, station storage.Station) (storage.Station, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Station{}, err
	}
	station, err := station.Normalized()
	if err != nil {
		return storage.Station{}, err
	}
	if station.ID, err = s.assignID(station.ID); err != nil {
		return storage.Station{}, err
	}
	station.UltimaActualizacion = s.stamp()

	if _, err := s.db.NamedExecContext(ctx, insertStationSQL, toStationRow(station)); err != nil {
		if isUniqueViolation(err) {
			return storage.Station{}, storage.ErrAlreadyExists
		}
		return storage.Station{}, fmt.Errorf("add station: %w", err)
	}
	return station, nil
}

// UpdateStation replaces the full record at station.ID.
func (s *Store) UpdateStation(ctx context.Context, station storage.Station) (storage.Station, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Station{}, err
	}
	station, err := station.Normalized()
	if err != nil {
		return storage.Station{}, err
	}
	if station.ID == "" {
		return storage.Station{}, storage.ErrNotFound
	}
	station.UltimaActualizacion = s.stamp()

	res, err := s.db.NamedExecContext(ctx, updateStationSQL, toStationRow(station))
	if err != nil {
		return storage.Station{}, fmt.Errorf("update station: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return storage.Station{}, err
	}
	return station, nil
}

// DeleteStation removes a station and every review that references it in one
// transaction. Review ids are collected and deleted before the station, and
// the commit is refused if any review still references it.
func (s *Store) DeleteStation(ctx context.Context, stationID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return 0, storage.ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var reviewIDs []string
	if err := tx.SelectContext(ctx, &reviewIDs, `SELECT id FROM reviews WHERE station_id = ?`, stationID); err != nil {
		return 0, fmt.Errorf("collect station reviews: %w", err)
	}
	if len(reviewIDs) > 0 {
		query, args, err := sqlx.In(`DELETE FROM reviews WHERE id IN (?)`, reviewIDs)
		if err != nil {
			return 0, fmt.Errorf("build review delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return 0, fmt.Errorf("delete station reviews: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM stations WHERE id = ?`, stationID)
	if err != nil {
		return 0, fmt.Errorf("delete station: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return 0, err
	}

	var remaining int
	if err := tx.GetContext(ctx, &remaining, `SELECT COUNT(*) FROM reviews WHERE station_id = ?`, stationID); err != nil {
		return 0, fmt.Errorf("verify station reviews: %w", err)
	}
	if remaining > 0 {
		return 0, fmt.Errorf("%w: station %s still has %d reviews", storage.ErrCascadeInconsistent, stationID, remaining)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(reviewIDs), nil
}

// GetStation returns one station by id.
func (s *Store) GetStation(ctx context.Context, stationID string) (storage.Station, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Station{}, err
	}
	var row stationRow
	err := s.db.GetContext(ctx, &row, `SELECT `+stationColumns+` FROM stations WHERE id = ?`, strings.TrimSpace(stationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Station{}, storage.ErrNotFound
		}
		return storage.Station{}, fmt.Errorf("get station: %w", err)
	}
	return row.toStation(), nil
}

// GetAllStations returns every station in insertion order.
func (s *Store) GetAllStations(ctx context.Context) ([]storage.Station, error) {
	return s.ListStations(ctx, storage.Condition{})
}

// GetStationsByDepartamento returns stations whose departamento equals the argument exactly.
func (s *Store) GetStationsByDepartamento(ctx context.Context, departamento string) ([]storage.Station, error) {
	return s.ListStations(ctx, storage.Condition{Clause: "departamento = ?", Params: []any{departamento}})
}

// GetStationsByActivo returns stations by their administrative flag.
func (s *Store) GetStationsByActivo(ctx context.Context, activo bool) ([]storage.Station, error) {
	return s.ListStations(ctx, storage.Condition{Clause: "activo = ?", Params: []any{activo}})
}

// ListStations returns stations matching cond in insertion order.
func (s *Store) ListStations(ctx context.Context, cond storage.Condition) ([]storage.Station, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + stationColumns + ` FROM stations`
	if !cond.Empty() {
		query += ` WHERE ` + cond.Clause
	}
	query += ` ORDER BY rowid`

	var rows []stationRow
	if err := s.db.SelectContext(ctx, &rows, query, cond.Params...); err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return toStations(rows), nil
}

// ListDepartamentos returns the sorted distinct departments.
func (s *Store) ListDepartamentos(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	out := []string{}
	if err := s.db.SelectContext(ctx, &out, `SELECT DISTINCT departamento FROM stations ORDER BY departamento`); err != nil {
		return nil, fmt.Errorf("list departamentos: %w", err)
	}
	return out, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
