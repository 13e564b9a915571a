package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"program-monitoring-api/internal/domain/eventos"
	"program-monitoring-api/internal/listing"
)

type EventosRepo struct {
	db      *sql.DB
	q       querier
	locking bool
}

func NewEventosRepo(db *sql.DB) *EventosRepo {
	return &EventosRepo{db: db, q: db}
}

func (r *EventosRepo) InTx(ctx context.Context, fn func(eventos.Repository) error) error {
	if r.locking {
		return fn(r)
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&EventosRepo{db: r.db, q: tx, locking: true})
	})
}

const eventoColumns = `
	id, tarea_id, componente_encargado_id, quarter_id,
	nombre, area_tematica_id, fecha_inicio, fecha_final,
	departamento_id, municipio_id, aldea_id, caserio_id,
	organizador_id, fecha_creacion, responsable_creacion_id,
	numero_formulario,
	participantes_hombres, participantes_mujeres,
	participantes_comunitarios, participantes_institucionales,
	total_dias, total_horas, tipo_evento_id,
	logros, compromisos, enlace_formulario, enlace_fotografias,
	estado_realizacion, responsable_finalizacion_id, fecha_finalizacion,
	estado_revision_finalizacion, revisor_finalizacion_id,
	fecha_revision_finalizacion, observaciones_finalizacion,
	registrados_hombres, registrados_mujeres,
	registrados_comunitarios, registrados_institucionales,
	estado_digitacion, responsable_digitacion_id, fecha_digitacion,
	estado_revision_digitacion, revisor_digitacion_id,
	fecha_revision_digitacion, observaciones_digitacion,
	estado_consolidado, responsable_consolidado_id, fecha_consolidado,
	created_at, updated_at
`

var eventoColumnList = func() []string {
	parts := strings.Split(eventoColumns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}()

func eventoArgs(e eventos.Evento) []any {
	return []any{
		e.ID, e.TareaID, e.ComponenteEncargadoID, e.QuarterID,
		e.Nombre, e.AreaTematicaID, e.FechaInicio, e.FechaFinal,
		e.DepartamentoID, e.MunicipioID, e.AldeaID, e.CaserioID,
		e.OrganizadorID, e.FechaCreacion, e.ResponsableCreacionID,
		e.NumeroFormulario,
		e.ParticipantesHombres, e.ParticipantesMujeres,
		e.ParticipantesComunitarios, e.ParticipantesInstitucionales,
		e.TotalDias, e.TotalHoras, e.TipoEventoID,
		e.Logros, e.Compromisos, e.EnlaceFormulario, e.EnlaceFotografias,
		string(e.EstadoRealizacion), e.ResponsableFinalizacionID, toNullTime(e.FechaFinalizacion),
		string(e.EstadoRevisionFinalizacion), e.RevisorFinalizacionID,
		toNullTime(e.FechaRevisionFinalizacion), e.ObservacionesFinalizacion,
		e.RegistradosHombres, e.RegistradosMujeres,
		e.RegistradosComunitarios, e.RegistradosInstitucionales,
		string(e.EstadoDigitacion), e.ResponsableDigitacionID, toNullTime(e.FechaDigitacion),
		string(e.EstadoRevisionDigitacion), e.RevisorDigitacionID,
		toNullTime(e.FechaRevisionDigitacion), e.ObservacionesDigitacion,
		string(e.EstadoConsolidado), e.ResponsableConsolidadoID, toNullTime(e.FechaConsolidado),
		e.CreatedAt, e.UpdatedAt,
	}
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ",")
}

func (r *EventosRepo) Create(ctx context.Context, e eventos.Evento) error {
	args := eventoArgs(e)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO eventos (`+eventoColumns+`)
		VALUES (`+placeholders(len(args))+`)
	`, args...)
	return err
}

// Update sobreescribe la fila completa. El SET se arma desde la misma lista
// de columnas que usa Create para que ningún campo del modelo quede fuera.
func (r *EventosRepo) Update(ctx context.Context, e eventos.Evento) error {
	args := eventoArgs(e)
	set := make([]string, 0, len(eventoColumnList))
	updArgs := make([]any, 0, len(args))
	updArgs = append(updArgs, e.ID)
	for i, col := range eventoColumnList {
		if col == "id" {
			continue
		}
		updArgs = append(updArgs, args[i])
		set = append(set, fmt.Sprintf("%s = $%d", col, len(updArgs)))
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE eventos
		SET `+strings.Join(set, ", ")+`
		WHERE id = $1
	`, updArgs...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventosRepo) GetByID(ctx context.Context, id string) (eventos.Evento, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return eventos.Evento{}, ErrNotFound
	}

	query := `SELECT ` + eventoColumns + ` FROM eventos WHERE id = $1`
	if r.locking {
		query += ` FOR UPDATE`
	}
	return scanEvento(r.q.QueryRowContext(ctx, query, id))
}

func (r *EventosRepo) List(ctx context.Context, sel listing.Selection, page, pageSize int) ([]eventos.Evento, int, error) {
	conds := []string{}
	args := []any{}

	stateCol, err := eventoField(sel.StateField)
	if err != nil {
		return nil, 0, err
	}
	if len(sel.States) > 0 {
		ph := make([]string, 0, len(sel.States))
		for _, st := range sel.States {
			args = append(args, st)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		conds = append(conds, stateCol+" IN ("+strings.Join(ph, ", ")+")")
	}

	if sel.Match != nil {
		expr, err := eventoField(sel.Match.Field)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, sel.Match.Value)
		switch sel.Match.Operator {
		case listing.OpIs:
			conds = append(conds, fmt.Sprintf("%s = $%d", expr, len(args)))
		default:
			conds = append(conds, fmt.Sprintf("%s ~* $%d", expr, len(args)))
		}
	}

	if sel.ComponenteID != "" {
		args = append(args, sel.ComponenteID)
		conds = append(conds, fmt.Sprintf("componente_encargado_id = $%d", len(args)))
	}
	if sel.QuarterID != "" {
		args = append(args, sel.QuarterID)
		conds = append(conds, fmt.Sprintf("quarter_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	orderCol, err := eventoField(sel.Sort.Field)
	if err != nil {
		return nil, 0, err
	}
	dir := "ASC"
	if sel.Sort.Desc {
		dir = "DESC"
	}

	query := `SELECT ` + eventoColumns + `, count(*) OVER() AS total
		FROM eventos ` + where + ` ORDER BY ` + orderCol + ` ` + dir
	if pageSize > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, pageSize, page*pageSize)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]eventos.Evento, 0)
	total := 0
	for rows.Next() {
		e, t, err := scanEventoWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
		total = t
	}
	return out, total, rows.Err()
}

func (r *EventosRepo) ListTablero(ctx context.Context, quarterID, componenteID string) ([]eventos.Evento, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+eventoColumns+`
		FROM eventos
		WHERE quarter_id = $1 AND componente_encargado_id = $2
		ORDER BY fecha_creacion ASC
	`, quarterID, componenteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventos.Evento, 0)
	for rows.Next() {
		e, _, err := scanEventoWithTotal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventosRepo) ReplaceRefs(ctx context.Context, eventoID string, kind eventos.RefKind, ids []string) error {
	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM evento_refs WHERE evento_id = $1 AND kind = $2
	`, eventoID, string(kind)); err != nil {
		return err
	}
	for _, refID := range ids {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO evento_refs (evento_id, kind, ref_id) VALUES ($1, $2, $3)
		`, eventoID, string(kind), refID); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventosRepo) ListRefs(ctx context.Context, eventoID string, kind eventos.RefKind) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT ref_id FROM evento_refs
		WHERE evento_id = $1 AND kind = $2
		ORDER BY ref_id ASC
	`, eventoID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *EventosRepo) ReplaceParticipantes(ctx context.Context, eventoID string, participanteIDs []string) error {
	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM evento_participantes WHERE evento_id = $1
	`, eventoID); err != nil {
		return err
	}
	for _, pid := range participanteIDs {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO evento_participantes (evento_id, participante_id, estado, indicador_id)
			VALUES ($1, $2, '', '')
		`, eventoID, pid); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventosRepo) ListParticipantes(ctx context.Context, eventoID string) ([]eventos.Participante, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT evento_id, participante_id, estado, indicador_id
		FROM evento_participantes
		WHERE evento_id = $1
		ORDER BY participante_id ASC
	`, eventoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventos.Participante, 0)
	for rows.Next() {
		var p eventos.Participante
		var estado string
		if err := rows.Scan(&p.EventoID, &p.ParticipanteID, &estado, &p.IndicadorSeleccionadoID); err != nil {
			return nil, err
		}
		p.Estado = eventos.EstadoParticipante(estado)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *EventosRepo) UpdateParticipante(ctx context.Context, p eventos.Participante) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE evento_participantes
		SET estado = $3, indicador_id = $4
		WHERE evento_id = $1 AND participante_id = $2
	`, p.EventoID, p.ParticipanteID, string(p.Estado), p.IndicadorSeleccionadoID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventosRepo) AddLogro(ctx context.Context, l eventos.LogroParticipante) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO participante_logros (participante_id, year, indicador_id)
		VALUES ($1, $2, $3)
	`, l.ParticipanteID, l.Year, l.IndicadorID)
	return err
}

func (r *EventosRepo) ListLogros(ctx context.Context, participanteID string) ([]eventos.LogroParticipante, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT participante_id, year, indicador_id
		FROM participante_logros
		WHERE participante_id = $1
		ORDER BY year ASC, indicador_id ASC
	`, participanteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventos.LogroParticipante, 0)
	for rows.Next() {
		var l eventos.LogroParticipante
		if err := rows.Scan(&l.ParticipanteID, &l.Year, &l.IndicadorID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func eventoField(field string) (string, error) {
	switch field {
	case "estadoRealizacion":
		return "estado_realizacion", nil
	case "estadoDigitacion":
		return "estado_digitacion", nil
	case "estadoConsolidado":
		return "estado_consolidado", nil
	case "fechaCreacion":
		return "fecha_creacion", nil
	case "fechaEdicion":
		return "updated_at", nil
	case "nombre":
		return "nombre", nil
	case "quarterId":
		return "quarter_id", nil
	case "componenteId":
		return "componente_encargado_id", nil
	default:
		return safeIdent(field)
	}
}

func scanEvento(row rowScanner) (eventos.Evento, error) {
	e, _, err := scanEventoDest(row, false)
	return e, err
}

func scanEventoWithTotal(rows *sql.Rows) (eventos.Evento, int, error) {
	cols, err := rows.Columns()
	if err != nil {
		return eventos.Evento{}, 0, err
	}
	return scanEventoDest(rows, len(cols) == eventoColumnCount+1)
}

var eventoColumnCount = len(eventoColumnList)

func scanEventoDest(row rowScanner, withTotal bool) (eventos.Evento, int, error) {
	var (
		e eventos.Evento

		estadoRealizacion, estadoRevFin, estadoDig, estadoRevDig, estadoCons string

		fechaFinalizacion, fechaRevFin, fechaDig, fechaRevDig, fechaCons sql.NullTime

		total int
	)

	dest := []any{
		&e.ID, &e.TareaID, &e.ComponenteEncargadoID, &e.QuarterID,
		&e.Nombre, &e.AreaTematicaID, &e.FechaInicio, &e.FechaFinal,
		&e.DepartamentoID, &e.MunicipioID, &e.AldeaID, &e.CaserioID,
		&e.OrganizadorID, &e.FechaCreacion, &e.ResponsableCreacionID,
		&e.NumeroFormulario,
		&e.ParticipantesHombres, &e.ParticipantesMujeres,
		&e.ParticipantesComunitarios, &e.ParticipantesInstitucionales,
		&e.TotalDias, &e.TotalHoras, &e.TipoEventoID,
		&e.Logros, &e.Compromisos, &e.EnlaceFormulario, &e.EnlaceFotografias,
		&estadoRealizacion, &e.ResponsableFinalizacionID, &fechaFinalizacion,
		&estadoRevFin, &e.RevisorFinalizacionID,
		&fechaRevFin, &e.ObservacionesFinalizacion,
		&e.RegistradosHombres, &e.RegistradosMujeres,
		&e.RegistradosComunitarios, &e.RegistradosInstitucionales,
		&estadoDig, &e.ResponsableDigitacionID, &fechaDig,
		&estadoRevDig, &e.RevisorDigitacionID,
		&fechaRevDig, &e.ObservacionesDigitacion,
		&estadoCons, &e.ResponsableConsolidadoID, &fechaCons,
		&e.CreatedAt, &e.UpdatedAt,
	}
	if withTotal {
		dest = append(dest, &total)
	}

	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return eventos.Evento{}, 0, ErrNotFound
		}
		return eventos.Evento{}, 0, err
	}

	e.EstadoRealizacion = eventos.EstadoEje(estadoRealizacion)
	e.EstadoRevisionFinalizacion = eventos.EstadoEje(estadoRevFin)
	e.EstadoDigitacion = eventos.EstadoEje(estadoDig)
	e.EstadoRevisionDigitacion = eventos.EstadoEje(estadoRevDig)
	e.EstadoConsolidado = eventos.EstadoEje(estadoCons)
	e.FechaFinalizacion = fromNullTime(fechaFinalizacion)
	e.FechaRevisionFinalizacion = fromNullTime(fechaRevFin)
	e.FechaDigitacion = fromNullTime(fechaDig)
	e.FechaRevisionDigitacion = fromNullTime(fechaRevDig)
	e.FechaConsolidado = fromNullTime(fechaCons)

	return e, total, nil
}
