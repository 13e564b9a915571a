package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"program-monitoring-api/internal/domain/registros"
	"program-monitoring-api/internal/listing"
)

type RegistrosRepo struct {
	db *sql.DB
	q  querier

	// locking activa FOR UPDATE en las lecturas dentro de transacción.
	locking bool
}

func NewRegistrosRepo(db *sql.DB) *RegistrosRepo {
	return &RegistrosRepo{db: db, q: db}
}

func (r *RegistrosRepo) InTx(ctx context.Context, fn func(registros.Repository) error) error {
	if r.locking {
		// ya estamos adentro de una transacción
		return fn(r)
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&RegistrosRepo{db: r.db, q: tx, locking: true})
	})
}

const registroColumns = `
	id, kind, payload, estado,
	original_id, version, ultima_revision,
	editor_id, fecha_edicion,
	revisor_id, fecha_revision,
	eliminador_id, fecha_eliminacion,
	observaciones
`

func (r *RegistrosRepo) Create(ctx context.Context, reg registros.Registro) error {
	payload, err := json.Marshal(reg.Payload)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO registros (`+registroColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		reg.ID,
		string(reg.Kind),
		payload,
		string(reg.Estado),
		reg.OriginalID,
		reg.Version,
		reg.UltimaRevision,
		reg.EditorID,
		reg.FechaEdicion,
		reg.RevisorID,
		toNullTime(reg.FechaRevision),
		reg.EliminadorID,
		toNullTime(reg.FechaEliminacion),
		reg.Observaciones,
	)
	return err
}

func (r *RegistrosRepo) Update(ctx context.Context, reg registros.Registro) error {
	payload, err := json.Marshal(reg.Payload)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE registros
		SET
			payload = $3,
			estado = $4,
			original_id = $5,
			version = $6,
			ultima_revision = $7,
			editor_id = $8,
			fecha_edicion = $9,
			revisor_id = $10,
			fecha_revision = $11,
			eliminador_id = $12,
			fecha_eliminacion = $13,
			observaciones = $14
		WHERE kind = $2 AND id = $1
	`,
		reg.ID,
		string(reg.Kind),
		payload,
		string(reg.Estado),
		reg.OriginalID,
		reg.Version,
		reg.UltimaRevision,
		reg.EditorID,
		reg.FechaEdicion,
		reg.RevisorID,
		toNullTime(reg.FechaRevision),
		reg.EliminadorID,
		toNullTime(reg.FechaEliminacion),
		reg.Observaciones,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RegistrosRepo) GetByID(ctx context.Context, kind registros.Kind, id string) (registros.Registro, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return registros.Registro{}, ErrNotFound
	}

	query := `SELECT ` + registroColumns + ` FROM registros WHERE kind = $1 AND id = $2`
	if r.locking {
		query += ` FOR UPDATE`
	}

	return scanRegistro(r.q.QueryRowContext(ctx, query, string(kind), id))
}

func (r *RegistrosRepo) List(ctx context.Context, kind registros.Kind, sel listing.Selection, page, pageSize int) ([]registros.Registro, int, error) {
	where, args, err := registroWhere(kind, sel, "")
	if err != nil {
		return nil, 0, err
	}
	order, err := registroOrder(sel.Sort)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + registroColumns + `, count(*) OVER() AS total
		FROM registros ` + where + ` ` + order
	if pageSize > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, pageSize, page*pageSize)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]registros.Registro, 0)
	total := 0
	for rows.Next() {
		reg, t, err := scanRegistroWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, reg)
		total = t
	}
	return out, total, rows.Err()
}

func (r *RegistrosRepo) ListByOriginal(ctx context.Context, kind registros.Kind, originalID string, sel listing.Selection) ([]registros.Registro, error) {
	where, args, err := registroWhere(kind, sel, originalID)
	if err != nil {
		return nil, err
	}
	order, err := registroOrder(sel.Sort)
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, `SELECT `+registroColumns+` FROM registros `+where+` `+order, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]registros.Registro, 0)
	for rows.Next() {
		reg, _, err := scanRegistroWithTotal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *RegistrosRepo) ExistsDuplicate(ctx context.Context, kind registros.Kind, field, value, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM registros
			WHERE kind = $1
			  AND estado IN ('Publicado', 'Eliminado')
			  AND payload->>$2 = $3
			  AND id <> $4
		)
	`, string(kind), field, value, excludeID).Scan(&exists)
	return exists, err
}

// registroWhere arma el WHERE del filtro de visibilidad. Los campos de
// control viven en columnas; el resto se busca en el payload JSONB.
func registroWhere(kind registros.Kind, sel listing.Selection, originalID string) (string, []any, error) {
	conds := []string{"kind = $1"}
	args := []any{string(kind)}

	if originalID != "" {
		args = append(args, originalID)
		conds = append(conds, fmt.Sprintf("original_id = $%d", len(args)))
	}

	if len(sel.States) > 0 {
		ph := make([]string, 0, len(sel.States))
		for _, st := range sel.States {
			args = append(args, st)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		conds = append(conds, "estado IN ("+strings.Join(ph, ", ")+")")
	}

	if sel.Match != nil {
		expr, err := registroField(sel.Match.Field)
		if err != nil {
			return "", nil, err
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
		conds = append(conds, fmt.Sprintf("payload->>'componenteId' = $%d", len(args)))
	}
	if sel.QuarterID != "" {
		args = append(args, sel.QuarterID)
		conds = append(conds, fmt.Sprintf("payload->>'quarterId' = $%d", len(args)))
	}

	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

func registroOrder(s listing.SortOrder) (string, error) {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}

	// La versión se ordena numérica por segmento, no como texto.
	if s.Field == "version" {
		return "ORDER BY string_to_array(version, '.')::int[] " + dir, nil
	}

	expr, err := registroField(s.Field)
	if err != nil {
		return "", err
	}
	return "ORDER BY " + expr + " " + dir, nil
}

func registroField(field string) (string, error) {
	switch field {
	case "estado":
		return "estado", nil
	case "version":
		return "version", nil
	case "originalId":
		return "original_id", nil
	case "editorId":
		return "editor_id", nil
	case "fechaEdicion":
		return "fecha_edicion", nil
	default:
		name, err := safeIdent(field)
		if err != nil {
			return "", err
		}
		return "payload->>'" + name + "'", nil
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistro(row rowScanner) (registros.Registro, error) {
	var (
		reg     registros.Registro
		kind    string
		estado  string
		payload []byte

		fechaRevision    sql.NullTime
		fechaEliminacion sql.NullTime
	)
	if err := row.Scan(
		&reg.ID,
		&kind,
		&payload,
		&estado,
		&reg.OriginalID,
		&reg.Version,
		&reg.UltimaRevision,
		&reg.EditorID,
		&reg.FechaEdicion,
		&reg.RevisorID,
		&fechaRevision,
		&reg.EliminadorID,
		&fechaEliminacion,
		&reg.Observaciones,
	); err != nil {
		if err == sql.ErrNoRows {
			return registros.Registro{}, ErrNotFound
		}
		return registros.Registro{}, err
	}

	reg.Kind = registros.Kind(kind)
	reg.Estado = registros.Estado(estado)
	reg.FechaRevision = fromNullTime(fechaRevision)
	reg.FechaEliminacion = fromNullTime(fechaEliminacion)
	if err := json.Unmarshal(payload, &reg.Payload); err != nil {
		return registros.Registro{}, err
	}
	return reg, nil
}

func scanRegistroWithTotal(rows *sql.Rows) (registros.Registro, int, error) {
	var (
		reg     registros.Registro
		kind    string
		estado  string
		payload []byte
		total   int

		fechaRevision    sql.NullTime
		fechaEliminacion sql.NullTime
	)

	dest := []any{
		&reg.ID,
		&kind,
		&payload,
		&estado,
		&reg.OriginalID,
		&reg.Version,
		&reg.UltimaRevision,
		&reg.EditorID,
		&reg.FechaEdicion,
		&reg.RevisorID,
		&fechaRevision,
		&reg.EliminadorID,
		&fechaEliminacion,
		&reg.Observaciones,
	}
	cols, err := rows.Columns()
	if err != nil {
		return registros.Registro{}, 0, err
	}
	if len(cols) == len(dest)+1 {
		dest = append(dest, &total)
	}
	if err := rows.Scan(dest...); err != nil {
		return registros.Registro{}, 0, err
	}

	reg.Kind = registros.Kind(kind)
	reg.Estado = registros.Estado(estado)
	reg.FechaRevision = fromNullTime(fechaRevision)
	reg.FechaEliminacion = fromNullTime(fechaEliminacion)
	if err := json.Unmarshal(payload, &reg.Payload); err != nil {
		return registros.Registro{}, 0, err
	}
	return reg, total, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
