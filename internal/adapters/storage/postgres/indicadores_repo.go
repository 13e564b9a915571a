package postgres

import (
	"context"
	"database/sql"

	"program-monitoring-api/internal/domain/indicadores"
)

type IndicadoresRepo struct {
	db      *sql.DB
	q       querier
	locking bool
}

func NewIndicadoresRepo(db *sql.DB) *IndicadoresRepo {
	return &IndicadoresRepo{db: db, q: db}
}

func (r *IndicadoresRepo) InTx(ctx context.Context, fn func(indicadores.Repository) error) error {
	if r.locking {
		return fn(r)
	}
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&IndicadoresRepo{db: r.db, q: tx, locking: true})
	})
}

func (r *IndicadoresRepo) Get(ctx context.Context, indicadorID, year, quarter string) (indicadores.ProgresoIndicador, error) {
	query := `
		SELECT indicador_id, year, quarter, meta, progreso
		FROM progresos_indicadores
		WHERE indicador_id = $1 AND year = $2 AND quarter = $3
	`
	if r.locking {
		query += ` FOR UPDATE`
	}

	var p indicadores.ProgresoIndicador
	err := r.q.QueryRowContext(ctx, query, indicadorID, year, quarter).
		Scan(&p.IndicadorID, &p.Year, &p.Quarter, &p.Meta, &p.Progreso)
	if err == sql.ErrNoRows {
		return indicadores.ProgresoIndicador{}, ErrNotFound
	}
	return p, err
}

func (r *IndicadoresRepo) Upsert(ctx context.Context, p indicadores.ProgresoIndicador) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO progresos_indicadores (indicador_id, year, quarter, meta, progreso)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (indicador_id, year, quarter)
		DO UPDATE SET meta = EXCLUDED.meta
	`, p.IndicadorID, p.Year, p.Quarter, p.Meta, p.Progreso)
	return err
}

func (r *IndicadoresRepo) ListByIndicador(ctx context.Context, indicadorID string) ([]indicadores.ProgresoIndicador, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT indicador_id, year, quarter, meta, progreso
		FROM progresos_indicadores
		WHERE indicador_id = $1
		ORDER BY year ASC, quarter ASC
	`, indicadorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]indicadores.ProgresoIndicador, 0)
	for rows.Next() {
		var p indicadores.ProgresoIndicador
		if err := rows.Scan(&p.IndicadorID, &p.Year, &p.Quarter, &p.Meta, &p.Progreso); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *IndicadoresRepo) AddProgreso(ctx context.Context, indicadorID, year, quarter string, delta int) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE progresos_indicadores
		SET progreso = progreso + $4
		WHERE indicador_id = $1 AND year = $2 AND quarter = $3
	`, indicadorID, year, quarter, delta)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
