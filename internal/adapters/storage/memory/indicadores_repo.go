package memory

import (
	"context"
	"sort"
	"sync"

	"program-monitoring-api/internal/domain/indicadores"
)

type progresoKey struct {
	indicadorID string
	year        string
	quarter     string
}

type indicadoresRepo struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	rows map[progresoKey]indicadores.ProgresoIndicador
}

func NewIndicadoresRepo() indicadores.Repository {
	return &indicadoresRepo{
		rows: make(map[progresoKey]indicadores.ProgresoIndicador),
	}
}

func (r *indicadoresRepo) Get(ctx context.Context, indicadorID, year, quarter string) (indicadores.ProgresoIndicador, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.rows[progresoKey{indicadorID: indicadorID, year: year, quarter: quarter}]
	if !ok {
		return indicadores.ProgresoIndicador{}, ErrNotFound
	}
	return p, nil
}

func (r *indicadoresRepo) Upsert(ctx context.Context, p indicadores.ProgresoIndicador) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[progresoKey{indicadorID: p.IndicadorID, year: p.Year, quarter: p.Quarter}] = p
	return nil
}

func (r *indicadoresRepo) ListByIndicador(ctx context.Context, indicadorID string) ([]indicadores.ProgresoIndicador, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]indicadores.ProgresoIndicador, 0)
	for key, p := range r.rows {
		if key.indicadorID == indicadorID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Quarter < out[j].Quarter
	})
	return out, nil
}

func (r *indicadoresRepo) AddProgreso(ctx context.Context, indicadorID, year, quarter string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := progresoKey{indicadorID: indicadorID, year: year, quarter: quarter}
	p, ok := r.rows[key]
	if !ok {
		return ErrNotFound
	}
	p.Progreso += delta
	r.rows[key] = p
	return nil
}

// InTx serializa las transacciones con un mutex aparte; sin rollback real.
func (r *indicadoresRepo) InTx(ctx context.Context, fn func(indicadores.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}
