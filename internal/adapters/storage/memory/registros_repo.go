package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"program-monitoring-api/internal/domain/registros"
	"program-monitoring-api/internal/listing"
)

var (
	ErrNotFound = errors.New("not found")
)

type registroKey struct {
	kind registros.Kind
	id   string
}

type registrosRepo struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	byID map[registroKey]registros.Registro
}

func NewRegistrosRepo() registros.Repository {
	return &registrosRepo{
		byID: make(map[registroKey]registros.Registro),
	}
}

func (r *registrosRepo) Create(ctx context.Context, reg registros.Registro) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(reg.ID) == "" {
		return errors.New("registro id required")
	}
	key := registroKey{kind: reg.Kind, id: reg.ID}
	if _, exists := r.byID[key]; exists {
		return errors.New("registro already exists")
	}
	r.byID[key] = reg
	return nil
}

func (r *registrosRepo) Update(ctx context.Context, reg registros.Registro) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registroKey{kind: reg.Kind, id: reg.ID}
	if _, exists := r.byID[key]; !exists {
		return ErrNotFound
	}
	r.byID[key] = reg
	return nil
}

func (r *registrosRepo) GetByID(ctx context.Context, kind registros.Kind, id string) (registros.Registro, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byID[registroKey{kind: kind, id: id}]
	if !ok {
		return registros.Registro{}, ErrNotFound
	}
	return reg, nil
}

func (r *registrosRepo) List(ctx context.Context, kind registros.Kind, sel listing.Selection, page, pageSize int) ([]registros.Registro, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.selectLocked(kind, sel, "")
	total := len(rows)

	if pageSize > 0 {
		start := page * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		rows = rows[start:end]
	}
	return rows, total, nil
}

func (r *registrosRepo) ListByOriginal(ctx context.Context, kind registros.Kind, originalID string, sel listing.Selection) ([]registros.Registro, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.selectLocked(kind, sel, originalID), nil
}

func (r *registrosRepo) ExistsDuplicate(ctx context.Context, kind registros.Kind, field, value, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for key, reg := range r.byID {
		if key.kind != kind || key.id == excludeID {
			continue
		}
		estado := string(reg.Estado)
		if estado != string(registros.EstadoPublicado) && estado != string(registros.EstadoEliminado) {
			continue
		}
		if reg.Payload.Str(field) == value {
			return true, nil
		}
	}
	return false, nil
}

// InTx serializa las transacciones con un mutex aparte; el adaptador en
// memoria es solo para dev y tests, sin rollback real.
func (r *registrosRepo) InTx(ctx context.Context, fn func(registros.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

func (r *registrosRepo) selectLocked(kind registros.Kind, sel listing.Selection, originalID string) []registros.Registro {
	out := make([]registros.Registro, 0)
	for key, reg := range r.byID {
		if key.kind != kind {
			continue
		}
		if originalID != "" && reg.OriginalID != originalID {
			continue
		}
		if !sel.Matches(reg.Fields()) {
			continue
		}
		out = append(out, reg)
	}

	// El orden por versión es numérico por segmento, no lexicográfico.
	if sel.Sort.Field == "version" {
		sort.Slice(out, func(i, j int) bool {
			cmp := registros.CompareVersions(out[i].Version, out[j].Version)
			if sel.Sort.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
		return out
	}

	sort.Slice(out, func(i, j int) bool {
		return sel.Less(out[i].Fields(), out[j].Fields())
	})
	return out
}
