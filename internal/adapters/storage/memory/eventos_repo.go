package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"program-monitoring-api/internal/domain/eventos"
	"program-monitoring-api/internal/listing"
)

type refKey struct {
	eventoID string
	kind     eventos.RefKind
}

type participanteKey struct {
	eventoID       string
	participanteID string
}

type eventosRepo struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	byID          map[string]eventos.Evento
	refs          map[refKey][]string
	participantes map[participanteKey]eventos.Participante
	logros        []eventos.LogroParticipante
}

func NewEventosRepo() eventos.Repository {
	return &eventosRepo{
		byID:          make(map[string]eventos.Evento),
		refs:          make(map[refKey][]string),
		participantes: make(map[participanteKey]eventos.Participante),
	}
}

func (r *eventosRepo) Create(ctx context.Context, e eventos.Evento) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("evento id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("evento already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventosRepo) Update(ctx context.Context, e eventos.Evento) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; !exists {
		return ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventosRepo) GetByID(ctx context.Context, id string) (eventos.Evento, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return eventos.Evento{}, ErrNotFound
	}
	return e, nil
}

func (r *eventosRepo) List(ctx context.Context, sel listing.Selection, page, pageSize int) ([]eventos.Evento, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]eventos.Evento, 0)
	for _, e := range r.byID {
		if sel.Matches(e.Fields()) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return sel.Less(out[i].Fields(), out[j].Fields())
	})

	total := len(out)
	if pageSize > 0 {
		start := page * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *eventosRepo) ListTablero(ctx context.Context, quarterID, componenteID string) ([]eventos.Evento, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]eventos.Evento, 0)
	for _, e := range r.byID {
		if e.QuarterID == quarterID && e.ComponenteEncargadoID == componenteID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FechaCreacion.Before(out[j].FechaCreacion)
	})
	return out, nil
}

func (r *eventosRepo) ReplaceRefs(ctx context.Context, eventoID string, kind eventos.RefKind, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refs[refKey{eventoID: eventoID, kind: kind}] = append([]string(nil), ids...)
	return nil
}

func (r *eventosRepo) ListRefs(ctx context.Context, eventoID string, kind eventos.RefKind) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.refs[refKey{eventoID: eventoID, kind: kind}]...), nil
}

func (r *eventosRepo) ReplaceParticipantes(ctx context.Context, eventoID string, participanteIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.participantes {
		if key.eventoID == eventoID {
			delete(r.participantes, key)
		}
	}
	for _, pid := range participanteIDs {
		key := participanteKey{eventoID: eventoID, participanteID: pid}
		r.participantes[key] = eventos.Participante{EventoID: eventoID, ParticipanteID: pid}
	}
	return nil
}

func (r *eventosRepo) ListParticipantes(ctx context.Context, eventoID string) ([]eventos.Participante, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]eventos.Participante, 0)
	for key, p := range r.participantes {
		if key.eventoID == eventoID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ParticipanteID < out[j].ParticipanteID
	})
	return out, nil
}

func (r *eventosRepo) UpdateParticipante(ctx context.Context, p eventos.Participante) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := participanteKey{eventoID: p.EventoID, participanteID: p.ParticipanteID}
	if _, exists := r.participantes[key]; !exists {
		return ErrNotFound
	}
	r.participantes[key] = p
	return nil
}

func (r *eventosRepo) AddLogro(ctx context.Context, l eventos.LogroParticipante) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logros = append(r.logros, l)
	return nil
}

func (r *eventosRepo) ListLogros(ctx context.Context, participanteID string) ([]eventos.LogroParticipante, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]eventos.LogroParticipante, 0)
	for _, l := range r.logros {
		if l.ParticipanteID == participanteID {
			out = append(out, l)
		}
	}
	return out, nil
}

// InTx serializa las transacciones con un mutex aparte; sin rollback real,
// igual que el resto del adaptador en memoria.
func (r *eventosRepo) InTx(ctx context.Context, fn func(eventos.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}
