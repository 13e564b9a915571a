package registros

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"program-monitoring-api/internal/listing"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrConflicto      = errors.New("duplicate value")
	ErrEstadoInvalido = errors.New("invalid state")
)

// Service implementa el protocolo borrador -> revisión -> publicación para
// todos los tipos de registro maestro.
type Service struct {
	repo  Repository
	kinds map[Kind]KindSpec
	now   func() time.Time
}

func NewService(repo Repository, kinds map[Kind]KindSpec) *Service {
	if kinds == nil {
		kinds = DefaultKinds()
	}
	return &Service{
		repo:  repo,
		kinds: kinds,
		now:   time.Now,
	}
}

func (s *Service) spec(kind Kind) (KindSpec, error) {
	spec, ok := s.kinds[kind]
	if !ok {
		return KindSpec{}, ErrInvalidInput
	}
	return spec, nil
}

// checkUniques valida las claves únicas del kind contra el scope
// Publicado/Eliminado. Las revisiones pueden duplicar libremente.
func (s *Service) checkUniques(ctx context.Context, repo Repository, kind Kind, payload Payload, excludeID string) error {
	spec, err := s.spec(kind)
	if err != nil {
		return err
	}
	for _, field := range spec.UniqueFields {
		value := strings.TrimSpace(payload.Str(field))
		if value == "" {
			continue
		}
		dup, err := repo.ExistsDuplicate(ctx, kind, field, value, excludeID)
		if err != nil {
			return err
		}
		if dup {
			return ErrConflicto
		}
	}
	return nil
}

// CreateDraft inserta el primer borrador de un linaje (versión 0.1).
// Con aprobar se publica de una: se crea la fila Publicada 1.0, ambas quedan
// enlazadas a ella por originalId y el borrador pasa a Validado.
func (s *Service) CreateDraft(ctx context.Context, kind Kind, payload Payload, editorID string, aprobar bool) (Registro, error) {
	if strings.TrimSpace(editorID) == "" || len(payload) == 0 {
		return Registro{}, ErrInvalidInput
	}
	if _, err := s.spec(kind); err != nil {
		return Registro{}, err
	}

	now := s.now()

	draft := Registro{
		ID:             uuid.NewString(),
		Kind:           kind,
		Payload:        payload.Clone(),
		Estado:         EstadoBorrador,
		Version:        "0.1",
		UltimaRevision: "0.1",
		EditorID:       editorID,
		FechaEdicion:   now,
	}

	err := s.repo.InTx(ctx, func(repo Repository) error {
		if err := s.checkUniques(ctx, repo, kind, payload, ""); err != nil {
			return err
		}
		if err := repo.Create(ctx, draft); err != nil {
			return err
		}
		if !aprobar {
			return nil
		}

		pub := Registro{
			ID:             uuid.NewString(),
			Kind:           kind,
			Payload:        payload.Clone(),
			Estado:         EstadoPublicado,
			Version:        "1.0",
			UltimaRevision: "1.0",
			EditorID:       editorID,
			FechaEdicion:   now,
			RevisorID:      editorID,
			FechaRevision:  &now,
		}
		pub.OriginalID = pub.ID
		if err := repo.Create(ctx, pub); err != nil {
			return err
		}

		draft.OriginalID = pub.ID
		draft.Estado = EstadoValidado
		draft.RevisorID = editorID
		draft.FechaRevision = &now
		return repo.Update(ctx, draft)
	})
	if err != nil {
		return Registro{}, err
	}
	return draft, nil
}

// SubmitRevision agrega una revisión al linaje del registro indicado,
// subiendo la versión desde la última revisión conocida. Con aprobar la
// publicación se actualiza (o se crea) en la misma llamada.
func (s *Service) SubmitRevision(ctx context.Context, kind Kind, id string, payload Payload, editorID string, aprobar bool) (Registro, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(editorID) == "" || len(payload) == 0 {
		return Registro{}, ErrInvalidInput
	}

	now := s.now()
	var revision Registro

	err := s.repo.InTx(ctx, func(repo Repository) error {
		target, err := repo.GetByID(ctx, kind, id)
		if err != nil {
			return ErrNotFound
		}

		// Resolver la cabeza del linaje: la publicación, o el primer borrador
		// si el linaje nunca publicó. El caller puede mandar el id de la
		// cabeza o de cualquier revisión.
		head := target
		if target.Estado != EstadoPublicado && target.Estado != EstadoEliminado && target.OriginalID != "" {
			p, err := repo.GetByID(ctx, kind, target.OriginalID)
			if err != nil {
				return ErrNotFound
			}
			head = p
		}
		var pub *Registro
		if head.Estado == EstadoPublicado || head.Estado == EstadoEliminado {
			pub = &head
		}

		if err := s.checkUniques(ctx, repo, kind, payload, pubID(pub)); err != nil {
			return err
		}

		// Toda revisión cuelga de la cabeza, publicada o no; así la próxima
		// aprobación siempre encuentra el linaje entero. La cabeza lleva la
		// última revisión emitida.
		revision = Registro{
			ID:           uuid.NewString(),
			Kind:         kind,
			Payload:      payload.Clone(),
			Estado:       EstadoEnRevision,
			OriginalID:   head.ID,
			Version:      NextVersion(head.UltimaRevision, false),
			EditorID:     editorID,
			FechaEdicion: now,
		}
		revision.UltimaRevision = revision.Version
		if aprobar {
			revision.Estado = EstadoValidado
			revision.RevisorID = editorID
			revision.FechaRevision = &now
		}
		if err := repo.Create(ctx, revision); err != nil {
			return err
		}

		if aprobar {
			if pub != nil {
				return s.propagate(ctx, repo, pub, revision, editorID, now)
			}
			// Linaje sin publicación: aprobar crea la 1.0.
			_, err := s.publishNew(ctx, repo, &revision, editorID, now)
			return err
		}

		head.UltimaRevision = NextVersion(head.UltimaRevision, false)
		return repo.Update(ctx, head)
	})
	if err != nil {
		return Registro{}, err
	}
	return revision, nil
}

// Review aprueba o rechaza una revisión pendiente. Aprobarla propaga el
// payload a la publicación del linaje (creándola si el linaje nunca publicó).
func (s *Service) Review(ctx context.Context, kind Kind, revisionID string, aprobado bool, revisorID, observaciones string) (Registro, error) {
	if strings.TrimSpace(revisionID) == "" || strings.TrimSpace(revisorID) == "" {
		return Registro{}, ErrInvalidInput
	}

	now := s.now()
	var out Registro

	err := s.repo.InTx(ctx, func(repo Repository) error {
		rev, err := repo.GetByID(ctx, kind, revisionID)
		if err != nil {
			return ErrNotFound
		}

		switch rev.Estado {
		case EstadoBorrador, EstadoEnRevision:
		default:
			// Revisión ya resuelta (o fila publicada): no hay nada que revisar.
			return ErrEstadoInvalido
		}

		var pub *Registro
		if rev.OriginalID != "" {
			p, err := repo.GetByID(ctx, kind, rev.OriginalID)
			switch {
			case err != nil:
				// Referencia rota: solo se tolera en el primer borrador sin publicar.
				if rev.Version != "0.1" {
					return ErrNotFound
				}
			case p.Estado == EstadoPublicado || p.Estado == EstadoEliminado:
				pub = &p
			default:
				// La referencia apunta al primer borrador: linaje sin publicar.
			}
		}

		if !aprobado {
			rev.Estado = EstadoRechazado
			rev.RevisorID = revisorID
			rev.FechaRevision = &now
			rev.Observaciones = observaciones
			out = rev
			return repo.Update(ctx, rev)
		}

		rev.Estado = EstadoValidado
		rev.RevisorID = revisorID
		rev.FechaRevision = &now
		rev.Observaciones = observaciones
		if err := repo.Update(ctx, rev); err != nil {
			return err
		}

		if pub != nil {
			if err := s.propagate(ctx, repo, pub, rev, revisorID, now); err != nil {
				return err
			}
		} else {
			created, err := s.publishNew(ctx, repo, &rev, revisorID, now)
			if err != nil {
				return err
			}
			rev.OriginalID = created.ID
		}
		out = rev
		return nil
	})
	if err != nil {
		return Registro{}, err
	}
	return out, nil
}

// propagate sobreescribe la publicación con el payload de la revisión y sube
// la versión mayor.
func (s *Service) propagate(ctx context.Context, repo Repository, pub *Registro, rev Registro, revisorID string, now time.Time) error {
	pub.Payload = rev.Payload.Clone()
	next := NextVersion(pub.Version, true)
	pub.Version = next
	pub.UltimaRevision = next
	pub.EditorID = rev.EditorID
	pub.FechaEdicion = rev.FechaEdicion
	pub.RevisorID = revisorID
	pub.FechaRevision = &now
	pub.Observaciones = ""
	return repo.Update(ctx, *pub)
}

// publishNew crea la publicación 1.0 de un linaje que nunca publicó y
// re-enlaza el linaje completo a ella: la revisión aprobada, la cabeza y
// cualquier otra revisión que colgaba de la cabeza. Sin ese re-enlace una
// segunda aprobación volvería a publicar y el linaje tendría dos Publicados.
func (s *Service) publishNew(ctx context.Context, repo Repository, rev *Registro, revisorID string, now time.Time) (Registro, error) {
	pub := Registro{
		ID:             uuid.NewString(),
		Kind:           rev.Kind,
		Payload:        rev.Payload.Clone(),
		Estado:         EstadoPublicado,
		Version:        "1.0",
		UltimaRevision: "1.0",
		EditorID:       revisorID,
		FechaEdicion:   rev.FechaEdicion,
		RevisorID:      revisorID,
		FechaRevision:  &now,
	}
	pub.OriginalID = pub.ID
	if err := repo.Create(ctx, pub); err != nil {
		return Registro{}, err
	}

	headID := rev.OriginalID
	rev.OriginalID = pub.ID
	if err := repo.Update(ctx, *rev); err != nil {
		return Registro{}, err
	}

	// La cabeza era el primer borrador, salvo que la revisión aprobada sea
	// ella misma (0.1 sin originalId).
	lineageID := headID
	if lineageID == "" {
		lineageID = rev.ID
	} else {
		head, err := repo.GetByID(ctx, rev.Kind, headID)
		if err != nil {
			return Registro{}, err
		}
		head.OriginalID = pub.ID
		if err := repo.Update(ctx, head); err != nil {
			return Registro{}, err
		}
	}

	siblings, err := repo.ListByOriginal(ctx, rev.Kind, lineageID, lineageSelection())
	if err != nil {
		return Registro{}, err
	}
	for _, sib := range siblings {
		if sib.ID == rev.ID {
			continue
		}
		sib.OriginalID = pub.ID
		if err := repo.Update(ctx, sib); err != nil {
			return Registro{}, err
		}
	}
	return pub, nil
}

// lineageSelection abarca todas las filas no publicadas de un linaje.
func lineageSelection() listing.Selection {
	return listing.Selection{
		StateField: "estado",
		States: []string{
			string(EstadoBorrador),
			string(EstadoEnRevision),
			string(EstadoValidado),
			string(EstadoRechazado),
		},
		Sort: listing.SortOrder{Field: "version"},
	}
}

// ToggleEliminado alterna una publicación entre Publicado y Eliminado.
// Es su propio inverso: aplicado dos veces limpia los metadatos de borrado.
func (s *Service) ToggleEliminado(ctx context.Context, kind Kind, id, eliminadorID, observaciones string) (Registro, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(eliminadorID) == "" {
		return Registro{}, ErrInvalidInput
	}

	now := s.now()
	var out Registro

	err := s.repo.InTx(ctx, func(repo Repository) error {
		rec, err := repo.GetByID(ctx, kind, id)
		if err != nil {
			return ErrNotFound
		}

		switch rec.Estado {
		case EstadoPublicado:
			rec.Estado = EstadoEliminado
			rec.EliminadorID = eliminadorID
			rec.FechaEliminacion = &now
			rec.Observaciones = observaciones
		case EstadoEliminado:
			rec.Estado = EstadoPublicado
			rec.EliminadorID = ""
			rec.FechaEliminacion = nil
			rec.Observaciones = ""
		default:
			// Solo la fila canónica participa del ciclo de borrado.
			return ErrNotFound
		}

		out = rec
		return repo.Update(ctx, rec)
	})
	if err != nil {
		return Registro{}, err
	}
	return out, nil
}

// ListRevisiones devuelve el historial de un linaje, versión más alta
// primero. Los borradores también son revisiones aunque el view underReview
// no los incluya.
func (s *Service) ListRevisiones(ctx context.Context, kind Kind, originalID string) ([]Registro, error) {
	if strings.TrimSpace(originalID) == "" {
		return nil, ErrInvalidInput
	}

	sel, err := listing.Build(listing.Params{
		View: listing.ViewUnderReview,
		Sort: &listing.SortOrder{Field: "version", Desc: true},
	})
	if err != nil {
		return nil, err
	}
	sel.States = append(sel.States, string(EstadoBorrador))

	return s.repo.ListByOriginal(ctx, kind, originalID, sel)
}

// ListPaged lista registros del kind según el view solicitado.
func (s *Service) ListPaged(ctx context.Context, kind Kind, params listing.Params, page, pageSize int) ([]Registro, int, error) {
	spec, err := s.spec(kind)
	if err != nil {
		return nil, 0, err
	}
	if params.DefaultField == "" {
		params.DefaultField = spec.DefaultSort
	}
	sel, err := listing.Build(params)
	if err != nil {
		return nil, 0, ErrInvalidInput
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if page < 0 {
		page = 0
	}
	return s.repo.List(ctx, kind, sel, page, pageSize)
}

func (s *Service) GetByID(ctx context.Context, kind Kind, id string) (Registro, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Registro{}, ErrInvalidInput
	}
	rec, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return Registro{}, ErrNotFound
	}
	return rec, nil
}

// IncrementCounter suma 1 a un campo numérico del payload de un registro,
// sin pasar por el flujo de revisiones. Lo usa el módulo de eventos para el
// contador de eventos realizados de la tarea.
func (s *Service) IncrementCounter(ctx context.Context, kind Kind, id, field string) error {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(field) == "" {
		return ErrInvalidInput
	}

	return s.repo.InTx(ctx, func(repo Repository) error {
		rec, err := repo.GetByID(ctx, kind, id)
		if err != nil {
			return ErrNotFound
		}
		rec.Payload = rec.Payload.Clone()
		rec.Payload[field] = payloadInt(rec.Payload[field]) + 1
		return repo.Update(ctx, rec)
	})
}

// payloadInt normaliza el valor numérico del payload (json decodifica a
// float64).
func payloadInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func pubID(pub *Registro) string {
	if pub == nil {
		return ""
	}
	return pub.ID
}
