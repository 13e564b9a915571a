package eventos

import (
	"context"

	"program-monitoring-api/internal/listing"
)

type Repository interface {
	Create(ctx context.Context, e Evento) error
	GetByID(ctx context.Context, id string) (Evento, error)
	Update(ctx context.Context, e Evento) error

	// List aplica el filtro de visibilidad (colas de digitación/consolidado)
	// con paginación.
	List(ctx context.Context, sel listing.Selection, page, pageSize int) ([]Evento, int, error)

	// ListTablero devuelve los eventos de un componente en un quarter.
	ListTablero(ctx context.Context, quarterID, componenteID string) ([]Evento, error)

	// Refs: listas (sectores/niveles/componentes/colaboradores) que se
	// reemplazan completas en cada carga.
	ReplaceRefs(ctx context.Context, eventoID string, kind RefKind, ids []string) error
	ListRefs(ctx context.Context, eventoID string, kind RefKind) ([]string, error)

	ReplaceParticipantes(ctx context.Context, eventoID string, participanteIDs []string) error
	ListParticipantes(ctx context.Context, eventoID string) ([]Participante, error)
	UpdateParticipante(ctx context.Context, p Participante) error

	AddLogro(ctx context.Context, l LogroParticipante) error
	ListLogros(ctx context.Context, participanteID string) ([]LogroParticipante, error)

	// InTx agrupa las secuencias multi-paso (consolidar escribe participantes,
	// logros, progresos y el evento en una sola unidad).
	InTx(ctx context.Context, fn func(Repository) error) error
}
