package registros

import (
	"context"

	"program-monitoring-api/internal/listing"
)

type Repository interface {
	Create(ctx context.Context, r Registro) error
	GetByID(ctx context.Context, kind Kind, id string) (Registro, error)
	Update(ctx context.Context, r Registro) error

	// List aplica el filtro de visibilidad con paginación; devuelve la página
	// y el total de filas que matchean.
	List(ctx context.Context, kind Kind, sel listing.Selection, page, pageSize int) ([]Registro, int, error)

	// ListByOriginal devuelve las filas del linaje cuyo originalId es el dado,
	// filtradas y ordenadas por la selección.
	ListByOriginal(ctx context.Context, kind Kind, originalID string, sel listing.Selection) ([]Registro, error)

	// ExistsDuplicate busca otra fila del mismo kind en estado
	// Publicado/Eliminado con el mismo valor en field, excluyendo excludeID.
	ExistsDuplicate(ctx context.Context, kind Kind, field, value, excludeID string) (bool, error)

	// InTx ejecuta fn como unidad read-modify-write. Las secuencias multi-paso
	// del ledger (review, submit con aprobación) corren siempre adentro.
	InTx(ctx context.Context, fn func(Repository) error) error
}
