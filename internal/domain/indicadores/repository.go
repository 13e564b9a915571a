package indicadores

import "context"

// Repository persiste el ledger de progresos. AddProgreso debe fallar si la
// fila no existe; nunca crea contadores de forma implícita.
type Repository interface {
	Get(ctx context.Context, indicadorID, year, quarter string) (ProgresoIndicador, error)
	Upsert(ctx context.Context, p ProgresoIndicador) error
	ListByIndicador(ctx context.Context, indicadorID string) ([]ProgresoIndicador, error)
	AddProgreso(ctx context.Context, indicadorID, year, quarter string, delta int) error

	// InTx ejecuta fn dentro de una transacción; los errores revierten todo.
	InTx(ctx context.Context, fn func(Repository) error) error
}
