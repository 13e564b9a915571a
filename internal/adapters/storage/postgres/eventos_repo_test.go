package postgres

import (
	"testing"

	"program-monitoring-api/internal/domain/eventos"
)

// Create y Update comparten eventoColumnList; si la lista y eventoArgs se
// desalinean, cualquier campo nuevo del modelo se perdería en silencio.
func TestEventoColumnParity(t *testing.T) {
	args := eventoArgs(eventos.Evento{})
	if len(args) != len(eventoColumnList) {
		t.Fatalf("eventoArgs carries %d values for %d columns", len(args), len(eventoColumnList))
	}

	seen := map[string]bool{}
	for _, col := range eventoColumnList {
		if col == "" {
			t.Fatal("empty column name in eventoColumns")
		}
		if seen[col] {
			t.Fatalf("duplicate column %q", col)
		}
		seen[col] = true
	}

	// El responsable de creación cambia al editar el evento: tiene que
	// viajar en el UPDATE igual que en el INSERT.
	for _, col := range []string{"id", "responsable_creacion_id", "estado_consolidado", "updated_at"} {
		if !seen[col] {
			t.Fatalf("column %q missing from eventoColumns", col)
		}
	}
}
