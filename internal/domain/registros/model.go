package registros

import "time"

// Payload son los campos propios de la entidad (nombre, código, geocódigo,
// contactos...). El ledger no los interpreta salvo para unicidad y filtros.
type Payload map[string]any

func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Str devuelve el campo como string ("" si no existe o no es string).
func (p Payload) Str(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Registro es una fila del ledger de revisiones. Las revisiones son
// append-only: una vez creadas solo cambian sus propiedades de control
// (estado, revisor). La única fila que se actualiza en sitio es la Publicada.
type Registro struct {
	ID      string
	Kind    Kind
	Payload Payload

	Estado Estado

	// OriginalID apunta al registro Publicado del linaje. Vacío mientras el
	// linaje no tiene publicación; en el Publicado apunta a sí mismo.
	OriginalID string

	Version        string
	UltimaRevision string

	EditorID     string
	FechaEdicion time.Time

	RevisorID     string
	FechaRevision *time.Time

	EliminadorID     string
	FechaEliminacion *time.Time

	Observaciones string
}

// EsRevision indica si la fila es parte del historial (no canónica).
func (r Registro) EsRevision() bool {
	return r.Estado != EstadoPublicado && r.Estado != EstadoEliminado
}

// Fields aplana el registro para el filtro de visibilidad: propiedades de
// control + payload como strings.
func (r Registro) Fields() map[string]string {
	out := map[string]string{
		"estado":       string(r.Estado),
		"version":      r.Version,
		"originalId":   r.OriginalID,
		"editorId":     r.EditorID,
		"fechaEdicion": r.FechaEdicion.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range r.Payload {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
