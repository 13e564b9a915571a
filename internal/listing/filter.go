// Package listing construye el filtro de visibilidad que comparten todos los
// listados del sistema: dado un "view" solicitado devuelve qué estados se
// pueden ver y en qué orden. Es una función pura sobre sus entradas, sin
// acceso a persistencia, para que los repos (memoria o SQL) la interpreten
// cada uno a su manera.
package listing

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidParams = errors.New("invalid listing params")

// View identifica el subconjunto de filas que el caller tiene permitido ver.
type View string

const (
	ViewPublished          View = "published"
	ViewUnderReview        View = "underReview"
	ViewIncludingRemoved   View = "includingRemoved"
	ViewDataEntryQueue     View = "dataEntryQueue"
	ViewConsolidationQueue View = "consolidationQueue"
)

type Operator string

const (
	OpContains Operator = "contains"
	OpIs       Operator = "is"
)

// Match es el filtro opcional de un solo campo que mandan las tablas del front.
type Match struct {
	Field    string
	Operator Operator
	Value    string
}

type SortOrder struct {
	Field string
	Desc  bool
}

// Params son las entradas del filtro. DefaultField es la columna ascendente
// que usa el módulo cuando no hay sort explícito ni view de revisiones.
type Params struct {
	View         View
	Match        *Match
	ComponenteID string
	QuarterID    string
	Sort         *SortOrder
	DefaultField string
}

// Selection es el resultado: campo de estado + estados visibles + scoping +
// orden. Los repos en memoria lo evalúan con Matches/Less; los repos SQL lo
// traducen a WHERE/ORDER BY.
type Selection struct {
	StateField   string
	States       []string
	Match        *Match
	ComponenteID string
	QuarterID    string
	Sort         SortOrder
}

const (
	fieldEstado            = "estado"
	fieldEstadoDigitacion  = "estadoDigitacion"
	fieldEstadoConsolidado = "estadoConsolidado"
	fieldFechaEdicion      = "fechaEdicion"
)

// Build mapea el view a estados concretos y resuelve la precedencia de orden:
// sort explícito > fechaEdicion DESC para revisiones > default ascendente.
func Build(p Params) (Selection, error) {
	sel := Selection{
		Match:        p.Match,
		ComponenteID: strings.TrimSpace(p.ComponenteID),
		QuarterID:    strings.TrimSpace(p.QuarterID),
	}

	switch p.View {
	case ViewPublished, "":
		sel.StateField = fieldEstado
		sel.States = []string{"Publicado"}
	case ViewUnderReview:
		sel.StateField = fieldEstado
		sel.States = []string{"En revisión", "Validado", "Rechazado"}
	case ViewIncludingRemoved:
		sel.StateField = fieldEstado
		sel.States = []string{"Publicado", "Eliminado"}
	case ViewDataEntryQueue:
		sel.StateField = fieldEstadoDigitacion
		sel.States = []string{"Pendiente", "En Curso", "Finalizado", "Rechazado"}
	case ViewConsolidationQueue:
		sel.StateField = fieldEstadoConsolidado
		sel.States = []string{"Pendiente", "Finalizado"}
	default:
		return Selection{}, ErrInvalidParams
	}

	if p.Match != nil {
		if strings.TrimSpace(p.Match.Field) == "" {
			return Selection{}, ErrInvalidParams
		}
		switch p.Match.Operator {
		case OpContains, OpIs:
		default:
			return Selection{}, ErrInvalidParams
		}
	}

	switch {
	case p.Sort != nil && strings.TrimSpace(p.Sort.Field) != "":
		sel.Sort = SortOrder{Field: strings.TrimSpace(p.Sort.Field), Desc: p.Sort.Desc}
	case p.View == ViewUnderReview:
		sel.Sort = SortOrder{Field: fieldFechaEdicion, Desc: true}
	default:
		field := strings.TrimSpace(p.DefaultField)
		if field == "" {
			return Selection{}, ErrInvalidParams
		}
		sel.Sort = SortOrder{Field: field}
	}

	return sel, nil
}

// Matches evalúa el predicado sobre una fila representada como campo→valor.
// Los ids de scoping solo aplican si la fila trae ese campo.
func (s Selection) Matches(fields map[string]string) bool {
	state := fields[s.StateField]
	ok := false
	for _, st := range s.States {
		if state == st {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}

	if s.ComponenteID != "" && fields["componenteId"] != s.ComponenteID {
		return false
	}
	if s.QuarterID != "" && fields["quarterId"] != s.QuarterID {
		return false
	}

	if s.Match != nil {
		got := fields[s.Match.Field]
		switch s.Match.Operator {
		case OpIs:
			if got != s.Match.Value {
				return false
			}
		case OpContains:
			if !contains(got, s.Match.Value) {
				return false
			}
		}
	}

	return true
}

// Less ordena dos filas según el sort de la selección.
func (s Selection) Less(a, b map[string]string) bool {
	av, bv := a[s.Sort.Field], b[s.Sort.Field]
	if s.Sort.Desc {
		return av > bv
	}
	return av < bv
}

// contains intenta el valor como regexp (comportamiento heredado del
// operador contains) y cae a substring case-insensitive si no compila.
func contains(haystack, pattern string) bool {
	if re, err := regexp.Compile(pattern); err == nil {
		return re.MatchString(haystack)
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(pattern))
}
