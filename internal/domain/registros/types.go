package registros

// Estado es el eje de revisión de un registro maestro.
type Estado string

const (
	EstadoBorrador   Estado = "Borrador"
	EstadoEnRevision Estado = "En revisión"
	EstadoValidado   Estado = "Validado"
	EstadoRechazado  Estado = "Rechazado"
	EstadoPublicado  Estado = "Publicado"
	EstadoEliminado  Estado = "Eliminado"
)

// Kind identifica el tipo de entidad maestra que vive en el ledger.
type Kind string

const (
	KindBeneficiario Kind = "beneficiario"
	KindOrganizacion Kind = "organizacion"
	KindCuenta       Kind = "cuenta"
	KindTarea        Kind = "tarea"
	KindQuarter      Kind = "quarter"
)

// KindSpec configura el comportamiento por tipo de entidad:
// campos de payload con unicidad dentro del scope activo-o-eliminado,
// y columna default de orden para listados.
type KindSpec struct {
	UniqueFields []string
	DefaultSort  string
}

// DefaultKinds registra los tipos que el sistema maneja hoy.
// Claves únicas según las validaciones del sistema de origen.
func DefaultKinds() map[Kind]KindSpec {
	return map[Kind]KindSpec{
		KindBeneficiario: {UniqueFields: []string{"dni"}, DefaultSort: "nombre"},
		KindOrganizacion: {UniqueFields: []string{"codigo"}, DefaultSort: "nombre"},
		KindCuenta:       {UniqueFields: []string{"nombre"}, DefaultSort: "nombre"},
		KindTarea:        {UniqueFields: []string{"nombre"}, DefaultSort: "nombre"},
		KindQuarter:      {UniqueFields: []string{"nombre"}, DefaultSort: "nombre"},
	}
}
