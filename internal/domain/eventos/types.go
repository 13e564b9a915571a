package eventos

// EstadoEje es el valor de uno de los cinco ejes de estado del evento.
// El string vacío significa que el eje todavía no se habilitó
// (p.ej. consolidado antes de aprobar la digitación).
type EstadoEje string

const (
	EstadoPendiente  EstadoEje = "Pendiente"
	EstadoEnCurso    EstadoEje = "En Curso"
	EstadoFinalizado EstadoEje = "Finalizado"
	EstadoRechazado  EstadoEje = "Rechazado"
	EstadoValidado   EstadoEje = "Validado"
	EstadoAprobado   EstadoEje = "Aprobado"
)

// RefKind distingue las listas de referencias colgadas de un evento.
type RefKind string

const (
	RefSectores      RefKind = "sectores"
	RefNiveles       RefKind = "niveles"
	RefComponentes   RefKind = "componentes"
	RefColaboradores RefKind = "colaboradores"
)

// EstadoParticipante es el resultado por participante fijado en la
// consolidación.
type EstadoParticipante string

const (
	ParticipanteValido   EstadoParticipante = "Valido"
	ParticipanteInvalido EstadoParticipante = "Invalido"
)
