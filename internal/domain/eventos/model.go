package eventos

import "time"

// Evento es la unidad de calendario y reporte del programa. Avanza por cinco
// ejes independientes (realización, revisión de finalización, digitación,
// revisión de digitación, consolidado), cada uno con su responsable y fecha.
// tareaId y quarterId quedan fijos al crear.
type Evento struct {
	ID string

	TareaID               string
	ComponenteEncargadoID string
	QuarterID             string

	Nombre         string
	AreaTematicaID string
	FechaInicio    time.Time
	FechaFinal     time.Time

	DepartamentoID string
	MunicipioID    string
	AldeaID        string
	CaserioID      string

	OrganizadorID         string
	FechaCreacion         time.Time
	ResponsableCreacionID string

	// Finalización
	NumeroFormulario             string
	ParticipantesHombres         int
	ParticipantesMujeres         int
	ParticipantesComunitarios    int
	ParticipantesInstitucionales int
	TotalDias                    int
	TotalHoras                   int
	TipoEventoID                 string
	Logros                       string
	Compromisos                  string
	EnlaceFormulario             string
	EnlaceFotografias            string

	EstadoRealizacion         EstadoEje
	ResponsableFinalizacionID string
	FechaFinalizacion         *time.Time

	EstadoRevisionFinalizacion EstadoEje
	RevisorFinalizacionID      string
	FechaRevisionFinalizacion  *time.Time
	ObservacionesFinalizacion  string

	// Digitación
	RegistradosHombres         int
	RegistradosMujeres         int
	RegistradosComunitarios    int
	RegistradosInstitucionales int

	EstadoDigitacion        EstadoEje
	ResponsableDigitacionID string
	FechaDigitacion         *time.Time

	EstadoRevisionDigitacion EstadoEje
	RevisorDigitacionID      string
	FechaRevisionDigitacion  *time.Time
	ObservacionesDigitacion  string

	// Consolidado
	EstadoConsolidado        EstadoEje
	ResponsableConsolidadoID string
	FechaConsolidado         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields aplana el evento para el filtro de visibilidad.
func (e Evento) Fields() map[string]string {
	return map[string]string{
		"estadoDigitacion":  string(e.EstadoDigitacion),
		"estadoConsolidado": string(e.EstadoConsolidado),
		"estadoRealizacion": string(e.EstadoRealizacion),
		"componenteId":      e.ComponenteEncargadoID,
		"quarterId":         e.QuarterID,
		"nombre":            e.Nombre,
		"fechaCreacion":     e.FechaCreacion.UTC().Format(time.RFC3339Nano),
	}
}

// Participante enlaza un beneficiario con un evento; estado e indicador
// elegido se fijan recién en digitación/consolidación.
type Participante struct {
	EventoID                string
	ParticipanteID          string
	Estado                  EstadoParticipante
	IndicadorSeleccionadoID string
}

// LogroParticipante registra que un participante alcanzó un indicador en un
// año fiscal. Se escribe al consolidar y nunca se borra.
type LogroParticipante struct {
	ParticipanteID string
	Year           string
	IndicadorID    string
}
