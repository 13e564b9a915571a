package eventos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"program-monitoring-api/internal/listing"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrEstadoInvalido = errors.New("invalid state")
)

// TareaInfo es lo que el evento copia de su tarea planificada.
type TareaInfo struct {
	ComponenteID string
	QuarterID    string
}

// TareaDirectory resuelve tareas planificadas sin importar el paquete que
// las administra (mismo truco que los lookups entre módulos del resto del
// sistema, para no crear ciclos de imports).
type TareaDirectory interface {
	Resolve(ctx context.Context, tareaID string) (TareaInfo, error)
	// IncrementEventosRealizados suma 1 al contador de eventos de la tarea.
	IncrementEventosRealizados(ctx context.Context, tareaID string) error
}

// QuarterDirectory resuelve el nombre de un quarter ("T1-2024").
type QuarterDirectory interface {
	NombreOf(ctx context.Context, quarterID string) (string, error)
}

// ProgresoLedger recibe el conteo de válidos por indicador al consolidar.
type ProgresoLedger interface {
	SumarProgresos(ctx context.Context, year, quarter string, validosPorIndicador map[string]int) error
}

type Service struct {
	repo     Repository
	tareas   TareaDirectory
	quarters QuarterDirectory
	ledger   ProgresoLedger
	now      func() time.Time
}

func NewService(repo Repository, tareas TareaDirectory, quarters QuarterDirectory, ledger ProgresoLedger) *Service {
	return &Service{
		repo:     repo,
		tareas:   tareas,
		quarters: quarters,
		ledger:   ledger,
		now:      time.Now,
	}
}

type CreateInput struct {
	TareaID        string
	Nombre         string
	AreaTematicaID string
	FechaInicio    time.Time
	FechaFinal     time.Time
	DepartamentoID string
	MunicipioID    string
	AldeaID        string
	CaserioID      string
	OrganizadorID  string
	Componentes    []string
	Colaboradores  []string
}

// Create resuelve componente y quarter desde la tarea, crea el evento en
// realización Pendiente y suma 1 al contador de eventos realizados de la
// tarea. Edit no toca ese contador.
func (s *Service) Create(ctx context.Context, in CreateInput, responsableID string) (Evento, error) {
	if strings.TrimSpace(in.TareaID) == "" || strings.TrimSpace(in.Nombre) == "" || strings.TrimSpace(responsableID) == "" {
		return Evento{}, ErrInvalidInput
	}
	if in.FechaInicio.IsZero() || in.FechaFinal.IsZero() {
		return Evento{}, ErrInvalidInput
	}

	info, err := s.tareas.Resolve(ctx, in.TareaID)
	if err != nil {
		return Evento{}, ErrNotFound
	}

	now := s.now()
	e := Evento{
		ID:                    uuid.NewString(),
		TareaID:               in.TareaID,
		ComponenteEncargadoID: info.ComponenteID,
		QuarterID:             info.QuarterID,
		Nombre:                strings.TrimSpace(in.Nombre),
		AreaTematicaID:        in.AreaTematicaID,
		FechaInicio:           in.FechaInicio,
		FechaFinal:            in.FechaFinal,
		DepartamentoID:        in.DepartamentoID,
		MunicipioID:           in.MunicipioID,
		AldeaID:               in.AldeaID,
		CaserioID:             in.CaserioID,
		OrganizadorID:         in.OrganizadorID,
		FechaCreacion:         now,
		ResponsableCreacionID: responsableID,
		EstadoRealizacion:     EstadoPendiente,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = s.repo.InTx(ctx, func(repo Repository) error {
		if err := repo.Create(ctx, e); err != nil {
			return err
		}
		if err := repo.ReplaceRefs(ctx, e.ID, RefComponentes, in.Componentes); err != nil {
			return err
		}
		return repo.ReplaceRefs(ctx, e.ID, RefColaboradores, in.Colaboradores)
	})
	if err != nil {
		return Evento{}, err
	}

	if err := s.tareas.IncrementEventosRealizados(ctx, in.TareaID); err != nil {
		return Evento{}, err
	}
	return e, nil
}

// Edit sobreescribe los campos descriptivos. La tarea del evento es inmutable:
// se re-resuelven componente y quarter desde la tarea guardada, y pedir otra
// tarea es un error.
func (s *Service) Edit(ctx context.Context, id string, in CreateInput, responsableID string) (Evento, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(responsableID) == "" {
		return Evento{}, ErrInvalidInput
	}

	var out Evento
	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}
		if strings.TrimSpace(in.TareaID) != "" && in.TareaID != e.TareaID {
			return ErrInvalidInput
		}

		info, err := s.tareas.Resolve(ctx, e.TareaID)
		if err != nil {
			return ErrNotFound
		}

		e.ComponenteEncargadoID = info.ComponenteID
		e.QuarterID = info.QuarterID
		e.Nombre = strings.TrimSpace(in.Nombre)
		e.AreaTematicaID = in.AreaTematicaID
		e.FechaInicio = in.FechaInicio
		e.FechaFinal = in.FechaFinal
		e.DepartamentoID = in.DepartamentoID
		e.MunicipioID = in.MunicipioID
		e.AldeaID = in.AldeaID
		e.CaserioID = in.CaserioID
		e.OrganizadorID = in.OrganizadorID
		e.ResponsableCreacionID = responsableID
		e.UpdatedAt = s.now()

		if err := repo.Update(ctx, e); err != nil {
			return err
		}
		if err := repo.ReplaceRefs(ctx, e.ID, RefComponentes, in.Componentes); err != nil {
			return err
		}
		if err := repo.ReplaceRefs(ctx, e.ID, RefColaboradores, in.Colaboradores); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return Evento{}, err
	}
	return out, nil
}

// SetEstadoRealizacion es el override administrativo del eje de realización:
// sobreescribe el estado sin pasar por las transiciones normales. Los flujos
// guardados viven en Finalizar/Reportar/etc.
func (s *Service) SetEstadoRealizacion(ctx context.Context, id string, estado EstadoEje) (Evento, error) {
	if strings.TrimSpace(id) == "" || estado == "" {
		return Evento{}, ErrInvalidInput
	}

	var out Evento
	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}
		e.EstadoRealizacion = estado
		e.UpdatedAt = s.now()
		out = e
		return repo.Update(ctx, e)
	})
	if err != nil {
		return Evento{}, err
	}
	return out, nil
}

type FinalizarInput struct {
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
	Sectores                     []string
	Niveles                      []string
}

// Finalizar fuerza realización a Finalizado y rearma los ejes de revisión de
// finalización y digitación en Pendiente.
func (s *Service) Finalizar(ctx context.Context, id string, in FinalizarInput, responsableID string) (Evento, error) {
	return s.finalizar(ctx, id, in, responsableID, false)
}

// EditFinalizar repite una finalización ya enviada: además de los campos,
// limpia por completo la revisión de finalización y la digitación previas.
func (s *Service) EditFinalizar(ctx context.Context, id string, in FinalizarInput, responsableID string) (Evento, error) {
	return s.finalizar(ctx, id, in, responsableID, true)
}

func (s *Service) finalizar(ctx context.Context, id string, in FinalizarInput, responsableID string, reset bool) (Evento, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(responsableID) == "" {
		return Evento{}, ErrInvalidInput
	}

	now := s.now()
	var out Evento

	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}

		e.NumeroFormulario = in.NumeroFormulario
		e.ParticipantesHombres = in.ParticipantesHombres
		e.ParticipantesMujeres = in.ParticipantesMujeres
		e.ParticipantesComunitarios = in.ParticipantesComunitarios
		e.ParticipantesInstitucionales = in.ParticipantesInstitucionales
		e.TotalDias = in.TotalDias
		e.TotalHoras = in.TotalHoras
		e.TipoEventoID = in.TipoEventoID
		e.Logros = in.Logros
		e.Compromisos = in.Compromisos
		e.EnlaceFormulario = in.EnlaceFormulario
		e.EnlaceFotografias = in.EnlaceFotografias

		e.EstadoRealizacion = EstadoFinalizado
		e.ResponsableFinalizacionID = responsableID
		e.FechaFinalizacion = &now
		e.EstadoRevisionFinalizacion = EstadoPendiente
		e.EstadoDigitacion = EstadoPendiente

		if reset {
			e.ResponsableDigitacionID = ""
			e.FechaDigitacion = nil
			e.RevisorFinalizacionID = ""
			e.FechaRevisionFinalizacion = nil
			e.ObservacionesFinalizacion = ""
		}
		e.UpdatedAt = now

		if err := repo.Update(ctx, e); err != nil {
			return err
		}
		if err := repo.ReplaceRefs(ctx, e.ID, RefSectores, in.Sectores); err != nil {
			return err
		}
		if err := repo.ReplaceRefs(ctx, e.ID, RefNiveles, in.Niveles); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return Evento{}, err
	}
	return out, nil
}

// Reportar rechaza la finalización: revisión de finalización a Rechazado y,
// en cascada, digitación a Rechazado.
func (s *Service) Reportar(ctx context.Context, id, observaciones, revisorID string) (Evento, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(revisorID) == "" {
		return Evento{}, ErrInvalidInput
	}

	now := s.now()
	var out Evento

	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}

		e.RevisorFinalizacionID = revisorID
		e.EstadoRevisionFinalizacion = EstadoRechazado
		e.EstadoDigitacion = EstadoRechazado
		e.ObservacionesFinalizacion = observaciones
		e.FechaRevisionFinalizacion = &now
		e.UpdatedAt = now

		out = e
		return repo.Update(ctx, e)
	})
	if err != nil {
		return Evento{}, err
	}
	return out, nil
}

// GetParaDigitar devuelve el evento para la pantalla de digitación. La
// primera lectura de un responsable mueve Pendiente -> En Curso y lo deja
// registrado como responsable de digitación.
func (s *Service) GetParaDigitar(ctx context.Context, id, responsableID string) (Evento, []Participante, error) {
	if strings.TrimSpace(id) == "" {
		return Evento{}, nil, ErrInvalidInput
	}

	var (
		out   Evento
		parts []Participante
	)
	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}

		if e.EstadoDigitacion == EstadoPendiente && strings.TrimSpace(responsableID) != "" {
			now := s.now()
			e.EstadoDigitacion = EstadoEnCurso
			e.ResponsableDigitacionID = responsableID
			e.FechaDigitacion = &now
			e.UpdatedAt = now
			if err := repo.Update(ctx, e); err != nil {
				return err
			}
		}

		parts, err = repo.ListParticipantes(ctx, e.ID)
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return Evento{}, nil, err
	}
	return out, parts, nil
}

type ParticipantesInput struct {
	RegistradosHombres         int
	RegistradosMujeres         int
	RegistradosComunitarios    int
	RegistradosInstitucionales int
	Participantes              []string
}

// SubmitParticipantes cierra la digitación: digitación a Finalizado y, en la
// misma llamada, revisión de finalización a Validado (aprobación implícita).
// La revisión de digitación queda Pendiente y la lista de participantes se
// reemplaza completa.
func (s *Service) SubmitParticipantes(ctx context.Context, id string, in ParticipantesInput, responsableID string) (Evento, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(responsableID) == "" {
		return Evento{}, ErrInvalidInput
	}

	now := s.now()
	var out Evento

	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}

		e.RegistradosHombres = in.RegistradosHombres
		e.RegistradosMujeres = in.RegistradosMujeres
		e.RegistradosComunitarios = in.RegistradosComunitarios
		e.RegistradosInstitucionales = in.RegistradosInstitucionales

		e.FechaDigitacion = &now
		e.ResponsableDigitacionID = responsableID
		e.EstadoDigitacion = EstadoFinalizado

		// Aprobación implícita de la finalización.
		e.RevisorFinalizacionID = responsableID
		e.EstadoRevisionFinalizacion = EstadoValidado
		e.ObservacionesFinalizacion = ""
		e.FechaRevisionFinalizacion = &now

		e.EstadoRevisionDigitacion = EstadoPendiente
		e.RevisorDigitacionID = ""
		e.FechaRevisionDigitacion = nil
		e.ObservacionesDigitacion = ""
		e.UpdatedAt = now

		if err := repo.Update(ctx, e); err != nil {
			return err
		}
		if err := repo.ReplaceParticipantes(ctx, e.ID, in.Participantes); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return Evento{}, err
	}
	return out, nil
}

// ReviewParticipantes aprueba o rechaza la digitación. Aprobar habilita la
// consolidación (Pendiente); rechazar la deja deshabilitada.
func (s *Service) ReviewParticipantes(ctx context.Context, id string, aprobado bool, observaciones, revisorID string) (Evento, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(revisorID) == "" {
		return Evento{}, ErrInvalidInput
	}

	now := s.now()
	var out Evento

	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}

		e.RevisorDigitacionID = revisorID
		e.FechaRevisionDigitacion = &now
		e.ObservacionesDigitacion = observaciones
		if aprobado {
			e.EstadoRevisionDigitacion = EstadoAprobado
			e.EstadoConsolidado = EstadoPendiente
		} else {
			e.EstadoRevisionDigitacion = EstadoRechazado
			e.EstadoConsolidado = ""
		}
		e.UpdatedAt = now

		out = e
		return repo.Update(ctx, e)
	})
	if err != nil {
		return Evento{}, err
	}
	return out, nil
}

// ParticipanteConsolidado es el resultado por participante que manda el
// consolidador.
type ParticipanteConsolidado struct {
	ID          string
	Estado      EstadoParticipante
	IndicadorID string
}

type ConsolidarInput struct {
	Participantes []ParticipanteConsolidado
	// Conteo de válidos por indicador; alimenta el ledger de progresos.
	Conteo map[string]int
}

// Consolidar es la transición terminal: fija el resultado de cada
// participante, registra sus logros de indicador para el año fiscal del
// evento, aplica el fan-out de progresos y deja consolidado en Finalizado.
// Solo es válida con consolidado en Pendiente.
func (s *Service) Consolidar(ctx context.Context, id string, in ConsolidarInput, responsableID string) (Evento, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(responsableID) == "" {
		return Evento{}, ErrInvalidInput
	}

	now := s.now()
	var out Evento

	err := s.repo.InTx(ctx, func(repo Repository) error {
		e, err := repo.GetByID(ctx, id)
		if err != nil {
			return ErrNotFound
		}
		if e.EstadoConsolidado != EstadoPendiente {
			return ErrEstadoInvalido
		}

		nombre, err := s.quarters.NombreOf(ctx, e.QuarterID)
		if err != nil {
			return ErrNotFound
		}
		subPeriodo, year, err := ParseQuarterNombre(nombre)
		if err != nil {
			return err
		}

		for _, p := range in.Participantes {
			if err := repo.UpdateParticipante(ctx, Participante{
				EventoID:                e.ID,
				ParticipanteID:          p.ID,
				Estado:                  p.Estado,
				IndicadorSeleccionadoID: p.IndicadorID,
			}); err != nil {
				// El id no corresponde a un participante digitado del evento.
				return fmt.Errorf("%w: participante %s", ErrInvalidInput, p.ID)
			}
			if p.IndicadorID != "" {
				if err := repo.AddLogro(ctx, LogroParticipante{
					ParticipanteID: p.ID,
					Year:           year,
					IndicadorID:    p.IndicadorID,
				}); err != nil {
					return err
				}
			}
		}

		if err := s.ledger.SumarProgresos(ctx, year, subPeriodo, in.Conteo); err != nil {
			return err
		}

		e.EstadoConsolidado = EstadoFinalizado
		e.ResponsableConsolidadoID = responsableID
		e.FechaConsolidado = &now
		e.UpdatedAt = now

		out = e
		return repo.Update(ctx, e)
	})
	if err != nil {
		return Evento{}, err
	}
	return out, nil
}

// ListDigitar lista la cola de digitación.
func (s *Service) ListDigitar(ctx context.Context, params listing.Params, page, pageSize int) ([]Evento, int, error) {
	params.View = listing.ViewDataEntryQueue
	return s.listQueue(ctx, params, page, pageSize)
}

// ListConsolidar lista la cola de consolidación.
func (s *Service) ListConsolidar(ctx context.Context, params listing.Params, page, pageSize int) ([]Evento, int, error) {
	params.View = listing.ViewConsolidationQueue
	return s.listQueue(ctx, params, page, pageSize)
}

func (s *Service) listQueue(ctx context.Context, params listing.Params, page, pageSize int) ([]Evento, int, error) {
	if params.DefaultField == "" {
		params.DefaultField = "fechaCreacion"
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
	return s.repo.List(ctx, sel, page, pageSize)
}

// Tablero devuelve los eventos de un componente en un quarter.
func (s *Service) Tablero(ctx context.Context, quarterID, componenteID string) ([]Evento, error) {
	if strings.TrimSpace(quarterID) == "" || strings.TrimSpace(componenteID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListTablero(ctx, quarterID, componenteID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Evento, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Evento{}, ErrInvalidInput
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Evento{}, ErrNotFound
	}
	return e, nil
}

func (s *Service) Refs(ctx context.Context, id string, kind RefKind) ([]string, error) {
	return s.repo.ListRefs(ctx, id, kind)
}

func (s *Service) Participantes(ctx context.Context, id string) ([]Participante, error) {
	return s.repo.ListParticipantes(ctx, id)
}

// Logros devuelve los indicadores alcanzados por un participante agrupados
// por año fiscal.
func (s *Service) Logros(ctx context.Context, participanteID string) (map[string][]string, error) {
	logros, err := s.repo.ListLogros(ctx, participanteID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, l := range logros {
		out[l.Year] = append(out[l.Year], l.IndicadorID)
	}
	return out, nil
}

// ParseQuarterNombre separa un nombre de período "T1-2024" en sub-período y
// año.
func ParseQuarterNombre(nombre string) (subPeriodo, year string, err error) {
	parts := strings.SplitN(strings.TrimSpace(nombre), "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidInput
	}
	return parts[0], parts[1], nil
}
