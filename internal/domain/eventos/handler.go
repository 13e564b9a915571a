package eventos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"program-monitoring-api/internal/listing"
	"program-monitoring-api/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/eventos", func(er chi.Router) {
		er.Post("/", createHandler(svc))
		er.Put("/", editHandler(svc))
		er.Put("/estado", setEstadoHandler(svc))
		er.Post("/tablero", tableroHandler(svc))

		er.Put("/finalizar", finalizarHandler(svc, false))
		er.Put("/finalizar/editar", finalizarHandler(svc, true))
		er.Put("/reportar", reportarHandler(svc))
		er.Get("/finalizar/{id}", getFinalizarHandler(svc))

		er.Post("/paged/digitar", pagedQueueHandler(svc, svc.ListDigitar))
		er.Get("/digitar/{id}", getDigitarHandler(svc))
		er.Put("/digitar", participantesHandler(svc))
		er.Put("/digitar/revisar", revisarParticipantesHandler(svc))

		er.Post("/paged/consolidar", pagedQueueHandler(svc, svc.ListConsolidar))
		er.Get("/consolidar/{id}", getConsolidarHandler(svc))
		er.Put("/consolidar", consolidarHandler(svc))
	})
}

// idList acepta el envelope {"data":[...]} o una lista pelada; las dos
// formas vienen del front según la pantalla.
type idList []string

func (l *idList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var ids []string
		if err := json.Unmarshal(b, &ids); err != nil {
			return err
		}
		*l = ids
		return nil
	}
	var env struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*l = env.Data
	return nil
}

type createEventoRequest struct {
	ID             string `json:"id"`
	TareaID        string `json:"tareaId"`
	Nombre         string `json:"nombre"`
	AreaTematicaID string `json:"areaTematicaId"`
	FechaInicio    string `json:"fechaInicio"`
	FechaFinal     string `json:"fechaFinal"`
	DepartamentoID string `json:"departamentoId"`
	MunicipioID    string `json:"municipioId"`
	AldeaID        string `json:"aldeaId"`
	CaserioID      string `json:"caserioId"`
	OrganizadorID  string `json:"organizadorId"`
	Componentes    idList `json:"componentes"`
	Colaboradores  idList `json:"colaboradores"`
}

func (req createEventoRequest) toInput() (CreateInput, error) {
	inicio, err := time.Parse(time.RFC3339, req.FechaInicio)
	if err != nil {
		return CreateInput{}, err
	}
	final, err := time.Parse(time.RFC3339, req.FechaFinal)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		TareaID:        req.TareaID,
		Nombre:         req.Nombre,
		AreaTematicaID: req.AreaTematicaID,
		FechaInicio:    inicio,
		FechaFinal:     final,
		DepartamentoID: req.DepartamentoID,
		MunicipioID:    req.MunicipioID,
		AldeaID:        req.AldeaID,
		CaserioID:      req.CaserioID,
		OrganizadorID:  req.OrganizadorID,
		Componentes:    req.Componentes,
		Colaboradores:  req.Colaboradores,
	}, nil
}

type eventoResponse struct {
	ID                    string     `json:"id"`
	TareaID               string     `json:"tarea_id"`
	ComponenteEncargadoID string     `json:"componente_encargado_id"`
	QuarterID             string     `json:"quarter_id"`
	Nombre                string     `json:"nombre"`
	AreaTematicaID        string     `json:"area_tematica_id,omitempty"`
	FechaInicio           time.Time  `json:"fecha_inicio"`
	FechaFinal            time.Time  `json:"fecha_final"`
	DepartamentoID        string     `json:"departamento_id,omitempty"`
	MunicipioID           string     `json:"municipio_id,omitempty"`
	AldeaID               string     `json:"aldea_id,omitempty"`
	CaserioID             string     `json:"caserio_id,omitempty"`
	OrganizadorID         string     `json:"organizador_id,omitempty"`
	FechaCreacion         time.Time  `json:"fecha_creacion"`
	ResponsableCreacionID string     `json:"responsable_creacion_id"`

	EstadoRealizacion          string     `json:"estado_realizacion"`
	ResponsableFinalizacionID  string     `json:"responsable_finalizacion_id,omitempty"`
	FechaFinalizacion          *time.Time `json:"fecha_finalizacion,omitempty"`
	EstadoRevisionFinalizacion string     `json:"estado_revision_finalizacion,omitempty"`
	RevisorFinalizacionID      string     `json:"revisor_finalizacion_id,omitempty"`
	ObservacionesFinalizacion  string     `json:"observaciones_finalizacion,omitempty"`

	EstadoDigitacion        string     `json:"estado_digitacion,omitempty"`
	ResponsableDigitacionID string     `json:"responsable_digitacion_id,omitempty"`
	FechaDigitacion         *time.Time `json:"fecha_digitacion,omitempty"`

	EstadoRevisionDigitacion string     `json:"estado_revision_digitacion,omitempty"`
	RevisorDigitacionID      string     `json:"revisor_digitacion_id,omitempty"`
	ObservacionesDigitacion  string     `json:"observaciones_digitacion,omitempty"`

	EstadoConsolidado        string     `json:"estado_consolidado,omitempty"`
	ResponsableConsolidadoID string     `json:"responsable_consolidado_id,omitempty"`
	FechaConsolidado         *time.Time `json:"fecha_consolidado,omitempty"`
}

type participanteResponse struct {
	ParticipanteID          string `json:"participante_id"`
	Estado                  string `json:"estado,omitempty"`
	IndicadorSeleccionadoID string `json:"indicador_seleccionado_id,omitempty"`
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req createEventoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		in, err := req.toInput()
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "fechas must be RFC3339")
			return
		}

		e, err := svc.Create(r.Context(), in, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventoResponse(e))
	}
}

func editHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req createEventoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}
		in, err := req.toInput()
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "fechas must be RFC3339")
			return
		}

		e, err := svc.Edit(r.Context(), req.ID, in, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventoResponse(e))
	}
}

type setEstadoRequest struct {
	ID     string `json:"id"`
	Estado string `json:"estado"`
}

func setEstadoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req setEstadoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		e, err := svc.SetEstadoRealizacion(r.Context(), req.ID, EstadoEje(req.Estado))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventoResponse(e))
	}
}

type tableroRequest struct {
	QuarterID    string `json:"quarterId"`
	ComponenteID string `json:"componenteId"`
}

func tableroHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req tableroRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		rows, err := svc.Tablero(r.Context(), req.QuarterID, req.ComponenteID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventoResponses(rows))
	}
}

type finalizarRequest struct {
	ID                           string `json:"id"`
	NumeroFormulario             string `json:"numeroFormulario"`
	ParticipantesHombres         int    `json:"participantesHombres"`
	ParticipantesMujeres         int    `json:"participantesMujeres"`
	ParticipantesComunitarios    int    `json:"participantesComunitarios"`
	ParticipantesInstitucionales int    `json:"participantesInstitucionales"`
	TotalDias                    int    `json:"totalDias"`
	TotalHoras                   int    `json:"totalHoras"`
	TipoEventoID                 string `json:"tipoEventoId"`
	Logros                       string `json:"logros"`
	Compromisos                  string `json:"compromisos"`
	EnlaceFormulario             string `json:"enlaceFormulario"`
	EnlaceFotografias            string `json:"enlaceFotografias"`
	Sectores                     idList `json:"sectores"`
	Niveles                      idList `json:"niveles"`
}

func finalizarHandler(svc *Service, edit bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req finalizarRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		in := FinalizarInput{
			NumeroFormulario:             req.NumeroFormulario,
			ParticipantesHombres:         req.ParticipantesHombres,
			ParticipantesMujeres:         req.ParticipantesMujeres,
			ParticipantesComunitarios:    req.ParticipantesComunitarios,
			ParticipantesInstitucionales: req.ParticipantesInstitucionales,
			TotalDias:                    req.TotalDias,
			TotalHoras:                   req.TotalHoras,
			TipoEventoID:                 req.TipoEventoID,
			Logros:                       req.Logros,
			Compromisos:                  req.Compromisos,
			EnlaceFormulario:             req.EnlaceFormulario,
			EnlaceFotografias:            req.EnlaceFotografias,
			Sectores:                     req.Sectores,
			Niveles:                      req.Niveles,
		}

		var (
			e   Evento
			err error
		)
		if edit {
			e, err = svc.EditFinalizar(r.Context(), req.ID, in, uid)
		} else {
			e, err = svc.Finalizar(r.Context(), req.ID, in, uid)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventoResponse(e))
	}
}

type reportarRequest struct {
	ID            string `json:"id"`
	Observaciones string `json:"observaciones"`
}

func reportarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req reportarRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		e, err := svc.Reportar(r.Context(), req.ID, req.Observaciones, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventoResponse(e))
	}
}

func getFinalizarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		id := chi.URLParam(r, "id")
		e, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		sectores, err := svc.Refs(r.Context(), id, RefSectores)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		niveles, err := svc.Refs(r.Context(), id, RefNiveles)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"evento":   toEventoResponse(e),
			"sectores": sectores,
			"niveles":  niveles,
		})
	}
}

type pagedEventosRequest struct {
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Filter   *matchRequest `json:"filter"`
	Sort     *sortRequest  `json:"sort"`
}

type matchRequest struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type sortRequest struct {
	Field string `json:"field"`
	Sort  string `json:"sort"`
}

type listQueueFn func(ctx context.Context, params listing.Params, page, pageSize int) ([]Evento, int, error)

func pagedQueueHandler(svc *Service, list listQueueFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req pagedEventosRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		params := listing.Params{}
		if req.Filter != nil && strings.TrimSpace(req.Filter.Value) != "" {
			params.Match = &listing.Match{
				Field:    req.Filter.Field,
				Operator: listing.Operator(req.Filter.Operator),
				Value:    req.Filter.Value,
			}
		}
		if req.Sort != nil && strings.TrimSpace(req.Sort.Field) != "" {
			params.Sort = &listing.SortOrder{Field: req.Sort.Field, Desc: strings.EqualFold(req.Sort.Sort, "desc")}
		}

		rows, count, err := list(r.Context(), params, req.Page, req.PageSize)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":  toEventoResponses(rows),
			"count": count,
		})
	}
}

func getDigitarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		e, parts, err := svc.GetParaDigitar(r.Context(), chi.URLParam(r, "id"), uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"evento":        toEventoResponse(e),
			"participantes": toParticipanteResponses(parts),
		})
	}
}

type participantesRequest struct {
	ID                         string `json:"id"`
	RegistradosHombres         int    `json:"registradosHombres"`
	RegistradosMujeres         int    `json:"registradosMujeres"`
	RegistradosComunitarios    int    `json:"registradosComunitarios"`
	RegistradosInstitucionales int    `json:"registradosInstitucionales"`
	Participantes              idList `json:"participantes"`
}

func participantesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req participantesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		e, err := svc.SubmitParticipantes(r.Context(), req.ID, ParticipantesInput{
			RegistradosHombres:         req.RegistradosHombres,
			RegistradosMujeres:         req.RegistradosMujeres,
			RegistradosComunitarios:    req.RegistradosComunitarios,
			RegistradosInstitucionales: req.RegistradosInstitucionales,
			Participantes:              req.Participantes,
		}, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventoResponse(e))
	}
}

type revisarParticipantesRequest struct {
	ID            string `json:"id"`
	Aprobado      bool   `json:"aprobado"`
	Observaciones string `json:"observaciones"`
}

func revisarParticipantesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req revisarParticipantesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		e, err := svc.ReviewParticipantes(r.Context(), req.ID, req.Aprobado, req.Observaciones, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventoResponse(e))
	}
}

func getConsolidarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		id := chi.URLParam(r, "id")
		e, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		parts, err := svc.Participantes(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		// Cada participante viene con sus logros históricos por año.
		enriched := make([]map[string]any, 0, len(parts))
		for _, p := range parts {
			logros, err := svc.Logros(r.Context(), p.ParticipanteID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			enriched = append(enriched, map[string]any{
				"participante_id":           p.ParticipanteID,
				"estado":                    string(p.Estado),
				"indicador_seleccionado_id": p.IndicadorSeleccionadoID,
				"indicadores":               logros,
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"evento":        toEventoResponse(e),
			"participantes": enriched,
		})
	}
}

// participanteConsolidadoRequest viene dentro del envelope {"data":[...]}.
type participanteConsolidadoRequest struct {
	ID              string `json:"id"`
	EstadoIndicador string `json:"estadoIndicador"`
	ValueIndicador  string `json:"valueIndicador"`
}

type consolidarRequest struct {
	ID               string          `json:"id"`
	IndParticipantes json.RawMessage `json:"indParticipantes"`
	// Conteo: indicadorId -> {"Valid": n, ...}
	Conteo map[string]map[string]int `json:"conteo"`
}

func consolidarHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req consolidarRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		parts, err := decodeParticipantesConsolidados(req.IndParticipantes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "indParticipantes malformed")
			return
		}

		conteo := make(map[string]int, len(req.Conteo))
		for indicador, tallies := range req.Conteo {
			conteo[indicador] = tallies["Valid"]
		}

		e, err := svc.Consolidar(r.Context(), req.ID, ConsolidarInput{
			Participantes: parts,
			Conteo:        conteo,
		}, uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventoResponse(e))
	}
}

// decodeParticipantesConsolidados acepta {"data":[...]} o la lista pelada.
func decodeParticipantesConsolidados(raw json.RawMessage) ([]ParticipanteConsolidado, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var items []participanteConsolidadoRequest
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	} else {
		var env struct {
			Data []participanteConsolidadoRequest `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		items = env.Data
	}

	out := make([]ParticipanteConsolidado, 0, len(items))
	for _, it := range items {
		out = append(out, ParticipanteConsolidado{
			ID:          it.ID,
			Estado:      EstadoParticipante(it.EstadoIndicador),
			IndicadorID: it.ValueIndicador,
		})
	}
	return out, nil
}

func toEventoResponse(e Evento) eventoResponse {
	return eventoResponse{
		ID:                         e.ID,
		TareaID:                    e.TareaID,
		ComponenteEncargadoID:      e.ComponenteEncargadoID,
		QuarterID:                  e.QuarterID,
		Nombre:                     e.Nombre,
		AreaTematicaID:             e.AreaTematicaID,
		FechaInicio:                e.FechaInicio,
		FechaFinal:                 e.FechaFinal,
		DepartamentoID:             e.DepartamentoID,
		MunicipioID:                e.MunicipioID,
		AldeaID:                    e.AldeaID,
		CaserioID:                  e.CaserioID,
		OrganizadorID:              e.OrganizadorID,
		FechaCreacion:              e.FechaCreacion,
		ResponsableCreacionID:      e.ResponsableCreacionID,
		EstadoRealizacion:          string(e.EstadoRealizacion),
		ResponsableFinalizacionID:  e.ResponsableFinalizacionID,
		FechaFinalizacion:          e.FechaFinalizacion,
		EstadoRevisionFinalizacion: string(e.EstadoRevisionFinalizacion),
		RevisorFinalizacionID:      e.RevisorFinalizacionID,
		ObservacionesFinalizacion:  e.ObservacionesFinalizacion,
		EstadoDigitacion:           string(e.EstadoDigitacion),
		ResponsableDigitacionID:    e.ResponsableDigitacionID,
		FechaDigitacion:            e.FechaDigitacion,
		EstadoRevisionDigitacion:   string(e.EstadoRevisionDigitacion),
		RevisorDigitacionID:        e.RevisorDigitacionID,
		ObservacionesDigitacion:    e.ObservacionesDigitacion,
		EstadoConsolidado:          string(e.EstadoConsolidado),
		ResponsableConsolidadoID:   e.ResponsableConsolidadoID,
		FechaConsolidado:           e.FechaConsolidado,
	}
}

func toEventoResponses(rows []Evento) []eventoResponse {
	out := make([]eventoResponse, 0, len(rows))
	for _, e := range rows {
		out = append(out, toEventoResponse(e))
	}
	return out
}

func toParticipanteResponses(rows []Participante) []participanteResponse {
	out := make([]participanteResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, participanteResponse{
			ParticipanteID:          p.ParticipanteID,
			Estado:                  string(p.Estado),
			IndicadorSeleccionadoID: p.IndicadorSeleccionadoID,
		})
	}
	return out
}

func actorID(r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return "", false
	}
	return claims.UserID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrEstadoInvalido):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_STATE", err.Error())
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "error": msg})
}

// writeJSON está duplicado intencionalmente en los handlers de cada módulo
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
