package registros

import (
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
	r.Route("/registros/{kind}", func(rr chi.Router) {
		rr.Post("/paged", listPagedHandler(svc))
		rr.Post("/", createHandler(svc))
		rr.Put("/", submitRevisionHandler(svc))
		rr.Post("/review", reviewHandler(svc))
		rr.Post("/toggle", toggleHandler(svc))
		rr.Get("/{id}", getByIDHandler(svc))
		rr.Get("/revisiones/{id}", listRevisionesHandler(svc))
	})
}

type pagedRequest struct {
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	View     string            `json:"view"`
	Filter   *matchRequest     `json:"filter"`
	Sort     *sortRequest      `json:"sort"`
	Scope    map[string]string `json:"scope"`
}

type matchRequest struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type sortRequest struct {
	Field string `json:"field"`
	Sort  string `json:"sort"` // "asc" | "desc"
}

type createRequest struct {
	Payload Payload `json:"payload"`
	Aprobar bool    `json:"aprobar"`
}

type submitRequest struct {
	ID      string  `json:"id"`
	Payload Payload `json:"payload"`
	Aprobar bool    `json:"aprobar"`
}

type reviewRequest struct {
	ID            string `json:"id"`
	Aprobado      bool   `json:"aprobado"`
	Observaciones string `json:"observaciones"`
}

type toggleRequest struct {
	ID            string `json:"id"`
	Observaciones string `json:"observaciones"`
}

type registroResponse struct {
	ID               string     `json:"id"`
	Kind             string     `json:"kind"`
	Payload          Payload    `json:"payload"`
	Estado           string     `json:"estado"`
	OriginalID       string     `json:"original_id,omitempty"`
	Version          string     `json:"version"`
	UltimaRevision   string     `json:"ultima_revision"`
	EditorID         string     `json:"editor_id"`
	FechaEdicion     time.Time  `json:"fecha_edicion"`
	RevisorID        string     `json:"revisor_id,omitempty"`
	FechaRevision    *time.Time `json:"fecha_revision,omitempty"`
	EliminadorID     string     `json:"eliminador_id,omitempty"`
	FechaEliminacion *time.Time `json:"fecha_eliminacion,omitempty"`
	Observaciones    string     `json:"observaciones,omitempty"`
}

type pagedResponse struct {
	Rows  []registroResponse `json:"rows"`
	Count int                `json:"count"`
}

func listPagedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req pagedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		params := listing.Params{View: listing.View(req.View)}
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
		if req.Scope != nil {
			params.ComponenteID = req.Scope["componenteId"]
			params.QuarterID = req.Scope["quarterId"]
		}

		rows, count, err := svc.ListPaged(r.Context(), Kind(chi.URLParam(r, "kind")), params, req.Page, req.PageSize)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := pagedResponse{Rows: make([]registroResponse, 0, len(rows)), Count: count}
		for _, rec := range rows {
			out.Rows = append(out.Rows, toRegistroResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editorID, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		rec, err := svc.CreateDraft(r.Context(), Kind(chi.URLParam(r, "kind")), req.Payload, editorID, req.Aprobar)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRegistroResponse(rec))
	}
}

func submitRevisionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editorID, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		rec, err := svc.SubmitRevision(r.Context(), Kind(chi.URLParam(r, "kind")), req.ID, req.Payload, editorID, req.Aprobar)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRegistroResponse(rec))
	}
}

func reviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		revisorID, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		rec, err := svc.Review(r.Context(), Kind(chi.URLParam(r, "kind")), req.ID, req.Aprobado, revisorID, req.Observaciones)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistroResponse(rec))
	}
}

func toggleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eliminadorID, ok := actorID(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "invalid json")
			return
		}

		rec, err := svc.ToggleEliminado(r.Context(), Kind(chi.URLParam(r, "kind")), req.ID, eliminadorID, req.Observaciones)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistroResponse(rec))
	}
}

func getByIDHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		rec, err := svc.GetByID(r.Context(), Kind(chi.URLParam(r, "kind")), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRegistroResponse(rec))
	}
}

func listRevisionesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorID(r); !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}

		rows, err := svc.ListRevisiones(r.Context(), Kind(chi.URLParam(r, "kind")), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]registroResponse, 0, len(rows))
		for _, rec := range rows {
			out = append(out, toRegistroResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toRegistroResponse(r Registro) registroResponse {
	return registroResponse{
		ID:               r.ID,
		Kind:             string(r.Kind),
		Payload:          r.Payload,
		Estado:           string(r.Estado),
		OriginalID:       r.OriginalID,
		Version:          r.Version,
		UltimaRevision:   r.UltimaRevision,
		EditorID:         r.EditorID,
		FechaEdicion:     r.FechaEdicion,
		RevisorID:        r.RevisorID,
		FechaRevision:    r.FechaRevision,
		EliminadorID:     r.EliminadorID,
		FechaEliminacion: r.FechaEliminacion,
		Observaciones:    r.Observaciones,
	}
}

func actorID(r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return "", false
	}
	return claims.UserID, true
}

// writeServiceError mapea los sentinels del servicio a códigos estables.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrConflicto):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
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
