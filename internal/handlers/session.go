package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"classpulse-backend/internal/middleware"
	"classpulse-backend/internal/models"
	"classpulse-backend/internal/services"
)

type SessionHandler struct {
	sessions   *services.SessionService
	monitoring *services.MonitoringService
}

func NewSessionHandler(sessions *services.SessionService, monitoring *services.MonitoringService) *SessionHandler {
	return &SessionHandler{sessions: sessions, monitoring: monitoring}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())

	var req models.SessionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.sessions.Start(r.Context(), teacherID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	session, err := h.sessions.Stop(r.Context(), sessionID, teacherID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())

	session, err := h.sessions.Active(r.Context(), teacherID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	if err := h.sessions.Delete(r.Context(), sessionID, teacherID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

// Log accepts one detector sample. Unauthenticated: possession of a valid
// active session id is the trust boundary for the detection script.
func (h *SessionHandler) Log(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var counts models.BehaviorCounts
	if err := json.NewDecoder(r.Body).Decode(&counts); err != nil {
		// Non-integer counts land here too.
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	// Detach from the producer's cancellation: a sample is recorded together
	// with its alert evaluation or not at all.
	if _, err := h.monitoring.Ingest(context.WithoutCancel(r.Context()), sessionID, counts); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

func (h *SessionHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	metrics, err := h.monitoring.Metrics(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

func (h *SessionHandler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())
	alertID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid alert ID", r))
		return
	}

	alert, err := h.monitoring.MarkAlertRead(r.Context(), alertID, teacherID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}
