package handlers

import (
	"encoding/json"
	"net/http"

	"classpulse-backend/internal/middleware"
	"classpulse-backend/internal/models"
	"classpulse-backend/internal/repository"
)

type ClassroomHandler struct {
	repo *repository.ClassroomRepo
}

func NewClassroomHandler(repo *repository.ClassroomRepo) *ClassroomHandler {
	return &ClassroomHandler{repo: repo}
}

func (h *ClassroomHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())

	subjects, err := h.repo.ListSubjects(r.Context(), teacherID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORAGE_UNAVAILABLE", "Storage temporarily unavailable, please retry", r))
		return
	}

	writeJSON(w, http.StatusOK, subjects)
}

func (h *ClassroomHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())

	var req models.SubjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"name": "Name is required"}, r))
		return
	}

	subject := &models.Subject{Name: req.Name, Code: req.Code, TeacherID: teacherID}
	if err := h.repo.CreateSubject(r.Context(), subject); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORAGE_UNAVAILABLE", "Storage temporarily unavailable, please retry", r))
		return
	}

	writeJSON(w, http.StatusCreated, subject)
}

func (h *ClassroomHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())

	sections, err := h.repo.ListSections(r.Context(), teacherID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORAGE_UNAVAILABLE", "Storage temporarily unavailable, please retry", r))
		return
	}

	writeJSON(w, http.StatusOK, sections)
}

func (h *ClassroomHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())

	var req models.SectionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"name": "Name is required"}, r))
		return
	}

	section := &models.ClassSection{Name: req.Name, TeacherID: teacherID}
	if err := h.repo.CreateSection(r.Context(), section); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORAGE_UNAVAILABLE", "Storage temporarily unavailable, please retry", r))
		return
	}

	writeJSON(w, http.StatusCreated, section)
}
