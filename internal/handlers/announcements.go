package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"lotus/internal/middleware"
	"lotus/internal/services"

	"github.com/go-chi/chi/v5"
)

type AnnouncementHandler struct {
	announcements *services.AnnouncementService
}

func NewAnnouncementHandler(announcements *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAnnouncementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if _, err := h.announcements.Create(r.Context(), middleware.GetAccount(r), req.Title, req.Content); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create announcement", "error", err)
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	writeSuccess(w, "Announcement created successfully")
}

func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := announcementID(w, r)
	if !ok {
		return
	}

	var req updateAnnouncementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	_, err := h.announcements.Update(r.Context(), middleware.GetAccount(r), id, req.Title, req.Content)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Announcement updated")
}

func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := announcementID(w, r)
	if !ok {
		return
	}

	if err := h.announcements.Delete(r.Context(), middleware.GetAccount(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, "Announcement deleted")
}

func (h *AnnouncementHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrAnnouncementNotFound) {
		writeError(w, http.StatusNotFound, "Announcement not found")
		return
	}
	slog.ErrorContext(r.Context(), "Announcement error", "error", err)
	writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
}

// announcementID parses the {id} route parameter. Anything that is not a
// positive integer cannot name an announcement and gets a 404.
func announcementID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Announcement not found")
		return 0, false
	}
	return id, true
}
