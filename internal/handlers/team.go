package handlers

import (
	"net/http"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/services"
)

// TeamHandler manages the sewadar and counter reference lists.
// Every write answers with the refreshed list.
type TeamHandler struct {
	store services.Directory
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(store services.Directory) *TeamHandler {
	return &TeamHandler{store: store}
}

// Register adds the sewadar and counter routes to mux
func (h *TeamHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sewadars", h.HandleListSewadars)
	mux.HandleFunc("POST /api/sewadars", h.HandleAddSewadar)
	mux.HandleFunc("PUT /api/sewadars/{id}", h.HandleRenameSewadar)
	mux.HandleFunc("DELETE /api/sewadars/{id}", h.HandleDeleteSewadar)
	mux.HandleFunc("GET /api/counters", h.HandleListCounters)
	mux.HandleFunc("POST /api/counters", h.HandleAddCounter)
}

func (h *TeamHandler) HandleListSewadars(w http.ResponseWriter, r *http.Request) {
	list := h.store.ListSewadars(r.Context())
	writeJSON(w, http.StatusOK, models.FilterSewadars(list, r.URL.Query().Get("q")))
}

func (h *TeamHandler) HandleAddSewadar(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.store.AddSewadar(r.Context(), name))
}

// HandleRenameSewadar renames a sewadar together with their attendance history
func (h *TeamHandler) HandleRenameSewadar(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.store.RenameSewadar(r.Context(), r.PathValue("id"), name))
}

// HandleDeleteSewadar deletes a sewadar together with their attendance history
func (h *TeamHandler) HandleDeleteSewadar(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.DeleteSewadar(r.Context(), r.PathValue("id")))
}

func (h *TeamHandler) HandleListCounters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListCounters(r.Context()))
}

func (h *TeamHandler) HandleAddCounter(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.store.AddCounter(r.Context(), name))
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.NameRequest
	if !decodeAndValidate(w, r, &req) {
		return "", false
	}
	name, ok := models.CleanName(req.Name)
	if !ok {
		writeError(w, http.StatusBadRequest, "name must not be blank")
		return "", false
	}
	return name, true
}
