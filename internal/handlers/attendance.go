package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sewa-attendance/internal/models"
	"sewa-attendance/internal/services"
)

// AttendanceHandler serves the day sheet and the check-in/mark-out workflows
type AttendanceHandler struct {
	desk   services.AttendanceDesk
	store  services.Directory
	logger *zap.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(desk services.AttendanceDesk, store services.Directory, logger *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{desk: desk, store: store, logger: logger}
}

// Register adds the record routes to mux
func (h *AttendanceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/records", h.HandleList)
	mux.HandleFunc("POST /api/records/checkin", h.HandleCheckIn)
	mux.HandleFunc("POST /api/records/{id}/checkout", h.HandleCheckOut)
	mux.HandleFunc("PUT /api/records/{id}", h.HandleUpsert)
	mux.HandleFunc("DELETE /api/records/{id}", h.HandleDelete)
}

// HandleList returns the records of one date with the active count
func (h *AttendanceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.desk.DaySheet(r.Context(), date))
}

// HandleCheckIn starts a shift
func (h *AttendanceHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	record, err := h.desk.CheckIn(r.Context(), req)
	if err != nil {
		h.logger.Warn("check-in rejected", zap.String("sewadar", req.SewadarName), zap.Error(err))
		writeDeskError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// HandleCheckOut finishes the active shift named by the path id
func (h *AttendanceHandler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req models.MarkOutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	record, err := h.desk.MarkOut(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("mark-out rejected", zap.String("id", id), zap.Error(err))
		writeDeskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// HandleUpsert saves a full record under the path id, e.g. to correct times
func (h *AttendanceHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var record models.AttendanceRecord
	if !decodeAndValidate(w, r, &record) {
		return
	}
	record.ID = r.PathValue("id")
	record.SewadarName = strings.TrimSpace(record.SewadarName)
	record.CounterName = strings.TrimSpace(record.CounterName)
	if record.SewadarName == "" || record.CounterName == "" {
		writeError(w, http.StatusBadRequest, "sewadarName and counterName must not be blank")
		return
	}
	if record.Timestamp == 0 {
		record.Timestamp = time.Now().UnixMilli()
	}

	h.store.UpsertRecord(r.Context(), record)
	writeJSON(w, http.StatusOK, record)
}

// HandleDelete removes a record; unknown ids are not an error
func (h *AttendanceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteRecord(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
