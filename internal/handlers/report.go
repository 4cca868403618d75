package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"sewa-attendance/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the AI summary and the per-day exports
type ReportHandler struct {
	desk       services.AttendanceDesk
	summarizer services.Summarizer
	logger     *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(desk services.AttendanceDesk, summarizer services.Summarizer, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{desk: desk, summarizer: summarizer, logger: logger}
}

// Register adds the report routes to mux
func (h *ReportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/report", h.HandleShareText)
	mux.HandleFunc("GET /api/report.xlsx", h.HandleWorkbook)
}

// HandleSummary returns the AI summary; generation problems come back as text, not errors
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	sheet := h.desk.DaySheet(r.Context(), date)
	writeJSON(w, http.StatusOK, map[string]string{
		"date":    date,
		"summary": h.summarizer.Generate(r.Context(), date, sheet.Records),
	})
}

func (h *ReportHandler) HandleShareText(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	sheet := h.desk.DaySheet(r.Context(), date)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(services.ShareText(date, sheet.Records)))
}

func (h *ReportHandler) HandleWorkbook(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	sheet := h.desk.DaySheet(r.Context(), date)
	buf, filename, err := services.Workbook(date, sheet.Records)
	if err != nil {
		h.logger.Error("workbook export failed", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to export workbook")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
