package api

import (
	"errors"
	"net/http"

	"clinicd/m/internal/reports"
)

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("report_type")
	if reportType == "" {
		h.respondError(w, http.StatusBadRequest, codeValidation, "report_type parameter is required")
		return
	}

	report, err := h.reports.Generate(r.Context(), reportType,
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		if errors.Is(err, reports.ErrUnknownReportType) || errors.Is(err, reports.ErrBadDateFilter) {
			h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
