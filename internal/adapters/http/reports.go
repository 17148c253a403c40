package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kirillkom/medguard/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) listReports(w http.ResponseWriter, r *http.Request) {
	var filter domain.ReportFilter
	if raw := r.URL.Query().Get("severity"); raw != "" {
		severity, ok := domain.ParseSeverity(raw)
		if !ok {
			writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "list reports", fmt.Errorf("unknown severity %q", raw)))
			return
		}
		filter.Severity = severity
	}
	reports, err := rt.services.Reports.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (rt *Router) submitReport(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	var submission domain.ReportSubmission
	if err := decodeJSON(r, &submission); err != nil {
		writeError(w, r, err)
		return
	}
	report, err := rt.services.Reports.Submit(r.Context(), user, submission, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (rt *Router) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := rt.services.Reports.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) shareReport(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	id := r.PathValue("id")
	if err := rt.services.Reports.Share(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "shared", "report_id": id})
}

func (rt *Router) exportReports(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := rt.services.Reports.Export(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	if buf.Len() == 0 {
		writeError(w, r, errors.New("export produced an empty workbook"))
		return
	}

	filename := fmt.Sprintf("MedGuard_Logs_%s.xlsx", rt.now().Format(domain.IncidentDateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
