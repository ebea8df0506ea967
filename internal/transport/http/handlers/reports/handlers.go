package reportshandler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"perftrack/internal/domain/auth"
	"perftrack/internal/domain/record"
	"perftrack/internal/domain/scope"
	"perftrack/internal/transport/http/api"
	"perftrack/internal/transport/http/middleware"
)

type Handler struct {
	Records record.StoreAPI
}

func NewHandler(records record.StoreAPI) *Handler {
	return &Handler{Records: records}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/performance.pdf", h.handleRecordsPDF)
	})
}

// handleRecordsPDF renders the scoped performance records for one period as a
// printable summary.
func (h *Handler) handleRecordsPDF(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "period required", middleware.GetRequestID(r.Context()))
		return
	}

	records, err := h.Records.List(r.Context(), scope.ForUser(user),
		r.URL.Query().Get("branchId"), r.URL.Query().Get("groupId"), period)
	if err != nil {
		if errors.Is(err, scope.ErrForbidden) {
			api.Fail(w, http.StatusForbidden, "forbidden", "outside your scope", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to load records", middleware.GetRequestID(r.Context()))
		return
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Records")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s    Records: %d", period, len(records)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 8, "Employee", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Attendance", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Annotation", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Onsite", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Inspected / Errors", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Final Score", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, rec := range records {
		pdf.CellFormat(60, 7, rec.EmployeeName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.0f / %.0f", rec.ActualAttendance, rec.RequiredAttendance), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.1f", rec.AnnotationScore), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.1f", rec.OnsitePerformance), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d / %d", rec.TotalInspected, rec.TotalErrors), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", rec.FinalScore), "1", 1, "R", false, 0, "")
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=performance-%s.pdf", period))
	if err := pdf.Output(w); err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
	}
}
