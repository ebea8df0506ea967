package inspectionhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perftrack/internal/domain/auth"
	"perftrack/internal/domain/inspection"
	"perftrack/internal/domain/org"
	"perftrack/internal/domain/scope"
	"perftrack/internal/transport/http/api"
	"perftrack/internal/transport/http/middleware"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	Service *inspection.Service
	Org     *org.Service
}

func NewHandler(service *inspection.Service, orgService *org.Service) *Handler {
	return &Handler{Service: service, Org: orgService}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/inspections", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermInspectionsImport)).Post("/import", h.handleImportText)
		r.With(middleware.RequirePermission(auth.PermInspectionsImport)).Post("/import/workbook", h.handleImportWorkbook)
		r.With(middleware.RequirePermission(auth.PermInspectionsRead)).Get("/", h.handleList)
	})
}

// resolveImportBranch checks the caller may import into the target branch and
// loads that branch's name index for reconciliation.
func (h *Handler) resolveImportBranch(w http.ResponseWriter, r *http.Request, branchID string) (map[string]string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	if branchID == "" {
		branchID = user.BranchID
	}
	if branchID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "branch id required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	if err := scope.ForUser(user).CanUseBranch(branchID); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "outside your branch scope", middleware.GetRequestID(r.Context()))
		return nil, false
	}

	names, err := h.Org.EmployeeNamesByBranch(r.Context(), branchID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to load branch roster", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return names, true
}

func (h *Handler) runImport(w http.ResponseWriter, r *http.Request, branchID string, rows [][]string) {
	names, ok := h.resolveImportBranch(w, r, branchID)
	if !ok {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if branchID == "" {
		branchID = user.BranchID
	}

	result, err := h.Service.Import(r.Context(), branchID, rows, names)
	if err != nil {
		if errors.Is(err, inspection.ErrEmptySubmission) {
			api.Fail(w, http.StatusBadRequest, "empty_submission", "no data rows in submission", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to import inspections", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleImportText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		BranchID string `json:"branchId"`
		Text     string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Text == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "pasted text required", middleware.GetRequestID(r.Context()))
		return
	}
	h.runImport(w, r, payload.BranchID, inspection.SplitText(payload.Text))
}

func (h *Handler) handleImportWorkbook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "multipart form required", middleware.GetRequestID(r.Context()))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "workbook file required", middleware.GetRequestID(r.Context()))
		return
	}
	defer file.Close()

	rows, err := inspection.ParseWorkbook(file)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_workbook", "could not read workbook", middleware.GetRequestID(r.Context()))
		return
	}
	h.runImport(w, r, r.FormValue("branchId"), rows)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var start, end time.Time
	if raw := r.URL.Query().Get("period"); raw != "" {
		var err error
		start, end, err = inspection.PeriodRange(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_period", "period must be YYYY-MM", middleware.GetRequestID(r.Context()))
			return
		}
	} else if r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != "" {
		var err error
		start, err = time.Parse("2006-01-02", r.URL.Query().Get("from"))
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "from must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
			return
		}
		end, err = time.Parse("2006-01-02", r.URL.Query().Get("to"))
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "to must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
			return
		}
	} else {
		// Default to the current calendar month.
		now := time.Now().UTC()
		start, end, _ = inspection.PeriodRange(now.Format("2006-01"))
	}

	aggregates, err := h.Service.List(r.Context(), scope.ForUser(user), r.URL.Query().Get("branchId"), start, end)
	if err != nil {
		if errors.Is(err, scope.ErrForbidden) {
			api.Fail(w, http.StatusForbidden, "forbidden", "outside your branch scope", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list inspections", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, aggregates, middleware.GetRequestID(r.Context()))
}
