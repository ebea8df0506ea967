package generationhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"perftrack/internal/domain/auth"
	"perftrack/internal/domain/generation"
	"perftrack/internal/domain/inspection"
	"perftrack/internal/domain/org"
	"perftrack/internal/domain/scope"
	"perftrack/internal/domain/scoring"
	"perftrack/internal/transport/http/api"
	"perftrack/internal/transport/http/middleware"
)

// Handler keeps generation sessions in memory. A session is scratch state for
// one operator's run; losing it on restart only means re-loading the roster,
// so there is no point persisting it.
type Handler struct {
	Orchestrator *generation.Orchestrator
	Org          *org.Service
	Inspections  *inspection.Service
	Defaults     generation.Defaults
	Weights      scoring.Weights

	mu       sync.Mutex
	sessions map[string]*generation.Session
}

func NewHandler(orch *generation.Orchestrator, orgService *org.Service, inspections *inspection.Service, defaults generation.Defaults, weights scoring.Weights) *Handler {
	return &Handler{
		Orchestrator: orch,
		Org:          orgService,
		Inspections:  inspections,
		Defaults:     defaults,
		Weights:      weights,
		sessions:     make(map[string]*generation.Session),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/generation", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermGenerationRun))
		r.Post("/sessions", h.handleCreateSession)
		r.Get("/sessions/{sessionID}", h.handleGetSession)
		r.Delete("/sessions/{sessionID}", h.handleDeleteSession)
		r.Post("/sessions/{sessionID}/roster", h.handleLoadRoster)
		r.Patch("/sessions/{sessionID}/rows/{employeeID}", h.handleEditRow)
		r.Post("/sessions/{sessionID}/batch", h.handleApplyBatch)
		r.Get("/sessions/{sessionID}/preview", h.handlePreview)
		r.Post("/sessions/{sessionID}/commit", h.handleCommit)
	})
}

// session looks up the operator's session. All session access goes through
// h.mu, which also serializes mutation of the session itself.
func (h *Handler) session(r *http.Request) (*generation.Session, error) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return nil, scope.ErrForbidden
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[chi.URLParam(r, "sessionID")]
	if !ok {
		return nil, generation.ErrSessionNotFound
	}
	if sess.OwnerID != user.UserID {
		return nil, generation.ErrSessionNotOwned
	}
	return sess, nil
}

func (h *Handler) failSession(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, generation.ErrSessionNotFound):
		api.Fail(w, http.StatusNotFound, "session_not_found", "generation session not found", reqID)
	case errors.Is(err, generation.ErrSessionNotOwned):
		api.Fail(w, http.StatusForbidden, "forbidden", "session belongs to another operator", reqID)
	default:
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
	}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	sess := generation.NewSession(uuid.NewString(), user.UserID)
	h.mu.Lock()
	h.sessions[sess.ID] = sess
	h.mu.Unlock()

	api.Created(w, map[string]string{"sessionId": sess.ID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.failSession(w, r, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	api.Success(w, map[string]any{
		"sessionId": sess.ID,
		"branchId":  sess.BranchID,
		"groupId":   sess.GroupID,
		"period":    sess.Period,
		"rows":      sess.Rows(),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.failSession(w, r, err)
		return
	}

	h.mu.Lock()
	delete(h.sessions, sess.ID)
	h.mu.Unlock()
	api.Success(w, map[string]string{"sessionId": sess.ID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLoadRoster(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.failSession(w, r, err)
		return
	}
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		GroupID string `json:"groupId"`
		Period  string `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.GroupID == "" || payload.Period == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "group id and period required", middleware.GetRequestID(r.Context()))
		return
	}
	if _, _, err := inspection.PeriodRange(payload.Period); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "period must be YYYY-MM", middleware.GetRequestID(r.Context()))
		return
	}

	group, err := h.Org.GetGroup(r.Context(), payload.GroupID)
	if err != nil {
		if errors.Is(err, org.ErrGroupNotFound) {
			api.Fail(w, http.StatusNotFound, "group_not_found", "group not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "roster_load_failed", "failed to load group", middleware.GetRequestID(r.Context()))
		return
	}
	if err := scope.ForUser(user).CanUseBranch(group.BranchID); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "outside your branch scope", middleware.GetRequestID(r.Context()))
		return
	}

	employees, err := h.Org.GroupRoster(r.Context(), group.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "roster_load_failed", "failed to load group roster", middleware.GetRequestID(r.Context()))
		return
	}

	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}
	totals, err := h.Inspections.TotalsForPeriod(r.Context(), ids, payload.Period)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "roster_load_failed", "failed to load inspection totals", middleware.GetRequestID(r.Context()))
		return
	}

	h.mu.Lock()
	sess.LoadRoster(group.BranchID, group.ID, payload.Period, employees, totals, h.Defaults, h.Weights)
	rows := sess.Rows()
	h.mu.Unlock()

	api.Success(w, map[string]any{
		"sessionId": sess.ID,
		"branchId":  group.BranchID,
		"groupId":   group.ID,
		"period":    payload.Period,
		"rows":      rows,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEditRow(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.failSession(w, r, err)
		return
	}

	var patch generation.RowPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	h.mu.Lock()
	err = sess.EditRow(chi.URLParam(r, "employeeID"), patch)
	rows := sess.Rows()
	h.mu.Unlock()
	if err != nil {
		api.Fail(w, http.StatusNotFound, "row_not_found", "employee not in the loaded roster", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApplyBatch(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.failSession(w, r, err)
		return
	}

	var values generation.BatchValues
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	h.mu.Lock()
	touched := sess.ApplyBatch(values)
	rows := sess.Rows()
	h.mu.Unlock()

	api.Success(w, map[string]any{"touched": touched, "rows": rows}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.failSession(w, r, err)
		return
	}

	h.mu.Lock()
	preview := sess.Preview()
	h.mu.Unlock()
	api.Success(w, preview, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.failSession(w, r, err)
		return
	}

	h.mu.Lock()
	summary, err := h.Orchestrator.Commit(r.Context(), sess)
	h.mu.Unlock()
	if err != nil {
		switch {
		case errors.Is(err, generation.ErrScopeNotChosen):
			api.Fail(w, http.StatusBadRequest, "scope_not_chosen", "load a group and period before committing", middleware.GetRequestID(r.Context()))
		case errors.Is(err, generation.ErrNothingSelected):
			api.Fail(w, http.StatusBadRequest, "nothing_selected", "no employees selected for generation", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "commit_failed", "failed to commit generation run", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}
