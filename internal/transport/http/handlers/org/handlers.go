package orghandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perftrack/internal/domain/auth"
	"perftrack/internal/domain/org"
	"perftrack/internal/domain/scope"
	"perftrack/internal/transport/http/api"
	"perftrack/internal/transport/http/middleware"
)

type Handler struct {
	Service *org.Service
}

func NewHandler(service *org.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/org", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/branches", h.handleListBranches)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Post("/branches", h.handleCreateBranch)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Put("/branches/{branchID}", h.handleUpdateBranch)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Delete("/branches/{branchID}", h.handleDeleteBranch)

		r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/groups", h.handleListGroups)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Post("/groups", h.handleCreateGroup)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Put("/groups/{groupID}", h.handleUpdateGroup)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Delete("/groups/{groupID}", h.handleDeleteGroup)

		r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/employees", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Post("/employees", h.handleCreateEmployee)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Put("/employees/{employeeID}", h.handleUpdateEmployee)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Delete("/employees/{employeeID}", h.handleDeleteEmployee)
	})
}

func userScope(r *http.Request) (scope.Scope, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return scope.Scope{}, false
	}
	return scope.ForUser(user), true
}

func failScope(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, scope.ErrForbidden) {
		api.Fail(w, http.StatusForbidden, "forbidden", "outside your branch scope", middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "scope_error", "failed to resolve scope", middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListBranches(w http.ResponseWriter, r *http.Request) {
	sc, ok := userScope(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	branches, err := h.Service.ListBranches(r.Context(), sc)
	if err != nil {
		failScope(w, r, err)
		return
	}
	api.Success(w, branches, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "branch name required", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateBranch(r.Context(), payload.Name, payload.Code)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "branch_create_failed", "failed to create branch", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateBranch(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	var payload struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "branch name required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.UpdateBranch(r.Context(), branchID, payload.Name, payload.Code); err != nil {
		if errors.Is(err, org.ErrBranchNotFound) {
			api.Fail(w, http.StatusNotFound, "branch_not_found", "branch not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "branch_update_failed", "failed to update branch", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": branchID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteBranch(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	if err := h.Service.DeleteBranch(r.Context(), branchID); err != nil {
		if errors.Is(err, org.ErrBranchNotFound) {
			api.Fail(w, http.StatusNotFound, "branch_not_found", "branch not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "branch_delete_failed", "failed to delete branch", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": branchID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	sc, ok := userScope(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	groups, err := h.Service.ListGroups(r.Context(), sc, r.URL.Query().Get("branchId"))
	if err != nil {
		failScope(w, r, err)
		return
	}
	api.Success(w, groups, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		BranchID  string `json:"branchId"`
		Name      string `json:"name"`
		ManagerID string `json:"managerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" || payload.BranchID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "group name and branch required", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateGroup(r.Context(), payload.BranchID, payload.Name, payload.ManagerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "group_create_failed", "failed to create group", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	var payload struct {
		Name      string `json:"name"`
		ManagerID string `json:"managerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "group name required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.UpdateGroup(r.Context(), groupID, payload.Name, payload.ManagerID); err != nil {
		if errors.Is(err, org.ErrGroupNotFound) {
			api.Fail(w, http.StatusNotFound, "group_not_found", "group not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "group_update_failed", "failed to update group", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": groupID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if err := h.Service.DeleteGroup(r.Context(), groupID); err != nil {
		if errors.Is(err, org.ErrGroupNotFound) {
			api.Fail(w, http.StatusNotFound, "group_not_found", "group not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "group_delete_failed", "failed to delete group", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": groupID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	sc, ok := userScope(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if err := sc.CanManageRoster(); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "no roster access", middleware.GetRequestID(r.Context()))
		return
	}

	employees, err := h.Service.ListEmployees(r.Context(), sc,
		r.URL.Query().Get("branchId"), r.URL.Query().Get("groupId"))
	if err != nil {
		failScope(w, r, err)
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		BranchID string `json:"branchId"`
		GroupID  string `json:"groupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" || payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "name, email and password required", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Role == "" {
		payload.Role = auth.RoleEmployee
	}
	if payload.Role != auth.RoleAdmin && payload.Role != auth.RoleManager && payload.Role != auth.RoleEmployee {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unknown role", middleware.GetRequestID(r.Context()))
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateEmployee(r.Context(), org.Employee{
		Name:     payload.Name,
		Email:    payload.Email,
		Role:     payload.Role,
		BranchID: payload.BranchID,
		GroupID:  payload.GroupID,
		Active:   true,
	}, hash)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		BranchID string `json:"branchId"`
		GroupID  string `json:"groupId"`
		Active   *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employee name required", middleware.GetRequestID(r.Context()))
		return
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}

	err := h.Service.UpdateEmployee(r.Context(), employeeID, org.Employee{
		Name:     payload.Name,
		Email:    payload.Email,
		Role:     payload.Role,
		BranchID: payload.BranchID,
		GroupID:  payload.GroupID,
		Active:   active,
	})
	if err != nil {
		if errors.Is(err, org.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": employeeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if err := h.Service.DeleteEmployee(r.Context(), employeeID); err != nil {
		if errors.Is(err, org.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": employeeID}, middleware.GetRequestID(r.Context()))
}
