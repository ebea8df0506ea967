package recordshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perftrack/internal/domain/auth"
	"perftrack/internal/domain/record"
	"perftrack/internal/domain/scope"
	"perftrack/internal/transport/http/api"
	"perftrack/internal/transport/http/middleware"
)

type Handler struct {
	Store record.StoreAPI
}

func NewHandler(store record.StoreAPI) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/records", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermRecordsRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermRecordsRead)).Get("/{recordID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermRecordsWrite)).Patch("/{recordID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermRecordsWrite)).Delete("/{recordID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	records, err := h.Store.List(r.Context(), scope.ForUser(user),
		r.URL.Query().Get("branchId"), r.URL.Query().Get("groupId"), r.URL.Query().Get("period"))
	if err != nil {
		if errors.Is(err, scope.ErrForbidden) {
			api.Fail(w, http.StatusForbidden, "forbidden", "outside your scope", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "record_list_failed", "failed to list records", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Store.Get(r.Context(), scope.ForUser(user), chi.URLParam(r, "recordID"))
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			api.Fail(w, http.StatusNotFound, "record_not_found", "record not found", middleware.GetRequestID(r.Context()))
			return
		}
		if errors.Is(err, scope.ErrForbidden) {
			api.Fail(w, http.StatusForbidden, "forbidden", "outside your scope", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "record_get_failed", "failed to load record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

type updatePayload struct {
	ActualAttendance   *float64 `json:"actualAttendance"`
	RequiredAttendance *float64 `json:"requiredAttendance"`
	AnnotationScore    *float64 `json:"annotationScore"`
	OnsitePerformance  *float64 `json:"onsitePerformance"`
	TotalInspected     *int     `json:"totalInspected"`
	TotalErrors        *int     `json:"totalErrors"`
	DeductionPoints    *float64 `json:"deductionPoints"`
	DeductionReason    *string  `json:"deductionReason"`
	BonusPoints        *float64 `json:"bonusPoints"`
	BonusReason        *string  `json:"bonusReason"`
}

// handleUpdate patches scoring inputs on an existing record. The final score
// is never accepted from the client; the store recomputes it on write.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload updatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Store.Get(r.Context(), scope.ForUser(user), chi.URLParam(r, "recordID"))
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			api.Fail(w, http.StatusNotFound, "record_not_found", "record not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "record_get_failed", "failed to load record", middleware.GetRequestID(r.Context()))
		return
	}

	if payload.ActualAttendance != nil {
		rec.ActualAttendance = *payload.ActualAttendance
	}
	if payload.RequiredAttendance != nil {
		rec.RequiredAttendance = *payload.RequiredAttendance
	}
	if payload.AnnotationScore != nil {
		rec.AnnotationScore = *payload.AnnotationScore
	}
	if payload.OnsitePerformance != nil {
		rec.OnsitePerformance = *payload.OnsitePerformance
	}
	if payload.TotalInspected != nil {
		rec.TotalInspected = *payload.TotalInspected
	}
	if payload.TotalErrors != nil {
		rec.TotalErrors = *payload.TotalErrors
	}
	if payload.DeductionPoints != nil {
		rec.DeductionPoints = *payload.DeductionPoints
	}
	if payload.DeductionReason != nil {
		rec.DeductionReason = *payload.DeductionReason
	}
	if payload.BonusPoints != nil {
		rec.BonusPoints = *payload.BonusPoints
	}
	if payload.BonusReason != nil {
		rec.BonusReason = *payload.BonusReason
	}

	updated, err := h.Store.Update(r.Context(), *rec)
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			api.Fail(w, http.StatusNotFound, "record_not_found", "record not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "record_update_failed", "failed to update record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	recordID := chi.URLParam(r, "recordID")
	// Scope check first so a manager cannot delete records outside their branch.
	if _, err := h.Store.Get(r.Context(), scope.ForUser(user), recordID); err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			api.Fail(w, http.StatusNotFound, "record_not_found", "record not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "record_delete_failed", "failed to delete record", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.Delete(r.Context(), recordID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "record_delete_failed", "failed to delete record", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": recordID}, middleware.GetRequestID(r.Context()))
}
