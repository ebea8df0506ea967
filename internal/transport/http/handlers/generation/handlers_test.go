package generationhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"perftrack/internal/domain/auth"
	"perftrack/internal/domain/generation"
	"perftrack/internal/domain/record"
	"perftrack/internal/domain/scope"
	"perftrack/internal/domain/scoring"
	"perftrack/internal/transport/http/middleware"
)

type nopRecordStore struct{}

func (nopRecordStore) Upsert(_ context.Context, rec record.PerformanceRecord) (record.PerformanceRecord, error) {
	return rec, nil
}
func (nopRecordStore) Get(context.Context, scope.Scope, string) (*record.PerformanceRecord, error) {
	return nil, record.ErrRecordNotFound
}
func (nopRecordStore) List(context.Context, scope.Scope, string, string, string) ([]record.PerformanceRecord, error) {
	return nil, nil
}
func (nopRecordStore) Update(_ context.Context, rec record.PerformanceRecord) (record.PerformanceRecord, error) {
	return rec, nil
}
func (nopRecordStore) Delete(context.Context, string) error { return nil }

const testSecret = "test-secret"

func testRouter(t *testing.T) (*chi.Mux, *Handler) {
	t.Helper()
	handler := NewHandler(
		generation.NewOrchestrator(nopRecordStore{}),
		nil, nil,
		generation.Defaults{RequiredAttendance: 22, OnsitePerformance: 3, AnnotationScore: 80},
		scoring.Weights{Attendance: 20, Annotation: 20, Onsite: 20, Accuracy: 40},
	)
	router := chi.NewRouter()
	router.Use(middleware.Auth(testSecret))
	router.Route("/api/v1", handler.RegisterRoutes)
	return router, handler
}

func authedRequest(t *testing.T, method, target, body, userID string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: userID, Role: auth.RoleManager, BranchID: "b1"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func createSession(t *testing.T, router *chi.Mux, userID string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/v1/generation/sessions", "", userID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			SessionID string `json:"sessionId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return envelope.Data.SessionID
}

func TestCreateSessionRequiresAuth(t *testing.T) {
	router, _ := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/generation/sessions", strings.NewReader("{}")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionOwnershipEnforced(t *testing.T) {
	router, _ := testRouter(t)
	sessionID := createSession(t, router, "mgr-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/generation/sessions/"+sessionID, "", "mgr-2"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another operator, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/generation/sessions/"+sessionID, "", "mgr-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the owner, got %d", rec.Code)
	}
}

func TestCommitWithoutRosterRejected(t *testing.T) {
	router, _ := testRouter(t)
	sessionID := createSession(t, router, "mgr-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodPost, "/api/v1/generation/sessions/"+sessionID+"/commit", "", "mgr-1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before a roster is loaded, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "scope_not_chosen") {
		t.Fatalf("expected scope_not_chosen error, got %s", rec.Body.String())
	}
}

func TestUnknownSessionReturnsNotFound(t *testing.T) {
	router, _ := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/generation/sessions/does-not-exist", "", "mgr-1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteSessionRemovesIt(t *testing.T) {
	router, _ := testRouter(t)
	sessionID := createSession(t, router, "mgr-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodDelete, "/api/v1/generation/sessions/"+sessionID, "", "mgr-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, http.MethodGet, "/api/v1/generation/sessions/"+sessionID, "", "mgr-1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
