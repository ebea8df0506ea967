package authhandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"perftrack/internal/domain/auth"
	"perftrack/internal/transport/http/api"
	"perftrack/internal/transport/http/middleware"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	DB     *pgxpool.Pool
	Secret string
}

func NewHandler(db *pgxpool.Pool, secret string) *Handler {
	return &Handler{DB: db, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	BranchID string `json:"branchId,omitempty"`
	GroupID  string `json:"groupId,omitempty"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	var id, name, role, branchID, groupID, hash string
	err := h.DB.QueryRow(r.Context(), `
    SELECT id, name, role, COALESCE(branch_id::text, ''), COALESCE(group_id::text, ''), password_hash
    FROM users
    WHERE email = $1 AND active
  `, payload.Email).Scan(&id, &name, &role, &branchID, &groupID, &hash)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   id,
		Role:     role,
		BranchID: branchID,
		GroupID:  groupID,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, loginResponse{
		Token:    token,
		UserID:   id,
		Name:     name,
		Role:     role,
		BranchID: branchID,
		GroupID:  groupID,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var name, email string
	err := h.DB.QueryRow(r.Context(),
		"SELECT name, email FROM users WHERE id = $1", user.UserID).Scan(&name, &email)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"userId":   user.UserID,
		"name":     name,
		"email":    email,
		"role":     user.Role,
		"branchId": user.BranchID,
		"groupId":  user.GroupID,
	}, middleware.GetRequestID(r.Context()))
}
