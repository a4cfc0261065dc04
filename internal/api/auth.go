package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"clinicd/m/domain"
	"clinicd/m/internal/auth"
	"clinicd/m/internal/schema"
)

type authResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         domain.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var payload schema.UserPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if fe := payload.Validate(); fe != nil {
		h.respondValidation(w, fe)
		return
	}

	role := domain.RoleReceptionist
	if payload.Role != nil {
		role = *payload.Role
	}
	email := strings.ToLower(*payload.Email)

	hashed, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
	if err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.db.ExecContext(r.Context(),
		`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		*payload.Username, email, string(hashed), role)
	if err != nil {
		if isUniqueViolation(err) {
			h.respondError(w, http.StatusConflict, codeConflict, "user with this email or username already exists")
			return
		}
		h.writeError(w, err)
		return
	}
	userID, _ := res.LastInsertId()

	var user domain.User
	if err := h.db.GetContext(r.Context(), &user,
		`SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE id = ?`, userID); err != nil {
		h.writeError(w, err)
		return
	}

	access, refresh, err := h.tokens.IssuePair(user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{AccessToken: access, RefreshToken: refresh, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	var user domain.User
	err := h.db.GetContext(r.Context(), &user,
		`SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?`,
		strings.ToLower(req.Email))
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusUnauthorized, codeUnauthenticated, "invalid credentials")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.respondError(w, http.StatusUnauthorized, codeUnauthenticated, "invalid credentials")
		return
	}

	access, refresh, err := h.tokens.IssuePair(user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{AccessToken: access, RefreshToken: refresh, User: user})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		h.respondError(w, http.StatusBadRequest, codeValidation, "refresh_token is required")
		return
	}

	claims, err := h.tokens.Verify(r.Context(), req.RefreshToken, auth.TokenRefresh)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, codeUnauthenticated, "invalid refresh token")
		return
	}

	var user domain.User
	err = h.db.GetContext(r.Context(), &user,
		`SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE id = ?`, claims.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusUnauthorized, codeUnauthenticated, "user no longer exists")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	access, err := h.tokens.IssueAccess(user)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// logout revokes the presented access token for its remaining lifetime
// and, when supplied, the refresh token too.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := r.Context().Value(ctxClaims).(*auth.Claims)
	if claims == nil {
		h.respondError(w, http.StatusUnauthorized, codeUnauthenticated, "missing token")
		return
	}
	if err := h.tokens.Revoke(r.Context(), claims); err != nil {
		h.writeError(w, err)
		return
	}
	if r.Body != nil {
		var req logoutRequest
		if err := decodeJSON(r, &req); err == nil && req.RefreshToken != "" {
			if refreshClaims, err := h.tokens.Verify(r.Context(), req.RefreshToken, auth.TokenRefresh); err == nil {
				if err := h.tokens.Revoke(r.Context(), refreshClaims); err != nil {
					h.writeError(w, err)
					return
				}
			}
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "successfully logged out"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	err := h.db.GetContext(r.Context(), &user,
		`SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE id = ?`,
		userIDFromContext(r))
	if errors.Is(err, sql.ErrNoRows) {
		h.respondError(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
