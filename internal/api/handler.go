package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"clinicd/m/domain"
	"clinicd/m/internal/auth"
	"clinicd/m/internal/billing"
	"clinicd/m/internal/reports"
	"clinicd/m/internal/schema"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
	ctxClaims ctxKey = "claims"
)

// Error codes returned in the "error" field of failure responses.
const (
	codeValidation        = "ValidationError"
	codeNotFound          = "NotFound"
	codeConflict          = "Conflict"
	codeForbidden         = "Forbidden"
	codeUnauthenticated   = "Unauthenticated"
	codeInsufficientStock = "InsufficientStock"
	codeInternal          = "InternalError"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db          *sqlx.DB
	log         *zap.Logger
	tokens      *auth.Manager
	billing     *billing.Service
	reports     *reports.Generator
	corsOrigins []string
}

// New constructs a Handler.
func New(db *sqlx.DB, log *zap.Logger, tokens *auth.Manager, corsOrigins []string) *Handler {
	return &Handler{
		db:          db,
		log:         log,
		tokens:      tokens,
		billing:     billing.New(db, log),
		reports:     reports.New(db),
		corsOrigins: corsOrigins,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/logout", h.logout)
			protected.Get("/me", h.me)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/patients", func(r chi.Router) {
			r.Post("/", h.createPatient)
			r.Get("/", h.listPatients)
			r.Get("/{id}", h.getPatient)
			r.Put("/{id}", h.updatePatient)
			r.Delete("/{id}", h.deletePatient)
		})

		pr.Route("/doctors", func(r chi.Router) {
			r.Post("/", h.createDoctor)
			r.Get("/", h.listDoctors)
			r.Get("/{id}", h.getDoctor)
			r.Put("/{id}", h.updateDoctor)
			r.Delete("/{id}", h.deleteDoctor)
		})

		pr.Route("/appointments", func(r chi.Router) {
			r.Post("/", h.createAppointment)
			r.Get("/", h.listAppointments)
			r.Get("/{id}", h.getAppointment)
			r.Put("/{id}", h.updateAppointment)
			r.Delete("/{id}", h.deleteAppointment)
		})

		pr.Route("/inventory", func(r chi.Router) {
			r.Post("/", h.createInventoryItem)
			r.Get("/", h.listInventoryItems)
			r.Get("/{id}", h.getInventoryItem)
			r.Put("/{id}", h.updateInventoryItem)
			r.Delete("/{id}", h.deleteInventoryItem)
		})

		pr.Route("/bills", func(r chi.Router) {
			r.Post("/", h.createBill)
			r.Get("/", h.listBills)
			r.Get("/{id}", h.getBill)
			r.Put("/{id}", h.updateBill)
			r.Delete("/{id}", h.deleteBill)
		})

		pr.Get("/reports/generate", h.generateReport)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Middleware

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("http request",
			zap.Int("status", ww.Status()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			h.respondError(w, http.StatusUnauthorized, codeUnauthenticated, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		claims, err := h.tokens.Verify(r.Context(), tokenString, auth.TokenAccess)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrTokenRevoked) {
				msg = "token has been revoked"
			}
			h.respondError(w, http.StatusUnauthorized, codeUnauthenticated, msg)
			return
		}
		ctx := contextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates doctor and inventory mutations. It writes the 403
// itself and reports whether the caller may proceed.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	role, _ := r.Context().Value(ctxRole).(string)
	if role == domain.RoleAdmin {
		return true
	}
	h.respondError(w, http.StatusForbidden, codeForbidden, "admin access required")
	return false
}

func contextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID)
	ctx = context.WithValue(ctx, ctxRole, claims.Role)
	return context.WithValue(ctx, ctxClaims, claims)
}

func userIDFromContext(r *http.Request) int64 {
	if val := r.Context().Value(ctxUserID); val != nil {
		if id, ok := val.(int64); ok {
			return id
		}
	}
	return 0
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

type errorResponse struct {
	Code    string             `json:"error"`
	Message string             `json:"message"`
	Details schema.FieldErrors `json:"details,omitempty"`
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Code: code, Message: message})
}

func (h *Handler) respondValidation(w http.ResponseWriter, fe schema.FieldErrors) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Code:    codeValidation,
		Message: "invalid input",
		Details: fe,
	})
}

// writeError translates a domain failure into the response taxonomy.
// Unexpected errors are logged in full and surface as a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		fieldErrs schema.FieldErrors
		notFound  *billing.NotFoundError
		noStock   *billing.InsufficientStockError
	)
	switch {
	case errors.As(err, &fieldErrs):
		h.respondValidation(w, fieldErrs)
	case errors.As(err, &notFound):
		h.respondError(w, http.StatusNotFound, codeNotFound, notFound.Error())
	case errors.As(err, &noStock):
		h.respondError(w, http.StatusBadRequest, codeInsufficientStock, noStock.Error())
	default:
		h.log.Error("internal error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
