package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cat-registry/internal/middleware"
	"cat-registry/internal/ports/identity"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	h := &handler{svc: svc}

	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", h.list)
		ur.Post("/", h.register)
		ur.Get("/{userID}", h.getByID)
	})

	r.Post("/auth/login", h.login)

	// Cuenta propia: el target lo decide el auth service a partir del token
	r.Put("/me", h.updateSelf)
	r.Delete("/me", h.deleteSelf)

	// Variantes admin: target explícito, sin forwarding de token
	r.Route("/admin/users", func(ar chi.Router) {
		ar.Put("/{userID}", h.updateAsAdmin)
		ar.Delete("/{userID}", h.deleteAsAdmin)
	})
}

type handler struct {
	svc *Service
}

type userPayload struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) getByID(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	msg, err := h.svc.Register(r.Context(), toInput(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *handler) updateSelf(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.Token) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	msg, err := h.svc.UpdateSelf(r.Context(), claims.Token, toInput(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *handler) deleteSelf(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.Token) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// El body es opcional: algunos clients mandan el user completo.
	var req userPayload
	_ = json.NewDecoder(r.Body).Decode(&req)

	msg, err := h.svc.DeleteSelf(r.Context(), claims.Token, toInput(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *handler) updateAsAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req userPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	msg, err := h.svc.UpdateAsAdmin(r.Context(), claims.Role, chi.URLParam(r, "userID"), toInput(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *handler) deleteAsAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	msg, err := h.svc.DeleteAsAdmin(r.Context(), claims.Role, chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func toInput(p userPayload) identity.UserInput {
	return identity.UserInput{
		UserName: strings.TrimSpace(p.UserName),
		Email:    strings.TrimSpace(p.Email),
		Password: p.Password,
	}
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	case errors.Is(err, ErrUserNotUpdated):
		http.Error(w, "user not updated", http.StatusBadGateway)
	case errors.Is(err, ErrUserNotDeleted):
		http.Error(w, "user not deleted", http.StatusBadGateway)
	default:
		http.Error(w, "auth service unavailable", http.StatusBadGateway)
	}
}

// writeJSON está duplicado a propósito en handlers de distintos módulos
// (cats/users) para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
