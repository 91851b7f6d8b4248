package cats

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cat-registry/internal/middleware"
	"cat-registry/internal/platform/geo"
	"cat-registry/internal/platform/logger"
	"cat-registry/internal/ports/identity"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func RegisterRoutes(r chi.Router, svc *Service, idClient identity.Client, log logger.Logger) {
	h := &handler{svc: svc, identity: idClient, log: log}

	r.Route("/cats", func(cr chi.Router) {
		cr.Post("/", h.create)
		cr.Get("/", h.list)

		// Queries públicas, sin auth
		cr.Get("/area", h.listByArea)
		cr.Get("/owner/{ownerID}", h.listByOwner)

		cr.Get("/{catID}", h.getByID)

		// Mutaciones self-service (owner)
		cr.Put("/{catID}", h.update)
		cr.Delete("/{catID}", h.delete)
	})

	// Mutaciones administrativas: mismos updates/deletes, sin check de owner
	r.Route("/admin/cats", func(ar chi.Router) {
		ar.Put("/{catID}", h.updateAsAdmin)
		ar.Delete("/{catID}", h.deleteAsAdmin)
	})
}

type handler struct {
	svc      *Service
	identity identity.Client
	log      logger.Logger
}

type locationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type createCatRequest struct {
	Name       string            `json:"name"`
	Breed      string            `json:"breed"`
	Weight     float64           `json:"weight"`
	BirthDate  string            `json:"birth_date"` // YYYY-MM-DD opcional
	Location   locationPayload   `json:"location"`
	Attributes map[string]string `json:"attributes"`

	// Ignorado a propósito: el owner es siempre el caller autenticado.
	OwnerUserID string `json:"owner_user_id"`
}

type updateCatRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name       *string           `json:"name"`
	Breed      *string           `json:"breed"`
	Weight     *float64          `json:"weight"`
	BirthDate  *string           `json:"birth_date"` // YYYY-MM-DD
	Location   *locationPayload  `json:"location"`
	Attributes map[string]string `json:"attributes"`
}

type ownerResponse struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type catResponse struct {
	ID          string            `json:"id"`
	OwnerUserID string            `json:"owner_user_id"`
	Owner       *ownerResponse    `json:"owner"`
	Name        string            `json:"name"`
	Breed       string            `json:"breed"`
	Weight      float64           `json:"weight"`
	BirthDate   *time.Time        `json:"birth_date,omitempty"`
	Location    locationPayload   `json:"location"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createCatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	bd, err := parseBirthDate(req.BirthDate)
	if err != nil {
		http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Create(r.Context(), claims.UserID, CreateInput{
		Name:       req.Name,
		Breed:      req.Breed,
		Weight:     req.Weight,
		BirthDate:  bd,
		Lat:        req.Location.Lat,
		Lng:        req.Location.Lng,
		Attributes: req.Attributes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCat(w, r, http.StatusCreated, c, newOwnerLoader(h.identity))
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeCats(w, r, items)
}

func (h *handler) getByID(w http.ResponseWriter, r *http.Request) {
	catID := chi.URLParam(r, "catID")
	if _, err := uuid.Parse(catID); err != nil {
		http.Error(w, "invalid cat id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.GetByID(r.Context(), catID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCat(w, r, http.StatusOK, c, newOwnerLoader(h.identity))
}

func (h *handler) listByArea(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	trLat, err1 := parseCoord(q.Get("top_right_lat"))
	trLng, err2 := parseCoord(q.Get("top_right_lng"))
	blLat, err3 := parseCoord(q.Get("bottom_left_lat"))
	blLng, err4 := parseCoord(q.Get("bottom_left_lng"))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		http.Error(w, "top_right_lat, top_right_lng, bottom_left_lat and bottom_left_lng are required coordinates", http.StatusBadRequest)
		return
	}

	items, err := h.svc.ListByArea(r.Context(), geo.NewPoint(trLat, trLng), geo.NewPoint(blLat, blLng))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeCats(w, r, items)
}

func (h *handler) listByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(chi.URLParam(r, "ownerID"))
	if ownerID == "" {
		http.Error(w, "owner id required", http.StatusBadRequest)
		return
	}

	items, err := h.svc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeCats(w, r, items)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	catID := chi.URLParam(r, "catID")
	if _, err := uuid.Parse(catID); err != nil {
		http.Error(w, "invalid cat id", http.StatusBadRequest)
		return
	}

	in, err := decodeUpdate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.Update(r.Context(), catID, claims.UserID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCat(w, r, http.StatusOK, c, newOwnerLoader(h.identity))
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	catID := chi.URLParam(r, "catID")
	if _, err := uuid.Parse(catID); err != nil {
		http.Error(w, "invalid cat id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.Delete(r.Context(), catID, claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCat(w, r, http.StatusOK, c, newOwnerLoader(h.identity))
}

func (h *handler) updateAsAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	catID := chi.URLParam(r, "catID")
	if _, err := uuid.Parse(catID); err != nil {
		http.Error(w, "invalid cat id", http.StatusBadRequest)
		return
	}

	in, err := decodeUpdate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.svc.UpdateAsAdmin(r.Context(), catID, claims.Role, in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCat(w, r, http.StatusOK, c, newOwnerLoader(h.identity))
}

func (h *handler) deleteAsAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	catID := chi.URLParam(r, "catID")
	if _, err := uuid.Parse(catID); err != nil {
		http.Error(w, "invalid cat id", http.StatusBadRequest)
		return
	}

	c, err := h.svc.DeleteAsAdmin(r.Context(), catID, claims.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeCat(w, r, http.StatusOK, c, newOwnerLoader(h.identity))
}

func decodeUpdate(r *http.Request) (UpdateInput, error) {
	var req updateCatRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return UpdateInput{}, errors.New("invalid json")
	}

	in := UpdateInput{
		Name:       req.Name,
		Breed:      req.Breed,
		Weight:     req.Weight,
		Attributes: req.Attributes,
	}

	if req.BirthDate != nil {
		t, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return UpdateInput{}, errors.New("birth_date must be YYYY-MM-DD")
		}
		in.BirthDate = &t
	}

	if req.Location != nil {
		lat := req.Location.Lat
		lng := req.Location.Lng
		in.Lat = &lat
		in.Lng = &lng
	}

	return in, nil
}

func parseBirthDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseCoord(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing coordinate")
	}
	return strconv.ParseFloat(s, 64)
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "cat not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeCats resuelve el owner de cada registro con un loader por request:
// dueños repetidos cuestan un lookup, y si el auth service falla, solo el
// campo owner de esos registros sale en null (los hermanos no se tocan).
func (h *handler) writeCats(w http.ResponseWriter, r *http.Request, items []Cat) {
	loader := newOwnerLoader(h.identity)

	out := make([]catResponse, 0, len(items))
	for _, c := range items {
		out = append(out, h.toCatResponse(r, c, loader))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) writeCat(w http.ResponseWriter, r *http.Request, status int, c Cat, loader *ownerLoader) {
	writeJSON(w, status, h.toCatResponse(r, c, loader))
}

func (h *handler) toCatResponse(r *http.Request, c Cat, loader *ownerLoader) catResponse {
	resp := catResponse{
		ID:          c.ID,
		OwnerUserID: c.OwnerUserID,
		Name:        c.Name,
		Breed:       c.Breed,
		Weight:      c.Weight,
		BirthDate:   c.BirthDate,
		Location: locationPayload{
			Lat: geo.Lat(c.Location),
			Lng: geo.Lng(c.Location),
		},
		Attributes: c.Attributes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}

	// Stitching del owner contra el auth service (lookup público, sin token).
	if u, ok := loader.Resolve(r.Context(), c.OwnerUserID); ok {
		resp.Owner = &ownerResponse{
			ID:       u.ID,
			UserName: u.UserName,
			Email:    u.Email,
			Role:     u.Role,
		}
	} else if h.log != nil {
		h.log.Warn("owner lookup failed", map[string]any{
			"cat_id":   c.ID,
			"owner_id": c.OwnerUserID,
		})
	}

	return resp
}

// writeJSON está duplicado a propósito en handlers de distintos módulos
// (cats/users) para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
