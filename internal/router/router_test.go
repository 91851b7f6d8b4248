package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"cat-registry/internal/adapters/identity/authsvc"
	"cat-registry/internal/router"
)

// -------------------------
// Stub del auth service
// -------------------------

type authStub struct {
	mu        sync.Mutex
	failUsers map[string]bool

	lastSelfAuth  string // Authorization visto en PUT/DELETE /users/ self-service
	lastAdminAuth string // Authorization visto en variantes admin
	sawAdminCall  bool
}

func newAuthStub() *authStub {
	return &authStub{failUsers: map[string]bool{}}
}

func (s *authStub) setFail(userID string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUsers[userID] = fail
}

func (s *authStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		s.mu.Lock()
		fail := s.failUsers[id]
		s.mu.Unlock()

		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "ok",
			"user": map[string]string{
				"id":        id,
				"user_name": "name-" + id,
				"email":     id + "@example.com",
				"role":      "user",
			},
		})
	})

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"id": "u-1", "user_name": "ada"},
			{"id": "u-2", "user_name": "linus"},
		})
	})

	mux.HandleFunc("POST /users", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "user created"})
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ada@example.com" || body["password"] != "secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "logged in",
			"token":   "tok-ada",
			"user":    map[string]string{"id": "u-1", "user_name": "ada"},
		})
	})

	selfOrAdmin := func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		// Las variantes admin llevan el target en el body y no traen bearer.
		_, hasTargetID := body["id"]
		_, hasTargetUserID := body["user_id"]
		if hasTargetID || hasTargetUserID {
			s.sawAdminCall = true
			s.lastAdminAuth = r.Header.Get("Authorization")
		} else {
			s.lastSelfAuth = r.Header.Get("Authorization")
		}
		s.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}
	mux.HandleFunc("PUT /users/", selfOrAdmin)
	mux.HandleFunc("DELETE /users/", selfOrAdmin)

	return mux
}

// -------------------------
// Helpers
// -------------------------

type testEnv struct {
	api  *httptest.Server
	stub *authStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stub := newAuthStub()
	authTS := httptest.NewServer(stub.handler())
	t.Cleanup(authTS.Close)

	idClient, err := authsvc.NewClient(authsvc.Config{BaseURL: authTS.URL})
	if err != nil {
		t.Fatalf("auth client: %v", err)
	}

	api := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil, // modo dev: debug headers
		Identity:     idClient,
	}))
	t.Cleanup(api.Close)

	return &testEnv{api: api, stub: stub}
}

type reqOpts struct {
	userID string
	role   string
	token  string
}

func doReq(t *testing.T, baseURL, method, path string, opts reqOpts, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.userID != "" {
		req.Header.Set("X-Debug-User-ID", opts.userID)
	}
	if opts.role != "" {
		req.Header.Set("X-Debug-Role", opts.role)
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

type catPayload struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`
	Owner       *struct {
		ID       string `json:"id"`
		UserName string `json:"user_name"`
	} `json:"owner"`
	Name     string `json:"name"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

func createCat(t *testing.T, env *testEnv, userID string, body map[string]any) catPayload {
	t.Helper()

	st, raw := doReq(t, env.api.URL, "POST", "/cats", reqOpts{userID: userID}, body)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create cat, got %d body=%s", st, string(raw))
	}

	var c catPayload
	_ = json.Unmarshal(raw, &c)
	if c.ID == "" {
		t.Fatalf("create cat: missing id body=%s", string(raw))
	}
	return c
}

const (
	areaCoveringHelsinki  = "/cats/area?top_right_lat=60.5&top_right_lng=25.5&bottom_left_lat=59.9&bottom_left_lng=24.5"
	areaExcludingHelsinki = "/cats/area?top_right_lat=10&top_right_lng=10&bottom_left_lat=5&bottom_left_lng=5"
)

// -------------------------
// Tests
// -------------------------

func TestHTTP_CatLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// 1) user-1 crea a Miso; el owner del body se ignora
	c := createCat(t, env, "user-1", map[string]any{
		"name":          "Miso",
		"breed":         "common",
		"weight":        4.2,
		"location":      map[string]any{"lat": 60.2, "lng": 24.9},
		"owner_user_id": "someone-else",
	})
	if c.OwnerUserID != "user-1" {
		t.Fatalf("expected owner user-1 regardless of input, got %q", c.OwnerUserID)
	}
	if c.Owner == nil || c.Owner.ID != "user-1" {
		t.Fatalf("expected stitched owner, got %+v", c.Owner)
	}

	// 2) bounds que cubren (24.9, 60.2) lo devuelven
	{
		st, raw := doReq(t, env.api.URL, "GET", areaCoveringHelsinki, reqOpts{}, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 area query, got %d body=%s", st, string(raw))
		}
		var items []catPayload
		_ = json.Unmarshal(raw, &items)
		if len(items) != 1 || items[0].ID != c.ID {
			t.Fatalf("expected Miso in covering bounds, got %s", string(raw))
		}
	}

	// 3) bounds que lo excluyen lo omiten
	{
		st, raw := doReq(t, env.api.URL, "GET", areaExcludingHelsinki, reqOpts{}, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 area query, got %d", st)
		}
		var items []catPayload
		_ = json.Unmarshal(raw, &items)
		if len(items) != 0 {
			t.Fatalf("expected empty result outside bounds, got %s", string(raw))
		}
	}

	// 4) delete por user-2 => 403 y el registro sigue
	{
		st, _ := doReq(t, env.api.URL, "DELETE", "/cats/"+c.ID, reqOpts{userID: "user-2"}, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 delete by non-owner, got %d", st)
		}
		st, _ = doReq(t, env.api.URL, "GET", "/cats/"+c.ID, reqOpts{}, nil)
		if st != http.StatusOK {
			t.Fatalf("record must survive forbidden delete, got %d", st)
		}
	}

	// 5) delete por user-1 => 200, luego getById => 404
	{
		st, raw := doReq(t, env.api.URL, "DELETE", "/cats/"+c.ID, reqOpts{userID: "user-1"}, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete by owner, got %d body=%s", st, string(raw))
		}
		st, _ = doReq(t, env.api.URL, "GET", "/cats/"+c.ID, reqOpts{}, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
}

func TestHTTP_CreateRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	st, _ := doReq(t, env.api.URL, "POST", "/cats", reqOpts{}, map[string]any{"name": "Miso"})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", st)
	}
}

func TestHTTP_InvalidCatID(t *testing.T) {
	env := newTestEnv(t)

	st, _ := doReq(t, env.api.URL, "GET", "/cats/not-a-uuid", reqOpts{}, nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", st)
	}
}

func TestHTTP_UpdateBySelfAndForbiddenForOthers(t *testing.T) {
	env := newTestEnv(t)

	c := createCat(t, env, "user-1", map[string]any{
		"name":     "Miso",
		"location": map[string]any{"lat": 60.2, "lng": 24.9},
	})

	// Otro usuario no puede editar
	st, _ := doReq(t, env.api.URL, "PUT", "/cats/"+c.ID, reqOpts{userID: "user-2"}, map[string]any{"name": "Hacked"})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 update by non-owner, got %d", st)
	}

	// El owner sí
	st, raw := doReq(t, env.api.URL, "PUT", "/cats/"+c.ID, reqOpts{userID: "user-1"}, map[string]any{"name": "Misu"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update by owner, got %d body=%s", st, string(raw))
	}
	var updated catPayload
	_ = json.Unmarshal(raw, &updated)
	if updated.Name != "Misu" || updated.OwnerUserID != "user-1" {
		t.Fatalf("unexpected update result: %s", string(raw))
	}

	// Target inexistente (uuid válido) => 404
	st, _ = doReq(t, env.api.URL, "PUT", "/cats/6a6f7e1e-0000-4000-8000-000000000000", reqOpts{userID: "user-1"}, map[string]any{"name": "x"})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for missing record, got %d", st)
	}
}

func TestHTTP_AdminCatPaths(t *testing.T) {
	env := newTestEnv(t)

	c := createCat(t, env, "user-1", map[string]any{
		"name":     "Miso",
		"location": map[string]any{"lat": 60.2, "lng": 24.9},
	})

	// Rol no-admin => 403 aunque sea el owner
	st, _ := doReq(t, env.api.URL, "PUT", "/admin/cats/"+c.ID, reqOpts{userID: "user-1", role: "user"}, map[string]any{"name": "x"})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 admin path with non-admin role, got %d", st)
	}

	// Admin edita un registro ajeno; el owner no cambia
	st, raw := doReq(t, env.api.URL, "PUT", "/admin/cats/"+c.ID, reqOpts{userID: "admin-1", role: "admin"}, map[string]any{"name": "Admin Edit"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin update, got %d body=%s", st, string(raw))
	}
	var updated catPayload
	_ = json.Unmarshal(raw, &updated)
	if updated.Name != "Admin Edit" || updated.OwnerUserID != "user-1" {
		t.Fatalf("unexpected admin update result: %s", string(raw))
	}

	// Admin borra el registro ajeno
	st, _ = doReq(t, env.api.URL, "DELETE", "/admin/cats/"+c.ID, reqOpts{userID: "admin-1", role: "admin"}, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin delete, got %d", st)
	}
	st, _ = doReq(t, env.api.URL, "GET", "/cats/"+c.ID, reqOpts{}, nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 after admin delete, got %d", st)
	}
}

func TestHTTP_OwnerStitchingPartialFailure(t *testing.T) {
	env := newTestEnv(t)

	c1 := createCat(t, env, "user-1", map[string]any{
		"name":     "Miso",
		"location": map[string]any{"lat": 60.2, "lng": 24.9},
	})
	c2 := createCat(t, env, "user-2", map[string]any{
		"name":     "Nami",
		"location": map[string]any{"lat": 60.3, "lng": 24.8},
	})

	// El lookup de user-2 falla; el de user-1 sigue funcionando
	env.stub.setFail("user-2", true)

	st, raw := doReq(t, env.api.URL, "GET", "/cats/", reqOpts{}, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list with partial stitching failure, got %d", st)
	}

	var items []catPayload
	if err := json.Unmarshal(raw, &items); err != nil || len(items) != 2 {
		t.Fatalf("expected both records in response, got %s", string(raw))
	}

	byID := map[string]catPayload{}
	for _, it := range items {
		byID[it.ID] = it
	}
	if byID[c1.ID].Owner == nil || byID[c1.ID].Owner.ID != "user-1" {
		t.Fatalf("sibling record lost its owner: %+v", byID[c1.ID])
	}
	if byID[c2.ID].Owner != nil {
		t.Fatalf("failed lookup must null only that owner field, got %+v", byID[c2.ID].Owner)
	}
	if byID[c2.ID].Name != "Nami" || byID[c2.ID].OwnerUserID != "user-2" {
		t.Fatalf("record fields must survive stitching failure: %+v", byID[c2.ID])
	}
}

func TestHTTP_UserDelegation(t *testing.T) {
	env := newTestEnv(t)

	// Login passthrough
	st, raw := doReq(t, env.api.URL, "POST", "/auth/login", reqOpts{}, map[string]string{
		"email":    "ada@example.com",
		"password": "secret",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(raw))
	}
	var login struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(raw, &login)
	if login.Token != "tok-ada" {
		t.Fatalf("expected upstream token verbatim, got %s", string(raw))
	}

	// Credenciales malas => 401 (sin detalle upstream)
	st, _ = doReq(t, env.api.URL, "POST", "/auth/login", reqOpts{}, map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad credentials, got %d", st)
	}

	// Self-service update reenvía el bearer
	st, _ = doReq(t, env.api.URL, "PUT", "/me", reqOpts{userID: "u-1", token: "tok-ada"}, map[string]string{
		"user_name": "ada2",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update self, got %d", st)
	}
	env.stub.mu.Lock()
	selfAuth := env.stub.lastSelfAuth
	env.stub.mu.Unlock()
	if selfAuth != "Bearer tok-ada" {
		t.Fatalf("expected bearer forwarded to auth service, got %q", selfAuth)
	}

	// Sin token => 401 local, sin tocar upstream
	st, _ = doReq(t, env.api.URL, "PUT", "/me", reqOpts{userID: "u-1"}, map[string]string{"user_name": "x"})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 update self without token, got %d", st)
	}

	// Variante admin: rol user => 403; rol admin => pasa, sin bearer
	st, _ = doReq(t, env.api.URL, "PUT", "/admin/users/u-9", reqOpts{userID: "u-1", role: "user"}, map[string]string{"user_name": "x"})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 admin user update with non-admin role, got %d", st)
	}

	st, _ = doReq(t, env.api.URL, "PUT", "/admin/users/u-9", reqOpts{userID: "u-1", role: "admin", token: "tok-ada"}, map[string]string{"user_name": "x"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 admin user update, got %d", st)
	}
	env.stub.mu.Lock()
	sawAdmin, adminAuth := env.stub.sawAdminCall, env.stub.lastAdminAuth
	env.stub.mu.Unlock()
	if !sawAdmin {
		t.Fatalf("expected admin call to reach auth service")
	}
	if adminAuth != "" {
		t.Fatalf("admin path must not forward bearer token, got %q", adminAuth)
	}
}

func TestHTTP_Health(t *testing.T) {
	env := newTestEnv(t)

	st, body := doReq(t, env.api.URL, "GET", "/health", reqOpts{}, nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health check failed: %d %q", st, string(body))
	}
}
