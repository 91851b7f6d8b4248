package router

import (
	"database/sql"
	"net/http"

	mem "cat-registry/internal/adapters/storage/memory"
	pg "cat-registry/internal/adapters/storage/postgres"
	"cat-registry/internal/domain/cats"
	"cat-registry/internal/domain/users"
	"cat-registry/internal/middleware"
	"cat-registry/internal/platform/logger"
	"cat-registry/internal/platform/metrics"
	"cat-registry/internal/ports/auth"
	"cat-registry/internal/ports/identity"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Options: todo inyectado, el router no lee env ni abre conexiones.
type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Identity     identity.Client   // obligatorio

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger  logger.Logger
	Metrics *metrics.Collector
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	// chi exige todos los Use antes de la primera ruta.
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var catsRepo cats.Repository
	if opts.DB != nil {
		catsRepo = pg.NewCatsRepo(opts.DB)
	} else {
		catsRepo = mem.NewCatsRepo()
	}

	catsSvc := cats.NewService(catsRepo)
	usersSvc := users.NewService(opts.Identity)

	cats.RegisterRoutes(r, catsSvc, opts.Identity, log)
	users.RegisterRoutes(r, usersSvc)

	return r
}
