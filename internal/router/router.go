package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "program-monitoring-api/internal/adapters/storage/memory"
	pg "program-monitoring-api/internal/adapters/storage/postgres"
	"program-monitoring-api/internal/domain/eventos"
	"program-monitoring-api/internal/domain/indicadores"
	"program-monitoring-api/internal/domain/registros"
	"program-monitoring-api/internal/middleware"
	"program-monitoring-api/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "program-monitoring-api/docs"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		registrosRepo   registros.Repository
		eventosRepo     eventos.Repository
		indicadoresRepo indicadores.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		registrosRepo = pg.NewRegistrosRepo(db)
		eventosRepo = pg.NewEventosRepo(db)
		indicadoresRepo = pg.NewIndicadoresRepo(db)
	} else {
		registrosRepo = mem.NewRegistrosRepo()
		eventosRepo = mem.NewEventosRepo()
		indicadoresRepo = mem.NewIndicadoresRepo()
	}

	// Services por módulo. El de eventos consume tareas y quarters del ledger
	// de registros y empuja los conteos al ledger de indicadores.
	registrosSvc := registros.NewService(registrosRepo, registros.DefaultKinds())
	indicadoresSvc := indicadores.NewService(indicadoresRepo)
	eventosSvc := eventos.NewService(
		eventosRepo,
		tareaDirectory{regs: registrosSvc},
		quarterDirectory{regs: registrosSvc},
		indicadoresSvc,
	)

	// Rutas por módulo
	registros.RegisterRoutes(r, registrosSvc)
	eventos.RegisterRoutes(r, eventosSvc)
	indicadores.RegisterRoutes(r, indicadoresSvc)

	return r
}
