package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	mem "bunny-happiness/internal/adapters/storage/memory"
	pg "bunny-happiness/internal/adapters/storage/postgres"
	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/configuration"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/domain/idle"
	"bunny-happiness/internal/domain/processor"
	"bunny-happiness/internal/domain/summary"
	"bunny-happiness/internal/middleware"
	"bunny-happiness/internal/platform/logger"
	"bunny-happiness/internal/ports/auth"
	"bunny-happiness/internal/worker"

	_ "bunny-happiness/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log logger.Logger

	// Dispatcher de eventos pending.
	DispatchInterval time.Duration
	DispatchWorkers  int
	DispatchBatch    int

	// Scanner de inactividad. 0 => solo bajo demanda.
	IdleScanInterval time.Duration
}

// App es el punto de composición: repos, services, procesador y rutas.
// El Handler queda listo al construir; Start levanta los loops de fondo.
type App struct {
	Handler http.Handler

	Configs    *configuration.Service
	Maintainer *summary.Maintainer

	dispatcher *worker.Dispatcher
	scanner    *idle.Scanner
	scanEvery  time.Duration
	log        logger.Logger
}

func NewApp(opts Options) *App {
	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{Level: logger.Info})
	}

	var (
		bunniesRepo bunnies.Repository
		eventsRepo  events.Repository
		configRepo  configuration.Repository
		procStore   processor.Store
		sumStore    summary.Store
	)

	if opts.DB != nil {
		bunniesRepo = pg.NewBunniesRepo(opts.DB)
		eventsRepo = pg.NewEventsRepo(opts.DB)
		configRepo = pg.NewConfigurationRepo(opts.DB)
		procStore = pg.NewProcessorStore(opts.DB)
		sumStore = pg.NewSummaryStore(opts.DB)
	} else {
		store := mem.NewStore()
		bunniesRepo = store.Bunnies()
		eventsRepo = store.Events()
		configRepo = store.Configurations()
		procStore = store.ProcessorStore()
		sumStore = store.SummaryStore()
	}

	hub := summary.NewHub(log)
	maintainer := summary.NewMaintainer(sumStore, bunniesRepo, hub, log)
	proc := processor.New(procStore, configRepo, maintainer, log)
	dispatcher := worker.NewDispatcher(eventsRepo, proc, log, worker.Options{
		Interval:  opts.DispatchInterval,
		BatchSize: opts.DispatchBatch,
		Workers:   opts.DispatchWorkers,
	})
	scanner := idle.NewScanner(bunniesRepo, eventsRepo, log)

	// Services por módulo
	bunniesSvc := bunnies.NewService(bunniesRepo, maintainer, log)
	eventsSvc := events.NewService(eventsRepo, dispatcher)
	configSvc := configuration.NewService(configRepo)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	bunnies.RegisterRoutes(r, bunniesSvc)
	events.RegisterRoutes(r, eventsSvc, bunniesSvc)
	configuration.RegisterRoutes(r, configSvc)
	summary.RegisterRoutes(r, maintainer, hub, log)
	idle.RegisterRoutes(r, scanner)

	return &App{
		Handler:    r,
		Configs:    configSvc,
		Maintainer: maintainer,
		dispatcher: dispatcher,
		scanner:    scanner,
		scanEvery:  opts.IdleScanInterval,
		log:        log,
	}
}

// Start siembra los singletons y levanta dispatcher y scanner.
// Los loops paran cuando se cancela ctx.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.Configs.EnsureDefault(ctx); err != nil {
		return err
	}
	if _, err := a.Maintainer.Ensure(ctx); err != nil {
		a.log.Warn("summary seed failed, will rebuild on demand", map[string]any{
			"error": err.Error(),
		})
	}

	go a.dispatcher.Run(ctx)
	if a.scanEvery > 0 {
		go a.scanner.Run(ctx, a.scanEvery)
	}
	return nil
}
