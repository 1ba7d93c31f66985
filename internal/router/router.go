package router

import (
	"database/sql"
	"net/http"

	mem "memoria-viva/internal/adapters/storage/memory"
	pg "memoria-viva/internal/adapters/storage/postgres"
	"memoria-viva/internal/domain/digests"
	"memoria-viva/internal/domain/events"
	"memoria-viva/internal/domain/linkpreviews"
	"memoria-viva/internal/domain/photos"
	"memoria-viva/internal/domain/polls"
	"memoria-viva/internal/domain/stories"
	"memoria-viva/internal/middleware"
	"memoria-viva/internal/platform/logger"
	"memoria-viva/internal/ports/ai"
	"memoria-viva/internal/ports/auth"
	"memoria-viva/internal/ports/email"
	"memoria-viva/internal/ports/geocode"
	"memoria-viva/internal/ports/linkpreview"

	_ "memoria-viva/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log logger.Logger

	// Integraciones externas; cualquiera puede venir nil y el módulo
	// correspondiente degrada (sin IA, sin mails, sin geocoding...).
	Assistant    ai.Assistant
	EmailSender  email.Sender
	Geocoder     geocode.Geocoder
	LinkResolver linkpreview.Resolver
}

// Router agrupa el handler HTTP y los services que main necesita
// fuera del ciclo request/response (cron del digest).
type Router struct {
	Handler http.Handler
	Digests *digests.Service
}

func New(opts Options) *Router {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

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
		storiesRepo stories.Repository
		eventsRepo  events.Repository
		pollsRepo   polls.Repository
		photosRepo  photos.Repository
		digestsRepo digests.Repository
	)

	if opts.DB != nil {
		storiesRepo = pg.NewStoriesRepo(opts.DB)
		eventsRepo = pg.NewEventsRepo(opts.DB)
		pollsRepo = pg.NewPollsRepo(opts.DB)
		photosRepo = pg.NewPhotosRepo(opts.DB)
		digestsRepo = pg.NewDigestsRepo(opts.DB)
	} else {
		storiesRepo = mem.NewStoriesRepo()
		eventsRepo = mem.NewEventsRepo()
		pollsRepo = mem.NewPollsRepo()
		photosRepo = mem.NewPhotosRepo()
		digestsRepo = mem.NewDigestsRepo()
	}

	// Services por módulo
	storiesSvc := stories.NewService(storiesRepo, opts.Assistant, log)
	eventsSvc := events.NewService(eventsRepo, opts.Geocoder, log)
	pollsSvc := polls.NewService(pollsRepo)
	photosSvc := photos.NewService(photosRepo)
	previewSvc := linkpreviews.NewService(opts.LinkResolver, log)
	digestsSvc := digests.NewService(digestsRepo, storiesSvc, eventsSvc, opts.EmailSender, log)

	// Rutas por módulo
	stories.RegisterRoutes(r, storiesSvc)
	events.RegisterRoutes(r, eventsSvc)
	polls.RegisterRoutes(r, pollsSvc)
	photos.RegisterRoutes(r, photosSvc)
	linkpreviews.RegisterRoutes(r, previewSvc)
	digests.RegisterRoutes(r, digestsSvc)

	return &Router{
		Handler: r,
		Digests: digestsSvc,
	}
}
