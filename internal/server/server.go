package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meltforce/liftlog/internal/cloud"
	"github.com/meltforce/liftlog/internal/persist"
	"github.com/meltforce/liftlog/internal/prefs"
	"github.com/meltforce/liftlog/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	syncer     *persist.Syncer
	kv         cloud.KV
	prefs      *prefs.Manager
	log        *slog.Logger
	apiKey     string
	exportPath string
	whois      WhoIser
	router     chi.Router
}

// New creates a new Server. kv is the namespace this node serves to other
// nodes under /api/v1/kv; it may be nil to disable those routes.
func New(st *store.Store, syncer *persist.Syncer, kv cloud.KV, pm *prefs.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  st,
		syncer: syncer,
		kv:     kv,
		prefs:  pm,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetExportPath sets where POST /api/v1/export writes the CSV.
func (s *Server) SetExportPath(path string) {
	s.exportPath = path
}

// SetTailscale resolves request identities through the tailnet instead of
// treating every caller as the local user.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// SetMCP mounts the MCP handler at /mcp.
// No API key here; tsnet handles access.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.identify).Handle("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.log)(next).ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identify)
		r.Use(APIKeyAuth(s.apiKey))

		r.Get("/me", s.handleMe)
		r.Get("/state", s.handleState)

		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleStartWorkout)
		r.Route("/workouts/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetWorkout)
			r.Delete("/", s.handleDeleteWorkout)
			r.Post("/close", s.handleCloseWorkout)
			r.Post("/fields", s.handleAddCustomField)
			r.Post("/exercises", s.handleAddExerciseToWorkout)
			r.Post("/exercises/{exerciseID}/sets", s.handleAddSet)
			r.Post("/exercises/{exerciseID}/sets/quick", s.handleQuickAddSets)
			r.Put("/exercises/{exerciseID}/sets/{setID}", s.handleUpdateSet)
		})

		r.Get("/types", s.handleListTypes)
		r.Post("/types", s.handleAddType)
		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleAddExercise)
		r.Get("/gyms", s.handleListGyms)
		r.Post("/gyms", s.handleAddGym)
		r.Get("/timers", s.handleListTimers)
		r.Post("/timers", s.handleAddTimer)
		r.Delete("/timers/expired", s.handleRemoveExpiredTimers)
		r.Get("/timer-presets", s.handleListPresets)
		r.Put("/timer-presets", s.handleSetPresets)

		r.Get("/metrics", s.handleMetrics)
		r.Get("/metrics/pr/{exerciseID}", s.handlePR)
		r.Get("/metrics/1rm", s.handleOneRepMax)
		r.Get("/export.csv", s.handleExportCSV)
		r.Post("/export", s.handleExportFile)
		r.Post("/health/exported", s.handleHealthExported)

		r.Get("/preferences", s.handleGetPreferences)
		r.Put("/preferences", s.handlePutPreferences)

		if s.kv != nil {
			r.Get("/kv/{key}", s.handleKVGet)
			r.Put("/kv/{key}", s.handleKVPut)
		}
		r.Post("/sync", s.handleSync)
	})
}
