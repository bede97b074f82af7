// Package http exposes the treasury over a JSON API. All mutations are
// serialized through a single mutex, flushed through the ledger store
// after each change, and answered with the durability of the save.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/RiccardoZanardi/Calvenzano/internal/cache"
	"github.com/RiccardoZanardi/Calvenzano/internal/ledger"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
	"github.com/RiccardoZanardi/Calvenzano/internal/middleware/ratelimit"
	"github.com/RiccardoZanardi/Calvenzano/internal/middleware/security"
)

// ReportPublisher queues report generation for the worker.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, kind, asOf string) error
}

type Server struct {
	http.Server

	store     *ledger.Store
	publisher ReportPublisher
	logger    *applog.Logger
	validate  *validator.Validate

	// Serializes every mutation; the store itself is not safe for
	// concurrent use.
	mu sync.Mutex

	// Derived read responses, dropped on every mutation.
	statsCache   *cache.LRUCache[json.RawMessage]
	cacheManager *cache.Manager

	rateLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer wires the router and returns a ready-to-run server. The
// publisher may be nil; report requests then answer 503.
func NewServer(addr string, store *ledger.Store, publisher ReportPublisher, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		store:        store,
		publisher:    publisher,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		validate:     validator.New(),
		statsCache:   cache.NewLRUCache[json.RawMessage](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.rateLimiter.Middleware)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleGetData)
		r.Post("/data", s.handleImportData)

		r.Route("/members", func(r chi.Router) {
			r.Post("/", s.handleAddMember)
			r.Post("/{id}/deactivate", s.handleDeactivateMember)
			r.Post("/{id}/reactivate", s.handleReactivateMember)
			r.Post("/{id}/fines", s.handleAssignFine)
			r.Post("/{id}/fines/{index}/toggle", s.handleToggleFinePayment)
			r.Get("/{id}/stats", s.handleMemberStats)
		})

		r.Post("/fines", s.handleAssignFines)
		r.Post("/ics", s.handleAssignICS)
		r.Post("/donations", s.handleAddDonation)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", s.handleAddCategory)
			r.Put("/{key}", s.handleUpdateCategory)
			r.Post("/{key}/deactivate", s.handleDeactivateCategory)
			r.Post("/{key}/reactivate", s.handleReactivateCategory)
			r.Get("/{key}/stats", s.handleCategoryStats)
		})

		r.Get("/totals", s.handleTotals)
		r.Get("/activities", s.handleActivities)
		r.Get("/rankings/{kind}", s.handleRanking)

		r.Route("/treasury", func(r chi.Router) {
			r.Post("/clear", s.handleClearTreasury)
			r.Post("/restore", s.handleRestoreTreasury)
			r.Get("/backup", s.handleBackupStatus)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/{kind}", s.handleReport)
			r.Post("/request", s.handleRequestReport)
		})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Shutdown stops the HTTP server and the cache cleanup routine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "Request completed",
			applog.FieldRequestID, middleware.GetReqID(r.Context()),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, ww.Status(),
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
