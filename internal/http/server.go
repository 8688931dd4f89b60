package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"smarttracker/internal/backend"
	"smarttracker/internal/cache"
	"smarttracker/internal/log"
	"smarttracker/internal/middleware"
	"smarttracker/internal/middleware/ratelimit"
	"smarttracker/internal/middleware/security"
	"smarttracker/internal/middleware/trace"
	"smarttracker/internal/report"
	"smarttracker/internal/services"
	"smarttracker/internal/storage"
)

// Options tune the server's ambient behaviour.
type Options struct {
	RateLimitPerMinute int
	CORSAllowedOrigins string
	// ReportCacheTTL of zero disables report caching.
	ReportCacheTTL  time.Duration
	ReportCacheSize int
	AllEntriesLimit int
}

func DefaultOptions() Options {
	return Options{
		RateLimitPerMinute: ratelimit.DefaultConfig().RequestsPerMinute,
		CORSAllowedOrigins: "*",
		ReportCacheTTL:     5 * time.Minute,
		ReportCacheSize:    100,
		AllEntriesLimit:    storage.DefaultListLimit,
	}
}

type appMetrics struct {
	uptime         time.Time
	entriesCreated int64
	cacheHits      int64
	cacheMisses    int64
}

type Server struct {
	http.Server
	store   storage.Store
	forms   *services.FormService
	entries *services.EntryService
	reports *services.ReportService
	logger  *log.Logger

	allEntriesLimit int
	reportCache     *cache.LRUCache[report.MonthlyReport]
	cacheManager    *cache.Manager
	// formVersions counts invalidations per form; guarded by cacheMu.
	cacheMu      sync.Mutex
	formVersions map[int64]uint64

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// Every route is also served under /api.
func NewServer(addr string, b *backend.Backend, opts Options) *Server {
	def := DefaultOptions()
	if opts.AllEntriesLimit <= 0 {
		opts.AllEntriesLimit = def.AllEntriesLimit
	}
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = def.ReportCacheSize
	}

	s := &Server{
		store:            b.Store,
		forms:            b.Forms,
		entries:          b.Entries,
		reports:          b.Reports,
		logger:           log.New(log.Config{Component: log.ComponentHTTP, Handler: slog.Default().Handler()}),
		allEntriesLimit:  opts.AllEntriesLimit,
		cacheManager:     cache.NewManager(),
		formVersions:     make(map[int64]uint64),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		appMetrics:       &appMetrics{uptime: time.Now()},
		now:              time.Now,
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP)

	if opts.ReportCacheTTL > 0 {
		s.reportCache = cache.NewLRUCache[report.MonthlyReport](opts.ReportCacheSize, opts.ReportCacheTTL)
		s.cacheManager.Register(s.reportCache)
		s.cacheManager.StartCleanup(10 * time.Minute)
	}

	mux := http.NewServeMux()
	s.route(mux, "GET /forms", s.handleListForms)
	s.route(mux, "POST /forms", s.handleCreateForm)
	s.route(mux, "GET /forms/{id}", s.handleGetForm)
	s.route(mux, "PUT /forms/{id}", s.handleUpdateForm)
	s.route(mux, "DELETE /forms/{id}", s.handleDeleteForm)
	s.route(mux, "GET /forms/{id}/entries", s.handleListEntries)
	s.route(mux, "POST /forms/{id}/entries", s.handleCreateEntry)
	s.route(mux, "GET /forms/{id}/report", s.handleReport)
	s.route(mux, "GET /forms/{id}/report.csv", s.handleReportCSV)
	s.route(mux, "GET /forms/{id}/report.pdf", s.handleReportPDF)
	s.route(mux, "GET /entries/{id}", s.handleGetEntry)
	s.route(mux, "PUT /entries/{id}", s.handleUpdateEntry)
	s.route(mux, "DELETE /entries/{id}", s.handleDeleteEntry)
	s.route(mux, "GET /all-entries", s.handleAllEntries)
	s.route(mux, "GET /fields", s.handleFields)
	s.route(mux, "GET /dashboard", s.handleDashboard)
	s.route(mux, "GET /healthz", s.handleHealth)
	s.route(mux, "GET /readyz", s.handleReady)
	s.route(mux, "GET /metrics", s.handleMetrics)

	cors := security.DefaultCORSConfig()
	if opts.CORSAllowedOrigins != "" {
		cors.AllowedOrigins = opts.CORSAllowedOrigins
	}

	handler := middleware.Chain(
		s.traceMiddleware.Middleware,
		trace.Recover,
		log.Middleware(s.logger),
		log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) }),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		security.CORS(cors),
		s.securityDetector.Middleware,
		s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			TooManyRequestsError().Write(w)
		}),
	)(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// route registers pattern ("METHOD /path") at the root and under /api.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		panic(fmt.Sprintf("bad route pattern %q", pattern))
	}
	mux.HandleFunc(pattern, h)
	mux.HandleFunc(method+" /api"+path, h)
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func reportCacheKey(formID int64, year, month int) string {
	return fmt.Sprintf("%s%04d-%02d", formCachePrefix(formID), year, month)
}

func formCachePrefix(formID int64) string {
	return fmt.Sprintf("form:%d:", formID)
}

// invalidateForm drops cached reports of a form after a write.
func (s *Server) invalidateForm(ctx context.Context, formID int64) {
	if s.reportCache == nil {
		return
	}
	s.cacheMu.Lock()
	s.formVersions[formID]++
	n := s.reportCache.DeletePrefix(formCachePrefix(formID))
	s.cacheMu.Unlock()
	if n > 0 {
		slog.DebugContext(ctx, "Report cache invalidated", log.FieldFormID, formID, "entries_removed", n)
	}
}

// formVersion is read before building a report; see storeReport.
func (s *Server) formVersion(formID int64) uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.formVersions[formID]
}

// storeReport caches rep unless the form was invalidated after version was
// read. It reports whether rep was cached.
func (s *Server) storeReport(formID int64, version uint64, key string, rep report.MonthlyReport) bool {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.formVersions[formID] != version {
		return false
	}
	s.reportCache.Set(key, rep)
	return true
}
