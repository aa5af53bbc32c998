package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitetrends/internal/domain"
	healthuc "github.com/kailas-cloud/sitetrends/internal/usecase/health"
	"github.com/kailas-cloud/sitetrends/internal/usecase/trending"
)

// UserTokenHeader carries the caller's delegated backend token.
const UserTokenHeader = "X-User-Token"

// TrendingService builds trending feeds.
type TrendingService interface {
	GetTrendingDocuments(ctx context.Context, rc domain.RequestContext) (trending.Feed, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the trending HTTP API.
type Server struct {
	trending       TrendingService
	health         HealthService
	sites          domain.SitePolicy
	logger         *zap.Logger
	loc            *time.Location
	now            func() time.Time
	requestTimeout time.Duration
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. Only sites allowed by sites are
// served; display dates are rendered in loc.
func NewServer(
	trending TrendingService,
	health HealthService,
	sites domain.SitePolicy,
	loc *time.Location,
	logger *zap.Logger,
) *Server {
	if loc == nil {
		loc = time.UTC
	}
	s := &Server{
		trending: trending,
		health:   health,
		sites:    sites,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusBadGateway, ErrorCodeSearchUnavailable),
	}
	return s
}

// WithRequestTimeout bounds each trending request by d.
func (s *Server) WithRequestTimeout(d time.Duration) *Server {
	s.requestTimeout = d
	return s
}

// WithClock overrides the clock used for display dates.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/trending", s.GetTrending)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// GetTrending handles GET /trending?site=<url>.
func (s *Server) GetTrending(w http.ResponseWriter, r *http.Request) {
	rc, err := domain.NewRequestContext(r.URL.Query().Get("site"), r.Header.Get(UserTokenHeader), s.sites)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	feed, err := s.trending.GetTrendingDocuments(ctx, rc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trendingToResponse(rc.SiteURL, feed, s.now(), s.loc))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the sentinel text only, never backend details.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
