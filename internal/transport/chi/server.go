package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ctsrange/internal/domain"
	domcorpus "github.com/kailas-cloud/ctsrange/internal/domain/corpus"
	"github.com/kailas-cloud/ctsrange/internal/domain/textrange"
	"github.com/kailas-cloud/ctsrange/internal/logger"
	corpusrepo "github.com/kailas-cloud/ctsrange/internal/repository/corpus"
	"github.com/kailas-cloud/ctsrange/internal/transport/cts"
	healthuc "github.com/kailas-cloud/ctsrange/internal/usecase/health"
	"github.com/kailas-cloud/ctsrange/internal/usecase/rangecheck"
	"github.com/kailas-cloud/ctsrange/internal/usecase/resolver"
)

const maxRequestBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	corpora       *corpusrepo.Registry
	resolver      *resolver.Service
	validator     *rangecheck.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	corpora *corpusrepo.Registry,
	res *resolver.Service,
	validator *rangecheck.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		corpora:   corpora,
		resolver:  res,
		validator: validator,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		upstreamStatusHandler,
		sentinelHandler(domain.ErrCorpusNotFound, http.StatusNotFound, ErrorResponseCodeCorpusNotFound),
		sentinelHandler(domain.ErrLabelNotFound, http.StatusNotFound, ErrorResponseCodeCitationNotFound),
		sentinelHandler(domain.ErrParentNotFound, http.StatusNotFound, ErrorResponseCodeCitationNotFound),
		sentinelHandler(domain.ErrInvalidURN, http.StatusBadRequest, ErrorResponseCodeInvalidURN),
		sentinelHandler(domain.ErrInvalidRange, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrRemoteFetch, http.StatusBadGateway, ErrorResponseCodeReferenceServiceError),
	}
	return s
}

// ListCorpora handles GET /corpora.
func (s *Server) ListCorpora(w http.ResponseWriter, r *http.Request) {
	list, err := s.corpora.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]Corpus, len(list))
	for i, c := range list {
		items[i] = corpusToAPI(c)
	}
	writeJSON(w, http.StatusOK, CorpusListResponse{Items: items})
}

// GetCorpus handles GET /corpora/{corpus}.
func (s *Server) GetCorpus(w http.ResponseWriter, r *http.Request, corpus string) {
	c, err := s.corpora.Get(r.Context(), corpus)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, corpusToAPI(c))
}

// ListCitations handles GET /corpora/{corpus}/citations.
func (s *Server) ListCitations(w http.ResponseWriter, r *http.Request, corpus string, params ListCitationsParams) {
	c, err := s.corpora.Get(r.Context(), corpus)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var path []string
	if params.Path != nil {
		path, err = textrange.Trim(strings.Split(*params.Path, "."))
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
	}

	entries, err := s.resolver.Children(r.Context(), c, path)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]Citation, len(entries))
	for i, e := range entries {
		items[i] = Citation{
			Label:     e.Label,
			Reference: strings.Join(append(append([]string{}, path...), e.Label), "."),
			Ordinal:   e.Value,
			Level:     e.Level,
			Numeric:   e.IsNumeric,
		}
	}
	if path == nil {
		path = []string{}
	}
	writeJSON(w, http.StatusOK, CitationListResponse{Corpus: c.ID(), Path: path, Items: items})
}

// ValidateRange handles POST /corpora/{corpus}/ranges/validate.
func (s *Server) ValidateRange(w http.ResponseWriter, r *http.Request, corpus string) {
	var req ValidateRangeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	c, err := s.corpora.Get(r.Context(), corpus)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.openCorpus(r, c)
	v := s.validator.Validate(r.Context(), req.Start, req.End, c)
	writeJSON(w, http.StatusOK, verdictToAPI(c, v))
}

// CheckRange handles GET /ranges/check.
func (s *Server) CheckRange(w http.ResponseWriter, r *http.Request, params CheckRangeParams) {
	passage, err := textrange.ParseURN(params.URN)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	c, err := s.corpora.FindByURN(r.Context(), passage.Base)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.openCorpus(r, c)
	v := s.validator.Validate(r.Context(), passage.Range.Start[:], passage.Range.End[:], c)
	writeJSON(w, http.StatusOK, verdictToAPI(c, v))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// openCorpus loads the outermost citation level before validation.
// Failure is not fatal: validation then falls back to numeric labels or fails open.
func (s *Server) openCorpus(r *http.Request, c domcorpus.Corpus) {
	if err := s.resolver.OpenCorpus(r.Context(), c); err != nil {
		s.requestLogger(r).Warn("Corpus root not loaded",
			zap.String("corpus", c.ID()),
			zap.Error(err),
		)
	}
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logger.FromContextOr(r.Context(), s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCorpusNotFound,
		domain.ErrLabelNotFound,
		domain.ErrParentNotFound,
		domain.ErrInvalidURN,
		domain.ErrInvalidRange,
		domain.ErrRemoteFetch,
	}
	var le *domain.LabelError
	for _, s := range sentinels {
		if !errors.Is(err, s) {
			continue
		}
		if errors.As(err, &le) {
			return fmt.Sprintf("%s: %q at depth %d", s.Error(), le.Label, le.Depth+1)
		}
		return s.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// upstreamStatusHandler reports the status code of a failed reference service call.
func upstreamStatusHandler(w http.ResponseWriter, err error, msg string) bool {
	var se *cts.StatusError
	if !errors.As(err, &se) {
		return false
	}
	writeJSON(w, http.StatusBadGateway, map[string]any{
		"code":            ErrorResponseCodeReferenceServiceError,
		"message":         msg,
		"upstream_status": se.StatusCode,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func corpusToAPI(c domcorpus.Corpus) Corpus {
	return Corpus{
		ID:             c.ID(),
		URN:            c.URN(),
		Title:          c.Title(),
		Author:         c.Author(),
		CitationLevels: c.Levels(),
	}
}

func verdictToAPI(c domcorpus.Corpus, v rangecheck.Verdict) VerdictResponse {
	return VerdictResponse{
		Corpus:        c.ID(),
		Valid:         v.Valid,
		Verified:      v.Verified,
		Outcome:       v.Outcome,
		Reason:        v.Reason,
		URN:           v.URN,
		StartOrdinals: ordinalsToAPI(v.Start),
		EndOrdinals:   ordinalsToAPI(v.End),
	}
}

func ordinalsToAPI(ords []rangecheck.Ordinal) []*int {
	if len(ords) == 0 {
		return nil
	}
	out := make([]*int, len(ords))
	for i, o := range ords {
		if o.Known {
			v := o.Value
			out[i] = &v
		}
	}
	return out
}
