package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is the set of API operations.
type ServerInterface interface {
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
	// ListCorpora handles GET /corpora.
	ListCorpora(w http.ResponseWriter, r *http.Request)
	// GetCorpus handles GET /corpora/{corpus}.
	GetCorpus(w http.ResponseWriter, r *http.Request, corpus string)
	// ListCitations handles GET /corpora/{corpus}/citations.
	ListCitations(w http.ResponseWriter, r *http.Request, corpus string, params ListCitationsParams)
	// ValidateRange handles POST /corpora/{corpus}/ranges/validate.
	ValidateRange(w http.ResponseWriter, r *http.Request, corpus string)
	// CheckRange handles GET /ranges/check.
	CheckRange(w http.ResponseWriter, r *http.Request, params CheckRangeParams)
}

// ParamError is a path or query parameter that could not be bound.
type ParamError struct {
	ParamName string
	Err       error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *ParamError) Unwrap() error { return e.Err }

// ChiServerOptions configures Handler.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler mounts si on a new chi router.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions mounts si on options.BaseRouter (a new router when nil).
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	r.Get("/corpora", si.ListCorpora)
	r.Get("/corpora/{corpus}", wrapper.GetCorpus)
	r.Get("/corpora/{corpus}/citations", wrapper.ListCitations)
	r.Post("/corpora/{corpus}/ranges/validate", wrapper.ValidateRange)
	r.Get("/ranges/check", wrapper.CheckRange)
	return r
}

// serverInterfaceWrapper binds parameters before delegating to the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (sw *serverInterfaceWrapper) corpusParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var corpus string
	err := runtime.BindStyledParameterWithOptions("simple", "corpus", chi.URLParam(r, "corpus"), &corpus,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		sw.errorHandlerFunc(w, r, &ParamError{ParamName: "corpus", Err: err})
		return "", false
	}
	return corpus, true
}

func (sw *serverInterfaceWrapper) GetCorpus(w http.ResponseWriter, r *http.Request) {
	corpus, ok := sw.corpusParam(w, r)
	if !ok {
		return
	}
	sw.handler.GetCorpus(w, r, corpus)
}

func (sw *serverInterfaceWrapper) ListCitations(w http.ResponseWriter, r *http.Request) {
	corpus, ok := sw.corpusParam(w, r)
	if !ok {
		return
	}

	var params ListCitationsParams
	if err := runtime.BindQueryParameter("form", true, false, "path", r.URL.Query(), &params.Path); err != nil {
		sw.errorHandlerFunc(w, r, &ParamError{ParamName: "path", Err: err})
		return
	}
	sw.handler.ListCitations(w, r, corpus, params)
}

func (sw *serverInterfaceWrapper) ValidateRange(w http.ResponseWriter, r *http.Request) {
	corpus, ok := sw.corpusParam(w, r)
	if !ok {
		return
	}
	sw.handler.ValidateRange(w, r, corpus)
}

func (sw *serverInterfaceWrapper) CheckRange(w http.ResponseWriter, r *http.Request) {
	var params CheckRangeParams
	if err := runtime.BindQueryParameter("form", true, true, "urn", r.URL.Query(), &params.URN); err != nil {
		sw.errorHandlerFunc(w, r, &ParamError{ParamName: "urn", Err: err})
		return
	}
	sw.handler.CheckRange(w, r, params)
}
