package chi

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest            ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed      ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInvalidURN            ErrorResponseCode = "invalid_urn"
	ErrorResponseCodeUnauthorized          ErrorResponseCode = "unauthorized"
	ErrorResponseCodeCorpusNotFound        ErrorResponseCode = "corpus_not_found"
	ErrorResponseCodeCitationNotFound      ErrorResponseCode = "citation_not_found"
	ErrorResponseCodeReferenceServiceError ErrorResponseCode = "reference_service_error"
	ErrorResponseCodeInternalError         ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Corpus is a configured citable text.
type Corpus struct {
	ID             string   `json:"id"`
	URN            string   `json:"urn"`
	Title          string   `json:"title,omitempty"`
	Author         string   `json:"author,omitempty"`
	CitationLevels []string `json:"citation_levels"`
}

// CorpusListResponse is the body of GET /corpora.
type CorpusListResponse struct {
	Items []Corpus `json:"items"`
}

// Citation is one child reference under a citation path.
type Citation struct {
	Label     string `json:"label"`
	Reference string `json:"reference"`
	Ordinal   int    `json:"ordinal"`
	Level     string `json:"level"`
	Numeric   bool   `json:"numeric"`
}

// CitationListResponse is the body of GET /corpora/{corpus}/citations.
type CitationListResponse struct {
	Corpus string     `json:"corpus"`
	Path   []string   `json:"path"`
	Items  []Citation `json:"items"`
}

// ListCitationsParams are the query parameters of GET /corpora/{corpus}/citations.
type ListCitationsParams struct {
	// Path is the dotted parent reference, e.g. "1.2". Empty lists the outermost level.
	Path *string `form:"path,omitempty" json:"path,omitempty"`
}

// CheckRangeParams are the query parameters of GET /ranges/check.
type CheckRangeParams struct {
	URN string `form:"urn" json:"urn"`
}

// ValidateRangeRequest is the body of POST /corpora/{corpus}/ranges/validate.
type ValidateRangeRequest struct {
	Start []string `json:"start"`
	End   []string `json:"end"`
}

// VerdictResponse is the result of a range validation.
type VerdictResponse struct {
	Corpus   string `json:"corpus"`
	Valid    bool   `json:"valid"`
	Verified bool   `json:"verified"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
	URN      string `json:"urn,omitempty"`
	// Ordinals are null where a label could not be resolved.
	StartOrdinals []*int `json:"start_ordinals,omitempty"`
	EndOrdinals   []*int `json:"end_ordinals,omitempty"`
}
