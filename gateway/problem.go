package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/erraggy/oasguard/contract"
)

// Problem type and title of validation rejections.
const (
	ProblemTypeValidation  = "/problems/validation"
	ProblemTitleValidation = "OpenAPI message validation failed"
	ProblemTypeInternal    = "/problems/internal"
	ProblemTitleInternal   = "Internal error"

	problemContentType = "application/problem+json"
)

// summaryOnly replaces the report when details are switched off.
var summaryOnly = map[string]string{"error": "Message validation failed!"}

// Problem is an RFC 7807 problem details document.
type Problem struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Flow       string `json:"flow,omitempty"`
	Validation any    `json:"validation,omitempty"`
}

// NewProblem describes a rejected message. The status is the status code of
// the first violation; response violations are therefore always 500.
func NewProblem(errs contract.Errors, dir contract.Direction, details bool) *Problem {
	p := &Problem{
		Type:   ProblemTypeValidation,
		Title:  ProblemTitleValidation,
		Status: errs.StatusCode(),
		Flow:   dir.String(),
	}
	if p.Status == 0 {
		p.Status = dir.StatusCode()
	}
	if details {
		p.Validation = errs.Report()
	} else {
		p.Validation = summaryOnly
	}
	return p
}

// InternalProblem reports a failure of the validator itself.
func InternalProblem(api string) *Problem {
	return &Problem{
		Type:   ProblemTypeInternal,
		Title:  ProblemTitleInternal,
		Status: http.StatusInternalServerError,
		Detail: "Error validating message of API " + api,
	}
}

// Write sends the problem as application/problem+json.
func (p *Problem) Write(w http.ResponseWriter) {
	body, err := json.Marshal(p)
	if err != nil {
		http.Error(w, p.Title, p.Status)
		return
	}
	w.Header().Set("Content-Type", problemContentType)
	w.Header().Del("Content-Length")
	w.WriteHeader(p.Status)
	_, _ = w.Write(body)
}
