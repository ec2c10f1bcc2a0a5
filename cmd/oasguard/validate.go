package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/openapi"
)

type validateFlags struct {
	spec     string
	basePath string
	format   string

	method  string
	path    string
	headers []string
	body    string

	responseStatus  int
	responseHeaders []string
	responseBody    string
}

// validateResult is the structured output of the validate command.
type validateResult struct {
	API        string          `json:"api"                  yaml:"api"`
	Template   string          `json:"template,omitempty"   yaml:"template,omitempty"`
	Valid      bool            `json:"valid"                yaml:"valid"`
	Status     int             `json:"status,omitempty"     yaml:"status,omitempty"`
	Violations int             `json:"violations"           yaml:"violations"`
	Validation contract.Report `json:"validation,omitempty" yaml:"validation,omitempty"`
}

func newValidateCmd() *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate one request, and optionally its response",
		Long: `Validate an HTTP request against an OpenAPI document. With --response-status
the response is validated as well.

The report groups violations by location. The command exits 1 when the
message violates the document.

Examples:
  # Request with a JSON body
  oasguard validate --spec api.yaml --method POST --path /pets --body pet.json

  # Query string and headers
  oasguard validate --spec api.yaml --path "/pets?limit=10" --header "X-Tenant: acme"

  # Request and response, as JSON
  oasguard validate --spec api.yaml --path /pets/1 \
      --response-status 200 --response-body pet.json --format json

  # Body from standard input
  cat pet.json | oasguard validate --spec api.yaml --method POST --path /pets --body -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.spec, "spec", "s", "", "OpenAPI document (file path)")
	f.StringVar(&flags.basePath, "base-path", "", "base path to strip instead of the first server URL's path")
	f.StringVarP(&flags.format, "format", "f", formatText, "output format: text, json, or yaml")
	f.StringVarP(&flags.method, "method", "X", http.MethodGet, "request method")
	f.StringVarP(&flags.path, "path", "p", "", "request path, including any base path and query string")
	f.StringArrayVarP(&flags.headers, "header", "H", nil, `request header "Name: value" (repeatable)`)
	f.StringVarP(&flags.body, "body", "d", "", "file holding the request body (- for stdin)")
	f.IntVar(&flags.responseStatus, "response-status", 0, "status code of the response to validate")
	f.StringArrayVar(&flags.responseHeaders, "response-header", nil, `response header "Name: value" (repeatable)`)
	f.StringVar(&flags.responseBody, "response-body", "", "file holding the response body (- for stdin)")
	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runValidate(cmd *cobra.Command, flags *validateFlags) error {
	if err := validateOutputFormat(flags.format); err != nil {
		return err
	}
	if flags.body == stdinPath && flags.responseBody == stdinPath {
		return fmt.Errorf("only one of --body and --response-body can read stdin")
	}
	if flags.responseBody != "" && flags.responseStatus == 0 {
		return fmt.Errorf("--response-body requires --response-status")
	}
	if flags.responseStatus != 0 && (flags.responseStatus < 100 || flags.responseStatus > 599) {
		return fmt.Errorf("invalid --response-status %d", flags.responseStatus)
	}

	doc, err := openapi.ParseWithOptions(openapi.WithFilePath(flags.spec))
	if err != nil {
		return err
	}
	var opts []contract.Option
	if flags.basePath != "" {
		opts = append(opts, contract.WithBasePath(flags.basePath))
	}
	v, err := contract.New(doc, opts...)
	if err != nil {
		return err
	}

	stdin := cmd.InOrStdin()
	req, err := buildRequest(flags, stdin)
	if err != nil {
		return err
	}

	var errs contract.Errors
	if flags.responseStatus != 0 {
		resp, err := buildResponse(flags, stdin)
		if err != nil {
			return err
		}
		errs = v.ValidateExchange(req, resp)
	} else {
		errs = v.ValidateRequest(req)
	}

	result := validateResult{
		API:        doc.Title(),
		Valid:      errs.Empty(),
		Status:     errs.StatusCode(),
		Violations: errs.Len(),
	}
	if m, failed := v.MatchOperation(contract.NewContext(), req); failed.Empty() {
		result.Template = m.Template
	}
	if !errs.Empty() {
		result.Validation = errs.Report()
	}

	out := cmd.OutOrStdout()
	if flags.format == formatText {
		printResult(out, result)
	} else if err := outputStructured(out, result, flags.format); err != nil {
		return err
	}

	if !result.Valid {
		return errViolations
	}
	return nil
}

func buildRequest(flags *validateFlags, stdin io.Reader) (*contract.Request, error) {
	u, err := url.ParseRequestURI(flags.path)
	if err != nil {
		return nil, fmt.Errorf("invalid --path %q: %w", flags.path, err)
	}
	header, err := parseHeaders(flags.headers)
	if err != nil {
		return nil, err
	}
	req := &contract.Request{
		Method: strings.ToUpper(flags.method),
		Path:   u.Path,
		Query:  u.Query(),
		Header: header,
	}
	if flags.body != "" {
		data, err := readInput(flags.body, stdin)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		if len(data) > 0 {
			req.Body = data
			defaultContentType(header)
		}
	}
	return req, nil
}

func buildResponse(flags *validateFlags, stdin io.Reader) (*contract.Response, error) {
	header, err := parseHeaders(flags.responseHeaders)
	if err != nil {
		return nil, err
	}
	resp := &contract.Response{StatusCode: flags.responseStatus, Header: header}
	if flags.responseBody != "" {
		data, err := readInput(flags.responseBody, stdin)
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		if len(data) > 0 {
			resp.Body = data
			defaultContentType(header)
		}
	}
	return resp, nil
}

// parseHeaders turns "Name: value" flags into a header.
func parseHeaders(values []string) (http.Header, error) {
	h := make(http.Header, len(values))
	for _, raw := range values {
		name, value, ok := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Name: value\"", raw)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

// defaultContentType assumes JSON for a body given without a Content-Type.
func defaultContentType(h http.Header) {
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json")
	}
}

func printResult(w io.Writer, r validateResult) {
	writef(w, "API: %s\n", r.API)
	if r.Template != "" {
		writef(w, "Operation: %s\n", r.Template)
	}
	if r.Valid {
		writef(w, "\n✓ Message is valid\n")
		return
	}

	writef(w, "\n✗ %d violation(s), status %d\n", r.Violations, r.Status)
	for _, key := range r.Validation.Keys() {
		writef(w, "\n%s\n", key)
		for _, e := range r.Validation[key] {
			writef(w, "  - %s", e.Message)
			switch {
			case e.SchemaType != "" && e.ComplexType != "":
				writef(w, " (%s in %s)", e.SchemaType, e.ComplexType)
			case e.SchemaType != "":
				writef(w, " (%s)", e.SchemaType)
			}
			writef(w, "\n")
		}
	}
}
