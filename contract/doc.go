// Package contract validates HTTP requests, responses and JSON values
// against an OpenAPI 3.x document loaded by the openapi package.
//
// A Validator is built once per document and shared by every goroutine that
// handles traffic. Validation never stops at the first problem: every
// violated keyword of every parameter, property and array item is reported,
// each with the exact location where it was found.
//
// # Basic Usage
//
//	doc, err := openapi.ParseWithOptions(openapi.WithFilePath("openapi.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := contract.New(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	errs := v.ValidateRequest(contract.NewRequest(r))
//	for _, e := range errs {
//	    log.Printf("%s: %s", e.Context().Key(), e.Message())
//	}
//
// Plain values can be checked against a single schema:
//
//	schema, _ := doc.SchemaByName("Pet")
//	errs := v.Validate(contract.NewContext(), schema, contract.RawJSON(`{"name": 1}`))
//
// # Locations
//
// Each ValidationError carries an immutable Context. Context.Key renders the
// location used to group violations:
//
//	REQUEST/BODY#/items/0/name
//	REQUEST/QUERY_PARAMETER/limit
//	REQUEST/HEADER/Content-Type
//	RESPONSE/BODY#/id
//
// Errors.Report groups a result by these keys, together with the declared
// schema type and the named component schema that was active.
//
// # Status codes and kinds
//
// Request violations carry status 400 and response violations status 500.
// A path that matches no template yields a single KindNotFound error (404),
// a method without operation a single KindMethodNotAllowed error (405), and
// an undeclared request media type an error with status 415. Bodies that
// are not JSON are KindParse errors. XML and form bodies are reported as
// KindNotImplemented. Problems with the document found at request time, such
// as a $ref cycle, are KindConfiguration errors with status 500. A body cut
// off by http.MaxBytesReader is a KindBodyTooLarge error, with status 413 in
// a request.
//
// # Numbers
//
// Numeric keywords are compared as exact decimals. JSON bodies are decoded
// with json.Number, so "0.3" is a multiple of "0.1" and 9007199254740993
// keeps its last digit. Numbers whose exponent lies outside the bound of
// WithMaxNumberExponent are rejected before any arithmetic.
//
// # Recursion
//
// References are followed by name through the document's components.
// Recursive schemas such as trees are validated at every level. A reference
// chain that returns to a name without descending into the instance is
// reported instead of followed, and instances nested deeper than
// WithMaxDepth are rejected.
package contract
