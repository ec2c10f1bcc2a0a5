// Package oasguard validates HTTP traffic against OpenAPI contracts at runtime.
//
// oasguard sits in front of an API (as net/http middleware or as a standalone
// reverse proxy) and checks every request and, optionally, every response
// against the OpenAPI 3.x document that describes the API. All violations of a
// message are collected in one pass and reported with their precise location.
//
// # Overview
//
// The library consists of three primary packages:
//
//   - openapi: Load OpenAPI 3.0/3.1 documents into an immutable model
//   - contract: Validate requests, responses and payloads against that model
//   - gateway: Reject invalid traffic with RFC 7807 problem details
//
// # Quick Start
//
// Load a document and validate a request:
//
//	doc, err := openapi.ParseWithOptions(openapi.WithFilePath("openapi.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	v, err := contract.New(doc)
//	if err != nil {
//		log.Fatal(err)
//	}
//	errs := v.ValidateRequest(contract.NewRequest(httpReq))
//	for _, e := range errs {
//		fmt.Println(e.Context().Key(), e.Message())
//	}
//
// Protect a handler:
//
//	mw, err := gateway.New(gateway.WithValidator(v))
//	if err != nil {
//		log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", mw.Wrap(backend))
//
// # Diagnostics
//
// Violations are grouped by "<DIRECTION>/<ENTITY_TYPE>[#<json-pointer>]",
// for example "REQUEST/BODY#/age" or "REQUEST/QUERY_PARAMETER/limit". Each
// entry carries the message, the declared schema type and the named schema
// (complex type) that was active when the violation was found.
package oasguard
