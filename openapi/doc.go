// Package openapi loads OpenAPI 3.0 and 3.1 documents into an immutable model
// suitable for runtime validation.
//
// Documents are read from a file, a reader or a byte slice, in YAML or JSON:
//
//	doc, err := openapi.ParseWithOptions(openapi.WithFilePath("petstore.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(doc.Title(), len(doc.Paths))
//
// # Numbers
//
// Numeric schema keywords (minimum, maximum, multipleOf) are decoded from the
// literal text of the document into exact decimals, so "multipleOf: 0.1"
// means one tenth and not the nearest float64. Numbers inside enum and
// default values are kept as json.Number.
//
// # References
//
// Only local references ("#/components/...") are supported. They are not
// inlined; the components index is the arena that Document.ResolveSchema and
// friends look names up in. ParseWithOptions runs CheckReferences, which
// rejects unresolved references and cycles that never pass through an
// object property or array item. Recursive data structures such as trees are
// accepted.
//
// # Version differences
//
// The 3.1 spellings are normalised to the 3.0 model: a "null" entry in a type
// array sets Nullable, and numeric exclusiveMinimum/exclusiveMaximum become a
// bound plus a flag.
package openapi
