package openapi

// Parameter location constants (used in Parameter.In field)
const (
	// ParamInQuery indicates the parameter is passed in the query string
	ParamInQuery = "query"
	// ParamInHeader indicates the parameter is passed as a request header
	ParamInHeader = "header"
	// ParamInPath indicates the parameter is part of the URL path
	ParamInPath = "path"
	// ParamInCookie indicates the parameter is passed as a cookie
	ParamInCookie = "cookie"
)

// Schema type names.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Security scheme types.
const (
	SecurityTypeAPIKey = "apiKey"
	SecurityTypeHTTP   = "http"
	SecurityTypeOAuth2 = "oauth2"
)

// ExtensionValidation is the document-level extension configuring which
// messages a gateway validates.
const ExtensionValidation = "x-membrane-validation"

const componentsSchemasPrefix = "#/components/schemas/"
