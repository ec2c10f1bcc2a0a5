package contract

import (
	"strconv"
	"strings"
)

// Direction tells whether a request or a response is being validated. It
// decides the default status code of violations and how readOnly and
// writeOnly properties are treated.
type Direction int

const (
	// DirectionRequest is the request phase (client to API).
	DirectionRequest Direction = iota
	// DirectionResponse is the response phase (API to client).
	DirectionResponse
)

// String returns "REQUEST" or "RESPONSE".
func (d Direction) String() string {
	if d == DirectionResponse {
		return "RESPONSE"
	}
	return "REQUEST"
}

// StatusCode returns the HTTP status code of a violation in this direction:
// 400 for requests and 500 for responses.
func (d Direction) StatusCode() int {
	if d == DirectionResponse {
		return 500
	}
	return 400
}

// EntityType is the category of the thing being checked.
type EntityType int

// Entity types.
const (
	EntityNone EntityType = iota
	EntityPath
	EntityMethod
	EntityPathParameter
	EntityQueryParameter
	EntityHeaderParameter
	EntityBody
	EntityField
	EntityProperty
	EntityMediaType
	EntityStatusCode
)

var entityTypeNames = [...]string{
	EntityNone:            "",
	EntityPath:            "PATH",
	EntityMethod:          "METHOD",
	EntityPathParameter:   "PATH_PARAMETER",
	EntityQueryParameter:  "QUERY_PARAMETER",
	EntityHeaderParameter: "HEADER_PARAMETER",
	EntityBody:            "BODY",
	EntityField:           "FIELD",
	EntityProperty:        "PROPERTY",
	EntityMediaType:       "MEDIA_TYPE",
	EntityStatusCode:      "STATUS_CODE",
}

var entityTypeLabels = [...]string{
	EntityNone:            "",
	EntityPath:            "path",
	EntityMethod:          "method",
	EntityPathParameter:   "path parameter",
	EntityQueryParameter:  "query parameter",
	EntityHeaderParameter: "header parameter",
	EntityBody:            "body",
	EntityField:           "field",
	EntityProperty:        "property",
	EntityMediaType:       "media type",
	EntityStatusCode:      "status code",
}

// String returns the upper-case name used in location keys, e.g. "QUERY_PARAMETER".
func (e EntityType) String() string {
	if int(e) < len(entityTypeNames) {
		return entityTypeNames[e]
	}
	return "UNKNOWN"
}

// Label returns a human readable name, e.g. "query parameter".
func (e EntityType) Label() string {
	if int(e) < len(entityTypeLabels) {
		return entityTypeLabels[e]
	}
	return "unknown"
}

// IsParameter reports whether values of this entity arrive as raw strings.
func (e EntityType) IsParameter() bool {
	return e == EntityPathParameter || e == EntityQueryParameter || e == EntityHeaderParameter
}

// refTrail is a persistent list of the schema names resolved since the last
// descent into a property or item. Nodes are never modified once linked, so
// a trail can be shared by every context derived from it.
type refTrail struct {
	name string
	next *refTrail
	len  int
}

func (t *refTrail) contains(name string) bool {
	for n := t; n != nil; n = n.next {
		if n.name == name {
			return true
		}
	}
	return false
}

func (t *refTrail) names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, t.len)
	i := t.len - 1
	for n := t; n != nil; n = n.next {
		out[i] = n.name
		i--
	}
	return out
}

// Context is an immutable snapshot of where validation currently is. Every
// With method returns a modified copy; a Context handed out, for example
// inside a ValidationError, never changes afterwards.
type Context struct {
	method      string
	path        string
	uriTemplate string
	pointer     string
	schemaType  string
	complexType string
	entityType  EntityType
	entity      string
	statusCode  int
	direction   Direction

	// refs holds the $ref names entered since the last pointer descent
	refs *refTrail
	// discs holds the discriminator targets entered since the last pointer descent
	discs *refTrail
	depth int
}

// NewContext returns the root context of a request validation.
func NewContext() Context {
	return Context{statusCode: DirectionRequest.StatusCode()}
}

// WithMethod sets the HTTP method.
func (c Context) WithMethod(method string) Context {
	c.method = method
	return c
}

// WithPath sets the request path.
func (c Context) WithPath(path string) Context {
	c.path = path
	return c
}

// WithURITemplate sets the matched path template, e.g. "/pets/{id}".
func (c Context) WithURITemplate(tmpl string) Context {
	c.uriTemplate = tmpl
	return c
}

// WithSchemaType sets the declared type of the schema being applied.
func (c Context) WithSchemaType(t string) Context {
	c.schemaType = t
	return c
}

// WithComplexType sets the name of the component schema being applied.
func (c Context) WithComplexType(name string) Context {
	c.complexType = name
	return c
}

// WithEntityType sets the kind of entity being validated.
func (c Context) WithEntityType(t EntityType) Context {
	c.entityType = t
	return c
}

// WithEntity sets the name of the entity, e.g. the parameter name.
func (c Context) WithEntity(name string) Context {
	c.entity = name
	return c
}

// WithStatusCode sets the HTTP status code reported for violations.
func (c Context) WithStatusCode(code int) Context {
	c.statusCode = code
	return c
}

// WithDirection sets the direction and the matching default status code.
func (c Context) WithDirection(d Direction) Context {
	c.direction = d
	c.statusCode = d.StatusCode()
	return c
}

// WithPointerSegment appends one segment to the JSON pointer. Descending into
// the instance starts a new reference trail.
func (c Context) WithPointerSegment(segment string) Context {
	c.pointer = c.pointer + "/" + escapePointerSegment(segment)
	c.refs = nil
	c.discs = nil
	c.depth++
	return c
}

// WithIndex appends an array index to the JSON pointer.
func (c Context) WithIndex(i int) Context {
	return c.WithPointerSegment(strconv.Itoa(i))
}

func (t *refTrail) push(name string) *refTrail {
	n := 1
	if t != nil {
		n = t.len + 1
	}
	return &refTrail{name: name, next: t, len: n}
}

// withRef records that the schema name was entered through a reference. It
// reports false when the name is already on the current trail.
func (c Context) withRef(name string) (Context, bool) {
	if c.refs.contains(name) {
		return c, false
	}
	c.refs = c.refs.push(name)
	c.complexType = name
	return c, true
}

// withDiscriminated records that the instance is now checked against the
// schema selected by a discriminator. The reference trail restarts with that
// name. It reports false when the name was already selected or is being
// applied on the current trail.
func (c Context) withDiscriminated(name string) (Context, bool) {
	if c.discs.contains(name) || c.refs.contains(name) {
		return c, false
	}
	c.discs = c.discs.push(name)
	c.refs = (*refTrail)(nil).push(name)
	c.complexType = name
	return c, true
}

// Method returns the HTTP method.
func (c Context) Method() string { return c.method }

// Path returns the request path.
func (c Context) Path() string { return c.path }

// URITemplate returns the matched path template.
func (c Context) URITemplate() string { return c.uriTemplate }

// Pointer returns the JSON pointer into the validated value, "" at the root.
func (c Context) Pointer() string { return c.pointer }

// SchemaType returns the declared type of the schema being applied.
func (c Context) SchemaType() string { return c.schemaType }

// ComplexType returns the name of the component schema being applied.
func (c Context) ComplexType() string { return c.complexType }

// EntityType returns the kind of entity being validated.
func (c Context) EntityType() EntityType { return c.entityType }

// Entity returns the entity name.
func (c Context) Entity() string { return c.entity }

// StatusCode returns the HTTP status code reported for violations.
func (c Context) StatusCode() int { return c.statusCode }

// Direction returns the validation direction.
func (c Context) Direction() Direction { return c.direction }

// Depth returns how many pointer segments deep the context is.
func (c Context) Depth() int { return c.depth }

// Key returns the location key used to group violations:
//
//	REQUEST/BODY#/items/0/name
//	REQUEST/QUERY_PARAMETER/limit
//	RESPONSE/HEADER_PARAMETER/X-Rate-Limit
//	REQUEST/HEADER/Content-Type
func (c Context) Key() string {
	var sb strings.Builder
	sb.WriteString(c.direction.String())
	sb.WriteByte('/')

	switch c.entityType {
	case EntityNone:
	case EntityQueryParameter, EntityPathParameter, EntityHeaderParameter:
		sb.WriteString(c.entityType.String())
		if c.entity != "" {
			sb.WriteByte('/')
			sb.WriteString(c.entity)
		}
	case EntityMediaType:
		sb.WriteString("HEADER/Content-Type")
	default:
		sb.WriteString(c.entityType.String())
		if c.pointer != "" {
			sb.WriteByte('#')
			sb.WriteString(c.pointer)
		}
	}
	return sb.String()
}

// String implements fmt.Stringer for debugging.
func (c Context) String() string {
	return c.method + " " + c.path + " " + c.Key()
}

func escapePointerSegment(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
