package openapi

import "slices"

// ValidationSettings is the content of the x-membrane-validation document
// extension. Nil fields were not set in the document.
type ValidationSettings struct {
	Requests  *bool
	Responses *bool
	Details   *bool
	Security  *bool
}

// ValidationSettings reads the x-membrane-validation extension. A document
// without the extension yields all-nil settings.
//
//	x-membrane-validation:
//	  requests: true
//	  responses: true
//	  details: false
func (d *Document) ValidationSettings() ValidationSettings {
	m, ok := d.Extra[ExtensionValidation].(map[string]any)
	if !ok {
		return ValidationSettings{}
	}
	return ValidationSettings{
		Requests:  mapGetBoolPtr(m, "requests"),
		Responses: mapGetBoolPtr(m, "responses"),
		Details:   mapGetBoolPtr(m, "details"),
		Security:  mapGetBoolPtr(m, "security"),
	}
}

// APIKeyQueryParameters returns the query parameter names used by apiKey
// security schemes. Requests may carry them without declaring them as
// operation parameters.
func (d *Document) APIKeyQueryParameters() []string {
	if d.Components == nil {
		return nil
	}
	var names []string
	for _, scheme := range d.Components.SecuritySchemes {
		if scheme != nil && scheme.Type == SecurityTypeAPIKey && scheme.In == ParamInQuery && scheme.Name != "" {
			names = append(names, scheme.Name)
		}
	}
	slices.Sort(names)
	return names
}
