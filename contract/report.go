package contract

import (
	"maps"
	"slices"
)

// ReportEntry is one violation in a Report.
type ReportEntry struct {
	Message     string `json:"message"               yaml:"message"`
	SchemaType  string `json:"schemaType,omitempty"  yaml:"schemaType,omitempty"`
	ComplexType string `json:"complexType,omitempty" yaml:"complexType,omitempty"`
}

// Report groups violations by location key, for example:
//
//	{
//	  "REQUEST/BODY#/age": [
//	    {"message": "-3 is smaller than the minimum of 0.", "schemaType": "integer", "complexType": "Person"}
//	  ]
//	}
type Report map[string][]ReportEntry

// Report groups the violations by Context.Key, keeping their order.
func (e Errors) Report() Report {
	r := make(Report, len(e))
	for _, err := range e {
		key := err.ctx.Key()
		r[key] = append(r[key], ReportEntry{
			Message:     err.message,
			SchemaType:  err.ctx.schemaType,
			ComplexType: err.ctx.complexType,
		})
	}
	return r
}

// Keys returns the location keys in sorted order.
func (r Report) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}

// Count returns the number of entries across all keys.
func (r Report) Count() int {
	n := 0
	for _, entries := range r {
		n += len(entries)
	}
	return n
}
