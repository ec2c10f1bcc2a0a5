package contract

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// PathMatcher matches request paths against one URI template such as
// "/pets/{petId}" and extracts the template variables.
type PathMatcher struct {
	// template is the URI template as written in the document
	template string

	regex *regexp.Regexp

	// params are the variable names in order of appearance
	params []string

	// specificity counts literal characters minus variables; higher wins
	specificity int
}

// NewPathMatcher compiles a URI template. Variables match one path segment.
// Unclosed, empty and duplicated variables are errors.
func NewPathMatcher(template string) (*PathMatcher, error) {
	if template == "" {
		return nil, fmt.Errorf("path template cannot be empty")
	}

	var sb strings.Builder
	sb.WriteByte('^')

	var params []string
	specificity := 0
	for rest := template; rest != ""; {
		open := strings.IndexByte(rest, '{')
		if open == -1 {
			specificity += literalWeight(rest)
			sb.WriteString(regexp.QuoteMeta(rest))
			break
		}
		if open > 0 {
			specificity += literalWeight(rest[:open])
			sb.WriteString(regexp.QuoteMeta(rest[:open]))
		}

		end := strings.IndexByte(rest[open:], '}')
		if end == -1 {
			return nil, fmt.Errorf("unclosed path parameter in template %q", template)
		}
		name := rest[open+1 : open+end]
		if name == "" {
			return nil, fmt.Errorf("empty path parameter in template %q", template)
		}
		if slices.Contains(params, name) {
			return nil, fmt.Errorf("duplicate path parameter %q in template %q", name, template)
		}
		params = append(params, name)
		sb.WriteString("([^/]+)")
		specificity--

		rest = rest[open+end+1:]
	}
	sb.WriteByte('$')

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile path pattern for template %q: %w", template, err)
	}
	return &PathMatcher{
		template:    template,
		regex:       re,
		params:      params,
		specificity: specificity,
	}, nil
}

// literalWeight counts the non-separator characters of a literal part.
func literalWeight(s string) int {
	return len(s) - strings.Count(s, "/")
}

// Match reports whether path matches and returns the variable values.
func (m *PathMatcher) Match(path string) (map[string]string, bool) {
	groups := m.regex.FindStringSubmatch(path)
	if groups == nil || len(groups) != len(m.params)+1 {
		return nil, false
	}
	values := make(map[string]string, len(m.params))
	for i, name := range m.params {
		values[name] = groups[i+1]
	}
	return values, true
}

// Template returns the URI template.
func (m *PathMatcher) Template() string {
	return m.template
}

// ParamNames returns the variable names in order of appearance.
func (m *PathMatcher) ParamNames() []string {
	return m.params
}

// PathMatcherSet finds the best template for a request path. Templates with
// more literal characters win, then longer templates, then lexical order, so
// "/pets/mine" is preferred over "/pets/{id}".
type PathMatcherSet struct {
	matchers []*PathMatcher
}

// NewPathMatcherSet compiles every template.
func NewPathMatcherSet(templates []string) (*PathMatcherSet, error) {
	matchers := make([]*PathMatcher, 0, len(templates))
	for _, tmpl := range templates {
		m, err := NewPathMatcher(tmpl)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	slices.SortFunc(matchers, func(a, b *PathMatcher) int {
		if c := cmp.Compare(b.specificity, a.specificity); c != 0 {
			return c
		}
		if c := cmp.Compare(len(b.template), len(a.template)); c != 0 {
			return c
		}
		return strings.Compare(a.template, b.template)
	})
	return &PathMatcherSet{matchers: matchers}, nil
}

// Match returns the best matching template and its variable values.
func (s *PathMatcherSet) Match(path string) (template string, params map[string]string, found bool) {
	for _, m := range s.matchers {
		if params, ok := m.Match(path); ok {
			return m.template, params, true
		}
	}
	return "", nil, false
}

// Templates returns the templates in match order.
func (s *PathMatcherSet) Templates() []string {
	out := make([]string, len(s.matchers))
	for i, m := range s.matchers {
		out[i] = m.template
	}
	return out
}
