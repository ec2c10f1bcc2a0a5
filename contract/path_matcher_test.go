package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathMatcher(t *testing.T) {
	tests := []struct {
		template string
		wantErr  string
		params   []string
	}{
		{template: "/pets", params: nil},
		{template: "/pets/{petId}", params: []string{"petId"}},
		{template: "/users/{userId}/posts/{postId}", params: []string{"userId", "postId"}},
		{template: "/files/{name}.{ext}", params: []string{"name", "ext"}},
		{template: "", wantErr: "cannot be empty"},
		{template: "/pets/{petId", wantErr: "unclosed"},
		{template: "/pets/{}", wantErr: "empty path parameter"},
		{template: "/a/{id}/b/{id}", wantErr: "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			m, err := NewPathMatcher(tt.template)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.template, m.Template())
			assert.Equal(t, tt.params, m.ParamNames())
		})
	}
}

func TestPathMatcherMatch(t *testing.T) {
	tests := []struct {
		template string
		path     string
		want     map[string]string
		match    bool
	}{
		{"/pets", "/pets", map[string]string{}, true},
		{"/pets", "/pets/", nil, false},
		{"/pets/{petId}", "/pets/42", map[string]string{"petId": "42"}, true},
		{"/pets/{petId}", "/pets/42/toys", nil, false},
		{"/pets/{petId}", "/pets/", nil, false},
		{"/files/{name}.{ext}", "/files/report.pdf", map[string]string{"name": "report", "ext": "pdf"}, true},
		{"/v1.0/items", "/v1x0/items", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.template+" "+tt.path, func(t *testing.T) {
			m, err := NewPathMatcher(tt.template)
			require.NoError(t, err)
			got, ok := m.Match(tt.path)
			assert.Equal(t, tt.match, ok)
			if tt.match {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPathMatcherSetPrefersLiterals(t *testing.T) {
	set, err := NewPathMatcherSet([]string{"/pets/{petId}", "/pets/mine", "/{resource}/mine", "/pets"})
	require.NoError(t, err)

	tests := []struct {
		path     string
		template string
		params   map[string]string
	}{
		{"/pets/mine", "/pets/mine", map[string]string{}},
		{"/pets/7", "/pets/{petId}", map[string]string{"petId": "7"}},
		{"/users/mine", "/{resource}/mine", map[string]string{"resource": "users"}},
		{"/pets", "/pets", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tmpl, params, found := set.Match(tt.path)
			require.True(t, found)
			assert.Equal(t, tt.template, tmpl)
			assert.Equal(t, tt.params, params)
		})
	}

	_, _, found := set.Match("/nothing/here")
	assert.False(t, found)
	assert.Equal(t, "/pets/mine", set.Templates()[0])
}

func TestPathMatcherSetRejectsInvalidTemplate(t *testing.T) {
	_, err := NewPathMatcherSet([]string{"/ok", "/bad/{"})
	assert.Error(t, err)
}
