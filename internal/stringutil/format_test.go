package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "simple", input: "user@example.com", want: true},
		{name: "dots", input: "first.last@example.com", want: true},
		{name: "plus", input: "user+tag@example.com", want: true},
		{name: "subdomain", input: "user@sub.example.com", want: true},
		{name: "hyphen in domain", input: "user@my-domain.com", want: true},
		{name: "missing at sign", input: "userexample.com"},
		{name: "missing domain", input: "user@"},
		{name: "missing local part", input: "@example.com"},
		{name: "missing TLD", input: "user@example"},
		{name: "single char TLD", input: "user@example.c"},
		{name: "empty", input: ""},
		{name: "spaces", input: "user @example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.input))
		})
	}
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.True(t, IsUUID("123E4567-E89B-12D3-A456-426614174000"))
	assert.False(t, IsUUID("urn:uuid:123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, IsUUID("{123e4567-e89b-12d3-a456-426614174000}"))
	assert.False(t, IsUUID("123e4567e89b12d3a456426614174000"))
	assert.False(t, IsUUID("123e4567-e89b-12d3-a456-42661417400g"))
}

func TestIsURI(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/a?b=c", true},
		{"/relative/path", true},
		{"mailto:user@example.com", true},
		{"", false},
		{"has space", false},
		{"https://example.com/{id}", false},
		{"http://[::1", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsURI(tt.input))
		})
	}
}

func TestIsDateAndDateTime(t *testing.T) {
	assert.True(t, IsDate("2024-02-29"))
	assert.False(t, IsDate("2023-02-29"))
	assert.False(t, IsDate("2024-2-1"))
	assert.False(t, IsDate("2024-02-29T10:00:00Z"))

	assert.True(t, IsDateTime("2024-02-29T10:00:00Z"))
	assert.True(t, IsDateTime("2024-02-29T10:00:00.123+02:00"))
	assert.False(t, IsDateTime("2024-02-29 10:00:00"))
	assert.False(t, IsDateTime("2024-02-29"))
}

func TestIsIP(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		v4, v6 bool
		want   bool
	}{
		{name: "v4 any", input: "192.168.1.1", v4: true, v6: true, want: true},
		{name: "v6 any", input: "::1", v4: true, v6: true, want: true},
		{name: "v4 only", input: "10.0.0.1", v4: true, want: true},
		{name: "v6 rejected as v4", input: "::1", v4: true},
		{name: "v4 rejected as v6", input: "10.0.0.1", v6: true},
		{name: "out of range", input: "256.1.1.1", v4: true, v6: true},
		{name: "not an address", input: "localhost", v4: true, v6: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIP(tt.input, tt.v4, tt.v6))
		})
	}
}
