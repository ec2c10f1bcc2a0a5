package gateway

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oasguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
spec: petstore.yaml
upstream: http://localhost:9000
basePath: /api
validation:
  responses: true
  details: false
reload:
  enabled: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "petstore.yaml", cfg.Spec)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, "http://localhost:9000", cfg.Upstream)
	assert.Equal(t, "/api", cfg.BasePath)
	assert.Nil(t, cfg.Validation.Requests)
	require.NotNil(t, cfg.Validation.Responses)
	assert.True(t, *cfg.Validation.Responses)
	require.NotNil(t, cfg.Validation.Details)
	assert.False(t, *cfg.Validation.Details)
	assert.True(t, cfg.Reload.Enabled)
	assert.Equal(t, DefaultDebounce, cfg.Reload.Debounce)
	assert.Equal(t, int64(DefaultMaxBodySize), cfg.MaxBodySize)
	assert.False(t, cfg.AllowAdditionalProperties)
	assert.Equal(t, "spec=petstore.yaml listen=:8080 upstream=http://localhost:9000 basePath=/api reload=true", cfg.String())
}

func TestLoadConfigEnv(t *testing.T) {
	path := writeConfig(t, "spec: file.yaml\nlisten: \":9000\"\n")
	t.Setenv("OASGUARD_SPEC", "env.yaml")
	t.Setenv("OASGUARD_MAX_DEPTH", "12")
	t.Setenv("OASGUARD_VALIDATE_REQUESTS", "false")
	t.Setenv("OASGUARD_VALIDATE_DETAILS", "maybe")
	t.Setenv("OASGUARD_RELOAD", "true")
	t.Setenv("OASGUARD_RELOAD_DEBOUNCE", "2s")
	t.Setenv("OASGUARD_MAX_BODY_SIZE", "2048")
	t.Setenv("OASGUARD_ALLOW_ADDITIONAL_PROPERTIES", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env.yaml", cfg.Spec)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, 12, cfg.MaxDepth)
	require.NotNil(t, cfg.Validation.Requests)
	assert.False(t, *cfg.Validation.Requests)
	assert.Nil(t, cfg.Validation.Details, "invalid values are ignored")
	assert.True(t, cfg.Reload.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Reload.Debounce)
	assert.Equal(t, int64(2048), cfg.MaxBodySize)
	assert.True(t, cfg.AllowAdditionalProperties)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("OASGUARD_SPEC", "api.yaml")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "api.yaml", cfg.Spec)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		option  string
	}{
		{name: "missing spec", content: "listen: \"x\"\n", option: "spec"},
		{name: "relative upstream", content: "spec: a.yaml\nupstream: localhost:9000/x\n", option: "upstream"},
		{name: "base path", content: "spec: a.yaml\nbasePath: api\n", option: "basePath"},
		{name: "invalid yaml", content: "spec: [\n", option: "config"},
		{name: "negative body size", content: "spec: a.yaml\nmaxBodySize: -1\n", option: "maxBodySize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrConfig))
			var cerr *oaserrors.ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.option, cerr.Option)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, oaserrors.ErrConfig))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{BasePath: "api", MaxDepth: -1, MaxBodySize: -5}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec")
	assert.Contains(t, err.Error(), "basePath")
	assert.Contains(t, err.Error(), "maxDepth")
	assert.Contains(t, err.Error(), "maxBodySize")
}

func TestSettingsPrecedence(t *testing.T) {
	const withExtension = `
openapi: "3.0.3"
info:
  title: Ext
  version: "1"
x-membrane-validation:
  requests: false
  responses: true
paths: {}
`
	doc := mustDocument(t, withExtension)

	tests := []struct {
		name string
		cfg  ValidationConfig
		want Settings
	}{
		{name: "extension over defaults", want: Settings{Requests: false, Responses: true, Details: true}},
		{
			name: "config over extension",
			cfg:  ValidationConfig{Requests: boolPtr(true), Details: boolPtr(false)},
			want: Settings{Requests: true, Responses: true, Details: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Validation: tt.cfg}
			assert.Equal(t, tt.want, cfg.Settings(doc))
		})
	}

	assert.Equal(t, DefaultSettings, (&Config{}).Settings(mustDocument(t, zoo)))
}
