package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/openapi"
)

const zoo = `
openapi: "3.0.3"
info:
  title: Zoo
  version: "1"
paths:
  /animals:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                  minLength: 1
      responses:
        "201":
          description: created
  /animals/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: object
                required: [name]
                properties:
                  name:
                    type: string
                  legs:
                    type: array
                    items:
                      type: integer
`

func boolPtr(b bool) *bool { return &b }

func mustDocument(t *testing.T, doc string) *openapi.Document {
	t.Helper()
	d, err := openapi.ParseWithOptions(openapi.WithBytes([]byte(doc)))
	require.NoError(t, err)
	return d
}

func mustEngine(t *testing.T, doc string, cfg *Config) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	e, err := NewEngine(mustDocument(t, doc), cfg, nil)
	require.NoError(t, err)
	return e
}

// writeSpec writes doc to a fresh directory and returns its path.
func writeSpec(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}
