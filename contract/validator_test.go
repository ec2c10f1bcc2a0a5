package contract

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/openapi"
)

// warnings records Warn messages with their first attribute pairs.
type warnings struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (w *warnings) Debug(string, ...any) {}
func (w *warnings) Info(string, ...any)  {}
func (w *warnings) Error(string, ...any) {}
func (w *warnings) With(...any) openapi.Logger {
	return w
}

func (w *warnings) Warn(msg string, attrs ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry := map[string]any{"msg": msg}
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok {
			entry[k] = attrs[i+1]
		}
	}
	w.entries = append(w.entries, entry)
}

func TestNewNilDocument(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

func TestNewWarnsAboutUnmatchableKeys(t *testing.T) {
	doc := mustParse(t, `openapi: "3.0.3"
info:
  title: Keys
  version: "1"
paths:
  /things:
    post:
      requestBody:
        content:
          "*/json":
            schema:
              type: object
      responses:
        "201":
          description: created
        "2XX":
          description: other success
        "ok":
          description: never matched
`)
	log := &warnings{}
	_, err := New(doc, WithLogger(log))
	require.NoError(t, err)

	require.Len(t, log.entries, 2)
	var keys []any
	for _, e := range log.entries {
		assert.Equal(t, "/things", e["template"])
		assert.Equal(t, "POST", e["method"])
		if k, ok := e["key"]; ok {
			keys = append(keys, k)
		}
		if mt, ok := e["mediaType"]; ok {
			keys = append(keys, mt)
		}
	}
	assert.ElementsMatch(t, []any{"ok", "*/json"}, keys)
}

func TestNewQuietForCleanDocument(t *testing.T) {
	log := &warnings{}
	_, err := New(mustParse(t, `openapi: "3.0.3"
info:
  title: Clean
  version: "1"
paths:
  /things:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
        default:
          description: error
          content:
            application/*:
              schema:
                type: object
`), WithLogger(log))
	require.NoError(t, err)
	assert.Empty(t, log.entries)
}
