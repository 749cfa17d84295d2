package registry

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	r := NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.RegisterDefaultBlocks()

	return r
}

func TestRegistry_Get_KnownBlock(t *testing.T) {
	r := newTestRegistry()

	definition, err := r.Get("http.request")
	require.NoError(t, err)
	assert.Equal(t, "HTTP Request", definition.Name)
}

func TestRegistry_Get_UnknownBlock(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Get("does.not.exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_ValidateConfig_Valid(t *testing.T) {
	r := newTestRegistry()

	err := r.ValidateConfig("http.request", map[string]any{
		"url":    "https://example.com/orders",
		"method": "POST",
	})
	assert.NoError(t, err)
}

func TestRegistry_ValidateConfig_MissingRequiredField(t *testing.T) {
	r := newTestRegistry()

	err := r.ValidateConfig("http.request", map[string]any{"method": "GET"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}

func TestRegistry_ValidateConfig_WrongType(t *testing.T) {
	r := newTestRegistry()

	err := r.ValidateConfig("transform", map[string]any{"expression": 42})
	require.Error(t, err)
}

func TestRegistry_ValidateConfig_NoSchemaAcceptsAnything(t *testing.T) {
	r := newTestRegistry()

	assert.NoError(t, r.ValidateConfig("log", map[string]any{"whatever": true}))
	assert.NoError(t, r.ValidateConfig("log", nil))
}

func TestRegistry_List(t *testing.T) {
	r := newTestRegistry()

	assert.GreaterOrEqual(t, len(r.List()), 6)
}
