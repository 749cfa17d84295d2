package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/channels/gochannel"
	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence/file"
	"github.com/atelierhq/atelier/pkg/registry"
	"github.com/atelierhq/atelier/pkg/web"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.Default()

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultBlocks()

	persistence := file.NewPersistence(t.TempDir())

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	api := NewAPI(
		logger,
		persistence,
		persistence.RunRepository(),
		reg,
		eventbus.NewWatermillEventBus(pub, sub),
		nil,
	)

	return api.App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Atelier API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GetBlocks(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/blocks", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var blocks []registry.BlockDefinition

	err = json.NewDecoder(resp.Body).Decode(&blocks)
	require.NoError(t, err)
	assert.NotEmpty(t, blocks)
}

func TestAPI_WorkflowEditingLifecycle(t *testing.T) {
	app := setupTestApp(t)

	// Create a workflow.
	body, err := json.Marshal(web.CreateWorkflowRequest{
		Name:  "Checkout events",
		Owner: "user-1",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&workflow))
	require.NotEmpty(t, workflow.ID)

	// Add a step through the editing session.
	body, err = json.Marshal(web.CreateStepRequest{
		Type:     "log",
		Category: "action",
		Name:     "Log checkout",
		Config:   map[string]any{"message": "checkout", "level": "info"},
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/steps", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var step models.WorkflowStep

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&step))
	assert.NotEmpty(t, step.ID)
	assert.Equal(t, "Log checkout", step.Name)

	// The edit is on the undo stack.
	req = httptest.NewRequest(http.MethodGet, "/workflows/"+workflow.ID+"/history", nil)
	req.Header.Set("Accept", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history web.HistoryResponse

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.True(t, history.CanUndo)
	assert.Len(t, history.Entries, 1)

	// Undo removes the step again.
	req = httptest.NewRequest(http.MethodPost, "/workflows/"+workflow.ID+"/history/undo", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/workflows/"+workflow.ID, nil)
	req.Header.Set("Accept", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Workflow

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Empty(t, fetched.Steps)
}

func TestAPI_GetWorkflow_NotFound(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows/non-existent-workflow", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
