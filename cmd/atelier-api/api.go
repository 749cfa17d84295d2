// Package main provides the Atelier API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelierhq/atelier/pkg/builder"
	"github.com/atelierhq/atelier/pkg/editor"
	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/atelierhq/atelier/pkg/registry"
	"github.com/atelierhq/atelier/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	runs        persistence.RunRepository
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate

	manager *editor.Manager
}

func NewAPI(
	logger *slog.Logger,
	p persistence.Persistence,
	runs persistence.RunRepository,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: p,
		runs:        runs,
		registry:    reg,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	a.manager = editor.NewManager(a.persistence, a.registry, a.eventBus, a.tracer, a.logger)
	builderService := builder.NewService(a.runs, a.eventBus, a.logger)

	handlers := web.NewAPIHandlers(a.manager, builderService, a.registry, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Atelier API")
	})

	app.Get("/blocks", handlers.GetBlocks)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	// Undoable graph edits go through the workflow's editing session:
	w.Post("/:id/steps", handlers.CreateStep)
	w.Patch("/:id/steps/:stepId", handlers.UpdateStep)
	w.Delete("/:id/steps/:stepId", handlers.DeleteStep)
	w.Post("/:id/edges", handlers.CreateEdge)
	w.Delete("/:id/edges/:edgeId", handlers.DeleteEdge)

	w.Get("/:id/history", handlers.GetHistory)
	w.Post("/:id/history/undo", handlers.Undo)
	w.Post("/:id/history/redo", handlers.Redo)
	w.Delete("/:id/history", handlers.ClearHistory)

	w.Post("/:id/draft", handlers.StartDraft)
	w.Get("/:id/draft", handlers.GetDraft)
	w.Post("/:id/draft/changes", handlers.AddDraftChange)
	w.Post("/:id/draft/finalize", handlers.FinalizeDraft)
	w.Post("/:id/draft/apply", handlers.ApplyDraft)
	w.Delete("/:id/draft", handlers.DiscardDraft)

	w.Post("/:id/runs", handlers.CreateRun)
	app.Get("/runs/:runId", handlers.GetRun)
	app.Post("/runs/:runId/cancel", handlers.CancelRun)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int, janitorSpec string) error {
	app := a.App()

	if janitorSpec != "" {
		if err := a.manager.StartJanitor(janitorSpec); err != nil {
			return err
		}

		defer a.manager.StopJanitor()
	}

	return app.Listen(":" + strconv.Itoa(port))
}
