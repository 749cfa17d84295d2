package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/atelierhq/atelier/pkg/builder"
	"github.com/atelierhq/atelier/pkg/commands"
	"github.com/atelierhq/atelier/pkg/editor"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/atelierhq/atelier/pkg/registry"
	"github.com/atelierhq/atelier/pkg/services"
)

var errUnexpectedCommand = errors.New("unexpected command type for change")

type APIHandlers struct {
	manager     *editor.Manager
	builder     *builder.Service
	registry    *registry.Registry
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	manager *editor.Manager,
	builderService *builder.Service,
	reg *registry.Registry,
	p persistence.Persistence,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		manager:     manager,
		builder:     builderService,
		registry:    reg,
		persistence: p,
		validator:   validate,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Atelier API is healthy"
	httpStatus := http.StatusOK

	repositoryErr := h.persistence.HealthCheck(c.Context())
	if repositoryErr != nil {
		status = "unhealthy"
		message = "Atelier API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetBlocks(c fiber.Ctx) error {
	return c.JSON(h.registry.List())
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.manager.Workflows().List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.manager.Workflows().GetByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.manager.Workflows().Create(c.Context(), &services.CreateWorkflowRequest{
		Name:        req.Name,
		Description: req.Description,
		Variables:   req.Variables,
		Metadata:    req.Metadata,
		Owner:       req.Owner,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.manager.Workflows().Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	h.manager.Close(id)

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateStep adds a step through the workflow's editing session so the
// operation lands on the undo stack.
func (h *APIHandlers) CreateStep(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req CreateStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	command, err := session.Apply(c.Context(), models.Change{
		Kind: models.ChangeKindStepCreate,
		StepCreate: &models.StepCreateChange{
			TempID:    "tmp-" + uuid.New().String(),
			Type:      req.Type,
			Category:  models.CategoryType(req.Category),
			Name:      req.Name,
			Config:    req.Config,
			PositionX: req.PositionX,
			PositionY: req.PositionY,
		},
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	createStep, ok := command.(*commands.CreateStep)
	if !ok {
		return internalError(c, errUnexpectedCommand)
	}

	step, err := h.manager.Workflows().GetByID(c.Context(), session.WorkflowID())
	if err != nil {
		return handleServiceError(c, err)
	}

	created := step.StepByID(createStep.StepID())
	if created == nil {
		return notFound(c, "step not found")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateStep(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	stepID := c.Params("stepId")
	if stepID == "" {
		return badRequest(c, "Step ID is required")
	}

	var req UpdateStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if _, err := session.Apply(c.Context(), models.Change{
		Kind: models.ChangeKindStepUpdate,
		StepUpdate: &models.StepUpdateChange{
			StepID: stepID,
			Patch:  req.Patch,
		},
	}); err != nil {
		return handleServiceError(c, err)
	}

	workflow, err := h.manager.Workflows().GetByID(c.Context(), session.WorkflowID())
	if err != nil {
		return handleServiceError(c, err)
	}

	updated := workflow.StepByID(stepID)
	if updated == nil {
		return notFound(c, "step not found")
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteStep(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	stepID := c.Params("stepId")
	if stepID == "" {
		return badRequest(c, "Step ID is required")
	}

	if _, err := session.Apply(c.Context(), models.Change{
		Kind:       models.ChangeKindStepDelete,
		StepDelete: &models.StepDeleteChange{StepID: stepID},
	}); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateEdge(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req CreateEdgeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	command, err := session.Apply(c.Context(), models.Change{
		Kind: models.ChangeKindEdgeCreate,
		EdgeCreate: &models.EdgeCreateChange{
			SourceStep: req.SourceStep,
			SourcePort: req.SourcePort,
			TargetStep: req.TargetStep,
			TargetPort: req.TargetPort,
		},
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	createEdge, ok := command.(*commands.CreateEdge)
	if !ok {
		return internalError(c, errUnexpectedCommand)
	}

	workflow, err := h.manager.Workflows().GetByID(c.Context(), session.WorkflowID())
	if err != nil {
		return handleServiceError(c, err)
	}

	created := workflow.EdgeByID(createEdge.EdgeID())
	if created == nil {
		return notFound(c, "edge not found")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) DeleteEdge(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	edgeID := c.Params("edgeId")
	if edgeID == "" {
		return badRequest(c, "Edge ID is required")
	}

	if _, err := session.Apply(c.Context(), models.Change{
		Kind:       models.ChangeKindEdgeDelete,
		EdgeDelete: &models.EdgeDeleteChange{EdgeID: edgeID},
	}); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetHistory(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	entries := make([]HistoryEntryResponse, 0)
	for _, command := range session.History() {
		entries = append(entries, HistoryEntryResponse{
			ID:          command.ID(),
			Type:        string(command.Type()),
			Description: command.Description(),
			Timestamp:   command.Timestamp().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(HistoryResponse{
		CanUndo:         session.CanUndo(),
		CanRedo:         session.CanRedo(),
		UndoDescription: session.UndoDescription(),
		RedoDescription: session.RedoDescription(),
		Entries:         entries,
	})
}

func (h *APIHandlers) Undo(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	done, err := session.Undo(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"undone": done, "can_undo": session.CanUndo(), "can_redo": session.CanRedo()})
}

func (h *APIHandlers) Redo(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	done, err := session.Redo(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"redone": done, "can_undo": session.CanUndo(), "can_redo": session.CanRedo()})
}

func (h *APIHandlers) ClearHistory(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	session.ClearHistory(c.Context())

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) StartDraft(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req StartDraftRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	draftID := session.StartDraft(req.Description)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"draft_id": draftID})
}

func (h *APIHandlers) AddDraftChange(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req AddDraftChangeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := req.Change.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	session.AddDraftChange(req.Change)

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *APIHandlers) GetDraft(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	current := session.CurrentDraft()
	if current == nil {
		return notFound(c, "no active draft")
	}

	return c.JSON(DraftResponse{
		Draft:   current,
		Preview: session.DraftPreview(),
		Summary: session.DraftSummary(),
	})
}

func (h *APIHandlers) FinalizeDraft(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	result := session.FinalizeDraft()

	return c.JSON(FinalizeDraftResponse{NeedsPreview: result.NeedsPreview})
}

func (h *APIHandlers) ApplyDraft(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := session.ApplyDraft(c.Context()); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DiscardDraft(c fiber.Ctx) error {
	session, err := h.openSession(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	session.DiscardDraft(c.Context())

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateRun(c fiber.Ctx) error {
	workflowID := c.Params("id")
	if workflowID == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req CreateRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if _, err := h.manager.Workflows().GetByID(c.Context(), workflowID); err != nil {
		return handleServiceError(c, err)
	}

	run, err := h.builder.Request(c.Context(), workflowID, req.Prompt)
	if err != nil {
		return handleBuilderError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(run)
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	runID := c.Params("runId")
	if runID == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.builder.Get(c.Context(), runID)
	if err != nil {
		return handleBuilderError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) CancelRun(c fiber.Ctx) error {
	runID := c.Params("runId")
	if runID == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.builder.Cancel(c.Context(), runID)
	if err != nil {
		return handleBuilderError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) openSession(c fiber.Ctx) (*editor.Session, error) {
	workflowID := c.Params("id")
	if workflowID == "" {
		return nil, &services.ServiceError{Op: "openSession", Err: services.ErrInvalidRequest}
	}

	return h.manager.Open(c.Context(), workflowID)
}
