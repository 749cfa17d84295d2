// Package file provides file-based persistence for workflows and builder
// runs, suitable for development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/atelierhq/atelier/pkg/persistence"
)

// Persistence implements persistence.Persistence on top of a directory of
// JSON files.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	runRepo      *RunRepository
}

// NewPersistence creates a file persistence rooted at root. A "file://"
// prefix is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		runRepo:      NewRunRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file persistence there is
// nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

// StepRepository operates by loading the owning workflow document,
// mutating it, and saving it back.
func (p *Persistence) StepRepository() persistence.StepRepository {
	return &stepRepository{workflows: p.workflowRepo}
}

func (p *Persistence) EdgeRepository() persistence.EdgeRepository {
	return &edgeRepository{workflows: p.workflowRepo}
}

func (p *Persistence) RunRepository() persistence.RunRepository {
	return p.runRepo
}
