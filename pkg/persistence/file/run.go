package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
)

// RunRepository stores each builder run as runs/<id>.json under the
// repository root.
type RunRepository struct {
	root string
}

// NewRunRepository creates a new run repository.
func NewRunRepository(root string) *RunRepository {
	return &RunRepository{root: root}
}

func (rr *RunRepository) dir() string {
	return filepath.Join(rr.root, "runs")
}

func (rr *RunRepository) path(id string) string {
	return filepath.Join(rr.dir(), id+".json")
}

func (rr *RunRepository) GetByID(_ context.Context, id string) (*models.BuilderRun, error) {
	data, err := os.ReadFile(rr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrRunNotFound
		}

		return nil, err
	}

	var run models.BuilderRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, err
	}

	return &run, nil
}

func (rr *RunRepository) Save(_ context.Context, run *models.BuilderRun) error {
	if err := os.MkdirAll(rr.dir(), workflowDirPerm); err != nil {
		return err
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(rr.path(run.ID), data, 0o644)
}

func (rr *RunRepository) Delete(_ context.Context, id string) error {
	if err := os.Remove(rr.path(id)); err != nil {
		if os.IsNotExist(err) {
			return persistence.ErrRunNotFound
		}

		return err
	}

	return nil
}
