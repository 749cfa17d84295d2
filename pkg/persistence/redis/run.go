// Package redis provides a Redis-backed store for builder run status
// records, shared between the API and the generation workers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const (
	runKeyPrefix = "atelier:runs:"

	// runTTL bounds how long finished run records linger.
	runTTL = 24 * time.Hour
)

// RunRepository implements persistence.RunRepository on Redis.
type RunRepository struct {
	client redis.UniversalClient
}

// NewRunRepository wraps an existing Redis client.
func NewRunRepository(client redis.UniversalClient) *RunRepository {
	return &RunRepository{client: client}
}

// NewRunRepositoryFromURL connects to Redis using a redis:// URL.
func NewRunRepositoryFromURL(url string) (*RunRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return &RunRepository{client: redis.NewClient(opts)}, nil
}

func runKey(id string) string {
	return runKeyPrefix + id
}

func (rr *RunRepository) GetByID(ctx context.Context, id string) (*models.BuilderRun, error) {
	data, err := rr.client.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.ErrRunNotFound
		}

		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	var run models.BuilderRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}

	return &run, nil
}

func (rr *RunRepository) Save(ctx context.Context, run *models.BuilderRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	if err := rr.client.Set(ctx, runKey(run.ID), data, runTTL).Err(); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	return nil
}

func (rr *RunRepository) Delete(ctx context.Context, id string) error {
	deleted, err := rr.client.Del(ctx, runKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}

	if deleted == 0 {
		return persistence.ErrRunNotFound
	}

	return nil
}

// Close releases the underlying client.
func (rr *RunRepository) Close() error {
	return rr.client.Close()
}
