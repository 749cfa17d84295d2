package cmd

import (
	"strings"

	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/atelierhq/atelier/pkg/persistence/file"
	"github.com/atelierhq/atelier/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file"}

// NewPersistence builds the workflow store from a database URL. Only the
// file provider is implemented today; anything unrecognized falls back to
// treating the URL as a directory path.
func NewPersistence(databaseURL string) persistence.Persistence {
	provider := parsePersistenceProvider(databaseURL)

	switch provider {
	case "file":
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	default:
		return file.NewPersistence(databaseURL)
	}
}

// NewRunRepository picks the builder run store. With a Redis URL the run
// records live in Redis with a TTL; otherwise they share the workflow
// store.
func NewRunRepository(p persistence.Persistence, redisURL string) persistence.RunRepository {
	if redisURL == "" {
		return p.RunRepository()
	}

	repo, err := redis.NewRunRepositoryFromURL(redisURL)
	if err != nil {
		panic(err)
	}

	return repo
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
