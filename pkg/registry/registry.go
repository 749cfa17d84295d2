// Package registry holds the catalog of block types available in the
// editor palette and validates step configuration against their schemas.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// BlockDefinition describes one block type: its identity, palette metadata
// and the JSON schema its step config must satisfy.
type BlockDefinition struct {
	Type         string              `json:"type"`
	Category     models.CategoryType `json:"category"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	ConfigSchema map[string]any      `json:"config_schema,omitempty"`
}

// Registry is the block-type catalog.
type Registry struct {
	logger *slog.Logger
	blocks map[string]BlockDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With("module", "registry"),
		blocks: make(map[string]BlockDefinition),
	}
}

// Register adds or replaces a block definition.
func (r *Registry) Register(definition BlockDefinition) {
	r.blocks[definition.Type] = definition
}

// Get returns the definition for a block type.
func (r *Registry) Get(blockType string) (BlockDefinition, error) {
	definition, ok := r.blocks[blockType]
	if !ok {
		return BlockDefinition{}, fmt.Errorf("block type '%s' not registered", blockType)
	}

	return definition, nil
}

// List returns all registered definitions.
func (r *Registry) List() []BlockDefinition {
	definitions := make([]BlockDefinition, 0, len(r.blocks))
	for _, definition := range r.blocks {
		definitions = append(definitions, definition)
	}

	return definitions
}

// ValidateConfig checks a step config against the block type's schema.
// Block types without a schema accept any config.
func (r *Registry) ValidateConfig(blockType string, config map[string]any) error {
	definition, err := r.Get(blockType)
	if err != nil {
		return err
	}

	if definition.ConfigSchema == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(definition.ConfigSchema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate config for '%s': %w", blockType, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("invalid config for '%s': %s", blockType, strings.Join(details, "; "))
	}

	return nil
}
