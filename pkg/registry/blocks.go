package registry

import "github.com/atelierhq/atelier/pkg/models"

// RegisterDefaultBlocks registers the built-in block types.
func (r *Registry) RegisterDefaultBlocks() {
	r.Register(BlockDefinition{
		Type:        "trigger:webhook",
		Category:    models.CategoryTypeTrigger,
		Name:        "Webhook",
		Description: "Starts the workflow on an incoming HTTP request",
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":   map[string]any{"type": "string"},
				"method": map[string]any{"type": "string", "enum": []any{"GET", "POST", "PUT", "DELETE"}},
			},
		},
	})

	r.Register(BlockDefinition{
		Type:        "trigger:scheduler",
		Category:    models.CategoryTypeTrigger,
		Name:        "Schedule",
		Description: "Starts the workflow on a cron schedule",
		ConfigSchema: map[string]any{
			"type":       "object",
			"required":   []any{"cron"},
			"properties": map[string]any{"cron": map[string]any{"type": "string"}},
		},
	})

	r.Register(BlockDefinition{
		Type:        "http.request",
		Category:    models.CategoryTypeAction,
		Name:        "HTTP Request",
		Description: "Calls an external HTTP endpoint",
		ConfigSchema: map[string]any{
			"type":     "object",
			"required": []any{"url"},
			"properties": map[string]any{
				"url":     map[string]any{"type": "string"},
				"method":  map[string]any{"type": "string"},
				"headers": map[string]any{"type": "object"},
				"body":    map[string]any{"type": "string"},
			},
		},
	})

	r.Register(BlockDefinition{
		Type:        "transform",
		Category:    models.CategoryTypeAction,
		Name:        "Transform",
		Description: "Reshapes data with an expression",
		ConfigSchema: map[string]any{
			"type":       "object",
			"required":   []any{"expression"},
			"properties": map[string]any{"expression": map[string]any{"type": "string"}},
		},
	})

	r.Register(BlockDefinition{
		Type:        "conditional",
		Category:    models.CategoryTypeAction,
		Name:        "Conditional",
		Description: "Routes execution based on a condition",
		ConfigSchema: map[string]any{
			"type":       "object",
			"required":   []any{"condition"},
			"properties": map[string]any{"condition": map[string]any{"type": "string"}},
		},
	})

	r.Register(BlockDefinition{
		Type:        "log",
		Category:    models.CategoryTypeAction,
		Name:        "Log",
		Description: "Writes a message to the execution log",
	})
}
