// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/atelierhq/atelier/pkg/registry"
)

// NewRegistry builds the block registry with the built-in block types.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultBlocks()

	return reg
}
