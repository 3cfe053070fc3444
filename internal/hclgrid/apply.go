package hclgrid

import (
	"context"
	"fmt"

	"github.com/vk/gridplan/internal/cell"
	"github.com/vk/gridplan/internal/ctxlog"
	"github.com/vk/gridplan/internal/registry"
)

// Apply feeds a loaded Grid into the core through the registry, in two
// passes: first every step and field (which also merges same-label fields
// into their datum classes), then the explicit links and aliases, whose
// targets must all exist by that point. Seed values go into the cell bank.
func Apply(ctx context.Context, grid *Grid, reg *registry.Registry, seeds *cell.Bank) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Applying grid declaration.", "steps", len(grid.Steps))

	for _, step := range grid.Steps {
		if _, err := reg.Step(step.Name); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}
		for _, f := range step.Fields {
			if _, err := reg.Field(step.Name, f.Datum, f.Type, f.Usage, f.Trust); err != nil {
				return fmt.Errorf("step %q, %s of %q: %w", step.Name, f.Usage, f.Datum, err)
			}
		}
	}
	logger.Debug("Field registration pass complete.")

	for _, step := range grid.Steps {
		for _, dep := range step.DependsOn {
			if err := reg.LinkSteps(dep, step.Name, step.Trust); err != nil {
				return fmt.Errorf("step %q depends_on %q: %w", step.Name, dep, err)
			}
		}
	}
	for _, alias := range grid.Aliases {
		if err := reg.Alias(alias.Left, alias.Right, alias.Trust); err != nil {
			return fmt.Errorf("alias %q/%q: %w", alias.Left, alias.Right, err)
		}
	}
	logger.Debug("Link pass complete.")

	for _, seed := range grid.Seeds {
		seeds.Cell(seed.Datum).Store(seed.Value)
	}
	if len(grid.Seeds) > 0 {
		logger.Debug("Seed values stored.", "count", len(grid.Seeds))
	}
	return nil
}
