package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/vk/gridplan/internal/ctxlog"
	"github.com/vk/gridplan/internal/diagnose"
	"github.com/vk/gridplan/internal/export"
	"github.com/vk/gridplan/internal/graph"
	"github.com/vk/gridplan/internal/hclgrid"
)

// ErrDiagnostics is returned by Run when the declared graph fails
// validation. The findings have already been logged by the time it surfaces.
type ErrDiagnostics struct {
	ErrorCount int
}

func (e *ErrDiagnostics) Error() string {
	return fmt.Sprintf("graph validation produced %d error(s)", e.ErrorCount)
}

// Run loads the grid declaration, builds and validates the graph, logs the
// diagnostics report, and writes the exported graph JSON on success.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run started.", "grid_path", a.config.GridPath, "lazy", a.config.Lazy)

	grid, err := a.loader.Load(ctx, a.config.GridPath)
	if err != nil {
		return fmt.Errorf("failed to load grid declaration: %w", err)
	}
	if len(grid.Steps) == 0 {
		a.logger.Warn("No steps declared; nothing to validate.")
		return nil
	}

	if err := hclgrid.Apply(ctx, grid, a.registry, a.seeds); err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	a.logger.Debug("Graph construction complete.",
		"steps", a.graph.StepCount(), "fields", a.graph.FieldCount())

	report := diagnose.Analyze(a.graph, a.config.Sealed)
	a.logReport(report)
	if report.HasErrors() {
		return &ErrDiagnostics{ErrorCount: len(report.Errors())}
	}

	exported, err := export.Export(a.graph)
	if err != nil {
		return fmt.Errorf("failed to export graph: %w", err)
	}
	a.logger.Info("Graph exported.",
		"data_objects", len(exported.DataObjects),
		"explicit_links", len(exported.ExplicitLinks),
		"implicit_links", len(exported.ImplicitLinks))

	return a.writeExport(exported)
}

// logReport logs every finding with names resolved back through the
// registry, warnings at warn level and errors at error level.
func (a *App) logReport(report *diagnose.Report) {
	for _, item := range report.Items {
		attrs := []any{
			"category", item.Category.String(),
			"steps", a.stepNames(item.Steps),
			"fields", a.fieldLabels(item.Fields),
		}
		if len(item.Blamed) > 0 {
			attrs = append(attrs, "blamed", blameSummary(item.Blamed))
		}
		if item.Severity == diagnose.SeverityError {
			a.logger.Error(item.Message, attrs...)
		} else {
			a.logger.Warn(item.Message, attrs...)
		}
	}
}

func (a *App) stepNames(idxs []graph.Index) []string {
	names := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		if name, ok := a.registry.StepName(idx); ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("step[%d]", idx))
		}
	}
	return names
}

func (a *App) fieldLabels(idxs []graph.Index) []string {
	labels := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		if label, ok := a.registry.FieldLabel(idx); ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, fmt.Sprintf("field[%d]", idx))
		}
	}
	return labels
}

func blameSummary(blamed []diagnose.BlamedLink) string {
	parts := make([]string, 0, len(blamed))
	for _, b := range blamed {
		parts = append(parts, fmt.Sprintf("%s #%d (%s)", b.Kind, b.Ledger, b.Trust))
	}
	return strings.Join(parts, ", ")
}

func (a *App) writeExport(exported *export.Graph) error {
	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode exported graph: %w", err)
	}
	data = append(data, '\n')

	if a.config.OutPath == "" {
		_, err = a.outW.Write(data)
		return err
	}
	if err := os.WriteFile(a.config.OutPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write exported graph: %w", err)
	}
	a.logger.Info("Exported graph written.", "path", a.config.OutPath)
	return nil
}
