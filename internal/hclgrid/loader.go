package hclgrid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/gridplan/internal/ctxlog"
	"github.com/vk/gridplan/internal/graph"
)

// Loader parses .hcl grid files into the Grid model.
type Loader struct{}

// NewLoader creates a new HCL grid loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all recognized top-level blocks from one file.
type fileRoot struct {
	Steps   []*stepBlock  `hcl:"step,block"`
	Aliases []*aliasBlock `hcl:"alias,block"`
	Seeds   []*seedBlock  `hcl:"seed,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

type stepBlock struct {
	Name      string        `hcl:"name,label"`
	Trust     *string       `hcl:"trust,optional"`
	DependsOn []string      `hcl:"depends_on,optional"`
	Creates   []*fieldBlock `hcl:"create,block"`
	Reads     []*fieldBlock `hcl:"read,block"`
	Destroys  []*fieldBlock `hcl:"destroy,block"`
}

type fieldBlock struct {
	Datum string  `hcl:"datum,label"`
	Type  string  `hcl:"type"`
	Trust *string `hcl:"trust,optional"`
}

type aliasBlock struct {
	Left  string  `hcl:"left"`
	Right string  `hcl:"right"`
	Trust *string `hcl:"trust,optional"`
}

type seedBlock struct {
	Datum string         `hcl:"datum,label"`
	Value hcl.Expression `hcl:"value"`
}

// Load discovers and parses every .hcl file under the given paths and
// merges their blocks into a single Grid. Paths may be files or
// directories; a configured path that does not exist is skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Grid, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL grid loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered grid files.", "count", len(files))

	parser := hclparse.NewParser()
	grid := &Grid{}
	seenSteps := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}

		for _, sb := range root.Steps {
			if prev, dup := seenSteps[sb.Name]; dup {
				return nil, fmt.Errorf("step %q in %s already declared in %s", sb.Name, file, prev)
			}
			seenSteps[sb.Name] = file
			step, err := translateStep(sb)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			grid.Steps = append(grid.Steps, step)
		}
		for _, ab := range root.Aliases {
			trust, err := trustOrDefault(ab.Trust)
			if err != nil {
				return nil, fmt.Errorf("%s: alias %q/%q: %w", file, ab.Left, ab.Right, err)
			}
			grid.Aliases = append(grid.Aliases, &Alias{Left: ab.Left, Right: ab.Right, Trust: trust})
		}
		for _, sb := range root.Seeds {
			val, diags := sb.Value.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%s: seed %q: %w", file, sb.Datum, diags)
			}
			grid.Seeds = append(grid.Seeds, &Seed{Datum: sb.Datum, Value: val})
		}
	}

	logger.Debug("HCL grid loading complete.",
		"steps", len(grid.Steps), "aliases", len(grid.Aliases), "seeds", len(grid.Seeds))
	return grid, nil
}

func translateStep(sb *stepBlock) (*Step, error) {
	stepTrust, err := trustOrDefault(sb.Trust)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", sb.Name, err)
	}
	step := &Step{
		Name:      sb.Name,
		Trust:     stepTrust,
		DependsOn: sb.DependsOn,
	}

	appendFields := func(blocks []*fieldBlock, usage graph.Usage) error {
		for _, fb := range blocks {
			trust, err := trustOrDefault(fb.Trust)
			if err != nil {
				return fmt.Errorf("step %q, %s %q: %w", sb.Name, usage, fb.Datum, err)
			}
			step.Fields = append(step.Fields, Field{
				Datum: fb.Datum,
				Type:  graph.TypeTag(fb.Type),
				Usage: usage,
				Trust: trust,
			})
		}
		return nil
	}
	if err := appendFields(sb.Creates, graph.UsageCreate); err != nil {
		return nil, err
	}
	if err := appendFields(sb.Reads, graph.UsageRead); err != nil {
		return nil, err
	}
	if err := appendFields(sb.Destroys, graph.UsageDestroy); err != nil {
		return nil, err
	}
	return step, nil
}

func trustOrDefault(s *string) (graph.Trust, error) {
	if s == nil {
		return graph.TrustMiddle, nil
	}
	return graph.ParseTrust(*s)
}

// findAllHCLFiles walks all given paths and returns a flat, deduplicated
// list of .hcl files.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
