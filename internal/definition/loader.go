package definition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/topoconst/internal/ctxlog"
	"github.com/vk/topoconst/internal/fsutil"
)

// hclFileRoot is the top-level structure of a definition file for decoding.
type hclFileRoot struct {
	Constants []*hclConstant `hcl:"constant,block"`
}

type hclConstant struct {
	ID                      string     `hcl:"id,label"`
	Symbol                  string     `hcl:"symbol"`
	Name                    string     `hcl:"name"`
	Formula                 string     `hcl:"formula,optional"`
	Dependencies            []string   `hcl:"dependencies,optional"`
	Category                string     `hcl:"category,optional"`
	Unit                    string     `hcl:"unit,optional"`
	CorrectionFactors       []string   `hcl:"correction_factors,optional"`
	ExperimentalValue       float64    `hcl:"experimental_value,optional"`
	ExperimentalUncertainty float64    `hcl:"experimental_uncertainty,optional"`
	AccuracyTarget          float64    `hcl:"accuracy_target,optional"`
	Steps                   []*hclStep `hcl:"step,block"`
}

type hclStep struct {
	Name    string `hcl:"name,label"`
	Formula string `hcl:"formula"`
}

// jsonConstant mirrors the per-constant JSON files of the legacy data
// pipeline. Only the fields the pipeline consumes are decoded.
type jsonConstant struct {
	ID             string       `json:"id"`
	Symbol         string       `json:"symbol"`
	Name           string       `json:"name"`
	Formula        string       `json:"formula"`
	Dependencies   []string     `json:"dependencies"`
	Category       string       `json:"category"`
	Unit           string       `json:"unit"`
	AccuracyTarget float64      `json:"accuracyTarget"`
	Sources        []jsonSource `json:"sources"`
	Metadata       struct {
		CorrectionFactors []struct {
			Name string `json:"name"`
		} `json:"correction_factors"`
	} `json:"metadata"`
}

type jsonSource struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
}

// Load discovers every .hcl and .json definition file under the given paths
// and consolidates them into a single read-only Store.
func Load(ctx context.Context, paths ...string) (*Store, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtensions(p, ".hcl", ".json")
		if err != nil {
			return nil, fmt.Errorf("discovering definition files under %s: %w", p, err)
		}
		files = append(files, found...)
	}
	logger.Debug("Discovered definition files.", "count", len(files))

	parser := hclparse.NewParser()
	var constants []*Constant

	for _, file := range files {
		var (
			loaded []*Constant
			err    error
		)
		if strings.HasSuffix(file, ".json") {
			loaded, err = loadJSONFile(file)
		} else {
			loaded, err = loadHCLFile(file, parser)
		}
		if err != nil {
			return nil, err
		}
		for _, c := range loaded {
			stripSelfEdges(ctx, c)
			constants = append(constants, c)
		}
	}

	store, err := NewStore(constants)
	if err != nil {
		return nil, err
	}
	logger.Info("Definitions loaded.", "count", store.Len(), "axioms", len(store.Axioms()))
	return store, nil
}

func loadHCLFile(path string, parser *hclparse.Parser) ([]*Constant, error) {
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse definition file %s: %w", path, diags)
	}

	var root hclFileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode definition file %s: %w", path, diags)
	}

	out := make([]*Constant, 0, len(root.Constants))
	for _, hc := range root.Constants {
		c := &Constant{
			ID:                      hc.ID,
			Symbol:                  hc.Symbol,
			Name:                    hc.Name,
			Formula:                 hc.Formula,
			Dependencies:            hc.Dependencies,
			Category:                hc.Category,
			Unit:                    hc.Unit,
			CorrectionFactors:       hc.CorrectionFactors,
			ExperimentalValue:       hc.ExperimentalValue,
			ExperimentalUncertainty: hc.ExperimentalUncertainty,
			AccuracyTarget:          hc.AccuracyTarget,
		}
		for _, s := range hc.Steps {
			c.Steps = append(c.Steps, Step{Name: s.Name, Formula: s.Formula})
		}
		out = append(out, c)
	}
	return out, nil
}

func loadJSONFile(path string) ([]*Constant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition file %s: %w", path, err)
	}

	var jc jsonConstant
	if err := json.Unmarshal(raw, &jc); err != nil {
		return nil, fmt.Errorf("failed to decode definition file %s: %w", path, err)
	}

	c := &Constant{
		ID:             jc.ID,
		Symbol:         jc.Symbol,
		Name:           jc.Name,
		Formula:        jc.Formula,
		Dependencies:   jc.Dependencies,
		Category:       jc.Category,
		Unit:           jc.Unit,
		AccuracyTarget: jc.AccuracyTarget,
	}

	// The experimental reference is the first source that is a measurement,
	// not the theory's own prediction.
	for _, src := range jc.Sources {
		if strings.Contains(src.Name, "Topological") {
			continue
		}
		c.ExperimentalValue = src.Value
		c.ExperimentalUncertainty = src.Uncertainty
		break
	}

	for _, cf := range jc.Metadata.CorrectionFactors {
		name, ok := legacyCorrectionName(cf.Name)
		if !ok {
			return nil, fmt.Errorf("definition file %s: unknown correction factor %q", path, cf.Name)
		}
		c.CorrectionFactors = append(c.CorrectionFactors, name)
	}

	return []*Constant{c}, nil
}

// legacyCorrectionName maps the display names used in the legacy JSON
// metadata onto registry entries.
func legacyCorrectionName(display string) (string, bool) {
	switch {
	case strings.Contains(display, "4D-Loop"):
		return "correction_4d_loop", true
	case strings.Contains(display, "KK-Geometry"):
		return "correction_kk_geometry", true
	case strings.Contains(display, "minus"):
		return "correction_vev_backreaction_minus", true
	case strings.Contains(display, "plus"):
		return "correction_vev_backreaction_plus", true
	default:
		return "", false
	}
}

// stripSelfEdges drops a definition's dependency on itself. The corpus has
// bootstrap definitions whose own value justifies their formula; they are
// treated as axioms rather than as one-node cycles.
func stripSelfEdges(ctx context.Context, c *Constant) {
	kept := c.Dependencies[:0]
	for _, dep := range c.Dependencies {
		if dep == c.ID {
			ctxlog.FromContext(ctx).Warn("Dropping self-referential dependency.", "constant", c.ID)
			continue
		}
		kept = append(kept, dep)
	}
	c.Dependencies = kept
}
