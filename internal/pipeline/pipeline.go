// Package pipeline runs the documentation pipeline the repository's CI
// runs by hand: bundle, downgrade, validate, coverage, in that fixed
// order, driven by an HCL configuration file.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/ruuvi/oaskit/api"
	"github.com/ruuvi/oaskit/internal/bundle"
	"github.com/ruuvi/oaskit/internal/coverage"
	"github.com/ruuvi/oaskit/internal/doctree"
	"github.com/ruuvi/oaskit/internal/downgrade"
	"github.com/ruuvi/oaskit/internal/history"
	"github.com/ruuvi/oaskit/internal/oas"
)

// Config is the pipeline description. Absent blocks skip their stage.
type Config struct {
	Spec      string          `hcl:"spec"`
	Bundle    *BundleStage    `hcl:"bundle,block"`
	Downgrade *DowngradeStage `hcl:"downgrade,block"`
	Validate  *ValidateStage  `hcl:"validate,block"`
	Coverage  *CoverageStage  `hcl:"coverage,block"`
}

type BundleStage struct {
	Output string `hcl:"output"`
}

type DowngradeStage struct {
	Output string `hcl:"output"`
}

type ValidateStage struct{}

type CoverageStage struct {
	HAR     string   `hcl:"har"`
	JUnit   string   `hcl:"junit"`
	Report  string   `hcl:"report,optional"`
	History string   `hcl:"history,optional"`
	Ignore  []string `hcl:"ignore,optional"`
}

// LoadConfig decodes an HCL pipeline file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("load pipeline config %s: %w", path, err)
	}
	if cfg.Spec == "" {
		return nil, fmt.Errorf("pipeline config %s: spec must not be empty", path)
	}
	return &cfg, nil
}

// Run executes the configured stages. Each stage consumes the previous
// stage's output; the first failing stage aborts the run.
func Run(cfg *Config, out io.Writer) error {
	bundled := cfg.Spec
	if cfg.Bundle != nil {
		fmt.Fprintf(out, "bundle: %s -> %s\n", cfg.Spec, cfg.Bundle.Output)
		if err := runBundle(cfg.Spec, cfg.Bundle.Output); err != nil {
			return fmt.Errorf("bundle: %w", err)
		}
		bundled = cfg.Bundle.Output
	}

	downgraded := ""
	if cfg.Downgrade != nil {
		fmt.Fprintf(out, "downgrade: %s -> %s\n", bundled, cfg.Downgrade.Output)
		if err := runDowngrade(bundled, cfg.Downgrade.Output); err != nil {
			return fmt.Errorf("downgrade: %w", err)
		}
		downgraded = cfg.Downgrade.Output
	}

	if cfg.Validate != nil {
		target := bundled
		if downgraded != "" {
			target = downgraded
		}
		if _, err := oas.LoadAndValidate(target); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		fmt.Fprintf(out, "validate: %s ok\n", target)
	}

	if cfg.Coverage != nil {
		if err := runCoverage(cfg.Coverage, bundled, out); err != nil {
			return fmt.Errorf("coverage: %w", err)
		}
	}
	return nil
}

func runBundle(in, outPath string) error {
	abs, err := filepath.Abs(in)
	if err != nil {
		return err
	}
	root, err := bundle.New(osfs.New("/")).Bundle(abs)
	if err != nil {
		return err
	}
	if err := ensureDir(outPath); err != nil {
		return err
	}
	return doctree.WriteFile(outPath, root)
}

func runDowngrade(in, outPath string) error {
	root, err := doctree.LoadFile(in)
	if err != nil {
		return err
	}
	if err := ensureDir(outPath); err != nil {
		return err
	}
	return doctree.WriteFile(outPath, downgrade.Apply(root))
}

func runCoverage(stage *CoverageStage, specPath string, out io.Writer) error {
	doc, err := oas.Load(specPath)
	if err != nil {
		return err
	}
	seen, cases, err := coverage.LoadHAR(stage.HAR)
	if err != nil {
		return err
	}
	failingIDs, err := coverage.LoadFailingCaseIDs(stage.JUnit)
	if err != nil {
		return err
	}

	patterns := stage.Ignore
	if len(patterns) == 0 {
		patterns = coverage.DefaultIgnorePatterns
	}
	rep := coverage.Build(coverage.Inputs{
		Documented: oas.DocumentedStatuses(doc),
		Seen:       seen,
		Cases:      cases,
		FailingIDs: failingIDs,
		Ignore:     coverage.NewIgnore(patterns),
	})

	if err := coverage.WriteText(out, rep); err != nil {
		return err
	}
	if stage.Report != "" {
		if err := writeHTMLReport(stage.Report, rep); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", stage.Report)
	}
	if stage.History != "" {
		store, err := history.Open(stage.History)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		id, err := store.RecordRun(rep, history.RunInputs{
			OpenAPI: specPath,
			HAR:     stage.HAR,
			JUnit:   stage.JUnit,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "recorded run %s in %s\n", id, stage.History)
	}
	return nil
}

func writeHTMLReport(path string, rep *api.Report) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := coverage.WriteHTML(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
