// Package harness drives the end-to-end verification of nuget-inspector
// output against golden fixtures: it classifies catalog entries, invokes the
// inspector, normalizes the result and compares it with the stored artifact,
// or rewrites the artifact in regeneration mode.
package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/aboutcode-org/nuget-inspector/internal/catalog"
	"github.com/aboutcode-org/nuget-inspector/internal/compare"
	"github.com/aboutcode-org/nuget-inspector/internal/config"
	"github.com/aboutcode-org/nuget-inspector/internal/fixture"
	"github.com/aboutcode-org/nuget-inspector/internal/inspector"
	"github.com/aboutcode-org/nuget-inspector/internal/logger"
	"github.com/aboutcode-org/nuget-inspector/internal/normalize"
)

// State of a test case. Cases move pending → running → terminal.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StatePassed  State = "passed"
	StateFailed  State = "failed"
	StateSkipped State = "skipped"
)

// FailureKind distinguishes the error taxonomy in reports.
type FailureKind string

const (
	// FailInvocation: the process could not start, crashed outside all
	// classification expectations, or timed out.
	FailInvocation FailureKind = "invocation"
	// FailExitCode: the exit code contradicted the classification.
	FailExitCode FailureKind = "exit-code"
	// FailMismatch: normalized output differs from the stored fixture.
	FailMismatch FailureKind = "mismatch"
	// FailFixture: the expected artifact is missing or the artifact file
	// sets disagree.
	FailFixture FailureKind = "fixture"
)

// TestCase is one catalog entry ready to run. Path is relative to the data
// tree; Multi marks solution inputs whose result is a directory of one JSON
// document per sub-project.
type TestCase struct {
	Path             string
	Outcome          catalog.Outcome
	ExtraArgs        []string
	ExpectedOverride string
	Multi            bool
}

// CaseFromRule builds a TestCase from a catalog entry and its rule.
func CaseFromRule(rel string, rule catalog.Rule) TestCase {
	return TestCase{
		Path:             rel,
		Outcome:          rule.Outcome,
		ExtraArgs:        rule.Args,
		ExpectedOverride: rule.Expected,
		Multi:            strings.HasSuffix(rel, ".sln"),
	}
}

// CaseResult is the terminal record of one case.
type CaseResult struct {
	Case        TestCase
	State       State
	Kind        FailureKind
	Err         error
	ExitCode    int
	Output      string // captured tool output, attached on failure
	Diagnostics string // verbose re-run output, reporting only
	// StaleExclusion flags a known-failing case that unexpectedly passed:
	// the exclusion list needs review.
	StaleExclusion bool
	Duration       time.Duration
}

func (r *CaseResult) fail(kind FailureKind, err error) *CaseResult {
	r.State = StateFailed
	r.Kind = kind
	r.Err = err
	return r
}

// Runner owns everything one harness run needs. All classification state is
// passed in through the catalog table; nothing is read from globals.
type Runner struct {
	cfg     *config.Config
	table   *catalog.Table
	invoker *inspector.Invoker
	store   *fixture.Store
	norm    *normalize.Engine
	dataDir string // absolute
	log     *log.Logger
}

// NewRunner validates the configuration and wires the harness components.
func NewRunner(cfg *config.Config, table *catalog.Table) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid harness configuration: %w", err)
	}
	if table == nil {
		var err error
		if table, err = catalog.NewTable(nil); err != nil {
			return nil, err
		}
	}
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	invoker := inspector.NewInvoker(cfg.Binary)
	invoker.Timeout = cfg.Timeout
	if err := invoker.CheckBinary(); err != nil {
		return nil, err
	}

	return &Runner{
		cfg:     cfg,
		table:   table,
		invoker: invoker,
		store:   fixture.NewStore(dataDir, cfg.Regen),
		norm:    normalize.NewEngine(dataDir),
		dataDir: dataDir,
		log:     logger.NewStyledLogger("Harness"),
	}, nil
}

// DefaultPatterns are the catalog patterns of a full run: every solution and
// every project manifest in the data tree.
var DefaultPatterns = []string{"**/*.sln", "**/*.??proj"}

// Discover enumerates test cases for the given patterns, classified by the
// table, in deterministic path order.
func (r *Runner) Discover(patterns ...string) ([]TestCase, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	seen := map[string]bool{}
	var cases []TestCase
	for _, pattern := range patterns {
		paths, err := catalog.Find(r.dataDir, pattern, r.table)
		if err != nil {
			return nil, err
		}
		for _, rel := range paths {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			cases = append(cases, CaseFromRule(rel, r.table.Lookup(rel)))
		}
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Path < cases[j].Path })
	return cases, nil
}

// Case builds the test case for a single catalog path.
func (r *Runner) Case(rel string) TestCase {
	rel = filepath.ToSlash(rel)
	return CaseFromRule(rel, r.table.Lookup(rel))
}

// RunCase runs one case end to end and returns its terminal result.
//
// Classification precedence: an explicit expect-error classification is
// checked before the known-failing flag, so known-failing only softens cases
// that would otherwise require success.
func (r *Runner) RunCase(ctx context.Context, tc TestCase) *CaseResult {
	start := time.Now()
	res := &CaseResult{Case: tc, State: StateRunning}
	defer func() { res.Duration = time.Since(start) }()

	input := filepath.Join(r.dataDir, filepath.FromSlash(tc.Path))
	if _, err := os.Stat(input); err != nil {
		return res.fail(FailInvocation, fmt.Errorf("input manifest not found: %w", err))
	}

	// Each case owns a unique temporary result location, so cases never
	// share mutable state beyond the fixture tree.
	output, cleanup, err := r.resultLocation(tc)
	if err != nil {
		return res.fail(FailInvocation, err)
	}
	defer cleanup()

	req := inspector.Request{
		ProjectFile: input,
		Output:      output,
		ExtraArgs:   tc.ExtraArgs,
	}
	invRes, err := r.invoker.Run(ctx, req)
	if err != nil {
		res.Diagnostics = r.invoker.RunVerbose(ctx, req)
		return res.fail(FailInvocation, fmt.Errorf("inspector did not run: %w", err))
	}
	res.ExitCode = invRes.ExitCode
	if invRes.TimedOut {
		res.Output = string(invRes.Output)
		return res.fail(FailInvocation, fmt.Errorf("inspector timed out after %s", r.invoker.Timeout))
	}

	switch tc.Outcome {
	case catalog.ExpectErrorNoOutput:
		if invRes.ExitCode == 0 {
			return res.fail(FailExitCode, fmt.Errorf("expected a tool error but exit code was 0"))
		}
		// Any usable result file is ignored by construction.
		res.State = StatePassed
		return res

	case catalog.ExpectErrorWithOutput:
		if invRes.ExitCode == 0 {
			return res.fail(FailExitCode, fmt.Errorf("expected a tool error but exit code was 0"))
		}
		if kind, err := r.verifyOrRegen(tc, output); err != nil {
			res.Output = string(invRes.Output)
			return res.fail(kind, err)
		}
		res.State = StatePassed
		return res

	case catalog.ExpectSuccess, catalog.KnownFailing:
		xfail := tc.Outcome == catalog.KnownFailing
		if invRes.ExitCode != 0 {
			res.Output = string(invRes.Output)
			if xfail {
				res.State = StateSkipped
				res.Err = fmt.Errorf("known-failing: exit code %d", invRes.ExitCode)
				return res
			}
			// One verbose re-run, for diagnostics only.
			res.Diagnostics = r.invoker.RunVerbose(ctx, req)
			return res.fail(FailExitCode, fmt.Errorf("exit code %d, expected 0", invRes.ExitCode))
		}
		if kind, err := r.verifyOrRegen(tc, output); err != nil {
			if xfail {
				res.State = StateSkipped
				res.Err = fmt.Errorf("known-failing: %w", err)
				return res
			}
			res.Output = string(invRes.Output)
			return res.fail(kind, err)
		}
		res.State = StatePassed
		res.StaleExclusion = xfail
		return res

	default:
		return res.fail(FailInvocation, fmt.Errorf("unknown classification %q", tc.Outcome))
	}
}

// resultLocation creates the temporary output destination for a case: a
// directory for solution inputs, a file otherwise.
func (r *Runner) resultLocation(tc TestCase) (string, func(), error) {
	id := uuid.NewString()
	if tc.Multi {
		dir := filepath.Join(os.TempDir(), "nugettest-"+id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", nil, fmt.Errorf("creating result directory: %w", err)
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil
	}
	file := filepath.Join(os.TempDir(), "nugettest-"+id+".json")
	return file, func() { _ = os.Remove(file) }, nil
}

// verifyOrRegen normalizes the produced result and either compares it with
// the stored fixture or, in regeneration mode, replaces the fixture.
func (r *Runner) verifyOrRegen(tc TestCase, output string) (FailureKind, error) {
	if tc.Multi {
		return r.verifyOrRegenDir(tc, output)
	}

	raw, err := os.ReadFile(output)
	if err != nil {
		return FailMismatch, fmt.Errorf("inspector wrote no result file: %w", err)
	}
	actual, err := r.norm.Bytes(raw)
	if err != nil {
		return FailMismatch, err
	}

	location := r.store.ExpectedFile(tc.Path, tc.ExpectedOverride)
	if r.cfg.Regen {
		if err := r.store.Write(location, actual); err != nil {
			return FailFixture, err
		}
		return "", nil
	}

	expectedRaw, err := r.store.Read(location)
	if err != nil {
		return FailFixture, err
	}
	expected, err := r.norm.Bytes(expectedRaw)
	if err != nil {
		return FailFixture, fmt.Errorf("fixture %s: %w", location, err)
	}
	cmp, err := compare.JSON(expected, actual)
	if err != nil {
		return FailMismatch, err
	}
	if !cmp.Equal {
		return FailMismatch, fmt.Errorf("output does not match %s\n%s", location, cmp.RenderDiff())
	}
	return "", nil
}

func (r *Runner) verifyOrRegenDir(tc TestCase, outputDir string) (FailureKind, error) {
	produced, err := readResultDir(outputDir)
	if err != nil {
		return FailMismatch, err
	}
	actual := make(map[string][]byte, len(produced))
	for name, raw := range produced {
		normalized, err := r.norm.Bytes(raw)
		if err != nil {
			return FailMismatch, fmt.Errorf("result %s: %w", name, err)
		}
		actual[name] = normalized
	}

	location := r.store.ExpectedDir(tc.Path, tc.ExpectedOverride)
	if r.cfg.Regen {
		if err := r.store.WriteDir(location, actual); err != nil {
			return FailFixture, err
		}
		return "", nil
	}

	expectedRaw, err := r.store.ReadDir(location)
	if err != nil {
		return FailFixture, err
	}
	expected := make(map[string][]byte, len(expectedRaw))
	for name, raw := range expectedRaw {
		normalized, err := r.norm.Bytes(raw)
		if err != nil {
			return FailFixture, fmt.Errorf("fixture %s: %w", name, err)
		}
		expected[name] = normalized
	}

	cmp, err := compare.Directories(expected, actual)
	if err != nil {
		return FailMismatch, err
	}
	if !cmp.Equal {
		if len(cmp.Missing) > 0 || len(cmp.Dangling) > 0 {
			return FailFixture, fmt.Errorf("result file set does not match %s: %s", location, cmp.Describe())
		}
		var detail strings.Builder
		fmt.Fprintf(&detail, "output does not match %s: %s\n", location, cmp.Describe())
		for name, fileRes := range cmp.Files {
			if !fileRes.Equal {
				fmt.Fprintf(&detail, "--- %s ---\n%s", name, fileRes.RenderDiff())
			}
		}
		return FailMismatch, fmt.Errorf("%s", detail.String())
	}
	return "", nil
}

// readResultDir loads the JSON documents the inspector wrote for a solution
// input, keyed by filename.
func readResultDir(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("inspector wrote no result directory: %w", err)
	}
	files := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading result %s: %w", e.Name(), err)
		}
		files[e.Name()] = data
	}
	return files, nil
}
