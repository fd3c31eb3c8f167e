package harness

import (
	"context"
	"sync"
	"time"
)

// SuiteReport aggregates the terminal results of a full run. Results keep
// the case order regardless of which worker finished first.
type SuiteReport struct {
	Results  []*CaseResult
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	// StaleExclusions lists known-failing cases that unexpectedly passed.
	// They need human review, never silent acceptance.
	StaleExclusions []string
}

// OK reports whether the suite passed. Stale exclusions are warnings, not
// failures.
func (r *SuiteReport) OK() bool {
	return r.Failed == 0
}

// RunSuite runs all cases over a bounded worker pool and reports every
// result; a failing case never stops the suite. Regeneration mode requires
// exclusive access to the fixture tree, so it always runs sequentially.
func (r *Runner) RunSuite(ctx context.Context, cases []TestCase) *SuiteReport {
	start := time.Now()
	workers := r.cfg.Workers
	if r.cfg.Regen || workers < 1 {
		workers = 1
	}
	if workers > len(cases) && len(cases) > 0 {
		workers = len(cases)
	}

	results := make([]*CaseResult, len(cases))
	work := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = r.RunCase(ctx, cases[i])
			}
		}()
	}
	for i := range cases {
		work <- i
	}
	close(work)
	wg.Wait()

	report := &SuiteReport{Results: results, Duration: time.Since(start)}
	for _, res := range results {
		switch res.State {
		case StatePassed:
			report.Passed++
			if res.StaleExclusion {
				report.StaleExclusions = append(report.StaleExclusions, res.Case.Path)
				r.log.Warn("known-failing case passed, exclusion list is stale",
					"case", res.Case.Path)
			} else if r.cfg.Verbose {
				r.log.Info("PASS", "case", res.Case.Path)
			}
		case StateSkipped:
			report.Skipped++
			r.log.Info("SKIP", "case", res.Case.Path, "reason", res.Err)
		case StateFailed:
			report.Failed++
			r.log.Error("FAIL", "case", res.Case.Path, "kind", res.Kind, "error", res.Err)
		}
	}
	r.log.Info("suite finished",
		"passed", report.Passed,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", report.Duration.Round(time.Millisecond))
	return report
}
