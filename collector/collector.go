// Package collector runs the forecast reporter over many cities concurrently
// and checks every output against the forecast contract.
package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
	"github.com/ant1kdream/forecast-weather-qa-tests/logger"
	"github.com/ant1kdream/forecast-weather-qa-tests/report"
	"github.com/ant1kdream/forecast-weather-qa-tests/reporter"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Result is the outcome of one case
type Result struct {
	Index    int                  // position in the case list
	Case     datasource.CheckCase // what was run
	Output   string               // everything the reporter printed
	ExitCode int                  // code passed to the reporter's exit hook
	Failures []string             // contract violations, empty when passed
	Elapsed  time.Duration
}

// Passed reports whether the case met every expectation
func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

// Sweep drives the reporter over a list of cases on a worker pool
type Sweep struct {
	source       datasource.ForecastSource
	cases        []datasource.CheckCase
	workers      int
	limiter      *rate.Limiter
	fetchTimeout time.Duration
	clock        func() time.Time
	runID        string
	log          *logger.Logger
	resultChan   chan Result
}

// NewSweep creates a sweep over cfg.Cases. Every reporter run first takes a
// token from a bucket of cfg.RequestsPerSecond with cfg.Burst; the wait is not
// counted against the fetch timeout.
func NewSweep(source datasource.ForecastSource, cfg datasource.CheckConfig, log *logger.Logger) *Sweep {
	if log == nil {
		log = logger.Nop()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	runID := uuid.NewString()

	return &Sweep{
		source:       source,
		cases:        cfg.Cases,
		workers:      workers,
		limiter:      datasource.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		fetchTimeout: reporter.DefaultTimeout,
		clock:        time.Now,
		runID:        runID,
		log:          log.Named("sweep").With(logger.String("run_id", runID)),
		resultChan:   make(chan Result, len(cfg.Cases)),
	}
}

// SetFetchTimeout changes the timeout of each reporter run
func (s *Sweep) SetFetchTimeout(timeout time.Duration) {
	s.fetchTimeout = timeout
}

// SetClock replaces the source of "today"
func (s *Sweep) SetClock(clock func() time.Time) {
	s.clock = clock
}

// RunID identifies this sweep in logs
func (s *Sweep) RunID() string {
	return s.runID
}

// Results returns the channel that emits one Result per case.
// It is closed once every case has finished.
func (s *Sweep) Results() <-chan Result {
	return s.resultChan
}

// Start runs all cases in the background.
// The returned function cancels outstanding cases and waits for the workers.
func (s *Sweep) Start(ctx context.Context) func() {
	sweepCtx, cancelSweep := context.WithCancel(ctx)

	jobs := make(chan int)
	var wg sync.WaitGroup

	s.log.Info("sweep started",
		logger.String("provider", s.source.Name()),
		logger.Int("cases", len(s.cases)),
		logger.Int("workers", s.workers),
	)

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				s.resultChan <- s.runCase(sweepCtx, idx)
			}
		}()
	}

	// Feed the workers; cases left over after cancellation are reported as canceled
	go func() {
		defer close(jobs)
		for idx := range s.cases {
			select {
			case jobs <- idx:
			case <-sweepCtx.Done():
				for rest := idx; rest < len(s.cases); rest++ {
					s.resultChan <- Result{
						Index:    rest,
						Case:     s.cases[rest],
						ExitCode: -1,
						Failures: []string{"sweep canceled before the case ran"},
					}
				}
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// Close the results once the feeder and all workers are done
	go func() {
		<-done
		s.log.Info("sweep finished")
		close(s.resultChan)
	}()

	return func() {
		cancelSweep()
		<-done
	}
}

// Run executes every case and returns the results in case order
func (s *Sweep) Run(ctx context.Context) []Result {
	stop := s.Start(ctx)
	defer stop()

	results := make([]Result, len(s.cases))
	for r := range s.Results() {
		results[r.Index] = r
	}
	return results
}

// runCase runs the reporter once and evaluates what it printed
func (s *Sweep) runCase(ctx context.Context, idx int) Result {
	c := s.cases[idx]

	if err := s.limiter.Wait(ctx); err != nil {
		s.log.Warn("case not run", logger.String("city", c.City), logger.Error(err))
		return Result{
			Index:    idx,
			Case:     c,
			ExitCode: -1,
			Failures: []string{fmt.Sprintf("sweep canceled while pacing: %v", err)},
		}
	}

	today := s.clock()

	var out bytes.Buffer
	exitCode := -1
	r := reporter.New(s.source, &out, s.log)
	r.Clock = func() time.Time { return today }
	r.Exit = func(code int) { exitCode = code }
	r.Timeout = s.fetchTimeout

	start := time.Now()
	r.Report(ctx, c.City)

	res := Result{
		Index:    idx,
		Case:     c,
		Output:   out.String(),
		ExitCode: exitCode,
		Elapsed:  time.Since(start),
	}
	if c.Negative {
		res.Failures = checkNegative(c, res.Output, exitCode)
	} else {
		res.Failures = checkPositive(c, res.Output, exitCode, today)
	}
	if ctx.Err() != nil {
		res.Failures = append(res.Failures, fmt.Sprintf("sweep canceled: %v", ctx.Err()))
	}

	fields := []logger.Field{
		logger.String("city", c.City),
		logger.Bool("negative", c.Negative),
		logger.Int("exit_code", exitCode),
		logger.Duration("elapsed", res.Elapsed),
	}
	if res.Passed() {
		s.log.Info("case passed", fields...)
	} else {
		s.log.Warn("case failed", append(fields, logger.String("failures", strings.Join(res.Failures, "; ")))...)
	}
	return res
}

func checkPositive(c datasource.CheckCase, output string, exitCode int, today time.Time) []string {
	var failures []string
	if exitCode != reporter.ExitOK {
		failures = append(failures, fmt.Sprintf("exit code %d, want %d", exitCode, reporter.ExitOK))
	}

	p, err := report.Parse(output)
	if err != nil {
		return append(failures, err.Error())
	}
	for _, e := range report.Check(p, today) {
		failures = append(failures, e.Error())
	}
	if c.ExpectName != "" && p.City != c.ExpectName {
		failures = append(failures, fmt.Sprintf("city %q, want %q", p.City, c.ExpectName))
	}
	return failures
}

func checkNegative(c datasource.CheckCase, output string, exitCode int) []string {
	var failures []string
	if exitCode == reporter.ExitOK {
		failures = append(failures, "exit code 0 for an unknown city")
	}
	if !strings.Contains(output, c.City) {
		failures = append(failures, fmt.Sprintf("output does not echo %q", c.City))
	}
	if !strings.Contains(output, datasource.ErrCityNotFound.Error()) {
		failures = append(failures, "output lacks \"city not found\"")
	}
	if _, err := report.Parse(output); !errors.Is(err, report.ErrNotAForecast) {
		failures = append(failures, "output parses as a forecast")
	}
	return failures
}
