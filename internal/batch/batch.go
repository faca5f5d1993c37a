// Package batch decodes many correction payloads concurrently.
//
// Each input line is a share link, a base64 data value, or the raw inline
// JSON. Lines are decoded by a bounded pool of goroutines; a line that fails
// to decode is reported in its Result and does not stop the run.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"proofmark/internal/correction"
	"proofmark/internal/logging"
	"proofmark/internal/payload"
)

// DefaultWorkers is used when a Runner is built with a non-positive count.
const DefaultWorkers = 4

// Input is one payload with its 1-based line number in the source.
type Input struct {
	Line int
	Text string
}

// Result is the outcome of decoding one Input.
type Result struct {
	Line     int                 `json:"line"`
	Document correction.Document `json:"document"`
	Issues   []correction.Issue  `json:"issues,omitempty"`
	Err      error               `json:"-"`
	Error    string              `json:"error,omitempty"`
}

// OK reports whether the line decoded.
func (r Result) OK() bool { return r.Err == nil }

// Report holds the results of a run in input order.
type Report struct {
	RunID   string        `json:"runId"`
	Results []Result      `json:"results"`
	Failed  int           `json:"failed"`
	Elapsed time.Duration `json:"elapsed"`
}

// Runner decodes inputs with a shared codec.
type Runner struct {
	codec   *payload.Codec
	workers int
	verify  bool
}

// NewRunner returns a runner using at most workers goroutines.
func NewRunner(codec *payload.Codec, workers int) *Runner {
	if codec == nil {
		codec = payload.NewCodec("", "")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{codec: codec, workers: workers}
}

// WithVerify makes the runner attach consistency issues to each decoded
// document.
func (r *Runner) WithVerify(verify bool) *Runner {
	r.verify = verify
	return r
}

// Run decodes every input. The only error returned is the context's; in that
// case the report holds whatever finished before cancellation.
func (r *Runner) Run(ctx context.Context, inputs []Input) (Report, error) {
	report := Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(inputs)),
	}
	logging.Batch("run %s: decoding %d inputs with %d workers", report.RunID, len(inputs), r.workers)
	start := time.Now()

	var failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)

	for i, in := range inputs {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res := r.decode(in)
			if !res.OK() {
				failed.Add(1)
				logging.BatchDebug("run %s: line %d: %v", report.RunID, in.Line, res.Err)
			}
			report.Results[i] = res
			return nil
		})
	}

	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}
	report.Failed = int(failed.Load())
	report.Elapsed = time.Since(start)

	if err != nil {
		logging.BatchWarn("run %s cancelled after %v: %v", report.RunID, report.Elapsed, err)
		return report, err
	}
	logging.Batch("run %s: decoded %d inputs (%d failed) in %v", report.RunID, len(inputs), report.Failed, report.Elapsed)
	return report, nil
}

func (r *Runner) decode(in Input) Result {
	res := Result{Line: in.Line}
	doc, err := r.codec.DecodeInput(in.Text)
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		return res
	}
	res.Document = doc
	if r.verify {
		res.Issues = correction.Verify(doc).Issues
	}
	return res
}

// ReadInputs reads one payload per line. Blank lines and lines starting with
// '#' are skipped but still counted.
func ReadInputs(r io.Reader) ([]Input, error) {
	var inputs []Input
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		inputs = append(inputs, Input{Line: line, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inputs at line %d: %w", line+1, err)
	}
	return inputs, nil
}
