// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package chunkycheck drives a ChunkyString through long random
// sequences of operations, comparing it against a flat reference copy
// after every step.
package chunkycheck

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/datawire/dlib/dcontext"
	"github.com/datawire/dlib/derror"
	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"

	"git.lukeshu.com/chunkystring/lib/chunkystring"
	"git.lukeshu.com/chunkystring/lib/textui"
)

// Config describes a single randomized run.
type Config struct {
	Seed int64 `json:"seed"`
	Ops  int   `json:"ops"`

	// ChunkSize is passed to chunkystring.NewWithChunkSize; 0
	// means chunkystring.DefaultChunkSize.
	ChunkSize int `json:"chunk_size"`

	// MaxLen caps the length of the string; 0 means 4096.
	MaxLen int `json:"max_len"`

	// Timeout, if non-zero, is how long the run may take before
	// it is considered to have failed.
	Timeout time.Duration `json:"timeout_ns"`

	// MaxFailures stops the run early; 0 means 1.
	MaxFailures int `json:"max_failures"`
}

func (cfg Config) chunkSize() int {
	if cfg.ChunkSize == 0 {
		return chunkystring.DefaultChunkSize
	}
	return cfg.ChunkSize
}

func (cfg Config) maxLen() int {
	if cfg.MaxLen <= 0 {
		return 4096
	}
	return cfg.MaxLen
}

func (cfg Config) maxFailures() int {
	if cfg.MaxFailures <= 0 {
		return 1
	}
	return cfg.MaxFailures
}

// Report is the outcome of a run.
type Report struct {
	Seed           int64              `json:"seed"`
	Steps          int                `json:"steps"`
	Final          chunkystring.Stats `json:"final"`
	MinUtilization float64            `json:"min_utilization"`
	OpCounts       map[string]int     `json:"op_counts"`
	Interrupted    bool               `json:"interrupted,omitempty"`
	Failures       []string           `json:"failures,omitempty"`
	Elapsed        time.Duration      `json:"elapsed_ns"`
}

// Err returns the failures as a single error, or nil if there were
// none.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make(derror.MultiError, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, errors.New(f))
	}
	return fmt.Errorf("seed %d: %w", r.Seed, errs)
}

// String implements fmt.Stringer.
func (r Report) String() string {
	var buf strings.Builder
	status := "ok"
	switch {
	case len(r.Failures) > 0:
		status = "FAIL"
	case r.Interrupted:
		status = "interrupted"
	}
	textui.Fprintf(&buf, "seed=%v: %s: %v steps in %v; final len=%v chunks=%v utilization=%.3f (min %.3f)\n",
		r.Seed, status, r.Steps, r.Elapsed.Round(time.Millisecond),
		r.Final.Len, r.Final.Chunks, r.Final.Utilization, r.MinUtilization)
	ops := make([]string, 0, len(r.OpCounts))
	for op := range r.OpCounts {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		textui.Fprintf(&buf, "\t%-12s %v\n", op, r.OpCounts[op])
	}
	for _, f := range r.Failures {
		textui.Fprintf(&buf, "\terror: %s\n", f)
	}
	return buf.String()
}

type runStats struct {
	seed int64
	textui.Portion[int]
}

func (s runStats) String() string {
	return textui.Sprintf("seed=%v: %v", s.seed, s.Portion)
}

// Run performs cfg.Ops random steps.  If ctx is soft-canceled (see
// dcontext) the run stops early and the Report is marked as
// Interrupted; exceeding cfg.Timeout is a failure.
func Run(ctx context.Context, cfg Config) (Report, error) {
	ctx = dlog.WithField(ctx, "chunkycheck.seed", cfg.Seed)
	checker, err := NewChecker(cfg.chunkSize())
	if err != nil {
		return Report{}, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	report := Report{
		Seed:     cfg.Seed,
		OpCounts: make(map[string]int),
	}
	start := time.Now()

	rnd := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // Reproducibility is the point.
	progress := textui.NewProgress[runStats](dcontext.HardContext(ctx), dlog.LogLevelInfo, textui.Tunable(1*time.Second))
	defer progress.Done()

	dlog.Debugf(ctx, "starting: ops=%v chunk-size=%v max-len=%v",
		cfg.Ops, checker.Value().ChunkSize(), cfg.maxLen())
	for report.Steps < cfg.Ops {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				report.Failures = append(report.Failures,
					fmt.Sprintf("timed out after %v steps", textui.Humanized(report.Steps)))
			} else {
				report.Interrupted = true
			}
			break
		}
		progress.Set(runStats{
			seed:    cfg.Seed,
			Portion: textui.Portion[int]{N: report.Steps, D: cfg.Ops},
		})

		step := RandomStep(rnd, checker.Reference(), cfg.maxLen())
		stepCtx := dlog.WithField(ctx, "chunkycheck.step", report.Steps)
		stepCtx = dlog.WithField(stepCtx, "chunkycheck.op", step.Op)
		dlog.Tracef(stepCtx, "%v", step)

		report.Steps++
		report.OpCounts[step.Op.String()]++
		err := checker.Apply(step)
		if err == nil {
			err = checker.Verify()
		}
		if err != nil {
			dlog.Errorf(stepCtx, "%v", err)
			report.Failures = append(report.Failures,
				fmt.Sprintf("step %d: %v", report.Steps-1, err))
			if len(report.Failures) >= cfg.maxFailures() {
				break
			}
			// Resynchronize so that one bug does not cascade.
			checker.resync()
		}
	}
	progress.Set(runStats{
		seed:    cfg.Seed,
		Portion: textui.Portion[int]{N: report.Steps, D: cfg.Ops},
	})

	report.Final = checker.Value().Stats()
	report.MinUtilization = checker.MinUtilization()
	report.Elapsed = time.Since(start)
	dlog.Infof(ctx, "finished %v steps with %v failures", report.Steps, len(report.Failures))
	return report, nil
}

// RunAll performs `workers` runs concurrently, the i'th with seed
// cfg.Seed+i.  The reports are returned in seed order; the error is
// non-nil if any run failed.
func RunAll(ctx context.Context, cfg Config, workers int) ([]Report, error) {
	if workers < 1 {
		workers = 1
	}
	reports := make([]Report, workers)
	var reportsMu sync.Mutex

	grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{})
	for i := 0; i < workers; i++ {
		i := i
		workerCfg := cfg
		workerCfg.Seed = cfg.Seed + int64(i)
		grp.Go(fmt.Sprintf("worker-%d", i), func(ctx context.Context) error {
			report, err := Run(ctx, workerCfg)
			if err != nil {
				return err
			}
			reportsMu.Lock()
			reports[i] = report
			reportsMu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	var errs derror.MultiError
	for _, report := range reports {
		if err := report.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return reports, errs
	}
	return reports, nil
}
