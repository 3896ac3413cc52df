// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkycheck_test

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/datawire/dlib/dcontext"
	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/chunkystring/lib/chunkycheck"
	"git.lukeshu.com/chunkystring/lib/chunkystring"
)

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	for _, chunkSize := range []int{chunkystring.MinChunkSize, 5, 0} {
		report, err := chunkycheck.Run(ctx, chunkycheck.Config{
			Seed:      42,
			Ops:       3000,
			ChunkSize: chunkSize,
			MaxLen:    100,
		})
		require.NoError(t, err)
		assert.NoError(t, report.Err())
		assert.Equal(t, 3000, report.Steps)
		assert.False(t, report.Interrupted)

		total := 0
		for _, n := range report.OpCounts {
			total += n
		}
		assert.Equal(t, report.Steps, total)
		assert.LessOrEqual(t, report.Final.Len, 100)
		if chunkSize == 0 {
			assert.Equal(t, chunkystring.DefaultChunkSize, report.Final.ChunkSize)
		} else {
			assert.Equal(t, chunkSize, report.Final.ChunkSize)
		}
		assert.Contains(t, report.String(), "seed=42: ok: 3,000 steps")
	}
}

func TestRunDeterministic(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	cfg := chunkycheck.Config{Seed: 7, Ops: 500, ChunkSize: 6}
	a, err := chunkycheck.Run(ctx, cfg)
	require.NoError(t, err)
	b, err := chunkycheck.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Final, b.Final)
	assert.Equal(t, a.OpCounts, b.OpCounts)
	assert.Equal(t, a.MinUtilization, b.MinUtilization)
}

func TestRunBadChunkSize(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	_, err := chunkycheck.Run(ctx, chunkycheck.Config{Ops: 1, ChunkSize: 2})
	assert.ErrorIs(t, err, chunkystring.ErrChunkSize)
}

func TestRunSoftCancel(t *testing.T) {
	t.Parallel()
	ctx := dcontext.WithSoftness(dlog.NewTestContext(t, false))
	ctx, cancel := context.WithCancel(ctx)
	cancel()
	report, err := chunkycheck.Run(ctx, chunkycheck.Config{Seed: 1, Ops: 100})
	require.NoError(t, err)
	assert.True(t, report.Interrupted)
	assert.Equal(t, 0, report.Steps)
	assert.NoError(t, report.Err())
	assert.Contains(t, report.String(), "interrupted")
}

func TestRunTimeout(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	report, err := chunkycheck.Run(ctx, chunkycheck.Config{
		Seed:    1,
		Ops:     math.MaxInt32,
		MaxLen:  16,
		Timeout: time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.True(t, strings.HasPrefix(report.Failures[0], "timed out after "))
	assert.Less(t, report.Steps, math.MaxInt32)
	assert.Error(t, report.Err())
}

func TestRunAll(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)
	reports, err := chunkycheck.RunAll(ctx, chunkycheck.Config{
		Seed:      5,
		Ops:       1000,
		ChunkSize: chunkystring.MinChunkSize,
		MaxLen:    64,
	}, 3)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	for i, report := range reports {
		assert.Equal(t, int64(5+i), report.Seed)
		assert.Equal(t, 1000, report.Steps)
		assert.NoError(t, report.Err())
	}
}
