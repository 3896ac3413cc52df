// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkycheck

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lukeshu.com/chunkystring/lib/chunkystring"
)

func TestStepString(t *testing.T) {
	t.Parallel()
	testcases := map[string]struct {
		Step Step
		Exp  string
	}{
		"push":   {Step{Op: OpPushBack, Char: 'a'}, "push-back(0x61)"},
		"insert": {Step{Op: OpInsert, Pos: 3, Char: 0}, "insert(3, 0x00)"},
		"erase":  {Step{Op: OpErase, Pos: 7}, "erase(7)"},
		"append": {Step{Op: OpAppend, Text: "x\xff"}, `append("x\xff")`},
		"self":   {Step{Op: OpAppendSelf}, "append-self()"},
		"bogus":  {Step{Op: Op(99)}, "Op(99)()"},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.Exp, tc.Step.String())
		})
	}
}

func TestUtilizationBound(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0.0, UtilizationBound(0, 12, 2))
	assert.Equal(t, 0.0, UtilizationBound(1, 12, 2))
	// 13 bytes, 6 per chunk: 1+ceil(12/6)=3 chunks.
	assert.Equal(t, 12.0/36.0, UtilizationBound(13, 12, 2))
	// A divisor larger than the chunk size rounds up to 1 byte per chunk.
	assert.Equal(t, 3.0/16.0, UtilizationBound(4, 4, 8))
}

func TestRandomStepValid(t *testing.T) {
	t.Parallel()
	const maxLen = 40
	for _, chunkSize := range []int{chunkystring.MinChunkSize, 7, chunkystring.DefaultChunkSize} {
		checker, err := NewChecker(chunkSize)
		require.NoError(t, err)
		rnd := rand.New(rand.NewSource(int64(chunkSize))) //nolint:gosec // Deterministic on purpose.
		seen := make(map[Op]bool)
		for i := 0; i < 5000; i++ {
			step := RandomStep(rnd, checker.Reference(), maxLen)
			seen[step.Op] = true
			require.NoErrorf(t, checker.Apply(step), "step %d", i)
			require.NoErrorf(t, checker.Verify(), "step %d: %v", i, step)
			require.LessOrEqual(t, len(checker.Reference()), maxLen)
		}
		assert.Len(t, seen, int(numOps))
		assert.Greater(t, checker.MinUtilization(), 0.0)
	}
}

func TestCheckerDetectsMismatch(t *testing.T) {
	t.Parallel()
	checker, err := NewChecker(chunkystring.MinChunkSize)
	require.NoError(t, err)
	require.NoError(t, checker.Apply(Step{Op: OpAppend, Text: "hello world"}))
	require.NoError(t, checker.Verify())

	checker.ref[4] = 'O'
	err = checker.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected "hellO world"`)

	checker.resync()
	assert.NoError(t, checker.Verify())
	assert.Equal(t, "hellO world", checker.Value().String())
	assert.Equal(t, chunkystring.MinChunkSize, checker.Value().ChunkSize())
}

func TestCheckerPanic(t *testing.T) {
	t.Parallel()
	checker, err := NewChecker(chunkystring.DefaultChunkSize)
	require.NoError(t, err)
	// Setting the byte at End() panics; Apply reports it.
	err = checker.Apply(Step{Op: OpSet, Pos: 0, Char: 'x'})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set(0, 0x78)")
	assert.NoError(t, checker.Verify())
}

func TestCheckerCompare(t *testing.T) {
	t.Parallel()
	checker, err := NewChecker(5)
	require.NoError(t, err)
	require.NoError(t, checker.Apply(Step{Op: OpAppend, Text: "abc\xffdef"}))
	for _, other := range []string{"", "abc", "abc\xffdef", "abc\xffdeg", "abc\x00", "b"} {
		assert.NoError(t, checker.Apply(Step{Op: OpCompare, Text: other}), other)
	}
	assert.NoError(t, checker.Apply(Step{Op: OpClone, Pos: 3}))
	assert.Equal(t, "abc\xffdef", checker.Value().String())
}
