// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkystring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func chunkOf(size int, str string) *chunk {
	c := newChunk(size)
	c.used = copy(c.buf, str)
	return c
}

func TestChunkInsertErase(t *testing.T) {
	t.Parallel()
	c := chunkOf(6, "ace")
	c.insertAt(1, 'b')
	c.insertAt(3, 'd')
	c.insertAt(5, 'f')
	assert.Equal(t, "abcdef", string(c.bytes()))
	assert.True(t, c.full())

	c.eraseAt(0)
	c.eraseAt(4)
	c.eraseAt(1)
	assert.Equal(t, "bde", string(c.bytes()))
	assert.Len(t, c.buf, 6)
}

func TestChunkSplitMerge(t *testing.T) {
	t.Parallel()
	c := chunkOf(8, "abcdefgh")
	d := newChunk(8)
	c.splitInto(d, 3)
	assert.Equal(t, "abc", string(c.bytes()))
	assert.Equal(t, "defgh", string(d.bytes()))

	c.mergeFrom(d)
	assert.Equal(t, "abcdefgh", string(c.bytes()))
	assert.Equal(t, 0, d.used)
}

func TestChunkBalance(t *testing.T) {
	t.Parallel()
	type TestCase struct {
		A, B       string
		ExpA, ExpB string
	}
	testcases := map[string]TestCase{
		"pull":     {"a", "bcdefghij", "abcde", "fghij"},
		"push":     {"abcdefghi", "j", "abcde", "fghij"},
		"odd":      {"ab", "cdefghi", "abcde", "fghi"},
		"balanced": {"abcd", "efgh", "abcd", "efgh"},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			a := chunkOf(10, tc.A)
			b := chunkOf(10, tc.B)
			a.balanceWith(b)
			assert.Equal(t, tc.ExpA, string(a.bytes()))
			assert.Equal(t, tc.ExpB, string(b.bytes()))
		})
	}
}
