// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkystring

// chunk is a fixed-capacity buffer of bytes.  len(buf) is the
// capacity and never changes after newChunk; only buf[:used] is
// meaningful.
type chunk struct {
	buf  []byte
	used int
}

func newChunk(size int) *chunk {
	return &chunk{
		buf: make([]byte, size),
	}
}

func (c *chunk) full() bool {
	return c.used == len(c.buf)
}

func (c *chunk) bytes() []byte {
	return c.buf[:c.used]
}

// insertAt inserts b before buf[off], shifting buf[off:used] right by
// one.  The chunk must not be full.
func (c *chunk) insertAt(off int, b byte) {
	copy(c.buf[off+1:c.used+1], c.buf[off:c.used])
	c.buf[off] = b
	c.used++
}

// eraseAt removes buf[off], shifting buf[off+1:used] left by one.
func (c *chunk) eraseAt(off int) {
	copy(c.buf[off:c.used-1], c.buf[off+1:c.used])
	c.used--
}

// splitInto moves buf[off:used] to the empty chunk dst.
func (c *chunk) splitInto(dst *chunk, off int) {
	dst.used = copy(dst.buf, c.buf[off:c.used])
	c.used = off
}

// mergeFrom moves everything in src to the end of c, leaving src
// empty.  The caller ensures that it all fits.
func (c *chunk) mergeFrom(src *chunk) {
	copy(c.buf[c.used:], src.bytes())
	c.used += src.used
	src.used = 0
}

// balanceWith moves bytes across the boundary between c and the chunk
// that follows it, so that c holds half (rounded up) of their
// combined bytes.  Order is preserved.
func (c *chunk) balanceWith(next *chunk) {
	target := (c.used + next.used + 1) / 2
	switch {
	case c.used < target:
		// next's head → c's tail
		n := target - c.used
		copy(c.buf[c.used:], next.buf[:n])
		copy(next.buf, next.buf[n:next.used])
		c.used += n
		next.used -= n
	case c.used > target:
		// c's tail → next's head
		n := c.used - target
		copy(next.buf[n:], next.buf[:next.used])
		copy(next.buf, c.buf[target:c.used])
		c.used -= n
		next.used += n
	}
}
