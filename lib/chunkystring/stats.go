// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkystring

import (
	"fmt"
)

// Stats describes the memory layout of a ChunkyString.
type Stats struct {
	Len         int     `json:"len"`
	Chunks      int     `json:"chunks"`
	ChunkSize   int     `json:"chunk_size"`
	Utilization float64 `json:"utilization"`
}

// Stats returns the current layout statistics of s.
func (s *ChunkyString) Stats() Stats {
	return Stats{
		Len:         s.size,
		Chunks:      s.chunks.Len(),
		ChunkSize:   s.ChunkSize(),
		Utilization: s.Utilization(),
	}
}

// Layout returns the contents of each chunk of s, in order.  It is
// meant for debugging output.
func (s *ChunkyString) Layout() []string {
	ret := make([]string, 0, s.chunks.Len())
	for entry := s.chunks.Front(); entry != nil; entry = entry.Next() {
		ret = append(ret, string(entry.Value.bytes()))
	}
	return ret
}

// CheckInvariants walks every chunk of s and returns an error
// describing the first broken structural invariant, or nil.  A
// non-nil return is always a bug in this package.
func (s *ChunkyString) CheckInvariants() error {
	size := 0
	idx := 0
	for entry := s.chunks.Front(); entry != nil; entry = entry.Next() {
		c := entry.Value
		switch {
		case len(c.buf) != s.ChunkSize():
			return fmt.Errorf("chunk %d: capacity %d != chunk size %d", idx, len(c.buf), s.ChunkSize())
		case c.used <= 0 || c.used > len(c.buf):
			return fmt.Errorf("chunk %d: used %d not in (0,%d]", idx, c.used, len(c.buf))
		case entry.Next() != nil && c.used < s.MinFill():
			return fmt.Errorf("chunk %d: used %d < minimum fill %d", idx, c.used, s.MinFill())
		}
		size += c.used
		idx++
	}
	if idx != s.chunks.Len() {
		return fmt.Errorf("walked %d chunks, but list claims %d", idx, s.chunks.Len())
	}
	if size != s.size {
		return fmt.Errorf("cached size %d != actual size %d", s.size, size)
	}
	return nil
}
