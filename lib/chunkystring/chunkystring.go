// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package chunkystring implements ChunkyString, a byte string that
// supports constant-time insertion and deletion anywhere in the
// string while staying space-efficient.
//
// A ChunkyString is a doubly-linked list of fixed-capacity chunks.
// Compared to a flat []byte, inserting or erasing only shifts the
// bytes of a single chunk; compared to a linked list of bytes, the
// per-byte overhead is a small fraction of a pointer.
//
// A ChunkyString is not safe for concurrent use.
package chunkystring

import (
	"fmt"
	"io"
	"strings"

	"git.lukeshu.com/chunkystring/lib/containers"
	"git.lukeshu.com/chunkystring/lib/fmtutil"
)

const (
	// DefaultChunkSize is the chunk capacity used by New and by the
	// zero ChunkyString.
	DefaultChunkSize = 12
	// MinChunkSize is the smallest chunk capacity accepted by
	// NewWithChunkSize.
	MinChunkSize = 4
)

// ChunkyString is a byte string stored as a list of chunks.  The zero
// ChunkyString is an empty string with DefaultChunkSize chunks, ready
// to use.
//
// A ChunkyString must not be copied after first use; use Clone to
// get an independent copy.
//
// Chunk occupancy: while only inserting, every chunk except the last
// is at least half full.  Erase keeps every chunk except the last at
// least a quarter full (MinFill), merging or rebalancing a chunk with
// its successor when it drops below that.
type ChunkyString struct {
	chunkSize int
	chunks    containers.LinkedList[*chunk]
	size      int

	// gen counts successful Inserts and Erases; an iterator
	// from an older generation is stale.
	gen uint64
}

// New returns an empty ChunkyString using DefaultChunkSize.
func New() *ChunkyString {
	return new(ChunkyString)
}

// NewWithChunkSize returns an empty ChunkyString whose chunks each
// hold up to size bytes.
func NewWithChunkSize(size int) (*ChunkyString, error) {
	if size < MinChunkSize {
		return nil, fmt.Errorf("chunkystring.NewWithChunkSize: %w: %d < %d",
			ErrChunkSize, size, MinChunkSize)
	}
	return &ChunkyString{chunkSize: size}, nil
}

// FromString returns a ChunkyString (using DefaultChunkSize) holding
// the bytes of str.
func FromString(str string) *ChunkyString {
	ret := New()
	ret.appendBytes([]byte(str))
	return ret
}

// Clone returns a deep copy of s; the copy shares no chunks with s.
func (s *ChunkyString) Clone() *ChunkyString {
	ret := &ChunkyString{chunkSize: s.chunkSize}
	for entry := s.chunks.Front(); entry != nil; entry = entry.Next() {
		ret.appendBytes(entry.Value.bytes())
	}
	return ret
}

// ChunkSize returns the capacity of each chunk.
func (s *ChunkyString) ChunkSize() int {
	if s.chunkSize == 0 {
		return DefaultChunkSize
	}
	return s.chunkSize
}

// MinFill returns the minimum number of bytes that Erase leaves in
// every chunk except the last.
func (s *ChunkyString) MinFill() int {
	if n := s.ChunkSize() / 4; n > 0 {
		return n
	}
	return 1
}

func (s *ChunkyString) newChunk() *chunk {
	return newChunk(s.ChunkSize())
}

// Len returns the number of bytes in the string, in constant time.
func (s *ChunkyString) Len() int {
	return s.size
}

// Begin returns an Iterator to the first byte; it is equal to End()
// if the string is empty.
func (s *ChunkyString) Begin() Iterator {
	return Iterator{s.begin()}
}

// End returns the "one past the end" Iterator.
func (s *ChunkyString) End() Iterator {
	return Iterator{s.end()}
}

// CBegin is like Begin, but returns a ConstIterator.
func (s *ChunkyString) CBegin() ConstIterator {
	return ConstIterator{s.begin()}
}

// CEnd is like End, but returns a ConstIterator.
func (s *ChunkyString) CEnd() ConstIterator {
	return ConstIterator{s.end()}
}

func (s *ChunkyString) begin() position {
	return position{seq: s, gen: s.gen, entry: s.chunks.Front()}
}

func (s *ChunkyString) end() position {
	return position{seq: s, gen: s.gen}
}

// at returns the position of the off'th byte counting from the start
// of entry, moving forward into later chunks as necessary.
func (s *ChunkyString) at(entry *containers.LinkedListEntry[*chunk], off int) position {
	for entry != nil && off >= entry.Value.used {
		off -= entry.Value.used
		entry = entry.Next()
	}
	if entry == nil {
		return s.end()
	}
	return position{seq: s, gen: s.gen, entry: entry, off: off}
}

// IteratorAt returns an Iterator to the i'th byte, or End() if
// i == Len().  This walks the chunk list, so it takes time
// proportional to i/ChunkSize().
func (s *ChunkyString) IteratorAt(i int) (Iterator, error) {
	if i < 0 || i > s.size {
		return Iterator{}, fmt.Errorf("chunkystring.IteratorAt: %w: index %d out of range [0,%d]",
			ErrInvalidPosition, i, s.size)
	}
	return Iterator{s.at(s.chunks.Front(), i)}, nil
}

// PushBack appends c to the end of the string.
func (s *ChunkyString) PushBack(c byte) {
	tail := s.chunks.Back()
	if tail == nil || tail.Value.full() {
		tail = s.chunks.PushBack(s.newChunk())
	}
	tail.Value.buf[tail.Value.used] = c
	tail.Value.used++
	s.size++
}

func (s *ChunkyString) appendBytes(dat []byte) {
	for len(dat) > 0 {
		tail := s.chunks.Back()
		if tail == nil || tail.Value.full() {
			tail = s.chunks.PushBack(s.newChunk())
		}
		n := copy(tail.Value.buf[tail.Value.used:], dat)
		tail.Value.used += n
		s.size += n
		dat = dat[n:]
	}
}

// Append appends a copy of the bytes of other to s.  The result is
// the same as calling PushBack for each byte of other in order, and
// s.Append(s) doubles s.
func (s *ChunkyString) Append(other *ChunkyString) {
	if other == s {
		s.appendBytes(other.Bytes())
		return
	}
	for entry := other.chunks.Front(); entry != nil; entry = entry.Next() {
		s.appendBytes(entry.Value.bytes())
	}
}

// Insert inserts c immediately before the byte that pos refers to, or
// at the end if pos is End().  It returns an Iterator to the inserted
// byte.
//
// Insert invalidates every Iterator and ConstIterator on s except
// the returned one.  ErrInvalidPosition is returned (and s is left
// unmodified) if pos belongs to another string or has been
// invalidated.
func (s *ChunkyString) Insert(pos Iterator, c byte) (Iterator, error) {
	if err := s.checkPosition(pos.position, true); err != nil {
		return Iterator{}, fmt.Errorf("chunkystring.Insert: %w", err)
	}

	s.gen++
	if pos.entry == nil {
		s.PushBack(c)
		tail := s.chunks.Back()
		return Iterator{s.at(tail, tail.Value.used-1)}, nil
	}

	entry, off := pos.entry, pos.off
	if entry.Value.full() {
		if prev := entry.Prev(); off == 0 && prev != nil && !prev.Value.full() {
			// Inserting before a chunk's first byte is the
			// same as appending to the previous chunk.
			entry, off = prev, prev.Value.used
		} else {
			mid := len(entry.Value.buf) / 2
			next := s.chunks.InsertAfter(entry, s.newChunk())
			entry.Value.splitInto(next.Value, mid)
			if off > mid {
				entry, off = next, off-mid
			}
		}
	}
	entry.Value.insertAt(off, c)
	s.size++
	return Iterator{s.at(entry, off)}, nil
}

// Erase removes the byte that pos refers to, and returns an Iterator
// to the byte that followed it (or End()).
//
// Erase invalidates every Iterator and ConstIterator on s except the
// returned one.  ErrInvalidPosition is returned (and s is left
// unmodified) if pos is End(), belongs to another string, or has been
// invalidated.
func (s *ChunkyString) Erase(pos Iterator) (Iterator, error) {
	if err := s.checkPosition(pos.position, false); err != nil {
		return Iterator{}, fmt.Errorf("chunkystring.Erase: %w", err)
	}

	s.gen++
	entry, off := pos.entry, pos.off
	entry.Value.eraseAt(off)
	s.size--

	next := entry.Next()
	switch {
	case entry.Value.used == 0:
		s.chunks.Delete(entry)
		return Iterator{s.at(next, 0)}, nil
	case next != nil && entry.Value.used < s.MinFill():
		if entry.Value.used+next.Value.used <= len(entry.Value.buf) {
			entry.Value.mergeFrom(next.Value)
			s.chunks.Delete(next)
		} else {
			entry.Value.balanceWith(next.Value)
		}
	}
	return Iterator{s.at(entry, off)}, nil
}

// checkPosition returns a non-nil error if p does not refer to a byte
// in s (or to the end of s, if allowEnd).
func (s *ChunkyString) checkPosition(p position, allowEnd bool) error {
	switch {
	case p.seq != s:
		return fmt.Errorf("%w: iterator belongs to a different string", ErrInvalidPosition)
	case p.gen != s.gen:
		return fmt.Errorf("%w: iterator is stale (string modified since it was obtained)", ErrInvalidPosition)
	case p.entry == nil:
		if !allowEnd {
			return fmt.Errorf("%w: iterator is End()", ErrInvalidPosition)
		}
		if p.off != 0 {
			return fmt.Errorf("%w: malformed End() iterator", ErrInvalidPosition)
		}
	case !s.chunks.Owns(p.entry):
		return fmt.Errorf("%w: iterator refers to a chunk that is not in this string", ErrInvalidPosition)
	case p.off < 0 || p.off >= p.entry.Value.used:
		return fmt.Errorf("%w: offset %d out of range [0,%d)", ErrInvalidPosition, p.off, p.entry.Value.used)
	}
	return nil
}

// Equal returns whether s and other hold the same bytes.
func (s *ChunkyString) Equal(other *ChunkyString) bool {
	if s.size != other.size {
		return false
	}
	a, b := s.CBegin(), other.CBegin()
	for i := 0; i < s.size; i++ {
		if a.Get() != b.Get() {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return true
}

// Compare returns -1, 0, or 1 as s sorts lexicographically before,
// the same as, or after other.  Bytes are compared as unsigned
// values, and a proper prefix sorts first.
func (s *ChunkyString) Compare(other *ChunkyString) int {
	return containers.CompareSeq(s.CBegin().walker(), other.CBegin().walker())
}

// Less returns whether s sorts lexicographically before other.
func (s *ChunkyString) Less(other *ChunkyString) bool {
	return s.Compare(other) < 0
}

// Utilization returns the fraction of allocated chunk capacity that
// holds bytes: Len() / (number of chunks × ChunkSize()).  It returns
// 0 for a string with no chunks.
func (s *ChunkyString) Utilization() float64 {
	if s.chunks.IsEmpty() {
		return 0
	}
	n := s.chunks.Len()
	return float64(s.size) / float64(n*s.ChunkSize())
}

// Bytes returns a copy of the contents of s.
func (s *ChunkyString) Bytes() []byte {
	ret := make([]byte, 0, s.size)
	for entry := s.chunks.Front(); entry != nil; entry = entry.Next() {
		ret = append(ret, entry.Value.bytes()...)
	}
	return ret
}

var (
	_ fmt.Stringer  = (*ChunkyString)(nil)
	_ fmt.Formatter = (*ChunkyString)(nil)
	_ io.WriterTo   = (*ChunkyString)(nil)
)

// String implements fmt.Stringer.
func (s *ChunkyString) String() string {
	var ret strings.Builder
	ret.Grow(s.size)
	_, _ = s.WriteTo(&ret)
	return ret.String()
}

// Format implements fmt.Formatter.  The contents are formatted the
// same as a string would be, with %v meaning %s.
func (s *ChunkyString) Format(f fmt.State, verb rune) {
	if verb == 'v' {
		verb = 's'
	}
	fmt.Fprintf(f, fmtutil.FmtStateString(f, verb), s.String())
}

// WriteTo implements io.WriterTo, writing the contents of s a chunk
// at a time.
func (s *ChunkyString) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for entry := s.chunks.Front(); entry != nil; entry = entry.Next() {
		n, err := w.Write(entry.Value.bytes())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
