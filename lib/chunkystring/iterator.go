// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkystring

import (
	"git.lukeshu.com/chunkystring/lib/containers"
)

// position is the shared implementation of Iterator and
// ConstIterator.  A nil entry is the End() position, and then off is
// always 0.  gen is seq.gen as of when the position was obtained.
type position struct {
	seq   *ChunkyString
	gen   uint64
	entry *containers.LinkedListEntry[*chunk]
	off   int
}

func (p position) isEnd() bool {
	return p.entry == nil
}

func (p position) equal(o position) bool {
	return p.seq == o.seq && p.gen == o.gen && p.entry == o.entry && p.off == o.off
}

func (p position) get() byte {
	if p.entry == nil {
		panic("chunkystring: dereferencing End() iterator")
	}
	return p.entry.Value.buf[p.off]
}

func (p position) next() position {
	if p.entry == nil {
		panic("chunkystring: incrementing End() iterator")
	}
	if p.off+1 < p.entry.Value.used {
		p.off++
		return p
	}
	return position{seq: p.seq, gen: p.gen, entry: p.entry.Next()}
}

func (p position) prev() position {
	if p.seq == nil {
		panic("chunkystring: decrementing zero Iterator")
	}
	var entry *containers.LinkedListEntry[*chunk]
	switch {
	case p.entry == nil:
		entry = p.seq.chunks.Back()
	case p.off > 0:
		p.off--
		return p
	default:
		entry = p.entry.Prev()
	}
	if entry == nil {
		panic("chunkystring: decrementing Begin() iterator")
	}
	return position{seq: p.seq, gen: p.gen, entry: entry, off: entry.Value.used - 1}
}

// Iterator refers to a byte in a ChunkyString, or to the end of it.
//
// Iterators are invalidated by any Insert or Erase on their
// ChunkyString, except for the Iterator returned by that call.
// Traversal, reads, PushBack, and Append never invalidate an
// Iterator.  Insert and Erase reject an invalidated Iterator with
// ErrInvalidPosition; reading or writing through one is undefined.
// The zero Iterator is not usable.
type Iterator struct {
	position
}

// Get returns the byte that it refers to.  It panics if it is End().
func (it Iterator) Get() byte {
	return it.get()
}

// Set overwrites the byte that it refers to.  It panics if it is
// End().
func (it Iterator) Set(c byte) {
	if it.entry == nil {
		panic("chunkystring: assigning through End() iterator")
	}
	it.entry.Value.buf[it.off] = c
}

// Next returns an Iterator to the following byte, or End() if it
// refers to the last byte.  It panics if it is End().
func (it Iterator) Next() Iterator {
	return Iterator{it.next()}
}

// Prev returns an Iterator to the preceding byte; Prev of End() is the
// last byte.  It panics if it is Begin().
func (it Iterator) Prev() Iterator {
	return Iterator{it.prev()}
}

// Equal returns whether it and other refer to the same position of
// the same ChunkyString.
func (it Iterator) Equal(other Iterator) bool {
	return it.equal(other.position)
}

// IsEnd returns whether it is the End() iterator of its string.
func (it Iterator) IsEnd() bool {
	return it.isEnd()
}

// Const converts it to a ConstIterator referring to the same
// position.
func (it Iterator) Const() ConstIterator {
	return ConstIterator{it.position}
}

// ConstIterator is a read-only Iterator.  Any Iterator may be turned
// in to a ConstIterator with .Const(), but not the other way around.
type ConstIterator struct {
	position
}

// Get returns the byte that it refers to.  It panics if it is End().
func (it ConstIterator) Get() byte {
	return it.get()
}

// Next is like Iterator.Next.
func (it ConstIterator) Next() ConstIterator {
	return ConstIterator{it.next()}
}

// Prev is like Iterator.Prev.
func (it ConstIterator) Prev() ConstIterator {
	return ConstIterator{it.prev()}
}

// Equal is like Iterator.Equal.
func (it ConstIterator) Equal(other ConstIterator) bool {
	return it.equal(other.position)
}

// IsEnd is like Iterator.IsEnd.
func (it ConstIterator) IsEnd() bool {
	return it.isEnd()
}

// walker returns a function that returns successive bytes starting
// at it, for use with containers.CompareSeq.
func (it ConstIterator) walker() func() (byte, bool) {
	return func() (byte, bool) {
		if it.IsEnd() {
			return 0, false
		}
		c := it.Get()
		it = it.Next()
		return c, true
	}
}
