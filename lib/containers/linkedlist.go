// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers

import (
	"git.lukeshu.com/go/typedsync"
)

// LinkedListEntry[T] is an entry in a LinkedList[T].
type LinkedListEntry[T any] struct {
	list       *LinkedList[T]
	prev, next *LinkedListEntry[T]
	Value      T
}

// Next returns the entry after this one, or nil if this is the back
// of the list.
func (entry *LinkedListEntry[T]) Next() *LinkedListEntry[T] {
	return entry.next
}

// Prev returns the entry before this one, or nil if this is the
// front of the list.
func (entry *LinkedListEntry[T]) Prev() *LinkedListEntry[T] {
	return entry.prev
}

// LinkedList is a doubly-linked list.
//
// Entries are stable handles: an entry stays valid (and keeps its
// position relative to its neighbors) until it is passed to Delete,
// no matter what else is inserted or deleted around it.
//
// An advantage over `container/list.List` is that LinkedList
// maintains a Pool of entries, so churning through the list does not
// churn out garbage.  The zero LinkedList is an empty list ready to
// use.
type LinkedList[T any] struct {
	front, back *LinkedListEntry[T]
	len         int
	pool        typedsync.Pool[*LinkedListEntry[T]]
}

// IsEmpty returns whether the list empty or not.
func (l *LinkedList[T]) IsEmpty() bool {
	return l.front == nil
}

// Len returns the number of entries in the list.
func (l *LinkedList[T]) Len() int {
	return l.len
}

// Front returns the first entry in the list, or nil if the list is
// empty.
func (l *LinkedList[T]) Front() *LinkedListEntry[T] {
	return l.front
}

// Back returns the last entry in the list, or nil if the list is
// empty.
func (l *LinkedList[T]) Back() *LinkedListEntry[T] {
	return l.back
}

// Owns returns whether entry is currently an entry in this list.
// Entries that have been deleted are not owned by any list.
func (l *LinkedList[T]) Owns(entry *LinkedListEntry[T]) bool {
	return entry != nil && entry.list == l
}

func (l *LinkedList[T]) newEntry(val T) *LinkedListEntry[T] {
	entry, ok := l.pool.Get()
	if !ok {
		entry = new(LinkedListEntry[T])
	}
	*entry = LinkedListEntry[T]{
		list:  l,
		Value: val,
	}
	l.len++
	return entry
}

// PushBack appends a value to the back of the list, returning the
// created entry.
func (l *LinkedList[T]) PushBack(val T) *LinkedListEntry[T] {
	entry := l.newEntry(val)
	entry.prev = l.back
	l.back = entry
	if entry.prev == nil {
		l.front = entry
	} else {
		entry.prev.next = entry
	}
	return entry
}

// InsertAfter inserts a value immediately after mark, returning the
// created entry.
//
// It is invalid (runtime-panic) to call InsertAfter with a mark that
// isn't in the list.
func (l *LinkedList[T]) InsertAfter(mark *LinkedListEntry[T], val T) *LinkedListEntry[T] {
	if !l.Owns(mark) {
		panic("containers.LinkedList.InsertAfter: mark is not in this list")
	}
	entry := l.newEntry(val)
	entry.prev = mark
	entry.next = mark.next
	mark.next = entry
	if entry.next == nil {
		l.back = entry
	} else {
		entry.next.prev = entry
	}
	return entry
}

// Delete removes an entry from the list.  The entry is invalid once
// Delete returns, and should not be reused or have its .Value
// accessed.
//
// It is invalid (runtime-panic) to call Delete on an entry that isn't
// in the list.
func (l *LinkedList[T]) Delete(entry *LinkedListEntry[T]) {
	if !l.Owns(entry) {
		panic("containers.LinkedList.Delete: entry is not in this list")
	}
	if entry.next == nil {
		l.back = entry.prev
	} else {
		entry.next.prev = entry.prev
	}
	if entry.prev == nil {
		l.front = entry.next
	} else {
		entry.prev.next = entry.next
	}
	l.len--

	*entry = LinkedListEntry[T]{} // no memory leaks
	l.pool.Put(entry)
}
