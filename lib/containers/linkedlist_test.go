// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listValues[T any](t *testing.T, l *LinkedList[T]) []T {
	t.Helper()
	var fwd []T
	var prev *LinkedListEntry[T]
	for entry := l.Front(); entry != nil; entry = entry.Next() {
		require.Equal(t, prev, entry.Prev())
		require.True(t, l.Owns(entry))
		fwd = append(fwd, entry.Value)
		prev = entry
	}
	require.Equal(t, prev, l.Back())
	require.Equal(t, len(fwd), l.Len())
	require.Equal(t, len(fwd) == 0, l.IsEmpty())
	return fwd
}

func TestLinkedList(t *testing.T) {
	t.Parallel()
	var l LinkedList[int]
	assert.Nil(t, listValues(t, &l))

	a := l.PushBack(1)
	c := l.PushBack(3)
	assert.Equal(t, []int{1, 3}, listValues(t, &l))

	l.InsertAfter(a, 2)
	assert.Equal(t, []int{1, 2, 3}, listValues(t, &l))
	l.InsertAfter(c, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, listValues(t, &l))

	l.Delete(a)
	assert.Equal(t, []int{2, 3, 4}, listValues(t, &l))
	assert.False(t, l.Owns(a))
	l.Delete(l.Back())
	assert.Equal(t, []int{2, 3}, listValues(t, &l))
	l.Delete(l.Front())
	l.Delete(l.Front())
	assert.Nil(t, listValues(t, &l))
}

func TestLinkedListForeignEntry(t *testing.T) {
	t.Parallel()
	var a, b LinkedList[int]
	entry := a.PushBack(1)
	assert.False(t, b.Owns(entry))
	assert.False(t, b.Owns(nil))
	assert.Panics(t, func() { b.Delete(entry) })
	assert.Panics(t, func() { b.InsertAfter(entry, 2) })
	assert.Equal(t, []int{1}, listValues(t, &a))
}

func FuzzLinkedList(f *testing.F) {
	// Each byte is an operation: the top 2 bits select the op, the
	// low 6 bits select a position (mod length).
	const (
		opPush   = 0b0000_0000
		opInsert = 0b0100_0000
		opDelete = 0b1000_0000
	)
	f.Add([]byte{})
	f.Add([]byte{opPush, opPush, opInsert | 1, opDelete | 0})
	f.Add([]byte{opDelete, opInsert, opPush | 7})

	f.Fuzz(func(t *testing.T, dat []byte) {
		var list LinkedList[byte]
		var ref []byte
		for i, b := range dat {
			val := byte(i)
			switch pos := int(b & 0b0011_1111); b & 0b1100_0000 {
			case opInsert, 0b1100_0000:
				if len(ref) == 0 {
					continue
				}
				pos %= len(ref)
				entry := list.Front()
				for j := 0; j < pos; j++ {
					entry = entry.Next()
				}
				list.InsertAfter(entry, val)
				ref = append(ref[:pos+1], append([]byte{val}, ref[pos+1:]...)...)
			case opDelete:
				if len(ref) == 0 {
					continue
				}
				pos %= len(ref)
				entry := list.Front()
				for j := 0; j < pos; j++ {
					entry = entry.Next()
				}
				list.Delete(entry)
				ref = append(ref[:pos], ref[pos+1:]...)
			default:
				list.PushBack(val)
				ref = append(ref, val)
			}
			require.Equal(t, ref, listValues(t, &list))
		}
	})
}
