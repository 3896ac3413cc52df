// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers

import (
	"golang.org/x/exp/constraints"
)

// NativeCompare returns -1, 0, or 1 as a is less than, equal to, or
// greater than b.
func NativeCompare[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareSeq lexicographically compares two sequences that are
// walked with the given "next" functions; each returns the next
// element and true, or false once its sequence is exhausted.  A
// proper prefix sorts before the longer sequence.
func CompareSeq[T constraints.Ordered](nextA, nextB func() (T, bool)) int {
	for {
		a, aOK := nextA()
		b, bOK := nextB()
		switch {
		case !aOK && !bOK:
			return 0
		case !aOK:
			return -1
		case !bOK:
			return 1
		}
		if d := NativeCompare(a, b); d != 0 {
			return d
		}
	}
}
