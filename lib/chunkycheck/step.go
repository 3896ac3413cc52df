// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkycheck

import (
	"fmt"
	"math/rand"
)

// Op is one kind of operation that the checker performs.
type Op int

const (
	OpPushBack Op = iota
	OpInsert
	OpErase
	OpSet
	OpAppend
	OpAppendSelf
	OpCompare
	OpClone
	numOps
)

var opNames = [numOps]string{
	OpPushBack:   "push-back",
	OpInsert:     "insert",
	OpErase:      "erase",
	OpSet:        "set",
	OpAppend:     "append",
	OpAppendSelf: "append-self",
	OpCompare:    "compare",
	OpClone:      "clone",
}

var _ fmt.Stringer = Op(0)

// String implements fmt.Stringer.
func (op Op) String() string {
	if op < 0 || op >= numOps {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

// Step is a single operation along with its arguments.  Which fields
// are meaningful depends on Op.
type Step struct {
	Op   Op
	Pos  int
	Char byte
	Text string
}

var _ fmt.Stringer = Step{}

// String implements fmt.Stringer.
func (s Step) String() string {
	switch s.Op {
	case OpPushBack:
		return fmt.Sprintf("%v(%#02x)", s.Op, s.Char)
	case OpInsert, OpSet:
		return fmt.Sprintf("%v(%d, %#02x)", s.Op, s.Pos, s.Char)
	case OpErase, OpClone:
		return fmt.Sprintf("%v(%d)", s.Op, s.Pos)
	case OpAppend, OpCompare:
		return fmt.Sprintf("%v(%q)", s.Op, s.Text)
	default:
		return s.Op.String() + "()"
	}
}

// opWeights is the relative frequency of each Op in RandomStep.
// Erase is weighted the same as insert and push-back combined, so
// that the length drifts around rather than growing without bound.
var opWeights = [numOps]int{
	OpPushBack:   10,
	OpInsert:     30,
	OpErase:      40,
	OpSet:        5,
	OpAppend:     3,
	OpAppendSelf: 1,
	OpCompare:    8,
	OpClone:      3,
}

func randomChar(rnd *rand.Rand) byte {
	// Bias toward the edges of the byte range, which is where
	// signedness bugs hide.
	switch rnd.Intn(8) {
	case 0:
		return 0x00
	case 1:
		return 0xff
	default:
		return byte(rnd.Intn(256))
	}
}

func randomText(rnd *rand.Rand, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = randomChar(rnd)
	}
	return string(buf)
}

// mutated returns a string that is a small edit away from cur (or
// equal to it), for exercising comparison.
func mutated(rnd *rand.Rand, cur []byte) string {
	buf := append([]byte(nil), cur...)
	switch rnd.Intn(5) {
	case 0: // equal
	case 1: // proper prefix
		if len(buf) > 0 {
			buf = buf[:rnd.Intn(len(buf))]
		}
	case 2: // extension
		buf = append(buf, randomChar(rnd))
	case 3: // one byte changed
		if len(buf) > 0 {
			buf[rnd.Intn(len(buf))] = randomChar(rnd)
		}
	case 4: // unrelated
		buf = []byte(randomText(rnd, rnd.Intn(len(buf)+2)))
	}
	return string(buf)
}

// RandomStep returns a random Step that is valid to apply to a
// string whose current contents are cur.  Steps that would grow the
// string past maxLen are not generated.
func RandomStep(rnd *rand.Rand, cur []byte, maxLen int) Step {
	for {
		total := 0
		for _, w := range opWeights {
			total += w
		}
		pick := rnd.Intn(total)
		op := Op(0)
		for ; pick >= opWeights[op]; op++ {
			pick -= opWeights[op]
		}

		n := len(cur)
		switch op {
		case OpPushBack:
			if n < maxLen {
				return Step{Op: op, Char: randomChar(rnd)}
			}
		case OpInsert:
			if n < maxLen {
				return Step{Op: op, Pos: rnd.Intn(n + 1), Char: randomChar(rnd)}
			}
		case OpErase, OpClone:
			if n > 0 {
				return Step{Op: op, Pos: rnd.Intn(n)}
			}
		case OpSet:
			if n > 0 {
				return Step{Op: op, Pos: rnd.Intn(n), Char: randomChar(rnd)}
			}
		case OpAppend:
			if room := maxLen - n; room > 0 {
				return Step{Op: op, Text: randomText(rnd, rnd.Intn(room+1))}
			}
		case OpAppendSelf:
			if 2*n <= maxLen {
				return Step{Op: op}
			}
		case OpCompare:
			return Step{Op: op, Text: mutated(rnd, cur)}
		}
	}
}
