// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkycheck

import (
	"bytes"
	"fmt"

	"github.com/datawire/dlib/derror"
	"golang.org/x/exp/slices"

	"git.lukeshu.com/chunkystring/lib/chunkystring"
	"git.lukeshu.com/chunkystring/lib/textui"
)

// UtilizationBound returns the value that the utilization of a
// string of the given length must exceed, if every chunk except the
// last one is at least chunkSize/divisor full.
func UtilizationBound(size, chunkSize, divisor int) float64 {
	if size == 0 {
		return 0
	}
	perChunk := chunkSize / divisor
	if perChunk < 1 {
		perChunk = 1
	}
	rest := size - 1
	chunks := 1 + (rest+perChunk-1)/perChunk
	return float64(rest) / float64(chunks*chunkSize)
}

// Checker applies Steps to a ChunkyString and to a flat reference
// copy, and verifies that they agree.
type Checker struct {
	str     *chunkystring.ChunkyString
	ref     []byte
	erased  bool
	minUtil float64
}

// NewChecker returns a Checker for an empty string with the given
// chunk size.
func NewChecker(chunkSize int) (*Checker, error) {
	str, err := chunkystring.NewWithChunkSize(chunkSize)
	if err != nil {
		return nil, err
	}
	return &Checker{
		str:     str,
		minUtil: 1,
	}, nil
}

// Value returns the string under test.
func (c *Checker) Value() *chunkystring.ChunkyString { return c.str }

// Reference returns the expected contents.  The caller must not
// modify it.
func (c *Checker) Reference() []byte { return c.ref }

// MinUtilization is the lowest utilization observed by Verify for a
// non-empty string, or 1 if there has been no such observation.
func (c *Checker) MinUtilization() float64 { return c.minUtil }

// Apply performs one step.  A panic inside the string is reported as
// an error.
func (c *Checker) Apply(step Step) (err error) {
	defer func() {
		if _err := derror.PanicToError(recover()); _err != nil {
			err = fmt.Errorf("%v: %w", step, _err)
		}
	}()
	if err := c.apply(step); err != nil {
		return fmt.Errorf("%v: %w", step, err)
	}
	return nil
}

func (c *Checker) apply(step Step) error {
	switch step.Op {
	case OpPushBack:
		c.str.PushBack(step.Char)
		c.ref = append(c.ref, step.Char)
	case OpInsert:
		it, err := c.str.IteratorAt(step.Pos)
		if err != nil {
			return err
		}
		it, err = c.str.Insert(it, step.Char)
		if err != nil {
			return err
		}
		if got := it.Get(); got != step.Char {
			return fmt.Errorf("returned iterator points at %#02x, not the inserted byte", got)
		}
		c.ref = slices.Insert(c.ref, step.Pos, step.Char)
	case OpErase:
		it, err := c.str.IteratorAt(step.Pos)
		if err != nil {
			return err
		}
		it, err = c.str.Erase(it)
		if err != nil {
			return err
		}
		c.ref = slices.Delete(c.ref, step.Pos, step.Pos+1)
		c.erased = true
		switch {
		case step.Pos == len(c.ref):
			if !it.IsEnd() {
				return fmt.Errorf("erasing the last byte did not return End()")
			}
		case it.IsEnd():
			return fmt.Errorf("returned End() instead of the byte at %d", step.Pos)
		case it.Get() != c.ref[step.Pos]:
			return fmt.Errorf("returned iterator points at %#02x, expected %#02x", it.Get(), c.ref[step.Pos])
		}
	case OpSet:
		it, err := c.str.IteratorAt(step.Pos)
		if err != nil {
			return err
		}
		it.Set(step.Char)
		c.ref[step.Pos] = step.Char
	case OpAppend:
		c.str.Append(chunkystring.FromString(step.Text))
		c.ref = append(c.ref, step.Text...)
	case OpAppendSelf:
		c.str.Append(c.str)
		c.ref = append(c.ref, c.ref...)
	case OpCompare:
		other := chunkystring.FromString(step.Text)
		exp := bytes.Compare(c.ref, []byte(step.Text))
		if got := c.str.Compare(other); got != exp {
			return fmt.Errorf("Compare=%d, expected %d", got, exp)
		}
		if got := c.str.Equal(other); got != (exp == 0) {
			return fmt.Errorf("Equal=%v, expected %v", got, exp == 0)
		}
		if got := c.str.Less(other); got != (exp < 0) {
			return fmt.Errorf("Less=%v, expected %v", got, exp < 0)
		}
	case OpClone:
		dup := c.str.Clone()
		if !dup.Equal(c.str) {
			return fmt.Errorf("clone is not equal to its source")
		}
		it, err := dup.IteratorAt(step.Pos)
		if err != nil {
			return err
		}
		if _, err := dup.Erase(it); err != nil {
			return err
		}
		if dup.Equal(c.str) {
			return fmt.Errorf("modifying a clone did not make it differ")
		}
	default:
		return fmt.Errorf("unknown op %v", step.Op)
	}
	return nil
}

// resync rebuilds the string from the reference, so that checking
// can continue after a failure.
func (c *Checker) resync() {
	str, err := chunkystring.NewWithChunkSize(c.str.ChunkSize())
	if err != nil {
		panic(err)
	}
	str.Append(chunkystring.FromString(string(c.ref)))
	c.str = str
}

// Verify checks that the string matches the reference, walking it in
// both directions, and that its chunks are full enough.
func (c *Checker) Verify() error {
	var errs derror.MultiError

	if err := c.str.CheckInvariants(); err != nil {
		errs = append(errs, err)
	}
	if got := c.str.Len(); got != len(c.ref) {
		errs = append(errs, fmt.Errorf("Len=%d, expected %d",
			textui.Humanized(got), textui.Humanized(len(c.ref))))
	}
	if got := c.str.Bytes(); !bytes.Equal(got, c.ref) {
		errs = append(errs, fmt.Errorf("content=%q, expected %q", got, c.ref))
	}

	bwd := make([]byte, 0, len(c.ref))
	for it := c.str.CEnd(); !it.Equal(c.str.CBegin()); {
		it = it.Prev()
		bwd = append(bwd, it.Get())
	}
	for i, j := 0, len(bwd)-1; i < j; i, j = i+1, j-1 {
		bwd[i], bwd[j] = bwd[j], bwd[i]
	}
	if !bytes.Equal(bwd, c.ref) {
		errs = append(errs, fmt.Errorf("backward walk=%q, expected %q", bwd, c.ref))
	}

	if len(c.ref) > 0 {
		util := c.str.Utilization()
		if util < c.minUtil {
			c.minUtil = util
		}
		divisor := 2
		if c.erased {
			divisor = 4
		}
		if bound := UtilizationBound(len(c.ref), c.str.ChunkSize(), divisor); util <= bound {
			errs = append(errs, fmt.Errorf("utilization=%v, expected more than %v (divisor=%d)",
				util, bound, divisor))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
