// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package chunkystring

import (
	"errors"
)

var (
	// ErrInvalidPosition is returned when an iterator or index does
	// not refer to a usable position in the string.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrChunkSize is returned by NewWithChunkSize for a chunk
	// size smaller than MinChunkSize.
	ErrChunkSize = errors.New("invalid chunk size")
)
