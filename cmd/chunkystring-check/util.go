// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"io"
	"os"

	"git.lukeshu.com/go/lowmemjson"
)

func readJSONFile[T any](filename string, ret *T) error {
	fh, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = fh.Close()
	}()
	return lowmemjson.DecodeThenEOF(bufio.NewReader(fh), ret)
}

func writeJSONFile(w io.Writer, obj any, cfg lowmemjson.ReEncoder) (err error) {
	buffer := bufio.NewWriter(w)
	defer func() {
		if _err := buffer.Flush(); err == nil && _err != nil {
			err = _err
		}
	}()
	cfg.Out = buffer
	return lowmemjson.Encode(&cfg, obj)
}
