// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"git.lukeshu.com/chunkystring/lib/chunkystring"
	"git.lukeshu.com/chunkystring/lib/textui"
)

// buildDump pushes each byte of text onto a new string, then erases
// every n'th byte (if n > 0).
func buildDump(text string, chunkSize, n int) (*chunkystring.ChunkyString, error) {
	str, err := chunkystring.NewWithChunkSize(chunkSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(text); i++ {
		str.PushBack(text[i])
	}
	if n > 0 {
		i := 0
		for it := str.Begin(); !it.IsEnd(); i++ {
			if i%n == n-1 {
				if it, err = str.Erase(it); err != nil {
					return nil, err
				}
			} else {
				it = it.Next()
			}
		}
	}
	if err := str.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("BUG: %w", err)
	}
	return str, nil
}

func init() {
	var (
		chunkSizeFlag  int
		eraseEveryFlag int
	)
	cmd := subcommand{
		Command: cobra.Command{
			Use:   "dump TEXT",
			Short: "Show the chunk layout that TEXT is stored as",
			Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			str, err := buildDump(args[0], chunkSizeFlag, eraseEveryFlag)
			if err != nil {
				return err
			}
			dlog.Debugf(ctx, "built %v bytes in %v chunks", str.Len(), str.Stats().Chunks)

			spew := spew.NewDefaultConfig()
			spew.DisablePointerAddresses = true

			textui.Fprintf(os.Stdout, "text = %q\n", str.String())
			_, _ = os.Stdout.WriteString("stats = ")
			spew.Fdump(os.Stdout, str.Stats())
			_, _ = os.Stdout.WriteString("layout = ")
			spew.Fdump(os.Stdout, str.Layout())
			return nil
		},
	}
	cmd.Flags().IntVar(&chunkSizeFlag, "chunk-size", chunkystring.DefaultChunkSize, "capacity of each chunk, in bytes")
	cmd.Flags().IntVar(&eraseEveryFlag, "erase-every", 0, "after building, erase every `N`th byte (0 to erase nothing)")
	subcommands = append(subcommands, cmd)
}
