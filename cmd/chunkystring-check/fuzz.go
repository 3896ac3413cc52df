// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"time"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"git.lukeshu.com/chunkystring/lib/chunkycheck"
	"git.lukeshu.com/chunkystring/lib/chunkystring"
	"git.lukeshu.com/chunkystring/lib/textui"
)

// loadConfig overlays the JSON file filename on to cfg.  Fields that
// the file does not mention keep their current value, and so does any
// field whose flag was explicitly given.
func loadConfig(filename string, cfg *chunkycheck.Config, flagChanged func(string) bool) error {
	fileCfg := *cfg
	if err := readJSONFile(filename, &fileCfg); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	// Explicit flags win over the file.
	if flagChanged("seed") {
		fileCfg.Seed = cfg.Seed
	}
	if flagChanged("ops") {
		fileCfg.Ops = cfg.Ops
	}
	if flagChanged("chunk-size") {
		fileCfg.ChunkSize = cfg.ChunkSize
	}
	if flagChanged("max-len") {
		fileCfg.MaxLen = cfg.MaxLen
	}
	if flagChanged("timeout") {
		fileCfg.Timeout = cfg.Timeout
	}
	if flagChanged("max-failures") {
		fileCfg.MaxFailures = cfg.MaxFailures
	}
	*cfg = fileCfg
	return nil
}

func init() {
	var (
		cfg = chunkycheck.Config{
			Seed:      1,
			Ops:       100_000,
			ChunkSize: chunkystring.DefaultChunkSize,
		}
		configFlag  string
		workersFlag int
		jsonFlag    bool
	)
	cmd := subcommand{
		Command: cobra.Command{
			Use:   "fuzz",
			Short: "Apply random edits and compare against a flat reference",
			Long: "" +
				"Each worker applies --ops random edits to its own string, " +
				"checking the contents, both traversal directions, and the " +
				"chunk-fill invariants after every edit.  Worker i uses " +
				"seed --seed+i, so a failure can be reproduced by re-running " +
				"with that seed and --workers=1.\n" +
				"\n" +
				"Interrupting (Ctrl-C) stops the workers after their current " +
				"edit and still prints the report.",
			Args: cliutil.WrapPositionalArgs(cobra.NoArgs),
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if configFlag != "" {
				if err := loadConfig(configFlag, &cfg, cmd.Flags().Changed); err != nil {
					return err
				}
			}

			dlog.Infof(ctx, "running %v workers from seed %v", workersFlag, cfg.Seed)
			reports, runErr := chunkycheck.RunAll(ctx, cfg, workersFlag)
			if reports == nil {
				return runErr
			}

			if jsonFlag {
				if err := writeJSONFile(os.Stdout, reports, lowmemjson.ReEncoder{
					Indent:                "\t",
					ForceTrailingNewlines: true,
				}); err != nil {
					return err
				}
			} else {
				for _, report := range reports {
					textui.Fprintf(os.Stdout, "%v", report)
				}
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&configFlag, "config", "", "read the run configuration from the JSON file `config.json`")
	_ = cmd.MarkFlagFilename("config", "json")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the first worker")
	cmd.Flags().IntVar(&cfg.Ops, "ops", cfg.Ops, "number of edits per worker")
	cmd.Flags().IntVar(&workersFlag, "workers", 1, "number of concurrent workers")
	cmd.Flags().IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "capacity of each chunk, in bytes")
	cmd.Flags().IntVar(&cfg.MaxLen, "max-len", cfg.MaxLen, "maximum string length (0 for the default)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 0*time.Second, "fail a worker that runs longer than this (0 for no limit)")
	cmd.Flags().IntVar(&cfg.MaxFailures, "max-failures", cfg.MaxFailures, "stop a worker after this many failures (0 for 1)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "write the reports as JSON")
	subcommands = append(subcommands, cmd)
}
