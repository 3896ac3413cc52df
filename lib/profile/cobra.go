// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package profile

import (
	"fmt"
	"os"

	"github.com/datawire/dlib/derror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flagSet struct {
	shutdown []StopFunc
}

func (fs *flagSet) Stop() error {
	var errs derror.MultiError
	// Stop in reverse order, like defer.
	for i := len(fs.shutdown) - 1; i >= 0; i-- {
		if err := fs.shutdown[i](); err != nil {
			errs = append(errs, err)
		}
	}
	fs.shutdown = nil
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type flagValue struct {
	parent *flagSet
	kind   Kind
	curVal string
}

var _ pflag.Value = (*flagValue)(nil)

// String implements pflag.Value.
func (fv *flagValue) String() string { return fv.curVal }

// Set implements pflag.Value.
func (fv *flagValue) Set(filename string) error {
	if filename == "" {
		return nil
	}
	if fv.curVal != "" {
		return fmt.Errorf("already writing a %s profile to %q", fv.kind, fv.curVal)
	}
	w, err := os.Create(filename)
	if err != nil {
		return err
	}
	stop, err := Start(fv.kind, w)
	if err != nil {
		_ = w.Close()
		return err
	}
	fv.curVal = filename
	fv.parent.shutdown = append(fv.parent.shutdown, func() error {
		err1 := stop()
		err2 := w.Close()
		if err1 != nil {
			return err1
		}
		return err2
	})
	return nil
}

// Type implements pflag.Value.
func (*flagValue) Type() string { return "filename" }

// AddProfileFlags adds a "<prefix><kind>" flag to a pflag.FlagSet for
// each of Kinds(), and returns a "stop" function to be called at
// program shutdown.  Recording begins as soon as a flag is parsed.
func AddProfileFlags(flags *pflag.FlagSet, prefix string) StopFunc {
	var root flagSet
	for _, kind := range Kinds() {
		name := prefix + string(kind)
		var usage string
		switch kind {
		case KindTrace:
			usage = "Write an execution trace (https://pkg.go.dev/runtime/trace) to the file `trace.out`"
		default:
			usage = fmt.Sprintf("Write a %s profile to the file `%s.pprof`", kind, kind)
		}
		flags.Var(&flagValue{parent: &root, kind: kind}, name, usage)
		_ = cobra.MarkFlagFilename(flags, name)
	}
	return root.Stop
}
