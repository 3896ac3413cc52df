// Copyright (C) 2019-2022  Ambassador Labs
// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: Apache-2.0
//
// Contains code based on:
// https://github.com/datawire/dlib/blob/b09ab2e017e16d261f05fff5b3b860d645e774d4/dlog/logger_logrus.go
// https://github.com/datawire/dlib/blob/b09ab2e017e16d261f05fff5b3b860d645e774d4/dlog/logger_testing.go
// https://github.com/telepresenceio/telepresence/blob/ece94a40b00a90722af36b12e40f91cbecc0550c/pkg/log/formatter.go

package textui

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"git.lukeshu.com/go/typedsync"
	"github.com/datawire/dlib/dlog"
	"github.com/spf13/pflag"
)

// levelNames is indexed by dlog.LogLevel; the first name is the
// canonical one, and the 3-letter tag is what appears in log lines.
var levelNames = []struct {
	names []string
	tag   string
}{
	dlog.LogLevelError: {[]string{"error"}, "ERR"},
	dlog.LogLevelWarn:  {[]string{"warn", "warning"}, "WRN"},
	dlog.LogLevelInfo:  {[]string{"info"}, "INF"},
	dlog.LogLevelDebug: {[]string{"debug"}, "DBG"},
	dlog.LogLevelTrace: {[]string{"trace"}, "TRC"},
}

// LogLevelFlag is a pflag.Value for picking how verbose NewLogger is.
type LogLevelFlag struct {
	Level dlog.LogLevel
}

var _ pflag.Value = (*LogLevelFlag)(nil)

// Type implements pflag.Value.
func (lvl *LogLevelFlag) Type() string { return "loglevel" }

// Set implements pflag.Value.
func (lvl *LogLevelFlag) Set(str string) error {
	str = strings.ToLower(str)
	for level, entry := range levelNames {
		for _, name := range entry.names {
			if name == str {
				lvl.Level = dlog.LogLevel(level)
				return nil
			}
		}
	}
	return fmt.Errorf("invalid log level: %q", str)
}

// String implements pflag.Value.
func (lvl *LogLevelFlag) String() string {
	if int(lvl.Level) >= len(levelNames) {
		panic(fmt.Errorf("invalid log level: %#v", lvl.Level))
	}
	return levelNames[lvl.Level].names[0]
}

type logger struct {
	parent *logger
	out    io.Writer
	lvl    dlog.LogLevel

	// only valid if parent is non-nil
	fieldKey string
	fieldVal any
}

var _ dlog.OptimizedLogger = (*logger)(nil)

// NewLogger returns a dlog.Logger that writes one line per message to
// out, dropping messages less severe than lvl.
func NewLogger(out io.Writer, lvl dlog.LogLevel) dlog.Logger {
	return &logger{
		out: out,
		lvl: lvl,
	}
}

// Helper implements dlog.Logger.
func (l *logger) Helper() {}

// WithField implements dlog.Logger.
func (l *logger) WithField(key string, value any) dlog.Logger {
	return &logger{
		parent: l,
		out:    l.out,
		lvl:    l.lvl,

		fieldKey: key,
		fieldVal: value,
	}
}

type logWriter struct {
	log *logger
	lvl dlog.LogLevel
}

// Write implements io.Writer.
func (lw logWriter) Write(data []byte) (int, error) {
	lw.log.log(lw.lvl, func(w io.Writer) {
		_, _ = w.Write(data)
	})
	return len(data), nil
}

// StdLogger implements dlog.Logger.
func (l *logger) StdLogger(lvl dlog.LogLevel) *log.Logger {
	return log.New(logWriter{log: l, lvl: lvl}, "", 0)
}

// Log implements dlog.Logger.
func (l *logger) Log(lvl dlog.LogLevel, msg string) {
	panic("should not happen: optimized log methods should be used instead")
}

// UnformattedLog implements dlog.OptimizedLogger.
func (l *logger) UnformattedLog(lvl dlog.LogLevel, args ...any) {
	l.log(lvl, func(w io.Writer) {
		_, _ = printer.Fprint(w, args...)
	})
}

// UnformattedLogln implements dlog.OptimizedLogger.
func (l *logger) UnformattedLogln(lvl dlog.LogLevel, args ...any) {
	l.log(lvl, func(w io.Writer) {
		_, _ = printer.Fprintln(w, args...)
	})
}

// UnformattedLogf implements dlog.OptimizedLogger.
func (l *logger) UnformattedLogf(lvl dlog.LogLevel, format string, args ...any) {
	l.log(lvl, func(w io.Writer) {
		_, _ = printer.Fprintf(w, format, args...)
	})
}

var (
	logBufPool typedsync.Pool[*bytes.Buffer]
	logMu      sync.Mutex
	thisModDir string
)

func getLogBuf() *bytes.Buffer {
	buf, ok := logBufPool.Get()
	if !ok {
		buf = new(bytes.Buffer)
	}
	return buf
}

func putLogBuf(buf *bytes.Buffer) {
	buf.Reset()
	logBufPool.Put(buf)
}

func init() {
	//nolint:dogsled // I can't change the signature of the stdlib.
	_, file, _, _ := runtime.Caller(0)
	thisModDir = filepath.Dir(filepath.Dir(filepath.Dir(file)))
}

type logField struct {
	key string
	val any
}

// fields returns the fields of l and its parents, innermost value
// winning, sorted by fieldOrd.
func (l *logger) fields() []logField {
	seen := make(map[string]struct{})
	var ret []logField
	for f := l; f.parent != nil; f = f.parent {
		if _, dup := seen[f.fieldKey]; dup {
			continue
		}
		seen[f.fieldKey] = struct{}{}
		ret = append(ret, logField{key: f.fieldKey, val: f.fieldVal})
	}
	sort.Slice(ret, func(i, j int) bool {
		iOrd, jOrd := fieldOrd(ret[i].key), fieldOrd(ret[j].key)
		if iOrd != jOrd {
			return iOrd < jOrd
		}
		return ret[i].key < ret[j].key
	})
	return ret
}

// callerLocation returns "file:line" of the innermost caller that is
// in this module but outside of this package, or "" if there is none.
func callerLocation() string {
	const (
		thisModule             = "git.lukeshu.com/chunkystring"
		thisPackage            = "git.lukeshu.com/chunkystring/lib/textui"
		maximumCallerDepth int = 25
		minimumCallerDepth int = 4 // runtime.Callers + callerLocation + .log + .Log
	)
	var pcs [maximumCallerDepth]uintptr
	depth := runtime.Callers(minimumCallerDepth, pcs[:])
	frames := runtime.CallersFrames(pcs[:depth])
	for f, again := frames.Next(); again; f, again = frames.Next() {
		if !strings.HasPrefix(f.Function, thisModule+"/") || strings.HasPrefix(f.Function, thisPackage+".") {
			continue
		}
		file := strings.TrimPrefix(f.File, thisModDir+"/")
		return fmt.Sprintf("%s:%d", file, f.Line)
	}
	return ""
}

// log writes a line of the form
//
//	TIME LVL [early fields] : MSG [: late fields] [(from FILE:LINE)]
func (l *logger) log(lvl dlog.LogLevel, writeMsg func(io.Writer)) {
	if lvl > l.lvl {
		return
	}
	logBuf := getLogBuf()
	defer putLogBuf(logBuf)

	logBuf.WriteString(time.Now().Format("2006-01-02 15:04:05.0000"))
	if int(lvl) < len(levelNames) {
		logBuf.WriteString(" " + levelNames[lvl].tag)
	}

	fields := l.fields()
	late := sort.Search(len(fields), func(i int) bool { return fieldOrd(fields[i].key) >= 0 })
	for _, field := range fields[:late] {
		writeField(logBuf, field.key, field.val)
	}

	logBuf.WriteString(" : ")
	writeMsg(logBuf)

	loc := callerLocation()
	if late < len(fields) || loc != "" {
		logBuf.WriteString(" :")
	}
	for _, field := range fields[late:] {
		writeField(logBuf, field.key, field.val)
	}
	if loc != "" {
		fmt.Fprintf(logBuf, " (from %s)", loc)
	}
	logBuf.WriteByte('\n')

	logMu.Lock()
	_, _ = l.out.Write(logBuf.Bytes())
	logMu.Unlock()
}

// fieldOrd returns the sort-position for a given log-field-key.  Lower return
// values should be positioned on the left when logging, and higher values
// should be positioned on the right; values <0 should be on the left of the log
// message, while values ≥0 should be on the right of the log message.
func fieldOrd(key string) int {
	switch key {
	case "THREAD": // dgroup
		return -99
	case "chunkycheck.seed":
		return -3
	case "chunkycheck.step":
		return -2
	case "chunkycheck.op":
		return -1
	default:
		return 1
	}
}

func needsQuote(val []byte) bool {
	if bytes.HasPrefix(val, []byte(`"`)) {
		return true
	}
	for _, r := range val {
		if !unicode.IsPrint(rune(r)) || r == ' ' {
			return true
		}
	}
	return false
}

func writeField(w io.Writer, key string, val any) {
	valBuf := getLogBuf()
	defer putLogBuf(valBuf)
	_, _ = printer.Fprint(valBuf, val)
	valStr := valBuf.String()
	if needsQuote(valBuf.Bytes()) {
		valStr = fmt.Sprintf("%q", valStr)
	}

	name := key
	switch {
	case key == "THREAD":
		// dgroup names are "/main/child/..."; the top-level
		// goroutine is not worth mentioning.
		valStr = strings.TrimPrefix(strings.TrimPrefix(valStr, "/main"), "/")
		if valStr == "" {
			return
		}
		name = "thread"
	case strings.HasPrefix(key, "chunkycheck."):
		name = strings.TrimPrefix(key, "chunkycheck.")
	}

	fmt.Fprintf(w, " %s=%s", name, valStr)
}
