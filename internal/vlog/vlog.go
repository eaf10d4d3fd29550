// Package vlog is the process-wide logging sink for the analysis pipeline,
// adapted from the teacher's internal/debug package: a redirectable writer
// guarded by a mutex, with leveled helpers that every stage calls to report
// degraded-to-warning conditions instead of aborting the run.
package vlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	logger           = log.New(os.Stderr, "", log.LstdFlags)
	quiet  bool
)

// SetOutput redirects all log output. Passing nil silences logging entirely.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		out = io.Discard
		logger = log.New(io.Discard, "", 0)
		return
	}
	out = w
	logger = log.New(w, "", log.LstdFlags)
}

// SetQuiet suppresses Infof/Debugf while still allowing Warnf/Errorf through.
func SetQuiet(v bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = v
}

func Infof(format string, args ...any) {
	mu.Lock()
	q := quiet
	l := logger
	mu.Unlock()
	if q {
		return
	}
	l.Output(2, fmt.Sprintf("INFO  "+format, args...))
}

func Debugf(format string, args ...any) {
	mu.Lock()
	q := quiet
	l := logger
	mu.Unlock()
	if q {
		return
	}
	l.Output(2, fmt.Sprintf("DEBUG "+format, args...))
}

func Warnf(format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()
	l.Output(2, fmt.Sprintf("WARN  "+format, args...))
}

func Errorf(format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()
	l.Output(2, fmt.Sprintf("ERROR "+format, args...))
}

// Writer exposes the current sink for components (e.g. profilers) that need
// direct access rather than formatted lines.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}
