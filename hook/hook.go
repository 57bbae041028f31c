// Package hook wires panics into a persisted region so the text survives
// the process. Install binds the target once at startup; Recover goes in a
// defer at the top of main and of long-lived goroutines; Capture is the
// entry point for custom panic plumbing.
package hook

import (
	"fmt"
	"os"
	"runtime/debug"

	"pandump"
	"pandump/region"
)

// Options control how panics are rendered and what happens afterwards.
type Options struct {
	// WithStack appends the goroutine stack after the panic line.
	WithStack bool
	// PanicOnFault turns fault signals (the SIGSEGV class) into panics so
	// they travel through the hook too.
	PanicOnFault bool
	// AllGoroutines widens runtime tracebacks to every goroutine.
	AllGoroutines bool
	// ExitCode is the status Recover exits with. Zero means 2, the status
	// the runtime itself uses for an unrecovered panic.
	ExitCode int
	// Repanic re-raises the value after persisting instead of exiting.
	Repanic bool
}

var (
	target *region.Region
	opts   Options
)

// Install binds the process-wide target region. Call it once, early in
// main, before anything that defers Recover starts. Installing nil leaves
// the hook armed but writing nowhere.
func Install(reg *region.Region, o Options) {
	target = reg
	opts = o
	if o.PanicOnFault {
		debug.SetPanicOnFault(true)
	}
	if o.AllGoroutines {
		debug.SetTraceback("all")
	}
}

// Recover persists a panic in flight and terminates the process:
//
//	defer hook.Recover()
//
// With no panic in flight it does nothing, so it is safe on every return
// path. Normal execution never resumes past it.
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	Capture(r)
	if opts.Repanic {
		panic(r)
	}
	fmt.Fprintf(os.Stderr, "panic: %v\n", r)
	code := opts.ExitCode
	if code == 0 {
		code = 2
	}
	os.Exit(code)
}

// Capture renders r into the installed region and commits the record,
// leaving process control to the caller. Oversized output is cut at the
// region's payload capacity, stack last.
func Capture(r any) {
	if r == nil {
		return
	}
	w := pandump.NewWriter(target)
	fmt.Fprintf(w, "panic: %v\n", r)
	if opts.WithStack {
		w.Write(debug.Stack())
	}
	w.Commit()
}
