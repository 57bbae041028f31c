// Package service wires the boot sequence of a crash-reporting process:
// drain the region left by the previous run, park what it held in the
// outbox, and hand off to the broadcaster.
//
// Application mains call CheckAndEnqueue once, before anything that
// might panic starts.
package service
