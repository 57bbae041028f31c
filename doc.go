// Package pandump persists one failure diagnostic across a process restart.
//
// A fixed memory window that outlives the process holds at most one record:
// an 8-byte header followed by message text. The writing side runs inside a
// failure handler and can neither fail nor allocate; the reading side runs
// once at the next startup and invalidates the record as it delivers it.
package pandump
