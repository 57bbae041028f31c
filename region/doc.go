// Package region provides explicit handles over the fixed memory windows
// that hold a persisted failure record. A window can wrap any caller-owned
// buffer, or come from the mmap providers, whose backing survives the
// process that wrote it.
package region
