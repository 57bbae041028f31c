package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pandump"
	"pandump/outbox"
	"pandump/region"
)

// Recovery is the only reader of the region. It runs once per boot.
type Recovery struct {
	reg    *region.Region
	box    *outbox.Outbox
	host   string
	proc   string
	logger log.Logger
}

type Config struct {
	Host   string // defaults to os.Hostname()
	Proc   string // defaults to the binary name
	Logger log.Logger
}

// NewRecovery wires all dependencies.
func NewRecovery(reg *region.Region, box *outbox.Outbox, cfg Config) *Recovery {
	host := cfg.Host
	if host == "" {
		host, _ = os.Hostname()
	}
	proc := cfg.Proc
	if proc == "" && len(os.Args) > 0 {
		proc = filepath.Base(os.Args[0])
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Recovery{
		reg:    reg,
		box:    box,
		host:   host,
		proc:   proc,
		logger: log.With(logger, "component", "recovery"),
	}
}

// CheckAndEnqueue drains the crash record left by the previous run and
// parks it in the outbox as PENDING. It returns the assigned sequence, or
// ok=false when the last run shut down clean. Reading invalidates the
// region before the enqueue lands, so a crash in between loses that one
// record rather than replaying it forever.
func (r *Recovery) CheckAndEnqueue() (seq uint64, ok bool, err error) {
	if pandump.Peek(r.reg) == pandump.StateInoperative {
		level.Warn(r.logger).Log("msg", "region cannot hold a record")
		return 0, false, nil
	}

	msg, found := pandump.Message(r.reg)
	if !found {
		level.Debug(r.logger).Log("msg", "no crash record from previous run")
		return 0, false, nil
	}

	seq, err = r.box.Enqueue(&outbox.Report{
		CapturedAt: time.Now().UnixNano(),
		Host:       r.host,
		Proc:       r.proc,
		Message:    bytes.Clone(msg),
	})
	if err != nil {
		return 0, false, fmt.Errorf("service: park crash record: %w", err)
	}

	level.Info(r.logger).Log("msg", "crash record recovered",
		"seq", seq, "bytes", len(msg))
	return seq, true, nil
}
