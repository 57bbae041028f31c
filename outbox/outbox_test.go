package outbox

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
)

func TestOutbox_Lifecycle(t *testing.T) {
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer o.Close()

	seq, err := o.Enqueue(&Report{
		CapturedAt: time.Now().UnixNano(),
		Host:       "edge-07",
		Proc:       "sensor-agent",
		Message:    []byte("panic: sensor offline\n"),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if seq != 1 {
		t.Fatalf("first seq %d, want 1", seq)
	}

	rep, err := o.Get(seq)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rep.State != StatePending || rep.Retries != 0 {
		t.Fatalf("fresh entry state %s retries %d", rep.State, rep.Retries)
	}
	if rep.Host != "edge-07" || rep.Proc != "sensor-agent" {
		t.Fatalf("identity lost: %q %q", rep.Host, rep.Proc)
	}
	if !bytes.Equal(rep.Message, []byte("panic: sensor offline\n")) {
		t.Fatalf("message lost: %q", rep.Message)
	}

	// --- ship it ---
	if err := o.UpdateState(seq, StateSent, 1); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := o.UpdateState(seq, StateAcked, 1); err != nil {
		t.Fatalf("mark acked: %v", err)
	}
	rep, err = o.Get(seq)
	if err != nil {
		t.Fatalf("get after ack: %v", err)
	}
	if rep.State != StateAcked || rep.LastAttempt == 0 {
		t.Fatalf("acked entry state %s lastAttempt %d", rep.State, rep.LastAttempt)
	}

	// --- cleanup ---
	if err := o.Delete(seq); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := o.Get(seq); !errors.Is(err, pebble.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestOutbox_ScanByState(t *testing.T) {
	o, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer o.Close()

	for i := 0; i < 3; i++ {
		if _, err := o.Enqueue(&Report{Host: "h", Proc: "p", Message: []byte("m")}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := o.UpdateState(2, StateAcked, 0); err != nil {
		t.Fatalf("mark: %v", err)
	}

	var pending []uint64
	err = o.ScanByState(StatePending, func(rep *Report) error {
		pending = append(pending, rep.Seq)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(pending) != 2 || pending[0] != 1 || pending[1] != 3 {
		t.Fatalf("pending %v, want [1 3]", pending)
	}
}

func TestOutbox_SequencerSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	o, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := o.Enqueue(&Report{Host: "h", Proc: "p", Message: []byte("m")}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := o.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	o, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer o.Close()

	if cur := o.seq.Current(); cur != 2 {
		t.Fatalf("sequencer seeded at %d, want 2", cur)
	}
	seq, err := o.Enqueue(&Report{Host: "h", Proc: "p", Message: []byte("m")})
	if err != nil {
		t.Fatalf("enqueue after reopen: %v", err)
	}
	if seq != 3 {
		t.Fatalf("seq after reopen %d, want 3", seq)
	}
}

func TestDecodeReport_RejectsCorruptValues(t *testing.T) {
	full := encodeReport(&Report{
		State:      StatePending,
		CapturedAt: 42,
		Host:       "host",
		Proc:       "proc",
		Message:    []byte("panic: x\n"),
	})

	cases := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"fixed header cut", full[:12]},
		{"inside host", full[:23]},
		{"message length lies", full[:len(full)-3]},
		{"trailing junk", append(bytes.Clone(full), 0xEE)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeReport(tc.blob); !errors.Is(err, ErrCorruptEntry) {
				t.Fatalf("expected ErrCorruptEntry, got %v", err)
			}
		})
	}
}
