// Package outbox is the durable hand-off between a drained crash record and
// the transports that ship it. Every entry carries its own shipping state,
// so a broadcast interrupted by a restart resumes where it stopped.
package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type ShipState uint8

const (
	StatePending ShipState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s ShipState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Report --------------------

var ErrCorruptEntry = errors.New("outbox: corrupted entry")

// Report is one crash record waiting to leave the host. Seq lives in the
// store key, everything else in the value.
type Report struct {
	Seq        uint64
	CapturedAt int64 // unix nanos at the moment the region was drained
	Host       string
	Proc       string
	Message    []byte

	State       ShipState
	Retries     uint32
	LastAttempt int64
}

// binary encoding:
// [state:1][retries:4][lastAttempt:8][capturedAt:8][hostLen:2][host][procLen:2][proc][msgLen:4][msg]
func encodeReport(r *Report) []byte {
	size := 1 + 4 + 8 + 8 + 2 + len(r.Host) + 2 + len(r.Proc) + 4 + len(r.Message)
	buf := make([]byte, 0, size)
	buf = append(buf, byte(r.State))
	buf = binary.BigEndian.AppendUint32(buf, r.Retries)
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.LastAttempt))
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.CapturedAt))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(r.Host)))
	buf = append(buf, r.Host...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(r.Proc)))
	buf = append(buf, r.Proc...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Message)))
	buf = append(buf, r.Message...)
	return buf
}

func decodeReport(b []byte) (*Report, error) {
	if len(b) < 1+4+8+8 {
		return nil, ErrCorruptEntry
	}
	r := &Report{
		State:       ShipState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		CapturedAt:  int64(binary.BigEndian.Uint64(b[13:21])),
	}
	rest := b[21:]

	var err error
	if r.Host, rest, err = takeString16(rest); err != nil {
		return nil, err
	}
	if r.Proc, rest, err = takeString16(rest); err != nil {
		return nil, err
	}
	if r.Message, rest, err = takeBytes32(rest); err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, ErrCorruptEntry
	}
	return r, nil
}

func takeString16(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, ErrCorruptEntry
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < 2+n {
		return "", nil, ErrCorruptEntry
	}
	return string(b[2 : 2+n]), b[2+n:], nil
}

func takeBytes32(b []byte) ([]byte, []byte, error) {
	if len(b) < 4 {
		return nil, nil, ErrCorruptEntry
	}
	n := int(binary.BigEndian.Uint32(b))
	if len(b) < 4+n {
		return nil, nil, ErrCorruptEntry
	}
	// iterator values are only valid until the next step
	return bytes.Clone(b[4 : 4+n]), b[4+n:], nil
}

// -------------------- Outbox --------------------

type Outbox struct {
	db  *pebble.DB
	seq *Sequencer
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // entries must outlive the process
	})
	if err != nil {
		return nil, fmt.Errorf("outbox: open %s: %w", dir, err)
	}
	o := &Outbox{db: db}
	last, err := o.lastSeq()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("outbox: seed sequencer: %w", err)
	}
	o.seq = NewSequencer(last)
	return o, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// -------------------- API --------------------

// Enqueue assigns the next sequence and stores rep as PENDING.
func (o *Outbox) Enqueue(rep *Report) (uint64, error) {
	rep.Seq = o.seq.Next()
	rep.State = StatePending
	rep.Retries = 0
	rep.LastAttempt = 0
	if err := o.db.Set(keyFor(rep.Seq), encodeReport(rep), pebble.Sync); err != nil {
		return 0, fmt.Errorf("outbox: enqueue %d: %w", rep.Seq, err)
	}
	return rep.Seq, nil
}

// Get returns the stored report for seq.
func (o *Outbox) Get(seq uint64) (*Report, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	rep, err := decodeReport(val)
	if err != nil {
		return nil, err
	}
	rep.Seq = seq
	return rep, nil
}

// UpdateState rewrites the shipping state after a send, ack or failure.
func (o *Outbox) UpdateState(seq uint64, state ShipState, retries uint32) error {
	rep, err := o.Get(seq)
	if err != nil {
		return err
	}
	rep.State = state
	rep.Retries = retries
	rep.LastAttempt = time.Now().UnixNano()
	if err := o.db.Set(keyFor(seq), encodeReport(rep), pebble.Sync); err != nil {
		return fmt.Errorf("outbox: mark %d %s: %w", seq, state, err)
	}
	return nil
}

// Delete removes ACKED entries once nothing will ask for them again.
func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

// -------------------- Scan --------------------

// ScanByState visits every entry in the given state, in sequence order.
func (o *Outbox) ScanByState(state ShipState, fn func(rep *Report) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rep, err := decodeReport(iter.Value())
		if err != nil {
			return err
		}
		if rep.State != state {
			continue
		}
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rep.Seq = seq
		if err := fn(rep); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (o *Outbox) lastSeq() (uint64, error) {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseKey(iter.Key())
}

// -------------------- Helpers --------------------

const keyPrefix = "report/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &seq)
	return seq, err
}
