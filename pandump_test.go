package pandump

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"pandump/region"
)

func newRegion(t *testing.T, capacity int) *region.Region {
	t.Helper()
	return region.FromBuffer(make([]byte, capacity))
}

func TestRoundtrip(t *testing.T) {
	cases := []struct {
		name string
		cap  int
		msg  string
	}{
		{"short", 64, "x"},
		{"typical", 1024, "panic: runtime error: integer divide by zero\n"},
		{"fills payload exactly", 64, strings.Repeat("a", 56)},
		{"one byte free", 64, strings.Repeat("b", 55)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := newRegion(t, tc.cap)
			PersistString(reg, tc.msg)

			got, ok := Message(reg)
			if !ok {
				t.Fatal("record not found after persist")
			}
			if string(got) != tc.msg {
				t.Fatalf("got %q, want %q", got, tc.msg)
			}
		})
	}
}

func TestRoundtrip_AddressLabeledRegion(t *testing.T) {
	// 1 KiB window at a fixed address, the shape a reserved-RAM layout gives.
	buf := make([]byte, 1024)
	reg, err := region.New(0x2000FC00, 0x20010000, buf)
	if err != nil {
		t.Fatalf("new region: %v", err)
	}

	const msg = "panicked at 'index out of bounds'\n"
	PersistString(reg, msg)

	got, ok := Message(reg)
	if !ok {
		t.Fatal("record not found")
	}
	if len(got) != 34 || string(got) != msg {
		t.Fatalf("got %d bytes %q, want 34 bytes %q", len(got), got, msg)
	}
	if _, ok := Message(reg); ok {
		t.Fatal("second query must find nothing")
	}
}

func TestWrite_TruncatesToPayloadSpace(t *testing.T) {
	reg := newRegion(t, 24) // 16 payload bytes
	long := "0123456789abcdefOVERFLOW"
	Persist(reg, []byte(long))

	got, ok := Message(reg)
	if !ok {
		t.Fatal("record not found")
	}
	if string(got) != long[:16] {
		t.Fatalf("got %q, want first 16 bytes %q", got, long[:16])
	}
}

func TestWriter_StreamsAcrossCalls(t *testing.T) {
	reg := newRegion(t, 256)
	w := NewWriter(reg)

	w.Write([]byte("panic: "))
	w.WriteString("index out of range [12] with length 4")
	fmt.Fprintf(w, " (goroutine %d)\n", 1)
	w.Commit()

	want := "panic: index out of range [12] with length 4 (goroutine 1)\n"
	got, ok := Message(reg)
	if !ok || string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriter_SealedAfterCommit(t *testing.T) {
	reg := newRegion(t, 64)
	w := NewWriter(reg)

	w.WriteString("first")
	w.Commit()
	w.WriteString(" second")
	w.Commit()

	got, ok := Message(reg)
	if !ok || string(got) != "first" {
		t.Fatalf("got %q, want %q", got, "first")
	}
}

func TestWriter_UncommittedStaysInvisible(t *testing.T) {
	reg := newRegion(t, 64)
	w := NewWriter(reg)
	w.WriteString("never committed")

	if st := Peek(reg); st != StateEmpty {
		t.Fatalf("state %v, want EMPTY", st)
	}
	if _, ok := Message(reg); ok {
		t.Fatal("uncommitted bytes must not surface")
	}
}

func TestWriter_RetractsPreviousRecord(t *testing.T) {
	reg := newRegion(t, 64)
	PersistString(reg, "old crash")

	// A later failure starts writing and dies before Commit.
	w := NewWriter(reg)
	w.WriteString("new")

	if _, ok := Message(reg); ok {
		t.Fatal("half-written replacement must read as absent, not as a blend")
	}
}

func TestPersist_LastFailureWins(t *testing.T) {
	reg := newRegion(t, 64)
	PersistString(reg, "first failure, quite a long line\n")
	PersistString(reg, "second\n")

	got, ok := Message(reg)
	if !ok || string(got) != "second\n" {
		t.Fatalf("got %q, want %q", got, "second\n")
	}
}

func TestPersist_EmptyMessageRecordsNothing(t *testing.T) {
	reg := newRegion(t, 64)
	PersistString(reg, "")

	if st := Peek(reg); st != StateEmpty {
		t.Fatalf("state %v, want EMPTY", st)
	}
	if _, ok := Message(reg); ok {
		t.Fatal("empty record must not surface")
	}
}

func TestMessage_ColdBootRegions(t *testing.T) {
	cases := []struct {
		name string
		fill func([]byte)
	}{
		{"all zero", func(b []byte) {}},
		{"garbage", func(b []byte) {
			for i := range b {
				b[i] = byte(0xDE ^ i)
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, 128)
			tc.fill(buf)
			before := bytes.Clone(buf)
			reg := region.FromBuffer(buf)

			if _, ok := Message(reg); ok {
				t.Fatal("uninitialized region must read as absent")
			}
			if !bytes.Equal(buf, before) {
				t.Fatal("absent read must not touch the region")
			}
		})
	}
}

func TestMessage_ConsumesExactlyOnce(t *testing.T) {
	reg := newRegion(t, 128)
	PersistString(reg, "only once\n")

	if st := Peek(reg); st != StateRecorded {
		t.Fatalf("state %v, want RECORDED", st)
	}
	if _, ok := Message(reg); !ok {
		t.Fatal("first query must deliver")
	}
	if st := Peek(reg); st != StateEmpty {
		t.Fatalf("state after consume %v, want EMPTY", st)
	}
	if _, ok := Message(reg); ok {
		t.Fatal("second query must find nothing")
	}
}

func TestMessage_ClampsCorruptLength(t *testing.T) {
	reg := newRegion(t, 32) // 24 payload bytes
	PersistString(reg, "abc")

	// Corrupt the stored length far past the window.
	putUint32LE(reg.Bytes()[4:8], 0xFFFFFFFF)

	got, ok := Message(reg)
	if !ok {
		t.Fatal("clamped record should still deliver")
	}
	if len(got) != 24 {
		t.Fatalf("clamped to %d bytes, want 24", len(got))
	}
	if string(got[:3]) != "abc" {
		t.Fatalf("payload prefix %q, want %q", got[:3], "abc")
	}
	if _, ok := Message(reg); ok {
		t.Fatal("clamped delivery must still consume the record")
	}
}

func TestMessage_ZeroLengthRecordConsumedAsAbsent(t *testing.T) {
	reg := newRegion(t, 32)
	buf := reg.Bytes()
	putUint32LE(buf[0:4], Magic) // sentinel present, length zero

	if _, ok := Message(reg); ok {
		t.Fatal("zero-length record must read as absent")
	}
	if readUint32LE(buf[0:4]) == Magic {
		t.Fatal("examined record must be invalidated even when absent")
	}
}

func TestSmallRegions(t *testing.T) {
	for capacity := 0; capacity < HeaderSize; capacity++ {
		buf := make([]byte, capacity)
		for i := range buf {
			buf[i] = 0x77
		}
		before := bytes.Clone(buf)
		reg := region.FromBuffer(buf)

		w := NewWriter(reg)
		w.WriteString("does not fit")
		w.Commit()

		if _, ok := Message(reg); ok {
			t.Fatalf("cap %d: message surfaced from inoperative region", capacity)
		}
		if st := Peek(reg); st != StateInoperative {
			t.Fatalf("cap %d: state %v, want INOPERATIVE", capacity, st)
		}
		if !bytes.Equal(buf, before) {
			t.Fatalf("cap %d: inoperative region was written to", capacity)
		}
	}
}

func TestHeaderOnlyRegion(t *testing.T) {
	buf := make([]byte, HeaderSize) // zero payload space
	for i := range buf {
		buf[i] = 0x77
	}
	before := bytes.Clone(buf)
	reg := region.FromBuffer(buf)

	Persist(reg, []byte("anything"))

	if _, ok := Message(reg); ok {
		t.Fatal("region with no payload space must never deliver")
	}
	if st := Peek(reg); st != StateEmpty {
		t.Fatalf("state %v, want EMPTY", st)
	}
	if !bytes.Equal(buf, before) {
		t.Fatal("header-only region must be left as-is")
	}
}

func TestAvailable(t *testing.T) {
	cases := []struct {
		cap  int
		want int
	}{
		{0, 0},
		{7, 0},
		{8, 0},
		{9, 1},
		{1024, 1016},
	}
	for _, tc := range cases {
		if got := Available(newRegion(t, tc.cap)); got != tc.want {
			t.Fatalf("cap %d: available %d, want %d", tc.cap, got, tc.want)
		}
	}
	if Available(nil) != 0 {
		t.Fatal("nil region must report 0")
	}
}

func TestState_String(t *testing.T) {
	if StateEmpty.String() != "EMPTY" ||
		StateRecorded.String() != "RECORDED" ||
		StateInoperative.String() != "INOPERATIVE" {
		t.Fatal("state names drifted")
	}
}
