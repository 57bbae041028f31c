// Package envelope encodes outbox reports for the wire. Two encodings ship:
// protobuf over a schemaless Struct, and plain JSON for greppable payloads.
package envelope

import (
	"errors"
	"time"

	"pandump/outbox"
)

// Serializer turns a report into wire bytes and back.
type Serializer interface {
	Encode(*outbox.Report) ([]byte, error)
	Decode([]byte) (*outbox.Report, error)
}

var ErrCorruptEnvelope = errors.New("envelope: corrupted payload")

// Timestamps travel as RFC3339Nano text; a Struct number cannot carry a
// full nanosecond count.
func formatTime(ns int64) string {
	return time.Unix(0, ns).UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (int64, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, err
	}
	return ts.UnixNano(), nil
}
