package envelope

import (
	"encoding/json"

	"pandump/outbox"
)

// wireReport is the JSON shape. Message marshals to base64 through the
// standard []byte rules.
type wireReport struct {
	Seq        uint64 `json:"seq"`
	CapturedAt string `json:"captured_at"`
	Host       string `json:"host"`
	Proc       string `json:"proc"`
	Message    []byte `json:"message"`
}

// JSONSerializer implements Serializer with plain JSON.
type JSONSerializer struct{}

func (JSONSerializer) Encode(rep *outbox.Report) ([]byte, error) {
	return json.Marshal(wireReport{
		Seq:        rep.Seq,
		CapturedAt: formatTime(rep.CapturedAt),
		Host:       rep.Host,
		Proc:       rep.Proc,
		Message:    rep.Message,
	})
}

func (JSONSerializer) Decode(b []byte) (*outbox.Report, error) {
	var w wireReport
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, ErrCorruptEnvelope
	}
	capturedAt, err := parseTime(w.CapturedAt)
	if err != nil {
		return nil, ErrCorruptEnvelope
	}
	return &outbox.Report{
		Seq:        w.Seq,
		CapturedAt: capturedAt,
		Host:       w.Host,
		Proc:       w.Proc,
		Message:    w.Message,
	}, nil
}
