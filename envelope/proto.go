package envelope

import (
	"encoding/base64"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"pandump/outbox"
)

// ProtoSerializer implements Serializer over a protobuf Struct, so peers
// can read envelopes without sharing generated code. The message rides as
// base64 text because Struct strings must be valid UTF-8 and a crash
// payload carries no such promise.
type ProtoSerializer struct{}

func (ProtoSerializer) Encode(rep *outbox.Report) ([]byte, error) {
	st, err := ToStruct(rep)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func (ProtoSerializer) Decode(b []byte) (*outbox.Report, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(b, &st); err != nil {
		return nil, ErrCorruptEnvelope
	}
	return FromStruct(&st)
}

// ToStruct builds the wire Struct for rep.
func ToStruct(rep *outbox.Report) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"seq":         rep.Seq,
		"captured_at": formatTime(rep.CapturedAt),
		"host":        rep.Host,
		"proc":        rep.Proc,
		"message":     base64.StdEncoding.EncodeToString(rep.Message),
	})
}

// FromStruct reads a report back out of a wire Struct. Services that
// receive the Struct already decoded use this directly.
func FromStruct(st *structpb.Struct) (*outbox.Report, error) {
	f := st.GetFields()

	capturedAt, err := parseTime(f["captured_at"].GetStringValue())
	if err != nil {
		return nil, ErrCorruptEnvelope
	}
	msg, err := base64.StdEncoding.DecodeString(f["message"].GetStringValue())
	if err != nil {
		return nil, ErrCorruptEnvelope
	}
	return &outbox.Report{
		Seq:        uint64(f["seq"].GetNumberValue()),
		CapturedAt: capturedAt,
		Host:       f["host"].GetStringValue(),
		Proc:       f["proc"].GetStringValue(),
		Message:    msg,
	}, nil
}
