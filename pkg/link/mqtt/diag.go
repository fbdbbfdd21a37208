package mqtt

import (
	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

// Diag is one diagnostic message as published on the diag topic.
type Diag struct {
	Device  string
	Message string
	Time    string
	Seq     uint64
}

// Field names of the encoded diagnostic.
const (
	fieldDevice  = "device"
	fieldMessage = "message"
	fieldTime    = "time"
	fieldSeq     = "seq"
)

// EncodeDiag serializes a diagnostic as a protobuf Struct stamped with the
// current time.
func EncodeDiag(device, msg string, seq uint64) ([]byte, error) {
	s := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldDevice:  stringValue(device),
			fieldMessage: stringValue(msg),
			fieldTime:    stringValue(ptypes.TimestampString(ptypes.TimestampNow())),
			fieldSeq:     {Kind: &structpb.Value_NumberValue{NumberValue: float64(seq)}},
		},
	}
	return proto.Marshal(s)
}

// DecodeDiag parses a payload produced by EncodeDiag.
func DecodeDiag(payload []byte) (Diag, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(payload, &s); err != nil {
		return Diag{}, err
	}
	return Diag{
		Device:  s.Fields[fieldDevice].GetStringValue(),
		Message: s.Fields[fieldMessage].GetStringValue(),
		Time:    s.Fields[fieldTime].GetStringValue(),
		Seq:     uint64(s.Fields[fieldSeq].GetNumberValue()),
	}, nil
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}
