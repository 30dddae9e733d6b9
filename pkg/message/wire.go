package message

import (
	"bytes"
	"slices"

	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

// ToProto converts m into its wire form. Header entries keep their order.
func (m Message) ToProto() *pb.Message {
	out := &pb.Message{Payload: bytes.Clone(m.payloadOrEmpty())}
	for _, e := range m.headers.entries {
		out.Headers = append(out.Headers, &pb.HeaderEntry{Name: e.name, Values: slices.Clone(e.values)})
	}
	return out
}

// FromProto converts a wire message. Entries whose names differ only in case
// are merged in encoding order.
func FromProto(in *pb.Message) (Message, error) {
	var h Headers
	for _, e := range in.GetHeaders() {
		if e == nil {
			continue
		}
		var err error
		if h, err = h.with(e.Name, e.Values); err != nil {
			return Message{}, err
		}
	}
	return NewBuilder().WithHeaders(h).Payload(in.GetPayload()).Build(), nil
}
