package function

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the content-subtype the codec is registered under. Clients built by
// this package select it on every call.
const Name = "fnproto"

type wireMessage interface {
	appendWire(b []byte) []byte
	unmarshalWire(b []byte) error
}

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("function: cannot marshal %T", v)
	}
	return m.appendWire(nil), nil
}

func (codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireMessage)
	if !ok {
		return fmt.Errorf("function: cannot unmarshal into %T", v)
	}
	return m.unmarshalWire(data)
}

func (codec) Name() string {
	return Name
}

func init() {
	encoding.RegisterCodec(codec{})
}
