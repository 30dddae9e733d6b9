// Package function holds the wire types and gRPC service descriptors of the
// function invocation protocol:
//
//	message Message {
//	  message HeaderValue { repeated string values = 1; }
//	  bytes payload = 1;
//	  map<string, HeaderValue> headers = 2;
//	}
//	message ProbeRequest {}
//	message HealthStatus { bool healthy = 1; }
//
// Messages are encoded in the protobuf binary format by the codec in codec.go.
// The codec is selected through the "fnproto" content-subtype
// (application/grpc+fnproto), and both ends must use the clients and
// registration functions of this package. A stock protobuf client calling the
// same function.* services with plain application/grpc, such as grpcurl, is
// not understood by a server built on this package.
package function

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	messagePayloadField protowire.Number = 1
	messageHeadersField protowire.Number = 2

	entryKeyField   protowire.Number = 1
	entryValueField protowire.Number = 2

	headerValuesField protowire.Number = 1

	healthyField protowire.Number = 1
)

var ErrMalformed = errors.New("function: malformed message")

// HeaderEntry is one entry of the headers map. Entries keep the order in
// which they were encoded.
type HeaderEntry struct {
	Name   string
	Values []string
}

type Message struct {
	Payload []byte
	Headers []*HeaderEntry
}

func (m *Message) GetPayload() []byte {
	if m == nil {
		return nil
	}
	return m.Payload
}

func (m *Message) GetHeaders() []*HeaderEntry {
	if m == nil {
		return nil
	}
	return m.Headers
}

func (m *Message) appendWire(b []byte) []byte {
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, messagePayloadField, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	for _, e := range m.Headers {
		if e == nil {
			continue
		}
		b = protowire.AppendTag(b, messageHeadersField, protowire.BytesType)
		b = protowire.AppendBytes(b, e.appendWire(nil))
	}
	return b
}

func (m *Message) unmarshalWire(b []byte) error {
	*m = Message{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == messagePayloadField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: payload: %v", ErrMalformed, protowire.ParseError(n))
			}
			m.Payload = append([]byte(nil), v...)
			b = b[n:]
		case num == messageHeadersField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: headers: %v", ErrMalformed, protowire.ParseError(n))
			}
			e := &HeaderEntry{}
			if err := e.unmarshalWire(v); err != nil {
				return err
			}
			m.Headers = append(m.Headers, e)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// appendWire writes the entry as a map entry message whose value is a
// HeaderValue message.
func (e *HeaderEntry) appendWire(b []byte) []byte {
	b = protowire.AppendTag(b, entryKeyField, protowire.BytesType)
	b = protowire.AppendString(b, e.Name)

	var value []byte
	for _, v := range e.Values {
		value = protowire.AppendTag(value, headerValuesField, protowire.BytesType)
		value = protowire.AppendString(value, v)
	}
	b = protowire.AppendTag(b, entryValueField, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}

func (e *HeaderEntry) unmarshalWire(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: header entry: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == entryKeyField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("%w: header name: %v", ErrMalformed, protowire.ParseError(n))
			}
			e.Name = v
			b = b[n:]
		case num == entryValueField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: header value: %v", ErrMalformed, protowire.ParseError(n))
			}
			values, err := unmarshalHeaderValues(v)
			if err != nil {
				return err
			}
			// a repeated map key overrides the earlier value
			e.Values = values
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: header entry field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

func unmarshalHeaderValues(b []byte) ([]string, error) {
	var values []string
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: header values: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		if num == headerValuesField && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: header values: %v", ErrMalformed, protowire.ParseError(n))
			}
			values = append(values, v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, fmt.Errorf("%w: header values field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return values, nil
}

// ProbeRequest carries no fields.
type ProbeRequest struct{}

func (*ProbeRequest) appendWire(b []byte) []byte { return b }

func (*ProbeRequest) unmarshalWire(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: probe request: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return fmt.Errorf("%w: probe request field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

type HealthStatus struct {
	Healthy bool
}

func (s *HealthStatus) GetHealthy() bool {
	if s == nil {
		return false
	}
	return s.Healthy
}

func (s *HealthStatus) appendWire(b []byte) []byte {
	if !s.Healthy {
		return b
	}
	b = protowire.AppendTag(b, healthyField, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(true))
}

func (s *HealthStatus) unmarshalWire(b []byte) error {
	*s = HealthStatus{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: health status: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		if num == healthyField && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: healthy: %v", ErrMalformed, protowire.ParseError(n))
			}
			s.Healthy = protowire.DecodeBool(v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return fmt.Errorf("%w: health status field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}
