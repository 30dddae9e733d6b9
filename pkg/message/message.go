// Package message implements the values exchanged over a function invocation
// channel: an immutable header map and a byte payload.
package message

import "bytes"

// Message is one unit of the invocation protocol. It is immutable once built.
type Message struct {
	headers Headers
	payload []byte
}

func (m Message) Headers() Headers {
	return m.headers
}

// Payload returns a copy of the payload. It is never nil.
func (m Message) Payload() []byte {
	return bytes.Clone(m.payloadOrEmpty())
}

func (m Message) payloadOrEmpty() []byte {
	if m.payload == nil {
		return []byte{}
	}
	return m.payload
}

func (m Message) Equal(o Message) bool {
	return m.headers.Equal(o.headers) && bytes.Equal(m.payload, o.payload)
}

func (m Message) String() string {
	return "headers={" + m.headers.String() + "} payload=" + string(m.payload)
}

// Builder accumulates headers and a payload for one Message. It is not safe
// for concurrent use.
type Builder struct {
	headers Headers
	payload []byte
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddHeader(name string, values ...any) *Builder {
	b.headers = b.headers.Add(name, values...)
	return b
}

// WithHeaders replaces the accumulated headers with h.
func (b *Builder) WithHeaders(h Headers) *Builder {
	b.headers = h
	return b
}

// Payload sets the payload, replacing any previous one.
func (b *Builder) Payload(p []byte) *Builder {
	b.payload = bytes.Clone(p)
	return b
}

func (b *Builder) PayloadString(s string) *Builder {
	b.payload = []byte(s)
	return b
}

// Build returns a snapshot of the builder. The builder stays usable and later
// changes do not affect messages already built.
func (b *Builder) Build() Message {
	payload := []byte{}
	if len(b.payload) > 0 {
		payload = bytes.Clone(b.payload)
	}
	return Message{headers: b.headers, payload: payload}
}
