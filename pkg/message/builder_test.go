package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	m := NewBuilder().
		AddHeader("Header-Name", "headerValue 1").
		AddHeader("Header-Name", "headerValue 2").
		PayloadString("will be replaced").
		PayloadString("riff").
		Build()

	assert.Equal(t, Object{
		"Header-Name": {Values: []string{"headerValue 1", "headerValue 2"}},
	}, m.Headers().ToObject())
	assert.Equal(t, []byte("riff"), m.Payload())
}

func TestBuildEmptyMessage(t *testing.T) {
	m := NewBuilder().Build()

	assert.Equal(t, Object{}, m.Headers().ToObject())
	assert.NotNil(t, m.Payload())
	assert.Empty(t, m.Payload())

	var zero Message
	assert.NotNil(t, zero.Payload())
}

func TestBuildIsASnapshot(t *testing.T) {
	b := NewBuilder().AddHeader("A", "1").PayloadString("first")
	first := b.Build()

	second := b.AddHeader("B", "2").Payload([]byte("second")).Build()

	assert.Equal(t, []string{"A"}, first.Headers().Names())
	assert.Equal(t, []byte("first"), first.Payload())
	assert.Equal(t, []string{"A", "B"}, second.Headers().Names())
	assert.Equal(t, []byte("second"), second.Payload())

	// building again without changes yields an equal message
	assert.True(t, second.Equal(b.Build()))
}

func TestPayloadIsCopied(t *testing.T) {
	raw := []byte("abc")
	m := NewBuilder().Payload(raw).Build()
	raw[0] = 'x'

	p := m.Payload()
	p[1] = 'y'

	assert.Equal(t, []byte("abc"), m.Payload())
}

func TestWithHeaders(t *testing.T) {
	req := NewBuilder().AddHeader("Correlation-Id", 7).PayloadString("ping").Build()
	reply := NewBuilder().WithHeaders(req.Headers()).AddHeader("Content-Type", "text/plain").PayloadString("pong").Build()

	assert.Equal(t, []string{"Correlation-Id"}, req.Headers().Names())
	assert.Equal(t, []string{"Correlation-Id", "Content-Type"}, reply.Headers().Names())
}
