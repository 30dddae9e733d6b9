package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodecIsRegistered(t *testing.T) {
	c := encoding.GetCodec(Name)
	require.NotNil(t, c)
	assert.Equal(t, Name, c.Name())
}

func TestClientsSelectCodec(t *testing.T) {
	var subtypes []string
	for _, opt := range callOptions([]grpc.CallOption{grpc.WaitForReady(true)}) {
		if o, ok := opt.(grpc.ContentSubtypeCallOption); ok {
			subtypes = append(subtypes, o.ContentSubtype)
		}
	}
	assert.Equal(t, []string{Name}, subtypes)
	assert.NotEqual(t, "proto", Name)
}

func TestMessageKeepsHeaderOrder(t *testing.T) {
	in := &Message{
		Payload: []byte("riff"),
		Headers: []*HeaderEntry{
			{Name: "Content-Type", Values: []string{"text/plain"}},
			{Name: "Accept", Values: []string{"*/*;q=0.1", "text/plain;q=0.9"}},
		},
	}

	data, err := codec{}.Marshal(in)
	require.NoError(t, err)

	out := &Message{}
	require.NoError(t, codec{}.Unmarshal(data, out))
	assert.Equal(t, in, out)
}

func TestEmptyMessageEncodesToNothing(t *testing.T) {
	data, err := codec{}.Marshal(&Message{})
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = codec{}.Marshal(&HealthStatus{Healthy: false})
	require.NoError(t, err)
	assert.Empty(t, data)
}

// The decoder must accept what any protobuf implementation produces for the
// same schema, including unknown fields.
func TestMessageDecodesHandEncodedMapEntry(t *testing.T) {
	var value []byte
	value = protowire.AppendTag(value, 1, protowire.BytesType)
	value = protowire.AppendString(value, "1234")

	var entry []byte
	entry = protowire.AppendTag(entry, 1, protowire.BytesType)
	entry = protowire.AppendString(entry, "correlationId")
	entry = protowire.AppendTag(entry, 2, protowire.BytesType)
	entry = protowire.AppendBytes(entry, value)

	var b []byte
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, entry)
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte{0x00, 0x01})

	m := &Message{}
	require.NoError(t, codec{}.Unmarshal(b, m))
	assert.Equal(t, []byte{0x00, 0x01}, m.Payload)
	require.Len(t, m.Headers, 1)
	assert.Equal(t, "correlationId", m.Headers[0].Name)
	assert.Equal(t, []string{"1234"}, m.Headers[0].Values)
}

func TestHealthStatus(t *testing.T) {
	data, err := codec{}.Marshal(&HealthStatus{Healthy: true})
	require.NoError(t, err)

	s := &HealthStatus{}
	require.NoError(t, codec{}.Unmarshal(data, s))
	assert.True(t, s.GetHealthy())

	var nilStatus *HealthStatus
	assert.False(t, nilStatus.GetHealthy())
}

func TestMalformedInput(t *testing.T) {
	// payload field announcing 10 bytes but carrying 1
	b := protowire.AppendTag(nil, 1, protowire.BytesType)
	b = protowire.AppendVarint(b, 10)
	b = append(b, 'x')

	err := codec{}.Unmarshal(b, &Message{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	_, err := codec{}.Marshal("not a message")
	assert.Error(t, err)
	assert.Error(t, codec{}.Unmarshal(nil, new(string)))
}
