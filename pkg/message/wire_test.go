package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

func TestProtoRoundTrip(t *testing.T) {
	m := NewBuilder().
		AddHeader("Content-Type", "application/json").
		AddHeader("Accept", "a", "b").
		PayloadString(`{"hello":"riff"}`).
		Build()

	back, err := FromProto(m.ToProto())
	require.NoError(t, err)
	assert.True(t, m.Equal(back))
	assert.Equal(t, []string{"Content-Type", "Accept"}, back.Headers().Names())
}

func TestEmptyMessageToProto(t *testing.T) {
	out := NewBuilder().Build().ToProto()

	assert.Empty(t, out.Headers)
	assert.NotNil(t, out.Payload)
	assert.Empty(t, out.Payload)
}

func TestFromProtoMergesCaseVariants(t *testing.T) {
	m, err := FromProto(&pb.Message{Headers: []*pb.HeaderEntry{
		{Name: "Accept", Values: []string{"a"}},
		{Name: "ACCEPT", Values: []string{"b"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, Object{"Accept": {Values: []string{"a", "b"}}}, m.Headers().ToObject())
}

func TestFromProtoRejectsEmptyEntries(t *testing.T) {
	_, err := FromProto(&pb.Message{Headers: []*pb.HeaderEntry{{Name: "X"}}})
	assert.ErrorIs(t, err, ErrMissingValues)

	_, err = FromProto(&pb.Message{Headers: []*pb.HeaderEntry{{Values: []string{"v"}}}})
	assert.ErrorIs(t, err, ErrEmptyHeaderName)
}

func TestHeadersJSON(t *testing.T) {
	h := Headers{}.Add("Zulu", "z").Add("Alpha", "a1", "a2")

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Zulu":{"values":["z"]},"Alpha":{"values":["a1","a2"]}}`, string(data))

	var back Headers
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, h.Equal(back))
	assert.Equal(t, []string{"Zulu", "Alpha"}, back.Names())
}

func TestEmptyHeadersJSON(t *testing.T) {
	data, err := json.Marshal(Headers{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestHeadersJSONCoercesScalars(t *testing.T) {
	var h Headers
	require.NoError(t, json.Unmarshal([]byte(`{"correlationId":{"values":[1234, true, "x"]}}`), &h))
	assert.Equal(t, []string{"1234", "true", "x"}, h.Values("correlationid"))
}

func TestHeadersJSONRejectsMalformedEntries(t *testing.T) {
	cases := map[string]string{
		"missing values": `{"X":{}}`,
		"empty values":   `{"X":{"values":[]}}`,
		"object value":   `{"X":{"values":[{"a":1}]}}`,
		"null value":     `{"X":{"values":[null]}}`,
		"not an object":  `["X"]`,
		"entry a string": `{"X":"v"}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			var h Headers
			assert.Error(t, json.Unmarshal([]byte(doc), &h))
		})
	}
}

func TestMessageJSON(t *testing.T) {
	m := NewBuilder().AddHeader("Header-Name", "headerValue").PayloadString("riff").Build()

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"headers":{"Header-Name":{"values":["headerValue"]}},"payload":"cmlmZg=="}`, string(data))

	var back Message
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equal(back))

	data, err = json.Marshal(NewBuilder().Build())
	require.NoError(t, err)
	assert.JSONEq(t, `{"headers":{},"payload":""}`, string(data))
}
