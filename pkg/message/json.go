package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// MarshalJSON writes h as {"Name":{"values":[...]}} keeping entry order.
func (h Headers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range h.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(e.name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(HeaderValue{Values: e.values})
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON is the inverse of MarshalJSON. Entry order follows the
// document. Numbers and booleans are accepted as values and kept in their
// literal form; any other non-string value is an error.
func (h *Headers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*h = Headers{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("message: headers must be a JSON object")
	}

	var out Headers
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var raw struct {
			Values []json.RawMessage `json:"values"`
		}
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("message: header %q: %w", name, err)
		}

		values := make([]string, len(raw.Values))
		for i, r := range raw.Values {
			v, err := decodeValue(r)
			if err != nil {
				return fmt.Errorf("%w: header %q value %d", err, name, i)
			}
			values[i] = v
		}

		if out, err = out.with(name, values); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*h = out
	return nil
}

func decodeValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", ErrInvalidValue
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", ErrInvalidValue
		}
		return strconv.FormatBool(b), nil
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", ErrInvalidValue
		}
		return n.String(), nil
	default:
		return "", ErrInvalidValue
	}
}

type jsonMessage struct {
	Headers Headers `json:"headers"`
	Payload []byte  `json:"payload"`
}

// MarshalJSON writes m as {"headers":{...},"payload":"<base64>"}.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonMessage{Headers: m.headers, Payload: m.payloadOrEmpty()})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var jm jsonMessage
	if err := json.Unmarshal(data, &jm); err != nil {
		return err
	}
	*m = NewBuilder().WithHeaders(jm.Headers).Payload(jm.Payload).Build()
	return nil
}
