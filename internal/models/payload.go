package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/elliotchance/orderedmap/v3"
)

// ClickedKey is the synthetic field added to every relayed notification.
const ClickedKey = "_pushyNotificationClicked"

var ErrNotObject = errors.New("payload: not a JSON object")

// Payload is a notification as delivered by the push SDK: string keys mapped
// to JSON-compatible values, in delivery order. A Payload is never mutated
// after construction; With returns a modified copy.
type Payload struct {
	m *orderedmap.OrderedMap[string, any]
}

func NewPayload() Payload {
	return Payload{m: orderedmap.NewOrderedMap[string, any]()}
}

// PayloadFromMap builds a Payload from an unordered map. Keys are sorted so
// the result is deterministic.
func PayloadFromMap(src map[string]any) Payload {
	p := NewPayload()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p.m.Set(k, src[k])
	}
	return p
}

// ParsePayload decodes a JSON object, keeping its top-level key order.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := p.UnmarshalJSON(data); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func (p Payload) Len() int {
	if p.m == nil {
		return 0
	}
	return p.m.Len()
}

func (p Payload) Get(key string) (any, bool) {
	if p.m == nil {
		return nil, false
	}
	return p.m.Get(key)
}

func (p Payload) Keys() []string {
	keys := make([]string, 0, p.Len())
	if p.m == nil {
		return keys
	}
	for el := p.m.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// With returns a copy of p with key set to value. An existing key keeps its
// position; a new key is appended.
func (p Payload) With(key string, value any) Payload {
	out := NewPayload()
	if p.m != nil {
		for el := p.m.Front(); el != nil; el = el.Next() {
			out.m.Set(el.Key, el.Value)
		}
	}
	out.m.Set(key, value)
	return out
}

// Tagged returns a copy of p carrying the clicked flag.
func (p Payload) Tagged(clicked bool) Payload {
	return p.With(ClickedKey, clicked)
}

// Clicked reports the value of the clicked flag, false when absent.
func (p Payload) Clicked() bool {
	v, ok := p.Get(ClickedKey)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if p.m != nil {
		first := true
		for el := p.m.Front(); el != nil; el = el.Next() {
			key, err := json.Marshal(el.Key)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(el.Value)
			if err != nil {
				return nil, fmt.Errorf("payload field %q: %w", el.Key, err)
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	out := NewPayload()

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = out
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode payload key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return ErrNotObject
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode payload field %q: %w", key, err)
		}
		out.m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	*p = out
	return nil
}
