package graph

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Field is one named metric value.
type Field struct {
	Key   string
	Value any
}

// String renders the value the way it is shown in a detail panel.
func (f Field) String() string { return FormatValue(f.Value) }

// Metric is a metric record for one task: the task id plus arbitrary named
// fields. Fields keep the order of the input document so detail panels list
// them as written.
type Metric struct {
	Task   string
	Fields []Field
}

// Get returns the value of the named field.
func (m Metric) Get(key string) (any, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the named field or appends it.
func (m *Metric) Set(key string, value any) {
	if key == TaskKey {
		m.Task = FormatValue(value)
		return
	}
	for i := range m.Fields {
		if m.Fields[i].Key == key {
			m.Fields[i].Value = value
			return
		}
	}
	m.Fields = append(m.Fields, Field{Key: key, Value: value})
}

// FormatValue converts a metric value into display text. Strings are shown
// verbatim, numbers in their shortest form and composite values as compact
// JSON.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool, int, int64, uint64:
		return fmt.Sprint(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// MarshalJSON writes the task first followed by the fields in order.
func (m Metric) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	key, _ := json.Marshal(TaskKey)
	val, err := json.Marshal(m.Task)
	if err != nil {
		return nil, err
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(val)
	for _, f := range m.Fields {
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object token by token so field order survives.
// Numbers are kept as [json.Number].
func (m *Metric) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metric must be an object, got %v", tok)
	}

	*m = Metric{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metric key must be a string, got %v", tok)
		}
		val, err := readValue(dec)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		m.Set(key, val)
	}
	return nil
}

func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := map[string]any{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				k, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", kt)
				}
				v, err := readValue(dec)
				if err != nil {
					return nil, err
				}
				obj[k] = v
			}
			_, err := dec.Token()
			return obj, err
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := readValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			_, err := dec.Token()
			return arr, err
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		// the decoder may reuse its buffer
		return json.Number(strings.Clone(string(t))), nil
	default:
		return t, nil
	}
}

// MarshalYAML writes the task first followed by the fields in order.
func (m Metric) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value any) error {
		v := &yaml.Node{}
		if n, ok := value.(json.Number); ok {
			v.Kind, v.Tag, v.Value = yaml.ScalarNode, "!!float", n.String()
			if _, err := n.Int64(); err == nil {
				v.Tag = "!!int"
			}
		} else if err := v.Encode(value); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key}, v)
		return nil
	}
	if err := add(TaskKey, m.Task); err != nil {
		return nil, err
	}
	for _, f := range m.Fields {
		if err := add(f.Key, f.Value); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node pair by pair so field order survives.
func (m *Metric) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: metric must be a mapping", value.Line)
	}
	*m = Metric{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		var v any
		if err := value.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", value.Content[i+1].Line, err)
		}
		m.Set(value.Content[i].Value, v)
	}
	return nil
}
