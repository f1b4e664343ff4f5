package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SpecKind is the value type of a spec field. A field keeps its kind for life.
type SpecKind int

const (
	SpecNumeric SpecKind = iota
	SpecText
)

func (k SpecKind) String() string {
	switch k {
	case SpecNumeric:
		return "numeric"
	case SpecText:
		return "text"
	default:
		return "unknown"
	}
}

// SpecValue is either a number or a string
type SpecValue struct {
	kind SpecKind
	num  float64
	text string
}

// Number builds a numeric spec value
func Number(v float64) SpecValue {
	return SpecValue{kind: SpecNumeric, num: v}
}

// Text builds a textual spec value
func Text(v string) SpecValue {
	return SpecValue{kind: SpecText, text: v}
}

// Kind returns the value type
func (v SpecValue) Kind() SpecKind { return v.kind }

// Float returns the numeric payload; zero for text values
func (v SpecValue) Float() float64 { return v.num }

// String returns the textual payload, or the formatted number
func (v SpecValue) String() string {
	if v.kind == SpecNumeric {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings
func (v SpecValue) MarshalJSON() ([]byte, error) {
	if v.kind == SpecNumeric {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts only JSON numbers and strings
func (v *SpecValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	var f float64
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("spec value must be a number or a string, got null")
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("spec value must be a number or a string, got %s", data)
	}
	*v = Number(f)
	return nil
}

// MarshalYAML keeps the number/text distinction in YAML fixtures
func (v SpecValue) MarshalYAML() (any, error) {
	if v.kind == SpecNumeric {
		return v.num, nil
	}
	return v.text, nil
}

// UnmarshalYAML maps !!int and !!float scalars to numbers, everything else to text
func (v *SpecValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: spec value must be a scalar", node.Line)
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = Number(f)
	default:
		*v = Text(node.Value)
	}
	return nil
}

// SpecField is one named entry used to build Specs
type SpecField struct {
	Key   string
	Value SpecValue
}

// Field is shorthand for building a SpecField
func Field(key string, value SpecValue) SpecField {
	return SpecField{Key: key, Value: value}
}

// Specs is an ordered, closed set of spec fields. The key set is fixed at
// construction; Replace returns a new Specs and never touches the receiver.
type Specs struct {
	keys   []string
	values map[string]SpecValue
}

// NewSpecs builds Specs in the given order. A repeated key keeps its first
// position and takes the last value.
func NewSpecs(fields ...SpecField) Specs {
	s := Specs{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]SpecValue, len(fields)),
	}
	for _, f := range fields {
		if _, ok := s.values[f.Key]; !ok {
			s.keys = append(s.keys, f.Key)
		}
		s.values[f.Key] = f.Value
	}
	return s
}

// Keys returns the field names in order
func (s Specs) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Len returns the number of fields
func (s Specs) Len() int { return len(s.keys) }

// Get returns the value for key
func (s Specs) Get(key string) (SpecValue, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is part of the schema
func (s Specs) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Clone returns an independent copy
func (s Specs) Clone() Specs {
	c := Specs{
		keys:   append([]string(nil), s.keys...),
		values: make(map[string]SpecValue, len(s.values)),
	}
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// Replace returns a copy of s with key set to value. The key must exist and
// value must have the same kind as the current value.
func (s Specs) Replace(key string, value SpecValue) (Specs, error) {
	cur, ok := s.values[key]
	if !ok {
		return s, &FieldError{Field: key, Err: ErrUnknownField}
	}
	if cur.Kind() != value.Kind() {
		return s, &FieldError{
			Field:  key,
			Err:    ErrTypeMismatch,
			Detail: fmt.Sprintf("expected %s, got %s", cur.Kind(), value.Kind()),
		}
	}
	c := s.Clone()
	c.values[key] = value
	return c, nil
}

// Equal reports whether both Specs hold the same keys, order and values
func (s Specs) Equal(o Specs) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for i, k := range s.keys {
		if o.keys[i] != k || s.values[k] != o.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON writes an object in field order
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := s.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping the document's key order
func (s *Specs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = NewSpecs()
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("specs must be a JSON object")
	}

	var fields []SpecField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("specs key must be a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v SpecValue
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("specs.%s: %w", key, err)
		}
		fields = append(fields, Field(key, v))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = NewSpecs(fields...)
	return nil
}

// MarshalYAML writes a mapping node in field order
func (s Specs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range s.keys {
		var valNode yaml.Node
		raw, _ := s.values[k].MarshalYAML()
		if err := valNode.Encode(raw); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&valNode,
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node keeping the document's key order
func (s *Specs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: specs must be a mapping", node.Line)
	}
	fields := make([]SpecField, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v SpecValue
		if err := v.UnmarshalYAML(node.Content[i+1]); err != nil {
			return fmt.Errorf("specs.%s: %w", node.Content[i].Value, err)
		}
		fields = append(fields, Field(node.Content[i].Value, v))
	}
	*s = NewSpecs(fields...)
	return nil
}
