package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/noteease/pkg/core"
)

// Codec defines how the whole note collection is encoded into one blob.
type Codec interface {
	// Name identifies the codec in configuration (e.g. "json").
	Name() string
	// Marshal encodes the collection.
	Marshal(notes []core.Note) ([]byte, error)
	// Unmarshal decodes a blob produced by Marshal.
	Unmarshal(data []byte) ([]core.Note, error)
}

// DefaultCodecs returns the standard set of codecs keyed by name.
func DefaultCodecs() map[string]Codec {
	return map[string]Codec{
		"json": JSONCodec{},
		"yaml": YAMLCodec{},
		"yml":  YAMLCodec{},
	}
}

// CodecByName resolves a codec name, case-insensitively.
func CodecByName(name string) (Codec, error) {
	if name == "" {
		return JSONCodec{}, nil
	}
	c, ok := DefaultCodecs()[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	return c, nil
}

// --- JSON Codec ---

// JSONCodec stores the collection as a JSON array of
// {"id","title","content","date"} objects.
type JSONCodec struct{}

// Name returns "json".
func (JSONCodec) Name() string { return "json" }

// Marshal encodes notes as a compact array. A nil slice encodes as [].
func (JSONCodec) Marshal(notes []core.Note) ([]byte, error) {
	if notes == nil {
		notes = []core.Note{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Markup is stored verbatim, not as < escapes.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(notes); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Unmarshal decodes a single JSON array. Trailing data is an error.
func (JSONCodec) Unmarshal(data []byte) ([]core.Note, error) {
	var notes []core.Note
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&notes); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid json: trailing data")
	}
	return notes, nil
}

// --- YAML Codec ---

// YAMLCodec stores the collection as a YAML sequence. Every field is written
// as a double-quoted scalar, so markup with line breaks, leading spaces or
// YAML indicators reads back byte for byte.
type YAMLCodec struct{}

// Name returns "yaml".
func (YAMLCodec) Name() string { return "yaml" }

// Marshal encodes notes as a block sequence of mappings.
func (YAMLCodec) Marshal(notes []core.Note) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, n := range notes {
		doc.Content = append(doc.Content, noteNode(n))
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a sequence of notes in any scalar style.
func (YAMLCodec) Unmarshal(data []byte) ([]core.Note, error) {
	var notes []core.Note
	if err := yaml.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return notes, nil
}

func noteNode(n core.Note) *yaml.Node {
	fields := [...][2]string{
		{"id", n.ID},
		{"title", n.Title},
		{"content", n.Content},
		{"date", n.Date},
	}
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f[0]},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f[1], Style: yaml.DoubleQuotedStyle},
		)
	}
	return node
}
