package metadata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artwall/harvest/pkg/core"
)

// StructuredParser reads the region as a YAML mapping.
// It fails on any YAML syntax error or when the document is not a mapping.
type StructuredParser struct{}

func (StructuredParser) Name() string { return "structured" }

// Parse implements Strategy.
func (StructuredParser) Parse(text string) (core.Metadata, error) {
	meta := make(core.Metadata)

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return meta, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: got %s", core.ErrInvalidMetadata, kindName(root.Kind))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar key at line %d", core.ErrInvalidMetadata, keyNode.Line)
		}
		var v any
		if err := valNode.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", keyNode.Value, err)
		}
		meta[strings.ToLower(strings.TrimSpace(keyNode.Value))] = normalizeValue(v)
	}
	return meta, nil
}

// normalizeValue reduces YAML values to the metadata value space: string, int or nil.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case int:
		return t
	case int64:
		return int(t)
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
		return strconv.FormatUint(t, 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return int(t)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			parts = append(parts, fmt.Sprint(normalizeValue(item)))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}
