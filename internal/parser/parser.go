// Package parser extracts YAML front-matter from Markdown content, keeping
// the key order of the block.
package parser

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/relyaml/internal/models"
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	// Metadata is nil when the file has no (valid) front-matter block.
	Metadata models.Metadata
	Body     string
}

// Parse splits front-matter from the body and decodes it into ordered metadata.
// Invalid YAML is not an error: the whole file is treated as body.
func Parse(data []byte) (*Result, error) {
	block, body, ok := splitFrontmatter(data)
	if !ok {
		return &Result{Body: string(data)}, nil
	}

	md, err := decodeMetadata(block)
	if err != nil {
		return &Result{Body: string(data)}, nil
	}

	return &Result{Metadata: md, Body: body}, nil
}

// splitFrontmatter separates the YAML block (between leading --- delimiters)
// from the Markdown body.
func splitFrontmatter(data []byte) ([]byte, string, bool) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\ufeff\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, "", false
	}

	rest := trimmed[len(delim):]
	// The opening delimiter must be alone on its line.
	if len(rest) > 0 && rest[0] != '\n' && rest[0] != '\r' {
		return nil, "", false
	}
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", false
	}

	block := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")
	return block, body, true
}

// decodeMetadata walks the YAML document node so the mapping order survives.
func decodeMetadata(block []byte) (models.Metadata, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, err
	}

	md := models.Metadata{}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return md, nil
	}
	mapping := resolveAlias(doc.Content[0])
	if mapping.Kind != yaml.MappingNode {
		return md, nil
	}

	seen := make(map[string]int, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := resolveAlias(mapping.Content[i])
		if keyNode.Kind != yaml.ScalarNode {
			continue
		}
		key := keyNode.Value
		val := flattenValue(mapping.Content[i+1])

		// Later duplicates win but keep the first position.
		if at, dup := seen[key]; dup {
			md[at].Value = val
			continue
		}
		seen[key] = len(md)
		md = append(md, models.Field{Key: key, Value: val})
	}
	return md, nil
}

func flattenValue(node *yaml.Node) models.Value {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		s, ok := scalarString(node)
		if !ok {
			return models.Null()
		}
		return models.Scalar(s)
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			child = resolveAlias(child)
			if child.Kind != yaml.ScalarNode {
				continue
			}
			if s, ok := scalarString(child); ok {
				items = append(items, s)
			}
		}
		return models.Value{Kind: models.KindSequence, Items: items}
	default:
		return models.Null()
	}
}

// scalarString renders a scalar the way it reads as text; numbers are
// reformatted to their shortest decimal form. Null reports false.
func scalarString(node *yaml.Node) (string, bool) {
	switch node.ShortTag() {
	case "!!null":
		return "", false
	case "!!int":
		var n int64
		if err := node.Decode(&n); err == nil {
			return strconv.FormatInt(n, 10), true
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return formatFloat(f), true
		}
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return strconv.FormatBool(b), true
		}
	}
	return node.Value, true
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case math.Abs(f) >= 1e-6 && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Exponents without zero padding: 1e-7, not 1e-07.
	s := strconv.FormatFloat(f, 'g', -1, 64)
	s = strings.Replace(s, "e-0", "e-", 1)
	return strings.Replace(s, "e+0", "e+", 1)
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
