package standard

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document renders the rule document as a generic map keyed by its YAML
// names, suitable for JSON encoding.
func (s *Spec) Document() (map[string]any, error) {
	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encode standard v%s: %w", s.Version, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("encode standard v%s: %w", s.Version, err)
	}
	return doc, nil
}
