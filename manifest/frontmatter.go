package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter is a parsed front-matter mapping with typed accessors.
// YAML allows the same key to carry a scalar in one document and a
// sequence in another; the accessors normalize shape at this boundary
// so callers never branch on it.
type Frontmatter map[string]any

// parseFrontmatter unmarshals a YAML front-matter block.
func parseFrontmatter(yamlContent string) (Frontmatter, error) {
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, fmt.Errorf("parse YAML front-matter: %w", err)
	}
	return fm, nil
}

// Has reports whether key is declared, regardless of value shape.
func (f Frontmatter) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// String returns the value for key rendered as a string. The second
// return is false when the key is absent or the value is a sequence
// or mapping.
func (f Frontmatter) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case bool, int, int64, uint64, float64:
		return fmt.Sprintf("%v", val), true
	default:
		return "", false
	}
}

// StringSlice always returns a sequence for key: nil when absent, a
// wrapped singleton when the declared value is a scalar, and each
// element stringified when it is a sequence.
func (f Frontmatter) StringSlice(key string) []string {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return []string{stringify(val)}
	}
}

// Bool returns the value for key as a bool. The second return is false
// when the key is absent or the value is not a YAML boolean.
func (f Frontmatter) Bool(key string) (bool, bool) {
	v, ok := f[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
