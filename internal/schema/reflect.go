package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// TagOptions controls how struct fields map to contract members.
type TagOptions struct {
	NameTag         string
	DescTag         string
	PromptTag       string
	RequiredDefault bool
}

// DefaultTagOptions returns the standard tag mapping:
// `json` for names, `prompt_desc` for descriptions, and `prompt` for
// "required", "optional" or "-" overrides.
func DefaultTagOptions() TagOptions {
	return TagOptions{
		NameTag:         "json",
		DescTag:         "prompt_desc",
		PromptTag:       "prompt",
		RequiredDefault: true,
	}
}

// FromStruct derives an object contract from a Go struct using tags, so the
// decode target and the contract cannot drift apart.
func FromStruct(v any, opts ...TagOptions) (*Node, error) {
	if v == nil {
		return nil, fmt.Errorf("schema: struct is nil")
	}
	cfg := DefaultTagOptions()
	if len(opts) > 0 {
		cfg = opts[0]
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: expected struct, got %s", t.Kind())
	}
	return nodeFromType(t, cfg, map[reflect.Type]bool{})
}

// MustFromStruct panics on error; useful for package-level contracts.
func MustFromStruct(v any, opts ...TagOptions) *Node {
	n, err := FromStruct(v, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

func nodeFromType(t reflect.Type, cfg TagOptions, seen map[reflect.Type]bool) (*Node, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return String(), nil
	case reflect.Bool:
		return Boolean(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(), nil
	case reflect.Float32, reflect.Float64:
		return Number(), nil
	case reflect.Slice, reflect.Array:
		items, err := nodeFromType(t.Elem(), cfg, seen)
		if err != nil {
			return nil, err
		}
		return Array(items), nil
	case reflect.Struct:
		if seen[t] {
			return nil, fmt.Errorf("schema: recursive type %s", t)
		}
		seen[t] = true
		defer delete(seen, t)
		return objectFromStruct(t, cfg, seen)
	default:
		return nil, fmt.Errorf("schema: unsupported kind %s", t.Kind())
	}
}

func objectFromStruct(t reflect.Type, cfg TagOptions, seen map[reflect.Type]bool) (*Node, error) {
	props := make([]Property, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || hasTagPart(f, cfg.PromptTag, "-") {
			continue
		}
		name := fieldName(f, cfg.NameTag)
		if name == "" {
			continue
		}
		child, err := nodeFromType(f.Type, cfg, seen)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}
		child.Describe(f.Tag.Get(cfg.DescTag))
		required := cfg.RequiredDefault
		switch {
		case hasTagPart(f, cfg.PromptTag, "required"):
			required = true
		case hasTagPart(f, cfg.PromptTag, "optional"):
			required = false
		}
		props = append(props, Property{Name: name, Required: required, Node: child})
	}
	return Object(props...), nil
}

func hasTagPart(f reflect.StructField, tag, want string) bool {
	raw := strings.TrimSpace(f.Tag.Get(tag))
	if raw == "" {
		return false
	}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == want {
			return true
		}
	}
	return false
}

func fieldName(f reflect.StructField, nameTag string) string {
	tag := strings.TrimSpace(f.Tag.Get(nameTag))
	if tag != "" {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
