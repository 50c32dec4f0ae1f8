// Package schema describes the required shape of structured model output.
//
// A Node tree is the single declarative contract for a payload: prompt
// builders render it into instructions and response schemas, and parsers
// validate decoded JSON against it.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind is the JSON kind of a node.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// Node is one level of the contract.
type Node struct {
	Kind        Kind
	Description string
	// Properties are kept in declaration order; only used by objects.
	Properties []Property
	// Items describes array elements; only used by arrays.
	Items *Node
}

// Property is a named member of an object node.
type Property struct {
	Name     string
	Required bool
	Node     *Node
}

func Object(props ...Property) *Node { return &Node{Kind: KindObject, Properties: props} }
func Array(items *Node) *Node        { return &Node{Kind: KindArray, Items: items} }
func String() *Node                  { return &Node{Kind: KindString} }
func Integer() *Node                 { return &Node{Kind: KindInteger} }
func Number() *Node                  { return &Node{Kind: KindNumber} }
func Boolean() *Node                 { return &Node{Kind: KindBoolean} }

// Required declares a mandatory object member.
func Required(name string, n *Node) Property { return Property{Name: name, Required: true, Node: n} }

// Optional declares an object member that may be absent.
func Optional(name string, n *Node) Property { return Property{Name: name, Node: n} }

// Describe sets the description and returns the node for chaining.
func (n *Node) Describe(desc string) *Node {
	n.Description = strings.TrimSpace(desc)
	return n
}

// RequiredNames lists the mandatory members of an object node in order.
func (n *Node) RequiredNames() []string {
	var out []string
	for _, p := range n.Properties {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// PropertyNames lists all members of an object node in order.
func (n *Node) PropertyNames() []string {
	out := make([]string, 0, len(n.Properties))
	for _, p := range n.Properties {
		out = append(out, p.Name)
	}
	return out
}

// TypeName renders the node kind the way prompt field lists show it.
func (n *Node) TypeName() string {
	if n == nil {
		return "any"
	}
	if n.Kind == KindArray {
		return "[]" + n.Items.TypeName()
	}
	return string(n.Kind)
}

// Field is a flattened view of one contract member, addressed by dotted path.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Fields flattens the tree into dotted paths (arrays of objects use "[]").
func (n *Node) Fields() []Field {
	var out []Field
	n.collect("", &out)
	return out
}

func (n *Node) collect(prefix string, out *[]Field) {
	switch n.Kind {
	case KindObject:
		for _, p := range n.Properties {
			path := joinPath(prefix, p.Name)
			*out = append(*out, Field{
				Name:        path,
				Type:        p.Node.TypeName(),
				Required:    p.Required,
				Description: p.Node.Description,
			})
			p.Node.collect(path, out)
		}
	case KindArray:
		if n.Items != nil && n.Items.Kind == KindObject {
			n.Items.collect(prefix+"[]", out)
		}
	}
}

// ViolationError reports the first place a value departs from the contract.
type ViolationError struct {
	Path   string
	Reason string
}

func (e *ViolationError) Error() string {
	path := e.Path
	if path == "" {
		path = "(root)"
	}
	return path + ": " + e.Reason
}

// Validate checks a decoded JSON value (as produced by encoding/json into
// an `any`, with or without UseNumber) against the node. Required members
// that are absent or null fail; optional ones are skipped.
func (n *Node) Validate(v any) error {
	return n.validate("", v)
}

func (n *Node) validate(path string, v any) error {
	switch n.Kind {
	case KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, n.Kind, v)
		}
		for _, p := range n.Properties {
			child := joinPath(path, p.Name)
			val, present := obj[p.Name]
			if !present || val == nil {
				if p.Required {
					return &ViolationError{Path: child, Reason: "missing required field"}
				}
				continue
			}
			if err := p.Node.validate(child, val); err != nil {
				return err
			}
		}
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return mismatch(path, n.Kind, v)
		}
		if n.Items == nil {
			return nil
		}
		for i, item := range arr {
			if err := n.Items.validate(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	case KindString:
		if _, ok := v.(string); !ok {
			return mismatch(path, n.Kind, v)
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(path, n.Kind, v)
		}
	case KindNumber:
		if _, ok := asFloat(v); !ok {
			return mismatch(path, n.Kind, v)
		}
	case KindInteger:
		if !isInteger(v) {
			return mismatch(path, n.Kind, v)
		}
	default:
		return &ViolationError{Path: path, Reason: fmt.Sprintf("unknown kind %q in contract", n.Kind)}
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func isInteger(v any) bool {
	switch x := v.(type) {
	case json.Number:
		_, err := x.Int64()
		return err == nil
	case float64:
		return x == math.Trunc(x) && !math.IsInf(x, 0)
	case int, int64:
		return true
	}
	return false
}

func mismatch(path string, want Kind, got any) error {
	return &ViolationError{Path: path, Reason: fmt.Sprintf("expected %s, got %s", want, kindOf(got))}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
