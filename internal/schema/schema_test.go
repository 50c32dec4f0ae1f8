package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Title  string   `json:"title" prompt_desc:"Display title."`
	Score  int      `json:"score"`
	Ratio  float64  `json:"ratio"`
	Tags   []string `json:"tags"`
	Nested struct {
		Note string `json:"note"`
	} `json:"nested"`
	Hint     string `json:"hint" prompt:"optional"`
	Internal string `json:"-"`
	Skipped  string `json:"skipped" prompt:"-"`
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestFromStruct_Shape(t *testing.T) {
	n, err := FromStruct(sample{})
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	got := strings.Join(n.PropertyNames(), ",")
	if got != "title,score,ratio,tags,nested,hint" {
		t.Fatalf("property order: got=%s", got)
	}
	if req := strings.Join(n.RequiredNames(), ","); req != "title,score,ratio,tags,nested" {
		t.Fatalf("required: got=%s", req)
	}
	if n.Properties[0].Node.Description != "Display title." {
		t.Fatalf("description not carried: %+v", n.Properties[0].Node)
	}
	kinds := map[string]Kind{}
	for _, p := range n.Properties {
		kinds[p.Name] = p.Node.Kind
	}
	if kinds["score"] != KindInteger || kinds["ratio"] != KindNumber || kinds["tags"] != KindArray || kinds["nested"] != KindObject {
		t.Fatalf("unexpected kinds: %+v", kinds)
	}
}

func TestFromStruct_RejectsNonStruct(t *testing.T) {
	if _, err := FromStruct(42); err == nil {
		t.Fatal("expected error for non-struct")
	}
	if _, err := FromStruct(nil); err == nil {
		t.Fatal("expected error for nil")
	}
}

func TestFields_FlattensNestedPaths(t *testing.T) {
	n := MustFromStruct(sample{})
	var names []string
	for _, f := range n.Fields() {
		names = append(names, f.Name+":"+f.Type)
	}
	got := strings.Join(names, " ")
	for _, want := range []string{"tags:[]string", "nested:object", "nested.note:string", "score:integer"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s in %s", want, got)
		}
	}
}

func TestValidate_Accepts(t *testing.T) {
	n := MustFromStruct(sample{})
	v := decode(t, `{"title":"x","score":3,"ratio":0.5,"tags":["a"],"nested":{"note":"n"}}`)
	if err := n.Validate(v); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	n := MustFromStruct(sample{})
	cases := []struct {
		name string
		raw  string
		path string
	}{
		{"missing", `{"score":3,"ratio":1,"tags":[],"nested":{"note":""}}`, "title"},
		{"null required", `{"title":null,"score":3,"ratio":1,"tags":[],"nested":{"note":""}}`, "title"},
		{"wrong kind", `{"title":"x","score":"3","ratio":1,"tags":[],"nested":{"note":""}}`, "score"},
		{"fractional integer", `{"title":"x","score":3.5,"ratio":1,"tags":[],"nested":{"note":""}}`, "score"},
		{"array item", `{"title":"x","score":3,"ratio":1,"tags":["a",2],"nested":{"note":""}}`, "tags[1]"},
		{"nested missing", `{"title":"x","score":3,"ratio":1,"tags":[],"nested":{}}`, "nested.note"},
		{"root", `[1,2]`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := n.Validate(decode(t, tc.raw))
			var ve *ViolationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ViolationError, got %v", err)
			}
			if ve.Path != tc.path {
				t.Fatalf("path: got=%q want=%q (%v)", ve.Path, tc.path, err)
			}
		})
	}
}

func TestValidate_OptionalMayBeAbsent(t *testing.T) {
	n := Object(Required("a", String()), Optional("b", Integer()))
	if err := n.Validate(map[string]any{"a": "x"}); err != nil {
		t.Fatalf("optional absent: %v", err)
	}
	if err := n.Validate(map[string]any{"a": "x", "b": "y"}); err == nil {
		t.Fatal("optional present with wrong kind should fail")
	}
}

func TestValidate_PlainFloatDecoding(t *testing.T) {
	n := Object(Required("n", Integer()))
	if err := n.Validate(map[string]any{"n": float64(7)}); err != nil {
		t.Fatalf("whole float64 should pass as integer: %v", err)
	}
}

func TestViolationError_RootMessage(t *testing.T) {
	err := &ViolationError{Reason: "expected object, got array"}
	if err.Error() != "(root): expected object, got array" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
