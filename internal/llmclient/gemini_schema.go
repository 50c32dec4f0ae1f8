package llmclient

import (
	genai "google.golang.org/genai"

	"ideaeval/internal/schema"
)

func toGenaiSchema(n *schema.Node) *genai.Schema {
	if n == nil {
		return nil
	}
	out := &genai.Schema{Description: n.Description}
	switch n.Kind {
	case schema.KindObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(n.Properties))
		for _, p := range n.Properties {
			out.Properties[p.Name] = toGenaiSchema(p.Node)
		}
		out.Required = n.RequiredNames()
		out.PropertyOrdering = n.PropertyNames()
	case schema.KindArray:
		out.Type = genai.TypeArray
		out.Items = toGenaiSchema(n.Items)
	case schema.KindString:
		out.Type = genai.TypeString
	case schema.KindInteger:
		out.Type = genai.TypeInteger
	case schema.KindNumber:
		out.Type = genai.TypeNumber
	case schema.KindBoolean:
		out.Type = genai.TypeBoolean
	}
	return out
}
