package dto

import (
	"fmt"
	"strings"

	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclFile is the top-level structure of an HCL graph document:
//
//	id   = "bassline"
//	meta = { tempo = 120 }
//
//	node "osc" {
//	  card = "sine"
//	  x    = 0
//	  y    = 0
//	  data = { params = { freq = 440 } }
//	}
//
//	edge {
//	  from = "osc.out"
//	  to   = "speaker.in"
//	}
type hclFile struct {
	ID    *string        `hcl:"id,optional"`
	Meta  hcl.Expression `hcl:"meta,optional"`
	Nodes []*hclNode     `hcl:"node,block"`
	Edges []*hclEdge     `hcl:"edge,block"`
}

type hclNode struct {
	ID   string         `hcl:"id,label"`
	Card *string        `hcl:"card,optional"`
	X    *float64       `hcl:"x,optional"`
	Y    *float64       `hcl:"y,optional"`
	Data hcl.Expression `hcl:"data,optional"`
}

type hclEdge struct {
	ID   *string        `hcl:"id,optional"`
	From string         `hcl:"from"`
	To   string         `hcl:"to"`
	Data hcl.Expression `hcl:"data,optional"`
}

// Default port names for endpoints written without a port.
const (
	DefaultSourcePort = "out"
	DefaultTargetPort = "in"
)

// DecodeHCL parses an HCL graph document.
func DecodeHCL(data []byte, filename string) (graph.Document, error) {
	if filename == "" {
		filename = "graph.hcl"
	}
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return graph.Document{}, fmt.Errorf("failed to parse HCL document: %w", diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return graph.Document{}, fmt.Errorf("failed to decode HCL document: %w", diags)
	}

	doc := graph.Document{
		Nodes: make([]graph.NodeDocument, 0, len(parsed.Nodes)),
		Edges: make([]graph.EdgeDocument, 0, len(parsed.Edges)),
	}
	if parsed.ID != nil {
		doc.ID = *parsed.ID
	}

	var err error
	if doc.Meta, err = exprMap(parsed.Meta); err != nil {
		return graph.Document{}, fmt.Errorf("meta: %w", err)
	}

	for _, n := range parsed.Nodes {
		nd := graph.NodeDocument{ID: n.ID, CardID: n.ID}
		if n.Card != nil {
			nd.CardID = *n.Card
		}
		if n.X != nil {
			nd.Position.X = *n.X
		}
		if n.Y != nil {
			nd.Position.Y = *n.Y
		}
		if nd.Data, err = exprMap(n.Data); err != nil {
			return graph.Document{}, fmt.Errorf("node %q data: %w", n.ID, err)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for i, e := range parsed.Edges {
		ed := graph.EdgeDocument{}
		if e.ID != nil {
			ed.ID = *e.ID
		}
		ed.Source, ed.SourcePort = splitEndpoint(e.From, DefaultSourcePort)
		ed.Target, ed.TargetPort = splitEndpoint(e.To, DefaultTargetPort)
		if ed.Data, err = exprMap(e.Data); err != nil {
			return graph.Document{}, fmt.Errorf("edge %d data: %w", i, err)
		}
		doc.Edges = append(doc.Edges, ed)
	}
	return doc, nil
}

// splitEndpoint splits "node.port" at the last dot.
func splitEndpoint(s, defaultPort string) (node, port string) {
	if i := strings.LastIndex(s, "."); i > 0 && i < len(s)-1 {
		return s[:i], s[i+1:]
	}
	return s, defaultPort
}

func joinEndpoint(node, port string) string {
	if port == "" {
		return node
	}
	return node + "." + port
}

func exprMap(expr hcl.Expression) (map[string]any, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	native, err := ctyToNative(val)
	if err != nil {
		return nil, err
	}
	if native == nil {
		return nil, nil
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", val.Type().FriendlyName())
	}
	return m, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go counterpart.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, val := it.Element()
			native, err := ctyToNative(val)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type: %s", ty.FriendlyName())
}

// nativeToCty converts data bag values back to cty for writing.
func nativeToCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case float32:
		return cty.NumberFloatVal(float64(t)), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, len(t))
		for i, item := range t {
			cv, err := nativeToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = cv
		}
		return cty.TupleVal(vals), nil
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, item := range t {
			cv, err := nativeToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute '%s': %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer type of %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, ty)
}

// EncodeHCL renders doc as an HCL graph document.
func EncodeHCL(doc graph.Document) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if doc.ID != "" {
		body.SetAttributeValue("id", cty.StringVal(doc.ID))
	}
	if len(doc.Meta) > 0 {
		meta, err := nativeToCty(doc.Meta)
		if err != nil {
			return nil, fmt.Errorf("meta: %w", err)
		}
		body.SetAttributeValue("meta", meta)
	}

	for _, n := range doc.Nodes {
		body.AppendNewline()
		nb := body.AppendNewBlock("node", []string{n.ID}).Body()
		if n.CardID != n.ID {
			nb.SetAttributeValue("card", cty.StringVal(n.CardID))
		}
		if n.Position != (graph.Position{}) {
			nb.SetAttributeValue("x", cty.NumberFloatVal(n.Position.X))
			nb.SetAttributeValue("y", cty.NumberFloatVal(n.Position.Y))
		}
		if err := setData(nb, n.Data); err != nil {
			return nil, fmt.Errorf("node %q data: %w", n.ID, err)
		}
	}

	for _, e := range doc.Edges {
		body.AppendNewline()
		eb := body.AppendNewBlock("edge", nil).Body()
		if e.ID != "" {
			eb.SetAttributeValue("id", cty.StringVal(e.ID))
		}
		eb.SetAttributeValue("from", cty.StringVal(joinEndpoint(e.Source, e.SourcePort)))
		eb.SetAttributeValue("to", cty.StringVal(joinEndpoint(e.Target, e.TargetPort)))
		if err := setData(eb, e.Data); err != nil {
			return nil, fmt.Errorf("edge %q data: %w", e.ID, err)
		}
	}
	return f.Bytes(), nil
}

func setData(body *hclwrite.Body, data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	val, err := nativeToCty(data)
	if err != nil {
		return err
	}
	body.SetAttributeValue("data", val)
	return nil
}
