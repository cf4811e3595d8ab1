package ast

import (
	"io"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ava12/rbparse/ident"
)

// YAML converts n to a YAML mapping with "type" and "line" keys followed by node fields.
// Absent optional nodes and empty lists are omitted.
func YAML(n Node, names Names) *yaml.Node {
	v, ok := structValue(n)
	if !ok {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}
	}

	m := &yaml.Node{Kind: yaml.MappingNode}
	addPair(m, "type", scalar(TypeName(n)))
	addPair(m, "line", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n.Position().Line)})
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if skipField(f) {
			continue
		}
		if yv := yamlValue(v.Field(i), names); yv != nil {
			addPair(m, strings.ToLower(f.Name), yv)
		}
	}
	return m
}

// WriteYAML writes YAML representation of n to w.
func WriteYAML(w io.Writer, n Node, names Names) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if e := enc.Encode(YAML(n, names)); e != nil {
		return e
	}
	return enc.Close()
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}

func yamlValue(v reflect.Value, names Names) *yaml.Node {
	t := v.Type()
	switch {
	case t == idType:
		id := ident.ID(v.Int())
		if id == ident.None {
			return nil
		}
		return scalar(idName(names, id))
	case t == literalType:
		if v.IsNil() {
			return nil
		}
		return scalar(FormatLiteral(v.Interface().(Literal), names))
	case t.Implements(nodeType):
		if v.IsNil() {
			return nil
		}
		return YAML(v.Interface().(Node), names)
	case t.Kind() == reflect.Slice:
		if v.Len() == 0 {
			return nil
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for i := 0; i < v.Len(); i++ {
			if item := yamlValue(v.Index(i), names); item != nil {
				seq.Content = append(seq.Content, item)
			} else {
				seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"})
			}
		}
		return seq
	case t.Kind() == reflect.Bool:
		if !v.Bool() {
			return nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
	case t.Kind() == reflect.String:
		return scalar(v.String())
	case t.Kind() == reflect.Uint8:
		return scalar(scalarString(v))
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: scalarString(v)}
	}
}
