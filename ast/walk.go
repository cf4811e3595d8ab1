package ast

import (
	"reflect"
	"strings"
	"sync"
)

var nodeType = reflect.TypeOf((*Node)(nil)).Elem()

type nodeField struct {
	index int
	name  string
}

var fieldCache sync.Map

// skipField tells whether a struct field is not a node attribute: embedded Base or fields tagged `ast:"-"`.
func skipField(f reflect.StructField) bool {
	return f.Anonymous || f.Tag.Get("ast") == "-"
}

// childFields returns fields of node struct type holding child nodes or node slices.
func childFields(t reflect.Type) []nodeField {
	if fs, found := fieldCache.Load(t); found {
		return fs.([]nodeField)
	}

	var fs []nodeField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if skipField(f) {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Slice {
			ft = ft.Elem()
		}
		if ft.Implements(nodeType) {
			fs = append(fs, nodeField{i, f.Name})
		}
	}
	fieldCache.Store(t, fs)
	return fs
}

func structValue(n Node) (reflect.Value, bool) {
	if n == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(n)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, false
	}
	return v.Elem(), true
}

func appendNode(ns []Node, v reflect.Value) []Node {
	if v.IsNil() {
		return ns
	}
	return append(ns, v.Interface().(Node))
}

// Children returns non-nil child nodes in field order.
func Children(n Node) []Node {
	v, ok := structValue(n)
	if !ok {
		return nil
	}

	var res []Node
	for _, f := range childFields(v.Type()) {
		fv := v.Field(f.index)
		if fv.Kind() == reflect.Slice {
			for i := 0; i < fv.Len(); i++ {
				res = appendNode(res, fv.Index(i))
			}
		} else {
			res = appendNode(res, fv)
		}
	}
	return res
}

// TypeName returns lowercased node type name, e.g. "call" or "dasgncurr".
func TypeName(n Node) string {
	v, ok := structValue(n)
	if !ok {
		return ""
	}
	return strings.ToLower(v.Type().Name())
}

type NodeVisitor func(n Node) (walkChildren, walkSiblings bool)

type WalkMode int

const (
	WalkLtr WalkMode = 0
	WalkRtl WalkMode = 1
)

// Walk visits n and its descendants depth-first.
func Walk(n Node, mode WalkMode, visitor NodeVisitor) {
	if n != nil {
		visitNode(n, visitor, (mode&WalkRtl) != 0)
	}
}

func visitNode(n Node, v NodeVisitor, rtl bool) (visitSiblings bool) {
	vc, vs := v(n)
	if !vc {
		return vs
	}

	cs := Children(n)
	if rtl {
		for i := len(cs) - 1; i >= 0 && vc; i-- {
			vc = visitNode(cs[i], v, true)
		}
	} else {
		for i := 0; i < len(cs) && vc; i++ {
			vc = visitNode(cs[i], v, false)
		}
	}

	return vs
}

// Unpositioned returns n and its descendants having zero line number.
func Unpositioned(n Node) []Node {
	return NewSelector().Search(func(nn Node) bool {
		return nn.Position().Line == 0
	}, true).Apply(n)
}
