package ast

import (
	"strconv"
	"strings"

	"github.com/ava12/rbparse"
)

// BadSelectorError is the code of errors returned by ParseSelector.
const BadSelectorError = rbparse.QueryErrors

type NodeFilter func(n Node) bool
type NodeSelector func(n Node) []Node

// Selector applies a chain of node selectors to a set of nodes.
type Selector struct {
	selectors []NodeSelector
}

func NewSelector() *Selector {
	return &Selector{}
}

// ParseSelector builds a selector from a query like "defn > args" or "iter call:0".
//
// A query is a sequence of steps. Each step is a comma-separated list of node type names
// or "*" for any node, prefixed with "!" to match any other type.
// A step preceded by whitespace searches all descendants of the nodes selected so far
// (the nodes themselves included), a step preceded by ">" selects their direct children.
// A ":N" suffix replaces each matching node with its N-th child, negative N counts from the end.
func ParseSelector(query string) (*Selector, error) {
	fields := strings.Fields(strings.ReplaceAll(query, ">", " > "))
	if len(fields) == 0 {
		return nil, selectorError(query, "empty query")
	}

	s := NewSelector()
	child := false
	for i, f := range fields {
		if f == ">" {
			if child || i == 0 || i == len(fields)-1 {
				return nil, selectorError(query, "misplaced '>'")
			}
			child = true
			continue
		}

		nf, nth, err := parseStep(query, f)
		if err != nil {
			return nil, err
		}
		if child {
			s.Use(Children).Filter(nf)
		} else {
			s.Search(nf, true)
		}
		if nth != nil {
			s.Use(NthChildren(*nth))
		}
		child = false
	}
	return s, nil
}

func parseStep(query, step string) (NodeFilter, *int, error) {
	var nth *int
	if i := strings.IndexByte(step, ':'); i >= 0 {
		n, err := strconv.Atoi(step[i+1:])
		if err != nil {
			return nil, nil, selectorError(query, "bad child index in "+step)
		}
		nth = &n
		step = step[:i]
	}

	negate := strings.HasPrefix(step, "!")
	if negate {
		step = step[1:]
	}
	if step == "" {
		return nil, nil, selectorError(query, "missing node type")
	}

	var nf NodeFilter
	if step == "*" {
		nf = func(Node) bool { return true }
	} else {
		var fs []NodeFilter
		for _, name := range strings.Split(step, ",") {
			if name == "" {
				return nil, nil, selectorError(query, "empty node type")
			}
			fs = append(fs, IsA(name))
		}
		nf = IsAny(fs...)
	}
	if negate {
		nf = IsNot(nf)
	}
	return nf, nth, nil
}

func selectorError(query, msg string) *rbparse.Error {
	return rbparse.FormatError(BadSelectorError, "bad selector %q: %s", query, msg)
}

// Apply returns deduplicated results of applying selector chain to input nodes.
func (s *Selector) Apply(input ...Node) []Node {
	res := make([]Node, 0)
	index := make(map[Node]bool)

	for _, n := range input {
		if n == nil {
			continue
		}

		ns := []Node{n}
		for _, sel := range s.selectors {
			var next []Node
			for _, nn := range ns {
				next = append(next, sel(nn)...)
			}
			ns = next
		}

		for _, tn := range ns {
			if !index[tn] {
				index[tn] = true
				res = append(res, tn)
			}
		}
	}

	return res
}

func (s *Selector) Use(ns NodeSelector) *Selector {
	if ns != nil {
		s.selectors = append(s.selectors, ns)
	}
	return s
}

func (s *Selector) Filter(nf NodeFilter) *Selector {
	return s.Use(func(n Node) []Node {
		if nf(n) {
			return []Node{n}
		}
		return nil
	})
}

// Search selects n and its descendants matching nf, deepSearch enables search inside matching nodes.
func (s *Selector) Search(nf NodeFilter, deepSearch bool) *Selector {
	return s.Use(func(n Node) []Node {
		var res []Node
		visitNode(n, func(nn Node) (vc, vs bool) {
			if nf(nn) {
				res = append(res, nn)
				return deepSearch, true
			}
			return true, true
		}, false)
		return res
	})
}

func IsNot(f NodeFilter) NodeFilter {
	return func(n Node) bool {
		return !f(n)
	}
}

func IsAny(fs ...NodeFilter) NodeFilter {
	return func(n Node) bool {
		for _, f := range fs {
			if f(n) {
				return true
			}
		}
		return false
	}
}

// IsA matches nodes by type names as returned by TypeName.
func IsA(names ...string) NodeFilter {
	return func(n Node) bool {
		tn := TypeName(n)
		for _, name := range names {
			if tn == name {
				return true
			}
		}
		return false
	}
}

func NthChildren(indexes ...int) NodeSelector {
	return func(n Node) []Node {
		cs := Children(n)
		var res []Node
		for _, i := range indexes {
			if i < 0 {
				i += len(cs)
			}
			if i >= 0 && i < len(cs) {
				res = append(res, cs[i])
			}
		}
		return res
	}
}
