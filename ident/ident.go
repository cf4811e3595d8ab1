// Package ident interns identifiers and classifies them.
package ident

import "strings"

// ID is an interned identifier. Zero ID means "no identifier".
type ID int32

const None ID = 0

// Class is identifier class determined by its spelling.
type Class int

const (
	Junk     Class = iota // operators and other method names
	Local                 // foo, foo_bar
	Const                 // Foo
	Instance              // @foo
	Global                // $foo
	ClassVar              // @@foo
	AttrSet               // foo=
)

var classNames = [...]string{"junk", "local", "const", "instance", "global", "classvar", "attrset"}

func (c Class) String() string {
	return classNames[c]
}

// Table interns identifiers. Each identifier text is stored once and keeps its ID for the table life time.
type Table struct {
	names   []string
	classes []Class
	index   map[string]ID
}

func NewTable() *Table {
	return &Table{
		names:   []string{""},
		classes: []Class{Junk},
		index:   make(map[string]ID),
	}
}

// Intern returns ID for the text, registering it on first use.
func (t *Table) Intern(name string) ID {
	if id, found := t.index[name]; found {
		return id
	}

	id := ID(len(t.names))
	t.names = append(t.names, name)
	t.classes = append(t.classes, classify(name))
	t.index[name] = id
	return id
}

// InternBytes is Intern for byte slices.
func (t *Table) InternBytes(name []byte) ID {
	if id, found := t.index[string(name)]; found {
		return id
	}
	return t.Intern(string(name))
}

// Lookup returns ID of already interned text.
func (t *Table) Lookup(name string) (ID, bool) {
	id, found := t.index[name]
	return id, found
}

// Name returns identifier text or empty string for unknown IDs.
func (t *Table) Name(id ID) string {
	if id <= 0 || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

func (t *Table) Class(id ID) Class {
	if id <= 0 || int(id) >= len(t.classes) {
		return Junk
	}
	return t.classes[id]
}

func (t *Table) IsLocal(id ID) bool {
	return t.Class(id) == Local
}

func (t *Table) IsConst(id ID) bool {
	return t.Class(id) == Const
}

// AttrSet returns ID of setter method for the attribute name: foo -> foo=.
func (t *Table) AttrSet(id ID) ID {
	return t.Intern(t.Name(id) + "=")
}

// Len returns the number of interned identifiers.
func (t *Table) Len() int {
	return len(t.names) - 1
}

// Names maps IDs to names, nil-safe.
func (t *Table) Names(ids []ID) []string {
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = t.Name(id)
	}
	return result
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func classify(name string) Class {
	if name == "" {
		return Junk
	}

	switch {
	case strings.HasPrefix(name, "@@"):
		return ClassVar
	case name[0] == '@':
		return Instance
	case name[0] == '$':
		return Global
	}

	if !isIdentStart(name[0]) {
		return Junk
	}

	last := name[len(name)-1]
	body := name
	if last == '=' || last == '!' || last == '?' {
		body = name[:len(name)-1]
	}
	for i := 0; i < len(body); i++ {
		if !isIdentChar(body[i]) {
			return Junk
		}
	}

	switch {
	case last == '=':
		return AttrSet
	case name[0] >= 'A' && name[0] <= 'Z':
		return Const
	case last == '!' || last == '?':
		return Junk
	default:
		return Local
	}
}
