package ast

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ava12/rbparse/ident"
)

var (
	idType      = reflect.TypeOf(ident.ID(0))
	literalType = reflect.TypeOf((*Literal)(nil)).Elem()
)

// Dump returns s-expression representation of n, e.g. (call (lvar a) + (array (lit 1))).
// Absent optional nodes are dumped as "-", positions are omitted.
func Dump(n Node, names Names) string {
	sb := &strings.Builder{}
	d := dumper{sb, names}
	d.node(n)
	return sb.String()
}

type dumper struct {
	sb    *strings.Builder
	names Names
}

func (d dumper) node(n Node) {
	v, ok := structValue(n)
	if !ok {
		d.sb.WriteByte('-')
		return
	}

	d.sb.WriteByte('(')
	d.sb.WriteString(TypeName(n))
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if skipField(t.Field(i)) {
			continue
		}
		d.sb.WriteByte(' ')
		d.value(v.Field(i))
	}
	d.sb.WriteByte(')')
}

func (d dumper) value(v reflect.Value) {
	t := v.Type()
	switch {
	case t == idType:
		d.sb.WriteString(idName(d.names, ident.ID(v.Int())))
	case t == literalType:
		if v.IsNil() {
			d.sb.WriteByte('-')
		} else {
			d.sb.WriteString(FormatLiteral(v.Interface().(Literal), d.names))
		}
	case t.Implements(nodeType):
		if v.IsNil() {
			d.sb.WriteByte('-')
		} else {
			d.node(v.Interface().(Node))
		}
	case t.Kind() == reflect.Slice:
		d.sb.WriteByte('(')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				d.sb.WriteByte(' ')
			}
			d.value(v.Index(i))
		}
		d.sb.WriteByte(')')
	default:
		d.sb.WriteString(scalarString(v))
	}
}

func scalarString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return strconv.Quote(v.String())
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Uint8:
		return "$" + string(rune(v.Uint()))
	case reflect.Int, reflect.Int64, reflect.Int32:
		return strconv.FormatInt(v.Int(), 10)
	default:
		return v.String()
	}
}

func idName(names Names, id ident.ID) string {
	if id == ident.None {
		return "-"
	}
	if names == nil {
		return "#" + strconv.Itoa(int(id))
	}
	return names.Name(id)
}

// FormatLiteral returns Ruby notation of literal value.
func FormatLiteral(l Literal, names Names) string {
	switch l := l.(type) {
	case Fixnum:
		return strconv.FormatInt(int64(l), 10)
	case Bignum:
		return l.Value.String()
	case Float:
		s := strconv.FormatFloat(float64(l), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	case Symbol:
		return ":" + idName(names, ident.ID(l))
	case Regexp:
		return "/" + l.Source + "/" + RegexpFlags(l.Options)
	default:
		return "?"
	}
}

// RegexpFlags returns option letters of regexp options.
func RegexpFlags(opts int) string {
	res := ""
	if opts&RegexpIgnoreCase != 0 {
		res += "i"
	}
	if opts&RegexpExtended != 0 {
		res += "x"
	}
	if opts&RegexpMultiline != 0 {
		res += "m"
	}
	if opts&RegexpOnce != 0 {
		res += "o"
	}
	switch opts & KCodeMask {
	case KCodeNone:
		res += "n"
	case KCodeEUC:
		res += "e"
	case KCodeSJIS:
		res += "s"
	case KCodeUTF8:
		res += "u"
	}
	return res
}
