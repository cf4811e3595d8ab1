package ast

import (
	"strconv"
	"strings"

	"github.com/ava12/rbparse/ident"
)

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"<=>": true, "===": true, "=~": true, "!~": true,
	"<<": true, ">>": true, "&": true, "|": true, "^": true,
}

var unaryOps = map[string]string{
	"-@": "-", "+@": "+", "!": "!", "~": "~",
}

// Print renders n back to Ruby source. Rendering is canonical: layout,
// redundant parentheses and literal quoting of the original text are not preserved.
// Here documents stay here documents, <<~ bodies are printed with the indentation already removed.
func Print(n Node, names Names) string {
	sb := &strings.Builder{}
	p := &printer{out: out{b: sb}, names: names}
	p.stmt(n)
	if len(p.heredocs) > 0 {
		p.nl()
	}
	return strings.TrimRight(sb.String(), "\n")
}

type out struct {
	b        *strings.Builder
	depth    int
	heredocs []string
}

func (o *out) write(s string) { o.b.WriteString(s) }

// nl ends the line, here document bodies started on it follow.
func (o *out) nl() {
	o.b.WriteByte('\n')
	for _, h := range o.heredocs {
		o.b.WriteString(h)
	}
	o.heredocs = o.heredocs[:0]
}
func (o *out) pad() {
	for i := 0; i < o.depth; i++ {
		o.b.WriteString("  ")
	}
}
func (o *out) withIndent(fn func()) { o.depth++; fn(); o.depth-- }

type printer struct {
	out
	names Names
}

func (p *printer) name(id ident.ID) string {
	return idName(p.names, id)
}

// body prints statements each on its own padded line.
func (p *printer) body(n Node) {
	p.withIndent(func() {
		if n == nil {
			return
		}
		if b, is := n.(*Block); is {
			for _, s := range b.Stmts {
				p.pad()
				p.stmt(s)
				p.nl()
			}
			return
		}
		p.pad()
		p.stmt(n)
		p.nl()
	})
}

func (p *printer) end() {
	p.pad()
	p.write("end")
}

func (p *printer) stmt(n Node) {
	if n != nil && !p.compound(n) {
		p.expr(n)
	}
}

// compound prints statement-level constructs, it returns false for other nodes.
func (p *printer) compound(n Node) bool {
	switch n := n.(type) {
	case *Block:
		for i, s := range n.Stmts {
			if i > 0 {
				p.nl()
				p.pad()
			}
			p.stmt(s)
		}
	case *If:
		p.write("if ")
		p.expr(n.Cond)
		p.nl()
		p.body(n.Then)
		if n.Else != nil {
			p.pad()
			p.write("else")
			p.nl()
			p.body(n.Else)
		}
		p.end()
	case *While:
		p.loop("while", n.Cond, n.Body, n.DoWhile)
	case *Until:
		p.loop("until", n.Cond, n.Body, n.DoWhile)
	case *Case:
		p.write("case")
		if n.Subject != nil {
			p.write(" ")
			p.expr(n.Subject)
		}
		p.nl()
		for _, w := range n.Whens {
			p.pad()
			p.write("when ")
			p.args(w.Values)
			p.nl()
			p.body(w.Body)
		}
		if n.Else != nil {
			p.pad()
			p.write("else")
			p.nl()
			p.body(n.Else)
		}
		p.end()
	case *For:
		p.write("for ")
		p.target(n.Vars)
		p.write(" in ")
		p.expr(n.Iter)
		p.nl()
		p.body(n.Body)
		p.end()
	case *Begin:
		p.write("begin")
		p.nl()
		p.body(n.Body)
		p.end()
	case *Rescue, *Ensure:
		p.write("begin")
		p.nl()
		p.beginBody(n)
		p.end()
	case *Defn:
		p.write("def ")
		p.write(p.name(n.Name))
		p.formals(n.Args)
		p.nl()
		p.body(n.Body)
		p.end()
	case *Defs:
		p.write("def ")
		p.expr(n.Recv)
		p.write(".")
		p.write(p.name(n.Name))
		p.formals(n.Args)
		p.nl()
		p.body(n.Body)
		p.end()
	case *Class:
		p.write("class ")
		p.expr(n.Path)
		if n.Super != nil {
			p.write(" < ")
			p.expr(n.Super)
		}
		p.nl()
		p.body(n.Body)
		p.end()
	case *Module:
		p.write("module ")
		p.expr(n.Path)
		p.nl()
		p.body(n.Body)
		p.end()
	case *SClass:
		p.write("class << ")
		p.expr(n.Recv)
		p.nl()
		p.body(n.Body)
		p.end()
	case *PreExe:
		p.write("BEGIN {")
		p.nl()
		p.body(n.Body)
		p.pad()
		p.write("}")
	case *Alias:
		p.write("alias " + p.name(n.New) + " " + p.name(n.Old))
	case *VAlias:
		p.write("alias " + p.name(n.New) + " " + p.name(n.Old))
	case *Undef:
		p.write("undef ")
		for i, id := range n.Names {
			if i > 0 {
				p.write(", ")
			}
			p.write(p.name(id))
		}
	default:
		return false
	}
	return true
}

func (p *printer) loop(kw string, cond, body Node, doWhile bool) {
	if doWhile {
		p.write("begin")
		p.nl()
		p.body(body)
		p.end()
		p.write(" " + kw + " ")
		p.expr(cond)
		return
	}

	p.write(kw + " ")
	p.expr(cond)
	p.nl()
	p.body(body)
	p.end()
}

func (p *printer) beginBody(n Node) {
	switch n := n.(type) {
	case *Ensure:
		p.beginBody(n.Body)
		p.pad()
		p.write("ensure")
		p.nl()
		p.body(n.Ensure)
	case *Rescue:
		p.body(n.Body)
		for _, rb := range n.Bodies {
			p.pad()
			p.write("rescue")
			if rb.Exceptions != nil {
				p.write(" ")
				p.args(rb.Exceptions)
			}
			p.nl()
			p.body(rb.Body)
		}
		if n.Else != nil {
			p.pad()
			p.write("else")
			p.nl()
			p.body(n.Else)
		}
	default:
		p.body(n)
	}
}

func (p *printer) formals(a *Args) {
	if a == nil {
		return
	}
	var parts []string
	for _, id := range a.Required {
		parts = append(parts, p.name(id))
	}
	for _, o := range a.Optional {
		parts = append(parts, Print(o, p.names))
	}
	if a.HasRest {
		if a.Rest == ident.None {
			parts = append(parts, "*")
		} else {
			parts = append(parts, "*"+p.name(a.Rest))
		}
	}
	if a.Block != nil {
		parts = append(parts, "&"+p.name(a.Block.Name))
	}
	if len(parts) > 0 {
		p.write("(" + strings.Join(parts, ", ") + ")")
	}
}

// operand prints n parenthesized unless it is a primary expression.
func (p *printer) operand(n Node) {
	switch n := n.(type) {
	case *Call:
		if n.Recv != nil && (binaryOps[p.name(n.Name)] || unaryOps[p.name(n.Name)] != "") {
			p.write("(")
			p.expr(n)
			p.write(")")
			return
		}
	case *And, *Or, *Not, *If, *Dot2, *Dot3, *Match2, *Match3,
		*LAsgn, *DAsgn, *DAsgnCurr, *GAsgn, *IAsgn, *CDecl, *CVAsgn, *CVDecl, *MAsgn,
		*OpAsgn1, *OpAsgn2, *OpAsgnAnd, *OpAsgnOr, *Defined:
		p.write("(")
		p.expr(n)
		p.write(")")
		return
	}
	p.expr(n)
}

func (p *printer) expr(n Node) {
	switch n := n.(type) {
	case nil:
		p.write("nil")
	case *Self:
		p.write("self")
	case *Nil:
		p.write("nil")
	case *True:
		p.write("true")
	case *False:
		p.write("false")
	case *LVar:
		p.write(p.name(n.Name))
	case *DVar:
		p.write(p.name(n.Name))
	case *GVar:
		p.write(p.name(n.Name))
	case *IVar:
		p.write(p.name(n.Name))
	case *CVar:
		p.write(p.name(n.Name))
	case *Const:
		p.write(p.name(n.Name))
	case *VCall:
		p.write(p.name(n.Name))
	case *NthRef:
		p.write("$" + strconv.Itoa(n.Nth))
	case *BackRef:
		p.write("$" + string(rune(n.Ref)))
	case *Colon2:
		if n.Scope != nil {
			p.operand(n.Scope)
		}
		p.write("::" + p.name(n.Name))
	case *Colon3:
		p.write("::" + p.name(n.Name))
	case *Lit:
		p.literal(n.Value)
	case *Str:
		if n.Heredoc != nil {
			p.heredoc(n.Heredoc, []Node{n})
		} else {
			p.write(quoteString(n.Value, '"'))
		}
	case *XStr:
		if n.Heredoc != nil {
			p.heredoc(n.Heredoc, []Node{&Str{Value: n.Value}})
		} else {
			p.write(quoteString(n.Value, '`'))
		}
	case *DStr:
		if n.Heredoc != nil {
			p.heredoc(n.Heredoc, n.Parts)
		} else {
			p.interpolated(n.Parts, `"`, `"`)
		}
	case *DXStr:
		if n.Heredoc != nil {
			p.heredoc(n.Heredoc, n.Parts)
		} else {
			p.interpolated(n.Parts, "`", "`")
		}
	case *DSym:
		p.interpolated(n.Parts, `:"`, `"`)
	case *DRegx:
		p.interpolated(n.Parts, "/", "/"+RegexpFlags(n.Options))
	case *DRegxOnce:
		p.interpolated(n.Parts, "/", "/"+RegexpFlags(n.Options|RegexpOnce))
	case *EvStr:
		p.write("#{")
		p.stmt(n.Body)
		p.write("}")
	case *Array:
		p.write("[")
		p.list(n.Elems)
		p.write("]")
	case *ZArray:
		p.write("[]")
	case *Hash:
		p.write("{")
		for i := 0; i+1 < len(n.Pairs); i += 2 {
			if i > 0 {
				p.write(", ")
			}
			p.expr(n.Pairs[i])
			p.write(" => ")
			p.expr(n.Pairs[i+1])
		}
		p.write("}")
	case *Dot2:
		p.rangeExpr(n.Begin, "..", n.End)
	case *Dot3:
		p.rangeExpr(n.Begin, "...", n.End)
	case *Flip2:
		p.rangeExpr(n.Begin, "..", n.End)
	case *Flip3:
		p.rangeExpr(n.Begin, "...", n.End)
	case *And:
		p.operand(n.Left)
		p.write(" && ")
		p.operand(n.Right)
	case *Or:
		p.operand(n.Left)
		p.write(" || ")
		p.operand(n.Right)
	case *Not:
		p.write("!")
		p.operand(n.Expr)
	case *Defined:
		p.write("defined?(")
		p.expr(n.Expr)
		p.write(")")
	case *Match:
		p.expr(n.Regexp)
	case *Match2:
		p.operand(n.Regexp)
		p.write(" =~ ")
		p.operand(n.Value)
	case *Match3:
		p.operand(n.Value)
		p.write(" =~ ")
		p.operand(n.Regexp)
	case *If:
		p.operand(n.Cond)
		p.write(" ? ")
		p.operand(n.Then)
		p.write(" : ")
		p.operand(n.Else)
	case *Call:
		p.call(n, nil)
	case *FCall:
		p.call(n, nil)
	case *AttrAsgn:
		p.call(n, nil)
	case *Super:
		p.call(n, nil)
	case *ZSuper:
		p.write("super")
	case *BlockPass:
		p.call(n.Iter, n.Body)
	case *Iter:
		p.iter(n)
	case *Yield:
		p.write("yield")
		if n.Args != nil {
			p.write("(")
			p.args(n.Args)
			p.write(")")
		}
	case *Return:
		p.jump("return", n.Value)
	case *Break:
		p.jump("break", n.Value)
	case *Next:
		p.jump("next", n.Value)
	case *Redo:
		p.write("redo")
	case *Retry:
		p.write("retry")
	case *Splat:
		p.write("*")
		p.operand(n.Value)
	case *SValue:
		p.expr(n.Value)
	case *ToAry:
		p.expr(n.Value)
	case *ArgsCat, *ArgsPush:
		p.write("[")
		p.args(n)
		p.write("]")
	case *LAsgn:
		p.assign(p.name(n.Name), n.Value)
	case *DAsgn:
		p.assign(p.name(n.Name), n.Value)
	case *DAsgnCurr:
		p.assign(p.name(n.Name), n.Value)
	case *GAsgn:
		p.assign(p.name(n.Name), n.Value)
	case *IAsgn:
		p.assign(p.name(n.Name), n.Value)
	case *CDecl:
		if n.Path != nil {
			p.expr(n.Path)
			if n.Value != nil {
				p.write(" = ")
				p.expr(n.Value)
			}
		} else {
			p.assign(p.name(n.Name), n.Value)
		}
	case *CVAsgn:
		p.assign(p.name(n.Name), n.Value)
	case *CVDecl:
		p.assign(p.name(n.Name), n.Value)
	case *MAsgn:
		p.target(n)
		if n.Value != nil {
			p.write(" = ")
			p.args(n.Value)
		}
	case *OpAsgn1:
		p.operand(n.Recv)
		p.write("[")
		p.args(n.Args)
		p.write("] " + p.name(n.Op) + "= ")
		p.expr(n.Value)
	case *OpAsgn2:
		p.operand(n.Recv)
		p.write("." + p.name(n.Attr) + " " + p.name(n.Op) + "= ")
		p.expr(n.Value)
	case *OpAsgnAnd:
		p.opAsgnShort(n.Head, "&&=", n.Value)
	case *OpAsgnOr:
		p.opAsgnShort(n.Head, "||=", n.Value)
	case *Star:
		p.write("*")
	default:
		if !p.compound(n) {
			p.write("#<" + TypeName(n) + ">")
		}
	}
}

func (p *printer) literal(l Literal) {
	if s, is := l.(Symbol); is {
		name := p.name(ident.ID(s))
		if isSymbolName(name) {
			p.write(":" + name)
		} else {
			p.write(":" + quoteString(name, '"'))
		}
		return
	}
	p.write(FormatLiteral(l, p.names))
}

func (p *printer) interpolated(parts []Node, open, close string) {
	p.write(open)
	p.parts(parts, close[0])
	p.write(close)
}

func (p *printer) parts(parts []Node, q byte) {
	for _, part := range parts {
		switch part := part.(type) {
		case *Str:
			p.write(escapeString(part.Value, q))
		case *EvStr:
			p.expr(part)
		default:
			p.write("#{")
			p.expr(part)
			p.write("}")
		}
	}
}

// heredoc writes the opening of a here document and queues its body up to the next line break.
func (p *printer) heredoc(h *Heredoc, parts []Node) {
	p.write(h.Opening())

	var body string
	if h.Quote == '\'' {
		for _, part := range parts {
			body += part.(*Str).Value
		}
	} else {
		saved := p.b
		sb := &strings.Builder{}
		p.b = sb
		p.parts(parts, '\n')
		p.b = saved
		body = sb.String()
	}
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	p.heredocs = append(p.heredocs, body+h.ID+"\n")
}

func (p *printer) rangeExpr(b Node, op string, e Node) {
	p.operand(b)
	p.write(op)
	p.operand(e)
}

func (p *printer) jump(kw string, value Node) {
	p.write(kw)
	if value != nil {
		p.write(" ")
		p.args(value)
	}
}

func (p *printer) assign(name string, value Node) {
	p.write(name)
	if value != nil {
		p.write(" = ")
		p.expr(value)
	}
}

func (p *printer) opAsgnShort(head Node, op string, value Node) {
	p.expr(head)
	p.write(" " + op + " ")
	switch v := value.(type) {
	case *LAsgn:
		p.expr(v.Value)
	case *DAsgn:
		p.expr(v.Value)
	case *DAsgnCurr:
		p.expr(v.Value)
	case *GAsgn:
		p.expr(v.Value)
	case *IAsgn:
		p.expr(v.Value)
	case *CDecl:
		p.expr(v.Value)
	case *CVAsgn:
		p.expr(v.Value)
	case *CVDecl:
		p.expr(v.Value)
	default:
		p.expr(value)
	}
}

// target prints assignment target without value.
func (p *printer) target(n Node) {
	switch n := n.(type) {
	case *MAsgn:
		var parts []string
		if n.Head != nil {
			for _, e := range n.Head.Elems {
				parts = append(parts, p.sub(func(pp *printer) { pp.target(e) }))
			}
		}
		if n.Rest != nil {
			parts = append(parts, "*"+p.sub(func(pp *printer) { pp.target(n.Rest) }))
		}
		if len(parts) == 1 && n.Rest == nil {
			parts[0] += ","
		}
		p.write(strings.Join(parts, ", "))
	case *BlockVar:
		var parts []string
		if n.Vars != nil {
			parts = append(parts, strings.TrimSuffix(p.sub(func(pp *printer) { pp.target(n.Vars) }), ","))
		}
		parts = append(parts, "&"+p.sub(func(pp *printer) { pp.target(n.Block) }))
		p.write(strings.Join(parts, ", "))
	case *Star:
	default:
		p.expr(n)
	}
}

func (p *printer) sub(fn func(pp *printer)) string {
	sb := &strings.Builder{}
	fn(&printer{out: out{b: sb, depth: p.depth}, names: p.names})
	return sb.String()
}

func (p *printer) list(ns []Node) {
	for i, e := range ns {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e)
	}
}

// args prints actual argument list without parentheses.
func (p *printer) args(n Node) {
	switch n := n.(type) {
	case nil:
	case *Array:
		p.list(n.Elems)
	case *ArgsCat:
		p.args(n.Head)
		p.write(", *")
		p.operand(n.Body)
	case *ArgsPush:
		p.args(n.Head)
		p.write(", ")
		p.expr(n.Value)
	default:
		p.expr(n)
	}
}

func (p *printer) call(n Node, block Node) {
	var (
		recv Node
		name string
		args Node
		fn   bool
	)
	switch n := n.(type) {
	case *Call:
		recv, name, args = n.Recv, p.name(n.Name), n.Args
	case *FCall:
		name, args, fn = p.name(n.Name), n.Args, true
	case *VCall:
		name, fn = p.name(n.Name), true
	case *Super:
		name, args, fn = "super", n.Args, true
	case *ZSuper:
		name, fn = "super", true
	case *AttrAsgn:
		p.attrAsgn(n)
		return
	default:
		p.expr(n)
		return
	}

	if block == nil && recv != nil {
		if op := unaryOps[name]; op != "" && args == nil {
			p.write(op)
			p.operand(recv)
			return
		}
		if binaryOps[name] {
			if a, is := args.(*Array); is && len(a.Elems) == 1 {
				p.operand(recv)
				p.write(" " + name + " ")
				p.operand(a.Elems[0])
				return
			}
		}
		if name == "[]" {
			p.operand(recv)
			p.write("[")
			p.args(args)
			p.write("]")
			return
		}
	}

	if !fn {
		p.operand(recv)
		p.write(".")
	}
	p.write(name)
	if args != nil || block != nil {
		p.write("(")
		p.args(args)
		if block != nil {
			if args != nil {
				p.write(", ")
			}
			p.write("&")
			p.operand(block)
		}
		p.write(")")
	}
}

func (p *printer) attrAsgn(n *AttrAsgn) {
	name := p.name(n.Name)
	var elems []Node
	if a, is := n.Args.(*Array); is {
		elems = a.Elems
	}
	if name == "[]=" {
		p.operand(n.Recv)
		p.write("[")
		if len(elems) > 0 {
			p.list(elems[:len(elems)-1])
		}
		p.write("]")
	} else {
		if n.Recv != nil {
			p.operand(n.Recv)
			p.write(".")
		}
		p.write(strings.TrimSuffix(name, "="))
	}
	if len(elems) > 0 {
		p.write(" = ")
		p.expr(elems[len(elems)-1])
	}
}

func (p *printer) iter(n *Iter) {
	if _, is := n.Call.(*PostExe); is {
		p.write("END {")
	} else {
		if n.Call != nil {
			p.expr(n.Call)
			p.write(" ")
		}
		p.write("{")
	}
	if n.Vars != nil {
		p.write(" |")
		p.target(n.Vars)
		p.write("|")
	}
	if n.Body == nil {
		p.write(" }")
		return
	}
	p.nl()
	p.body(n.Body)
	p.pad()
	p.write("}")
}

func isSymbolName(s string) bool {
	if s == "" {
		return false
	}
	if binaryOps[s] || unaryOps[s] != "" || s == "[]" || s == "[]=" {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80:
		case c >= '0' && c <= '9' && i > 0:
		case (c == '@' || c == '$') && i == 0:
		case c == '@' && i == 1 && s[0] == '@':
		case (c == '?' || c == '!' || c == '=') && i == len(s)-1 && i > 0:
		default:
			return false
		}
	}
	return true
}

// quoteString returns Ruby double-quoted (or backquoted) literal of s.
func quoteString(s string, q byte) string {
	return string(q) + escapeString(s, q) + string(q)
}

// escapeString escapes s for a literal delimited with q. Line feeds are kept as is if q is '\n',
// which is used for here document bodies.
func escapeString(s string, q byte) string {
	b := &strings.Builder{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			if q == '\n' {
				b.WriteByte(c)
			} else {
				b.WriteString(`\n`)
			}
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\a':
			b.WriteString(`\a`)
		case 0x1b:
			b.WriteString(`\e`)
		case '#':
			if i+1 < len(s) && (s[i+1] == '{' || s[i+1] == '$' || s[i+1] == '@') {
				b.WriteString(`\#`)
			} else {
				b.WriteByte(c)
			}
		default:
			switch {
			case c == q:
				b.WriteByte('\\')
				b.WriteByte(c)
			case c < 0x20 || c == 0x7f:
				b.WriteString(`\x`)
				b.WriteString(strconv.FormatUint(uint64(c)>>4, 16))
				b.WriteString(strconv.FormatUint(uint64(c)&15, 16))
			default:
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}
