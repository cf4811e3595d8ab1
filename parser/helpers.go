package parser

import (
	"fmt"
	"math/big"

	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/ident"
)

// keywordIDs holds interned names of pseudo-variables and frequently used method names.
type keywordIDs struct {
	self, nil_, true_, false_, file, line ident.ID
	aref, aset, eq, match, uminus, uplus  ident.ID
	lastLine, lineNo                      ident.ID
}

func internKeywords(names *ident.Table) keywordIDs {
	return keywordIDs{
		self:     names.Intern("self"),
		nil_:     names.Intern("nil"),
		true_:    names.Intern("true"),
		false_:   names.Intern("false"),
		file:     names.Intern("__FILE__"),
		line:     names.Intern("__LINE__"),
		aref:     names.Intern("[]"),
		aset:     names.Intern("[]="),
		eq:       names.Intern("=="),
		match:    names.Intern("=~"),
		uminus:   names.Intern("-@"),
		uplus:    names.Intern("+@"),
		lastLine: names.Intern("$_"),
		lineNo:   names.Intern("$."),
	}
}

// asNode converts a semantic value to a node, values of other types give nil.
func asNode(v any) ast.Node {
	if n, is := v.(ast.Node); is {
		return n
	}
	return nil
}

func asID(v any) ident.ID {
	if id, is := v.(ident.ID); is {
		return id
	}
	return ident.None
}

func asArray(v any) *ast.Array {
	if a, is := v.(*ast.Array); is {
		return a
	}
	return nil
}

func (e *Engine) line() int {
	if e.lex == nil {
		return 0
	}
	return e.lex.Line()
}

func (e *Engine) pos() ast.Base {
	return e.posAt(e.line())
}

func (e *Engine) posAt(line int) ast.Base {
	return ast.At(ast.Pos{File: e.name, Line: line})
}

func (e *Engine) report(sev diag.Severity, line int, format string, params []any) {
	msg := format
	if len(params) > 0 {
		msg = fmt.Sprintf(format, params...)
	}
	e.sink.Report(diag.Diagnostic{Severity: sev, File: e.name, Line: line, Message: msg})
}

func (e *Engine) errorf(format string, params ...any) {
	e.report(diag.Error, e.line(), format, params)
}

func (e *Engine) warn(format string, params ...any) {
	e.report(diag.Warning, e.line(), format, params)
}

// warning reports a verbose mode warning.
func (e *Engine) warning(n ast.Node, format string, params ...any) {
	line := e.line()
	if n != nil && n.Position().Line > 0 {
		line = n.Position().Line
	}
	e.report(diag.Verbose, line, format, params)
}

func (e *Engine) inMethod() bool {
	return e.inDef > 0 || e.inSingle > 0
}

func (e *Engine) idName(id ident.ID) string {
	return e.names.Name(id)
}

// gettable returns a node reading the variable or pseudo-variable.
func (e *Engine) gettable(id ident.ID) ast.Node {
	b := e.pos()
	switch id {
	case e.kw.self:
		return &ast.Self{Base: b}
	case e.kw.nil_:
		return &ast.Nil{Base: b}
	case e.kw.true_:
		return &ast.True{Base: b}
	case e.kw.false_:
		return &ast.False{Base: b}
	case e.kw.file:
		return &ast.Str{Base: b, Value: e.name}
	case e.kw.line:
		return &ast.Lit{Base: b, Value: ast.Fixnum(e.line())}
	}

	switch e.names.Class(id) {
	case ident.Local:
		if e.scope.InBlock() && e.scope.DynaDefined(id) {
			return &ast.DVar{Base: b, Name: id}
		}
		if e.scope.Defined(id) {
			return &ast.LVar{Base: b, Name: id}
		}
		return &ast.VCall{Base: b, Name: id}
	case ident.Global:
		return &ast.GVar{Base: b, Name: id}
	case ident.Instance:
		return &ast.IVar{Base: b, Name: id}
	case ident.Const:
		return &ast.Const{Base: b, Name: id}
	case ident.ClassVar:
		return &ast.CVar{Base: b, Name: id}
	}

	e.errorf("identifier %s is not valid", e.idName(id))
	return nil
}

// assignable returns an assignment node for the variable, declaring local and block variables.
func (e *Engine) assignable(id ident.ID, value ast.Node) ast.Node {
	b := e.pos()
	switch id {
	case e.kw.self:
		e.errorf("Can't change the value of self")
		return nil
	case e.kw.nil_:
		e.errorf("Can't assign to nil")
		return nil
	case e.kw.true_:
		e.errorf("Can't assign to true")
		return nil
	case e.kw.false_:
		e.errorf("Can't assign to false")
		return nil
	case e.kw.file:
		e.errorf("Can't assign to __FILE__")
		return nil
	case e.kw.line:
		e.errorf("Can't assign to __LINE__")
		return nil
	}

	switch e.names.Class(id) {
	case ident.Local:
		switch {
		case e.scope.DynaCurrent(id):
			return &ast.DAsgnCurr{Base: b, Name: id, Value: value}
		case e.scope.DynaDefined(id):
			return &ast.DAsgn{Base: b, Name: id, Value: value}
		case e.scope.Defined(id) || !e.scope.InBlock():
			e.scope.Cnt(id)
			return &ast.LAsgn{Base: b, Name: id, Value: value}
		default:
			e.scope.DynaAdd(id)
			return &ast.DAsgnCurr{Base: b, Name: id, Value: value}
		}
	case ident.Global:
		return &ast.GAsgn{Base: b, Name: id, Value: value}
	case ident.Instance:
		return &ast.IAsgn{Base: b, Name: id, Value: value}
	case ident.Const:
		if e.inMethod() {
			e.errorf("dynamic constant assignment")
		}
		return &ast.CDecl{Base: b, Name: id, Value: value}
	case ident.ClassVar:
		if e.inMethod() {
			return &ast.CVAsgn{Base: b, Name: id, Value: value}
		}
		return &ast.CVDecl{Base: b, Name: id, Value: value}
	}

	e.errorf("identifier %s is not valid", e.idName(id))
	return nil
}

// assignedName returns the variable name of an assignment node.
func assignedName(n ast.Node) ident.ID {
	switch n := n.(type) {
	case *ast.LAsgn:
		return n.Name
	case *ast.DAsgn:
		return n.Name
	case *ast.DAsgnCurr:
		return n.Name
	case *ast.GAsgn:
		return n.Name
	case *ast.IAsgn:
		return n.Name
	case *ast.CDecl:
		return n.Name
	case *ast.CVAsgn:
		return n.Name
	case *ast.CVDecl:
		return n.Name
	}
	return ident.None
}

// assignedValue returns the value of an assignment node.
func assignedValue(n ast.Node) ast.Node {
	switch n := n.(type) {
	case *ast.LAsgn:
		return n.Value
	case *ast.DAsgn:
		return n.Value
	case *ast.DAsgnCurr:
		return n.Value
	case *ast.GAsgn:
		return n.Value
	case *ast.IAsgn:
		return n.Value
	case *ast.CDecl:
		return n.Value
	case *ast.CVAsgn:
		return n.Value
	case *ast.CVDecl:
		return n.Value
	case *ast.MAsgn:
		return n.Value
	}
	return nil
}

// nodeAssign sets the assigned value of lhs, setter calls get it as the last argument.
func (e *Engine) nodeAssign(lhs, rhs ast.Node) ast.Node {
	if lhs == nil {
		return nil
	}
	e.valueExpr(rhs)
	switch n := lhs.(type) {
	case *ast.LAsgn:
		n.Value = rhs
	case *ast.DAsgn:
		n.Value = rhs
	case *ast.DAsgnCurr:
		n.Value = rhs
	case *ast.GAsgn:
		n.Value = rhs
	case *ast.IAsgn:
		n.Value = rhs
	case *ast.CDecl:
		n.Value = rhs
	case *ast.CVAsgn:
		n.Value = rhs
	case *ast.CVDecl:
		n.Value = rhs
	case *ast.MAsgn:
		n.Value = rhs
	case *ast.AttrAsgn:
		n.Args = e.argAdd(n.Args, rhs)
	}
	return lhs
}

func (e *Engine) newList(n ast.Node) *ast.Array {
	b := e.pos()
	if n != nil {
		b = ast.At(n.Position())
	}
	return &ast.Array{Base: b, Elems: []ast.Node{n}}
}

func listAppend(list *ast.Array, n ast.Node) *ast.Array {
	if list == nil {
		list = &ast.Array{}
		if n != nil {
			list.Base = ast.At(n.Position())
		}
	}
	list.Elems = append(list.Elems, n)
	return list
}

func listConcat(head, tail *ast.Array) *ast.Array {
	if head == nil {
		return tail
	}
	if tail != nil {
		head.Elems = append(head.Elems, tail.Elems...)
	}
	return head
}

func (e *Engine) argAdd(args, n ast.Node) ast.Node {
	if args == nil {
		return e.newList(n)
	}
	if a, is := args.(*ast.Array); is {
		return listAppend(a, n)
	}
	return &ast.ArgsPush{Base: e.pos(), Head: args, Value: n}
}

func (e *Engine) argConcat(head, body ast.Node) ast.Node {
	if body == nil {
		return head
	}
	return &ast.ArgsCat{Base: e.pos(), Head: head, Body: body}
}

// argBlockPass attaches arguments to a block argument, BlockPass.Iter holds them until the call is built.
func argBlockPass(args ast.Node, blk any) ast.Node {
	bp, is := blk.(*ast.BlockPass)
	if !is {
		return args
	}
	bp.Iter = args
	return bp
}

// hash converts interleaved key/value list to a hash node.
func (e *Engine) hash(pairs *ast.Array) *ast.Hash {
	h := &ast.Hash{Base: e.pos()}
	if pairs != nil {
		h.Base = ast.At(pairs.Position())
		h.Pairs = pairs.Elems
	}
	return h
}

func (e *Engine) newCall(recv ast.Node, name ident.ID, args ast.Node) ast.Node {
	b := e.pos()
	if recv != nil {
		b = ast.At(recv.Position())
	}
	if bp, is := args.(*ast.BlockPass); is {
		bp.Iter = &ast.Call{Base: b, Recv: recv, Name: name, Args: bp.Iter}
		return bp
	}
	return &ast.Call{Base: b, Recv: recv, Name: name, Args: args}
}

func (e *Engine) newFCall(name ident.ID, args ast.Node) ast.Node {
	if bp, is := args.(*ast.BlockPass); is {
		bp.Iter = &ast.FCall{Base: e.pos(), Name: name, Args: bp.Iter}
		return bp
	}
	return &ast.FCall{Base: e.pos(), Name: name, Args: args}
}

func (e *Engine) newSuper(args ast.Node) ast.Node {
	if !e.eval && !e.inMethod() {
		e.errorf("super called outside of method")
	}
	if bp, is := args.(*ast.BlockPass); is {
		bp.Iter = &ast.Super{Base: e.pos(), Args: bp.Iter}
		return bp
	}
	return &ast.Super{Base: e.pos(), Args: args}
}

func (e *Engine) newYield(args ast.Node) ast.Node {
	splat := true
	if args == nil {
		splat = false
	} else {
		if _, is := args.(*ast.BlockPass); is {
			e.errorf("block argument should not be given")
		}
		if a, is := args.(*ast.Array); is && len(a.Elems) == 1 {
			args = a.Elems[0]
			splat = false
		}
		if _, is := args.(*ast.Splat); is {
			splat = true
		}
	}
	return &ast.Yield{Base: e.pos(), Args: args, Splat: splat}
}

// retArgs converts arguments of return, break and next to a single value.
func (e *Engine) retArgs(args ast.Node) ast.Node {
	if args == nil {
		return nil
	}
	if _, is := args.(*ast.BlockPass); is {
		e.errorf("block argument should not be given")
	}
	if a, is := args.(*ast.Array); is && len(a.Elems) == 1 {
		args = a.Elems[0]
	}
	if s, is := args.(*ast.Splat); is {
		return &ast.SValue{Base: ast.At(s.Position()), Value: s}
	}
	return args
}

// callOp builds an operator call, unary operators have nil argument.
func (e *Engine) callOp(recv ast.Node, op ident.ID, arg ast.Node) ast.Node {
	e.valueExpr(recv)
	var args ast.Node
	if arg != nil {
		e.valueExpr(arg)
		args = e.newList(arg)
	}
	b := e.pos()
	if recv != nil {
		b = ast.At(recv.Position())
	}
	return &ast.Call{Base: b, Recv: recv, Name: op, Args: args}
}

func isRegexpLiteral(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.DRegx, *ast.DRegxOnce:
		return true
	case *ast.Lit:
		_, is := n.Value.(ast.Regexp)
		return is
	}
	return false
}

// matchOp builds =~ node, regexp literal operands give Match2 and Match3 nodes.
func (e *Engine) matchOp(left, right ast.Node) ast.Node {
	e.valueExpr(left)
	e.valueExpr(right)
	if isRegexpLiteral(left) {
		return &ast.Match2{Base: ast.At(left.Position()), Regexp: left, Value: right}
	}
	if isRegexpLiteral(right) {
		return &ast.Match3{Base: ast.At(right.Position()), Regexp: right, Value: left}
	}
	return &ast.Call{Base: e.pos(), Recv: left, Name: e.kw.match, Args: e.newList(right)}
}

// logop builds a chain of And or Or nodes, nested to the right.
func (e *Engine) logop(and bool, left, right ast.Node) ast.Node {
	e.valueExpr(left)
	b := e.pos()
	if left != nil {
		b = ast.At(left.Position())
	}
	if and {
		if l, is := left.(*ast.And); is {
			n := l
			for {
				next, is := n.Right.(*ast.And)
				if !is {
					break
				}
				n = next
			}
			n.Right = &ast.And{Base: b, Left: n.Right, Right: right}
			return left
		}
		return &ast.And{Base: b, Left: left, Right: right}
	}

	if l, is := left.(*ast.Or); is {
		n := l
		for {
			next, is := n.Right.(*ast.Or)
			if !is {
				break
			}
			n = next
		}
		n.Right = &ast.Or{Base: b, Left: n.Right, Right: right}
		return left
	}
	return &ast.Or{Base: b, Left: left, Right: right}
}

// valueExpr checks that the node yields a value.
func (e *Engine) valueExpr(n ast.Node) bool {
	cond := false
	for n != nil {
		switch nn := n.(type) {
		case *ast.Defn, *ast.Defs:
			e.warning(n, "void value expression")
			return false
		case *ast.Return, *ast.Break, *ast.Next, *ast.Redo, *ast.Retry:
			if !cond {
				e.errorf("void value expression")
			}
			return false
		case *ast.Block:
			n = nn.Stmts[len(nn.Stmts)-1]
		case *ast.Begin:
			n = nn.Body
		case *ast.If:
			if !e.valueExpr(nn.Then) {
				return false
			}
			n = nn.Else
		case *ast.And:
			cond = true
			n = nn.Right
		case *ast.Or:
			cond = true
			n = nn.Right
		default:
			return true
		}
	}
	return true
}

var voidOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "+@": true, "-@": true,
	"|": true, "^": true, "&": true, "<=>": true, ">": true, ">=": true, "<": true, "<=": true,
	"==": true, "!=": true,
}

// voidExpr warns about an expression which value is not used.
func (e *Engine) voidExpr(n ast.Node) {
	useless := ""
	switch n := n.(type) {
	case *ast.Call:
		if name := e.idName(n.Name); voidOps[name] {
			useless = name
		}
	case *ast.LVar, *ast.DVar, *ast.GVar, *ast.IVar, *ast.CVar, *ast.NthRef, *ast.BackRef:
		useless = "a variable"
	case *ast.Const:
		useless = "a constant"
	case *ast.Lit, *ast.Str, *ast.DStr, *ast.DRegx, *ast.DRegxOnce:
		useless = "a literal"
	case *ast.Colon2, *ast.Colon3:
		useless = "::"
	case *ast.Dot2:
		useless = ".."
	case *ast.Dot3:
		useless = "..."
	case *ast.Self:
		useless = "self"
	case *ast.Nil:
		useless = "nil"
	case *ast.True:
		useless = "true"
	case *ast.False:
		useless = "false"
	case *ast.Defined:
		useless = "defined?"
	}
	if useless != "" {
		e.warning(n, "Useless use of %s in void context", useless)
	}
}

func (e *Engine) voidStmts(n ast.Node) {
	b, is := n.(*ast.Block)
	if !is {
		return
	}
	for _, s := range b.Stmts[:len(b.Stmts)-1] {
		e.voidExpr(s)
	}
}

func isJump(n ast.Node) bool {
	switch n.(type) {
	case *ast.Return, *ast.Break, *ast.Next, *ast.Redo, *ast.Retry:
		return true
	}
	return false
}

// blockAppend joins statement sequences. A lone literal head is dropped.
func (e *Engine) blockAppend(head, tail ast.Node) ast.Node {
	if tail == nil {
		return head
	}
	if head == nil {
		return tail
	}

	switch head.(type) {
	case *ast.Lit, *ast.Str:
		e.warning(head, "unused literal ignored")
		return tail
	}

	b, is := head.(*ast.Block)
	if !is {
		b = &ast.Block{Base: ast.At(head.Position()), Stmts: []ast.Node{head}}
	}
	if isJump(b.Stmts[len(b.Stmts)-1]) {
		e.warning(tail, "statement not reached")
	}
	if tb, is := tail.(*ast.Block); is {
		b.Stmts = append(b.Stmts, tb.Stmts...)
	} else {
		b.Stmts = append(b.Stmts, tail)
	}
	return b
}

// literalConcat joins adjacent string literals.
func (e *Engine) literalConcat(head, tail ast.Node) ast.Node {
	if head == nil {
		return tail
	}
	if tail == nil {
		return head
	}

	hs, headStr := head.(*ast.Str)
	ts, tailStr := tail.(*ast.Str)
	if headStr && tailStr {
		hs.Value += ts.Value
		hs.Heredoc = nil
		return hs
	}

	var parts []ast.Node
	switch h := head.(type) {
	case *ast.Str:
		parts = []ast.Node{h}
	case *ast.DStr:
		parts = h.Parts
	default:
		parts = []ast.Node{&ast.EvStr{Base: ast.At(head.Position()), Body: head}}
	}
	var tparts []ast.Node
	switch t := tail.(type) {
	case *ast.Str:
		tparts = []ast.Node{t}
	case *ast.DStr:
		tparts = t.Parts
	default:
		tparts = []ast.Node{&ast.EvStr{Base: ast.At(tail.Position()), Body: tail}}
	}

	for _, p := range tparts {
		if s, is := p.(*ast.Str); is && len(parts) > 0 {
			if last, is := parts[len(parts)-1].(*ast.Str); is {
				merged := *last
				merged.Value += s.Value
				parts[len(parts)-1] = &merged
				continue
			}
		}
		parts = append(parts, p)
	}
	return &ast.DStr{Base: ast.At(head.Position()), Parts: parts}
}

// negateLiteral returns numeric literal with opposite sign.
func negateLiteral(l ast.Literal) ast.Literal {
	switch v := l.(type) {
	case ast.Fixnum:
		return -v
	case ast.Bignum:
		return ast.Bignum{Value: new(big.Int).Neg(v.Value)}
	case ast.Float:
		return -v
	}
	return l
}

func (e *Engine) backrefError(n ast.Node) {
	switch n := n.(type) {
	case *ast.NthRef:
		e.errorf("Can't set variable $%d", n.Nth)
	case *ast.BackRef:
		e.errorf("Can't set variable $%c", n.Ref)
	}
}

func isLiteralValue(n ast.Node) bool {
	switch n.(type) {
	case *ast.Lit, *ast.Str, *ast.Nil, *ast.True, *ast.False:
		return true
	}
	return false
}

func (e *Engine) assignInCond(n ast.Node) {
	switch n.(type) {
	case *ast.MAsgn:
		e.errorf("multiple assignment in conditional")
		return
	case *ast.LAsgn, *ast.DAsgn, *ast.DAsgnCurr, *ast.GAsgn, *ast.IAsgn:
	default:
		return
	}
	if isLiteralValue(assignedValue(n)) {
		e.warn("found = in conditional, should be ==")
	}
}

// rangeOp converts a flip-flop bound, integer literals are compared with $.
func (e *Engine) rangeOp(n ast.Node) ast.Node {
	if l, is := n.(*ast.Lit); is {
		if _, is := l.Value.(ast.Fixnum); is {
			b := ast.At(l.Position())
			return &ast.Call{Base: b, Recv: l, Name: e.kw.eq, Args: e.newList(&ast.GVar{Base: b, Name: e.kw.lineNo})}
		}
	}
	return e.cond(n)
}

func isNumericLiteral(n ast.Node) bool {
	l, is := n.(*ast.Lit)
	if !is {
		return false
	}
	switch l.Value.(type) {
	case ast.Fixnum, ast.Bignum, ast.Float:
		return true
	}
	return false
}

// cond converts an expression used as a condition.
func (e *Engine) cond(n ast.Node) ast.Node {
	if n == nil {
		return nil
	}
	e.assignInCond(n)

	switch nn := n.(type) {
	case *ast.DStr, *ast.EvStr, *ast.Str:
		e.warn("string literal in condition")
	case *ast.DRegx, *ast.DRegxOnce:
		e.warning(n, "regex literal in condition")
		return &ast.Match2{Base: ast.At(n.Position()), Regexp: n, Value: &ast.GVar{Base: ast.At(n.Position()), Name: e.kw.lastLine}}
	case *ast.And:
		nn.Left = e.cond(nn.Left)
		nn.Right = e.cond(nn.Right)
	case *ast.Or:
		nn.Left = e.cond(nn.Left)
		nn.Right = e.cond(nn.Right)
	case *ast.Dot2:
		e.rangeInCond(nn.Begin, nn.End)
		return &ast.Flip2{Base: nn.Base, Begin: e.rangeOp(nn.Begin), End: e.rangeOp(nn.End)}
	case *ast.Dot3:
		e.rangeInCond(nn.Begin, nn.End)
		return &ast.Flip3{Base: nn.Base, Begin: e.rangeOp(nn.Begin), End: e.rangeOp(nn.End)}
	case *ast.DSym:
		e.warning(n, "literal in condition")
	case *ast.Lit:
		if _, is := nn.Value.(ast.Regexp); is {
			e.warning(n, "regex literal in condition")
			return &ast.Match{Base: nn.Base, Regexp: nn}
		}
		e.warning(n, "literal in condition")
	}
	return n
}

func (e *Engine) rangeInCond(begin, end ast.Node) {
	if isNumericLiteral(begin) && isNumericLiteral(end) {
		e.warn("range literal in condition")
	}
}

// condNegative strips a negation from the condition, it tells whether there was one.
func condNegative(cond *ast.Node) bool {
	if n, is := (*cond).(*ast.Not); is {
		*cond = n.Expr
		return true
	}
	return false
}

func (e *Engine) newIf(cond, then, els ast.Node) *ast.If {
	n := &ast.If{Base: e.pos(), Cond: e.cond(cond), Then: then, Else: els}
	if cond != nil {
		n.Base = ast.At(cond.Position())
	}
	if condNegative(&n.Cond) {
		n.Then, n.Else = n.Else, n.Then
	}
	return n
}

// newLoop builds While or Until node, a negated condition swaps the kind.
func (e *Engine) newLoop(until bool, cond, body ast.Node, doWhile bool) ast.Node {
	c := e.cond(cond)
	if condNegative(&c) {
		until = !until
	}
	b := e.pos()
	if cond != nil {
		b = ast.At(cond.Position())
	}
	if until {
		return &ast.Until{Base: b, Cond: c, Body: body, DoWhile: doWhile}
	}
	return &ast.While{Base: b, Cond: c, Body: body, DoWhile: doWhile}
}

// checkLiteralReceiver rejects literals as singleton method receivers.
func (e *Engine) checkLiteralReceiver(n ast.Node) {
	switch n.(type) {
	case *ast.Str, *ast.DStr, *ast.XStr, *ast.DXStr, *ast.DRegx, *ast.DRegxOnce, *ast.Lit, *ast.Array, *ast.ZArray:
		e.errorf("can't define singleton method for literals")
	default:
		e.valueExpr(n)
	}
}

func backrefName(n ast.Node) string {
	switch n := n.(type) {
	case *ast.BackRef:
		return "$" + string(rune(n.Ref))
	case *ast.NthRef:
		return fmt.Sprintf("$%d", n.Nth)
	}
	return ""
}
