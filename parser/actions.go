package parser

import (
	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/ident"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/scope"
)

// intermediate values passed between grammar actions

type whens struct {
	list []*ast.When
	els  ast.Node
}

// restArg is a rest argument, None id means anonymous one.
type restArg struct {
	id ident.ID
}

type blockOpen struct {
	mark scope.Mark
	line int
}

type defOpen struct {
	mid  ident.ID
	line int
}

var actionTable map[string]action

func init() {
	actionTable = map[string]action{
		"program_init": (*Engine).programInit,
		"program":      (*Engine).program,
		"bodystmt":     (*Engine).bodystmt,
		"compstmt":     (*Engine).compstmt,
		"stmts_append": (*Engine).stmtsAppend,
		"second":       second,
		"third":        third,
		"nothing":      nothing,
		"errok":        (*Engine).errok,

		"alias":          (*Engine).alias,
		"alias_fname":    (*Engine).setFName,
		"valias":         (*Engine).valias,
		"valias_backref": (*Engine).valiasBackref,
		"valias_nthref":  (*Engine).valiasNthref,
		"undef":          (*Engine).undef,
		"undef_item":     undefItem,
		"undef_fname":    (*Engine).setFName,
		"undef_append":   undefAppend,
		"dsym_name":      (*Engine).dsymName,
		"fname_op":       (*Engine).fnameOp,

		"if_mod":      (*Engine).ifMod,
		"unless_mod":  (*Engine).unlessMod,
		"while_mod":   (*Engine).whileMod,
		"until_mod":   (*Engine).untilMod,
		"rescue_mod":  (*Engine).rescueMod,
		"preexe_open": (*Engine).preexeOpen,
		"preexe":      (*Engine).preexe,
		"postexe":     (*Engine).postexe,

		"assign":         (*Engine).assign,
		"assign_svalue":  (*Engine).assignSValue,
		"assign_rescue":  (*Engine).assignRescue,
		"masgn_value":    (*Engine).masgnValue,
		"masgn_mrhs":     (*Engine).masgnMrhs,
		"op_asgn":        (*Engine).opAsgn,
		"op_asgn1":       (*Engine).opAsgn1,
		"op_asgn2":       (*Engine).opAsgn2,
		"const_reassign": (*Engine).constReassign,
		"backref_asgn":   (*Engine).backrefAsgn,
		"backref_error":  (*Engine).backrefErr,
		"assignable":     (*Engine).assignableVar,
		"gettable":       (*Engine).gettableVar,
		"aryset":         (*Engine).aryset,
		"attrset":        (*Engine).attrset,
		"const_decl":     (*Engine).constDecl,
		"top_const_decl": (*Engine).topConstDecl,

		"mlhs":           (*Engine).mlhs,
		"mlhs_paren":     (*Engine).mlhsParen,
		"mlhs_item":      (*Engine).mlhsItem,
		"mlhs_rest":      (*Engine).mlhsRest,
		"mlhs_star":      (*Engine).mlhsStar,
		"mlhs_only_rest": (*Engine).mlhsOnlyRest,
		"mlhs_only_star": (*Engine).mlhsOnlyStar,
		"list":           (*Engine).list,
		"list_append":    (*Engine).listAppendItem,
		"args_append":    (*Engine).argsAppend,

		"and":        (*Engine).and,
		"or":         (*Engine).or,
		"not":        (*Engine).not,
		"value_expr": (*Engine).valueExprAction,
		"binop":      (*Engine).binop,
		"unop":       (*Engine).unop,
		"neg_pow":    (*Engine).negPow,
		"uplus":      (*Engine).uplus,
		"uminus":     (*Engine).uminus,
		"neq":        (*Engine).neq,
		"match":      (*Engine).match,
		"nmatch":     (*Engine).nmatch,
		"defined":    (*Engine).defined,
		"ternary":    (*Engine).ternary,
		"dot2":       (*Engine).dot2,
		"dot3":       (*Engine).dot3,

		"return_args": (*Engine).returnArgs,
		"break_args":  (*Engine).breakArgs,
		"next_args":   (*Engine).nextArgs,
		"return":      (*Engine).returnEmpty,
		"break":       (*Engine).breakEmpty,
		"next":        (*Engine).nextEmpty,
		"redo":        (*Engine).redo,
		"retry":       (*Engine).retry,

		"call":           (*Engine).call,
		"call_noargs":    (*Engine).callNoArgs,
		"call_iter":      (*Engine).callIter,
		"call_brace":     (*Engine).callBrace,
		"fcall":          (*Engine).fcall,
		"fcall_iter":     (*Engine).fcallIter,
		"fcall_brace":    (*Engine).fcallBrace,
		"fid":            (*Engine).fid,
		"super":          (*Engine).super,
		"zsuper":         (*Engine).zsuper,
		"yield":          (*Engine).yield,
		"yield_paren":    (*Engine).yieldParen,
		"yield_empty":    (*Engine).yieldEmpty,
		"block_open":     (*Engine).blockOpen,
		"iter":           (*Engine).iter,
		"cmdarg_open":    (*Engine).cmdargOpen,
		"command_args":   (*Engine).commandArgs,
		"paren_arg_end":  (*Engine).parenArgEnd,
		"paren_arg":      (*Engine).parenArg,
		"paren_arg_none": (*Engine).parenArgNone,
		"paren_arg_expr": (*Engine).parenArgExpr,

		"command_arg":           (*Engine).commandArg,
		"block_call_arg":        (*Engine).blockCallArg,
		"args_block_call":       (*Engine).argsBlockCall,
		"args_splat":            (*Engine).argsSplat,
		"hash_arg":              (*Engine).hashArg,
		"splat":                 (*Engine).splat,
		"block_pass":            (*Engine).blockPass,
		"blk_pass":              blkPass,
		"args_splat_blk":        (*Engine).argsSplatBlk,
		"assocs_blk":            (*Engine).assocsBlk,
		"assocs_splat_blk":      (*Engine).assocsSplatBlk,
		"args_assocs_blk":       (*Engine).argsAssocsBlk,
		"args_assocs_splat_blk": (*Engine).argsAssocsSplatBlk,
		"splat_blk":             (*Engine).splatBlk,
		"args2":                 (*Engine).args2,
		"args2_blk":             (*Engine).args2Blk,
		"args2_splat":           (*Engine).args2Splat,
		"args2_args_splat":      (*Engine).args2ArgsSplat,
		"args2_assocs":          (*Engine).args2Assocs,
		"args2_args_assocs":     (*Engine).args2ArgsAssocs,
		"args2_assocs_splat":    (*Engine).args2AssocsSplat,
		"args2_all":             (*Engine).args2All,

		"begin":         (*Engine).beginBody,
		"paren":         second,
		"colon2":        (*Engine).colon2,
		"colon3":        (*Engine).colon3,
		"cpath_local":   (*Engine).cpathLocal,
		"cname_error":   (*Engine).cnameError,
		"aref":          (*Engine).aref,
		"array":         (*Engine).array,
		"hash":          (*Engine).hashLit,
		"assoc":         (*Engine).assoc,
		"assocs_append": assocsAppend,
		"assoc_args":    (*Engine).assocArgs,
		"defined_paren": (*Engine).definedParen,

		"if":              (*Engine).ifStmt,
		"elsif":           (*Engine).elsif,
		"unless":          (*Engine).unless,
		"while":           (*Engine).while,
		"until":           (*Engine).until,
		"cond_push":       (*Engine).condPush,
		"cond_pop":        (*Engine).condPop,
		"case":            (*Engine).caseStmt,
		"case_no_subject": (*Engine).caseNoSubject,
		"case_else":       (*Engine).caseElse,
		"when":            (*Engine).when,
		"when_splat":      (*Engine).whenSplat,
		"when_only_splat": (*Engine).whenOnlySplat,
		"for":             (*Engine).forStmt,
		"rescue":          (*Engine).rescue,

		"class":            (*Engine).class,
		"class_open":       (*Engine).classOpen,
		"superclass_open":  (*Engine).setBeg,
		"superclass_error": (*Engine).superclassError,
		"sclass_save":      (*Engine).sclassSave,
		"sclass_open":      (*Engine).sclassOpen,
		"sclass":           (*Engine).sclass,
		"module":           (*Engine).module,
		"module_open":      (*Engine).moduleOpen,
		"def_open":         (*Engine).defOpen,
		"defn":             (*Engine).defn,
		"defs_fname":       (*Engine).setFName,
		"defs_open":        (*Engine).defsOpen,
		"defs":             (*Engine).defs,
		"singleton":        (*Engine).singleton,
		"singleton_open":   (*Engine).setBeg,
		"singleton_paren":  (*Engine).singletonParen,

		"block_var":               (*Engine).blockVar,
		"block_var_pipe":          (*Engine).blockVarPipe,
		"block_var_empty":         (*Engine).blockVarEmpty,
		"block_var_blk":           (*Engine).blockVarBlk,
		"block_var_rest_blk":      (*Engine).blockVarRestBlk,
		"block_var_star_blk":      (*Engine).blockVarStarBlk,
		"block_var_rest":          (*Engine).blockVarRest,
		"block_var_only_rest_blk": (*Engine).blockVarOnlyRestBlk,
		"block_var_only_star_blk": (*Engine).blockVarOnlyStarBlk,
		"block_var_only_blk":      (*Engine).blockVarOnlyBlk,

		"f_arglist_paren":  (*Engine).fArglistParen,
		"f_args_all":       (*Engine).fArgsAll,
		"f_args_opt":       (*Engine).fArgsOpt,
		"f_args_rest":      (*Engine).fArgsRest,
		"f_args_req":       (*Engine).fArgsReq,
		"f_args_opt_rest":  (*Engine).fArgsOptRest,
		"f_args_only_opt":  (*Engine).fArgsOnlyOpt,
		"f_args_only_rest": (*Engine).fArgsOnlyRest,
		"f_args_only_blk":  (*Engine).fArgsOnlyBlk,
		"f_args_empty":     (*Engine).fArgsEmpty,
		"formal_const":     (*Engine).formalConst,
		"formal_ivar":      (*Engine).formalIVar,
		"formal_gvar":      (*Engine).formalGVar,
		"formal_cvar":      (*Engine).formalCVar,
		"formal_arg":       (*Engine).formalArg,
		"f_arg":            fArg,
		"f_arg_append":     fArgAppend,
		"f_opt":            (*Engine).fOpt,
		"f_optarg":         fOptarg,
		"f_optarg_append":  fOptargAppend,
		"f_rest_arg":       (*Engine).fRestArg,
		"f_rest_anon":      fRestAnon,
		"f_block_arg":      (*Engine).fBlockArg,

		"strings":    (*Engine).strings,
		"str_concat": (*Engine).strConcat,
		"symbol":     (*Engine).symbol,
		"sym_lit":    (*Engine).symLit,
		"lit":        (*Engine).lit,
		"neg_lit":    (*Engine).negLit,
	}
}

func second(_ *Engine, v []any) any {
	return v[1]
}

func third(_ *Engine, v []any) any {
	return v[2]
}

func nothing(*Engine, []any) any {
	return nil
}

func (e *Engine) errok([]any) any {
	e.drv.Recover()
	return nil
}

func (e *Engine) setFName([]any) any {
	e.st.Set(lexstate.FName)
	return nil
}

func (e *Engine) setBeg([]any) any {
	e.st.Set(lexstate.Beg)
	return nil
}

// program

func (e *Engine) programInit([]any) any {
	e.st.Set(lexstate.Beg)
	e.baseDepth = e.scope.Depth()
	if !e.nested {
		e.scope.Push(true)
	}
	return nil
}

func (e *Engine) program(v []any) any {
	body := asNode(v[1])
	if !e.eval {
		last := body
		if b, is := body.(*ast.Block); is {
			last = b.Stmts[len(b.Stmts)-1]
		}
		e.voidExpr(last)
	}

	keep := e.baseDepth
	if !e.nested {
		keep++
	}
	for e.scope.Depth() > keep {
		e.scope.Pop()
	}
	if !e.nested {
		e.locals = e.scope.Pop()
	}
	return body
}

func (e *Engine) bodystmt(v []any) any {
	body := asNode(v[0])
	bodies, _ := v[1].([]*ast.ResBody)
	els := asNode(v[2])
	ensure := asNode(v[3])

	if bodies != nil {
		body = &ast.Rescue{Base: e.pos(), Body: body, Bodies: bodies, Else: els}
	} else if els != nil {
		e.warn("else without rescue is useless")
		body = e.blockAppend(body, els)
	}

	if ensure != nil {
		if body == nil {
			body = e.blockAppend(ensure, &ast.Nil{Base: e.pos()})
		} else {
			body = &ast.Ensure{Base: ast.At(body.Position()), Body: body, Ensure: ensure}
		}
	}
	return body
}

func (e *Engine) compstmt(v []any) any {
	n := asNode(v[0])
	e.voidStmts(n)
	return n
}

func (e *Engine) stmtsAppend(v []any) any {
	return e.blockAppend(asNode(v[0]), asNode(v[2]))
}

// alias and undef

func (e *Engine) aliasInMethod() {
	if !e.eval && e.inMethod() {
		e.errorf("alias within method")
	}
}

func (e *Engine) alias(v []any) any {
	e.aliasInMethod()
	return &ast.Alias{Base: e.pos(), New: asID(v[1]), Old: asID(v[3])}
}

func (e *Engine) valias(v []any) any {
	e.aliasInMethod()
	return &ast.VAlias{Base: e.pos(), New: asID(v[1]), Old: asID(v[2])}
}

func (e *Engine) valiasBackref(v []any) any {
	e.aliasInMethod()
	old := e.names.Intern(backrefName(asNode(v[2])))
	return &ast.VAlias{Base: e.pos(), New: asID(v[1]), Old: old}
}

func (e *Engine) valiasNthref([]any) any {
	e.errorf("can't make alias for the number variables")
	return nil
}

func (e *Engine) undef(v []any) any {
	names, _ := v[1].([]ident.ID)
	return &ast.Undef{Base: e.pos(), Names: names}
}

func undefItem(_ *Engine, v []any) any {
	return []ident.ID{asID(v[0])}
}

func undefAppend(_ *Engine, v []any) any {
	names, _ := v[0].([]ident.ID)
	return append(names, asID(v[3]))
}

func (e *Engine) dsymName(v []any) any {
	if l, is := v[0].(*ast.Lit); is {
		if s, is := l.Value.(ast.Symbol); is {
			return ident.ID(s)
		}
	}
	e.errorf("interpolated symbol is not allowed here")
	return ident.None
}

func (e *Engine) fnameOp(v []any) any {
	e.st.Set(lexstate.End)
	return v[0]
}

// statement modifiers

func (e *Engine) ifMod(v []any) any {
	return e.newIf(asNode(v[2]), asNode(v[0]), nil)
}

func (e *Engine) unlessMod(v []any) any {
	return e.newIf(asNode(v[2]), nil, asNode(v[0]))
}

func (e *Engine) loopMod(until bool, v []any) any {
	body := asNode(v[0])
	if b, is := body.(*ast.Begin); is {
		return e.newLoop(until, asNode(v[2]), b.Body, true)
	}
	return e.newLoop(until, asNode(v[2]), body, false)
}

func (e *Engine) whileMod(v []any) any {
	return e.loopMod(false, v)
}

func (e *Engine) untilMod(v []any) any {
	return e.loopMod(true, v)
}

func (e *Engine) rescueMod(v []any) any {
	body := asNode(v[0])
	b := e.pos()
	if body != nil {
		b = ast.At(body.Position())
	}
	return &ast.Rescue{Base: b, Body: body, Bodies: []*ast.ResBody{{Base: e.pos(), Body: asNode(v[2])}}}
}

func (e *Engine) preexeOpen([]any) any {
	if e.inMethod() {
		e.errorf("BEGIN in method")
	}
	e.scope.Push(false)
	return nil
}

func (e *Engine) preexe(v []any) any {
	e.begin = e.blockAppend(e.begin, &ast.PreExe{Base: e.pos(), Body: asNode(v[3])})
	e.scope.Pop()
	return nil
}

func (e *Engine) postexe(v []any) any {
	if e.inMethod() {
		e.warn("END in method; use at_exit")
	}
	b := e.pos()
	return &ast.Iter{Base: b, Call: &ast.PostExe{Base: b}, Body: asNode(v[2])}
}

// assignments

func (e *Engine) assign(v []any) any {
	return e.nodeAssign(asNode(v[0]), asNode(v[2]))
}

func (e *Engine) assignSValue(v []any) any {
	rhs := asNode(v[2])
	return e.nodeAssign(asNode(v[0]), &ast.SValue{Base: e.pos(), Value: rhs})
}

func (e *Engine) assignRescue(v []any) any {
	rescue := &ast.Rescue{
		Base:   e.pos(),
		Body:   asNode(v[2]),
		Bodies: []*ast.ResBody{{Base: e.pos(), Body: asNode(v[4])}},
	}
	return e.nodeAssign(asNode(v[0]), rescue)
}

func (e *Engine) masgnValue(v []any) any {
	m, is := v[0].(*ast.MAsgn)
	if !is {
		return nil
	}
	value := asNode(v[2])
	e.valueExpr(value)
	if m.Head != nil {
		m.Value = &ast.ToAry{Base: e.pos(), Value: value}
	} else {
		m.Value = e.newList(value)
	}
	return m
}

func (e *Engine) masgnMrhs(v []any) any {
	m, is := v[0].(*ast.MAsgn)
	if !is {
		return nil
	}
	m.Value = asNode(v[2])
	return m
}

func (e *Engine) opAsgn(v []any) any {
	lhs := asNode(v[0])
	if lhs == nil {
		return nil
	}
	value := asNode(v[2])
	name := assignedName(lhs)
	b := ast.At(lhs.Position())

	switch e.idName(asID(v[1])) {
	case "||":
		e.nodeAssign(lhs, value)
		return &ast.OpAsgnOr{Base: b, Head: e.gettable(name), Value: lhs}
	case "&&":
		e.nodeAssign(lhs, value)
		return &ast.OpAsgnAnd{Base: b, Head: e.gettable(name), Value: lhs}
	}
	return e.nodeAssign(lhs, e.callOp(e.gettable(name), asID(v[1]), value))
}

func (e *Engine) opAsgn1(v []any) any {
	value := asNode(v[5])
	e.valueExpr(value)
	return &ast.OpAsgn1{Base: e.pos(), Recv: asNode(v[0]), Op: asID(v[4]), Args: asNode(v[2]), Value: value}
}

func (e *Engine) opAsgn2(v []any) any {
	value := asNode(v[4])
	e.valueExpr(value)
	return &ast.OpAsgn2{Base: e.pos(), Recv: asNode(v[0]), Attr: asID(v[2]), Op: asID(v[3]), Value: value}
}

func (e *Engine) constReassign([]any) any {
	e.errorf("constant re-assignment")
	return nil
}

func (e *Engine) backrefAsgn(v []any) any {
	e.backrefError(asNode(v[0]))
	return nil
}

func (e *Engine) backrefErr(v []any) any {
	e.backrefError(asNode(v[0]))
	return nil
}

func (e *Engine) assignableVar(v []any) any {
	return e.assignable(asID(v[0]), nil)
}

func (e *Engine) gettableVar(v []any) any {
	return e.gettable(asID(v[0]))
}

func (e *Engine) aryset(v []any) any {
	return &ast.AttrAsgn{Base: e.pos(), Recv: asNode(v[0]), Name: e.kw.aset, Args: asNode(v[2])}
}

func (e *Engine) attrset(v []any) any {
	return &ast.AttrAsgn{Base: e.pos(), Recv: asNode(v[0]), Name: e.names.AttrSet(asID(v[2]))}
}

func (e *Engine) constDecl(v []any) any {
	if e.inMethod() {
		e.errorf("dynamic constant assignment")
	}
	b := e.pos()
	id := asID(v[2])
	return &ast.CDecl{Base: b, Name: id, Path: &ast.Colon2{Base: b, Scope: asNode(v[0]), Name: id}}
}

func (e *Engine) topConstDecl(v []any) any {
	if e.inMethod() {
		e.errorf("dynamic constant assignment")
	}
	b := e.pos()
	id := asID(v[1])
	return &ast.CDecl{Base: b, Name: id, Path: &ast.Colon3{Base: b, Name: id}}
}

// multiple assignment targets

func (e *Engine) mlhs(v []any) any {
	return &ast.MAsgn{Base: e.pos(), Head: asArray(v[0])}
}

func (e *Engine) mlhsParen(v []any) any {
	return &ast.MAsgn{Base: e.pos(), Head: e.newList(asNode(v[1]))}
}

func (e *Engine) mlhsItem(v []any) any {
	return &ast.MAsgn{Base: e.pos(), Head: listAppend(asArray(v[0]), asNode(v[1]))}
}

func (e *Engine) mlhsRest(v []any) any {
	return &ast.MAsgn{Base: e.pos(), Head: asArray(v[0]), Rest: asNode(v[2])}
}

func (e *Engine) mlhsStar(v []any) any {
	return &ast.MAsgn{Base: e.pos(), Head: asArray(v[0]), Rest: &ast.Star{Base: e.pos()}}
}

func (e *Engine) mlhsOnlyRest(v []any) any {
	return &ast.MAsgn{Base: e.pos(), Rest: asNode(v[1])}
}

func (e *Engine) mlhsOnlyStar([]any) any {
	return &ast.MAsgn{Base: e.pos(), Rest: &ast.Star{Base: e.pos()}}
}

func (e *Engine) list(v []any) any {
	return e.newList(asNode(v[0]))
}

func (e *Engine) listAppendItem(v []any) any {
	return listAppend(asArray(v[0]), asNode(v[1]))
}

func (e *Engine) argsAppend(v []any) any {
	return listAppend(asArray(v[0]), asNode(v[2]))
}

// operators

func (e *Engine) and(v []any) any {
	return e.logop(true, asNode(v[0]), asNode(v[2]))
}

func (e *Engine) or(v []any) any {
	return e.logop(false, asNode(v[0]), asNode(v[2]))
}

func (e *Engine) not(v []any) any {
	return &ast.Not{Base: e.pos(), Expr: e.cond(asNode(v[1]))}
}

func (e *Engine) valueExprAction(v []any) any {
	n := asNode(v[0])
	e.valueExpr(n)
	return n
}

func (e *Engine) binop(v []any) any {
	return e.callOp(asNode(v[0]), asID(v[1]), asNode(v[2]))
}

func (e *Engine) unop(v []any) any {
	return e.callOp(asNode(v[1]), asID(v[0]), nil)
}

func (e *Engine) negPow(v []any) any {
	l, _ := v[1].(ast.Literal)
	lit := &ast.Lit{Base: e.pos(), Value: l}
	return e.callOp(e.callOp(lit, asID(v[2]), asNode(v[3])), e.kw.uminus, nil)
}

func (e *Engine) uplus(v []any) any {
	n := asNode(v[1])
	if isNumericLiteral(n) {
		return n
	}
	return e.callOp(n, e.kw.uplus, nil)
}

func (e *Engine) uminus(v []any) any {
	n := asNode(v[1])
	if l, is := n.(*ast.Lit); is {
		if f, is := l.Value.(ast.Fixnum); is {
			l.Value = -f
			return l
		}
	}
	return e.callOp(n, e.kw.uminus, nil)
}

func (e *Engine) neq(v []any) any {
	return &ast.Not{Base: e.pos(), Expr: e.callOp(asNode(v[0]), e.kw.eq, asNode(v[2]))}
}

func (e *Engine) match(v []any) any {
	return e.matchOp(asNode(v[0]), asNode(v[2]))
}

func (e *Engine) nmatch(v []any) any {
	return &ast.Not{Base: e.pos(), Expr: e.matchOp(asNode(v[0]), asNode(v[2]))}
}

func (e *Engine) defined(v []any) any {
	return &ast.Defined{Base: e.pos(), Expr: asNode(v[2])}
}

func (e *Engine) definedParen(v []any) any {
	return &ast.Defined{Base: e.pos(), Expr: asNode(v[3])}
}

func (e *Engine) ternary(v []any) any {
	return e.newIf(asNode(v[0]), asNode(v[2]), asNode(v[4]))
}

func (e *Engine) dot2(v []any) any {
	left, right := asNode(v[0]), asNode(v[2])
	e.valueExpr(left)
	e.valueExpr(right)
	return &ast.Dot2{Base: e.pos(), Begin: left, End: right}
}

func (e *Engine) dot3(v []any) any {
	left, right := asNode(v[0]), asNode(v[2])
	e.valueExpr(left)
	e.valueExpr(right)
	return &ast.Dot3{Base: e.pos(), Begin: left, End: right}
}

// jumps

func (e *Engine) checkReturn() {
	if !e.eval && !e.inMethod() {
		e.errorf("return appeared outside of method")
	}
}

func (e *Engine) returnArgs(v []any) any {
	e.checkReturn()
	return &ast.Return{Base: e.pos(), Value: e.retArgs(asNode(v[1]))}
}

func (e *Engine) breakArgs(v []any) any {
	return &ast.Break{Base: e.pos(), Value: e.retArgs(asNode(v[1]))}
}

func (e *Engine) nextArgs(v []any) any {
	return &ast.Next{Base: e.pos(), Value: e.retArgs(asNode(v[1]))}
}

func (e *Engine) returnEmpty([]any) any {
	e.checkReturn()
	return &ast.Return{Base: e.pos()}
}

func (e *Engine) breakEmpty([]any) any {
	return &ast.Break{Base: e.pos()}
}

func (e *Engine) nextEmpty([]any) any {
	return &ast.Next{Base: e.pos()}
}

func (e *Engine) redo([]any) any {
	return &ast.Redo{Base: e.pos()}
}

func (e *Engine) retry([]any) any {
	return &ast.Retry{Base: e.pos()}
}

// calls and blocks

func (e *Engine) call(v []any) any {
	return e.newCall(asNode(v[0]), asID(v[2]), asNode(v[3]))
}

func (e *Engine) callNoArgs(v []any) any {
	return e.newCall(asNode(v[0]), asID(v[2]), nil)
}

// attachBlock makes call the receiver of block iter.
func (e *Engine) attachBlock(call ast.Node, iter any) ast.Node {
	it, is := iter.(*ast.Iter)
	if !is {
		return call
	}
	if _, is := call.(*ast.BlockPass); is {
		e.errorf("both block arg and actual block given")
	}
	it.Call = call
	return it
}

func (e *Engine) callIter(v []any) any {
	return e.attachBlock(e.newCall(asNode(v[0]), asID(v[2]), asNode(v[3])), v[4])
}

func (e *Engine) callBrace(v []any) any {
	return e.attachBlock(asNode(v[0]), v[1])
}

func (e *Engine) fcall(v []any) any {
	return e.newFCall(asID(v[0]), asNode(v[1]))
}

func (e *Engine) fcallIter(v []any) any {
	return e.attachBlock(e.newFCall(asID(v[0]), asNode(v[1])), v[2])
}

func (e *Engine) fcallBrace(v []any) any {
	return e.attachBlock(&ast.FCall{Base: e.pos(), Name: asID(v[0])}, v[1])
}

func (e *Engine) fid(v []any) any {
	return &ast.FCall{Base: e.pos(), Name: asID(v[0])}
}

func (e *Engine) super(v []any) any {
	return e.newSuper(asNode(v[1]))
}

func (e *Engine) zsuper([]any) any {
	if !e.eval && !e.inMethod() {
		e.errorf("super called outside of method")
	}
	return &ast.ZSuper{Base: e.pos()}
}

func (e *Engine) yield(v []any) any {
	return e.newYield(asNode(v[1]))
}

func (e *Engine) yieldParen(v []any) any {
	return e.newYield(asNode(v[2]))
}

func (e *Engine) yieldEmpty([]any) any {
	return &ast.Yield{Base: e.pos()}
}

func (e *Engine) blockOpen([]any) any {
	return blockOpen{mark: e.scope.DynaPush(), line: e.line()}
}

func (e *Engine) iter(v []any) any {
	open, _ := v[1].(blockOpen)
	it := &ast.Iter{
		Base:   e.posAt(open.line),
		Vars:   asNode(v[2]),
		Body:   asNode(v[3]),
		Locals: e.scope.DynaVars(open.mark),
	}
	e.scope.DynaPop(open.mark)
	return it
}

func (e *Engine) cmdargOpen([]any) any {
	saved := e.st.CmdArg.Save()
	e.st.CmdArg.Push(true)
	return saved
}

func (e *Engine) commandArgs(v []any) any {
	if saved, is := v[0].(lexstate.Stack); is {
		e.st.CmdArg.Restore(saved)
	}
	return v[1]
}

func (e *Engine) parenArgEnd([]any) any {
	e.st.Set(lexstate.EndArg)
	return nil
}

func (e *Engine) parenArg(v []any) any {
	e.warn("don't put space before argument parentheses")
	return v[1]
}

func (e *Engine) parenArgNone([]any) any {
	e.warn("don't put space before argument parentheses")
	return nil
}

func (e *Engine) parenArgExpr(v []any) any {
	n := asNode(v[1])
	e.warning(n, "(...) interpreted as grouped expression")
	return n
}

// arguments

func (e *Engine) commandArg(v []any) any {
	e.warn("parenthesize argument(s) for future version")
	return e.newList(asNode(v[0]))
}

func (e *Engine) blockCallArg(v []any) any {
	e.warn("parenthesize argument for future version")
	return e.newList(asNode(v[1]))
}

func (e *Engine) argsBlockCall(v []any) any {
	e.warn("parenthesize argument for future version")
	return listAppend(asArray(v[1]), asNode(v[3]))
}

func (e *Engine) argsSplat(v []any) any {
	value := asNode(v[3])
	e.valueExpr(value)
	return e.argConcat(asNode(v[0]), value)
}

func (e *Engine) hashArg(v []any) any {
	return e.newList(e.hash(asArray(v[0])))
}

func (e *Engine) splat(v []any) any {
	return &ast.Splat{Base: e.pos(), Value: asNode(v[1])}
}

func (e *Engine) blockPass(v []any) any {
	return &ast.BlockPass{Base: e.pos(), Body: asNode(v[1])}
}

func blkPass(_ *Engine, v []any) any {
	return argBlockPass(asNode(v[0]), v[1])
}

func (e *Engine) argsSplatBlk(v []any) any {
	return argBlockPass(e.argConcat(asNode(v[0]), asNode(v[3])), v[4])
}

func (e *Engine) assocsBlk(v []any) any {
	return argBlockPass(e.newList(e.hash(asArray(v[0]))), v[1])
}

func (e *Engine) assocsSplatBlk(v []any) any {
	return argBlockPass(e.argConcat(e.newList(e.hash(asArray(v[0]))), asNode(v[3])), v[4])
}

func (e *Engine) argsAssocsBlk(v []any) any {
	return argBlockPass(listAppend(asArray(v[0]), e.hash(asArray(v[2]))), v[3])
}

func (e *Engine) argsAssocsSplatBlk(v []any) any {
	value := asNode(v[5])
	e.valueExpr(value)
	return argBlockPass(e.argConcat(listAppend(asArray(v[0]), e.hash(asArray(v[2]))), value), v[6])
}

func (e *Engine) splatBlk(v []any) any {
	return argBlockPass(&ast.Splat{Base: e.pos(), Value: asNode(v[1])}, v[2])
}

func (e *Engine) args2(v []any) any {
	return argBlockPass(listConcat(e.newList(asNode(v[0])), asArray(v[2])), v[3])
}

func (e *Engine) args2Blk(v []any) any {
	return argBlockPass(e.newList(asNode(v[0])), v[2])
}

func (e *Engine) args2Splat(v []any) any {
	return argBlockPass(e.argConcat(e.newList(asNode(v[0])), asNode(v[3])), v[4])
}

func (e *Engine) args2ArgsSplat(v []any) any {
	head := listConcat(e.newList(asNode(v[0])), asArray(v[2]))
	return argBlockPass(e.argConcat(head, asNode(v[5])), v[6])
}

func (e *Engine) args2Assocs(v []any) any {
	return argBlockPass(listAppend(e.newList(asNode(v[0])), e.hash(asArray(v[2]))), v[3])
}

func (e *Engine) args2ArgsAssocs(v []any) any {
	head := listConcat(e.newList(asNode(v[0])), asArray(v[2]))
	return argBlockPass(listAppend(head, e.hash(asArray(v[4]))), v[5])
}

func (e *Engine) args2AssocsSplat(v []any) any {
	head := listAppend(e.newList(asNode(v[0])), e.hash(asArray(v[2])))
	return argBlockPass(e.argConcat(head, asNode(v[5])), v[6])
}

func (e *Engine) args2All(v []any) any {
	head := listConcat(e.newList(asNode(v[0])), asArray(v[2]))
	head = listAppend(head, e.hash(asArray(v[4])))
	return argBlockPass(e.argConcat(head, asNode(v[7])), v[8])
}

// primaries

func (e *Engine) beginBody(v []any) any {
	body := asNode(v[1])
	if body == nil {
		return &ast.Nil{Base: e.pos()}
	}
	return &ast.Begin{Base: e.pos(), Body: body}
}

func (e *Engine) colon2(v []any) any {
	return &ast.Colon2{Base: e.pos(), Scope: asNode(v[0]), Name: asID(v[2])}
}

func (e *Engine) colon3(v []any) any {
	return &ast.Colon3{Base: e.pos(), Name: asID(v[1])}
}

func (e *Engine) cpathLocal(v []any) any {
	return &ast.Colon2{Base: e.pos(), Name: asID(v[0])}
}

func (e *Engine) cnameError(v []any) any {
	e.errorf("class/module name must be CONSTANT")
	return v[0]
}

func (e *Engine) aref(v []any) any {
	recv := asNode(v[0])
	if _, is := recv.(*ast.Self); is {
		return &ast.FCall{Base: e.pos(), Name: e.kw.aref, Args: asNode(v[2])}
	}
	return &ast.Call{Base: e.pos(), Recv: recv, Name: e.kw.aref, Args: asNode(v[2])}
}

func (e *Engine) array(v []any) any {
	n := asNode(v[1])
	if n == nil {
		return &ast.ZArray{Base: e.pos()}
	}
	return n
}

func (e *Engine) hashLit(v []any) any {
	return e.hash(asArray(v[1]))
}

func (e *Engine) assoc(v []any) any {
	b := e.pos()
	return &ast.Array{Base: b, Elems: []ast.Node{asNode(v[0]), asNode(v[2])}}
}

func assocsAppend(_ *Engine, v []any) any {
	return listConcat(asArray(v[0]), asArray(v[2]))
}

func (e *Engine) assocArgs(v []any) any {
	a := asArray(v[0])
	if a == nil {
		return nil
	}
	if len(a.Elems)%2 != 0 {
		e.errorf("odd number list for Hash")
	}
	return a
}

// control structures

func (e *Engine) ifStmt(v []any) any {
	return e.newIf(asNode(v[1]), asNode(v[3]), asNode(v[4]))
}

func (e *Engine) elsif(v []any) any {
	return e.newIf(asNode(v[1]), asNode(v[3]), asNode(v[4]))
}

func (e *Engine) unless(v []any) any {
	return e.newIf(asNode(v[1]), asNode(v[4]), asNode(v[3]))
}

func (e *Engine) while(v []any) any {
	return e.newLoop(false, asNode(v[2]), asNode(v[5]), false)
}

func (e *Engine) until(v []any) any {
	return e.newLoop(true, asNode(v[2]), asNode(v[5]), false)
}

func (e *Engine) condPush([]any) any {
	e.st.Cond.Push(true)
	return nil
}

func (e *Engine) condPop([]any) any {
	e.st.Cond.Pop()
	return nil
}

func (e *Engine) newCase(subject ast.Node, body any) ast.Node {
	c := &ast.Case{Base: e.pos(), Subject: subject}
	if w, is := body.(*whens); is {
		c.Whens = w.list
		c.Else = w.els
	}
	return c
}

func (e *Engine) caseStmt(v []any) any {
	subject := asNode(v[1])
	e.valueExpr(subject)
	return e.newCase(subject, v[3])
}

func (e *Engine) caseNoSubject(v []any) any {
	return e.newCase(nil, v[2])
}

func (e *Engine) caseElse(v []any) any {
	return &ast.Case{Base: e.pos(), Else: asNode(v[3])}
}

func (e *Engine) when(v []any) any {
	w := &ast.When{Base: e.pos(), Values: asNode(v[1]), Body: asNode(v[3])}
	if rest, is := v[4].(*whens); is {
		rest.list = append([]*ast.When{w}, rest.list...)
		return rest
	}
	return &whens{list: []*ast.When{w}, els: asNode(v[4])}
}

func (e *Engine) whenSplat(v []any) any {
	value := asNode(v[3])
	e.valueExpr(value)
	return e.argConcat(asNode(v[0]), value)
}

func (e *Engine) whenOnlySplat(v []any) any {
	value := asNode(v[1])
	e.valueExpr(value)
	return &ast.Splat{Base: e.pos(), Value: value}
}

func (e *Engine) forStmt(v []any) any {
	return &ast.For{Base: e.pos(), Vars: asNode(v[1]), Iter: asNode(v[4]), Body: asNode(v[7])}
}

func (e *Engine) rescue(v []any) any {
	body := asNode(v[4])
	if target := asNode(v[2]); target != nil {
		errInfo := &ast.GVar{Base: e.pos(), Name: e.names.Intern("$!")}
		body = e.blockAppend(e.nodeAssign(target, errInfo), body)
	}
	rb := &ast.ResBody{Base: e.pos(), Exceptions: asNode(v[1]), Body: body}
	rest, _ := v[5].([]*ast.ResBody)
	return append([]*ast.ResBody{rb}, rest...)
}

// definitions

func (e *Engine) classOpen([]any) any {
	if e.inMethod() {
		e.errorf("class definition in method body")
	}
	e.classNest++
	e.scope.Push(false)
	return e.line()
}

func (e *Engine) class(v []any) any {
	line, _ := v[3].(int)
	c := &ast.Class{
		Base:   e.posAt(line),
		Path:   asNode(v[1]),
		Super:  asNode(v[2]),
		Body:   asNode(v[4]),
		Locals: e.scope.Pop(),
	}
	e.classNest--
	return c
}

func (e *Engine) superclassError([]any) any {
	e.drv.Recover()
	return nil
}

func (e *Engine) sclassSave([]any) any {
	saved := e.inDef
	e.inDef = 0
	return saved
}

func (e *Engine) sclassOpen([]any) any {
	saved := e.inSingle
	e.inSingle = 0
	e.classNest++
	e.scope.Push(false)
	return saved
}

func (e *Engine) sclass(v []any) any {
	c := &ast.SClass{
		Base:   e.pos(),
		Recv:   asNode(v[2]),
		Body:   asNode(v[6]),
		Locals: e.scope.Pop(),
	}
	e.classNest--
	e.inDef, _ = v[3].(int)
	e.inSingle, _ = v[5].(int)
	return c
}

func (e *Engine) moduleOpen([]any) any {
	if e.inMethod() {
		e.errorf("module definition in method body")
	}
	e.classNest++
	e.scope.Push(false)
	return e.line()
}

func (e *Engine) module(v []any) any {
	line, _ := v[2].(int)
	m := &ast.Module{
		Base:   e.posAt(line),
		Path:   asNode(v[1]),
		Body:   asNode(v[3]),
		Locals: e.scope.Pop(),
	}
	e.classNest--
	return m
}

func (e *Engine) defOpen(v []any) any {
	if e.inMethod() {
		e.errorf("nested method definition")
	}
	saved := defOpen{mid: e.curMid, line: e.line()}
	e.curMid = asID(v[1])
	e.inDef++
	e.scope.Push(false)
	return saved
}

func (e *Engine) defn(v []any) any {
	open, _ := v[2].(defOpen)
	args, _ := v[3].(*ast.Args)
	d := &ast.Defn{
		Base:   e.posAt(open.line),
		Name:   asID(v[1]),
		Args:   args,
		Body:   asNode(v[4]),
		Locals: e.scope.Pop(),
	}
	e.inDef--
	e.curMid = open.mid
	return d
}

func (e *Engine) defsOpen(v []any) any {
	e.valueExpr(asNode(v[1]))
	e.inSingle++
	e.scope.Push(false)
	e.st.Set(lexstate.End)
	return e.line()
}

func (e *Engine) defs(v []any) any {
	line, _ := v[5].(int)
	args, _ := v[6].(*ast.Args)
	d := &ast.Defs{
		Base:   e.posAt(line),
		Recv:   asNode(v[1]),
		Name:   asID(v[4]),
		Args:   args,
		Body:   asNode(v[7]),
		Locals: e.scope.Pop(),
	}
	e.inSingle--
	return d
}

func (e *Engine) singleton(v []any) any {
	n := asNode(v[0])
	if _, is := n.(*ast.Self); !is {
		e.valueExpr(n)
	}
	return n
}

func (e *Engine) singletonParen(v []any) any {
	n := asNode(v[2])
	if n == nil {
		e.errorf("can't define singleton method for ().")
		return nil
	}
	e.checkLiteralReceiver(n)
	return n
}

// block parameters

func (e *Engine) blockVar(v []any) any {
	a := asArray(v[0])
	if a != nil && len(a.Elems) == 1 {
		return a.Elems[0]
	}
	return &ast.MAsgn{Base: e.pos(), Head: a}
}

func (e *Engine) blockVarPipe(v []any) any {
	e.st.CommandStart = true
	return v[1]
}

func (e *Engine) blockVarEmpty([]any) any {
	e.st.CommandStart = true
	return &ast.MAsgn{Base: e.pos()}
}

func (e *Engine) newBlockVar(blk ast.Node, vars ast.Node) ast.Node {
	return &ast.BlockVar{Base: e.pos(), Block: blk, Vars: vars}
}

func (e *Engine) blockVarBlk(v []any) any {
	return e.newBlockVar(asNode(v[3]), &ast.MAsgn{Base: e.pos(), Head: asArray(v[0])})
}

func (e *Engine) blockVarRestBlk(v []any) any {
	return e.newBlockVar(asNode(v[6]), &ast.MAsgn{Base: e.pos(), Head: asArray(v[0]), Rest: asNode(v[3])})
}

func (e *Engine) blockVarStarBlk(v []any) any {
	b := e.pos()
	return e.newBlockVar(asNode(v[5]), &ast.MAsgn{Base: b, Head: asArray(v[0]), Rest: &ast.Star{Base: b}})
}

func (e *Engine) blockVarRest(v []any) any {
	return &ast.MAsgn{Base: e.pos(), Head: asArray(v[0]), Rest: asNode(v[3])}
}

func (e *Engine) blockVarOnlyRestBlk(v []any) any {
	return e.newBlockVar(asNode(v[4]), &ast.MAsgn{Base: e.pos(), Rest: asNode(v[1])})
}

func (e *Engine) blockVarOnlyStarBlk(v []any) any {
	b := e.pos()
	return e.newBlockVar(asNode(v[3]), &ast.MAsgn{Base: b, Rest: &ast.Star{Base: b}})
}

func (e *Engine) blockVarOnlyBlk(v []any) any {
	return e.newBlockVar(asNode(v[1]), nil)
}

// formal arguments

func (e *Engine) fArglistParen(v []any) any {
	e.st.Set(lexstate.Beg)
	e.st.CommandStart = true
	return v[1]
}

func (e *Engine) newArgs(req any, opt any, rest any, blk any) *ast.Args {
	a := &ast.Args{Base: e.pos()}
	a.Required, _ = req.([]ident.ID)
	a.Optional, _ = opt.([]ast.Node)
	if r, is := rest.(restArg); is {
		a.Rest = r.id
		a.HasRest = true
	}
	a.Block, _ = blk.(*ast.BlockArg)
	return a
}

func (e *Engine) fArgsAll(v []any) any {
	return e.newArgs(v[0], v[2], v[4], v[5])
}

func (e *Engine) fArgsOpt(v []any) any {
	return e.newArgs(v[0], v[2], nil, v[3])
}

func (e *Engine) fArgsRest(v []any) any {
	return e.newArgs(v[0], nil, v[2], v[3])
}

func (e *Engine) fArgsReq(v []any) any {
	return e.newArgs(v[0], nil, nil, v[1])
}

func (e *Engine) fArgsOptRest(v []any) any {
	return e.newArgs(nil, v[0], v[2], v[3])
}

func (e *Engine) fArgsOnlyOpt(v []any) any {
	return e.newArgs(nil, v[0], nil, v[1])
}

func (e *Engine) fArgsOnlyRest(v []any) any {
	return e.newArgs(nil, nil, v[0], v[1])
}

func (e *Engine) fArgsOnlyBlk(v []any) any {
	return e.newArgs(nil, nil, nil, v[0])
}

func (e *Engine) fArgsEmpty([]any) any {
	return e.newArgs(nil, nil, nil, nil)
}

func (e *Engine) formalConst([]any) any {
	e.errorf("formal argument cannot be a constant")
	return ident.None
}

func (e *Engine) formalIVar([]any) any {
	e.errorf("formal argument cannot be an instance variable")
	return ident.None
}

func (e *Engine) formalGVar([]any) any {
	e.errorf("formal argument cannot be a global variable")
	return ident.None
}

func (e *Engine) formalCVar([]any) any {
	e.errorf("formal argument cannot be a class variable")
	return ident.None
}

// declareFormal adds a local variable for a formal argument, what names the argument kind in messages.
func (e *Engine) declareFormal(id ident.ID, what string) bool {
	if !e.names.IsLocal(id) {
		e.errorf("%s must be local variable", what)
		return false
	}
	if e.scope.Defined(id) {
		e.errorf("duplicate %s name", what)
		return false
	}
	e.scope.Cnt(id)
	return true
}

func (e *Engine) formalArg(v []any) any {
	id := asID(v[0])
	if !e.declareFormal(id, "argument") {
		return ident.None
	}
	return id
}

func fArg(_ *Engine, v []any) any {
	if id := asID(v[0]); id != ident.None {
		return []ident.ID{id}
	}
	return []ident.ID(nil)
}

func fArgAppend(_ *Engine, v []any) any {
	ids, _ := v[0].([]ident.ID)
	if id := asID(v[2]); id != ident.None {
		ids = append(ids, id)
	}
	return ids
}

func (e *Engine) fOpt(v []any) any {
	id := asID(v[0])
	if !e.names.IsLocal(id) {
		e.errorf("formal argument must be local variable")
	} else if e.scope.Defined(id) {
		e.errorf("duplicate optional argument name")
	}
	return e.assignable(id, asNode(v[2]))
}

func fOptarg(_ *Engine, v []any) any {
	return []ast.Node{asNode(v[0])}
}

func fOptargAppend(_ *Engine, v []any) any {
	nodes, _ := v[0].([]ast.Node)
	return append(nodes, asNode(v[2]))
}

func (e *Engine) fRestArg(v []any) any {
	id := asID(v[1])
	if !e.declareFormal(id, "rest argument") {
		return restArg{}
	}
	return restArg{id}
}

func fRestAnon(*Engine, []any) any {
	return restArg{}
}

func (e *Engine) fBlockArg(v []any) any {
	id := asID(v[1])
	e.declareFormal(id, "block argument")
	return &ast.BlockArg{Base: e.pos(), Name: id}
}

// literals

func (e *Engine) strings(v []any) any {
	n := asNode(v[0])
	if n == nil {
		return &ast.Str{Base: e.pos()}
	}
	return n
}

func (e *Engine) strConcat(v []any) any {
	return e.literalConcat(asNode(v[0]), asNode(v[1]))
}

func (e *Engine) symbol(v []any) any {
	e.st.Set(lexstate.End)
	return v[1]
}

func (e *Engine) symLit(v []any) any {
	return &ast.Lit{Base: e.pos(), Value: ast.Symbol(asID(v[0]))}
}

func (e *Engine) lit(v []any) any {
	l, _ := v[0].(ast.Literal)
	return &ast.Lit{Base: e.pos(), Value: l}
}

func (e *Engine) negLit(v []any) any {
	l, _ := v[1].(ast.Literal)
	return &ast.Lit{Base: e.pos(), Value: negateLiteral(l)}
}
