// Package token defines token kinds shared by lexer, grammar and parser.
// Single-character tokens use their character code as kind, named tokens start at 257.
package token

import "strconv"

type Kind int

const (
	EOF   Kind = 0
	Error Kind = 256
)

const (
	KwClass Kind = 257 + iota
	KwModule
	KwDef
	KwUndef
	KwBegin
	KwRescue
	KwEnsure
	KwEnd
	KwIf
	KwUnless
	KwThen
	KwElsif
	KwElse
	KwCase
	KwWhen
	KwWhile
	KwUntil
	KwFor
	KwBreak
	KwNext
	KwRedo
	KwRetry
	KwIn
	KwDo
	KwDoCond
	KwDoBlock
	KwReturn
	KwYield
	KwSuper
	KwSelf
	KwNil
	KwTrue
	KwFalse
	KwAnd
	KwOr
	KwNot
	KwIfMod
	KwUnlessMod
	KwWhileMod
	KwUntilMod
	KwRescueMod
	KwAlias
	KwDefined
	KwLBegin
	KwLEnd
	KwLine
	KwFile

	Identifier
	FID
	GVar
	IVar
	Constant
	CVar
	Integer
	Float
	String
	DString
	XString
	DXString
	Regexp
	DRegexp
	Words
	QWords
	DSym
	NthRef
	BackRef
	UPlus
	UMinus
	UMinusNum
	Pow
	Cmp
	Eq
	Eqq
	Neq
	Geq
	Leq
	AndOp
	OrOp
	Match
	NMatch
	Dot
	Dot2
	Dot3
	ARef
	ASet
	LShift
	RShift
	Colon2
	Colon3
	OpAsgn
	Assoc
	LParen
	LParen2
	RParen
	LParenArg
	LBrack
	RBrack
	LBrace
	LBraceArg
	Star
	Star2
	Amper
	Amper2
	Tilde
	Percent
	Divide
	Plus
	Minus
	Lt
	Gt
	Pipe
	Bang
	Caret
	LCurly
	RCurly
	BackRef2
	SymBeg
	Lowest

	maxKind
)

// MaxKind is the largest token kind.
const MaxKind = maxKind - 1

var names = [...]string{
	"kCLASS", "kMODULE", "kDEF", "kUNDEF", "kBEGIN", "kRESCUE", "kENSURE", "kEND",
	"kIF", "kUNLESS", "kTHEN", "kELSIF", "kELSE", "kCASE", "kWHEN", "kWHILE",
	"kUNTIL", "kFOR", "kBREAK", "kNEXT", "kREDO", "kRETRY", "kIN", "kDO",
	"kDO_COND", "kDO_BLOCK", "kRETURN", "kYIELD", "kSUPER", "kSELF", "kNIL", "kTRUE",
	"kFALSE", "kAND", "kOR", "kNOT", "kIF_MOD", "kUNLESS_MOD", "kWHILE_MOD", "kUNTIL_MOD",
	"kRESCUE_MOD", "kALIAS", "kDEFINED", "klBEGIN", "klEND", "k__LINE__", "k__FILE__",

	"tIDENTIFIER", "tFID", "tGVAR", "tIVAR", "tCONSTANT", "tCVAR", "tINTEGER", "tFLOAT",
	"tSTRING", "tDSTRING", "tXSTRING", "tDXSTRING", "tREGEXP", "tDREGEXP", "tWORDS", "tQWORDS",
	"tDSYM", "tNTH_REF", "tBACK_REF", "tUPLUS", "tUMINUS", "tUMINUS_NUM", "tPOW", "tCMP",
	"tEQ", "tEQQ", "tNEQ", "tGEQ", "tLEQ", "tANDOP", "tOROP", "tMATCH",
	"tNMATCH", "tDOT", "tDOT2", "tDOT3", "tAREF", "tASET", "tLSHFT", "tRSHFT",
	"tCOLON2", "tCOLON3", "tOP_ASGN", "tASSOC", "tLPAREN", "tLPAREN2", "tRPAREN", "tLPAREN_ARG",
	"tLBRACK", "tRBRACK", "tLBRACE", "tLBRACE_ARG", "tSTAR", "tSTAR2", "tAMPER", "tAMPER2",
	"tTILDE", "tPERCENT", "tDIVIDE", "tPLUS", "tMINUS", "tLT", "tGT", "tPIPE",
	"tBANG", "tCARET", "tLCURLY", "tRCURLY", "tBACK_REF2", "tSYMBEG", "tLOWEST",
}

var byName map[string]Kind

func init() {
	if len(names) != int(maxKind-KwClass) {
		panic("token: name table does not match kinds")
	}

	byName = make(map[string]Kind, len(names)+2)
	for i, n := range names {
		byName[n] = KwClass + Kind(i)
	}
	byName["error"] = Error
	byName["$end"] = EOF
}

// Name returns grammar name of token kind: named tokens use their declared names,
// single-character tokens are quoted the way grammar description quotes them.
func Name(k Kind) string {
	switch {
	case k == EOF:
		return "$end"
	case k == Error:
		return "error"
	case k >= KwClass && k < maxKind:
		return names[k-KwClass]
	case k > 0 && k < 256:
		return QuoteChar(byte(k))
	default:
		return "[unknown " + strconv.Itoa(int(k)) + "]"
	}
}

// QuoteChar returns grammar notation for single-character token.
func QuoteChar(c byte) string {
	switch c {
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	case '\\':
		return `'\\'`
	case '\'':
		return `'\''`
	}
	if c < ' ' || c > '~' {
		return "'\\x" + strconv.FormatInt(int64(c)|0x100, 16)[1:] + "'"
	}
	return "'" + string(rune(c)) + "'"
}

// Lookup returns token kind by its grammar name. Quoted single characters are accepted too.
func Lookup(name string) (Kind, bool) {
	if k, found := byName[name]; found {
		return k, true
	}

	if len(name) >= 3 && name[0] == '\'' && name[len(name)-1] == '\'' {
		body := name[1 : len(name)-1]
		if len(body) == 1 {
			return Kind(body[0]), true
		}
		if len(body) == 2 && body[0] == '\\' {
			switch body[1] {
			case 'n':
				return '\n', true
			case 't':
				return '\t', true
			case '\\', '\'':
				return Kind(body[1]), true
			}
		}
		if len(body) == 4 && body[0] == '\\' && body[1] == 'x' {
			v, e := strconv.ParseUint(body[2:], 16, 8)
			if e == nil && v > 0 {
				return Kind(v), true
			}
		}
	}
	return 0, false
}

// Registry adapts Lookup for grammar description parsing.
type Registry struct{}

func (Registry) Lookup(name string) (int, bool) {
	k, found := Lookup(name)
	return int(k), found
}

func (Registry) Name(kind int) string {
	return Name(Kind(kind))
}

func (Registry) MaxKind() int {
	return int(MaxKind)
}

func (k Kind) String() string {
	return Name(k)
}
