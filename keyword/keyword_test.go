package keyword

import (
	"testing"

	"github.com/ava12/rbparse/internal/test"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/token"
)

func TestLookup(t *testing.T) {
	samples := []struct {
		text    string
		primary token.Kind
		second  token.Kind
		state   lexstate.State
	}{
		{"if", token.KwIf, token.KwIfMod, lexstate.Beg},
		{"rescue", token.KwRescue, token.KwRescueMod, lexstate.Mid},
		{"def", token.KwDef, token.KwDef, lexstate.FName},
		{"defined?", token.KwDefined, token.KwDefined, lexstate.Arg},
		{"__FILE__", token.KwFile, token.KwFile, lexstate.End},
		{"class", token.KwClass, token.KwClass, lexstate.Class},
	}

	for i, s := range samples {
		e := Lookup([]byte(s.text))
		if e == nil {
			t.Errorf("sample #%d: %q not found", i, s.text)
			continue
		}
		if e.ID[0] != s.primary || e.ID[1] != s.second || e.State != s.state {
			t.Errorf("sample #%d: unexpected entry %+v", i, *e)
		}
	}
}

func TestNotKeywords(t *testing.T) {
	for _, text := range []string{"", "If", "defined", "foo", "ends", "__END__"} {
		test.Assert(t, Lookup([]byte(text)) == nil, "%q must not be a keyword", text)
	}
}

func TestTableSize(t *testing.T) {
	test.ExpectInt(t, 40, Len())
	seen := map[string]bool{}
	for _, e := range All() {
		test.Assert(t, !seen[e.Name], "duplicate keyword %q", e.Name)
		seen[e.Name] = true
	}
}
