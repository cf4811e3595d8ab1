package bmap

import (
	"strings"
	"testing"

	. "github.com/ava12/rbparse/internal/test"
)

func TestEmptyMap(t *testing.T) {
	m := New[int](nil, nil)
	ExpectInt(t, 0, m.Len())
	ExpectInt(t, 0, m.MaxKeyLen())

	for _, key := range [][]byte{nil, {}, {1, 2, 3}} {
		v, found := m.Get(key)
		ExpectInt(t, 0, v)
		ExpectBool(t, false, found)
	}
}

func TestGet(t *testing.T) {
	m := New([]string{"foo", "bar", "", "fo"}, []int{1, 2, 3, 4})
	samples := []struct {
		key   string
		value int
		found bool
	}{
		{"foo", 1, true},
		{"bar", 2, true},
		{"", 3, true},
		{"fo", 4, true},
		{"f", 0, false},
		{"food", 0, false},
		{"baz", 0, false},
		{"xyz", 0, false},
	}

	for i, s := range samples {
		v, found := m.Get([]byte(s.key))
		if v != s.value || found != s.found {
			t.Errorf("sample #%d: expecting %d, %v, got %d, %v", i, s.value, s.found, v, found)
		}
	}
}

func TestKeyBufferReuse(t *testing.T) {
	m := New([]string{"abc"}, []string{"x"})
	buf := []byte("abc")
	v, found := m.Get(buf)
	Assert(t, found && v == "x", "abc not found")

	copy(buf, "xyz")
	_, found = m.Get(buf)
	ExpectBool(t, false, found)
	v, found = m.Get([]byte("abc"))
	Assert(t, found && v == "x", "stored key changed with lookup buffer")
}

func TestKeys(t *testing.T) {
	m := New([]string{"while", "do", "end"}, []bool{true, true, true})
	ExpectString(t, "do end while", strings.Join(m.Keys(), " "))
	ExpectInt(t, 5, m.MaxKeyLen())
	ExpectInt(t, 3, m.Len())
}

func TestLengthMismatch(t *testing.T) {
	defer func() {
		Assert(t, recover() != nil, "expecting panic")
	}()
	New([]string{"a"}, []int{})
}
