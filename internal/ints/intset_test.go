package ints

import (
	"fmt"
	"testing"

	. "github.com/ava12/rbparse/internal/test"
)

func expectItems(t *testing.T, s *Set, items ...int) {
	t.Helper()
	ExpectString(t, fmt.Sprint(items), fmt.Sprint(s.ToSlice()))
}

func TestEmpty(t *testing.T) {
	s := NewSet()
	ExpectBool(t, true, s.IsEmpty())
	ExpectInt(t, 0, s.Len())
	ExpectBool(t, false, s.Contains(0))
	ExpectBool(t, false, s.Contains(-1))
	expectItems(t, s)

	s.Add(100).Remove(100)
	ExpectBool(t, true, s.IsEmpty())
}

func TestAddRemove(t *testing.T) {
	samples := []struct {
		add, remove, expected []int
	}{
		{[]int{1, 2, 3}, nil, []int{1, 2, 3}},
		{[]int{3, 1, 3, 2}, []int{2}, []int{1, 3}},
		{[]int{0, 63, 64, 65, 300}, []int{64, 1000, -5}, []int{0, 63, 65, 300}},
		{[]int{5}, []int{5}, []int{}},
	}

	for i, s := range samples {
		set := NewSet(s.add...).Remove(s.remove...)
		got := set.ToSlice()
		if fmt.Sprint(got) != fmt.Sprint(s.expected) {
			t.Errorf("sample #%d: expecting %v, got %v", i, s.expected, got)
		}
		if set.Len() != len(s.expected) {
			t.Errorf("sample #%d: expecting length %d, got %d", i, len(s.expected), set.Len())
		}
	}
}

func TestNegativePanics(t *testing.T) {
	defer func() {
		Assert(t, recover() != nil, "expecting panic")
	}()
	NewSet(-1)
}

func TestAddSet(t *testing.T) {
	s := NewSet(1, 2)
	ExpectBool(t, true, s.AddSet(NewSet(2, 200)))
	expectItems(t, s, 1, 2, 200)
	ExpectBool(t, false, s.AddSet(NewSet(1, 200)))
	ExpectBool(t, false, s.AddSet(NewSet()))

	small := NewSet(3)
	ExpectBool(t, true, small.AddSet(s))
	expectItems(t, small, 1, 2, 3, 200)
	expectItems(t, s, 1, 2, 200)
}

func TestCopy(t *testing.T) {
	s := NewSet(1, 70)
	c := s.Copy()
	c.Add(2)
	s.Remove(70)
	expectItems(t, s, 1)
	expectItems(t, c, 1, 2, 70)
}

func TestEqual(t *testing.T) {
	samples := []struct {
		a, b  *Set
		equal bool
	}{
		{NewSet(), NewSet(), true},
		{NewSet(1, 2), NewSet(2, 1), true},
		{NewSet(1, 200).Remove(200), NewSet(1), true},
		{NewSet(1), NewSet(1, 200), false},
		{NewSet(1), NewSet(2), false},
	}

	for i, s := range samples {
		if s.a.IsEqual(s.b) != s.equal || s.b.IsEqual(s.a) != s.equal {
			t.Errorf("sample #%d: expecting %v", i, s.equal)
		}
	}
}
