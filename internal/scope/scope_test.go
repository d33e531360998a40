package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestShadowing(t *testing.T) {
	parent := New[string, int]()
	if !parent.TryEmplace("x", 1) {
		t.Fatal("first insert must succeed")
	}
	if parent.TryEmplace("x", 2) {
		t.Error("re-inserting at the same level must fail")
	}

	child := parent.Extend()
	if !child.TryEmplace("x", 3) {
		t.Error("shadowing a parent entry must succeed")
	}
	if v, _ := child.Find("x"); v != 3 {
		t.Errorf("child should see its own binding, got %d", v)
	}
	if v, _ := parent.Find("x"); v != 1 {
		t.Errorf("parent binding must be unchanged, got %d", v)
	}
}

func TestSiblingsAreIndependent(t *testing.T) {
	root := New[string, int]()
	root.TryEmplace("a", 1)
	left := root.Extend()
	right := root.Extend()
	left.TryEmplace("b", 2)

	if right.Contains("b") {
		t.Error("sibling insertions must not be visible")
	}
	if root.Contains("b") {
		t.Error("child insertions must not be visible in the parent")
	}
	if v, ok := right.Find("a"); !ok || v != 1 {
		t.Error("parent entries must be visible from every child")
	}
}

func TestFindTerminates(t *testing.T) {
	m := New[string, int]().Extend().Extend()
	if _, ok := m.Find("missing"); ok {
		t.Error("lookup of a missing key must report not found")
	}
	if _, ok := m.FindLocal("missing"); ok {
		t.Error("local lookup of a missing key must report not found")
	}
}

type entry struct {
	K string
	V int
}

func collect(seq func(func(string, int) bool)) []entry {
	var out []entry
	for k, v := range seq {
		out = append(out, entry{k, v})
	}
	return out
}

func TestIterationOrder(t *testing.T) {
	root := New[string, int]()
	root.TryEmplace("a", 1)
	root.TryEmplace("b", 2)
	child := root.Extend()
	child.TryEmplace("c", 3)
	child.TryEmplace("a", 4)

	innerFirst := []entry{{"c", 3}, {"a", 4}, {"b", 2}}
	if diff := cmp.Diff(innerFirst, collect(child.All())); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
	declOrder := []entry{{"b", 2}, {"c", 3}, {"a", 4}}
	if diff := cmp.Diff(declOrder, collect(child.Ordered())); diff != "" {
		t.Errorf("Ordered() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplace(t *testing.T) {
	root := New[string, int]()
	root.TryEmplace("a", 1)
	child := root.Extend()
	if child.Replace("a", 2) {
		t.Error("Replace must not touch parent levels")
	}
	if !root.Replace("a", 3) {
		t.Error("Replace must succeed for an existing entry")
	}
	if v, _ := child.Find("a"); v != 3 {
		t.Errorf("expected replaced value, got %d", v)
	}
}
