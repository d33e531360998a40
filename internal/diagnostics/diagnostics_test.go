package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raffopazzo/depc-sub002/internal/token"
)

func TestErrorRendering(t *testing.T) {
	e := Errorf(ErrT007, token.Pos{Line: 3, Column: 9}, "division requires a proof of %s", "`b != 0`").
		WithReason(NewError(ErrT007, token.Pos{}, "search exhausted").
			WithReason(NewError(ErrT007, token.Pos{}, "no axiom applies")))
	e.SetFile("div.depc")

	want := "div.depc:3:9: [T007] division requires a proof of `b != 0`\n" +
		"  reason: search exhausted\n" +
		"    reason: no axiom applies"
	if diff := cmp.Diff(want, e.Error()); diff != "" {
		t.Errorf("Error() mismatch (-want +got):\n%s", diff)
	}
	if got := e.Headline(); got != "div.depc:3:9: [T007] division requires a proof of `b != 0`" {
		t.Errorf("unexpected headline %q", got)
	}
	if !e.Contains("no axiom") {
		t.Error("expected Contains to look into nested reasons")
	}
	if e.Contains("overflow") {
		t.Error("unexpected match")
	}
}

func TestSetFileKeepsExisting(t *testing.T) {
	e := NewError(ErrP002, token.Pos{Line: 1, Column: 1}, "unexpected token")
	e.SetFile("a.depc")
	e.SetFile("b.depc")
	if e.File != "a.depc" {
		t.Errorf("expected the first file to stick, got %q", e.File)
	}
}

func TestAsError(t *testing.T) {
	if AsError(nil, ErrT008, token.Pos{}) != nil {
		t.Error("expected nil for a nil error")
	}
	d := NewError(ErrT001, token.Pos{Line: 2, Column: 1}, "unknown name `x`")
	if got := AsError(fmt.Errorf("wrapped: %w", d), ErrT008, token.Pos{}); got != d {
		t.Errorf("expected the wrapped diagnostic back, got %v", got)
	}
	got := AsError(errors.New("boom"), ErrT008, token.Pos{Line: 5, Column: 2})
	if got.Code != ErrT008 || got.Message != "boom" || got.Pos.Line != 5 {
		t.Errorf("unexpected conversion %+v", got)
	}
}

func TestSort(t *testing.T) {
	errs := []*Error{
		{File: "b.depc", Pos: token.Pos{Line: 1, Column: 1}, Message: "b1"},
		{File: "a.depc", Pos: token.Pos{Line: 2, Column: 5}, Message: "a2"},
		{File: "a.depc", Pos: token.Pos{Line: 2, Column: 1}, Message: "a1"},
	}
	Sort(errs)
	var got []string
	for _, e := range errs {
		got = append(got, e.Message)
	}
	if diff := cmp.Diff([]string{"a1", "a2", "b1"}, got); diff != "" {
		t.Errorf("Sort mismatch (-want +got):\n%s", diff)
	}
}
