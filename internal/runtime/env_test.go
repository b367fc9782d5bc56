package runtime

import (
	"errors"
	"lox-lang/internal/token"
	"testing"
)

func ident(name string) token.Token {
	return token.Token{Kind: token.IDENT, Lexeme: name, Pos: token.Pos{Line: 1, Column: 1}}
}

func TestEnvironmentDefineOverwrites(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("a", NumberVal(1))
	env.Define("a", NumberVal(2))
	got, err := env.Get(ident("a"))
	if err != nil || got != NumberVal(2) {
		t.Errorf("expected 2, got %v (%v)", got, err)
	}
}

func TestEnvironmentGetWalksChain(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", StringVal("outer"))
	inner := NewEnvironment(NewEnvironment(outer))
	got, err := inner.Get(ident("a"))
	if err != nil || got != StringVal("outer") {
		t.Errorf("expected outer, got %v (%v)", got, err)
	}
}

func TestEnvironmentUndefined(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Get(ident("missing"))
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Message != "Undefined variable 'missing'." {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
	if err := env.Assign(ident("missing"), NilVal{}); err == nil {
		t.Error("assign must not create a binding")
	}
	if _, err := env.Get(ident("missing")); err == nil {
		t.Error("failed assign created a binding")
	}
}

func TestEnvironmentAssignFindsEnclosing(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NumberVal(1))
	inner := NewEnvironment(outer)
	if err := inner.Assign(ident("a"), NumberVal(5)); err != nil {
		t.Fatal(err)
	}
	if got := outer.GetAt(0, "a"); got != NumberVal(5) {
		t.Errorf("expected outer binding updated, got %v", got)
	}
	if _, ok := inner.values["a"]; ok {
		t.Error("assign created a binding in the inner frame")
	}
}

func TestEnvironmentAtDistance(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("a", StringVal("global"))
	middle := NewEnvironment(global)
	middle.Define("a", StringVal("middle"))
	inner := NewEnvironment(middle)

	if inner.Ancestor(2) != global || inner.Ancestor(0) != inner {
		t.Fatal("ancestor walked the wrong number of links")
	}
	if got := inner.GetAt(2, "a"); got != StringVal("global") {
		t.Errorf("expected global, got %v", got)
	}
	inner.AssignAt(1, ident("a"), StringVal("changed"))
	if got := middle.GetAt(0, "a"); got != StringVal("changed") {
		t.Errorf("expected middle updated, got %v", got)
	}
	if got := global.GetAt(0, "a"); got != StringVal("global") {
		t.Errorf("global must be untouched, got %v", got)
	}
}

func TestValueHelpers(t *testing.T) {
	if IsTruthy(NilVal{}) || IsTruthy(BoolVal(false)) {
		t.Error("nil and false must be falsy")
	}
	if !IsTruthy(NumberVal(0)) || !IsTruthy(StringVal("")) {
		t.Error("0 and empty string must be truthy")
	}
	if valuesEqual(NumberVal(0), BoolVal(false)) {
		t.Error("equality must not coerce across kinds")
	}
	if NumberVal(2.5).String() != "2.5" || NumberVal(-0.5).String() != "-0.5" {
		t.Error("unexpected number rendering")
	}
}
