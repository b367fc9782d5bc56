package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"strings"
	"testing"
	"time"
)

// runSource parses, resolves and executes source code, returning captured
// stdout and any error. Static errors are joined into one error value.
func runSource(source string) (string, error) {
	var buf bytes.Buffer
	err := runWith(NewInterpreter(&buf), source)
	return buf.String(), err
}

func runWith(interp *Interpreter, source string) error {
	tokens, lexDiags := lexer.New(source).Tokenize()
	stmts, parseDiags := parser.New(tokens).Parse()
	if diags := append(lexDiags, parseDiags...); len(diags) > 0 {
		return staticError(diags)
	}
	diags, err := interp.Run(stmts)
	if diag.HasErrors(diags) {
		return staticError(diag.Errors(diags))
	}
	return err
}

func staticError(diags []diag.Diagnostic) error {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func expectOutput(t *testing.T, source, expected string) {
	t.Helper()
	out, err := runSource(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source, contains string) {
	t.Helper()
	_, err := runSource(source)
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got: %v", contains, err)
	}
}

// ---- Values and printing ----

func TestPrintNumbers(t *testing.T) {
	expectOutput(t, `print 4.0;`, "4\n")
	expectOutput(t, `print 4.5;`, "4.5\n")
	expectOutput(t, `print 10 / 4;`, "2.5\n")
	expectOutput(t, `print -3;`, "-3\n")
	expectOutput(t, `print 1000000;`, "1000000\n")
	expectOutput(t, `print 123456789012345;`, "123456789012345\n")
	expectOutput(t, `print 0.0001;`, "0.0001\n")
}

func TestPrintNumbersExponentForm(t *testing.T) {
	expectOutput(t, `print 100000000000000000000000;`, "1E+23\n")
	expectOutput(t, `print 1234567890123456;`, "1.234567890123456E+15\n")
	expectOutput(t, `print 0.00001;`, "1E-05\n")
	expectOutput(t, `print -0.000025;`, "-2.5E-05\n")
}

func TestPrintOtherValues(t *testing.T) {
	expectOutput(t, `
print nil;
print true;
print "text";
fun f() {}
print f;
print clock;
class Bagel {}
print Bagel;
print Bagel();
`, "nil\ntrue\ntext\n<fn f>\n<native fn>\nBagel\nBagel instance\n")
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, `print 1 + 2 * 3;`, "7\n")
	expectOutput(t, `print (1 + 2) * 3;`, "9\n")
	expectOutput(t, `print 10 - 2 - 3;`, "5\n")
	expectOutput(t, `print 1 + 1;`, "2\n")
}

func TestStringConcat(t *testing.T) {
	expectOutput(t, `print "a" + "b";`, "ab\n")
}

func TestComparison(t *testing.T) {
	expectOutput(t, `print 1 < 2; print 2 <= 2; print 3 > 4; print 3 >= 4;`, "true\ntrue\nfalse\nfalse\n")
}

func TestEquality(t *testing.T) {
	expectOutput(t, `
print nil == nil;
print nil == false;
print 0 == false;
print "a" == "a";
print 1 == 1;
print "1" == 1;
print true != false;
`, "true\nfalse\nfalse\ntrue\ntrue\nfalse\ntrue\n")
}

func TestEqualityNaN(t *testing.T) {
	expectOutput(t, `
var n = 0 / 0;
var m = n;
print n == n;
print n != m;
print n == 0;
`, "true\nfalse\nfalse\n")
}

func TestEqualityByIdentity(t *testing.T) {
	expectOutput(t, `
class A {}
var a = A();
var b = A();
print a == a;
print a == b;
`, "true\nfalse\n")
}

func TestTruthiness(t *testing.T) {
	expectOutput(t, `
if (0) print "zero";
if ("") print "empty";
if (nil) print "nil"; else print "nil is falsy";
if (!false) print "not false";
`, "zero\nempty\nnil is falsy\nnot false\n")
}

func TestLogicalReturnsOperand(t *testing.T) {
	expectOutput(t, `
print nil or "yes";
print "first" or "second";
print nil and "never";
print 1 and 2;
`, "yes\nfirst\nnil\n2\n")
}

func TestLogicalShortCircuit(t *testing.T) {
	expectOutput(t, `
var hits = 0;
fun touch() { hits = hits + 1; return true; }
true or touch();
false and touch();
print hits;
`, "0\n")
}

// ---- Variables and scope ----

func TestBlockShadowing(t *testing.T) {
	expectOutput(t, `var x = 1; { var x = 2; print x; } print x;`, "2\n1\n")
}

func TestAssignmentIsExpression(t *testing.T) {
	expectOutput(t, `var a; var b; a = b = 3; print a; print b;`, "3\n3\n")
}

func TestGlobalRedeclaration(t *testing.T) {
	expectOutput(t, `var a = 1; var a = 2; print a;`, "2\n")
}

func TestEvaluationOrder(t *testing.T) {
	expectOutput(t, `
fun show(x) { print x; return x; }
show(1) + show(2);
fun three(a, b, c) {}
three(show("a"), show("b"), show("c"));
`, "1\n2\na\nb\nc\n")
}

func TestStaticResolutionIgnoresLaterGlobals(t *testing.T) {
	expectOutput(t, `
var a = "global";
{
  fun showA() { print a; }
  showA();
  var a = "block";
  showA();
  print a;
}
`, "global\nglobal\nblock\n")
}

func TestControlFlow(t *testing.T) {
	expectOutput(t, `
var i = 0;
while (i < 3) { print i; i = i + 1; }
for (var j = 0; j < 2; j = j + 1) print j;
if (i == 3) print "done"; else print "no";
`, "0\n1\n2\n0\n1\ndone\n")
}

// ---- Functions and closures ----

func TestRecursion(t *testing.T) {
	expectOutput(t, `
fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
print fib(10);
`, "55\n")
}

func TestClosureCounter(t *testing.T) {
	expectOutput(t, `
fun make() { var i = 0; fun inc() { i = i + 1; return i; } return inc; }
var c = make();
print c();
print c();
`, "1\n2\n")
}

func TestClosuresAreIndependent(t *testing.T) {
	expectOutput(t, `
fun make() { var i = 0; fun inc() { i = i + 1; return i; } return inc; }
var a = make();
var b = make();
a(); a();
print a();
print b();
`, "3\n1\n")
}

func TestReturnUnwindsLoops(t *testing.T) {
	expectOutput(t, `
fun find() {
  var i = 0;
  while (true) {
    { if (i == 4) return i; }
    i = i + 1;
  }
}
print find();
`, "4\n")
}

func TestFunctionWithoutReturnYieldsNil(t *testing.T) {
	expectOutput(t, `fun f() {} print f();`, "nil\n")
}

func TestClock(t *testing.T) {
	restore := now
	defer func() { now = restore }()
	now = func() time.Time { return time.Unix(1700000000, 500000000) }
	expectOutput(t, `print clock();`, "1700000000.5\n")
}

// ---- Classes ----

func TestFieldsAndMethods(t *testing.T) {
	expectOutput(t, `
class Counter {
  init(start) { this.n = start; }
  inc() { this.n = this.n + 1; return this; }
}
var c = Counter(5);
c.inc().inc();
print c.n;
`, "7\n")
}

func TestMethodBindingIsPerInstance(t *testing.T) {
	expectOutput(t, `
class Box {
  init(v) { this.v = v; }
  get() { return this.v; }
}
var a = Box("a");
var b = Box("b");
var getA = a.get;
b.v = "changed";
print getA();
print b.get();
`, "a\nchanged\n")
}

func TestInitializerReturnsInstance(t *testing.T) {
	expectOutput(t, `
class Foo {
  init() { this.x = 1; return; }
}
var foo = Foo();
print foo.init() == foo;
print foo.x;
`, "true\n1\n")
}

func TestInheritedInit(t *testing.T) {
	expectOutput(t, `
class A { init(x) { this.x = x; } }
class B < A {}
print B(3).x;
`, "3\n")
}

func TestSuperDispatchesToImmediateSuperclass(t *testing.T) {
	expectOutput(t, `
class A { method() { print "A"; } }
class B < A { method() { print "B"; } test() { super.method(); } }
class C < B {}
C().test();
`, "A\n")
}

func TestSuperInOverride(t *testing.T) {
	expectOutput(t, `
class Doughnut { cook() { print "Fry until golden brown."; } }
class BostonCream < Doughnut {
  cook() { super.cook(); print "Pipe full of custard."; }
}
BostonCream().cook();
`, "Fry until golden brown.\nPipe full of custard.\n")
}

func TestClassSelfReferenceInMethod(t *testing.T) {
	expectOutput(t, `
class Node {
  make() { return Node(); }
}
print Node().make();
`, "Node instance\n")
}

// ---- Runtime errors ----

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"negate string", `-"a";`, "Operand must be a number.\n[line 1]"},
		{"subtract string", `1 - "a";`, "Operands must be numbers.\n[line 1]"},
		{"mixed plus", `"a" + 1;`, "Operands must be two numbers or two strings.\n[line 1]"},
		{"call non-callable", `"x"();`, "Can only call functions and classes.\n[line 1]"},
		{"arity", `fun f(a) {} f();`, "Expected 1 arguments but got 0.\n[line 1]"},
		{"property on non-instance", `var a = 1; a.b;`, "Only instances have properties.\n[line 1]"},
		{"field on non-instance", `var a = 1; a.b = 2;`, "Only instances have fields.\n[line 1]"},
		{"undefined property", `class A {} A().b;`, "Undefined property 'b'.\n[line 1]"},
		{"undefined variable", `print nope;`, "Undefined variable 'nope'.\n[line 1]"},
		{"assign undefined", `nope = 1;`, "Undefined variable 'nope'.\n[line 1]"},
		{"superclass not class", `var A = 1; class B < A {}`, "Superclass must be a class.\n[line 1]"},
		{"inherited init arity", `class A { init(a, b) {} } class B < A {} B(1);`, "Expected 2 arguments but got 1.\n[line 1]"},
		{"default class arity", `class A {} A(1);`, "Expected 0 arguments but got 1.\n[line 1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runSource(tt.source)
			var rtErr *RuntimeError
			if !errors.As(err, &rtErr) {
				t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
			}
			if rtErr.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, rtErr.Error())
			}
		})
	}
}

func TestRuntimeErrorLine(t *testing.T) {
	_, err := runSource("print 1;\n\nprint -nil;")
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Token.Pos.Line != 3 {
		t.Fatalf("expected runtime error on line 3, got %v", err)
	}
}

func TestRuntimeErrorKeepsPriorEffects(t *testing.T) {
	out, err := runSource(`print "before"; print nope; print "after";`)
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if out != "before\n" {
		t.Errorf("expected only output before the error, got %q", out)
	}
}

func TestRuntimeErrorRestoresEnvironment(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	if err := runWith(interp, `fun f() { { { nope; } } } f();`); err == nil {
		t.Fatal("expected runtime error")
	}
	if interp.env != interp.Globals() {
		t.Error("current environment was not restored after the error")
	}
	if err := runWith(interp, `var ok = "fine"; print ok;`); err != nil {
		t.Fatalf("next input must run cleanly: %v", err)
	}
	if buf.String() != "fine\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

// ---- Static errors and the REPL-style session ----

func TestStaticErrorPreventsExecution(t *testing.T) {
	out, err := runSource(`print "side effect"; { var a = 1; var a = 2; }`)
	if err == nil || !strings.Contains(err.Error(), "Already a variable with this name in this scope.") {
		t.Fatalf("expected static error, got %v", err)
	}
	if out != "" {
		t.Errorf("nothing may execute after a static error, got %q", out)
	}
}

func TestStaticErrors(t *testing.T) {
	expectError(t, `return 1;`, "Can't return from top-level code.")
	expectError(t, `{ var a = a; }`, "Can't read local variable in its own initializer.")
	expectError(t, `class A < A {}`, "A class can't inherit from itself.")
	expectError(t, `print this;`, "Can't use 'this' outside of a class.")
}

func TestWarningsDoNotBlockExecution(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	tokens, _ := lexer.New(`{ var unused = 1; print "ran"; }`).Tokenize()
	stmts, _ := parser.New(tokens).Parse()
	diags, err := interp.Run(stmts)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if len(diags) != 1 || diags[0].Severity != diag.Warning {
		t.Errorf("expected one warning, got %v", diags)
	}
	if buf.String() != "ran\n" {
		t.Errorf("expected program to run, got %q", buf.String())
	}
}

func TestSessionPersistsAcrossInputs(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	inputs := []string{
		`var a = 1;`,
		`fun show() { print a; }`,
		`var a = 2;`,
		`show();`,
		`{ var b = "local"; fun f() { print b; } f(); }`,
	}
	for _, in := range inputs {
		if err := runWith(interp, in); err != nil {
			t.Fatalf("input %q failed: %v", in, err)
		}
	}
	if buf.String() != "2\nlocal\n" {
		t.Errorf("unexpected session output %q", buf.String())
	}
}
