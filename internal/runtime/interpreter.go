package runtime

import (
	"errors"
	"fmt"
	"io"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/resolver"
	"lox-lang/internal/token"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation. Token locates it.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Pos.Line)
}

func runtimeErr(tok token.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it. The global environment and the
// resolver's depth map persist across calls, so a REPL can feed it one input
// at a time.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  resolver.Locals
	output  io.Writer
}

// NewInterpreter creates a new interpreter with built-in functions registered.
// print statements write to output.
func NewInterpreter(output io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	RegisterBuiltins(globals)
	return &Interpreter{
		globals: globals,
		env:     globals,
		locals:  make(resolver.Locals),
		output:  output,
	}
}

// Globals returns the global environment.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Locals returns the depth map shared by every Resolve call.
func (i *Interpreter) Locals() resolver.Locals {
	return i.locals
}

// Resolve runs static resolution over stmts, recording into the
// interpreter's depth map.
func (i *Interpreter) Resolve(stmts []ast.Stmt) []diag.Diagnostic {
	return resolver.New(i.locals).Resolve(stmts)
}

// Interpret executes resolved statements. The first runtime error stops
// execution and is returned as a *RuntimeError; effects before it remain.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if _, err := i.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Run resolves and then executes stmts. Nothing executes when resolution
// reports an error; warnings are returned but do not block execution.
func (i *Interpreter) Run(stmts []ast.Stmt) ([]diag.Diagnostic, error) {
	diags := i.Resolve(stmts)
	if diag.HasErrors(diags) {
		return diags, nil
	}
	return diags, i.Interpret(stmts)
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Expr)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, Stringify(val))
		return resultNone, nil

	case *ast.VarDeclStmt:
		var val Value = NilVal{}
		if s.Init != nil {
			v, err := i.evalExpr(s.Init)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		i.env.Define(s.Name.Lexeme, val)
		return resultNone, nil

	case *ast.BlockStmt:
		return i.execBlock(s.Stmts, NewEnvironment(i.env))

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.FuncDecl:
		i.env.Define(s.Name.Lexeme, &Function{Decl: s, Closure: i.env})
		return resultNone, nil

	case *ast.ReturnStmt:
		var val Value = NilVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.ClassDecl:
		return i.execClassDecl(s)

	default:
		return resultNone, fmt.Errorf("unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}
	if IsTruthy(cond) {
		return i.execStmt(s.Then)
	}
	if s.Else != nil {
		return i.execStmt(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			break
		}

		result, err := i.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return
		}
	}
	return resultNone, nil
}

// execBlock runs stmts with blockEnv as the current environment. The
// previous environment is restored on every exit path.
func (i *Interpreter) execBlock(stmts []ast.Stmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execClassDecl(s *ast.ClassDecl) (ExecResult, error) {
	var superclass *Class
	if s.Superclass != nil {
		val, err := i.evalExpr(s.Superclass)
		if err != nil {
			return resultNone, err
		}
		cls, ok := val.(*Class)
		if !ok {
			return resultNone, runtimeErr(s.Superclass.Name, "Superclass must be a class.")
		}
		superclass = cls
	}

	// Defined first so methods can refer to the class by name.
	i.env.Define(s.Name.Lexeme, NilVal{})

	closure := i.env
	if superclass != nil {
		closure = NewEnvironment(i.env)
		closure.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, method := range s.Methods {
		methods[method.Name.Lexeme] = &Function{
			Decl:          method,
			Closure:       closure,
			IsInitializer: method.Name.Lexeme == "init",
		}
	}

	cls := &Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	if err := i.env.Assign(s.Name, cls); err != nil {
		return resultNone, err
	}
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NumberVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.NilLiteral:
		return NilVal{}, nil

	case *ast.GroupingExpr:
		return i.evalExpr(e.Expr)

	case *ast.VariableExpr:
		return i.lookUpVariable(e.Name, e)

	case *ast.AssignExpr:
		val, err := i.evalExpr(e.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := i.locals[e]; ok {
			i.env.AssignAt(distance, e.Name, val)
		} else if err := i.globals.Assign(e.Name, val); err != nil {
			return nil, err
		}
		return val, nil

	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.LogicalExpr:
		return i.evalLogical(e)
	case *ast.CallExpr:
		return i.evalCall(e)

	case *ast.GetExpr:
		obj, err := i.evalExpr(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, runtimeErr(e.Name, "Only instances have properties.")
		}
		return instance.Get(e.Name)

	case *ast.SetExpr:
		obj, err := i.evalExpr(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, runtimeErr(e.Name, "Only instances have fields.")
		}
		val, err := i.evalExpr(e.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(e.Name, val)
		return val, nil

	case *ast.ThisExpr:
		return i.lookUpVariable(e.Keyword, e)

	case *ast.SuperExpr:
		return i.evalSuper(e)

	default:
		return nil, fmt.Errorf("unhandled expression type: %T", expr)
	}
}

// lookUpVariable reads a resolved local by distance, or a global by name.
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (Value, error) {
	if distance, ok := i.locals[expr]; ok {
		return i.env.GetAt(distance, name.Lexeme), nil
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.BANG:
		return BoolVal(!IsTruthy(right)), nil
	case token.MINUS:
		n, ok := right.(NumberVal)
		if !ok {
			return nil, runtimeErr(e.Op, "Operand must be a number.")
		}
		return -n, nil
	default:
		return nil, runtimeErr(e.Op, "unknown unary operator '%s'", e.Op.Lexeme)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.EQUAL_EQUAL:
		return BoolVal(valuesEqual(left, right)), nil
	case token.BANG_EQUAL:
		return BoolVal(!valuesEqual(left, right)), nil

	case token.PLUS:
		if l, ok := left.(NumberVal); ok {
			if r, ok := right.(NumberVal); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(StringVal); ok {
			if r, ok := right.(StringVal); ok {
				return l + r, nil
			}
		}
		return nil, runtimeErr(e.Op, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(NumberVal)
	r, rok := right.(NumberVal)
	if !lok || !rok {
		return nil, runtimeErr(e.Op, "Operands must be numbers.")
	}

	switch e.Op.Kind {
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		return l / r, nil
	case token.GREATER:
		return BoolVal(l > r), nil
	case token.GREATER_EQUAL:
		return BoolVal(l >= r), nil
	case token.LESS:
		return BoolVal(l < r), nil
	case token.LESS_EQUAL:
		return BoolVal(l <= r), nil
	default:
		return nil, runtimeErr(e.Op, "unknown binary operator '%s'", e.Op.Lexeme)
	}
}

// evalLogical short-circuits and yields one of the operand values.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}

	if e.Op.Kind == token.OR {
		if IsTruthy(left) {
			return left, nil
		}
	} else if !IsTruthy(left) {
		return left, nil
	}
	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for idx, argExpr := range e.Args {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErr(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, runtimeErr(e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}

	result, err := fn.Call(i, args)
	if err != nil {
		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) {
			return nil, runtimeErr(e.Paren, "%s", err)
		}
		return nil, err
	}
	return result, nil
}

// evalSuper finds the method on the superclass and binds it to the
// instance stored one frame below "super".
func (i *Interpreter) evalSuper(e *ast.SuperExpr) (Value, error) {
	distance, ok := i.locals[e]
	if !ok {
		return nil, runtimeErr(e.Keyword, "Can't use 'super' outside of a class.")
	}
	superclass := i.env.GetAt(distance, "super").(*Class)
	instance := i.env.GetAt(distance-1, "this").(*Instance)

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, runtimeErr(e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.Bind(instance), nil
}
