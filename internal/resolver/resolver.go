// Package resolver performs static scope resolution for Lox programs.
//
// It walks the syntax tree once before execution, records for every local
// variable reference how many scopes separate it from its binding, and
// reports scope misuse (duplicate declarations, bad return, stray this/super)
// as diagnostics. References that resolve to no enclosing scope are left out
// of the depth map and are looked up as globals at run time.
package resolver

import (
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
	"sort"
)

// Locals maps a variable-referencing expression node to its scope distance.
// Keys are node pointers, so two textually identical references are distinct.
type Locals map[ast.Expr]int

// Entry is one resolved reference, used for dumping the depth map.
type Entry struct {
	Pos   token.Pos
	Name  string
	Depth int
}

// Entries returns every resolved reference ordered by source position.
func (l Locals) Entries() []Entry {
	entries := make([]Entry, 0, len(l))
	for expr, depth := range l {
		entries = append(entries, Entry{Pos: expr.GetPos(), Name: refName(expr), Depth: depth})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Pos.Offset != entries[b].Pos.Offset {
			return entries[a].Pos.Offset < entries[b].Pos.Offset
		}
		return entries[a].Name < entries[b].Name
	})
	return entries
}

func refName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		return e.Name.Lexeme
	case *ast.AssignExpr:
		return e.Name.Lexeme
	case *ast.ThisExpr:
		return "this"
	case *ast.SuperExpr:
		return "super"
	default:
		return "?"
	}
}

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

// binding is the resolver's view of one declared name.
type binding struct {
	tok     token.Token
	defined bool // false while the name's own initializer is resolved
	used    bool
	checked bool // report if never read (plain local vars only)
}

type scope struct {
	names map[string]*binding
	order []string
}

func newScope() *scope {
	return &scope{names: make(map[string]*binding)}
}

// Resolver computes scope distances into a Locals map.
type Resolver struct {
	locals       Locals
	scopes       []*scope
	currentFn    functionKind
	currentClass classKind
	diags        []diag.Diagnostic
}

// New creates a resolver that records into locals. A nil map is allocated.
// The same map may be shared by successive resolvers (one per REPL input).
func New(locals Locals) *Resolver {
	if locals == nil {
		locals = make(Locals)
	}
	return &Resolver{locals: locals}
}

// Locals returns the depth map the resolver writes into.
func (r *Resolver) Locals() Locals {
	return r.locals
}

// Resolve resolves a program. Resolution continues past errors so a single
// pass reports every problem; the result holds errors and warnings.
func (r *Resolver) Resolve(stmts []ast.Stmt) []diag.Diagnostic {
	r.resolveStmts(stmts)
	return r.diags
}

// ============================================================
// Statements
// ============================================================

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()

	case *ast.ClassDecl:
		r.resolveClass(s)

	case *ast.ExprStmt:
		r.resolveExpr(s.Expr)

	case *ast.FuncDecl:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.PrintStmt:
		r.resolveExpr(s.Expr)

	case *ast.ReturnStmt:
		if r.currentFn == fnNone {
			r.errorAt(s.Keyword, "E3003", "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFn == fnInitializer {
				r.errorAt(s.Keyword, "E3004", "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.VarDeclStmt:
		if b := r.declare(s.Name); b != nil {
			b.checked = true
		}
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name)

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	}
}

func (r *Resolver) resolveClass(s *ast.ClassDecl) {
	enclosing := r.currentClass
	r.currentClass = classClass
	defer func() { r.currentClass = enclosing }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Superclass.Name, "E3008", "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.syntheticBinding("super", s.Superclass.Name)
		defer r.endScope()
	}

	r.beginScope()
	r.syntheticBinding("this", s.Name)
	for _, method := range s.Methods {
		kind := fnMethod
		if method.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(method, kind)
	}
	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FuncDecl, kind functionKind) {
	enclosing := r.currentFn
	r.currentFn = kind
	defer func() { r.currentFn = enclosing }()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

// ============================================================
// Expressions
// ============================================================

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name, false)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}

	case *ast.GetExpr:
		r.resolveExpr(e.Object)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Expr)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.SuperExpr:
		switch r.currentClass {
		case classNone:
			r.errorAt(e.Keyword, "E3006", "Can't use 'super' outside of a class.")
		case classClass:
			r.errorAt(e.Keyword, "E3007", "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, e.Keyword, true)

	case *ast.ThisExpr:
		if r.currentClass == classNone {
			r.errorAt(e.Keyword, "E3005", "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword, true)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Right)

	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if b, ok := r.innermost().names[e.Name.Lexeme]; ok && !b.defined {
				r.errorAt(e.Name, "E3002", "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name, true)

	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NilLiteral:
		// nothing to resolve
	}
}

// resolveLocal records the distance from the innermost scope to the scope
// declaring name. Unfound names are globals and get no entry.
func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token, read bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if b, ok := r.scopes[i].names[name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			if read {
				b.used = true
			}
			return
		}
	}
}

// ============================================================
// Scopes
// ============================================================

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, newScope())
}

func (r *Resolver) endScope() {
	s := r.innermost()
	for _, name := range s.order {
		if b := s.names[name]; b.checked && !b.used {
			r.diags = append(r.diags,
				diag.WarningAt("W3001", b.tok, "Local variable '%s' is never used.", name))
		}
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) innermost() *scope {
	return r.scopes[len(r.scopes)-1]
}

// declare adds name to the innermost scope as not yet defined. It returns
// nil at global scope, where declarations are not tracked.
func (r *Resolver) declare(name token.Token) *binding {
	if len(r.scopes) == 0 {
		return nil
	}
	s := r.innermost()
	if _, exists := s.names[name.Lexeme]; exists {
		r.errorAt(name, "E3001", "Already a variable with this name in this scope.")
		return nil
	}
	b := &binding{tok: name}
	s.names[name.Lexeme] = b
	s.order = append(s.order, name.Lexeme)
	return b
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	if b, ok := r.innermost().names[name.Lexeme]; ok {
		b.defined = true
	}
}

// syntheticBinding binds "this" or "super" in the innermost scope.
func (r *Resolver) syntheticBinding(name string, at token.Token) {
	s := r.innermost()
	s.names[name] = &binding{tok: at, defined: true}
	s.order = append(s.order, name)
}

func (r *Resolver) errorAt(tok token.Token, code, msg string) {
	r.diags = append(r.diags, diag.ErrorAt(code, tok, "%s", msg))
}
