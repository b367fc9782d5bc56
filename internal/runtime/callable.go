package runtime

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/token"
)

// Callable is implemented by every value that can appear as a callee.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

// ============================================================
// Functions
// ============================================================

// Function is a user-defined function or method together with the
// environment it closes over.
type Function struct {
	Decl          *ast.FuncDecl
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Decl.Name.Lexeme) }
func (f *Function) Arity() int     { return len(f.Decl.Params) }

// Bind returns a copy of f whose closure is a fresh frame defining "this".
// Every property lookup binds anew, so instances never share the frame.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

// Call runs the body in a new frame on the closure. Initializers always
// yield the bound instance.
func (f *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.Closure)
	for idx, param := range f.Decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	result, err := interp.execBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if f.IsInitializer {
		return f.Closure.GetAt(0, "this"), nil
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NilVal{}, nil
}

// ============================================================
// Native functions
// ============================================================

// NativeFn is the Go signature for built-in functions.
type NativeFn func(args []Value) (Value, error)

// Native is a function implemented in Go.
type Native struct {
	Name   string
	Params int
	Fn     NativeFn
}

func (n *Native) String() string { return "<native fn>" }
func (n *Native) Arity() int     { return n.Params }

func (n *Native) Call(_ *Interpreter, args []Value) (Value, error) {
	return n.Fn(args)
}

// ============================================================
// Classes and instances
// ============================================================

// Class is a runtime class. Superclass is shared, not owned: many
// subclasses may point at one superclass.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) String() string { return c.Name }

// FindMethod looks name up in this class, then along the superclass chain.
func (c *Class) FindMethod(name string) *Function {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// Arity is the arity of the (possibly inherited) initializer, or 0.
func (c *Class) Arity() int {
	if initializer := c.FindMethod("init"); initializer != nil {
		return initializer.Arity()
	}
	return 0
}

// Call constructs a new instance and runs the initializer on it.
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	instance := &Instance{Class: c, Fields: make(map[string]Value)}
	if initializer := c.FindMethod("init"); initializer != nil {
		if _, err := initializer.Bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is an object created by calling a class.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (o *Instance) String() string { return o.Class.Name + " instance" }

// Get returns a field, or else a method bound to this instance.
func (o *Instance) Get(name token.Token) (Value, error) {
	if val, ok := o.Fields[name.Lexeme]; ok {
		return val, nil
	}
	if method := o.Class.FindMethod(name.Lexeme); method != nil {
		return method.Bind(o), nil
	}
	return nil, runtimeErr(name, "Undefined property '%s'.", name.Lexeme)
}

// Set creates or overwrites a field.
func (o *Instance) Set(name token.Token, value Value) {
	o.Fields[name.Lexeme] = value
}
