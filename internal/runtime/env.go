package runtime

import "lox-lang/internal/token"

// Environment represents a variable scope with a parent chain. Frames are
// shared by pointer: a closure keeps its defining frame alive after the
// block that created it has exited.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds name in this frame, overwriting any existing binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name token.Token) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if val, exists := env.values[name.Lexeme]; exists {
			return val, nil
		}
	}
	return nil, runtimeErr(name, "Undefined variable '%s'.", name.Lexeme)
}

// Assign overwrites an existing binding found along the chain. It never
// creates a new one.
func (e *Environment) Assign(name token.Token, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name.Lexeme]; exists {
			env.values[name.Lexeme] = value
			return nil
		}
	}
	return runtimeErr(name, "Undefined variable '%s'.", name.Lexeme)
}

// Ancestor walks exactly distance parent links.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name directly from the frame distance links up. The resolver
// guarantees the binding exists there.
func (e *Environment) GetAt(distance int, name string) Value {
	return e.Ancestor(distance).values[name]
}

// AssignAt writes name directly into the frame distance links up.
func (e *Environment) AssignAt(distance int, name token.Token, value Value) {
	e.Ancestor(distance).values[name.Lexeme] = value
}
