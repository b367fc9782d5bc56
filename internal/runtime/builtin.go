package runtime

import "time"

// now is swapped out in tests.
var now = time.Now

// RegisterBuiltins adds the native functions to the given environment.
func RegisterBuiltins(env *Environment) {
	env.Define("clock", &Native{
		Name:   "clock",
		Params: 0,
		Fn: func(args []Value) (Value, error) {
			return NumberVal(float64(now().UnixNano()) / float64(time.Second)), nil
		},
	})
}
