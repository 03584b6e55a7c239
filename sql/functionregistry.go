package sql

import (
	"github.com/corvusql/corvus/internal/similartext"
)

// Function is an entry of the function registry: a named constructor for
// expression instances.
type Function interface {
	// FunctionName returns the name under which the function is registered.
	FunctionName() string
	// NewInstance builds an expression calling the function with the given
	// arguments, or returns ErrInvalidArgumentNumber.
	NewInstance(args []Expression) (Expression, error)
}

// Function0 is a function with no arguments.
type Function0 struct {
	Name string
	Fn   func() Expression
}

// Function1 is a function with one argument.
type Function1 struct {
	Name string
	Fn   func(e Expression) Expression
}

// Function2 is a function with two arguments.
type Function2 struct {
	Name string
	Fn   func(e1, e2 Expression) Expression
}

// Function3 is a function with three arguments.
type Function3 struct {
	Name string
	Fn   func(e1, e2, e3 Expression) Expression
}

// FunctionN is a function with variable number of arguments. The
// constructor validates the argument count itself.
type FunctionN struct {
	Name string
	Fn   func(args ...Expression) (Expression, error)
}

func (fn Function0) FunctionName() string { return fn.Name }
func (fn Function1) FunctionName() string { return fn.Name }
func (fn Function2) FunctionName() string { return fn.Name }
func (fn Function3) FunctionName() string { return fn.Name }
func (fn FunctionN) FunctionName() string { return fn.Name }

// NewInstance implements the Function interface.
func (fn Function0) NewInstance(args []Expression) (Expression, error) {
	if len(args) != 0 {
		return nil, ErrInvalidArgumentNumber.New(fn.Name, 0, len(args))
	}
	return fn.Fn(), nil
}

// NewInstance implements the Function interface.
func (fn Function1) NewInstance(args []Expression) (Expression, error) {
	if len(args) != 1 {
		return nil, ErrInvalidArgumentNumber.New(fn.Name, 1, len(args))
	}
	return fn.Fn(args[0]), nil
}

// NewInstance implements the Function interface.
func (fn Function2) NewInstance(args []Expression) (Expression, error) {
	if len(args) != 2 {
		return nil, ErrInvalidArgumentNumber.New(fn.Name, 2, len(args))
	}
	return fn.Fn(args[0], args[1]), nil
}

// NewInstance implements the Function interface.
func (fn Function3) NewInstance(args []Expression) (Expression, error) {
	if len(args) != 3 {
		return nil, ErrInvalidArgumentNumber.New(fn.Name, 3, len(args))
	}
	return fn.Fn(args[0], args[1], args[2]), nil
}

// NewInstance implements the Function interface.
func (fn FunctionN) NewInstance(args []Expression) (Expression, error) {
	return fn.Fn(args...)
}

// FunctionRegistry is used to register functions. It is used both for
// builtin and user-defined functions. There is no hidden static
// registration: a registry is constructed once and handed to the analyzer.
type FunctionRegistry map[string]Function

// NewFunctionRegistry creates a new FunctionRegistry.
func NewFunctionRegistry() FunctionRegistry {
	return make(FunctionRegistry)
}

// Register registers functions, overriding any previous entry with the
// same name.
func (r FunctionRegistry) Register(fns ...Function) {
	for _, fn := range fns {
		r[fn.FunctionName()] = fn
	}
}

// Function returns a function with the given name. The not-found error
// carries a suggestion when a similarly named function exists.
func (r FunctionRegistry) Function(name string) (Function, error) {
	if len(r) == 0 {
		return nil, ErrFunctionNotFound.New(name, "")
	}

	if fn, ok := r[name]; ok {
		return fn, nil
	}

	return nil, ErrFunctionNotFound.New(name, similartext.FindFromMap(r, name))
}
