package sql

import (
	"io"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Generator produces a set of output values for a single input row. It is
// the runtime contract of table-generating expressions such as explode.
type Generator interface {
	// Next value in the generator. Returns io.EOF when exhausted.
	Next() (interface{}, error)
	// Close the generator and dispose resources.
	Close() error
}

// ErrNotGenerator is returned when a value cannot be converted to a
// generator.
var ErrNotGenerator = errors.NewKind("cannot convert value of type %T to a generator")

// ToGenerator converts a value to a generator if possible.
func ToGenerator(v interface{}) (Generator, error) {
	switch v := v.(type) {
	case Generator:
		return v, nil
	case []interface{}:
		return NewArrayGenerator(v), nil
	case nil:
		return NewArrayGenerator(nil), nil
	default:
		return nil, ErrNotGenerator.New(v)
	}
}

// NewArrayGenerator creates a generator over the elements of an array.
func NewArrayGenerator(array []interface{}) Generator {
	return &arrayGenerator{array: array}
}

type arrayGenerator struct {
	array []interface{}
	pos   int
}

func (g *arrayGenerator) Next() (interface{}, error) {
	if g.pos >= len(g.array) {
		return nil, io.EOF
	}
	v := g.array[g.pos]
	g.pos++
	return v, nil
}

func (g *arrayGenerator) Close() error {
	g.pos = len(g.array)
	return nil
}
