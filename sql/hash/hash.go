package hash

import (
	"github.com/cespare/xxhash"

	"github.com/corvusql/corvus/sql"
)

// Of returns a 64-bit hash of the given string.
func Of(s string) uint64 {
	return xxhash.Sum64String(s)
}

// OfExpression returns a hash of the canonical form of an expression:
// its printed tree with aliases stripped, so two expressions differing
// only in naming hash the same. Collisions are possible; callers must
// confirm candidate matches with a full canonical comparison.
func OfExpression(e sql.Expression) uint64 {
	return xxhash.Sum64String(Canonical(e))
}

// Canonical returns the canonical printed form of the expression used for
// semantic-equality comparisons.
func Canonical(e sql.Expression) string {
	if n, ok := e.(Canonicalizer); ok {
		return n.Canonical()
	}
	return e.String()
}

// Canonicalizer is implemented by expressions whose printed form includes
// surface-only syntax (such as aliases) that semantic equality ignores.
type Canonicalizer interface {
	// Canonical returns the print form stripped of surface-only syntax.
	Canonical() string
}
