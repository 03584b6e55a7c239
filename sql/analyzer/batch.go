package analyzer

import (
	"github.com/mitchellh/hashstructure"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/transform"
)

// ErrMaxAnalysisIters is thrown when a fixed-point batch spins past its
// iteration cap without converging.
var ErrMaxAnalysisIters = errors.NewKind("batch %q exceeded max analysis iterations (%d); raise MaxIterations if the plan legitimately needs more rounds")

// RuleFunc is the function type for analyzer rules. A rule returns the
// input node untouched with SameTree when it has nothing to do.
type RuleFunc func(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error)

// Rule is a named transformation on a plan tree.
type Rule struct {
	// Name of the rule, for debug logs and error messages.
	Name string
	// Apply transforms a node.
	Apply RuleFunc
}

// Batch executes a set of rules a specific number of times. When this
// number is reached and the plan is still changing, analysis fails.
type Batch struct {
	Desc       string
	Iterations int
	Rules      []Rule
}

// Eval executes the rules of the batch. On a fixed-point batch the rules
// are applied round-robin until a full round changes nothing. TreeIdentity
// is the primary convergence signal; a content hash of the plan is the
// backstop, so a rule that rebuilds an equal tree cannot spin the loop.
func (b *Batch) Eval(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	if b.Iterations == 0 {
		return n, transform.SameTree, nil
	}

	prev := n
	cur, same, err := b.evalOnce(ctx, a, n, scope)
	if err != nil {
		return nil, transform.SameTree, err
	}
	if b.Iterations == 1 || same {
		return cur, same, nil
	}

	prevHash := planHash(prev)
	for i := 1; ; i++ {
		if i >= b.Iterations {
			return cur, transform.NewTree, ErrMaxAnalysisIters.New(b.Desc, b.Iterations)
		}

		curHash := planHash(cur)
		if prevHash != 0 && prevHash == curHash {
			break
		}
		prevHash = curHash

		cur, same, err = b.evalOnce(ctx, a, cur, scope)
		if err != nil {
			return nil, transform.SameTree, err
		}
		if same {
			break
		}
	}
	return cur, transform.NewTree, nil
}

// evalOnce runs every rule of the batch over the node a single time.
func (b *Batch) evalOnce(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	allSame := transform.SameTree

	for _, rule := range b.Rules {
		select {
		case <-ctx.Done():
			return nil, transform.SameTree, ctx.Err()
		default:
		}

		a.Log("evaluating rule %s", rule.Name)
		a.PushDebugContext(rule.Name)
		next, same, err := rule.Apply(ctx, a, n, scope)
		a.PopDebugContext()
		if err != nil {
			return nil, transform.SameTree, err
		}
		if !same {
			allSame = transform.NewTree
			n = next
			a.LogNode(n)
		}
	}
	return n, allSame, nil
}

// planHash computes a structural content hash of the plan, zero when the
// plan cannot be hashed.
func planHash(n sql.Node) uint64 {
	h, err := hashstructure.Hash(n, nil)
	if err != nil {
		return 0
	}
	return h
}
