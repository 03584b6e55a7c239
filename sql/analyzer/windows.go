package analyzer

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression"
	"github.com/corvusql/corvus/sql/expression/function/aggregation"
	"github.com/corvusql/corvus/sql/plan"
	"github.com/corvusql/corvus/sql/transform"
)

var errWindowInFilter = errors.NewKind("window function %s is not allowed in a filter condition; window functions are computed after filtering")

// extractWindows lifts window expressions out of projection and aggregate
// select lists into Window operators, one per distinct (partition, order,
// frame) specification. The surrounding expressions keep evaluating below;
// a closing projection re-assembles the original output shape. Windows
// without an explicit frame get the default one.
func extractWindows(ctx *sql.Context, a *Analyzer, n sql.Node, scope *Scope) (sql.Node, transform.TreeIdentity, error) {
	span, ctx := ctx.Span("extract_windows")
	defer span.Finish()

	var filterErr error
	transform.Inspect(n, func(n sql.Node) bool {
		if f, ok := n.(*plan.Filter); ok && containsWindow(f.Expression) {
			filterErr = errWindowInFilter.New(f.Expression)
			return false
		}
		return true
	})
	if filterErr != nil {
		return nil, transform.SameTree, filterErr
	}

	return transform.Node(n, func(n sql.Node) (sql.Node, transform.TreeIdentity, error) {
		switch n := n.(type) {
		case *plan.Project:
			if !hasWindowExprs(n.Projections) {
				return n, transform.SameTree, nil
			}
			return a.extractWindowsFromProject(ctx, n)
		case *plan.GroupBy:
			if !hasWindowExprs(n.SelectedExprs) {
				return n, transform.SameTree, nil
			}
			return a.extractWindowsFromGroupBy(ctx, n)
		}
		return n, transform.SameTree, nil
	})
}

func hasWindowExprs(exprs []sql.Expression) bool {
	for _, e := range exprs {
		if containsWindow(e) {
			return true
		}
	}
	return false
}

// windowSlot is one extracted window expression and the output column it
// is computed into.
type windowSlot struct {
	expr     sql.WindowAggregation
	name     string
	id       sql.ColumnId
	index    int
	nullable bool
}

// windowBuilder collects the window expressions of one select list,
// de-duplicated by string form, grouped by window specification.
type windowBuilder struct {
	slots  map[string]*windowSlot
	groups map[string][]*windowSlot
	order  []string
}

func newWindowBuilder() *windowBuilder {
	return &windowBuilder{
		slots:  map[string]*windowSlot{},
		groups: map[string][]*windowSlot{},
	}
}

// add registers a window expression, applying the default frame when none
// was written, and returns its slot. Identical expressions share a slot.
func (b *windowBuilder) add(ctx *sql.Context, w sql.WindowAggregation) *windowSlot {
	// a window function without an OVER spec is malformed; leave it in
	// place for validation to report
	if w.Window() == nil {
		return nil
	}

	key := w.String()
	if slot, ok := b.slots[key]; ok {
		return slot
	}

	def := w.Window()
	if def.Frame == nil {
		nd := *def
		nd.Frame = sql.DefaultFrame(len(def.OrderBy) > 0)
		w = w.WithWindow(&nd)
	}

	slot := &windowSlot{
		expr:     w,
		name:     fmt.Sprintf("__window_%d", len(b.slots)),
		id:       ctx.NewColumnId(),
		nullable: w.IsNullable(),
	}
	b.slots[key] = slot

	pid := w.Window().PartitionId()
	if _, ok := b.groups[pid]; !ok {
		b.order = append(b.order, pid)
	}
	b.groups[pid] = append(b.groups[pid], slot)
	return slot
}

// build stacks one Window node per specification on top of child. Every
// node passes its child's columns through unchanged, so references into
// the original child schema stay valid, and each slot learns the output
// position its value lands in.
func (b *windowBuilder) build(child sql.Node) sql.Node {
	for _, pid := range b.order {
		schema := child.Schema()
		selects := make([]sql.Expression, 0, len(schema)+len(b.groups[pid]))
		for i, col := range schema {
			selects = append(selects, expression.NewGetFieldWithTable(
				i, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id))
		}
		for j, slot := range b.groups[pid] {
			slot.index = len(schema) + j
			selects = append(selects, expression.NewAlias(slot.name, slot.expr).WithId(slot.id))
		}
		child = plan.NewWindow(selects, child)
	}
	return child
}

// ref returns the resolved reference to an extracted window expression,
// or the expression itself when it was not extracted.
func (b *windowBuilder) ref(w sql.WindowAggregation) sql.Expression {
	slot, ok := b.slots[w.String()]
	if !ok {
		return w
	}
	return expression.NewGetField(slot.index, slot.expr.Type(), slot.name, slot.nullable).WithId(slot.id)
}

// extractWindowsFromProject pulls the window expressions of a projection
// into a Window stack directly over the projection's child.
func (a *Analyzer) extractWindowsFromProject(ctx *sql.Context, p *plan.Project) (sql.Node, transform.TreeIdentity, error) {
	b := newWindowBuilder()
	for _, e := range p.Projections {
		collectWindows(ctx, b, e)
	}

	top := b.build(p.Child)

	projections := make([]sql.Expression, len(p.Projections))
	for i, e := range p.Projections {
		np, err := replaceWindows(b, e)
		if err != nil {
			return nil, transform.SameTree, err
		}
		projections[i] = np
	}

	a.Log("extracted %d window expression(s) into %d window node(s)", len(b.slots), len(b.order))
	return plan.NewProject(projections, top), transform.NewTree, nil
}

// extractWindowsFromGroupBy pulls window expressions out of an aggregate
// select list. Windows evaluate after grouping, so everything a window
// references must be an aggregate output: aggregate calls inside window
// expressions become hidden GroupBy outputs, and plain column references
// are remapped to (or added as) GroupBy outputs.
func (a *Analyzer) extractWindowsFromGroupBy(ctx *sql.Context, g *plan.GroupBy) (sql.Node, transform.TreeIdentity, error) {
	var inner []sql.Expression
	hidden := 0

	// reference an aggregate-level expression, adding a hidden output for
	// it when the inner select list has no equivalent yet
	innerRef := func(e sql.Expression, name string) sql.Expression {
		for i, sel := range inner {
			c := sel
			if alias, ok := sel.(*expression.Alias); ok {
				c = alias.Child
			}
			if c.String() == e.String() {
				col := transform.ExpressionToColumn(inner[i])
				return expression.NewGetField(i, e.Type(), col.Name, e.IsNullable()).WithId(col.Id)
			}
		}
		if name == "" {
			name = fmt.Sprintf("__group_%d", hidden)
			hidden++
		}
		alias := expression.NewAlias(name, e).WithId(ctx.NewColumnId())
		inner = append(inner, alias)
		return expression.NewGetField(len(inner)-1, e.Type(), name, e.IsNullable()).WithId(alias.Id())
	}

	finalProjections := make([]sql.Expression, len(g.SelectedExprs))
	var windowExprs []sql.Expression

	for i, sel := range g.SelectedExprs {
		if !containsWindow(sel) {
			idx := len(inner)
			inner = append(inner, sel)
			col := transform.ExpressionToColumn(sel)
			finalProjections[i] = expression.NewGetFieldWithTable(
				idx, sel.Type(), col.Source, col.Name, sel.IsNullable()).WithId(col.Id)
			continue
		}

		rewritten, err := rewriteWindowOperands(sel, innerRef)
		if err != nil {
			return nil, transform.SameTree, err
		}
		windowExprs = append(windowExprs, rewritten)
		finalProjections[i] = rewritten
	}

	b := newWindowBuilder()
	for _, e := range windowExprs {
		collectWindows(ctx, b, e)
	}

	top := b.build(plan.NewGroupByGroupingSets(inner, g.GroupByExprs, g.GroupingSets, g.Child))

	for i, e := range finalProjections {
		np, err := replaceWindows(b, e)
		if err != nil {
			return nil, transform.SameTree, err
		}
		finalProjections[i] = np
	}

	a.Log("extracted %d window expression(s) above aggregation", len(b.slots))
	return plan.NewProject(finalProjections, top), transform.NewTree, nil
}

// collectWindows registers every window expression found in e.
func collectWindows(ctx *sql.Context, b *windowBuilder, e sql.Expression) {
	transform.InspectExpr(e, func(e sql.Expression) bool {
		if w, ok := e.(sql.WindowAggregation); ok {
			b.add(ctx, w)
		}
		return false
	})
}

// replaceWindows substitutes extracted window expressions with references
// to their computed output columns.
func replaceWindows(b *windowBuilder, e sql.Expression) (sql.Expression, error) {
	if w, ok := e.(sql.WindowAggregation); ok {
		return b.ref(w), nil
	}
	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}
	newChildren := make([]sql.Expression, len(children))
	changed := false
	for i, c := range children {
		nc, err := replaceWindows(b, c)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
		if nc != c {
			changed = true
		}
	}
	if !changed {
		return e, nil
	}
	return e.WithChildren(newChildren...)
}

// rewriteWindowOperands rewrites the inside of window expressions for
// evaluation over aggregate output rows: bare aggregate calls become
// hidden aggregate outputs, other references are remapped through ref.
// The windowed aggregate itself is kept; only its operands change.
func rewriteWindowOperands(e sql.Expression, ref func(sql.Expression, string) sql.Expression) (sql.Expression, error) {
	switch e := e.(type) {
	case *aggregation.WindowedFunction:
		args := e.Aggregate.Children()
		newArgs := make([]sql.Expression, len(args))
		for i, arg := range args {
			na, err := rewriteWindowOperands(arg, ref)
			if err != nil {
				return nil, err
			}
			newArgs[i] = na
		}
		nagg, err := e.Aggregate.WithChildren(newArgs...)
		if err != nil {
			return nil, err
		}
		def, err := rewriteWindowDef(e.Window(), ref)
		if err != nil {
			return nil, err
		}
		return aggregation.NewWindowedFunction(nagg.(sql.Aggregation), def), nil

	case sql.WindowAggregation:
		def, err := rewriteWindowDef(e.Window(), ref)
		if err != nil {
			return nil, err
		}
		return e.WithWindow(def), nil

	case sql.Aggregation:
		return ref(e, ""), nil

	case *expression.GetField:
		return ref(e, e.Name()), nil
	}

	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}
	newChildren := make([]sql.Expression, len(children))
	for i, c := range children {
		nc, err := rewriteWindowOperands(c, ref)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
	}
	return e.WithChildren(newChildren...)
}

func rewriteWindowDef(def *sql.WindowDef, ref func(sql.Expression, string) sql.Expression) (*sql.WindowDef, error) {
	if def == nil {
		return nil, nil
	}
	exprs := def.Expressions()
	newExprs := make([]sql.Expression, len(exprs))
	for i, e := range exprs {
		ne, err := rewriteWindowOperands(e, ref)
		if err != nil {
			return nil, err
		}
		newExprs[i] = ne
	}
	return def.FromExpressions(newExprs)
}
