package expression

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/corvusql/corvus/sql"
)

// ErrIndexOutOfBounds is returned when the field index is out of the bounds.
var ErrIndexOutOfBounds = errors.NewKind("unable to find field with index %d in row of %d columns")

// GetField is a resolved reference to a field of the child relation, by
// position. The id is the ground truth of which column this is; the index
// is where the value lives in the child's row layout.
type GetField struct {
	table      string
	fieldIndex int
	name       string
	fieldType  sql.Type
	nullable   bool
	// id survives re-indexing: rules can recompute field indexes without
	// losing which column the reference means.
	id sql.ColumnId
}

var _ sql.Expression = (*GetField)(nil)
var _ sql.IdExpression = (*GetField)(nil)

// NewGetField creates a GetField expression.
func NewGetField(index int, fieldType sql.Type, fieldName string, nullable bool) *GetField {
	return NewGetFieldWithTable(index, fieldType, "", fieldName, nullable)
}

// NewGetFieldWithTable creates a GetField expression with table name. The
// table name may be an alias.
func NewGetFieldWithTable(index int, fieldType sql.Type, table, fieldName string, nullable bool) *GetField {
	return &GetField{
		table:      table,
		fieldIndex: index,
		fieldType:  fieldType,
		name:       fieldName,
		nullable:   nullable,
	}
}

// Index returns the index where the GetField will look for the value from
// a sql.Row.
func (p *GetField) Index() int { return p.fieldIndex }

// Id implements the sql.IdExpression interface.
func (p *GetField) Id() sql.ColumnId { return p.id }

// Children implements the Expression interface.
func (*GetField) Children() []sql.Expression {
	return nil
}

// Table returns the name of the field table.
func (p *GetField) Table() string { return p.table }

// WithTable returns a copy of this expression with the table given.
func (p *GetField) WithTable(table string) *GetField {
	p2 := *p
	p2.table = table
	return &p2
}

// WithIndex returns a copy of this expression with the index given.
func (p *GetField) WithIndex(index int) *GetField {
	p2 := *p
	p2.fieldIndex = index
	return &p2
}

// WithId returns a copy of this expression with the id given.
func (p *GetField) WithId(id sql.ColumnId) *GetField {
	p2 := *p
	p2.id = id
	return &p2
}

// Resolved implements the Expression interface.
func (p *GetField) Resolved() bool {
	return true
}

// Name implements the Nameable interface.
func (p *GetField) Name() string { return p.name }

// IsNullable returns whether the field is nullable or not.
func (p *GetField) IsNullable() bool {
	return p.nullable
}

// Type returns the type of the field.
func (p *GetField) Type() sql.Type {
	return p.fieldType
}

// Eval implements the Expression interface.
func (p *GetField) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if p.fieldIndex < 0 || p.fieldIndex >= len(row) {
		return nil, ErrIndexOutOfBounds.New(p.fieldIndex, len(row))
	}
	return row[p.fieldIndex], nil
}

// WithChildren implements the Expression interface.
func (p *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

func (p *GetField) String() string {
	if p.table == "" {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.table, p.name)
}

// SchemaToGetFields takes a schema and returns an expression array of
// GetFields with the same type, name, nullability and identity.
func SchemaToGetFields(s sql.Schema) []sql.Expression {
	ret := make([]sql.Expression, len(s))
	for i, col := range s {
		ret[i] = NewGetFieldWithTable(i, col.Type, col.Source, col.Name, col.Nullable).WithId(col.Id)
	}
	return ret
}
