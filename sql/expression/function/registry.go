package function

import (
	"github.com/corvusql/corvus/sql"
	"github.com/corvusql/corvus/sql/expression/function/aggregation"
)

// Defaults is the set of builtin functions.
var Defaults = []sql.Function{
	// scalar
	sql.Function1{Name: "length", Fn: NewLength},
	sql.Function1{Name: "lower", Fn: NewLower},
	sql.Function1{Name: "upper", Fn: NewUpper},
	sql.Function3{Name: "if", Fn: NewIf},
	sql.Function2{Name: "ifnull", Fn: NewIfNull},
	sql.FunctionN{Name: "coalesce", Fn: NewCoalesce},
	sql.Function0{Name: "rand", Fn: NewRand},
	sql.Function1{Name: "to_json", Fn: NewToJSON},
	sql.FunctionN{Name: "from_json", Fn: NewFromJSON},
	sql.Function1{Name: "explode", Fn: NewExplode},
	sql.Function1{Name: "grouping", Fn: NewGrouping},

	// aggregate
	sql.Function1{Name: "count", Fn: aggregation.NewCount},
	sql.Function1{Name: "sum", Fn: aggregation.NewSum},
	sql.Function1{Name: "avg", Fn: aggregation.NewAvg},
	sql.Function1{Name: "min", Fn: aggregation.NewMin},
	sql.Function1{Name: "max", Fn: aggregation.NewMax},
	sql.Function1{Name: "first", Fn: aggregation.NewFirst},

	// window
	sql.Function0{Name: "row_number", Fn: aggregation.NewRowNumber},
	sql.Function0{Name: "rank", Fn: aggregation.NewRank},
}

// NewRegistry returns a function registry loaded with the builtins.
func NewRegistry() sql.FunctionRegistry {
	r := sql.NewFunctionRegistry()
	r.Register(Defaults...)
	return r
}
