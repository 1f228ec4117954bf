package filter

// Op is a comparison operator usable in a Cmp condition.
type Op string

const (
	OpEq  Op = "$eq"
	OpNe  Op = "$ne"
	OpLt  Op = "$lt"
	OpLte Op = "$lte"
	OpGt  Op = "$gt"
	OpGte Op = "$gte"
)

// Where is the interface implemented by all metadata filter conditions.
// The condition set is closed: Eq, Cmp, In, NotIn, And, Or and Not are the
// only implementations, which lets both compilers switch exhaustively.
type Where interface {
	isWhere()
}

// Eq matches records whose metadata field equals the given scalar.
type Eq struct {
	Field string
	Value any
}

// Cmp matches records whose metadata field compares to the given value
// using a single operator.
type Cmp struct {
	Field string
	Op    Op
	Value any
}

// In matches records whose metadata field equals one of the given values.
type In struct {
	Field  string
	Values []any
}

// NotIn matches records whose metadata field equals none of the given values.
type NotIn struct {
	Field  string
	Values []any
}

// And matches records satisfying every sub-condition.
type And []Where

// Or matches records satisfying at least one sub-condition.
type Or []Where

// Not matches records not satisfying the inner condition.
type Not struct {
	Inner Where
}

func (Eq) isWhere()    {}
func (Cmp) isWhere()   {}
func (In) isWhere()    {}
func (NotIn) isWhere() {}
func (And) isWhere()   {}
func (Or) isWhere()    {}
func (Not) isWhere()   {}

// WhereDocument is the interface implemented by all document text filter
// conditions: Contains, Regex, DocAnd and DocOr.
type WhereDocument interface {
	isWhereDocument()
}

// Contains matches records whose document text contains the given term,
// evaluated through the engine's full-text index.
type Contains struct {
	Text string
}

// Regex matches records whose document text matches the given regular
// expression, using the engine's regexp operator.
type Regex struct {
	Pattern string
}

// DocAnd matches records satisfying every sub-condition.
type DocAnd []WhereDocument

// DocOr matches records satisfying at least one sub-condition.
type DocOr []WhereDocument

func (Contains) isWhereDocument() {}
func (Regex) isWhereDocument()    {}
func (DocAnd) isWhereDocument()   {}
func (DocOr) isWhereDocument()    {}
