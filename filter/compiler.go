package filter

import (
	"fmt"
	"strings"
)

// noopPredicate is the sentinel emitted by empty logical groups. It is used
// to detect no-op sub-clauses during composition and is stripped before the
// final predicate is returned; callers never see it.
const noopPredicate = "1=1"

// CompileWhere compiles a metadata filter into a parameterized SQL
// predicate over the JSON-typed metadata column.
//
// The returned predicate carries one "?" placeholder per returned
// parameter, in order. A nil filter compiles to an empty predicate and the
// caller omits the WHERE clause entirely.
//
// Empty And/Or groups contribute nothing to the predicate. This is
// intentionally permissive: an empty group is treated as "no constraint",
// not as vacuously true or false.
func CompileWhere(w Where, metadataColumn string) (string, []any, error) {
	if w == nil {
		return "", nil, nil
	}
	pred, params, err := compileWhere(w, metadataColumn)
	if err != nil {
		return "", nil, err
	}
	if pred == noopPredicate {
		return "", nil, nil
	}
	return pred, params, nil
}

func compileWhere(w Where, col string) (string, []any, error) {
	switch node := w.(type) {
	case Eq:
		expr, err := metadataExtract(col, node.Field)
		if err != nil {
			return "", nil, err
		}
		return expr + " = ?", []any{node.Value}, nil

	case Cmp:
		expr, err := metadataExtract(col, node.Field)
		if err != nil {
			return "", nil, err
		}
		sqlOp, ok := comparisonOperators[node.Op]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownOperator, node.Op)
		}
		return expr + " " + sqlOp + " ?", []any{node.Value}, nil

	case In:
		return compileInList(col, node.Field, node.Values, false)

	case NotIn:
		return compileInList(col, node.Field, node.Values, true)

	case And:
		return compileGroup(node, col, " AND ")

	case Or:
		return compileGroup(node, col, " OR ")

	case Not:
		if node.Inner == nil {
			return noopPredicate, nil, nil
		}
		inner, params, err := compileWhere(node.Inner, col)
		if err != nil {
			return "", nil, err
		}
		if inner == noopPredicate {
			return noopPredicate, nil, nil
		}
		return "NOT (" + inner + ")", params, nil

	default:
		return "", nil, fmt.Errorf("%w: unexpected condition type %T", ErrMalformedFilter, w)
	}
}

// comparisonOperators maps filter operators 1:1 onto SQL comparison
// operators.
var comparisonOperators = map[Op]string{
	OpEq:  "=",
	OpNe:  "!=",
	OpLt:  "<",
	OpLte: "<=",
	OpGt:  ">",
	OpGte: ">=",
}

func compileInList(col, field string, values []any, negate bool) (string, []any, error) {
	expr, err := metadataExtract(col, field)
	if err != nil {
		return "", nil, err
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w (field %q)", ErrEmptyValueList, field)
	}
	placeholders := strings.Repeat("?, ", len(values))
	placeholders = placeholders[:len(placeholders)-2]
	op := "IN"
	if negate {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", expr, op, placeholders), values, nil
}

func compileGroup(nodes []Where, col, joiner string) (string, []any, error) {
	var clauses []string
	var params []any
	for _, sub := range nodes {
		if sub == nil {
			continue
		}
		clause, subParams, err := compileWhere(sub, col)
		if err != nil {
			return "", nil, err
		}
		if clause == noopPredicate {
			continue
		}
		clauses = append(clauses, clause)
		params = append(params, subParams...)
	}
	if len(clauses) == 0 {
		return noopPredicate, nil, nil
	}
	return "(" + strings.Join(clauses, joiner) + ")", params, nil
}

// CompileWhereDocument compiles a document filter into a parameterized SQL
// predicate over the document text column. $contains becomes a full-text
// MATCH...AGAINST predicate; $regex becomes a REGEXP predicate.
func CompileWhereDocument(w WhereDocument, documentColumn string) (string, []any, error) {
	if w == nil {
		return "", nil, nil
	}
	pred, params, err := compileWhereDocument(w, documentColumn)
	if err != nil {
		return "", nil, err
	}
	if pred == noopPredicate {
		return "", nil, nil
	}
	return pred, params, nil
}

func compileWhereDocument(w WhereDocument, col string) (string, []any, error) {
	switch node := w.(type) {
	case Contains:
		return fmt.Sprintf("MATCH (%s) AGAINST (?)", col), []any{node.Text}, nil

	case Regex:
		return col + " REGEXP ?", []any{node.Pattern}, nil

	case DocAnd:
		return compileDocGroup(node, col, " AND ")

	case DocOr:
		return compileDocGroup(node, col, " OR ")

	default:
		return "", nil, fmt.Errorf("%w: unexpected condition type %T", ErrMalformedFilter, w)
	}
}

func compileDocGroup(nodes []WhereDocument, col, joiner string) (string, []any, error) {
	var clauses []string
	var params []any
	for _, sub := range nodes {
		if sub == nil {
			continue
		}
		clause, subParams, err := compileWhereDocument(sub, col)
		if err != nil {
			return "", nil, err
		}
		if clause == noopPredicate {
			continue
		}
		clauses = append(clauses, clause)
		params = append(params, subParams...)
	}
	if len(clauses) == 0 {
		return noopPredicate, nil, nil
	}
	return "(" + strings.Join(clauses, joiner) + ")", params, nil
}

// metadataExtract renders the JSON extraction expression for a metadata
// field. The key is interpolated into statement text, so it is restricted
// to letters, digits and underscore; anything else is rejected before it
// can reach the SQL.
func metadataExtract(col, field string) (string, error) {
	if err := ValidateField(field); err != nil {
		return "", err
	}
	return fmt.Sprintf("JSON_EXTRACT(%s, '$.%s')", col, field), nil
}

// ValidateField checks that a metadata key is safe to embed in statement
// text: non-empty and limited to letters, digits and underscore.
func ValidateField(field string) error {
	if field == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidField)
	}
	for _, r := range field {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
	}
	return nil
}
