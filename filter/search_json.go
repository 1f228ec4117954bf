package filter

import (
	"fmt"
	"strings"
)

// SearchJSON compiles a metadata filter into the predicate tree consumed by
// the engine's hybrid-search procedure. The tree uses term, range and
// bool{must,should,must_not} nodes; field names are rendered as JSON
// extraction expressions, matching what the procedure expects.
//
// The mapping mirrors the SQL compiler:
//
//	Eq, Cmp($eq)      -> term
//	Cmp(range op)     -> range (adjacent range ops on one field merge
//	                     into a single range node)
//	Cmp($ne), NotIn   -> bool.must_not
//	In                -> bool.should of terms
//	And               -> bool.must
//	Or                -> bool.should
//	Not               -> bool.must_not
//
// Single-condition bool wrappers are collapsed to the bare condition. The
// collapse is cosmetic; it does not change the predicate's meaning.
//
// A nil filter or a filter consisting only of empty groups compiles to nil.
func SearchJSON(w Where, metadataColumn string) (map[string]any, error) {
	if w == nil {
		return nil, nil
	}
	nodes, err := searchNodes(w, metadataColumn)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nodes[0], nil
	default:
		return boolNode("must", nodes), nil
	}
}

// searchNodes compiles one condition into zero or more predicate nodes.
// Logical groups may flatten away entirely when all their children are
// empty groups.
func searchNodes(w Where, col string) ([]map[string]any, error) {
	switch node := w.(type) {
	case Eq:
		field, err := searchField(col, node.Field)
		if err != nil {
			return nil, err
		}
		return []map[string]any{termNode(field, node.Value)}, nil

	case Cmp:
		return cmpSearchNodes(node, col)

	case In:
		field, err := searchField(col, node.Field)
		if err != nil {
			return nil, err
		}
		if len(node.Values) == 0 {
			return nil, fmt.Errorf("%w (field %q)", ErrEmptyValueList, node.Field)
		}
		terms := make([]map[string]any, 0, len(node.Values))
		for _, v := range node.Values {
			terms = append(terms, termNode(field, v))
		}
		return []map[string]any{boolNode("should", terms)}, nil

	case NotIn:
		field, err := searchField(col, node.Field)
		if err != nil {
			return nil, err
		}
		if len(node.Values) == 0 {
			return nil, fmt.Errorf("%w (field %q)", ErrEmptyValueList, node.Field)
		}
		terms := make([]map[string]any, 0, len(node.Values))
		for _, v := range node.Values {
			terms = append(terms, termNode(field, v))
		}
		return []map[string]any{boolNode("must_not", terms)}, nil

	case And:
		children, err := groupSearchNodes(node, col)
		if err != nil {
			return nil, err
		}
		switch len(children) {
		case 0:
			return nil, nil
		case 1:
			return children, nil
		default:
			return []map[string]any{boolNode("must", children)}, nil
		}

	case Or:
		children, err := groupSearchNodes(node, col)
		if err != nil {
			return nil, err
		}
		switch len(children) {
		case 0:
			return nil, nil
		case 1:
			return children, nil
		default:
			return []map[string]any{boolNode("should", children)}, nil
		}

	case Not:
		if node.Inner == nil {
			return nil, nil
		}
		inner, err := searchNodes(node.Inner, col)
		if err != nil {
			return nil, err
		}
		if len(inner) == 0 {
			return nil, nil
		}
		return []map[string]any{boolNode("must_not", inner)}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected condition type %T", ErrMalformedFilter, w)
	}
}

// cmpSearchNodes maps a single comparison onto a term, range or must_not
// node.
func cmpSearchNodes(node Cmp, col string) ([]map[string]any, error) {
	field, err := searchField(col, node.Field)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case OpEq:
		return []map[string]any{termNode(field, node.Value)}, nil
	case OpNe:
		return []map[string]any{boolNode("must_not", []map[string]any{termNode(field, node.Value)})}, nil
	case OpLt, OpLte, OpGt, OpGte:
		bound := strings.TrimPrefix(string(node.Op), "$")
		return []map[string]any{{
			"range": map[string]any{field: map[string]any{bound: node.Value}},
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, node.Op)
	}
}

// groupSearchNodes compiles the children of a logical group, merging
// adjacent range conditions on the same field into one range node. The
// merge keeps the procedure's predicate compact; semantics are unchanged.
func groupSearchNodes(nodes []Where, col string) ([]map[string]any, error) {
	var result []map[string]any
	ranges := make(map[string]map[string]any)
	var rangeOrder []string

	for _, sub := range nodes {
		if sub == nil {
			continue
		}
		if cmp, ok := sub.(Cmp); ok && isRangeOp(cmp.Op) {
			field, err := searchField(col, cmp.Field)
			if err != nil {
				return nil, err
			}
			bounds, seen := ranges[field]
			if !seen {
				bounds = make(map[string]any)
				ranges[field] = bounds
				rangeOrder = append(rangeOrder, field)
			}
			bounds[strings.TrimPrefix(string(cmp.Op), "$")] = cmp.Value
			continue
		}
		children, err := searchNodes(sub, col)
		if err != nil {
			return nil, err
		}
		result = append(result, children...)
	}

	for _, field := range rangeOrder {
		result = append(result, map[string]any{
			"range": map[string]any{field: ranges[field]},
		})
	}
	return result, nil
}

func isRangeOp(op Op) bool {
	switch op {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	}
	return false
}

func termNode(field string, value any) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

func boolNode(clause string, children []map[string]any) map[string]any {
	return map[string]any{"bool": map[string]any{clause: children}}
}

// searchField renders the field reference the hybrid-search procedure
// expects: a parenthesized JSON extraction over the metadata column.
func searchField(col, field string) (string, error) {
	if err := ValidateField(field); err != nil {
		return "", err
	}
	return fmt.Sprintf("(JSON_EXTRACT(%s, '$.%s'))", col, field), nil
}

// DocumentSearchJSON compiles a document filter into the full-text clause
// of the hybrid-search procedure: a single query_string node over the
// document column. Nested $and groups join their terms with spaces and $or
// groups join with "OR", matching how the procedure tokenizes boolean
// full-text queries. $regex has no full-text equivalent and is rejected.
func DocumentSearchJSON(w WhereDocument, documentColumn string) (map[string]any, error) {
	if w == nil {
		return nil, nil
	}
	query, err := documentQueryString(w)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, nil
	}
	return map[string]any{
		"query_string": map[string]any{
			"fields": []string{documentColumn},
			"query":  query,
		},
	}, nil
}

func documentQueryString(w WhereDocument) (string, error) {
	switch node := w.(type) {
	case Contains:
		return node.Text, nil
	case Regex:
		return "", ErrRegexUnsupported
	case DocAnd:
		return joinDocumentTerms(node, " ")
	case DocOr:
		return joinDocumentTerms(node, " OR ")
	default:
		return "", fmt.Errorf("%w: unexpected condition type %T", ErrMalformedFilter, w)
	}
}

func joinDocumentTerms(nodes []WhereDocument, joiner string) (string, error) {
	var parts []string
	for _, sub := range nodes {
		if sub == nil {
			continue
		}
		part, err := documentQueryString(sub)
		if err != nil {
			return "", err
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, joiner), nil
}
