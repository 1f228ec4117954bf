package filter

import (
	"fmt"
	"sort"
)

// ParseWhere converts a Mongo-style map literal into a typed metadata
// filter. Supported shapes:
//
//	{"field": scalar}                            -> Eq
//	{"field": {"$op": value}}                    -> Cmp / In / NotIn
//	{"$and": [sub, ...]} / {"$or": [sub, ...]}   -> And / Or
//	{"$not": sub}                                -> Not
//
// A map with several keys is an implicit And over its entries. Keys are
// visited in sorted order so compilation is deterministic. A nil or empty
// map parses to nil (no constraint). Empty $and/$or lists also parse to an
// empty group, which later contributes nothing to the compiled predicate;
// this matches existing callers that build lists dynamically.
func ParseWhere(m map[string]any) (Where, error) {
	if len(m) == 0 {
		return nil, nil
	}

	conditions := make([]Where, 0, len(m))
	for _, key := range sortedKeys(m) {
		value := m[key]
		switch key {
		case "$and", "$or":
			subs, err := parseWhereList(key, value)
			if err != nil {
				return nil, err
			}
			if key == "$and" {
				conditions = append(conditions, And(subs))
			} else {
				conditions = append(conditions, Or(subs))
			}

		case "$not":
			subMap, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: $not expects an object, got %T", ErrMalformedFilter, value)
			}
			inner, err := ParseWhere(subMap)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, Not{Inner: inner})

		default:
			cond, err := parseFieldCondition(key, value)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, cond)
		}
	}

	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return And(conditions), nil
}

func parseWhereList(op string, value any) ([]Where, error) {
	list, ok := value.([]any)
	if !ok {
		if typed, isTyped := value.([]map[string]any); isTyped {
			list = make([]any, len(typed))
			for i, m := range typed {
				list[i] = m
			}
		} else {
			return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrMalformedFilter, op, value)
		}
	}
	subs := make([]Where, 0, len(list))
	for _, item := range list {
		subMap, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s list entries must be objects, got %T", ErrMalformedFilter, op, item)
		}
		sub, err := ParseWhere(subMap)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// parseFieldCondition parses a single field entry: either a direct scalar
// equality or an operator map.
func parseFieldCondition(field string, value any) (Where, error) {
	if err := ValidateField(field); err != nil {
		return nil, err
	}

	opMap, ok := value.(map[string]any)
	if !ok {
		return Eq{Field: field, Value: value}, nil
	}
	if len(opMap) == 0 {
		return nil, fmt.Errorf("%w: field %q has an empty operator map", ErrMalformedFilter, field)
	}

	conditions := make([]Where, 0, len(opMap))
	for _, op := range sortedKeys(opMap) {
		opValue := opMap[op]
		switch Op(op) {
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
			conditions = append(conditions, Cmp{Field: field, Op: Op(op), Value: opValue})
		default:
			switch op {
			case "$in":
				values, err := toValueList(op, opValue)
				if err != nil {
					return nil, err
				}
				conditions = append(conditions, In{Field: field, Values: values})
			case "$nin":
				values, err := toValueList(op, opValue)
				if err != nil {
					return nil, err
				}
				conditions = append(conditions, NotIn{Field: field, Values: values})
			default:
				return nil, fmt.Errorf("%w: %q on field %q", ErrUnknownOperator, op, field)
			}
		}
	}

	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return And(conditions), nil
}

// toValueList accepts the common list shapes callers produce for $in/$nin.
func toValueList(op string, value any) ([]any, error) {
	switch list := value.(type) {
	case []any:
		return list, nil
	case []string:
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = v
		}
		return out, nil
	case []int:
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = v
		}
		return out, nil
	case []float64:
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrMalformedFilter, op, value)
	}
}

// ParseWhereDocument converts a map literal into a typed document filter.
// Supported keys: $contains, $regex, $and, $or.
func ParseWhereDocument(m map[string]any) (WhereDocument, error) {
	if len(m) == 0 {
		return nil, nil
	}

	conditions := make([]WhereDocument, 0, len(m))
	for _, key := range sortedKeys(m) {
		value := m[key]
		switch key {
		case "$contains":
			text, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: $contains expects a string, got %T", ErrMalformedFilter, value)
			}
			conditions = append(conditions, Contains{Text: text})

		case "$regex":
			pattern, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: $regex expects a string, got %T", ErrMalformedFilter, value)
			}
			conditions = append(conditions, Regex{Pattern: pattern})

		case "$and", "$or":
			subs, err := parseWhereDocumentList(key, value)
			if err != nil {
				return nil, err
			}
			if key == "$and" {
				conditions = append(conditions, DocAnd(subs))
			} else {
				conditions = append(conditions, DocOr(subs))
			}

		default:
			return nil, fmt.Errorf("%w: %q in document filter", ErrUnknownOperator, key)
		}
	}

	if len(conditions) == 1 {
		return conditions[0], nil
	}
	return DocAnd(conditions), nil
}

func parseWhereDocumentList(op string, value any) ([]WhereDocument, error) {
	list, ok := value.([]any)
	if !ok {
		if typed, isTyped := value.([]map[string]any); isTyped {
			list = make([]any, len(typed))
			for i, m := range typed {
				list[i] = m
			}
		} else {
			return nil, fmt.Errorf("%w: %s expects a list, got %T", ErrMalformedFilter, op, value)
		}
	}
	subs := make([]WhereDocument, 0, len(list))
	for _, item := range list {
		subMap, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s list entries must be objects, got %T", ErrMalformedFilter, op, item)
		}
		sub, err := ParseWhereDocument(subMap)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
