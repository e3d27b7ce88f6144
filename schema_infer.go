// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"encoding/json"
	"sort"
)

// ColSpec is one column of an inferred schema: a property key and the
// scalar FlatGeobuf column type every feature's value for that key
// will be encoded as.
type ColSpec struct {
	Name string
	Type ColumnType
}

// inferSchema unions the property keys of every feature and derives
// each key's column type from the values seen for it across all
// features, following the promotion rule: Bool, Long, Double, String,
// and Json are each compatible only with themselves, except Long and
// Double, which promote to Double; any other mix, and any key whose
// values are all JSON null, promotes to Json. The result is sorted
// lexicographically by key name.
func inferSchema(features []InputFeature) []ColSpec {
	order := make([]string, 0)
	types := make(map[string]ColumnType)
	resolved := make(map[string]bool)

	for _, f := range features {
		for key, val := range f.Properties {
			t, isNull := scalarType(val)
			if _, seen := types[key]; !seen {
				order = append(order, key)
				if isNull {
					types[key] = ColumnTypeJson
					resolved[key] = false
				} else {
					types[key] = t
					resolved[key] = true
				}
				continue
			}
			if isNull {
				continue
			}
			if resolved[key] {
				types[key] = promote(types[key], t)
			} else {
				types[key] = t
				resolved[key] = true
			}
		}
	}

	sort.Strings(order)
	schema := make([]ColSpec, len(order))
	for i, name := range order {
		schema[i] = ColSpec{Name: name, Type: types[name]}
	}
	return schema
}

// scalarType classifies a decoded JSON property value. isNull is true
// for a JSON null, in which case the returned type is a placeholder
// and must not be used to resolve the column's type.
func scalarType(v interface{}) (t ColumnType, isNull bool) {
	switch val := v.(type) {
	case nil:
		return ColumnTypeJson, true
	case bool:
		return ColumnTypeBool, false
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return ColumnTypeLong, false
		}
		return ColumnTypeDouble, false
	case string:
		return ColumnTypeString, false
	default:
		// Arrays and nested objects collapse to Json.
		return ColumnTypeJson, false
	}
}

// promote implements the two-case schema conflict rule: Long and
// Double widen to Double; anything else falls back to Json.
func promote(a, b ColumnType) ColumnType {
	if a == b {
		return a
	}
	if (a == ColumnTypeLong && b == ColumnTypeDouble) || (a == ColumnTypeDouble && b == ColumnTypeLong) {
		return ColumnTypeDouble
	}
	return ColumnTypeJson
}

// columnIndex builds a lookup from column name to its position in
// schema.
func columnIndex(schema []ColSpec) map[string]int {
	m := make(map[string]int, len(schema))
	for i, c := range schema {
		m[c.Name] = i
	}
	return m
}
