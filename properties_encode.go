// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"bytes"
	"encoding/json"
)

// encodeProperties writes a feature's properties against the global
// schema, in schema (column index) order. Keys absent from the
// feature, or present with a JSON null value, are silently skipped;
// the column index advances regardless, matching FGB's sparse
// per-feature property encoding. A feature with no matching
// properties at all yields a nil slice, signaling the caller to omit
// the Feature's properties field entirely.
func encodeProperties(props map[string]interface{}, schema []ColSpec) ([]byte, error) {
	if len(props) == 0 || len(schema) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := NewPropWriter(&buf)
	wrote := false

	for i, col := range schema {
		val, ok := props[col.Name]
		if !ok || val == nil {
			continue
		}
		if _, err := w.WriteUShort(uint16(i)); err != nil {
			return nil, &PropertyEncodeError{Column: col.Name, Err: err}
		}
		if err := encodeValue(w, col.Type, val); err != nil {
			return nil, &PropertyEncodeError{Column: col.Name, Err: err}
		}
		wrote = true
	}

	if !wrote {
		return nil, nil
	}
	return buf.Bytes(), nil
}

func encodeValue(w *PropWriter, t ColumnType, val interface{}) error {
	switch t {
	case ColumnTypeBool:
		b, _ := val.(bool)
		_, err := w.WriteBool(b)
		return err

	case ColumnTypeLong:
		n, err := toInt64(val)
		if err != nil {
			return err
		}
		_, err = w.WriteLong(n)
		return err

	case ColumnTypeDouble:
		n, err := toFloat64(val)
		if err != nil {
			return err
		}
		_, err = w.WriteDouble(n)
		return err

	case ColumnTypeString:
		s, _ := val.(string)
		_, err := w.WriteString(s)
		return err

	default: // ColumnTypeJson
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		_, err = w.WriteBinary(b)
		return err
	}
}

func toInt64(v interface{}) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, textErr("expected a JSON number")
	}
	return n.Int64()
}
