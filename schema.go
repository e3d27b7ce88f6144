// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

// Schema is anything which exposes a FlatGeobuf column list, such as a
// *Header. It lets PropReader decode a feature's properties without
// depending on the header type directly.
type Schema interface {
	ColumnsLength() int
	Columns(obj *Column, j int) bool
}
