// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package packedrtree provides a packed Hilbert R-Tree spatial index.
//
// Although designed for FlatGeobuf compatibility, the simple, reusable,
// constructs within this package can be used standalone from
// FlatGeobuf, wherever a spatial index is needed.
package packedrtree
