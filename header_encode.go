// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/crescendo-gis/geofab/flat"
	"github.com/crescendo-gis/geofab/packedrtree"
)

// buildColumns encodes a schema as a flat-buffer vector of Column
// tables, returning the vector's offset. Each column carries only its
// name and type; the remaining Column fields (width, precision,
// nullable, and so on) are not produced by schema inference and are
// left at their flat-buffer defaults.
func buildColumns(builder *flatbuffers.Builder, schema []ColSpec) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(schema))
	for i, col := range schema {
		nameOff := builder.CreateString(col.Name)
		flat.ColumnStart(builder)
		flat.ColumnAddName(builder, nameOff)
		flat.ColumnAddType(builder, col.Type)
		offsets[i] = flat.ColumnEnd(builder)
	}
	flat.HeaderStartColumnsVector(builder, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	return builder.EndVector(len(offsets))
}

// uniformGeometryType returns the single GeometryType shared by every
// feature that has a geometry, or GeometryTypeUnknown if the feature
// set is empty, every feature lacks a geometry, or more than one
// geometry type is present.
func uniformGeometryType(geoms []*ParsedGeometry) GeometryType {
	var t GeometryType
	seen := false
	for _, g := range geoms {
		if g == nil {
			continue
		}
		if !seen {
			t = g.Type
			seen = true
			continue
		}
		if g.Type != t {
			return GeometryTypeUnknown
		}
	}
	if !seen {
		return GeometryTypeUnknown
	}
	return t
}

// buildHeader encodes the file header as a size-prefixed flat-buffer
// and returns the finished bytes, ready to be written to the output
// stream verbatim.
func buildHeader(name string, envelope packedrtree.Box, geomType GeometryType, schema []ColSpec, featuresCount uint64, nodeSize uint16) []byte {
	builder := flatbuffers.NewBuilder(1024)

	colsOff := buildColumns(builder, schema)
	nameOff := builder.CreateString(name)

	flat.HeaderStartEnvelopeVector(builder, 4)
	builder.PrependFloat64(envelope.YMax)
	builder.PrependFloat64(envelope.XMax)
	builder.PrependFloat64(envelope.YMin)
	builder.PrependFloat64(envelope.XMin)
	envOff := builder.EndVector(4)

	flat.HeaderStart(builder)
	flat.HeaderAddName(builder, nameOff)
	flat.HeaderAddEnvelope(builder, envOff)
	flat.HeaderAddGeometryType(builder, geomType)
	flat.HeaderAddColumns(builder, colsOff)
	flat.HeaderAddFeaturesCount(builder, featuresCount)
	flat.HeaderAddIndexNodeSize(builder, nodeSize)
	header := flat.HeaderEnd(builder)
	builder.FinishSizePrefixed(header)

	return builder.FinishedBytes()
}
