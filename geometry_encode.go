// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/crescendo-gis/geofab/flat"
)

// buildGeometry encodes a ParsedGeometry as a flat-buffer Geometry
// table inside builder, returning the table's offset. Children (Parts)
// are built, and closed, before any vector belonging to this node, and
// this node's vectors are built before the node's own table, since
// FlatBuffers permits only one open object at a time.
func buildGeometry(builder *flatbuffers.Builder, g *ParsedGeometry) flatbuffers.UOffsetT {
	var partsOff flatbuffers.UOffsetT
	if len(g.Parts) > 0 {
		offsets := make([]flatbuffers.UOffsetT, len(g.Parts))
		for i, part := range g.Parts {
			offsets[i] = buildGeometry(builder, part)
		}
		flat.GeometryStartPartsVector(builder, len(offsets))
		for i := len(offsets) - 1; i >= 0; i-- {
			builder.PrependUOffsetT(offsets[i])
		}
		partsOff = builder.EndVector(len(offsets))
	}

	var endsOff flatbuffers.UOffsetT
	if len(g.Ends) > 0 {
		flat.GeometryStartEndsVector(builder, len(g.Ends))
		for i := len(g.Ends) - 1; i >= 0; i-- {
			builder.PrependUint32(g.Ends[i])
		}
		endsOff = builder.EndVector(len(g.Ends))
	}

	var xyOff flatbuffers.UOffsetT
	if len(g.XY) > 0 {
		flat.GeometryStartXyVector(builder, len(g.XY))
		for i := len(g.XY) - 1; i >= 0; i-- {
			builder.PrependFloat64(g.XY[i])
		}
		xyOff = builder.EndVector(len(g.XY))
	}

	var zOff flatbuffers.UOffsetT
	if len(g.Z) > 0 {
		flat.GeometryStartZVector(builder, len(g.Z))
		for i := len(g.Z) - 1; i >= 0; i-- {
			builder.PrependFloat64(g.Z[i])
		}
		zOff = builder.EndVector(len(g.Z))
	}

	flat.GeometryStart(builder)
	if endsOff != 0 {
		flat.GeometryAddEnds(builder, endsOff)
	}
	if xyOff != 0 {
		flat.GeometryAddXy(builder, xyOff)
	}
	if zOff != 0 {
		flat.GeometryAddZ(builder, zOff)
	}
	flat.GeometryAddType(builder, g.Type)
	if partsOff != 0 {
		flat.GeometryAddParts(builder, partsOff)
	}
	return flat.GeometryEnd(builder)
}
