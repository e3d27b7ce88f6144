// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/crescendo-gis/geofab/flat"
)

// buildFeature encodes one feature's geometry and properties as a
// size-prefixed Feature flat-buffer and returns the finished bytes.
// geom may be nil (no geometry field is written); props may be nil or
// empty (no properties field is written).
func buildFeature(geom *ParsedGeometry, props []byte) []byte {
	builder := flatbuffers.NewBuilder(256)

	var propsOff flatbuffers.UOffsetT
	if len(props) > 0 {
		propsOff = builder.CreateByteVector(props)
	}

	var geomOff flatbuffers.UOffsetT
	if geom != nil {
		geomOff = buildGeometry(builder, geom)
	}

	flat.FeatureStart(builder)
	if geomOff != 0 {
		flat.FeatureAddGeometry(builder, geomOff)
	}
	if propsOff != 0 {
		flat.FeatureAddProperties(builder, propsOff)
	}
	feature := flat.FeatureEnd(builder)
	builder.FinishSizePrefixed(feature)

	return builder.FinishedBytes()
}
