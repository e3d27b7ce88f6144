// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import "github.com/crescendo-gis/geofab/packedrtree"

// boundsOf folds a ParsedGeometry's coordinates into a bounding box.
// A nil geometry (a feature with no geometry) yields the empty box.
// GeometryCollection and MultiPolygon recurse into Parts; every other
// type folds its own XY pairs directly.
func boundsOf(g *ParsedGeometry) packedrtree.Box {
	b := packedrtree.EmptyBox
	if g == nil {
		return b
	}
	expandBounds(&b, g)
	return b
}

func expandBounds(b *packedrtree.Box, g *ParsedGeometry) {
	for i := 0; i+1 < len(g.XY); i += 2 {
		b.ExpandXY(g.XY[i], g.XY[i+1])
	}
	for _, part := range g.Parts {
		expandBounds(b, part)
	}
}
