// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import "encoding/json"

// ParsedGeometry is the intermediate representation every GeoJSON
// geometry is reduced to before it is encoded as a flat-buffer
// Geometry table. It mirrors the Geometry table's own shape: a flat
// xy coordinate list, an optional parallel z list, optional ring/part
// end offsets, and optional nested parts for MultiPolygon and
// GeometryCollection.
type ParsedGeometry struct {
	Type  GeometryType
	XY    []float64
	Z     []float64 // nil unless some coordinate in this node had a third component
	Ends  []uint32  // nil unless this node is a multi-ring Polygon
	Parts []*ParsedGeometry
}

// coord is one decoded GeoJSON position.
type coord struct {
	X, Y float64
	Z    float64
	HasZ bool
}

func decodeCoord(v interface{}, index int) (coord, error) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) < 2 {
		return coord{}, textErr("coordinate is not an array of at least two numbers")
	}
	if len(arr) > 3 {
		return coord{}, &UnsupportedGeometryError{Index: index, Type: "4D coordinate"}
	}
	x, err := toFloat64(arr[0])
	if err != nil {
		return coord{}, err
	}
	y, err := toFloat64(arr[1])
	if err != nil {
		return coord{}, err
	}
	c := coord{X: x, Y: y}
	if len(arr) == 3 {
		z, err := toFloat64(arr[2])
		if err != nil {
			return coord{}, err
		}
		c.Z = z
		c.HasZ = true
	}
	return c, nil
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	default:
		return 0, textErr("expected a JSON number")
	}
}

func decodeCoords(v interface{}, index int) ([]coord, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, textErr("expected a coordinate array")
	}
	coords := make([]coord, len(arr))
	for i, raw := range arr {
		c, err := decodeCoord(raw, index)
		if err != nil {
			return nil, err
		}
		coords[i] = c
	}
	return coords, nil
}

func decodeRings(v interface{}, index int) ([][]coord, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, textErr("expected an array of coordinate arrays")
	}
	rings := make([][]coord, len(arr))
	for i, raw := range arr {
		c, err := decodeCoords(raw, index)
		if err != nil {
			return nil, err
		}
		rings[i] = c
	}
	return rings, nil
}

// flatten lays out a flat list of positions as parallel xy/z slices.
// z is nil unless at least one position carried a third component, in
// which case every position contributes an entry (0.0 where absent).
func flatten(coords []coord) (xy []float64, z []float64) {
	xy = make([]float64, 0, len(coords)*2)
	anyZ := false
	for _, c := range coords {
		xy = append(xy, c.X, c.Y)
		if c.HasZ {
			anyZ = true
		}
	}
	if anyZ {
		z = make([]float64, len(coords))
		for i, c := range coords {
			z[i] = c.Z
		}
	}
	return
}

// flattenRings lays out nested rings as flat xy/z plus a cumulative
// coordinate-count end offset per ring. It is shared by Polygon,
// MultiLineString, and MultiPolygon (once per polygon) decoding; the
// caller decides whether the resulting ends slice is kept (multi-ring
// Polygon or MultiPolygon part) or discarded (single-ring Polygon or
// MultiPolygon part, MultiLineString).
func flattenRings(rings [][]coord) (xy []float64, z []float64, ends []uint32, err error) {
	anyZ := false
	var flat []coord
	count := uint32(0)
	for _, ring := range rings {
		flat = append(flat, ring...)
		n := uint64(count) + uint64(len(ring))
		if n > maxUint32 {
			return nil, nil, nil, &NumericOverflowError{What: "ring coordinate-count index exceeds uint32"}
		}
		count = uint32(n)
		ends = append(ends, count)
		for _, c := range ring {
			if c.HasZ {
				anyZ = true
			}
		}
	}
	xy = make([]float64, 0, len(flat)*2)
	for _, c := range flat {
		xy = append(xy, c.X, c.Y)
	}
	if anyZ {
		z = make([]float64, len(flat))
		for i, c := range flat {
			z[i] = c.Z
		}
	}
	return
}

const maxUint32 = 1<<32 - 1

// parseGeometry converts a decoded GeoJSON geometry object into a
// ParsedGeometry. index is the feature's position in input order, used
// only to annotate errors.
func parseGeometry(raw map[string]interface{}, index int) (*ParsedGeometry, error) {
	typ, _ := raw["type"].(string)
	switch typ {
	case "Point":
		c, err := decodeCoord(raw["coordinates"], index)
		if err != nil {
			return nil, err
		}
		xy, z := flatten([]coord{c})
		return &ParsedGeometry{Type: GeometryTypePoint, XY: xy, Z: z}, nil

	case "LineString":
		coords, err := decodeCoords(raw["coordinates"], index)
		if err != nil {
			return nil, err
		}
		xy, z := flatten(coords)
		return &ParsedGeometry{Type: GeometryTypeLineString, XY: xy, Z: z}, nil

	case "MultiPoint":
		coords, err := decodeCoords(raw["coordinates"], index)
		if err != nil {
			return nil, err
		}
		xy, z := flatten(coords)
		return &ParsedGeometry{Type: GeometryTypeMultiPoint, XY: xy, Z: z}, nil

	case "MultiLineString":
		rings, err := decodeRings(raw["coordinates"], index)
		if err != nil {
			return nil, err
		}
		xy, z, _, err := flattenRings(rings)
		if err != nil {
			return nil, err
		}
		return &ParsedGeometry{Type: GeometryTypeMultiLineString, XY: xy, Z: z}, nil

	case "Polygon":
		rings, err := decodeRings(raw["coordinates"], index)
		if err != nil {
			return nil, err
		}
		xy, z, ends, err := flattenRings(rings)
		if err != nil {
			return nil, err
		}
		if len(rings) <= 1 {
			ends = nil
		}
		return &ParsedGeometry{Type: GeometryTypePolygon, XY: xy, Z: z, Ends: ends}, nil

	case "MultiPolygon":
		polys, ok := raw["coordinates"].([]interface{})
		if !ok {
			return nil, textErr("MultiPolygon coordinates must be an array of polygons")
		}
		parts := make([]*ParsedGeometry, len(polys))
		for i, p := range polys {
			rings, err := decodeRings(p, index)
			if err != nil {
				return nil, err
			}
			xy, z, ends, err := flattenRings(rings)
			if err != nil {
				return nil, err
			}
			if len(rings) <= 1 {
				ends = nil
			}
			parts[i] = &ParsedGeometry{Type: GeometryTypePolygon, XY: xy, Z: z, Ends: ends}
		}
		return &ParsedGeometry{Type: GeometryTypeMultiPolygon, Parts: parts}, nil

	case "GeometryCollection":
		geoms, ok := raw["geometries"].([]interface{})
		if !ok {
			return nil, textErr("GeometryCollection requires a geometries array")
		}
		parts := make([]*ParsedGeometry, len(geoms))
		for i, g := range geoms {
			obj, ok := g.(map[string]interface{})
			if !ok {
				return nil, textErr("geometry collection member is not a JSON object")
			}
			part, err := parseGeometry(obj, index)
			if err != nil {
				return nil, err
			}
			parts[i] = part
		}
		return &ParsedGeometry{Type: GeometryTypeGeometryCollection, Parts: parts}, nil

	default:
		return nil, &UnsupportedGeometryError{Index: index, Type: typ}
	}
}
