// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"encoding/json"
	"io"
)

// InputFeature is a single decoded GeoJSON feature: an optional
// geometry (nil when the feature carries none) and an optional
// property map.
//
// Numeric property values are decoded as json.Number rather than
// float64, so that the schema inferer (see inferSchema) can tell apart
// a property written as an integer literal ("count": 4) from one
// written with a fractional or exponential literal ("count": 4.0),
// the same distinction encoding/json's default float64 decoding would
// erase.
type InputFeature struct {
	Geometry   map[string]interface{}
	Properties map[string]interface{}
}

// DecodeFeatures reads a GeoJSON Feature or FeatureCollection from r
// and returns its features in the order they appear in the input.
//
// Geometry and property fields are left undecoded (as generic
// map[string]interface{} values produced by a json.Decoder with
// UseNumber enabled) so that geometry parsing and schema inference can
// later be driven entirely by ColSpec/ParsedGeometry rules rather than
// encoding/json's lossy default number handling.
func DecodeFeatures(r io.Reader) ([]InputFeature, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, &UpstreamParseError{Index: 0, Err: err}
	}

	typ, _ := doc["type"].(string)
	switch typ {
	case "FeatureCollection":
		rawFeatures, _ := doc["features"].([]interface{})
		features := make([]InputFeature, 0, len(rawFeatures))
		for i, rf := range rawFeatures {
			obj, ok := rf.(map[string]interface{})
			if !ok {
				return nil, &UpstreamParseError{Index: i, Err: textErr("feature is not a JSON object")}
			}
			f, err := decodeFeature(obj)
			if err != nil {
				return nil, &UpstreamParseError{Index: i, Err: err}
			}
			features = append(features, f)
		}
		return features, nil
	case "Feature":
		f, err := decodeFeature(doc)
		if err != nil {
			return nil, &UpstreamParseError{Index: 0, Err: err}
		}
		return []InputFeature{f}, nil
	default:
		return nil, &UpstreamParseError{Index: 0, Err: fmtErr("unsupported top-level GeoJSON type %q", typ)}
	}
}

func decodeFeature(obj map[string]interface{}) (InputFeature, error) {
	var f InputFeature
	if g, ok := obj["geometry"]; ok && g != nil {
		geom, ok := g.(map[string]interface{})
		if !ok {
			return f, textErr("geometry is not a JSON object")
		}
		f.Geometry = geom
	}
	if p, ok := obj["properties"]; ok && p != nil {
		props, ok := p.(map[string]interface{})
		if !ok {
			return f, textErr("properties is not a JSON object")
		}
		f.Properties = props
	}
	return f, nil
}
