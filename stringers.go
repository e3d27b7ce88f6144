// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/crescendo-gis/geofab/packedrtree"
)

func FeatureString(f *Feature) string {
	return featureString(f)
}

func FeatureStringSchema(f *Feature, s Schema) string {
	return featureString(f, s)
}

func featureString(f *Feature, s ...Schema) string {
	var b strings.Builder
	b.WriteString("Feature{Geometry:")
	if err := featureStringGeom(f, &b); err != nil {
		return "error: geometry: " + err.Error()
	}
	b.WriteString(",Properties:{")
	if err := featureStringProps(f, &b, s...); err != nil {
		return "error: properties: " + err.Error()
	}
	b.WriteString("}}")
	return b.String()
}

func featureStringGeom(f *Feature, b *strings.Builder) error {
	return safeFlatBuffersInteraction(func() error {
		var g Geometry
		if f.Geometry(&g) != nil {
			b.WriteString("{Type:")
			b.WriteString(g.Type().String())
			b.WriteString(",Bounds:")
			bounds := packedrtree.EmptyBox
			geometryBounds(&g, &bounds)
			if bounds == packedrtree.EmptyBox {
				b.WriteString("<nil>")
			} else {
				b.WriteString(bounds.String())
			}
			b.WriteByte('}')
		} else {
			b.WriteString("<nil>")
		}
		return nil
	})
}

func featureStringProps(f *Feature, b *strings.Builder, s ...Schema) error {
	return safeFlatBuffersInteraction(func() error {
		// Pick the lowest indexed schema which has at least one
		// column.
		schema := s[0]
		n := schema.ColumnsLength()
		for i := 1; i < len(s) && n == 0; i++ {
			if n2 := s[i].ColumnsLength(); n2 > 0 {
				schema = s[i]
				n = n2
			}
		}
		// Generate the properties using the schema we picked.
		r := NewPropReader(bytes.NewReader(f.PropertiesBytes()))
		var vals []PropValue
		var err error
		if vals, err = r.ReadSchema(schema); err != nil {
			return err
		}
		printFunc := func(vv *PropValue, i int) {
			if len(vv.Col.Name()) > 0 {
				b.Write(vv.Col.Name())
			} else {
				_, _ = fmt.Fprintf(b, "[%d]", i)
			}
			b.WriteByte(':')
			_, _ = fmt.Fprint(b, vv.Value)

		}
		if len(vals) > 0 {
			printFunc(&vals[0], 0)
			for i := 1; i < len(vals); i++ {
				b.WriteByte(',')
				printFunc(&vals[i], i)
			}
		}
		return nil
	})
}

func geometryBounds(g *Geometry, b *packedrtree.Box) {
	n := g.XyLength()
	for i := 0; i < n; i += 2 {
		b.ExpandXY(g.Xy(i+0), g.Xy(i+1))
	}
	n = g.PartsLength()
	for i := 0; i < n; i++ {
		var h Geometry
		if g.Parts(&h, i) {
			geometryBounds(&h, b)
		}
	}
}
