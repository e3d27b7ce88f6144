// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// CentroidCmd implements `geofab centroid`: print the centroid of
// each feature (or bare geometry) read on stdin, one per line, as a
// GeoJSON Point.
type CentroidCmd struct{}

func (c *CentroidCmd) Run() error {
	return eachLine(os.Stdin, func(line string) (string, error) {
		geom, err := decodeLineGeometry(line)
		if err != nil {
			return "", err
		}
		point, _ := planar.CentroidArea(geom)
		b, err := geojson.NewGeometry(point).MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}
