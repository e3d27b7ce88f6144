// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// BboxCmd implements `geofab bbox`: print the GeoJSON-style
// [minX,minY,maxX,maxY] bounding box of each feature read on stdin,
// one feature (or bare geometry) per line.
type BboxCmd struct{}

func (c *BboxCmd) Run() error {
	return eachLine(os.Stdin, func(line string) (string, error) {
		geom, err := decodeLineGeometry(line)
		if err != nil {
			return "", err
		}
		b := geom.Bound()
		return fmt.Sprintf("[%g,%g,%g,%g]", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()), nil
	})
}

// decodeLineGeometry accepts either a bare GeoJSON geometry or a
// GeoJSON Feature and returns its geometry.
func decodeLineGeometry(line string) (orb.Geometry, error) {
	if f, err := geojson.UnmarshalFeature([]byte(line)); err == nil {
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature has no geometry")
		}
		return f.Geometry, nil
	}
	g, err := geojson.UnmarshalGeometry([]byte(line))
	if err != nil {
		return nil, err
	}
	return g.Geometry(), nil
}

func eachLine(f *os.File, transform func(string) (string, error)) error {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out, err := transform(line)
		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "geofab: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
	return scanner.Err()
}
