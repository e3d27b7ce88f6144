// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/crescendo-gis/geofab"
)

// FgbCmd implements `geofab fgb`: the FlatGeobuf writer core. It reads
// a GeoJSON Feature or FeatureCollection from stdin and writes a
// FlatGeobuf file to stdout.
type FgbCmd struct {
	Name     string `help:"Dataset name recorded in the FlatGeobuf header." default:"L1"`
	NoIndex  bool   `help:"Omit the packed Hilbert R-tree spatial index."`
	NodeSize uint16 `help:"Packed Hilbert R-tree node size." default:"16"`
}

func (c *FgbCmd) Run() error {
	features, err := flatgeobuf.DecodeFeatures(os.Stdin)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "geofab: failed to parse input: %v\n", err)
		return err
	}

	opts := &flatgeobuf.WriteOptions{Name: c.Name, NodeSize: c.NodeSize}
	if c.NoIndex {
		opts.NodeSize = 0
	}

	if err := flatgeobuf.Write(features, os.Stdout, opts); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "geofab: failed to write FlatGeobuf: %v\n", err)
		return err
	}
	return nil
}

// VersionCmd implements `geofab version`.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(version)
	return nil
}
