// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command geofab is a small geospatial toolkit. Its flagship
// subcommand reads GeoJSON from standard input and writes a
// FlatGeobuf file to standard output.
package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

var cli struct {
	Fgb      FgbCmd      `cmd:"" help:"Write a FlatGeobuf file from GeoJSON read on stdin."`
	Bbox     BboxCmd     `cmd:"" help:"Print the bounding box of each GeoJSON feature read on stdin."`
	Centroid CentroidCmd `cmd:"" help:"Print the centroid of each GeoJSON feature read on stdin."`
	Version  VersionCmd  `cmd:"" help:"Print the version of this program."`
}

func main() {
	ctx := kong.Parse(&cli, kong.Name("geofab"), kong.Description("A command-line geospatial toolkit."))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
