package flatgeobuf

import "github.com/crescendo-gis/geofab/flat"

// These aliases let the rest of this package, and its tests, refer to
// the generated FlatGeobuf schema types as bare names, the way the
// original flatc-generated code is used throughout the C++ and Rust
// reference implementations.
type (
	Header       = flat.Header
	Feature      = flat.Feature
	Geometry     = flat.Geometry
	Column       = flat.Column
	ColumnType   = flat.ColumnType
	GeometryType = flat.GeometryType
	Crs          = flat.Crs
)

const (
	ColumnTypeByte     = flat.ColumnTypeByte
	ColumnTypeUByte    = flat.ColumnTypeUByte
	ColumnTypeBool     = flat.ColumnTypeBool
	ColumnTypeShort    = flat.ColumnTypeShort
	ColumnTypeUShort   = flat.ColumnTypeUShort
	ColumnTypeInt      = flat.ColumnTypeInt
	ColumnTypeUInt     = flat.ColumnTypeUInt
	ColumnTypeLong     = flat.ColumnTypeLong
	ColumnTypeULong    = flat.ColumnTypeULong
	ColumnTypeFloat    = flat.ColumnTypeFloat
	ColumnTypeDouble   = flat.ColumnTypeDouble
	ColumnTypeString   = flat.ColumnTypeString
	ColumnTypeJson     = flat.ColumnTypeJson
	ColumnTypeDateTime = flat.ColumnTypeDateTime
	ColumnTypeBinary   = flat.ColumnTypeBinary

	GeometryTypeUnknown            = flat.GeometryTypeUnknown
	GeometryTypePoint              = flat.GeometryTypePoint
	GeometryTypeMultiPoint         = flat.GeometryTypeMultiPoint
	GeometryTypeLineString         = flat.GeometryTypeLineString
	GeometryTypeMultiLineString    = flat.GeometryTypeMultiLineString
	GeometryTypePolygon            = flat.GeometryTypePolygon
	GeometryTypeMultiPolygon       = flat.GeometryTypeMultiPolygon
	GeometryTypeGeometryCollection = flat.GeometryTypeGeometryCollection
)
