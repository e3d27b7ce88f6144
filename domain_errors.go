// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import "fmt"

// UpstreamParseError wraps a failure to parse an input feature. Write
// never produces it; DecodeFeatures wraps its own GeoJSON parse
// failures in one, and other callers that read features from an
// external source should do the same before handing them to Write, so
// that input problems can be told apart from encoding problems using
// errors.As.
type UpstreamParseError struct {
	// Index is the feature's position in the input order, before any
	// Hilbert sort has been applied.
	Index int
	Err   error
}

func (e *UpstreamParseError) Error() string {
	return fmt.Sprintf("%supstream parse error at feature %d: %v", packageName, e.Index, e.Err)
}

func (e *UpstreamParseError) Unwrap() error { return e.Err }

// UnsupportedGeometryError is returned when a feature's geometry uses a
// type or coordinate shape this package does not encode: anything that
// is not one of the seven standard GeoJSON geometry types, or a
// coordinate tuple with more than three components.
type UnsupportedGeometryError struct {
	// Index is the feature's position in the input order.
	Index int
	Type  string
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("%sunsupported geometry %q at feature %d", packageName, e.Type, e.Index)
}

// NumericOverflowError is returned when a value that must be encoded
// in a fixed-width field does not fit: a property string or JSON
// encoding longer than math.MaxUint32 bytes, a feature count larger
// than math.MaxUint64, or a ring coordinate-count index larger than
// math.MaxUint32.
type NumericOverflowError struct {
	What string
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("%snumeric overflow: %s", packageName, e.What)
}

// PropertyEncodeError wraps a failure encoding one column of one
// feature's properties, identifying the offending column by name.
type PropertyEncodeError struct {
	Column string
	Err    error
}

func (e *PropertyEncodeError) Error() string {
	return fmt.Sprintf("%sproperty %q: %v", packageName, e.Column, e.Err)
}

func (e *PropertyEncodeError) Unwrap() error { return e.Err }

// GeometryEncodeError wraps a failure encoding a feature's geometry,
// identifying the offending feature by its position in the original
// input order and its position in Hilbert-sorted order. Write reports
// geometry parse failures, which occur before the Hilbert sort, with a
// HilbertIndex of -1.
type GeometryEncodeError struct {
	HilbertIndex int
	InputIndex   int
	Err          error
}

func (e *GeometryEncodeError) Error() string {
	return fmt.Sprintf("%sgeometry at sorted position %d (input position %d): %v",
		packageName, e.HilbertIndex, e.InputIndex, e.Err)
}

func (e *GeometryEncodeError) Unwrap() error { return e.Err }
