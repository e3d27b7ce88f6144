// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"bytes"
	"io"
	"math"

	"github.com/crescendo-gis/geofab/packedrtree"
)

// WriteOptions configures Write. A nil *WriteOptions is equivalent to
// DefaultWriteOptions().
type WriteOptions struct {
	// Name is the dataset name recorded in the header. Defaults to
	// "L1", matching the reference geoq FlatGeobuf writer.
	Name string
	// NodeSize is the packed Hilbert R-tree's branching factor. Zero
	// disables the index: no index region is written and the header
	// records an index_node_size of zero. DefaultWriteOptions, and so a
	// nil *WriteOptions, uses 16; a zero NodeSize in a non-nil
	// WriteOptions stays zero.
	NodeSize uint16
	// FeatureStaging, if non-nil, is used to buffer encoded feature
	// bytes between the point they are produced and the point the
	// final stream is assembled, instead of an in-memory buffer. It
	// must be empty and positioned at offset zero. Supplying a file
	// opened with os.CreateTemp bounds Write's memory use to roughly
	// the feature set plus the index, regardless of encoded size.
	FeatureStaging io.ReadWriteSeeker
}

// DefaultWriteOptions returns the default options: name "L1", node
// size 16, in-memory feature staging.
func DefaultWriteOptions() *WriteOptions {
	return &WriteOptions{Name: "L1", NodeSize: 16}
}

func (o *WriteOptions) orDefault() *WriteOptions {
	if o == nil {
		return DefaultWriteOptions()
	}
	out := *o
	if out.Name == "" {
		out.Name = "L1"
	}
	return &out
}

// Write encodes features as a single FlatGeobuf file and writes it to
// w. Features are reordered internally (by a Hilbert-curve sort of
// their envelope centers); the output's feature ordering is therefore
// not in general the same as the input ordering. If encoding fails,
// nothing is written to w: the header, index, and feature bytes are
// fully assembled in memory (save for feature bytes, which may be
// staged to opts.FeatureStaging) before anything reaches w. An error
// from w itself, or from reading back opts.FeatureStaging, can leave w
// holding a partial file.
func Write(features []InputFeature, w io.Writer, opts *WriteOptions) error {
	opts = opts.orDefault()

	geoms := make([]*ParsedGeometry, len(features))
	for i, f := range features {
		if f.Geometry == nil {
			continue
		}
		g, err := parseGeometry(f.Geometry, i)
		if err != nil {
			return &GeometryEncodeError{HilbertIndex: -1, InputIndex: i, Err: err}
		}
		geoms[i] = g
	}

	schema := inferSchema(features)

	order, refs, envelope := hilbertOrder(geoms)

	staging := opts.FeatureStaging
	var memBuf *bytes.Buffer
	if staging == nil {
		memBuf = new(bytes.Buffer)
	}

	var offset int64
	for hi, origIdx := range order {
		props, err := encodeProperties(features[origIdx].Properties, schema)
		if err != nil {
			return err
		}
		fb := buildFeature(geoms[origIdx], props)

		if memBuf != nil {
			memBuf.Write(fb)
		} else if _, err := staging.Write(fb); err != nil {
			return wrapErr("failed to stage feature %d", err, hi)
		}

		if ref, ok := refs[origIdx]; ok {
			if offset > math.MaxInt64-int64(len(fb)) {
				return &NumericOverflowError{What: "feature byte offset exceeds int64"}
			}
			ref.Offset = offset
			refs[origIdx] = ref
		}
		offset += int64(len(fb))
	}

	indexedRefs := make([]packedrtree.Ref, 0, len(refs))
	for _, origIdx := range order {
		if ref, ok := refs[origIdx]; ok {
			indexedRefs = append(indexedRefs, ref)
		}
	}

	var indexBytes bytes.Buffer
	if opts.NodeSize != 0 && len(indexedRefs) > 0 {
		tree, err := packedrtree.New(indexedRefs, opts.NodeSize)
		if err != nil {
			return err
		}
		if _, err := tree.Marshal(&indexBytes); err != nil {
			return err
		}
	}

	header := buildHeader(opts.Name, envelope, uniformGeometryType(geoms), schema, uint64(len(features)), opts.NodeSize)

	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(indexBytes.Bytes()); err != nil {
		return err
	}
	if memBuf != nil {
		if _, err := w.Write(memBuf.Bytes()); err != nil {
			return err
		}
	} else {
		if _, err := staging.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if _, err := io.Copy(w, staging); err != nil {
			return err
		}
	}
	return nil
}

// hilbertOrder computes the dataset envelope, Hilbert-sorts every
// feature that has a geometry, and returns the full output ordering
// (original feature indexes): Hilbert-sorted indexed features first,
// followed by featureless features in their original input order.
// refs holds, for each indexed original index, a Ref whose Box is the
// feature's envelope and whose Offset is a placeholder to be filled in
// once the feature's byte offset is known.
func hilbertOrder(geoms []*ParsedGeometry) (order []int, refs map[int]packedrtree.Ref, envelope packedrtree.Box) {
	envelope = packedrtree.EmptyBox
	refs = make(map[int]packedrtree.Ref)

	indexed := make([]packedrtree.Ref, 0, len(geoms))
	var featureless []int

	for i, g := range geoms {
		b := boundsOf(g)
		envelope.Expand(&b)
		if g == nil {
			featureless = append(featureless, i)
			continue
		}
		indexed = append(indexed, packedrtree.Ref{Box: b, Offset: int64(i)})
	}

	if len(indexed) > 0 {
		packedrtree.HilbertSort(indexed, envelope)
	}

	order = make([]int, 0, len(geoms))
	for _, ref := range indexed {
		origIdx := int(ref.Offset)
		order = append(order, origIdx)
		refs[origIdx] = packedrtree.Ref{Box: ref.Box}
	}
	order = append(order, featureless...)

	return
}
