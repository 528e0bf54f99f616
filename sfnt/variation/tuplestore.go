// github.com/go-otf/corefont - OpenType/TrueType font table parsing
// Copyright (C) 2026  The corefont Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package variation

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidTupleStore is returned when a tuple variation store's header
// fields are inconsistent with the data actually present.
var ErrInvalidTupleStore = errors.New("variation: invalid tuple variation store")

const (
	tupleCountMask        = 0x0FFF
	sharedPointNumbersFlag = 0x8000

	embeddedPeakFlag         = 0x8000
	intermediateRegionFlag   = 0x4000
	privatePointNumbersFlag  = 0x2000
	tupleIndexMask           = 0x0FFF
)

// Kind distinguishes the two tables that share the tuple variation store
// header and data layout: Gvar deltas are 2-D (x, y per point, including
// phantom points) and its per-header embedded peak tuple is optional (a
// missing one refers into the shared tuple array); Cvar deltas are 1-D and
// an embedded peak tuple is mandatory.
type Kind int

const (
	Gvar Kind = iota
	Cvar
)

// Tuple is a single axis-value tuple, one F2Dot14 value per axis.
type Tuple []float64

// TupleHeader describes one entry in a tuple variation store's header
// array: the peak tuple (or an index into the shared tuple array), an
// optional intermediate region, and the size/location of this header's
// private data.
type TupleHeader struct {
	DataSize       int
	HasEmbeddedPeak bool
	SharedTupleIndex int // valid only when !HasEmbeddedPeak
	Peak           Tuple
	HasIntermediate bool
	Start          Tuple
	End            Tuple
	HasPrivatePoints bool
}

// Store is a parsed tuple variation store: the shared tuple array (gvar
// only; empty for cvar) and the per-header metadata. Each header's private
// data slice (private point numbers, if any, plus packed deltas) is resolved
// separately by ResolveData, since it requires walking the whole header
// array first to know how data is split up.
type Store struct {
	Kind          Kind
	AxisCount     int
	SharedTuples  []Tuple
	Headers       []TupleHeader
	dataOffset    int
	headerOverlay []byte // region bytes that follow the header array and shared points, if any
	sharedPoints  []int
}

// ResolveData slices out header i's own opaque data (its private point
// numbers, if PRIVATE_POINT_NUMBERS is set, followed by its packed deltas)
// from the region that follows the header array, advancing past every
// earlier header's DataSize in order. It returns the point set that
// applies to this header (its private set if present, else the store's
// shared set, which may be nil meaning "all points") and the raw packed
// delta bytes.
func (s *Store) ResolveData(index int) (points []int, deltaBytes []byte, err error) {
	if index < 0 || index >= len(s.Headers) {
		return nil, nil, fmt.Errorf("%w: header index %d", ErrInvalidTupleStore, index)
	}
	region := s.headerOverlay
	for i := 0; i < index; i++ {
		sz := s.Headers[i].DataSize
		if sz > len(region) {
			return nil, nil, fmt.Errorf("%w: header %d dataSize overruns store", ErrInvalidTupleStore, i)
		}
		region = region[sz:]
	}
	h := s.Headers[index]
	if h.DataSize > len(region) {
		return nil, nil, fmt.Errorf("%w: header %d dataSize overruns store", ErrInvalidTupleStore, index)
	}
	own := region[:h.DataSize]

	if h.HasPrivatePoints {
		pts, n, err := DecodePackedPoints(own)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: private point numbers: %v", ErrInvalidTupleStore, err)
		}
		return pts, own[n:], nil
	}
	return s.sharedPoints, own, nil
}

func readF2Dot14(data []byte) float64 {
	v := int16(binary.BigEndian.Uint16(data))
	return float64(v) / 16384
}

func readTuple(data []byte, axisCount int) (Tuple, int, error) {
	need := axisCount * 2
	if len(data) < need {
		return nil, 0, fmt.Errorf("%w: tuple of %d axes", ErrInvalidTupleStore, axisCount)
	}
	t := make(Tuple, axisCount)
	for i := 0; i < axisCount; i++ {
		t[i] = readF2Dot14(data[i*2:])
	}
	return t, need, nil
}

// ParseStore parses a tuple variation store that has already been sliced
// out of its enclosing table (gvar's per-glyph data, or cvar's single
// table), starting at the 2-byte flagsAndCount / dataOffset header.
func ParseStore(kind Kind, data []byte, axisCount int, sharedTuples []Tuple) (*Store, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: tuple store header", ErrInvalidTupleStore)
	}
	flagsAndCount := binary.BigEndian.Uint16(data)
	dataOffset := int(binary.BigEndian.Uint16(data[2:]))
	count := int(flagsAndCount & tupleCountMask)
	hasSharedPoints := flagsAndCount&sharedPointNumbersFlag != 0

	pos := 4
	headers := make([]TupleHeader, 0, count)
	for i := 0; i < count; i++ {
		if pos+4 > len(data) {
			return nil, fmt.Errorf("%w: truncated tuple header %d", ErrInvalidTupleStore, i)
		}
		dataSize := int(binary.BigEndian.Uint16(data[pos:]))
		tupleFlagsAndIndex := binary.BigEndian.Uint16(data[pos+2:])
		pos += 4

		h := TupleHeader{
			DataSize:         dataSize,
			HasEmbeddedPeak:  tupleFlagsAndIndex&embeddedPeakFlag != 0,
			SharedTupleIndex: int(tupleFlagsAndIndex & tupleIndexMask),
			HasIntermediate:  tupleFlagsAndIndex&intermediateRegionFlag != 0,
			HasPrivatePoints: tupleFlagsAndIndex&privatePointNumbersFlag != 0,
		}
		if kind == Cvar && !h.HasEmbeddedPeak {
			return nil, fmt.Errorf("%w: cvar header %d is missing its mandatory embedded peak tuple", ErrInvalidTupleStore, i)
		}
		if h.HasEmbeddedPeak {
			peak, n, err := readTuple(data[pos:], axisCount)
			if err != nil {
				return nil, err
			}
			h.Peak = peak
			pos += n
		} else {
			if h.SharedTupleIndex >= len(sharedTuples) {
				return nil, fmt.Errorf("%w: shared tuple index %d out of range", ErrInvalidTupleStore, h.SharedTupleIndex)
			}
			h.Peak = sharedTuples[h.SharedTupleIndex]
		}
		if h.HasIntermediate {
			start, n, err := readTuple(data[pos:], axisCount)
			if err != nil {
				return nil, err
			}
			pos += n
			end, n2, err := readTuple(data[pos:], axisCount)
			if err != nil {
				return nil, err
			}
			pos += n2
			h.Start, h.End = start, end
		}
		headers = append(headers, h)
	}

	if dataOffset > len(data) {
		return nil, fmt.Errorf("%w: dataOffset %d beyond store of %d bytes", ErrInvalidTupleStore, dataOffset, len(data))
	}

	s := &Store{
		Kind:         kind,
		AxisCount:    axisCount,
		SharedTuples: sharedTuples,
		Headers:      headers,
		dataOffset:   dataOffset,
	}

	region := data[dataOffset:]
	var sharedPoints []int
	if hasSharedPoints {
		pts, n, err := DecodePackedPoints(region)
		if err != nil {
			return nil, fmt.Errorf("%w: shared point numbers: %v", ErrInvalidTupleStore, err)
		}
		sharedPoints = pts
		region = region[n:]
	}
	s.headerOverlay = region
	s.sharedPoints = sharedPoints
	return s, nil
}

// Scalar computes the region scalar for a normalized instance tuple against
// header h, per the standard piecewise-linear tuple-variation formula: the
// product, over axes, of a per-axis scalar that is 1 when the instance
// equals the peak, 0 outside [start, end] (or [0, peak] / [peak, 0] when no
// intermediate region is given), and linearly interpolated in between.
func (h *TupleHeader) Scalar(instance []float64) float64 {
	scalar := 1.0
	for axis, peak := range h.Peak {
		if axis >= len(instance) {
			break
		}
		v := instance[axis]
		if peak == 0 {
			continue
		}
		var start, end float64
		if h.HasIntermediate {
			start, end = h.Start[axis], h.End[axis]
		} else if peak > 0 {
			start, end = 0, peak
		} else {
			start, end = peak, 0
		}
		switch {
		case v == peak:
			continue
		case v <= start || v >= end:
			return 0
		case v < peak:
			scalar *= (v - start) / (peak - start)
		default:
			scalar *= (end - v) / (end - peak)
		}
	}
	return scalar
}
