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

// Package variation implements the packed point-number and packed-delta
// codecs, the shared tuple variation store used by "gvar" and "cvar", and
// the "fvar"/"avar" tables that produce a normalized instance tuple for it.
package variation

import (
	"errors"
	"fmt"
)

// ErrMalformedPacking is returned by the packed-run decoders when a run
// count or control byte implies more data than is present.
var ErrMalformedPacking = errors.New("variation: malformed packed data")

const (
	pointsAreWords = 0x80
	pointRunMask   = 0x7f

	deltasAreZero  = 0x80
	deltasAreWords = 0x40
	deltaRunMask   = 0x3f
)

// DecodePointCount decodes the leading count field of a packed point number
// list: a single byte, or (if its high bit is set) two bytes holding a
// 15-bit count. It returns the count and the number of bytes consumed. A
// count of 0 means "all points" and consumes exactly one byte.
func DecodePointCount(data []byte) (count, consumed int, err error) {
	if len(data) < 1 {
		return 0, 0, fmt.Errorf("%w: point count", ErrMalformedPacking)
	}
	first := data[0]
	if first&pointsAreWords == 0 {
		return int(first), 1, nil
	}
	if len(data) < 2 {
		return 0, 0, fmt.Errorf("%w: point count high byte", ErrMalformedPacking)
	}
	return int(first&^pointsAreWords)<<8 | int(data[1]), 2, nil
}

// DecodePackedPoints decodes a full packed point number list: the count
// field followed by one or more runs of delta-encoded point indices. It
// returns the absolute point indices in ascending order and the number of
// bytes consumed, including the count field.
func DecodePackedPoints(data []byte) (points []int, consumed int, err error) {
	count, n, err := DecodePointCount(data)
	if err != nil {
		return nil, 0, err
	}
	consumed = n
	if count == 0 {
		return nil, consumed, nil
	}

	points = make([]int, 0, count)
	point := 0
	for len(points) < count {
		if consumed >= len(data) {
			return nil, 0, fmt.Errorf("%w: point run header", ErrMalformedPacking)
		}
		control := data[consumed]
		consumed++
		runLen := int(control&pointRunMask) + 1
		words := control&pointsAreWords != 0

		for i := 0; i < runLen && len(points) < count; i++ {
			var delta int
			if words {
				if consumed+2 > len(data) {
					return nil, 0, fmt.Errorf("%w: point delta (word)", ErrMalformedPacking)
				}
				delta = int(data[consumed])<<8 | int(data[consumed+1])
				consumed += 2
			} else {
				if consumed+1 > len(data) {
					return nil, 0, fmt.Errorf("%w: point delta (byte)", ErrMalformedPacking)
				}
				delta = int(data[consumed])
				consumed++
			}
			point += delta
			points = append(points, point)
		}
	}
	return points, consumed, nil
}

// DecodePackedDeltas decodes exactly numDeltas signed deltas from a packed
// delta-run stream. It returns the deltas and the number of bytes consumed.
func DecodePackedDeltas(data []byte, numDeltas int) (deltas []int16, consumed int, err error) {
	deltas = make([]int16, 0, numDeltas)
	for len(deltas) < numDeltas {
		if consumed >= len(data) {
			return nil, 0, fmt.Errorf("%w: delta run header", ErrMalformedPacking)
		}
		control := data[consumed]
		consumed++
		runLen := int(control&deltaRunMask) + 1
		if len(deltas)+runLen > numDeltas {
			return nil, 0, fmt.Errorf("%w: delta run overruns requested count", ErrMalformedPacking)
		}

		switch {
		case control&deltasAreZero != 0:
			for i := 0; i < runLen; i++ {
				deltas = append(deltas, 0)
			}
		case control&deltasAreWords != 0:
			if consumed+2*runLen > len(data) {
				return nil, 0, fmt.Errorf("%w: delta run (word)", ErrMalformedPacking)
			}
			for i := 0; i < runLen; i++ {
				v := int16(uint16(data[consumed])<<8 | uint16(data[consumed+1]))
				deltas = append(deltas, v)
				consumed += 2
			}
		default:
			if consumed+runLen > len(data) {
				return nil, 0, fmt.Errorf("%w: delta run (byte)", ErrMalformedPacking)
			}
			for i := 0; i < runLen; i++ {
				v := int16(int8(data[consumed]))
				deltas = append(deltas, v)
				consumed++
			}
		}
	}
	return deltas, consumed, nil
}
