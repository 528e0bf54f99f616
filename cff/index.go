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

package cff

import (
	"fmt"

	"github.com/go-otf/corefont/sfntreader"
)

// Index is a parsed CFF INDEX: an ordered sequence of binary blobs, each
// slice aliasing the font's own byte buffer.
type Index [][]byte

// parseIndex reads one INDEX starting at r's current position. countWidth
// is 2 for CFF1 (a 16-bit count) and 4 for CFF2 (a 32-bit count, with no
// trailing data on an empty INDEX).
func parseIndex(r *sfntreader.Reader, countWidth int) (Index, error) {
	var count uint32
	switch countWidth {
	case 2:
		v, err := r.U16()
		if err != nil {
			return nil, err
		}
		count = uint32(v)
	case 4:
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		count = v
	default:
		return nil, fmt.Errorf("cff: unsupported INDEX count width %d", countWidth)
	}
	if count == 0 {
		return nil, nil
	}

	offSize, err := r.U8()
	if err != nil {
		return nil, err
	}
	if offSize < 1 || offSize > 4 {
		return nil, fmt.Errorf("%w: INDEX offSize %d", ErrMalformed, offSize)
	}

	offsets := make([]uint32, count+1)
	for i := range offsets {
		raw, err := r.Bytes(int(offSize))
		if err != nil {
			return nil, err
		}
		var v uint32
		for _, b := range raw {
			v = v<<8 | uint32(b)
		}
		offsets[i] = v
	}
	if offsets[0] != 1 {
		return nil, fmt.Errorf("%w: INDEX first offset is %d, want 1", ErrMalformed, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("%w: INDEX offsets are not non-decreasing", ErrMalformed)
		}
	}

	dataLen := int(offsets[count] - 1)
	data, err := r.Bytes(dataLen)
	if err != nil {
		return nil, err
	}

	idx := make(Index, count)
	for i := range idx {
		idx[i] = data[offsets[i]-1 : offsets[i+1]-1]
	}
	return idx, nil
}

// Get returns the i-th object, or ErrInvalidSubroutineIndex if i is out of
// range.
func (idx Index) Get(i int) ([]byte, error) {
	if i < 0 || i >= len(idx) {
		return nil, ErrInvalidSubroutineIndex
	}
	return idx[i], nil
}

// subrBias is the index bias applied to callsubr/callgsubr operands,
// chosen by subroutine count per the Type 2 CharString specification.
func subrBias(n int) int {
	switch {
	case n < 1240:
		return 107
	case n < 33900:
		return 1131
	default:
		return 32768
	}
}
