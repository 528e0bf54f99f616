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
	"sort"

	"github.com/go-otf/corefont/sfntreader"
)

// FDSelect maps a CID-keyed glyph id to the index of the Font DICT (and
// therefore the Private DICT / local subroutines) that applies to it.
type FDSelect func(gid int) int

func parseFDSelect(data []byte, offset, nGlyphs, nFD int) (FDSelect, error) {
	if offset < 0 || offset >= len(data) {
		return nil, fmt.Errorf("%w: FDSelect offset %d out of range", ErrMalformed, offset)
	}
	r := sfntreader.New(data[offset:])

	format, err := r.U8()
	if err != nil {
		return nil, err
	}

	switch format {
	case 0:
		buf, err := r.Bytes(nGlyphs)
		if err != nil {
			return nil, err
		}
		for _, fd := range buf {
			if int(fd) >= nFD {
				return nil, fmt.Errorf("%w: FDSelect entry out of range", ErrMalformed)
			}
		}
		return func(gid int) int { return int(buf[gid]) }, nil

	case 3:
		nRanges, err := r.U16()
		if err != nil {
			return nil, err
		}
		if nGlyphs > 0 && nRanges == 0 {
			return nil, fmt.Errorf("%w: FDSelect has no ranges", ErrMalformed)
		}

		ends := make([]int, 0, nRanges)
		fdIdx := make([]uint8, 0, nRanges)

		prev := -1
		for i := 0; i < int(nRanges); i++ {
			first, err := r.U16()
			if err != nil {
				return nil, err
			}
			if i == 0 && first != 0 {
				return nil, fmt.Errorf("%w: FDSelect first range must start at 0", ErrMalformed)
			}
			if i > 0 && int(first) <= prev {
				return nil, fmt.Errorf("%w: FDSelect ranges are not increasing", ErrMalformed)
			}
			fd, err := r.U8()
			if err != nil {
				return nil, err
			}
			if int(fd) >= nFD {
				return nil, fmt.Errorf("%w: FDSelect entry out of range", ErrMalformed)
			}
			if i > 0 {
				ends = append(ends, int(first))
			}
			fdIdx = append(fdIdx, fd)
			prev = int(first)
		}
		sentinel, err := r.U16()
		if err != nil {
			return nil, err
		}
		if int(sentinel) != nGlyphs {
			return nil, fmt.Errorf("%w: FDSelect sentinel %d does not match glyph count %d", ErrMalformed, sentinel, nGlyphs)
		}
		ends = append(ends, nGlyphs)

		return func(gid int) int {
			idx := sort.Search(len(ends), func(i int) bool { return gid < ends[i] })
			return int(fdIdx[idx])
		}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported FDSelect format %d", ErrMalformed, format)
	}
}
