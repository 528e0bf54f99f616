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

// Charset maps glyph id to string id (SID for CFF1, CID for CFF1-CID).
// Entry 0 is always the implicit .notdef.
type Charset []SID

// predefined charset codes, used as a Top DICT "charset" offset in place
// of a byte offset into the font's own charset data.
const (
	charsetISOAdobe = 0
	charsetExpert   = 1
	charsetExpertSubset = 2
)

// parseCharset reads a charset at the given absolute offset within the
// font's data, or resolves one of the three predefined charsets if
// offset is 0, 1, or 2. nGlyphs is the number of glyphs named by the
// CharStrings INDEX, including .notdef.
func parseCharset(data []byte, offset, nGlyphs int) (Charset, error) {
	switch offset {
	case charsetISOAdobe:
		return predefinedCharset(isoAdobeCharset, nGlyphs)
	case charsetExpert:
		return predefinedCharset(expertCharset, nGlyphs)
	case charsetExpertSubset:
		return predefinedCharset(expertSubsetCharset, nGlyphs)
	}

	if nGlyphs < 1 || nGlyphs >= 0x10000 {
		return nil, fmt.Errorf("%w: invalid glyph count %d", ErrMalformed, nGlyphs)
	}
	if offset < 0 || offset >= len(data) {
		return nil, fmt.Errorf("%w: charset offset %d out of range", ErrMalformed, offset)
	}
	r := sfntreader.New(data[offset:])

	format, err := r.U8()
	if err != nil {
		return nil, err
	}

	cs := make(Charset, 1, nGlyphs) // gid 0 is always .notdef
	switch format {
	case 0:
		for len(cs) < nGlyphs {
			sid, err := r.U16()
			if err != nil {
				return nil, err
			}
			cs = append(cs, SID(sid))
		}
	case 1:
		for len(cs) < nGlyphs {
			first, err := r.U16()
			if err != nil {
				return nil, err
			}
			nLeft, err := r.U8()
			if err != nil {
				return nil, err
			}
			for i := 0; i <= int(nLeft) && len(cs) < nGlyphs; i++ {
				cs = append(cs, SID(int(first)+i))
			}
		}
	case 2:
		for len(cs) < nGlyphs {
			first, err := r.U16()
			if err != nil {
				return nil, err
			}
			nLeft, err := r.U16()
			if err != nil {
				return nil, err
			}
			for i := 0; i <= int(nLeft) && len(cs) < nGlyphs; i++ {
				cs = append(cs, SID(int(first)+i))
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported charset format %d", ErrMalformed, format)
	}
	if len(cs) != nGlyphs {
		return nil, fmt.Errorf("%w: charset has %d entries, want %d", ErrMalformed, len(cs), nGlyphs)
	}
	return cs, nil
}

// predefinedCharset turns a static glyph-name list into a Charset by
// resolving each name to its standard-strings SID (all three predefined
// charsets consist entirely of standard strings), truncated to nGlyphs the
// way a subsetted font would be. It fails if nGlyphs exceeds the list.
func predefinedCharset(names []string, nGlyphs int) (Charset, error) {
	if nGlyphs > len(names) {
		return nil, fmt.Errorf("%w: predefined charset too short for %d glyphs", ErrMalformed, nGlyphs)
	}
	cs := make(Charset, nGlyphs)
	for gid, name := range names[:nGlyphs] {
		sid, ok := (stringTable{}).lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: predefined charset name %q not a standard string", ErrMalformed, name)
		}
		cs[gid] = sid
	}
	return cs, nil
}

// GID returns the glyph id assigned sid, or -1 if none is.
func (cs Charset) GID(sid SID) int {
	for gid, s := range cs {
		if s == sid {
			return gid
		}
	}
	return -1
}
