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

import "seehuhn.de/go/postscript/psenc"

// seacGlyphs resolves a legacy endchar-seac's base and accent codes to
// glyph ids, mapping each Adobe Standard Encoding code to a glyph name
// and the name to this font's own charset entry.
func (f *Font) seacGlyphs(bchar, achar int) (bgid, agid int, err error) {
	bgid, err = f.glyphByStandardCode(bchar)
	if err != nil {
		return 0, 0, err
	}
	agid, err = f.glyphByStandardCode(achar)
	if err != nil {
		return 0, 0, err
	}
	return bgid, agid, nil
}

func (f *Font) glyphByStandardCode(code int) (int, error) {
	if code < 0 || code >= len(psenc.StandardEncoding) {
		return 0, ErrInvalidSeacCode
	}
	name := psenc.StandardEncoding[code]
	if name == "" {
		return 0, ErrInvalidSeacCode
	}
	sid, ok := f.strs.lookup(name)
	if !ok {
		return 0, ErrInvalidSeacCode
	}
	gid := f.charset.GID(sid)
	if gid < 0 {
		return 0, ErrInvalidSeacCode
	}
	return gid, nil
}
