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

// Package cff parses bare CFF (Compact Font Format) and CFF2 tables and
// interprets their Type 2 / CFF2 CharStrings.
package cff

import (
	"fmt"

	"github.com/go-otf/corefont/sfntreader"
)

// fontDict holds the per-FD-index data a CID-keyed font (or CFF2's
// FDArray) needs: each glyph's FDSelect entry picks one of these.
type fontDict struct {
	localSubrs    Index
	defaultWidthX float64
	nominalWidthX float64
}

// Font is a parsed CFF or CFF2 table, holding everything the CharString
// scanner (charstring.go) needs to interpret a glyph's outline program.
type Font struct {
	IsCFF2 bool
	IsCID  bool

	charStrings Index
	globalSubrs Index

	// Non-CID fonts resolve local subroutines and nominal/default widths
	// directly; CID fonts and CFF2 fonts with an FDArray go through
	// fdSelect/fdArray.
	localSubrs    Index
	defaultWidthX float64
	nominalWidthX float64

	fdSelect FDSelect
	fdArray  []fontDict

	charset Charset
	strs    stringTable
}

// NumGlyphs returns the number of glyphs named by the CharStrings INDEX.
func (f *Font) NumGlyphs() int { return len(f.charStrings) }

// Parse reads a CFF or CFF2 table from data, dispatching on the major
// version byte in the table header.
func Parse(data []byte) (*Font, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: CFF table too short", ErrMalformed)
	}
	switch data[0] {
	case 1:
		return parseCFF1(data)
	case 2:
		return parseCFF2(data)
	default:
		return nil, fmt.Errorf("%w: unsupported CFF major version %d", ErrMalformed, data[0])
	}
}

func parseCFF1(data []byte) (*Font, error) {
	r := sfntreader.New(data)
	hdrSize, err := cff1Header(r)
	if err != nil {
		return nil, err
	}
	if err := r.SeekTo(int(hdrSize)); err != nil {
		return nil, err
	}

	names, err := parseIndex(r, 2)
	if err != nil {
		return nil, err
	}
	if len(names) != 1 {
		return nil, fmt.Errorf("%w: CFF table must contain exactly one font", ErrMalformed)
	}

	topDicts, err := parseIndex(r, 2)
	if err != nil {
		return nil, err
	}
	if len(topDicts) != 1 {
		return nil, fmt.Errorf("%w: invalid Top DICT INDEX", ErrMalformed)
	}
	top, err := decodeDict(topDicts[0])
	if err != nil {
		return nil, err
	}

	strIdx, err := parseIndex(r, 2)
	if err != nil {
		return nil, err
	}
	globalSubrs, err := parseIndex(r, 2)
	if err != nil {
		return nil, err
	}

	if ctype := top.int(opCharstrType); top.has(opCharstrType) && ctype != 2 {
		return nil, fmt.Errorf("%w: unsupported CharstringType %d", ErrUnsupportedOperator, ctype)
	}

	csOff, ok := top[opCharstrings]
	if !ok || len(csOff) != 1 {
		return nil, fmt.Errorf("%w: Top DICT has no CharStrings entry", ErrMalformed)
	}
	rCS := sfntreader.New(data)
	if err := rCS.SeekTo(int(csOff[0])); err != nil {
		return nil, err
	}
	charStrings, err := parseIndex(rCS, 2)
	if err != nil {
		return nil, err
	}

	f := &Font{
		IsCFF2:      false,
		charStrings: charStrings,
		globalSubrs: globalSubrs,
		strs:        stringTable{custom: strIdx},
	}

	charsetOff := top.int(opCharset)
	cs, err := parseCharset(data, charsetOff, len(charStrings))
	if err != nil {
		return nil, err
	}
	f.charset = cs

	if top.has(opROS) {
		f.IsCID = true
		fdArrayOff, ok := top[opFDArray]
		if !ok || len(fdArrayOff) != 1 {
			return nil, fmt.Errorf("%w: CID font has no FDArray", ErrMalformed)
		}
		rFD := sfntreader.New(data)
		if err := rFD.SeekTo(int(fdArrayOff[0])); err != nil {
			return nil, err
		}
		fdDicts, err := parseIndex(rFD, 2)
		if err != nil {
			return nil, err
		}
		f.fdArray = make([]fontDict, len(fdDicts))
		for i, raw := range fdDicts {
			fd, err := decodeDict(raw)
			if err != nil {
				return nil, err
			}
			f.fdArray[i], err = parsePrivateCFF1(data, fd)
			if err != nil {
				return nil, err
			}
		}

		fdSelectOff, ok := top[opFDSelect]
		if !ok || len(fdSelectOff) != 1 {
			return nil, fmt.Errorf("%w: CID font has no FDSelect", ErrMalformed)
		}
		fdSelect, err := parseFDSelect(data, int(fdSelectOff[0]), len(charStrings), len(f.fdArray))
		if err != nil {
			return nil, err
		}
		f.fdSelect = fdSelect
	} else {
		fd, err := parsePrivateCFF1(data, top)
		if err != nil {
			return nil, err
		}
		f.localSubrs = fd.localSubrs
		f.defaultWidthX = fd.defaultWidthX
		f.nominalWidthX = fd.nominalWidthX
	}

	return f, nil
}

func cff1Header(r *sfntreader.Reader) (hdrSize uint8, err error) {
	if _, err = r.U8(); err != nil { // major
		return 0, err
	}
	if _, err = r.U8(); err != nil { // minor
		return 0, err
	}
	if hdrSize, err = r.U8(); err != nil {
		return 0, err
	}
	if _, err = r.U8(); err != nil { // offSize, unused once hdrSize is known
		return 0, err
	}
	return hdrSize, nil
}

// parsePrivateCFF1 resolves a Private DICT's local subroutines and
// default/nominal widths, given the dict (Top DICT or FDArray entry)
// whose "Private" operator (18) points to it.
func parsePrivateCFF1(data []byte, owner dict) (fontDict, error) {
	size, offset, ok := owner.pair(opPrivate)
	if !ok {
		return fontDict{}, nil
	}
	if offset < 0 || offset+size > len(data) {
		return fontDict{}, fmt.Errorf("%w: Private DICT out of range", ErrMalformed)
	}
	priv, err := decodeDict(data[offset : offset+size])
	if err != nil {
		return fontDict{}, err
	}

	fd := fontDict{
		defaultWidthX: firstOr(priv, opDefaultWidth, 0),
		nominalWidthX: firstOr(priv, opNominalWidth, 0),
	}

	if subrsOff, ok := priv[19]; ok && len(subrsOff) == 1 {
		abs := offset + int(subrsOff[0])
		r := sfntreader.New(data)
		if err := r.SeekTo(abs); err != nil {
			return fontDict{}, err
		}
		subrs, err := parseIndex(r, 2)
		if err != nil {
			return fontDict{}, err
		}
		fd.localSubrs = subrs
	}

	return fd, nil
}

func firstOr(d dict, op uint16, def float64) float64 {
	if v, ok := d[op]; ok && len(v) > 0 {
		return v[0]
	}
	return def
}

func parseCFF2(data []byte) (*Font, error) {
	r := sfntreader.New(data)
	if _, err := r.U8(); err != nil { // major
		return nil, err
	}
	if _, err := r.U8(); err != nil { // minor
		return nil, err
	}
	hdrSize, err := r.U8()
	if err != nil {
		return nil, err
	}
	topDictLength, err := r.U16()
	if err != nil {
		return nil, err
	}

	if err := r.SeekTo(int(hdrSize)); err != nil {
		return nil, err
	}
	topRaw, err := r.Bytes(int(topDictLength))
	if err != nil {
		return nil, err
	}
	top, err := decodeDict(topRaw)
	if err != nil {
		return nil, err
	}

	globalSubrs, err := parseIndex(r, 4)
	if err != nil {
		return nil, err
	}

	csOff, ok := top[opCharstrings]
	if !ok || len(csOff) != 1 {
		return nil, fmt.Errorf("%w: CFF2 Top DICT has no CharStrings entry", ErrMalformed)
	}
	rCS := sfntreader.New(data)
	if err := rCS.SeekTo(int(csOff[0])); err != nil {
		return nil, err
	}
	charStrings, err := parseIndex(rCS, 4)
	if err != nil {
		return nil, err
	}

	f := &Font{
		IsCFF2:      true,
		charStrings: charStrings,
		globalSubrs: globalSubrs,
	}

	if fdArrayOff, ok := top[opFDArray]; ok && len(fdArrayOff) == 1 {
		f.IsCID = true
		rFD := sfntreader.New(data)
		if err := rFD.SeekTo(int(fdArrayOff[0])); err != nil {
			return nil, err
		}
		fdDicts, err := parseIndex(rFD, 4)
		if err != nil {
			return nil, err
		}
		f.fdArray = make([]fontDict, len(fdDicts))
		for i, raw := range fdDicts {
			fd, err := decodeDict(raw)
			if err != nil {
				return nil, err
			}
			f.fdArray[i], err = parsePrivateCFF2(data, fd)
			if err != nil {
				return nil, err
			}
		}

		if fdSelectOff, ok := top[opFDSelect]; ok && len(fdSelectOff) == 1 {
			fdSelect, err := parseFDSelect(data, int(fdSelectOff[0]), len(charStrings), len(f.fdArray))
			if err != nil {
				return nil, err
			}
			f.fdSelect = fdSelect
		} else if len(f.fdArray) == 1 {
			// a single Font DICT with no FDSelect applies to every glyph.
			f.fdSelect = func(int) int { return 0 }
		} else {
			return nil, fmt.Errorf("%w: CFF2 FDArray with multiple entries needs FDSelect", ErrMalformed)
		}
	} else {
		fd, err := parsePrivateCFF2(data, top)
		if err != nil {
			return nil, err
		}
		f.localSubrs = fd.localSubrs
	}

	return f, nil
}

// parsePrivateCFF2 is parsePrivateCFF1 without the width operators,
// which CFF2 drops in favor of per-glyph nominal/default widths encoded
// via the CharString's own vsindex/blend mechanism.
func parsePrivateCFF2(data []byte, owner dict) (fontDict, error) {
	size, offset, ok := owner.pair(opPrivate)
	if !ok {
		return fontDict{}, nil
	}
	if offset < 0 || offset+size > len(data) {
		return fontDict{}, fmt.Errorf("%w: Private DICT out of range", ErrMalformed)
	}
	priv, err := decodeDict(data[offset : offset+size])
	if err != nil {
		return fontDict{}, err
	}

	var fd fontDict
	if subrsOff, ok := priv[19]; ok && len(subrsOff) == 1 {
		abs := offset + int(subrsOff[0])
		r := sfntreader.New(data)
		if err := r.SeekTo(abs); err != nil {
			return fontDict{}, err
		}
		subrs, err := parseIndex(r, 4)
		if err != nil {
			return fontDict{}, err
		}
		fd.localSubrs = subrs
	}
	return fd, nil
}

// glyphLocalSubrs returns the local subroutine INDEX that applies to
// gid, resolving the FDSelect indirection for CID/CFF2 fonts lazily.
func (f *Font) glyphLocalSubrs(gid int) (Index, error) {
	if f.fdSelect == nil {
		return f.localSubrs, nil
	}
	idx := f.fdSelect(gid)
	if idx < 0 || idx >= len(f.fdArray) {
		return nil, ErrInvalidSubroutineIndex
	}
	return f.fdArray[idx].localSubrs, nil
}

// glyphWidths returns the CFF1 nominalWidthX/defaultWidthX pair that
// applies to gid. CFF2 fonts have none; callers must not call this for
// CFF2 fonts.
func (f *Font) glyphWidths(gid int) (nominal, def float64, err error) {
	if f.fdSelect == nil {
		return f.nominalWidthX, f.defaultWidthX, nil
	}
	idx := f.fdSelect(gid)
	if idx < 0 || idx >= len(f.fdArray) {
		return 0, 0, ErrInvalidSubroutineIndex
	}
	return f.fdArray[idx].nominalWidthX, f.fdArray[idx].defaultWidthX, nil
}
