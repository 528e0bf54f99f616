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

// Package os2 reads and writes the "OS/2" table. Some version-0 tables in
// the wild are only 68 bytes long, omitting the last 10 bytes
// (sTypoAscender through usWinDescent); whether that tail is present is
// controlled by the table's observed length, never by the declared version
// field alone, since a stale version-0 table can legitimately be 78 bytes.
package os2

import (
	"encoding/binary"
	"fmt"

	"github.com/go-otf/corefont/sfntreader"
)

// Table is a parsed "OS/2" table. HasMSTail/HasV1/HasV2/HasV5 record which
// trailing field groups were actually present in the source table.
type Table struct {
	Version             uint16
	XAvgCharWidth       int16
	USWeightClass       uint16
	USWidthClass        uint16
	FSType              uint16
	YSubscriptXSize     int16
	YSubscriptYSize     int16
	YSubscriptXOffset   int16
	YSubscriptYOffset   int16
	YSuperscriptXSize   int16
	YSuperscriptYSize   int16
	YSuperscriptXOffset int16
	YSuperscriptYOffset int16
	YStrikeoutSize      int16
	YStrikeoutPosition  int16
	SFamilyClass        int16
	Panose              [10]byte
	UlUnicodeRange1     uint32
	UlUnicodeRange2     uint32
	UlUnicodeRange3     uint32
	UlUnicodeRange4     uint32
	AchVendID           [4]byte
	FsSelection         uint16
	USFirstCharIndex    uint16
	USLastCharIndex     uint16

	// HasMSTail reports whether sTypoAscender..usWinDescent were present.
	HasMSTail      bool
	STypoAscender  int16
	STypoDescender int16
	STypoLineGap   int16
	USWinAscent    uint16
	USWinDescent   uint16

	HasV1            bool
	UlCodePageRange1 uint32
	UlCodePageRange2 uint32

	HasV2         bool
	SxHeight      int16
	SCapHeight    int16
	UsDefaultChar uint16
	UsBreakChar   uint16
	UsMaxContext  uint16

	HasV5                   bool
	USLowerOpticalPointSize uint16
	USUpperOpticalPointSize uint16
}

const (
	lenCore = 68 // version field through usLastCharIndex
	lenV0   = lenCore + 10
	lenV1   = lenV0 + 8
	lenV2   = lenV1 + 10
	lenV5   = lenV2 + 4
)

// Parse reads an "OS/2" table, already sliced to its own bounds. length is
// the table's length as recorded in the font's table directory; it governs
// which trailing field groups are read, taking precedence over a version
// field that may over- or under-state how much data is actually present.
func Parse(data []byte, length int) (*Table, error) {
	if length > len(data) {
		length = len(data)
	}
	if length < lenCore {
		return nil, fmt.Errorf("os2: table too short: %d bytes, need at least %d", length, lenCore)
	}
	r := sfntreader.New(data[:length])

	var t Table
	var err error
	if t.Version, err = r.U16(); err != nil {
		return nil, fmt.Errorf("os2: version: %w", err)
	}

	read16 := func(dst *int16) {
		if err == nil {
			var v int16
			v, err = r.I16()
			*dst = v
		}
	}
	readU16 := func(dst *uint16) {
		if err == nil {
			var v uint16
			v, err = r.U16()
			*dst = v
		}
	}

	read16(&t.XAvgCharWidth)
	readU16(&t.USWeightClass)
	readU16(&t.USWidthClass)
	readU16(&t.FSType)
	read16(&t.YSubscriptXSize)
	read16(&t.YSubscriptYSize)
	read16(&t.YSubscriptXOffset)
	read16(&t.YSubscriptYOffset)
	read16(&t.YSuperscriptXSize)
	read16(&t.YSuperscriptYSize)
	read16(&t.YSuperscriptXOffset)
	read16(&t.YSuperscriptYOffset)
	read16(&t.YStrikeoutSize)
	read16(&t.YStrikeoutPosition)
	read16(&t.SFamilyClass)
	if err != nil {
		return nil, err
	}
	panose, err := r.Bytes(10)
	if err != nil {
		return nil, err
	}
	copy(t.Panose[:], panose)
	var u32 [4]uint32
	for i := range u32 {
		if u32[i], err = r.U32(); err != nil {
			return nil, err
		}
	}
	t.UlUnicodeRange1, t.UlUnicodeRange2, t.UlUnicodeRange3, t.UlUnicodeRange4 = u32[0], u32[1], u32[2], u32[3]
	vendID, err := r.Bytes(4)
	if err != nil {
		return nil, err
	}
	copy(t.AchVendID[:], vendID)
	readU16(&t.FsSelection)
	readU16(&t.USFirstCharIndex)
	readU16(&t.USLastCharIndex)
	if err != nil {
		return nil, err
	}

	// The MS tail is present whenever the table is long enough to hold it,
	// regardless of whether Version was bumped to say so: some version-0
	// tables in the wild stop at 68 bytes and omit it entirely.
	if length >= lenV0 {
		t.HasMSTail = true
		read16(&t.STypoAscender)
		read16(&t.STypoDescender)
		read16(&t.STypoLineGap)
		readU16(&t.USWinAscent)
		readU16(&t.USWinDescent)
		if err != nil {
			return nil, err
		}
	}

	if length >= lenV1 {
		t.HasV1 = true
		if t.UlCodePageRange1, err = r.U32(); err != nil {
			return nil, err
		}
		if t.UlCodePageRange2, err = r.U32(); err != nil {
			return nil, err
		}
	}

	if length >= lenV2 {
		t.HasV2 = true
		read16(&t.SxHeight)
		read16(&t.SCapHeight)
		readU16(&t.UsDefaultChar)
		readU16(&t.UsBreakChar)
		readU16(&t.UsMaxContext)
		if err != nil {
			return nil, err
		}
	}

	if length >= lenV5 {
		t.HasV5 = true
		readU16(&t.USLowerOpticalPointSize)
		readU16(&t.USUpperOpticalPointSize)
		if err != nil {
			return nil, err
		}
	}

	return &t, nil
}

// Encode writes the table back out in the same field layout Parse reads,
// producing exactly as many trailing field groups as HasMSTail/HasV1/
// HasV2/HasV5 indicate, so that Parse(t.Encode(), len(t.Encode())) is
// equal to t.
func (t *Table) Encode() []byte {
	length := lenCore
	if t.HasMSTail {
		length = lenV0
	}
	if t.HasV1 {
		length = lenV1
	}
	if t.HasV2 {
		length = lenV2
	}
	if t.HasV5 {
		length = lenV5
	}
	buf := make([]byte, length)
	be := binary.BigEndian
	be.PutUint16(buf[0:], t.Version)
	be.PutUint16(buf[2:], uint16(t.XAvgCharWidth))
	be.PutUint16(buf[4:], t.USWeightClass)
	be.PutUint16(buf[6:], t.USWidthClass)
	be.PutUint16(buf[8:], t.FSType)
	be.PutUint16(buf[10:], uint16(t.YSubscriptXSize))
	be.PutUint16(buf[12:], uint16(t.YSubscriptYSize))
	be.PutUint16(buf[14:], uint16(t.YSubscriptXOffset))
	be.PutUint16(buf[16:], uint16(t.YSubscriptYOffset))
	be.PutUint16(buf[18:], uint16(t.YSuperscriptXSize))
	be.PutUint16(buf[20:], uint16(t.YSuperscriptYSize))
	be.PutUint16(buf[22:], uint16(t.YSuperscriptXOffset))
	be.PutUint16(buf[24:], uint16(t.YSuperscriptYOffset))
	be.PutUint16(buf[26:], uint16(t.YStrikeoutSize))
	be.PutUint16(buf[28:], uint16(t.YStrikeoutPosition))
	be.PutUint16(buf[30:], uint16(t.SFamilyClass))
	copy(buf[32:42], t.Panose[:])
	be.PutUint32(buf[42:], t.UlUnicodeRange1)
	be.PutUint32(buf[46:], t.UlUnicodeRange2)
	be.PutUint32(buf[50:], t.UlUnicodeRange3)
	be.PutUint32(buf[54:], t.UlUnicodeRange4)
	copy(buf[58:62], t.AchVendID[:])
	be.PutUint16(buf[62:], t.FsSelection)
	be.PutUint16(buf[64:], t.USFirstCharIndex)
	be.PutUint16(buf[66:], t.USLastCharIndex)

	if t.HasMSTail {
		be.PutUint16(buf[68:], uint16(t.STypoAscender))
		be.PutUint16(buf[70:], uint16(t.STypoDescender))
		be.PutUint16(buf[72:], uint16(t.STypoLineGap))
		be.PutUint16(buf[74:], t.USWinAscent)
		be.PutUint16(buf[76:], t.USWinDescent)
	}
	if t.HasV1 {
		be.PutUint32(buf[78:], t.UlCodePageRange1)
		be.PutUint32(buf[82:], t.UlCodePageRange2)
	}
	if t.HasV2 {
		be.PutUint16(buf[86:], uint16(t.SxHeight))
		be.PutUint16(buf[88:], uint16(t.SCapHeight))
		be.PutUint16(buf[90:], t.UsDefaultChar)
		be.PutUint16(buf[92:], t.UsBreakChar)
		be.PutUint16(buf[94:], t.UsMaxContext)
	}
	if t.HasV5 {
		be.PutUint16(buf[96:], t.USLowerOpticalPointSize)
		be.PutUint16(buf[98:], t.USUpperOpticalPointSize)
	}
	return buf
}
