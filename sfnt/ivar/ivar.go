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

// Package ivar implements the format-1 Item Variation Store shared by
// "MVAR", "HVAR" and "COLR", and the delta-set index map used to resolve a
// glyph id (or, for MVAR, a metric tag) to a row in it.
package ivar

import (
	"errors"
	"fmt"

	"github.com/go-otf/corefont/sfnt/variation"
	"github.com/go-otf/corefont/sfntreader"
)

// ErrInvalidStore is returned for malformed item variation store data.
var ErrInvalidStore = errors.New("ivar: invalid item variation store")

// Region is one variation region: one tuple per axis, reusing the tuple
// variation store's scalar formula.
type Region = variation.TupleHeader

// Store is a parsed format-1 item variation store.
type Store struct {
	Regions []Region
	Data    []ItemVariationData
}

// ItemVariationData is one sub-table of delta-set rows. RegionIndexes maps
// a local column to an index into Store.Regions; DeltaSets holds one row
// per delta-set, each with len(RegionIndexes) entries.
type ItemVariationData struct {
	RegionIndexes []int
	DeltaSets     [][]int32
}

// ParseStore parses an item variation store, already sliced to its own
// bounds, starting at the format field.
func ParseStore(data []byte) (*Store, error) {
	r := sfntreader.New(data)
	format, err := r.U16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, fmt.Errorf("%w: unsupported format %d", ErrInvalidStore, format)
	}
	regionListOffset, err := r.U32()
	if err != nil {
		return nil, err
	}
	itemCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	subOffsets := make([]uint32, itemCount)
	for i := range subOffsets {
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		subOffsets[i] = v
	}

	regionReader, err := r.ScopeFrom(int(regionListOffset))
	if err != nil {
		return nil, fmt.Errorf("%w: region list: %v", ErrInvalidStore, err)
	}
	axisCount, err := regionReader.U16()
	if err != nil {
		return nil, err
	}
	regionCount, err := regionReader.U16()
	if err != nil {
		return nil, err
	}
	regions := make([]Region, regionCount)
	for i := range regions {
		reg := variation.TupleHeader{HasIntermediate: true}
		start := make(variation.Tuple, axisCount)
		peak := make(variation.Tuple, axisCount)
		end := make(variation.Tuple, axisCount)
		for a := 0; a < int(axisCount); a++ {
			v, err := regionReader.F2Dot14()
			if err != nil {
				return nil, err
			}
			start[a] = v
			v, err = regionReader.F2Dot14()
			if err != nil {
				return nil, err
			}
			peak[a] = v
			v, err = regionReader.F2Dot14()
			if err != nil {
				return nil, err
			}
			end[a] = v
		}
		reg.Start, reg.Peak, reg.End = start, peak, end
		regions[i] = reg
	}

	items := make([]ItemVariationData, itemCount)
	for i, off := range subOffsets {
		ivd, err := parseItemVariationData(r, int(off))
		if err != nil {
			return nil, fmt.Errorf("%w: item variation data %d: %v", ErrInvalidStore, i, err)
		}
		items[i] = *ivd
	}

	return &Store{Regions: regions, Data: items}, nil
}

func parseItemVariationData(root *sfntreader.Reader, offset int) (*ItemVariationData, error) {
	r, err := root.ScopeFrom(offset)
	if err != nil {
		return nil, err
	}
	itemCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	shortDeltaCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	regionIndexCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	regionIndexes := make([]int, regionIndexCount)
	for i := range regionIndexes {
		v, err := r.U16()
		if err != nil {
			return nil, err
		}
		regionIndexes[i] = int(v)
	}

	// The high bit (LONG_WORDS) widens both column kinds: i32/i16 instead
	// of i16/i8. The low 15 bits count the wider leading columns.
	longWords := shortDeltaCount&0x8000 != 0
	wordCount := int(shortDeltaCount & 0x7FFF)

	deltaSets := make([][]int32, itemCount)
	for i := range deltaSets {
		row := make([]int32, regionIndexCount)
		for c := 0; c < int(regionIndexCount); c++ {
			if c < wordCount && longWords {
				v, err := r.I32()
				if err != nil {
					return nil, err
				}
				row[c] = v
			} else if c < wordCount || longWords {
				v, err := r.I16()
				if err != nil {
					return nil, err
				}
				row[c] = int32(v)
			} else {
				v, err := r.I8()
				if err != nil {
					return nil, err
				}
				row[c] = int32(v)
			}
		}
		deltaSets[i] = row
	}
	return &ItemVariationData{RegionIndexes: regionIndexes, DeltaSets: deltaSets}, nil
}

// DeltaSetIndexMapEntrySize computes the byte width of one entry in a
// DeltaSetIndexMap, given its format byte. The original specification text
// is ambiguous about operator precedence here; the correct expression,
// confirmed against the reference implementation, is
// ((fmt & 0x30) >> 4) + 1, not (fmt & 0x30) >> 4 + 1.
func DeltaSetIndexMapEntrySize(format byte) int {
	return int((format&0x30)>>4) + 1
}

// DeltaSetIndexMap resolves an outer glyph/axis index to an (outer, inner)
// pair addressing a region and delta-set row in a Store.
type DeltaSetIndexMap struct {
	entryFormat byte
	mapCount    int
	entries     []byte
}

// ParseDeltaSetIndexMap parses a DeltaSetIndexMap, already sliced to its
// own bounds.
func ParseDeltaSetIndexMap(data []byte) (*DeltaSetIndexMap, error) {
	r := sfntreader.New(data)
	format, err := r.U8()
	if err != nil {
		return nil, err
	}
	entryFormat, err := r.U8()
	if err != nil {
		return nil, err
	}
	var mapCount int
	switch format {
	case 0:
		v, err := r.U16()
		if err != nil {
			return nil, err
		}
		mapCount = int(v)
	case 1:
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		mapCount = int(v)
	default:
		return nil, fmt.Errorf("%w: unsupported DeltaSetIndexMap format %d", ErrInvalidStore, format)
	}
	entrySize := DeltaSetIndexMapEntrySize(entryFormat)
	need := mapCount * entrySize
	entries, err := r.Bytes(need)
	if err != nil {
		return nil, fmt.Errorf("%w: DeltaSetIndexMap entries: %v", ErrInvalidStore, err)
	}
	return &DeltaSetIndexMap{entryFormat: entryFormat, mapCount: mapCount, entries: entries}, nil
}

const (
	innerIndexBitCountMask = 0x0F
	mapEntrySizeMask       = 0x30
)

// Lookup returns the (outer, inner) pair for glyph/axis index i. If i is
// beyond the map's MapCount, the last entry is used, per the OpenType
// specification's "entries beyond the last are clamped" rule.
func (m *DeltaSetIndexMap) Lookup(i int) (outer, inner int) {
	if m.mapCount == 0 {
		return 0, i
	}
	if i >= m.mapCount {
		i = m.mapCount - 1
	}
	entrySize := DeltaSetIndexMapEntrySize(m.entryFormat)
	bitCount := int(m.entryFormat&innerIndexBitCountMask) + 1

	start := i * entrySize
	var raw uint32
	for b := 0; b < entrySize; b++ {
		raw = raw<<8 | uint32(m.entries[start+b])
	}
	inner = int(raw & ((1 << bitCount) - 1))
	outer = int(raw >> bitCount)
	return outer, inner
}
