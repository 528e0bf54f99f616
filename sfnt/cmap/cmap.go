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

// Package cmap parses the "cmap" table's header and encoding-record
// directory. Subtable offsets are recorded but never dereferenced here;
// decoding a specific subtable format is a concern for a higher layer that
// knows which encoding it wants.
package cmap

import (
	"errors"
	"fmt"

	"github.com/go-otf/corefont/sfntreader"
)

// ErrSizeMismatch is returned when the table's declared record count
// implies more records than the surrounding data actually holds.
var ErrSizeMismatch = errors.New("cmap: size mismatch between numTables and available data")

const recordSize = 8 // platformID(2) + encodingID(2) + subtableOffset(4)

// Record is one entry in the cmap directory: a (platform, encoding) pair
// and the byte offset of its subtable, relative to the start of the cmap
// table.
type Record struct {
	PlatformID     uint16
	EncodingID     uint16
	SubtableOffset uint32
}

// Directory is the parsed header of a "cmap" table.
type Directory struct {
	Version uint16
	Records []Record
}

// ParseDirectory parses a "cmap" table's header and encoding-record array,
// already sliced to the table's own bounds.
func ParseDirectory(data []byte) (*Directory, error) {
	r := sfntreader.New(data)
	version, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("cmap: version: %w", err)
	}
	numTables, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("cmap: numTables: %w", err)
	}

	need := int(numTables) * recordSize
	if r.Remaining() < need {
		return nil, fmt.Errorf("%w: numTables=%d needs %d bytes, have %d", ErrSizeMismatch, numTables, need, r.Remaining())
	}

	records := make([]Record, numTables)
	for i := range records {
		platformID, err := r.U16()
		if err != nil {
			return nil, err
		}
		encodingID, err := r.U16()
		if err != nil {
			return nil, err
		}
		offset, err := r.U32()
		if err != nil {
			return nil, err
		}
		records[i] = Record{PlatformID: platformID, EncodingID: encodingID, SubtableOffset: offset}
	}

	return &Directory{Version: version, Records: records}, nil
}
