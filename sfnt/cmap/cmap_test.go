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

package cmap

import (
	"errors"
	"testing"
)

func TestParseDirectoryTwoRecords(t *testing.T) {
	data := []byte{
		0x00, 0x00, // version 0
		0x00, 0x02, // numTables 2
		0x00, 0x03, 0x00, 0x0A, 0x00, 0x00, 0x01, 0x00, // record 0: (3, 10, 0x00000100)
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x02, 0x01, // record 1: (1, 0, 0x00000201)
	}

	dir, err := ParseDirectory(data)
	if err != nil {
		t.Fatalf("ParseDirectory: %v", err)
	}
	if dir.Version != 0 {
		t.Errorf("version = %d, want 0", dir.Version)
	}
	if len(dir.Records) != 2 {
		t.Fatalf("numTables = %d, want 2", len(dir.Records))
	}

	want0 := Record{PlatformID: 3, EncodingID: 10, SubtableOffset: 0x00000100}
	if dir.Records[0] != want0 {
		t.Errorf("record 0 = %+v, want %+v", dir.Records[0], want0)
	}
	want1 := Record{PlatformID: 1, EncodingID: 0, SubtableOffset: 0x00000201}
	if dir.Records[1] != want1 {
		t.Errorf("record 1 = %+v, want %+v", dir.Records[1], want1)
	}
}

func TestParseDirectorySizeMismatch(t *testing.T) {
	data := []byte{
		0x00, 0x00,
		0x00, 0x02,
		0x00, 0x03, 0x00, 0x0A, 0x00, 0x00, 0x01, 0x00,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, // record 1 truncated to 6 bytes
	}

	_, err := ParseDirectory(data)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}
