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

package ivar

import "testing"

func TestDeltaSetIndexMapEntrySizePrecedence(t *testing.T) {
	// fmt = 0x30: (fmt & 0x30) >> 4 = 3; +1 = 4. The naive left-to-right
	// reading of "(fmt & 0x30) >> 4 + 1" without parens would instead
	// compute (fmt & 0x30) >> 5 = 1, which is wrong.
	if got := DeltaSetIndexMapEntrySize(0x30); got != 4 {
		t.Fatalf("entry size for format 0x30 = %d, want 4", got)
	}
	if got := DeltaSetIndexMapEntrySize(0x00); got != 1 {
		t.Fatalf("entry size for format 0x00 = %d, want 1", got)
	}
	if got := DeltaSetIndexMapEntrySize(0x10); got != 2 {
		t.Fatalf("entry size for format 0x10 = %d, want 2", got)
	}
}

func TestDeltaSetIndexMapLookup(t *testing.T) {
	// entryFormat: innerIndexBitCount=7 (0x06 -> bits+1=7), entrySize bits
	// 0x10 -> 2 bytes/entry. outer=1, inner=5 packed into 2 bytes with a
	// 7-bit inner field: raw = (1<<7)|5 = 0x85.
	m := &DeltaSetIndexMap{
		entryFormat: 0x10 | 0x06,
		mapCount:    2,
		entries:     []byte{0x01, 0x02, 0x00, 0x85},
	}
	outer, inner := m.Lookup(1)
	if outer != 1 || inner != 5 {
		t.Fatalf("Lookup(1) = (%d, %d), want (1, 5)", outer, inner)
	}

	// Index beyond mapCount clamps to the last entry.
	outer2, inner2 := m.Lookup(99)
	if outer2 != 1 || inner2 != 5 {
		t.Fatalf("Lookup(99) should clamp to last entry, got (%d, %d)", outer2, inner2)
	}
}
