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
	"errors"
	"testing"
)

func TestScanSimpleGlyphHintsAndEndchar(t *testing.T) {
	// 100 (width) 10 20 hstem endchar
	cs := []byte{
		byte(139 + 100), // 100
		byte(139 + 10),  // 10
		byte(139 + 20),  // 20
		1,               // hstem
		14,              // endchar
	}

	f := &Font{
		charStrings: Index{cs},
	}
	res, err := f.Scan(0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.HasEndChar {
		t.Error("HasEndChar = false, want true")
	}
	if res.Width != 100 {
		t.Errorf("Width = %v, want 100", res.Width)
	}
}

func TestScanMissingEndcharCFF1(t *testing.T) {
	cs := []byte{
		byte(139 + 10), byte(139 + 20), byte(139 + 30), byte(139 + 40),
		21, // rmoveto, no endchar follows
	}
	f := &Font{charStrings: Index{cs}}
	_, err := f.Scan(0)
	if !errors.Is(err, ErrMissingEndchar) {
		t.Fatalf("err = %v, want ErrMissingEndchar", err)
	}
}

func TestScanCallsubrTracksUsage(t *testing.T) {
	// one local subr => bias 107; pushing -107 before callsubr targets
	// unbiased index 0. -107 fits the one-byte number encoding (byte
	// 139-107 = 32).
	subrBody := []byte{11} // return
	cs := []byte{32, 10, 14}

	f := &Font{
		charStrings: Index{cs},
		localSubrs:  Index{subrBody},
	}
	res, err := f.Scan(0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !res.HasEndChar {
		t.Error("HasEndChar = false, want true")
	}
	if !res.LocalSubrsUsed[0] {
		t.Errorf("LocalSubrsUsed = %v, want {0: true}", res.LocalSubrsUsed)
	}
}

func TestScanCFF2BlendSingleGlobalSubr(t *testing.T) {
	// glyph id 1's CharString calls global subroutine 0 (single call),
	// which itself does a blend of n=1 (1 default value, 1 region delta)
	// then returns via falling off the end of the subr body (CFF2 has no
	// explicit "return" requirement for the outermost body, but nested
	// subrs still execute to completion and resume the caller).
	blendSubr := []byte{
		byte(139 + 10), // default value
		byte(139 + 20), // region delta
		byte(139 + 1),  // n = 1
		16,             // blend
	}
	// one global subr => bias 107; pushing -107 before callgsubr targets
	// unbiased index 0.
	cs := []byte{32, 29}

	f := &Font{
		IsCFF2:      true,
		charStrings: Index{nil, cs},
		globalSubrs: Index{blendSubr},
	}
	res, err := f.Scan(1)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := res.SortedGlobalSubrsUsed(); len(got) != 1 || got[0] != 0 {
		t.Errorf("GlobalSubrsUsed = %v, want [0]", got)
	}
	// CFF2 does not require has_endchar.
	if res.HasEndChar {
		t.Error("HasEndChar = true for a CFF2 glyph with no endchar")
	}
}

func TestScanNestingLimitReached(t *testing.T) {
	// one local subr (bias 107) that unconditionally calls itself.
	selfCall := []byte{32, 10}
	f := &Font{
		charStrings: Index{{32, 10}},
		localSubrs:  Index{selfCall},
	}
	_, err := f.Scan(0)
	if !errors.Is(err, ErrNestingLimitReached) {
		t.Fatalf("err = %v, want ErrNestingLimitReached", err)
	}
}

func TestScanInvalidOperatorReserved(t *testing.T) {
	for _, op := range []byte{0, 2, 9, 13, 17} {
		f := &Font{charStrings: Index{{op}}}
		_, err := f.Scan(0)
		if !errors.Is(err, ErrInvalidOperator) {
			t.Errorf("op %d: err = %v, want ErrInvalidOperator", op, err)
		}
	}
}

func TestScanDataAfterEndchar(t *testing.T) {
	cs := []byte{14, 1} // endchar followed by a stray hstem byte
	f := &Font{charStrings: Index{cs}}
	_, err := f.Scan(0)
	if !errors.Is(err, ErrDataAfterEndchar) {
		t.Fatalf("err = %v, want ErrDataAfterEndchar", err)
	}
}

func TestScanArgumentsStackOverflow(t *testing.T) {
	var cs []byte
	for i := 0; i < argStackCapacity+1; i++ {
		cs = append(cs, byte(139+10))
	}
	cs = append(cs, 14)
	f := &Font{charStrings: Index{cs}}
	_, err := f.Scan(0)
	if !errors.Is(err, ErrArgumentsStackOverflow) {
		t.Fatalf("err = %v, want ErrArgumentsStackOverflow", err)
	}
}

func TestScanVsIndexDuplicate(t *testing.T) {
	cs := []byte{byte(139 + 1), 15, byte(139 + 1), 15}
	f := &Font{IsCFF2: true, charStrings: Index{cs}}
	_, err := f.Scan(0)
	if !errors.Is(err, ErrDuplicateVsIndex) {
		t.Fatalf("err = %v, want ErrDuplicateVsIndex", err)
	}
}

func TestScanVsIndexRejectedOutsideCFF2(t *testing.T) {
	cs := []byte{15}
	f := &Font{charStrings: Index{cs}}
	_, err := f.Scan(0)
	if !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("err = %v, want ErrInvalidOperator", err)
	}
}

