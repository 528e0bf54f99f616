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

package os2

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseV0ShortTableOmitsMSTail(t *testing.T) {
	buf := make([]byte, lenCore) // exactly 68 bytes, version field left 0
	tbl, err := Parse(buf, len(buf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.HasMSTail {
		t.Fatal("a 68-byte table must not report the MS tail as present")
	}
	if tbl.HasV1 || tbl.HasV2 || tbl.HasV5 {
		t.Fatal("a 68-byte table must not report any later tail as present")
	}
}

func TestParseV0LongTableHasMSTailDespiteStaleVersion(t *testing.T) {
	buf := make([]byte, lenV0) // 78 bytes, version field left at 0
	tbl, err := Parse(buf, len(buf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !tbl.HasMSTail {
		t.Fatal("a 78-byte table must report the MS tail as present even though Version == 0")
	}
	if tbl.HasV1 {
		t.Fatal("a 78-byte table must not report v1 fields as present")
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	in := &Table{
		Version:         2,
		XAvgCharWidth:   500,
		USWeightClass:   400,
		HasMSTail:       true,
		STypoAscender:   800,
		USWinAscent:     900,
		HasV1:           true,
		UlCodePageRange1: 1,
		HasV2:           true,
		SCapHeight:      700,
	}
	buf := in.Encode()
	out, err := Parse(buf, len(buf))
	if err != nil {
		t.Fatalf("Parse(Encode()): %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
