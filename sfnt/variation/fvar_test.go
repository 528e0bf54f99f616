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

package variation

import (
	"encoding/binary"
	"math"
	"testing"
)

func fixed16_16(v float64) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(int32(v*65536)))
	return b
}

func buildFvar(tag string, min, def, max float64, instCoords [][]float64) []byte {
	var buf []byte
	put16 := func(v uint16) {
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, v)
		buf = append(buf, b...)
	}
	put16(1) // majorVersion
	put16(0) // minorVersion
	put16(16) // axesArrayOffset
	put16(0)  // reserved
	put16(1)  // axisCount
	put16(20) // axisSize
	put16(uint16(len(instCoords)))
	put16(uint16(4 + 4)) // instanceSize: nameID+flags(4) + 1 axis * 4 bytes fixed

	buf = append(buf, []byte(tag)...)
	buf = append(buf, fixed16_16(min)...)
	buf = append(buf, fixed16_16(def)...)
	buf = append(buf, fixed16_16(max)...)
	put16(0) // flags
	put16(0) // axisNameID

	for _, c := range instCoords {
		put16(256) // nameID
		put16(0)   // flags+reserved
		buf = append(buf, fixed16_16(c[0])...)
	}
	return buf
}

func TestParseFvarAndNormalize(t *testing.T) {
	data := buildFvar("wght", 100, 400, 900, [][]float64{{700}})
	fvar, err := ParseFvar(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(fvar.Axes) != 1 || fvar.Axes[0].Tag != "wght" {
		t.Fatalf("unexpected axes: %+v", fvar.Axes)
	}
	if len(fvar.Instances) != 1 || math.Abs(fvar.Instances[0].Coords[0]-700) > 0.001 {
		t.Fatalf("unexpected instance: %+v", fvar.Instances)
	}

	norm := fvar.Normalize([]float64{700})
	want := (700.0 - 400.0) / (900.0 - 400.0)
	if math.Abs(norm[0]-want) > 0.001 {
		t.Fatalf("Normalize(700) = %v, want %v", norm[0], want)
	}

	normMin := fvar.Normalize([]float64{100})
	if math.Abs(normMin[0]+1) > 0.001 {
		t.Fatalf("Normalize(min) = %v, want -1", normMin[0])
	}
}

func TestAvarRemapIdentityWhenNoMap(t *testing.T) {
	a := &Avar{SegmentMaps: [][]AxisValueMap{{}}}
	out := a.Remap([]float64{0.5})
	if out[0] != 0.5 {
		t.Fatalf("identity remap changed value: got %v", out[0])
	}
}

func TestAvarRemapInterpolates(t *testing.T) {
	a := &Avar{SegmentMaps: [][]AxisValueMap{
		{{From: -1, To: -1}, {From: 0, To: 0}, {From: 1, To: 1}},
	}}
	// A folded segment map: design midpoint maps to a different normalized value.
	folded := &Avar{SegmentMaps: [][]AxisValueMap{
		{{From: -1, To: -1}, {From: 0, To: 0.2}, {From: 1, To: 1}},
	}}
	if got := a.Remap([]float64{0.5})[0]; got != 0.5 {
		t.Fatalf("unfolded remap at midpoint: got %v, want 0.5", got)
	}
	if got := folded.Remap([]float64{0.5})[0]; math.Abs(got-0.6) > 0.001 {
		t.Fatalf("folded remap at midpoint: got %v, want 0.6", got)
	}
}
