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
	"reflect"
	"testing"
)

func TestDecodePointCount(t *testing.T) {
	cases := []struct {
		data []byte
		want int
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x32}, 50},
		{[]byte{0x81, 0x22}, 290},
	}
	for _, c := range cases {
		got, _, err := DecodePointCount(c.data)
		if err != nil {
			t.Fatalf("DecodePointCount(% x): %v", c.data, err)
		}
		if got != c.want {
			t.Errorf("DecodePointCount(% x) = %d, want %d", c.data, got, c.want)
		}
	}
}

func TestDecodePackedPoints(t *testing.T) {
	data := []byte{0x0D, 0x0C, 0x01, 0x04, 0x04, 0x02, 0x01, 0x02, 0x03, 0x03, 0x02, 0x01, 0x01, 0x03, 0x04}
	want := []int{1, 5, 9, 11, 12, 14, 17, 20, 22, 23, 24, 27, 31}

	got, consumed, err := DecodePackedPoints(data)
	if err != nil {
		t.Fatalf("DecodePackedPoints: %v", err)
	}
	if consumed != len(data) {
		t.Errorf("consumed = %d, want %d", consumed, len(data))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("points = %v, want %v", got, want)
	}
}

func TestDecodePackedDeltas(t *testing.T) {
	data := []byte{0x03, 0x0A, 0x97, 0x00, 0xC6, 0x87, 0x41, 0x10, 0x22, 0xFB, 0x34}
	want := []int16{10, -105, 0, -58, 0, 0, 0, 0, 0, 0, 0, 0, 4130, -1228}

	got, consumed, err := DecodePackedDeltas(data, 14)
	if err != nil {
		t.Fatalf("DecodePackedDeltas: %v", err)
	}
	if consumed != len(data) {
		t.Errorf("consumed = %d, want %d", consumed, len(data))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("deltas = %v, want %v", got, want)
	}
}

func TestDecodePackedPointsTruncated(t *testing.T) {
	// Count says 5 points but the run data stops after 2.
	data := []byte{0x05, 0x01, 0x01, 0x01}
	if _, _, err := DecodePackedPoints(data); err == nil {
		t.Fatal("expected an error for a run that ends mid-stream")
	}
}
