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

package sfntreader

import (
	"errors"
	"testing"
)

func TestReaderScalars(t *testing.T) {
	data := []byte{
		0x01,             // u8 = 1
		0xFF,             // i8 = -1
		0x00, 0x02,       // u16 = 2
		0xFF, 0xFE,       // i16 = -2
		0x00, 0x00, 0x00, 0x03, // u32 = 3
	}
	r := New(data)

	if v, err := r.U8(); err != nil || v != 1 {
		t.Fatalf("U8: got %d, %v", v, err)
	}
	if v, err := r.I8(); err != nil || v != -1 {
		t.Fatalf("I8: got %d, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 2 {
		t.Fatalf("U16: got %d, %v", v, err)
	}
	if v, err := r.I16(); err != nil || v != -2 {
		t.Fatalf("I16: got %d, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 3 {
		t.Fatalf("U32: got %d, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected no bytes left, got %d", r.Remaining())
	}
}

func TestReaderShortData(t *testing.T) {
	r := New([]byte{0x00})
	if _, err := r.U16(); !errors.Is(err, ErrShortData) {
		t.Fatalf("expected ErrShortData, got %v", err)
	}
}

func TestReaderScopeIndependentCursor(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	r := New(data)
	if err := r.Skip(2); err != nil {
		t.Fatal(err)
	}

	scope, err := r.Scope(0, 2)
	if err != nil {
		t.Fatal(err)
	}
	v, err := scope.U8()
	if err != nil || v != 0xAA {
		t.Fatalf("scope should read from its own offset 0, got %#x, %v", v, err)
	}
	if r.Pos() != 2 {
		t.Fatalf("parent cursor must not move when scope is read, got pos=%d", r.Pos())
	}

	v2, err := r.U8()
	if err != nil || v2 != 0xCC {
		t.Fatalf("parent cursor should still be at its own position, got %#x, %v", v2, err)
	}
}

func TestReaderScopeOutOfBounds(t *testing.T) {
	r := New([]byte{1, 2, 3})
	if _, err := r.Scope(2, 5); !errors.Is(err, ErrBadOffset) {
		t.Fatalf("expected ErrBadOffset, got %v", err)
	}
}

func TestArrayBoundsCheckedOnce(t *testing.T) {
	data := []byte{0, 1, 0, 2, 0, 3}
	r := New(data)
	arr, err := NewArray(r, 0, 3, 2, func(b []byte) (uint16, error) {
		return uint16(b[0])<<8 | uint16(b[1]), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if arr.Len() != 3 {
		t.Fatalf("expected len 3, got %d", arr.Len())
	}
	for i, want := range []uint16{0, 1, 2, 3}[1:] {
		got, err := arr.Get(i)
		if err != nil || got != want {
			t.Fatalf("element %d: got %d, %v, want %d", i, got, err, want)
		}
	}

	if _, err := NewArray(r, 0, 4, 2, func(b []byte) (uint16, error) { return 0, nil }); !errors.Is(err, ErrShortData) {
		t.Fatalf("expected ErrShortData for an array that overruns the buffer, got %v", err)
	}
}
