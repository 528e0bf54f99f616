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
	"fmt"
	"strconv"
)

// dict is a decoded CFF Top/Font/Private DICT: operator code to its
// operand list. Single-byte operators key by their own value (0..21);
// two-byte (12 xx) operators key by 1200+xx.
type dict map[uint16][]float64

const (
	opCharset      uint16 = 15
	opCharstrings  uint16 = 17
	opPrivate      uint16 = 18
	opROS          uint16 = 1200 + 30
	opFDArray      uint16 = 1200 + 36
	opFDSelect     uint16 = 1200 + 37
	opCharstrType  uint16 = 1200 + 6
	opDefaultWidth uint16 = 20
	opNominalWidth uint16 = 21
	opVstore       uint16 = 1200 + 24 // CFF2 Top DICT: vstore
)

func decodeDict(buf []byte) (dict, error) {
	res := dict{}
	var stack []float64

	for len(buf) > 0 {
		b0 := buf[0]
		switch {
		case b0 == 12:
			if len(buf) < 2 {
				return nil, fmt.Errorf("%w: truncated two-byte DICT operator", ErrMalformed)
			}
			res[1200+uint16(buf[1])] = stack
			stack = nil
			buf = buf[2:]
		case b0 <= 21:
			res[uint16(b0)] = stack
			stack = nil
			buf = buf[1:]
		case b0 == 28:
			if len(buf) < 3 {
				return nil, fmt.Errorf("%w: truncated DICT int16 operand", ErrMalformed)
			}
			v := int16(uint16(buf[1])<<8 | uint16(buf[2]))
			stack = append(stack, float64(v))
			buf = buf[3:]
		case b0 == 29:
			if len(buf) < 5 {
				return nil, fmt.Errorf("%w: truncated DICT int32 operand", ErrMalformed)
			}
			v := int32(uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4]))
			stack = append(stack, float64(v))
			buf = buf[5:]
		case b0 == 30:
			rest, v, err := decodeDictReal(buf[1:])
			if err != nil {
				return nil, err
			}
			stack = append(stack, v)
			buf = rest
		case b0 == 31 || b0 > 254:
			return nil, fmt.Errorf("%w: reserved DICT operand byte %d", ErrMalformed, b0)
		case b0 <= 246:
			stack = append(stack, float64(int32(b0)-139))
			buf = buf[1:]
		case b0 <= 250:
			if len(buf) < 2 {
				return nil, fmt.Errorf("%w: truncated DICT short operand", ErrMalformed)
			}
			stack = append(stack, float64(int32(b0)*256+int32(buf[1])+(108-247*256)))
			buf = buf[2:]
		default: // b0 <= 254
			if len(buf) < 2 {
				return nil, fmt.Errorf("%w: truncated DICT short operand", ErrMalformed)
			}
			stack = append(stack, float64(-int32(b0)*256-int32(buf[1])-(108-251*256)))
			buf = buf[2:]
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: DICT ends with unconsumed operands", ErrMalformed)
	}
	return res, nil
}

// decodeDictReal decodes a packed-BCD real number (DICT operand type 30).
func decodeDictReal(buf []byte) ([]byte, float64, error) {
	var s []byte
	first := true
	var next byte
	for {
		var nibble byte
		if first {
			if len(buf) == 0 {
				return nil, 0, fmt.Errorf("%w: truncated DICT real operand", ErrMalformed)
			}
			next, buf = buf[0], buf[1:]
			nibble = next >> 4
			next &= 0x0f
			first = false
		} else {
			nibble = next
			first = true
		}

		switch nibble {
		case 0xa:
			s = append(s, '.')
		case 0xb:
			s = append(s, 'e')
		case 0xc:
			s = append(s, 'e', '-')
		case 0xd:
			return nil, 0, fmt.Errorf("%w: reserved DICT real nibble", ErrMalformed)
		case 0xe:
			s = append(s, '-')
		case 0xf:
			v, err := strconv.ParseFloat(string(s), 64)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			return buf, v, nil
		default:
			s = append(s, '0'+nibble)
		}
	}
}

// int returns op's first operand as an int, or 0 if absent.
func (d dict) int(op uint16) int {
	if v, ok := d[op]; ok && len(v) > 0 {
		return int(v[0])
	}
	return 0
}

func (d dict) has(op uint16) bool {
	_, ok := d[op]
	return ok
}

// pair returns op's first two operands, e.g. Private's {size, offset}.
func (d dict) pair(op uint16) (a, b int, ok bool) {
	v, present := d[op]
	if !present || len(v) < 2 {
		return 0, 0, false
	}
	return int(v[0]), int(v[1]), true
}
