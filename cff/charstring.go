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

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	argStackCapacity = 48
	maxCallDepth     = 10
)

// ScanResult records what a CharString scan observed, without rendering
// any path: the subroutines it transitively touched (for subsetting),
// and the bookkeeping the CFF1/CFF2 terminator invariants require.
type ScanResult struct {
	GlobalSubrsUsed map[int]bool
	LocalSubrsUsed  map[int]bool
	HasEndChar      bool
	HasSeac         bool
	VsIndexSet      bool
	Width           float64
}

// SortedGlobalSubrsUsed returns GlobalSubrsUsed as a sorted slice, for
// deterministic output (e.g. subsetter manifests, test expectations).
func (r *ScanResult) SortedGlobalSubrsUsed() []int {
	s := maps.Keys(r.GlobalSubrsUsed)
	slices.Sort(s)
	return s
}

// SortedLocalSubrsUsed returns LocalSubrsUsed as a sorted slice.
func (r *ScanResult) SortedLocalSubrsUsed() []int {
	s := maps.Keys(r.LocalSubrsUsed)
	slices.Sort(s)
	return s
}

// scanner is the mutable state of one CharString scan, shared across
// the recursive subroutine/seac calls a single glyph program may make.
type scanner struct {
	font     *Font
	glyphID  int
	depth    int
	stack    []float64
	result   ScanResult
	localSub Index // lazily resolved for CID fonts
	hasLocal bool

	width         float64
	widthParsed   bool
	stemsLen      int
	nominalWidthX float64
	defaultWidthX float64
	hasVsIndex    bool
}

// Scan interprets gid's top-level CharString and returns what the scan
// observed. It does not rasterize: hint and path operators only adjust
// the stack/width/stems bookkeeping the CFF1/CFF2 terminator invariants
// and subroutine-usage tracking require.
func (f *Font) Scan(gid int) (*ScanResult, error) {
	code, err := f.charStrings.Get(gid)
	if err != nil {
		return nil, err
	}

	s := &scanner{
		font:    f,
		glyphID: gid,
		result: ScanResult{
			GlobalSubrsUsed: map[int]bool{},
			LocalSubrsUsed:  map[int]bool{},
		},
	}
	if f.fdSelect == nil {
		s.localSub = f.localSubrs
		s.hasLocal = true
	}
	if !f.IsCFF2 {
		nominal, def, err := f.glyphWidths(gid)
		if err != nil {
			return nil, err
		}
		s.nominalWidthX = nominal
		s.defaultWidthX = def
	}
	s.width = s.defaultWidthX

	if err := s.run(code); err != nil {
		return nil, err
	}
	if !f.IsCFF2 && !s.result.HasEndChar {
		return nil, ErrMissingEndchar
	}
	s.result.Width = s.width
	s.result.VsIndexSet = s.hasVsIndex
	return &s.result, nil
}

func (s *scanner) run(code []byte) error {
	for len(code) > 0 {
		b0 := code[0]

		switch {
		case b0 >= 32 && b0 <= 246:
			if err := s.push(float64(int32(b0) - 139)); err != nil {
				return err
			}
			code = code[1:]
			continue
		case b0 >= 247 && b0 <= 250:
			if len(code) < 2 {
				return fmt.Errorf("%w: truncated CharString number", ErrMalformed)
			}
			v := float64(int32(b0)*256 + int32(code[1]) + (108 - 247*256))
			if err := s.push(v); err != nil {
				return err
			}
			code = code[2:]
			continue
		case b0 >= 251 && b0 <= 254:
			if len(code) < 2 {
				return fmt.Errorf("%w: truncated CharString number", ErrMalformed)
			}
			v := float64(-int32(b0)*256 - int32(code[1]) - (108 - 251*256))
			if err := s.push(v); err != nil {
				return err
			}
			code = code[2:]
			continue
		case b0 == 28:
			if len(code) < 3 {
				return fmt.Errorf("%w: truncated CharString number", ErrMalformed)
			}
			v := int16(uint16(code[1])<<8 | uint16(code[2]))
			if err := s.push(float64(v)); err != nil {
				return err
			}
			code = code[3:]
			continue
		case b0 == 255:
			if len(code) < 5 {
				return fmt.Errorf("%w: truncated CharString number", ErrMalformed)
			}
			v := int32(uint32(code[1])<<24 | uint32(code[2])<<16 | uint32(code[3])<<8 | uint32(code[4]))
			if err := s.push(float64(v) / 65536); err != nil {
				return err
			}
			code = code[5:]
			continue
		}

		op := b0
		code = code[1:]

		switch op {
		case 0, 2, 9, 13, 17:
			return ErrInvalidOperator

		case 1, 3, 18, 23: // hstem, vstem, hstemhm, vstemhm
			s.countHints()
			s.clear()

		case 4, 22: // vmoveto, hmoveto: arity 1
			s.maybeTakeWidth(1)
			s.clear()
		case 21: // rmoveto: arity 2
			s.maybeTakeWidth(2)
			s.clear()

		case 5, 6, 7, 8, 24, 25, 26, 27, 30, 31:
			s.clear()

		case 10: // callsubr
			idx, ok := s.popInt()
			if !ok {
				return ErrInvalidArgumentsStackLength
			}
			if s.depth >= maxCallDepth {
				return ErrNestingLimitReached
			}
			subrs, err := s.localSubrs()
			if err != nil {
				return err
			}
			body, unbiased, err := biasedLookup(subrs, idx)
			if err != nil {
				return err
			}
			s.result.LocalSubrsUsed[unbiased] = true
			s.depth++
			done, err := s.callAndCheckTrailing(body, code)
			s.depth--
			if err != nil {
				return err
			}
			if done {
				return nil
			}

		case 29: // callgsubr
			idx, ok := s.popInt()
			if !ok {
				return ErrInvalidArgumentsStackLength
			}
			if s.depth >= maxCallDepth {
				return ErrNestingLimitReached
			}
			body, unbiased, err := biasedLookup(s.font.globalSubrs, idx)
			if err != nil {
				return err
			}
			s.result.GlobalSubrsUsed[unbiased] = true
			s.depth++
			done, err := s.callAndCheckTrailing(body, code)
			s.depth--
			if err != nil {
				return err
			}
			if done {
				return nil
			}

		case 11: // return
			if s.font.IsCFF2 {
				return ErrInvalidOperator
			}
			return nil

		case 12:
			if len(code) < 1 {
				return fmt.Errorf("%w: truncated two-byte operator", ErrMalformed)
			}
			op2 := code[0]
			code = code[1:]
			switch op2 {
			case 34, 35, 36, 37: // hflex, flex, hflex1, flex1
				s.clear()
			default:
				return ErrUnsupportedOperator
			}

		case 14: // endchar
			if s.font.IsCFF2 {
				return ErrInvalidOperator
			}
			if len(s.stack) == 4 || (len(s.stack) == 5 && !s.widthParsed) {
				if !s.widthParsed && len(s.stack) == 5 {
					s.width = s.stack[0] + s.nominalWidthX
					s.stack = s.stack[1:]
					s.widthParsed = true
				}
				achar := int(s.stack[3])
				bchar := int(s.stack[2])
				bgid, agid, err := s.font.seacGlyphs(bchar, achar)
				if err != nil {
					return err
				}
				s.clear()
				s.result.HasSeac = true
				s.result.HasEndChar = true
				if s.depth >= maxCallDepth {
					return ErrNestingLimitReached
				}
				baseCode, err := s.font.charStrings.Get(bgid)
				if err != nil {
					return err
				}
				s.depth++
				err = s.run(baseCode)
				s.depth--
				if err != nil {
					return err
				}
				accCode, err := s.font.charStrings.Get(agid)
				if err != nil {
					return err
				}
				s.depth++
				err = s.run(accCode)
				s.depth--
				if err != nil {
					return err
				}
				if len(code) > 0 {
					return ErrDataAfterEndchar
				}
				return nil
			}
			if len(s.stack) == 1 && !s.widthParsed {
				s.width = s.stack[0] + s.nominalWidthX
				s.widthParsed = true
			}
			s.clear()
			s.result.HasEndChar = true
			if len(code) > 0 {
				return ErrDataAfterEndchar
			}
			return nil

		case 15: // vsindex
			if !s.font.IsCFF2 {
				return ErrInvalidOperator
			}
			if s.hasVsIndex {
				return ErrDuplicateVsIndex
			}
			s.hasVsIndex = true
			s.clear()

		case 16: // blend
			if !s.font.IsCFF2 {
				return ErrInvalidOperator
			}
			if len(s.stack) == 0 {
				return ErrInvalidArgumentsStackLength
			}
			n := int(s.stack[len(s.stack)-1])
			s.stack = s.stack[:len(s.stack)-1]
			if n < 0 || n > len(s.stack) {
				return ErrInvalidArgumentsStackLength
			}
			discard := len(s.stack) - n
			s.stack = append(s.stack[:n], s.stack[n+discard:]...)

		case 19, 20: // hintmask, cntrmask
			s.countHints()
			s.clear()
			nBytes := (s.stemsLen + 7) / 8
			if len(code) < nBytes {
				return fmt.Errorf("%w: truncated hint mask", ErrMalformed)
			}
			code = code[nBytes:]

		default:
			return ErrInvalidOperator
		}
	}
	return nil
}

func (s *scanner) push(v float64) error {
	if len(s.stack) >= argStackCapacity {
		return ErrArgumentsStackOverflow
	}
	s.stack = append(s.stack, v)
	return nil
}

func (s *scanner) clear() { s.stack = s.stack[:0] }

func (s *scanner) popInt() (int, bool) {
	if len(s.stack) == 0 {
		return 0, false
	}
	v := int(s.stack[len(s.stack)-1])
	s.stack = s.stack[:len(s.stack)-1]
	return v, true
}

// countHints accounts for an implicit width argument on a hint operator
// (an odd stack length, parsed once) then folds the remaining pairs
// into stemsLen.
func (s *scanner) countHints() {
	n := len(s.stack)
	if n%2 == 1 && !s.widthParsed {
		s.width = s.stack[0] + s.nominalWidthX
		n--
	}
	s.widthParsed = true
	s.stemsLen += n / 2
}

// maybeTakeWidth consumes a leading width argument from a move operator
// of the given declared arity, the first time such an operator is seen.
func (s *scanner) maybeTakeWidth(arity int) {
	if s.widthParsed {
		return
	}
	if len(s.stack) > arity {
		s.width = s.stack[0] + s.nominalWidthX
	}
	s.widthParsed = true
}

func (s *scanner) localSubrs() (Index, error) {
	if s.hasLocal {
		return s.localSub, nil
	}
	subrs, err := s.font.glyphLocalSubrs(s.glyphID)
	if err != nil {
		return nil, err
	}
	s.localSub = subrs
	s.hasLocal = true
	return subrs, nil
}

// biasedLookup applies the Type 2 subroutine index bias to idx and
// looks it up in subrs, returning both the resolved body and the
// unbiased index for usage tracking.
func biasedLookup(subrs Index, idx int) (body []byte, unbiased int, err error) {
	if subrs == nil {
		return nil, 0, ErrNoLocalSubroutines
	}
	bias := subrBias(len(subrs))
	unbiased = idx + bias
	body, err = subrs.Get(unbiased)
	if err != nil {
		return nil, 0, err
	}
	return body, unbiased, nil
}

// callAndCheckTrailing runs a subroutine body. If the body ended the
// glyph via a CFF1 endchar that wasn't a seac, it enforces that the
// calling frame has no remaining bytes of its own, propagating the
// CFF1 terminator up through nested calls.
func (s *scanner) callAndCheckTrailing(body, callerRemainder []byte) (done bool, err error) {
	hadEndchar := s.result.HasEndChar
	if err := s.run(body); err != nil {
		return false, err
	}
	if s.result.HasEndChar && !hadEndchar && !s.result.HasSeac {
		if len(callerRemainder) > 0 {
			return false, ErrDataAfterEndchar
		}
		return true, nil
	}
	return false, nil
}
