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

import "errors"

// Errors returned by the Type 2 / CFF2 CharString scanner, one per
// category named in the CFF and CFF2 specifications.
var (
	ErrInvalidOperator             = errors.New("cff: invalid operator")
	ErrUnsupportedOperator         = errors.New("cff: unsupported operator")
	ErrArgumentsStackOverflow      = errors.New("cff: arguments stack overflow")
	ErrInvalidArgumentsStackLength = errors.New("cff: invalid arguments stack length")
	ErrNestingLimitReached         = errors.New("cff: nesting limit reached")
	ErrNoLocalSubroutines          = errors.New("cff: no local subroutines")
	ErrInvalidSubroutineIndex      = errors.New("cff: invalid subroutine index")
	ErrInvalidSeacCode             = errors.New("cff: invalid seac code")
	ErrMissingEndchar              = errors.New("cff: missing endchar")
	ErrDataAfterEndchar            = errors.New("cff: data after endchar")
	ErrDuplicateVsIndex            = errors.New("cff: duplicate vsindex")
)

// ErrMalformed covers structural problems in the font tables themselves
// (INDEX, DICT, charset, FDSelect), as opposed to CharString bytecode.
var ErrMalformed = errors.New("cff: malformed font data")
