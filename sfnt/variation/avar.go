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
	"fmt"

	"github.com/go-otf/corefont/sfntreader"
)

// AxisValueMap is one (fromCoord, toCoord) correspondence pair in an axis's
// segment map.
type AxisValueMap struct {
	From, To float64
}

// Avar is a parsed "avar" table: one piecewise-linear segment map per axis,
// in fvar axis order.
type Avar struct {
	SegmentMaps [][]AxisValueMap
}

// ParseAvar parses an "avar" table, already sliced to its own bounds. The
// caller must supply the axis count from the font's fvar table, since avar
// itself does not repeat it.
func ParseAvar(data []byte, axisCount int) (*Avar, error) {
	r := sfntreader.New(data)
	if _, err := r.U16(); err != nil { // majorVersion
		return nil, err
	}
	if _, err := r.U16(); err != nil { // minorVersion
		return nil, err
	}
	if _, err := r.U16(); err != nil { // reserved
		return nil, err
	}
	axisSegmentMapCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	if int(axisSegmentMapCount) != axisCount {
		return nil, fmt.Errorf("avar: axisCount mismatch: fvar has %d, avar has %d", axisCount, axisSegmentMapCount)
	}

	maps := make([][]AxisValueMap, axisCount)
	for i := range maps {
		positionMapCount, err := r.U16()
		if err != nil {
			return nil, err
		}
		m := make([]AxisValueMap, positionMapCount)
		for j := range m {
			from, err := r.F2Dot14()
			if err != nil {
				return nil, err
			}
			to, err := r.F2Dot14()
			if err != nil {
				return nil, err
			}
			m[j] = AxisValueMap{From: from, To: to}
		}
		maps[i] = m
	}
	return &Avar{SegmentMaps: maps}, nil
}

// Remap applies the segment map to an already fvar-normalized instance
// tuple (one value per axis, in [-1, 1]), producing the coordinates the
// tuple variation store's scalar formula should use.
func (a *Avar) Remap(normalized []float64) []float64 {
	out := make([]float64, len(normalized))
	for i, v := range normalized {
		if i >= len(a.SegmentMaps) {
			out[i] = v
			continue
		}
		out[i] = remapAxis(a.SegmentMaps[i], v)
	}
	return out
}

func remapAxis(m []AxisValueMap, v float64) float64 {
	if len(m) == 0 {
		return v
	}
	for i := 1; i < len(m); i++ {
		prev, cur := m[i-1], m[i]
		if v >= prev.From && v <= cur.From {
			if cur.From == prev.From {
				return prev.To
			}
			frac := (v - prev.From) / (cur.From - prev.From)
			return prev.To + frac*(cur.To-prev.To)
		}
	}
	if v < m[0].From {
		return m[0].To
	}
	return m[len(m)-1].To
}
