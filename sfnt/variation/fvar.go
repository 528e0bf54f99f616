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

// Axis describes one variation axis from "fvar": its tag, its design-space
// range, and the default design coordinate an unvaried glyph corresponds
// to.
type Axis struct {
	Tag     string
	Min     float64
	Default float64
	Max     float64
	Hidden  bool
}

// Instance is one of "fvar"'s named instances: a fixed design-space
// coordinate for every axis.
type Instance struct {
	NameID    uint16
	Coords    []float64
	PSNameID  uint16 // 0 if not present
}

// Fvar is a parsed "fvar" table.
type Fvar struct {
	Axes      []Axis
	Instances []Instance
}

const fvarHiddenAxisFlag = 0x0001

// ParseFvar parses an "fvar" table, already sliced to its own bounds.
func ParseFvar(data []byte) (*Fvar, error) {
	r := sfntreader.New(data)
	if _, err := r.U16(); err != nil { // majorVersion
		return nil, err
	}
	if _, err := r.U16(); err != nil { // minorVersion
		return nil, err
	}
	axesArrayOffset, err := r.U16()
	if err != nil {
		return nil, err
	}
	if _, err := r.U16(); err != nil { // reserved
		return nil, err
	}
	axisCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	axisSize, err := r.U16()
	if err != nil {
		return nil, err
	}
	instanceCount, err := r.U16()
	if err != nil {
		return nil, err
	}
	instanceSize, err := r.U16()
	if err != nil {
		return nil, err
	}

	axesReader, err := r.ScopeFrom(int(axesArrayOffset))
	if err != nil {
		return nil, fmt.Errorf("fvar: axes array: %w", err)
	}
	axes := make([]Axis, axisCount)
	for i := range axes {
		ar, err := axesReader.Scope(i*int(axisSize), int(axisSize))
		if err != nil {
			return nil, fmt.Errorf("fvar: axis %d: %w", i, err)
		}
		tag, err := ar.Tag()
		if err != nil {
			return nil, err
		}
		minV, err := ar.Fixed()
		if err != nil {
			return nil, err
		}
		defV, err := ar.Fixed()
		if err != nil {
			return nil, err
		}
		maxV, err := ar.Fixed()
		if err != nil {
			return nil, err
		}
		flags, err := ar.U16()
		if err != nil {
			return nil, err
		}
		axes[i] = Axis{Tag: tag, Min: minV, Default: defV, Max: maxV, Hidden: flags&fvarHiddenAxisFlag != 0}
	}

	instOff := int(axesArrayOffset) + int(axisCount)*int(axisSize)
	instReader, err := r.ScopeFrom(instOff)
	if err != nil {
		return nil, fmt.Errorf("fvar: instance array: %w", err)
	}
	instances := make([]Instance, instanceCount)
	for i := range instances {
		ir, err := instReader.Scope(i*int(instanceSize), int(instanceSize))
		if err != nil {
			return nil, fmt.Errorf("fvar: instance %d: %w", i, err)
		}
		nameID, err := ir.U16()
		if err != nil {
			return nil, err
		}
		if _, err := ir.U16(); err != nil { // flags, reserved
			return nil, err
		}
		coords := make([]float64, axisCount)
		for a := range coords {
			v, err := ir.Fixed()
			if err != nil {
				return nil, err
			}
			coords[a] = v
		}
		inst := Instance{NameID: nameID, Coords: coords}
		if int(instanceSize) >= 4+int(axisCount)*4+2 {
			psNameID, err := ir.U16()
			if err == nil {
				inst.PSNameID = psNameID
			}
		}
		instances[i] = inst
	}

	return &Fvar{Axes: axes, Instances: instances}, nil
}

// Normalize maps a design-space coordinate (one value per axis, in fvar
// order) to the [-1, 1] normalized space the tuple variation store expects,
// using fvar's own min/default/max per axis. Values beyond an axis's range
// are clamped first. This is the un-remapped normalization; pass the result
// through an Avar, if present, before using it as a tuple-store instance.
func (f *Fvar) Normalize(design []float64) []float64 {
	out := make([]float64, len(f.Axes))
	for i, axis := range f.Axes {
		v := axis.Default
		if i < len(design) {
			v = design[i]
		}
		switch {
		case v < axis.Min:
			v = axis.Min
		case v > axis.Max:
			v = axis.Max
		}
		switch {
		case v == axis.Default:
			out[i] = 0
		case v < axis.Default:
			if axis.Default == axis.Min {
				out[i] = 0
			} else {
				out[i] = (v - axis.Default) / (axis.Default - axis.Min)
			}
		default:
			if axis.Max == axis.Default {
				out[i] = 0
			} else {
				out[i] = (v - axis.Default) / (axis.Max - axis.Default)
			}
		}
	}
	return out
}
