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

// Package glyf decodes "glyf"+"loca" glyph outlines, simple and composite,
// streaming them into a caller-supplied OutlineBuilder rather than
// materializing an owned path structure. A "gvar" tuple variation store may
// be applied as a delta overlay before points reach the builder.
package glyf

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/rect"

	"github.com/go-otf/corefont/sfntreader"
)

// affine is a 2x3 affine transform [xx xy; yx yy] + (dx, dy), in the same
// (a b c d e f) convention as a PostScript/PDF matrix: x' = xx*x + yx*y +
// dx, y' = xy*x + yy*y + dy. Composite glyph components each carry one of
// these; outlineDepth composes them down the recursion.
type affine struct {
	xx, xy, yx, yy, dx, dy float64
}

var identity = affine{xx: 1, yy: 1}

func (m affine) apply(x, y float64) (float64, float64) {
	return m.xx*x + m.yx*y + m.dx, m.xy*x + m.yy*y + m.dy
}

// mul returns the transform that applies m first, then n.
func (m affine) mul(n affine) affine {
	return affine{
		xx: m.xx*n.xx + m.xy*n.yx,
		xy: m.xx*n.xy + m.xy*n.yy,
		yx: m.yx*n.xx + m.yy*n.yx,
		yy: m.yx*n.xy + m.yy*n.yy,
		dx: m.dx*n.xx + m.dy*n.yx + n.dx,
		dy: m.dx*n.xy + m.dy*n.yy + n.dy,
	}
}

// MaxCompositeDepth bounds composite glyph recursion. glyf composite
// glyphs can reference each other; correct fonts fit well under this
// bound, and malformed fonts with cyclic references simply stop silently
// once it is reached, rather than needing a cycle-detection set.
const MaxCompositeDepth = 32

// ErrMalformed is returned for structurally invalid glyph data.
var ErrMalformed = errors.New("glyf: malformed glyph data")

// OutlineBuilder receives the decoded contours of a glyph. Coordinates are
// in font design units, already composed through any composite transforms
// and gvar deltas. CurveTo exists for parity with collaborators that also
// build cubic CFF outlines; plain TrueType "glyf" contours are built from
// lines and quadratics only and never call it.
type OutlineBuilder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(x1, y1, x, y float64)
	CurveTo(x1, y1, x2, y2, x, y float64)
	ClosePath()
}

// Loca is the parsed "loca" table: glyph offsets into "glyf", one more
// entry than there are glyphs (the last entry is the end of the last
// glyph's data).
type Loca []uint32

// ParseLoca parses a "loca" table. longFormat selects the 32-bit encoding
// (indexToLocFormat == 1); otherwise entries are 16-bit values that must be
// doubled.
func ParseLoca(data []byte, numGlyphs int, longFormat bool) (Loca, error) {
	count := numGlyphs + 1
	loca := make(Loca, count)
	r := sfntreader.New(data)
	for i := 0; i < count; i++ {
		if longFormat {
			v, err := r.U32()
			if err != nil {
				return nil, fmt.Errorf("%w: loca entry %d: %v", ErrMalformed, i, err)
			}
			loca[i] = v
		} else {
			v, err := r.U16()
			if err != nil {
				return nil, fmt.Errorf("%w: loca entry %d: %v", ErrMalformed, i, err)
			}
			loca[i] = uint32(v) * 2
		}
	}
	return loca, nil
}

// GlyphData returns glyph id gid's raw, undecoded glyf bytes. An empty
// slice means the glyph has no outline (e.g. the space glyph).
func (l Loca) GlyphData(glyf []byte, gid int) ([]byte, error) {
	if gid < 0 || gid+1 >= len(l) {
		return nil, fmt.Errorf("%w: glyph id %d out of range", ErrMalformed, gid)
	}
	start, end := l[gid], l[gid+1]
	if end < start || int(end) > len(glyf) {
		return nil, fmt.Errorf("%w: glyph id %d has an invalid loca range [%d, %d)", ErrMalformed, gid, start, end)
	}
	return glyf[start:end], nil
}

// GlyphSource supplies the raw glyf bytes for a glyph id, so composite
// glyphs can recurse into their components without the caller needing to
// thread the whole font through every call.
type GlyphSource interface {
	GlyphData(gid int) ([]byte, error)
}

// PointDeltas supplies a gvar-derived per-point (dx, dy) delta for a glyph
// at whatever instance coordinate the caller has already resolved. Deltas
// is called once per simple glyph decoded (the requested glyph itself, or
// each simple glyph reached through composite components) with that
// glyph's own decoded points, before the component's transform is applied,
// and must return one delta Point per input point, in the same order.
// Composite glyphs are not passed to it, so their component offsets are
// never varied.
type PointDeltas interface {
	Deltas(gid int, points []Point) ([]Point, error)
}

// Point is a single glyph outline point, with its on/off-curve flag.
type Point struct {
	X, Y    float64
	OnCurve bool
}

const (
	flagOnCurve      = 0x01
	flagXShort       = 0x02
	flagYShort       = 0x04
	flagRepeat       = 0x08
	flagXSame        = 0x10
	flagXPositive    = 0x10
	flagYSame        = 0x20
	flagYPositive    = 0x20
)

// decodeSimple reads a simple glyph's contours and returns its points
// together with the endPtsOfContours boundaries delimiting each contour
// within the returned slice.
func decodeSimple(r *sfntreader.Reader, numContours int) (points []Point, contourEnds []int, err error) {
	contourEnds = make([]int, numContours)
	for i := range contourEnds {
		v, err := r.U16()
		if err != nil {
			return nil, nil, err
		}
		contourEnds[i] = int(v)
	}
	numPoints := 0
	if numContours > 0 {
		numPoints = contourEnds[numContours-1] + 1
	}

	instrLen, err := r.U16()
	if err != nil {
		return nil, nil, err
	}
	if err := r.Skip(int(instrLen)); err != nil {
		return nil, nil, fmt.Errorf("%w: instructions: %v", ErrMalformed, err)
	}

	flags := make([]byte, 0, numPoints)
	for len(flags) < numPoints {
		f, err := r.U8()
		if err != nil {
			return nil, nil, err
		}
		flags = append(flags, f)
		if f&flagRepeat != 0 {
			rep, err := r.U8()
			if err != nil {
				return nil, nil, err
			}
			for i := 0; i < int(rep) && len(flags) < numPoints; i++ {
				flags = append(flags, f)
			}
		}
	}

	xs := make([]float64, numPoints)
	x := 0
	for i, f := range flags {
		switch {
		case f&flagXShort != 0:
			v, err := r.U8()
			if err != nil {
				return nil, nil, err
			}
			if f&flagXPositive != 0 {
				x += int(v)
			} else {
				x -= int(v)
			}
		case f&flagXSame == 0:
			v, err := r.I16()
			if err != nil {
				return nil, nil, err
			}
			x += int(v)
		}
		xs[i] = float64(x)
	}

	ys := make([]float64, numPoints)
	y := 0
	for i, f := range flags {
		switch {
		case f&flagYShort != 0:
			v, err := r.U8()
			if err != nil {
				return nil, nil, err
			}
			if f&flagYPositive != 0 {
				y += int(v)
			} else {
				y -= int(v)
			}
		case f&flagYSame == 0:
			v, err := r.I16()
			if err != nil {
				return nil, nil, err
			}
			y += int(v)
		}
		ys[i] = float64(y)
	}

	points = make([]Point, numPoints)
	for i := range points {
		points[i] = Point{X: xs[i], Y: ys[i], OnCurve: flags[i]&flagOnCurve != 0}
	}
	return points, contourEnds, nil
}

// emitContour walks a contour's points, synthesizing the implicit on-curve
// midpoint between two consecutive off-curve points, and issues MoveTo/
// LineTo/QuadTo/ClosePath calls per the standard TrueType on/off-curve
// rules: a single off-curve point between two on-curve (real or
// synthesized) points is the control point of a quadratic; a run of two
// consecutive off-curve points implies an on-curve midpoint between them.
func emitContour(b OutlineBuilder, pts []Point) {
	if len(pts) == 0 {
		return
	}
	// Rotate so the contour starts on an on-curve point, synthesizing one
	// from the midpoint of the first and last points if neither is.
	start := 0
	for i, p := range pts {
		if p.OnCurve {
			start = i
			break
		}
	}
	var startPt Point
	if pts[start].OnCurve {
		startPt = pts[start]
	} else {
		a, c := pts[len(pts)-1], pts[0]
		startPt = midpoint(a, c)
	}
	b.MoveTo(startPt.X, startPt.Y)

	n := len(pts)
	// A synthesized start point lies before pts[start], which is then the
	// first control point to emit rather than the point already moved to.
	first := 1
	if !pts[start].OnCurve {
		first = 0
	}
	for k := first; k < n+first; k++ {
		p := pts[(start+k)%n]
		if p.OnCurve {
			b.LineTo(p.X, p.Y)
		} else {
			next := pts[(start+k+1)%n]
			if next.OnCurve {
				b.QuadTo(p.X, p.Y, next.X, next.Y)
				k++
			} else {
				mid := midpoint(p, next)
				b.QuadTo(p.X, p.Y, mid.X, mid.Y)
			}
		}
	}
	b.ClosePath()
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, OnCurve: true}
}

const (
	compArgsAreWords    = 0x0001
	compArgsAreXY       = 0x0002
	compHaveScale       = 0x0008
	compMoreComponents  = 0x0020
	compHaveXYScale     = 0x0040
	compHave2x2         = 0x0080
	compUseMyMetrics    = 0x0200
)

// Outline decodes glyph id gid from src and emits its contours to b, at
// depth 0, returning the glyph's own declared bounding box (not recomputed
// from the emitted, transform-composed contours). It recurses into src for
// composite components, bounded by MaxCompositeDepth.
func Outline(src GlyphSource, gid int, b OutlineBuilder) (rect.Rect, error) {
	return outlineDepth(src, gid, nil, b, identity, 0)
}

// OutlineVariable is like Outline but applies deltas to every glyph's
// decoded points, including each composite component's own points, before
// that component's transform composes them into the parent's space.
func OutlineVariable(src GlyphSource, gid int, deltas PointDeltas, b OutlineBuilder) (rect.Rect, error) {
	return outlineDepth(src, gid, deltas, b, identity, 0)
}

func outlineDepth(src GlyphSource, gid int, deltas PointDeltas, b OutlineBuilder, transform affine, depth int) (rect.Rect, error) {
	if depth > MaxCompositeDepth {
		// A cycle or pathologically deep component chain: stop descending
		// silently rather than failing the whole glyph, matching the
		// forgiving-parser intent for malformed composites.
		return rect.Rect{}, nil
	}
	data, err := src.GlyphData(gid)
	if err != nil {
		if depth > 0 {
			// A composite component referencing a missing or invalid
			// glyph id is skipped silently rather than failing the whole
			// glyph, matching the forgiving-parser intent; only a bad
			// top-level gid (depth 0) is a real error.
			return rect.Rect{}, nil
		}
		return rect.Rect{}, err
	}
	if len(data) == 0 {
		return rect.Rect{}, nil // empty glyph, e.g. space
	}

	r := sfntreader.New(data)
	numContours, err := r.I16()
	if err != nil {
		return rect.Rect{}, err
	}
	xMin, err := r.I16()
	if err != nil {
		return rect.Rect{}, err
	}
	yMin, err := r.I16()
	if err != nil {
		return rect.Rect{}, err
	}
	xMax, err := r.I16()
	if err != nil {
		return rect.Rect{}, err
	}
	yMax, err := r.I16()
	if err != nil {
		return rect.Rect{}, err
	}
	bbox := rect.Rect{LLx: float64(xMin), LLy: float64(yMin), URx: float64(xMax), URy: float64(yMax)}

	if numContours >= 0 {
		pts, contourEnds, err := decodeSimple(r, int(numContours))
		if err != nil {
			return rect.Rect{}, err
		}
		if deltas != nil {
			d, err := deltas.Deltas(gid, pts)
			if err != nil {
				return rect.Rect{}, fmt.Errorf("glyf: gvar deltas for glyph %d: %w", gid, err)
			}
			if len(d) != len(pts) {
				return rect.Rect{}, fmt.Errorf("%w: gvar returned %d deltas for %d points in glyph %d", ErrMalformed, len(d), len(pts), gid)
			}
			for i := range pts {
				pts[i].X += d[i].X
				pts[i].Y += d[i].Y
			}
		}
		start := 0
		for _, end := range contourEnds {
			contour := pts[start : end+1]
			transformed := make([]Point, len(contour))
			for i, p := range contour {
				x, y := transform.apply(p.X, p.Y)
				transformed[i] = Point{X: x, Y: y, OnCurve: p.OnCurve}
			}
			emitContour(b, transformed)
			start = end + 1
		}
		return bbox, nil
	}

	// Composite glyph: a sequence of component records.
	for {
		flags, err := r.U16()
		if err != nil {
			return rect.Rect{}, err
		}
		componentGID, err := r.U16()
		if err != nil {
			return rect.Rect{}, err
		}

		var dx, dy float64
		if flags&compArgsAreWords != 0 {
			a, err := r.I16()
			if err != nil {
				return rect.Rect{}, err
			}
			bb, err := r.I16()
			if err != nil {
				return rect.Rect{}, err
			}
			if flags&compArgsAreXY != 0 {
				dx, dy = float64(a), float64(bb)
			}
		} else {
			a, err := r.I8()
			if err != nil {
				return rect.Rect{}, err
			}
			bb, err := r.I8()
			if err != nil {
				return rect.Rect{}, err
			}
			if flags&compArgsAreXY != 0 {
				dx, dy = float64(a), float64(bb)
			}
		}

		compTransform := affine{xx: 1, yy: 1, dx: dx, dy: dy}
		switch {
		case flags&compHave2x2 != 0:
			xx, _ := r.F2Dot14()
			xy, _ := r.F2Dot14()
			yx, _ := r.F2Dot14()
			yy, _ := r.F2Dot14()
			compTransform = affine{xx: xx, xy: xy, yx: yx, yy: yy}.mul(affine{xx: 1, yy: 1, dx: dx, dy: dy})
		case flags&compHaveXYScale != 0:
			xx, _ := r.F2Dot14()
			yy, _ := r.F2Dot14()
			compTransform = affine{xx: xx, yy: yy}.mul(affine{xx: 1, yy: 1, dx: dx, dy: dy})
		case flags&compHaveScale != 0:
			s, _ := r.F2Dot14()
			compTransform = affine{xx: s, yy: s}.mul(affine{xx: 1, yy: 1, dx: dx, dy: dy})
		}

		combined := compTransform.mul(transform)
		if _, err := outlineDepth(src, int(componentGID), deltas, b, combined, depth+1); err != nil {
			return rect.Rect{}, err
		}

		if flags&compMoreComponents == 0 {
			break
		}
	}
	return bbox, nil
}
