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

package arabic

import (
	"errors"
	"testing"
)

// fakeOracle classifies a fixed set of runes for these tests; anything
// else is NonJoining.
type fakeOracle map[rune]JoiningType

func (o fakeOracle) JoiningType(r rune) JoiningType {
	if jt, ok := o[r]; ok {
		return jt
	}
	return NonJoining
}

// recordingEngine has a script/lang system and returns no lookups for
// any feature, so applyFeature is a no-op; it exists to exercise
// GsubApplyArabic's control flow (the joining pass, the short-circuit)
// without needing a real GSUB table.
type recordingEngine struct {
	hasLangSys bool
	calls      []Tag
}

func (e *recordingEngine) HasLangSys(scriptTag, langTag Tag) (bool, error) {
	return e.hasLangSys, nil
}

func (e *recordingEngine) LookupsForFeature(scriptTag, langTag, featureTag Tag) ([]LookupRef, error) {
	e.calls = append(e.calls, featureTag)
	return nil, nil
}

func (e *recordingEngine) ApplyLookup(ref LookupRef, glyphs *[]Glyph, start, end int, accept func(Glyph) bool) error {
	return nil
}

func TestGsubApplyArabicShortCircuitsOnMissingLangSys(t *testing.T) {
	engine := &recordingEngine{hasLangSys: false}
	oracle := fakeOracle{}
	in := []Glyph{{ID: 1, Rune: 'a'}}

	out, err := GsubApplyArabic(engine, oracle, MakeTag('a', 'r', 'a', 'b'), 0, in)
	if err != nil {
		t.Fatalf("GsubApplyArabic: %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Errorf("out = %+v, want glyphs returned unchanged", out)
	}
	if len(engine.calls) != 0 {
		t.Errorf("engine.calls = %v, want none when langsys is absent", engine.calls)
	}
}

func TestJoiningPassThreeDualJoiningLetters(t *testing.T) {
	// Concrete scenario 7: a run of three dual-joining letters with no
	// transparent marks shapes to [INIT, MEDI, FINA].
	oracle := fakeOracle{'b': DualJoining, 'c': DualJoining, 'd': DualJoining}
	engine := &recordingEngine{hasLangSys: true}
	in := []Glyph{{Rune: 'b'}, {Rune: 'c'}, {Rune: 'd'}}

	out, err := GsubApplyArabic(engine, oracle, MakeTag('a', 'r', 'a', 'b'), 0, in)
	if err != nil {
		t.Fatalf("GsubApplyArabic: %v", err)
	}
	want := []Tag{TagINIT, TagMEDI, TagFINA}
	for i, w := range want {
		if out[i].FeatureTag != w {
			t.Errorf("out[%d].FeatureTag = %s, want %s", i, out[i].FeatureTag, w)
		}
	}
}

func TestJoiningPassLeadingTransparentMarkUnchanged(t *testing.T) {
	// With a leading transparent mark, the tags of the non-transparent
	// glyphs that follow are unaffected by its presence.
	oracle := fakeOracle{
		'm': Transparent,
		'b': DualJoining, 'c': DualJoining, 'd': DualJoining,
	}
	engine := &recordingEngine{hasLangSys: true}
	withMark := []Glyph{{Rune: 'm'}, {Rune: 'b'}, {Rune: 'c'}, {Rune: 'd'}}
	withoutMark := []Glyph{{Rune: 'b'}, {Rune: 'c'}, {Rune: 'd'}}

	outWithMark, err := GsubApplyArabic(engine, oracle, MakeTag('a', 'r', 'a', 'b'), 0, withMark)
	if err != nil {
		t.Fatalf("GsubApplyArabic (with mark): %v", err)
	}
	outWithoutMark, err := GsubApplyArabic(engine, oracle, MakeTag('a', 'r', 'a', 'b'), 0, withoutMark)
	if err != nil {
		t.Fatalf("GsubApplyArabic (without mark): %v", err)
	}

	if outWithMark[0].FeatureTag != TagISOL {
		t.Errorf("mark FeatureTag = %s, want unchanged ISOL", outWithMark[0].FeatureTag)
	}
	for i := 0; i < 3; i++ {
		if outWithMark[i+1].FeatureTag != outWithoutMark[i].FeatureTag {
			t.Errorf("glyph %d: FeatureTag = %s with leading mark, %s without",
				i, outWithMark[i+1].FeatureTag, outWithoutMark[i].FeatureTag)
		}
	}
}

func TestJoiningPassFeatureTagInvariant(t *testing.T) {
	// Every final FeatureTag is one of {ISOL, INIT, MEDI, FINA}, and
	// MEDI/FINA appear only where the preceding non-transparent glyph
	// permits left-joining.
	oracle := fakeOracle{
		'a': NonJoining, 'l': LeftJoining, 'r': RightJoining,
		'd': DualJoining, 'j': JoinCausing, 't': Transparent,
	}
	runes := []rune("aldrjt dlrajt ldrtja")
	glyphs := make([]Glyph, 0, len(runes))
	for _, r := range runes {
		if r == ' ' {
			continue
		}
		glyphs = append(glyphs, Glyph{Rune: r})
	}
	for i := range glyphs {
		glyphs[i].JoiningType = oracle.JoiningType(glyphs[i].Rune)
		glyphs[i].FeatureTag = TagISOL
	}
	applyJoiningPass(glyphs)

	prev := -1
	for i, g := range glyphs {
		switch g.FeatureTag {
		case TagISOL, TagINIT, TagMEDI, TagFINA:
		default:
			t.Errorf("glyph %d: FeatureTag = %s, want one of ISOL/INIT/MEDI/FINA", i, g.FeatureTag)
		}
		if g.FeatureTag == TagMEDI || g.FeatureTag == TagFINA {
			if prev < 0 || !glyphs[prev].isLeftJoining() {
				t.Errorf("glyph %d: FeatureTag = %s but preceding non-transparent glyph does not permit left-join", i, g.FeatureTag)
			}
		}
		if !g.isTransparent() {
			prev = i
		}
	}
}

func TestApplyFeatureTagMatchPredicate(t *testing.T) {
	// A tag-matched feature step (global == false) only accepts glyphs
	// whose current FeatureTag equals the lookup's own registered tag.
	var accepted []int
	engine := &stubEngine{
		hasLangSys: true,
		lookups: map[Tag][]LookupRef{
			TagFINA: {{LookupIndex: 0, FeatureTag: TagFINA}},
		},
		apply: func(ref LookupRef, glyphs *[]Glyph, start, end int, accept func(Glyph) bool) error {
			for i := start; i < end; i++ {
				if accept((*glyphs)[i]) {
					accepted = append(accepted, i)
				}
			}
			return nil
		},
	}
	glyphs := []Glyph{
		{FeatureTag: TagISOL},
		{FeatureTag: TagFINA},
		{FeatureTag: TagMEDI},
	}

	if err := applyFeature(engine, 0, 0, TagFINA, false, &glyphs); err != nil {
		t.Fatalf("applyFeature: %v", err)
	}
	if len(accepted) != 1 || accepted[0] != 1 {
		t.Errorf("accepted = %v, want [1]", accepted)
	}
}

func TestGsubApplyArabicPropagatesEngineError(t *testing.T) {
	wantErr := errors.New("boom")
	engine := &stubEngine{
		hasLangSys: true,
		lookups: map[Tag][]LookupRef{
			TagCCMP: {{LookupIndex: 0, FeatureTag: TagCCMP}},
		},
		apply: func(ref LookupRef, glyphs *[]Glyph, start, end int, accept func(Glyph) bool) error {
			return wantErr
		},
	}
	_, err := GsubApplyArabic(engine, fakeOracle{}, 0, 0, []Glyph{{Rune: 'a'}})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapping %v", err, wantErr)
	}
}

// stubEngine is a configurable Engine for tests that need specific
// LookupsForFeature results and a custom ApplyLookup behavior.
type stubEngine struct {
	hasLangSys bool
	lookups    map[Tag][]LookupRef
	apply      func(ref LookupRef, glyphs *[]Glyph, start, end int, accept func(Glyph) bool) error
}

func (e *stubEngine) HasLangSys(scriptTag, langTag Tag) (bool, error) {
	return e.hasLangSys, nil
}

func (e *stubEngine) LookupsForFeature(scriptTag, langTag, featureTag Tag) ([]LookupRef, error) {
	return e.lookups[featureTag], nil
}

func (e *stubEngine) ApplyLookup(ref LookupRef, glyphs *[]Glyph, start, end int, accept func(Glyph) bool) error {
	return e.apply(ref, glyphs, start, end, accept)
}
