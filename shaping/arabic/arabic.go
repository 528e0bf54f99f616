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

// Package arabic implements the joining-state machine and ordered GSUB
// feature application used to shape Arabic (and other cursive-joining)
// scripts. It does not parse GSUB itself; lookup application is delegated
// to a caller-supplied Engine, and joining-type classification to a
// caller-supplied Oracle.
package arabic

import "fmt"

// Tag is a 4-byte OpenType script, language, or feature tag, stored in
// the order the bytes appear on the wire (big-endian when encoded).
type Tag uint32

// MakeTag builds a Tag from its four ASCII characters, e.g.
// MakeTag('c', 'c', 'm', 'p') for the "ccmp" feature.
func MakeTag(a, b, c, d byte) Tag {
	return Tag(a)<<24 | Tag(b)<<16 | Tag(c)<<8 | Tag(d)
}

func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Feature tags this shaper applies, in the order named by the step 4 and
// step 5 tables.
var (
	TagCCMP = MakeTag('c', 'c', 'm', 'p')
	TagLOCL = MakeTag('l', 'o', 'c', 'l')
	TagISOL = MakeTag('i', 's', 'o', 'l')
	TagFINA = MakeTag('f', 'i', 'n', 'a')
	TagMEDI = MakeTag('m', 'e', 'd', 'i')
	TagINIT = MakeTag('i', 'n', 'i', 't')
	TagRLIG = MakeTag('r', 'l', 'i', 'g')
	TagRCLT = MakeTag('r', 'c', 'l', 't')
	TagCALT = MakeTag('c', 'a', 'l', 't')
	TagLIGA = MakeTag('l', 'i', 'g', 'a')
	TagMSET = MakeTag('m', 's', 'e', 't')
)

// JoiningType classifies a character's cursive-joining behavior.
type JoiningType uint8

const (
	NonJoining JoiningType = iota
	LeftJoining
	RightJoining
	DualJoining
	JoinCausing
	Transparent
)

// Oracle resolves a codepoint's joining type. Implementations typically
// wrap a generated Unicode property table; codepoints with no Direct
// rune origin (glyph-indexed input with no backing codepoint) should
// classify as NonJoining, the safest default since it never causes a
// neighbor to take a joined form.
type Oracle interface {
	JoiningType(r rune) JoiningType
}

// LookupRef names one GSUB lookup participating in a feature, together
// with the feature tag under which it was registered. A single feature
// query can return lookups tagged with more than one tag (a "tag-match"
// predicate step compares a glyph's current FeatureTag against this
// per-lookup tag, not the tag used to select the feature).
type LookupRef struct {
	LookupIndex int
	FeatureTag  Tag
}

// Engine is the external GSUB collaborator. Implementations own the
// parsed GSUB table and any lookup cache.
type Engine interface {
	// HasLangSys reports whether scriptTag exists in GSUB and has a
	// language system for langTag, or a default language system when
	// langTag is the zero Tag.
	HasLangSys(scriptTag, langTag Tag) (bool, error)

	// LookupsForFeature resolves (scriptTag, langTag, featureTag) to the
	// ordered list of lookups registered under that feature. An empty
	// result (with a nil error) means the feature does not apply.
	LookupsForFeature(scriptTag, langTag, featureTag Tag) ([]LookupRef, error)

	// ApplyLookup substitutes glyphs in place over the half-open range
	// [start, end), restricted to glyphs for which accept returns true.
	// Substitution may grow or shrink the run (ligatures shrink it,
	// multiple-substitution grows it); implementations replace *glyphs
	// with the new backing slice rather than mutating past its end.
	// Any Glyph produced by a substitution must carry forward the
	// JoiningType and FeatureTag of the glyph(s) it replaces, the same
	// simplification noted by this shaper's own reference
	// implementation pending future Unicode-normalization-aware rules.
	ApplyLookup(ref LookupRef, glyphs *[]Glyph, start, end int, accept func(Glyph) bool) error
}

// Glyph is one glyph position flowing through the Arabic shaping
// pipeline.
type Glyph struct {
	// ID is the glyph index.
	ID int
	// Rune is the codepoint this glyph was produced from, used to look
	// up its JoiningType; 0 if the glyph has no single backing
	// codepoint (classified NonJoining by GsubApplyArabic in that case).
	Rune rune

	// JoiningType is set once by GsubApplyArabic before any lookup is
	// applied, and is not recomputed afterward.
	JoiningType JoiningType
	// FeatureTag is the glyph's current shaping form, mutated by the
	// joining pass and consulted by the tag-matched feature steps.
	// Starts at TagISOL for every non-transparent glyph.
	FeatureTag Tag
}

func (g Glyph) isTransparent() bool { return g.JoiningType == Transparent }

func (g Glyph) isLeftJoining() bool {
	switch g.JoiningType {
	case LeftJoining, DualJoining, JoinCausing:
		return true
	}
	return false
}

func (g Glyph) isRightJoining() bool {
	switch g.JoiningType {
	case RightJoining, DualJoining, JoinCausing:
		return true
	}
	return false
}

type featureStep struct {
	tag    Tag
	global bool
}

// languageFormFeatures is step 4's ordered (feature, predicate) table.
var languageFormFeatures = []featureStep{
	{TagLOCL, true},
	{TagISOL, false},
	{TagFINA, false},
	{TagMEDI, false},
	{TagINIT, false},
	{TagRLIG, true},
	{TagRCLT, true},
	{TagCALT, true},
}

// typographicFeatures is step 5's ordered, always-global table.
var typographicFeatures = []Tag{TagLIGA, TagMSET}

// GsubApplyArabic runs the six-step Arabic shaping pipeline described by
// this package's design: CCMP, joining-state classification, the (here
// omitted) stch feature, the language-form features, the typographic
// features, and (omitted) mark reordering. It returns the shaped glyph
// sequence; glyphs is left untouched on error.
func GsubApplyArabic(engine Engine, oracle Oracle, scriptTag, langTag Tag, glyphs []Glyph) ([]Glyph, error) {
	ok, err := engine.HasLangSys(scriptTag, langTag)
	if err != nil {
		return nil, err
	}
	if !ok {
		return glyphs, nil
	}

	work := make([]Glyph, len(glyphs))
	copy(work, glyphs)
	for i := range work {
		work[i].JoiningType = NonJoining
		if work[i].Rune != 0 {
			work[i].JoiningType = oracle.JoiningType(work[i].Rune)
		}
		work[i].FeatureTag = TagISOL
	}

	// Step 1: compound character composition/decomposition.
	if err := applyFeature(engine, scriptTag, langTag, TagCCMP, true, &work); err != nil {
		return nil, fmt.Errorf("arabic: ccmp: %w", err)
	}

	// Step 2: compute letter joining states.
	applyJoiningPass(work)

	// Step 3 (stch) is intentionally not implemented; see package design
	// notes.

	// Step 4: language-form substitution features.
	for _, step := range languageFormFeatures {
		if err := applyFeature(engine, scriptTag, langTag, step.tag, step.global, &work); err != nil {
			return nil, fmt.Errorf("arabic: %s: %w", step.tag, err)
		}
	}

	// Step 5: typographic-form substitution features.
	for _, tag := range typographicFeatures {
		if err := applyFeature(engine, scriptTag, langTag, tag, true, &work); err != nil {
			return nil, fmt.Errorf("arabic: %s: %w", tag, err)
		}
	}

	// Step 6 (mark reordering) is intentionally not implemented; see
	// package design notes.

	return work, nil
}

// applyJoiningPass implements step 2: a single left-to-right walk over
// the non-transparent glyphs, promoting a glyph to FINA when its
// predecessor is left-joining-capable and it is itself right-joining-
// capable, and correspondingly promoting that predecessor from ISOL to
// INIT or from FINA to MEDI.
func applyJoiningPass(glyphs []Glyph) {
	prev := -1
	for i := range glyphs {
		if glyphs[i].isTransparent() {
			continue
		}
		if prev < 0 {
			prev = i
			continue
		}
		if glyphs[prev].isLeftJoining() && glyphs[i].isRightJoining() {
			glyphs[i].FeatureTag = TagFINA
			switch glyphs[prev].FeatureTag {
			case TagISOL:
				glyphs[prev].FeatureTag = TagINIT
			case TagFINA:
				glyphs[prev].FeatureTag = TagMEDI
			}
		}
		prev = i
	}
}

// applyFeature resolves featureTag to its lookups and applies each in
// order. When global is false, a lookup only accepts glyphs whose
// current FeatureTag equals that lookup's own registered tag.
func applyFeature(engine Engine, scriptTag, langTag, featureTag Tag, global bool, glyphs *[]Glyph) error {
	lookups, err := engine.LookupsForFeature(scriptTag, langTag, featureTag)
	if err != nil {
		return err
	}
	for _, lu := range lookups {
		accept := func(g Glyph) bool {
			return global || g.FeatureTag == lu.FeatureTag
		}
		if err := engine.ApplyLookup(lu, glyphs, 0, len(*glyphs), accept); err != nil {
			return err
		}
	}
	return nil
}
