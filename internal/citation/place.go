// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation places inline "[n]" citation markers into grounded
// answer text. Markers are grouped once per paragraph, numbered by first
// appearance, and never attached to headings. Placement is pure and total:
// malformed segments are skipped, never reported.
package citation

import (
	"sort"
	"strings"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Options tunes placement.
type Options struct {
	// AnnotateListItems allows markers on enumerated list lines. The
	// period of the "N." prefix never counts as a sentence end.
	AnnotateListItems bool
}

// Placement is the result of Place.
type Placement struct {
	// Text is the annotated text.
	Text string

	// CitedCount is the number of distinct citation numbers printed.
	CitedCount int

	// Groups lists the annotated paragraphs in text order. Offsets refer to
	// the input text.
	Groups []types.CitationGroup

	// Order maps printed numbers back to remapped numbers: Order[k-1] is
	// the remapped number printed as k.
	Order []int
}

// PlaceCitations annotates text with default options and returns the
// annotated text and the number of distinct citations printed.
func PlaceCitations(text string, segments []types.GroundingSegment, indexRemap map[int]int) (string, int) {
	p := Place(text, segments, indexRemap, Options{})
	return p.Text, p.CitedCount
}

// validSegment is a segment whose offsets fit the text, with its source
// indices already remapped.
type validSegment struct {
	end  int
	nums []int
}

// Place computes paragraph citation groups and inserts their markers.
// indexRemap maps raw source indices to remapped (deduplicated, 1-based)
// numbers; indices missing from it are ignored. Printed numbers are
// ordinals 1..k by first appearance, so they are contiguous even when some
// remapped numbers are never cited.
func Place(text string, segments []types.GroundingSegment, indexRemap map[int]int, opts Options) Placement {
	valid := validSegments(text, segments, indexRemap)
	bounds := paragraphBoundaries(text, opts)
	if len(valid) == 0 || len(bounds) == 0 {
		return Placement{Text: text}
	}

	// Attach each segment to the first boundary at or after its end.
	attached := make([][]validSegment, len(bounds))
	for _, s := range valid {
		b := sort.Search(len(bounds), func(i int) bool { return bounds[i].offset >= s.end })
		if b == len(bounds) {
			continue
		}
		attached[b] = append(attached[b], s)
	}

	ordinal := make(map[int]int)
	var order []int
	type pending struct {
		offset int
		nums   []int
	}
	var groups []pending
	for b, segs := range attached {
		if bounds[b].suppressed || len(segs) == 0 {
			continue
		}
		set := make(map[int]bool)
		for _, s := range segs {
			for _, n := range s.nums {
				k, ok := ordinal[n]
				if !ok {
					order = append(order, n)
					k = len(order)
					ordinal[n] = k
				}
				set[k] = true
			}
		}
		nums := make([]int, 0, len(set))
		for k := range set {
			nums = append(nums, k)
		}
		sort.Ints(nums)
		groups = append(groups, pending{offset: bounds[b].offset, nums: nums})
	}

	out := text
	for i := len(groups) - 1; i >= 0; i-- {
		out = insertAt(out, groups[i].offset, renderMarkers(groups[i].nums))
	}

	result := Placement{Text: out, CitedCount: len(order), Order: order}
	for _, g := range groups {
		result.Groups = append(result.Groups, types.CitationGroup{
			ParagraphEndOffset: g.offset,
			CitationNumbers:    g.nums,
		})
	}
	return result
}

// validSegments drops segments whose range does not fit text and source
// indices that indexRemap does not know, then orders the rest by end
// offset. Segments left without indices are dropped.
func validSegments(text string, segments []types.GroundingSegment, indexRemap map[int]int) []validSegment {
	var out []validSegment
	for _, seg := range segments {
		if seg.TextStart < 0 || seg.TextEnd > len(text) || seg.TextStart > seg.TextEnd {
			continue
		}
		var nums []int
		for _, idx := range seg.SourceIndices {
			if n, ok := indexRemap[idx]; ok && n > 0 {
				nums = append(nums, n)
			}
		}
		if len(nums) == 0 {
			continue
		}
		out = append(out, validSegment{end: seg.TextEnd, nums: nums})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].end < out[j].end })
	return out
}

// insertAt inserts markers at offset, separated from the preceding
// terminator by a space and from any following non-space byte by another.
func insertAt(text string, offset int, markers string) string {
	var b strings.Builder
	b.Grow(len(text) + len(markers) + 2)
	b.WriteString(text[:offset])
	if offset > 0 && !isSpace(text[offset-1]) {
		b.WriteByte(' ')
	}
	b.WriteString(markers)
	if offset < len(text) && !isSpace(text[offset]) {
		b.WriteByte(' ')
	}
	b.WriteString(text[offset:])
	return b.String()
}
