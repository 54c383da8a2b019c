// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// numericCiteRe matches one numeric citation like [1] or [12].
	numericCiteRe = regexp.MustCompile(`\[(\d+)\]`)

	// markerRunRe matches a marker run in the shape Place inserts it: a
	// sentence terminator, one space, the run, then whitespace or the end of
	// the text. Brackets elsewhere ("arr[0]", "claim[2] holds") are text.
	markerRunRe = regexp.MustCompile(`([.!?]) ((?:\[\d+\])+)(\s|$)`)
)

// renderMarkers formats sorted citation numbers as "[1][3]".
func renderMarkers(nums []int) string {
	var b strings.Builder
	for _, n := range nums {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(n))
		b.WriteByte(']')
	}
	return b.String()
}

// StripMarkers removes every inserted marker run from text, undoing
// PlaceCitations. Bracketed numbers that do not directly follow a sentence
// terminator and a single space are left alone.
func StripMarkers(text string) string {
	return markerRunRe.ReplaceAllString(text, "$1$3")
}

// ParseMarkers returns the citation numbers of every marker in text, in
// reading order, repeats included.
func ParseMarkers(text string) []int {
	var nums []int
	for _, run := range markerRunRe.FindAllStringSubmatch(text, -1) {
		for _, m := range numericCiteRe.FindAllStringSubmatch(run[2], -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			nums = append(nums, n)
		}
	}
	return nums
}
