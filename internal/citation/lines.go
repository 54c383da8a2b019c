// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"regexp"
	"strings"
)

var (
	// headingRe matches a line that begins with a Markdown heading marker.
	// Models often drop the space ("#Overview"), so none is required.
	headingRe = regexp.MustCompile(`^#`)

	// boldLineRe matches a line that is nothing but bold text, which models
	// use as an inline heading ("**Key points:**").
	boldLineRe = regexp.MustCompile(`^(?:\*\*[^*]+\*\*|__[^_]+__):?$`)

	// enumeratedRe matches a numbered list item prefix such as "3. ".
	enumeratedRe = regexp.MustCompile(`^\d+\.(?:\s|$)`)
)

// IsHeading reports whether line is a heading: a "#" marker line or a
// bold-only line.
func IsHeading(line string) bool {
	t := strings.TrimSpace(line)
	return headingRe.MatchString(t) || boldLineRe.MatchString(t)
}

// IsEnumerated reports whether line starts with a numeric "N. " prefix.
func IsEnumerated(line string) bool {
	return enumeratedRe.MatchString(strings.TrimLeft(line, " \t"))
}

// enumerationPrefixLen returns the byte length of line's "N." prefix
// including leading indentation, or 0 when line is not enumerated.
func enumerationPrefixLen(line string) int {
	trimmed := strings.TrimLeft(line, " \t")
	loc := enumeratedRe.FindStringIndex(trimmed)
	if loc == nil {
		return 0
	}
	// The match may include the whitespace after the period; stop at it.
	n := strings.IndexByte(trimmed, '.') + 1
	return len(line) - len(trimmed) + n
}

// LastTerminator returns the offset just past the last sentence terminator
// ('.', '!' or '?') in line that is followed by whitespace or the end of the
// line, or -1 when there is none.
func LastTerminator(line string) int {
	for i := len(line) - 1; i >= 0; i-- {
		switch line[i] {
		case '.', '!', '?':
			if i+1 == len(line) || isSpace(line[i+1]) {
				return i + 1
			}
		}
	}
	return -1
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// line is one line of text without its newline. start is its byte offset.
type line struct {
	start int
	text  string
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	for {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			lines = append(lines, line{start: start, text: strings.TrimSuffix(text[start:], "\r")})
			return lines
		}
		lines = append(lines, line{start: start, text: strings.TrimSuffix(text[start:start+i], "\r")})
		start += i + 1
	}
}

// boundary is a paragraph end: the offset just past the closing line's last
// terminator. suppressed boundaries still absorb segments but are never
// annotated.
type boundary struct {
	offset     int
	suppressed bool
}

// paragraphBoundaries scans text line by line. A line closes a paragraph if
// it is the last line or the next line is blank, a heading, or an
// enumerated item. Closing lines without a terminator yield no boundary.
func paragraphBoundaries(text string, opts Options) []boundary {
	lines := splitLines(text)
	var out []boundary
	for i, ln := range lines {
		if strings.TrimSpace(ln.text) == "" {
			continue
		}
		if i+1 < len(lines) {
			next := lines[i+1].text
			if strings.TrimSpace(next) != "" && !IsHeading(next) && !IsEnumerated(next) {
				continue
			}
		}

		skip := 0
		enumerated := IsEnumerated(ln.text)
		if enumerated && opts.AnnotateListItems {
			skip = enumerationPrefixLen(ln.text)
		}
		end := LastTerminator(ln.text[skip:])
		if end < 0 {
			continue
		}
		out = append(out, boundary{
			offset:     ln.start + skip + end,
			suppressed: IsHeading(ln.text) || (enumerated && !opts.AnnotateListItems),
		})
	}
	return out
}
