// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grounding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Document formats.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for a format name other than auto, json or
// yaml.
var ErrUnknownFormat = errors.New("unknown document format")

// FormatForPath picks a format from a file extension, defaulting to auto.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// DecodeDocument reads an AnswerDocument. FormatAuto treats input whose
// first non-space byte is '{' as JSON and anything else as YAML.
func DecodeDocument(r io.Reader, format string) (types.AnswerDocument, error) {
	var doc types.AnswerDocument
	data, err := io.ReadAll(r)
	if err != nil {
		return doc, fmt.Errorf("reading document: %w", err)
	}

	if format == "" || format == FormatAuto {
		format = FormatYAML
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
			format = FormatJSON
		}
	}

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("decoding JSON document: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("decoding YAML document: %w", err)
		}
	default:
		return doc, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return doc, nil
}

// ToAnswer flattens doc using the first grounding shape present: Gemini
// metadata, then annotations, then flat sources and segments.
func ToAnswer(doc types.AnswerDocument) types.Answer {
	switch {
	case doc.GroundingMetadata != nil:
		return FromGemini(doc.Text, *doc.GroundingMetadata)
	case len(doc.Annotations) > 0:
		return FromAnnotations(doc.Text, doc.Annotations)
	default:
		return types.Answer{Text: doc.Text, Sources: doc.Sources, Segments: doc.Segments}
	}
}

// EncodeAnnotated writes a in the given format. FormatAuto and "text"
// write the annotated text followed by a numbered source list.
func EncodeAnnotated(w io.Writer, a types.AnnotatedAnswer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case "", FormatAuto, "text":
		return writeText(w, a)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeText(w io.Writer, a types.AnnotatedAnswer) error {
	var b strings.Builder
	b.WriteString(a.Text)
	if !strings.HasSuffix(a.Text, "\n") {
		b.WriteByte('\n')
	}
	if len(a.Sources) > 0 {
		b.WriteString("\nSources:\n")
	}
	for i, s := range a.Sources {
		label := fmt.Sprintf("[%d]", i+1)
		if i >= a.CitedCount {
			label = "[-]"
		}
		fmt.Fprintf(&b, "%s %s", label, s.DisplayName)
		if s.Title != "" && s.Title != s.Domain {
			fmt.Fprintf(&b, ": %s", s.Title)
		}
		fmt.Fprintf(&b, " <%s>\n", s.CanonicalURL)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
