// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RawSource is one web page that contributed to a generated answer, as
// reported by the grounding provider.
type RawSource struct {
	// Title is the provider-supplied title. Some providers put the bare
	// domain here instead of the page title.
	Title string `json:"title" yaml:"title"`

	// URL is the raw source URL, possibly a redirector link.
	URL string `json:"url" yaml:"url"`

	// Snippet is an optional excerpt of the page.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// DisplayURLHint is an optional provider-declared display domain or URL.
	DisplayURLHint string `json:"display_url_hint,omitempty" yaml:"display_url_hint,omitempty"`
}

// GroundingSegment ties a half-open byte range [TextStart, TextEnd) of the
// answer text to the indices of the RawSources supporting it. Offsets are
// only meaningful against the exact text they were produced with.
type GroundingSegment struct {
	TextStart     int   `json:"text_start" yaml:"text_start"`
	TextEnd       int   `json:"text_end" yaml:"text_end"`
	SourceIndices []int `json:"source_indices" yaml:"source_indices"`
}

// PageMetadata holds the card-preview fields of a page.
type PageMetadata struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
}

// IsEmpty reports whether no field is set.
func (m PageMetadata) IsEmpty() bool {
	return m.Title == "" && m.Description == "" && m.Image == ""
}

// ResolvedSource is one deduplicated destination. It merges every RawSource
// that resolved to the same canonical URL.
type ResolvedSource struct {
	// CanonicalURL is the destination after undoing indirection.
	CanonicalURL string `json:"canonical_url" yaml:"canonical_url"`

	// Domain is lowercase without a leading "www.". Empty when no
	// trustworthy domain could be derived.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// DisplayName is never empty.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Title and Snippet come from the first RawSource in the group that
	// carried them.
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// OriginalIndices lists the RawSource indices merged into this entry,
	// in input order.
	OriginalIndices []int `json:"original_indices" yaml:"original_indices"`

	// Page is filled only when page metadata enrichment is enabled.
	Page *PageMetadata `json:"page,omitempty" yaml:"page,omitempty"`
}

// CitationGroup is the set of citation numbers anchored at one paragraph
// boundary. CitationNumbers is sorted ascending without duplicates.
type CitationGroup struct {
	ParagraphEndOffset int   `json:"paragraph_end_offset" yaml:"paragraph_end_offset"`
	CitationNumbers    []int `json:"citation_numbers" yaml:"citation_numbers"`
}

// Answer is the (text, sources, segments) triple produced by a grounded
// model call. The three fields must come from the same response.
type Answer struct {
	Text     string             `json:"text" yaml:"text"`
	Sources  []RawSource        `json:"sources" yaml:"sources"`
	Segments []GroundingSegment `json:"segments" yaml:"segments"`
}

// AnnotatedAnswer is the presentable result. Sources[i] is the source
// printed as citation number i+1; sources that were never cited follow the
// cited ones.
type AnnotatedAnswer struct {
	Text       string           `json:"text" yaml:"text"`
	Sources    []ResolvedSource `json:"sources" yaml:"sources"`
	Groups     []CitationGroup  `json:"groups,omitempty" yaml:"groups,omitempty"`
	CitedCount int              `json:"cited_count" yaml:"cited_count"`
}
