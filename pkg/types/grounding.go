// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GeminiGroundingMetadata mirrors the groundingMetadata object returned by
// Gemini models with search or URL-context grounding enabled.
type GeminiGroundingMetadata struct {
	GroundingChunks   []GeminiChunk   `json:"groundingChunks" yaml:"groundingChunks"`
	GroundingSupports []GeminiSupport `json:"groundingSupports" yaml:"groundingSupports"`
	WebSearchQueries  []string        `json:"webSearchQueries,omitempty" yaml:"webSearchQueries,omitempty"`
}

// GeminiChunk is one supporting chunk. Exactly one of Web or
// RetrievedContext is normally set.
type GeminiChunk struct {
	Web              *GeminiWeb              `json:"web,omitempty" yaml:"web,omitempty"`
	RetrievedContext *GeminiRetrievedContext `json:"retrievedContext,omitempty" yaml:"retrievedContext,omitempty"`
}

// GeminiWeb is a web search chunk. URI is usually a grounding redirect link.
type GeminiWeb struct {
	URI    string `json:"uri" yaml:"uri"`
	Title  string `json:"title" yaml:"title"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// GeminiRetrievedContext is a URL-context or retrieval chunk.
type GeminiRetrievedContext struct {
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
}

// GeminiSupport links a text segment to chunk indices.
type GeminiSupport struct {
	Segment               GeminiSegment `json:"segment" yaml:"segment"`
	GroundingChunkIndices []int         `json:"groundingChunkIndices" yaml:"groundingChunkIndices"`
}

// GeminiSegment offsets are UTF-8 byte offsets. StartIndex is omitted by
// the API when zero.
type GeminiSegment struct {
	StartIndex int    `json:"startIndex,omitempty" yaml:"startIndex,omitempty"`
	EndIndex   int    `json:"endIndex" yaml:"endIndex"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Annotation is an OpenRouter message annotation.
type Annotation struct {
	Type        string       `json:"type" yaml:"type"`
	URLCitation *URLCitation `json:"url_citation,omitempty" yaml:"url_citation,omitempty"`
}

// URLCitation is the payload of a "url_citation" annotation.
type URLCitation struct {
	URL        string `json:"url" yaml:"url"`
	Title      string `json:"title" yaml:"title"`
	Content    string `json:"content,omitempty" yaml:"content,omitempty"`
	StartIndex int    `json:"start_index" yaml:"start_index"`
	EndIndex   int    `json:"end_index" yaml:"end_index"`
}

// AnswerDocument is the input accepted by the annotate command and the
// HTTP API. Text is required; the grounding may be given in any one of the
// three shapes.
type AnswerDocument struct {
	Text string `json:"text" yaml:"text"`

	GroundingMetadata *GeminiGroundingMetadata `json:"grounding_metadata,omitempty" yaml:"grounding_metadata,omitempty"`
	Annotations       []Annotation             `json:"annotations,omitempty" yaml:"annotations,omitempty"`

	Sources  []RawSource        `json:"sources,omitempty" yaml:"sources,omitempty"`
	Segments []GroundingSegment `json:"segments,omitempty" yaml:"segments,omitempty"`
}
