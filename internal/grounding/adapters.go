// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grounding

import (
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// FromGemini flattens Gemini grounding metadata. Source i is chunk i, so
// support chunk indices carry over unchanged; chunks with neither a web nor
// a retrieved-context record become empty sources to keep indices aligned.
func FromGemini(text string, md types.GeminiGroundingMetadata) types.Answer {
	answer := types.Answer{Text: text}
	for _, chunk := range md.GroundingChunks {
		var src types.RawSource
		switch {
		case chunk.Web != nil:
			src = types.RawSource{
				Title:          chunk.Web.Title,
				URL:            chunk.Web.URI,
				DisplayURLHint: chunk.Web.Domain,
			}
		case chunk.RetrievedContext != nil:
			src = types.RawSource{
				Title:   chunk.RetrievedContext.Title,
				URL:     chunk.RetrievedContext.URI,
				Snippet: chunk.RetrievedContext.Text,
			}
		}
		answer.Sources = append(answer.Sources, src)
	}

	for _, sup := range md.GroundingSupports {
		if len(sup.GroundingChunkIndices) == 0 {
			continue
		}
		answer.Segments = append(answer.Segments, types.GroundingSegment{
			TextStart:     sup.Segment.StartIndex,
			TextEnd:       sup.Segment.EndIndex,
			SourceIndices: append([]int(nil), sup.GroundingChunkIndices...),
		})
	}
	return answer
}

// FromAnnotations flattens OpenRouter url_citation annotations: one source
// per distinct URL in first-seen order and one segment per annotation.
// Other annotation types are ignored.
func FromAnnotations(text string, annotations []types.Annotation) types.Answer {
	answer := types.Answer{Text: text}
	index := make(map[string]int)
	for _, ann := range annotations {
		c := ann.URLCitation
		if ann.Type != "url_citation" || c == nil || c.URL == "" {
			continue
		}
		i, ok := index[c.URL]
		if !ok {
			i = len(answer.Sources)
			index[c.URL] = i
			answer.Sources = append(answer.Sources, types.RawSource{
				Title:   c.Title,
				URL:     c.URL,
				Snippet: c.Content,
			})
		} else if answer.Sources[i].Title == "" {
			answer.Sources[i].Title = c.Title
		}
		answer.Segments = append(answer.Segments, types.GroundingSegment{
			TextStart:     c.StartIndex,
			TextEnd:       c.EndIndex,
			SourceIndices: []int{i},
		})
	}
	return answer
}
