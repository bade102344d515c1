package summarizer

import (
	"context"
	"fmt"
	"strings"
)

const summaryPrompt = `You are an expert meeting analyst. Write detailed meeting notes from the transcript below.

Requirements:
- Start with a one-sentence title describing the meeting topic
- List ALL discussion points in the order they came up
- Capture every decision and action item, naming owners when stated
- Keep technical terms exactly as spoken
- Use markdown: headings, bullet points, bold for key terms
- End with an "Open questions" section if anything was left unresolved

Transcript:
---
%s
---`

const chunkPrompt = `You are an expert meeting analyst. The transcript below is part %d of %d of one meeting; it may start or end mid-discussion, so summarize what is present without inventing context. Write detailed notes covering every discussion point, decision and action item in this part, in markdown.

Transcript part %d of %d:
---
%s
---`

const combinePrompt = `Below are partial notes for consecutive parts of one meeting. Merge them into a single coherent set of meeting notes. Deduplicate decisions and action items that appear in more than one part, keep the discussion order, and use markdown.

Partial notes:
---
%s
---`

// chunkSeparator joins partial summaries when the combine step is
// unavailable.
const chunkSeparator = "\n\n---\n\n"

// Summarize produces meeting notes for the transcript. Transcripts
// under the size threshold go to the backend in one call; larger ones
// are chunked, summarized part by part and reduced into one summary.
// Once the per-chunk summaries exist the flow never fails outright:
// a failed reduce degrades to concatenating the partials.
func (s *implSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	chunks := ChunkTranscript(transcript)

	if len(chunks) == 1 {
		notes, err := s.backend.Generate(ctx, fmt.Sprintf(summaryPrompt, transcript))
		if err != nil {
			return "", fmt.Errorf("summarize transcript: %w", err)
		}
		return strings.TrimSpace(notes), nil
	}

	s.logger.Info(ctx, "Transcript is ~%d tokens, summarizing in %d chunks",
		EstimateTokens(transcript), len(chunks))

	var partials []string
	var lastErr error
	for _, chunk := range chunks {
		prompt := fmt.Sprintf(chunkPrompt, chunk.Index, chunk.Total, chunk.Index, chunk.Total, chunk.Text)
		partial, err := s.backend.Generate(ctx, prompt)
		if err != nil {
			s.logger.Warn(ctx, "Chunk %d/%d summary failed: %v", chunk.Index, chunk.Total, err)
			lastErr = err
			continue
		}
		partials = append(partials, strings.TrimSpace(partial))
	}

	if len(partials) == 0 {
		return "", fmt.Errorf("summarize chunks: %w", lastErr)
	}

	combined, err := s.backend.Generate(ctx, fmt.Sprintf(combinePrompt, strings.Join(partials, chunkSeparator)))
	if err != nil {
		// Guaranteed-available fallback: the partials themselves.
		s.logger.Warn(ctx, "Combining partial summaries failed, concatenating: %v", err)
		return strings.Join(partials, chunkSeparator), nil
	}

	return strings.TrimSpace(combined), nil
}
