package summarizer

import "strings"

const (
	// Rough character-per-token ratio for English prose.
	charsPerToken = 4
	// Transcripts up to this estimate go to the backend in one call.
	singleCallTokenLimit = 150000
	// Target size for each chunk when partitioning is needed.
	chunkTokenTarget = 140000
	// Fraction of the chunk window searched backward for a sentence
	// boundary.
	boundaryWindowFrac = 0.2
)

// Chunk is a size-bounded slice of transcript text, 1-based indexed.
type Chunk struct {
	Index int
	Total int
	Text  string
}

// EstimateTokens approximates the token count of text as
// ceil(len/4).
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// ChunkTranscript partitions a transcript into chunks under the token
// budget. Each boundary is pulled backward, within the trailing 20% of
// the chunk window, to the nearest sentence terminator followed by
// whitespace; the raw size boundary is used when none exists.
// Concatenating the chunk texts (modulo the whitespace trimmed at each
// boundary) reproduces the source exactly.
func ChunkTranscript(text string) []Chunk {
	if EstimateTokens(text) <= singleCallTokenLimit {
		return []Chunk{{Index: 1, Total: 1, Text: text}}
	}

	target := chunkTokenTarget * charsPerToken
	var parts []string
	rest := text
	for len(rest) > target {
		cut := target
		if i := sentenceBoundary(rest[:target]); i > 0 {
			cut = i
		}
		parts = append(parts, rest[:cut])
		rest = strings.TrimLeft(rest[cut:], " \t\n")
	}
	if rest != "" {
		parts = append(parts, rest)
	}

	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{Index: i + 1, Total: len(parts), Text: p}
	}
	return chunks
}

// sentenceBoundary returns the cut position just after the last
// sentence terminator followed by whitespace within the trailing
// search window of s, or 0 when the window holds no boundary.
func sentenceBoundary(s string) int {
	window := int(float64(len(s)) * boundaryWindowFrac)
	if window <= 0 {
		return 0
	}
	start := len(s) - window

	for i := len(s) - 2; i >= start; i-- {
		if isTerminator(s[i]) && isSpace(s[i+1]) {
			return i + 1
		}
	}
	return 0
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}
