package summarize

import (
	"unicode"

	"youtube-summarizer/internal/config"
)

// Chunk is a contiguous span of a transcript sized to fit the model's
// context budget, annotated with its sequence index.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Split divides a transcript into chunks of at most maxSize characters,
// preferring to break at sentence or whitespace boundaries near the
// limit and never inside a token. When overlap > 0 each chunk after the
// first starts overlap characters before the previous chunk's end.
//
// Dropping the leading overlap characters of every chunk after the
// first and concatenating reconstructs the transcript exactly.
func Split(transcript string, maxSize, overlap int) ([]Chunk, error) {
	if maxSize <= 0 || overlap < 0 || overlap >= maxSize {
		return nil, &config.ConfigError{Field: "chunk_params", Message: "max_chunk_size must be greater than overlap, overlap must not be negative"}
	}

	runes := []rune(transcript)
	if len(runes) <= maxSize {
		return []Chunk{{Index: 0, Text: transcript}}, nil
	}

	var chunks []Chunk
	start := 0
	for start < len(runes) {
		end := start + maxSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakPoint(runes, start, end, overlap)
		}

		chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}

// breakPoint finds an end position in (start+overlap, limit] that does
// not cut a token, scanning backwards within a window of the limit.
// Sentence boundaries win over plain whitespace; a run with neither is
// cut hard at the limit.
func breakPoint(runes []rune, start, limit, overlap int) int {
	window := limit - (limit-start)/4
	floor := start + overlap + 1
	if window < floor {
		window = floor
	}

	// Prefer a sentence boundary: terminal punctuation followed by space.
	for i := limit - 1; i >= window; i-- {
		if isSentenceEnd(runes[i-1]) && unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	// Fall back to the nearest whitespace so we never split mid-token.
	for i := limit - 1; i >= floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n', '。', '！', '？':
		return true
	}
	return false
}
