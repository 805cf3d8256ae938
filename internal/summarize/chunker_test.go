package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reassemble drops each later chunk's leading overlap and concatenates.
func reassemble(chunks []Chunk, overlap int) string {
	var b strings.Builder
	for i, chunk := range chunks {
		text := chunk.Text
		if i > 0 {
			text = string([]rune(text)[overlap:])
		}
		b.WriteString(text)
	}
	return b.String()
}

func TestSplitShortTranscriptSingleChunk(t *testing.T) {
	transcript := "A short transcript that fits in one chunk."

	chunks, err := Split(transcript, 1000, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, transcript, chunks[0].Text)
}

func TestSplitExactBoundary(t *testing.T) {
	transcript := strings.Repeat("a", 100)

	chunks, err := Split(transcript, 100, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
}

func TestSplitReconstruction(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 800; i++ {
		b.WriteString("The speaker explains another point about the topic. ")
	}
	transcript := b.String()

	const maxSize, overlap = 1000, 100
	chunks, err := Split(transcript, maxSize, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	assert.Equal(t, transcript, reassemble(chunks, overlap))
}

func TestSplitSizeBound(t *testing.T) {
	transcript := strings.Repeat("word word word. ", 2000)

	const maxSize = 500
	chunks, err := Split(transcript, maxSize, 50)
	require.NoError(t, err)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Text)), maxSize, "chunk %d exceeds size bound", chunk.Index)
		assert.NotEmpty(t, chunk.Text, "chunk %d is empty", chunk.Index)
	}
}

func TestSplitIndexesAreSequential(t *testing.T) {
	transcript := strings.Repeat("Sentence one here. ", 500)

	chunks, err := Split(transcript, 300, 30)
	require.NoError(t, err)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestSplitPrefersSentenceBoundaries(t *testing.T) {
	transcript := strings.Repeat("This is a complete sentence about the video content. ", 100)

	chunks, err := Split(transcript, 400, 0)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Every chunk except the last should end just after terminal
	// punctuation, since the text offers sentence breaks everywhere.
	for _, chunk := range chunks[:len(chunks)-1] {
		runes := []rune(chunk.Text)
		last := runes[len(runes)-1]
		prev := runes[len(runes)-2]
		assert.True(t, last == ' ' && isSentenceEnd(prev),
			"chunk %d ends mid-sentence: %q", chunk.Index, string(runes[len(runes)-10:]))
	}
}

func TestSplitNeverBreaksTokens(t *testing.T) {
	transcript := strings.Repeat("alpha beta gamma delta epsilon ", 200)

	chunks, err := Split(transcript, 250, 20)
	require.NoError(t, err)

	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk.Text, " "),
			"chunk %d does not end at a token boundary: %q", chunk.Index, chunk.Text[len(chunk.Text)-10:])
	}
}

func TestSplitHardCutWithoutWhitespace(t *testing.T) {
	transcript := strings.Repeat("x", 2500)

	const maxSize, overlap = 1000, 100
	chunks, err := Split(transcript, maxSize, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Text)), maxSize)
	}
	assert.Equal(t, transcript, reassemble(chunks, overlap))
}

func TestSplitMultibyteRunes(t *testing.T) {
	transcript := strings.Repeat("これは動画の内容についての文です。", 200)

	const maxSize, overlap = 300, 30
	chunks, err := Split(transcript, maxSize, overlap)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Text)), maxSize)
	}
	assert.Equal(t, transcript, reassemble(chunks, overlap))
}

func TestSplitInvalidParams(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		overlap int
	}{
		{"zero max size", 0, 0},
		{"negative max size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals max size", 100, 100},
		{"overlap exceeds max size", 100, 150},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Split("some transcript", test.maxSize, test.overlap)
			assert.Error(t, err)
		})
	}
}

func TestSplitChunksAreStable(t *testing.T) {
	transcript := strings.Repeat("A sentence about the topic at hand. ", 300)

	const maxSize, overlap = 500, 50
	chunks, err := Split(transcript, maxSize, overlap)
	require.NoError(t, err)

	// Re-splitting any chunk's text with the same limits returns the
	// chunk unchanged, since each already fits the budget.
	for _, chunk := range chunks {
		again, err := Split(chunk.Text, maxSize, overlap)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, chunk.Text, again[0].Text)
	}
}

func TestSplitEmptyTranscript(t *testing.T) {
	chunks, err := Split("", 100, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Text)
}
