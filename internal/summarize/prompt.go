package summarize

import "fmt"

// buildChunkPrompt asks for a condensed summary of one transcript span.
func buildChunkPrompt(text string) string {
	return fmt.Sprintf(`Provide a concise summary of the following video transcript section.

**Constraints:**
- Summarize only what the transcript actually says; do not speculate or invent details
- Keep the main points, arguments and conclusions
- Write in plain prose, no headings or bullet lists

Transcript section:
%s

Summary:`, text)
}

// buildCombinePrompt merges partial summaries into one final summary.
func buildCombinePrompt(text string) string {
	return fmt.Sprintf(`The following are partial summaries of consecutive sections of one video.
Combine them into a single coherent summary of the whole video.

**Constraints:**
- Preserve the order of topics as they appear
- Remove repetition between sections
- Do not add information that is not in the partial summaries

Partial summaries:
%s

Combined summary:`, text)
}
