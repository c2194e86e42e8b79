package ollama

import (
	"fmt"
	"strings"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

const (
	maxPageSnippet  = 1500
	maxPromptLength = 12000
)

func buildSummaryPrompt(texts []string, classes []domain.Category) string {
	var pages strings.Builder
	for i, text := range texts {
		class := domain.CategoryUnknown
		if i < len(classes) {
			class = classes[i]
		}
		snippet := strings.TrimSpace(text)
		if len(snippet) > maxPageSnippet {
			snippet = snippet[:maxPageSnippet]
		}
		if snippet == "" {
			continue
		}
		entry := fmt.Sprintf("[page %d] class=%s\n%s\n\n", i+1, class, snippet)
		if pages.Len()+len(entry) > maxPromptLength {
			break
		}
		pages.WriteString(entry)
	}

	return fmt.Sprintf(`Summarize the project acceptance report below using only the page texts.
Write Markdown with these sections: "## Title", "## Background" (contract number, location, contractor, owner), "## Key points" (attenuation in dB, grounding in Ohm, acceptance test date), "## Conclusion".
If a value is missing, say it is not stated. Do not invent values. No HTML.

Pages:
%s`, pages.String())
}
