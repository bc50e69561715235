package pipeline

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Dacchu2004/lawGuide/llm"
	"github.com/Dacchu2004/lawGuide/translate"
)

// minSummarizableRunes short-circuits bare section labels and headnote
// fragments that carry no explainable content.
const minSummarizableRunes = 80

const summarizerSystemPrompt = `You are a legal simplification assistant for India.
You will receive the raw text of one legal section.
Rewrite it as a short, plain-language explanation that a person without a law background can understand.
- Keep it to 3-5 sentences.
- Preserve the legal meaning; do not add obligations or penalties that are not in the text.
- Do not give advice or recommendations.
- Do not mention that you are summarizing.`

// SectionSummarizer turns raw statute text into a plain-language
// explanation, localized into the requested language.
type SectionSummarizer struct {
	llm        llm.Client
	translator translate.Translator
}

func NewSectionSummarizer(client llm.Client, translator translate.Translator) *SectionSummarizer {
	return &SectionSummarizer{llm: client, translator: translator}
}

// Summarize explains one section's text. Inputs too short to explain
// and collaborator failures both yield fixed fallback texts, localized
// like a normal summary.
func (s *SectionSummarizer) Summarize(ctx context.Context, text, targetLanguage string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minSummarizableRunes {
		return s.localize(ctx, msgSummaryTooShort, targetLanguage)
	}

	out := llm.Complete(ctx, s.llm, []llm.Message{
		{Role: "system", Content: summarizerSystemPrompt},
		{Role: "user", Content: trimmed},
	}, llm.GenerationParams{
		Temperature: llm.FloatPtr(0.2),
		MaxTokens:   llm.IntPtr(512),
	})
	if !out.OK() {
		return s.localize(ctx, msgSummaryUnavailable, targetLanguage)
	}
	return s.localize(ctx, out.Text, targetLanguage)
}

func (s *SectionSummarizer) localize(ctx context.Context, text, targetLanguage string) string {
	localized := s.translator.FromEnglish(ctx, text, targetLanguage)
	if localized == "" {
		return text
	}
	return localized
}
