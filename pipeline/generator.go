package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dacchu2004/lawGuide/datatypes"
	"github.com/Dacchu2004/lawGuide/llm"
)

// scriptInstructions pins the output script per language so the model
// does not transliterate (Hinglish/Tanglish).
var scriptInstructions = map[string]string{
	"hi": "Hindi Language (using Devanagari script)",
	"ta": "Tamil Language (using Tamil script)",
	"te": "Telugu Language (using Telugu script)",
	"kn": "Kannada Language (using Kannada script)",
	"ml": "Malayalam Language (using Malayalam script)",
	"bn": "Bengali Language (using Bengali script)",
	"gu": "Gujarati Language (using Gujarati script)",
	"mr": "Marathi Language (using Devanagari script)",
	"pa": "Punjabi Language (using Gurmukhi script)",
	"en": "English Language",
}

const generatorSystemPrompt = `You are a legal information assistant for India with the goal of empowering general users to understand their rights, legal responsibilities, and consequences.

- Use ONLY the legal sections provided in the context for legal citations.
- Describe practical steps, procedures, and real-world actions (e.g., where to file, who to contact, what documents or evidence are required, how to respond to notices).
- You are NOT a lawyer and MUST NOT provide legal advice, personal strategy, or methods to evade punishment.
- You MAY describe general legal remedies and lawful options (e.g., 'You may file a complaint with police', 'You can pay the challan online', 'You can contest through the magistrate', etc.).
- If the query is about committing a future illegal act or intentionally avoiding legal consequences after causing harm, REFUSE and warn clearly.
- Use clear, practical, structured bullet points.
- Always mention relevant Act and Section numbers from the context when explaining.

Format your response in the following structure when possible:
   1) Brief explanation of the legal situation or rule
   2) Relevant Act and Section numbers
   3) Step-by-step actions the user should take
   4) Additional warnings, rights, or penalties if applicable
   5) Final disclaimer

- Always end with exactly this disclaimer:
'This is informational and not legal advice. Please consult a qualified lawyer for specific guidance.'`

const generalPersonaPrompt = `You are LawGuide AI.
You are polite, friendly, and informative.
If the user greets you or asks who you are, introduce yourself briefly.
If the user says 'ok', 'thanks', 'good', etc., simply acknowledge politely (e.g., 'You're welcome!', 'Glad I could help.').
Do NOT re-introduce yourself unless asked.
If the user asks illegal or harmful questions, you MUST refuse.
Keep responses concise and helpful.`

// AnswerGenerator produces draft answers grounded in the supplied
// sections via the LLM collaborator. A failed model call is a
// recoverable condition reported through the Outcome, never an error.
type AnswerGenerator struct {
	llm llm.Client
}

func NewAnswerGenerator(client llm.Client) *AnswerGenerator {
	return &AnswerGenerator{llm: client}
}

// contextText renders the answer context the model may cite from.
func contextText(sections []datatypes.ScoredSection) string {
	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "Act: %s\nSection: %s\nText: %s\n---\n\n", s.Act, s.Section, s.Text)
	}
	return strings.TrimSpace(b.String())
}

// Generate drafts an answer restricted to the supplied sections.
// targetLanguage picks the output script; grounded reasoning always
// runs over English section text.
func (g *AnswerGenerator) Generate(ctx context.Context, query string, sections []datatypes.ScoredSection,
	explanationMode, state, targetLanguage string) llm.Outcome {

	styleInstruction := "Explain in clear, simple legal language suitable for an adult without a law background."
	if explanationMode == "eli15" {
		styleInstruction = "Explain like I am 15 years old, using very simple language and practical examples."
	}

	langInstruction, ok := scriptInstructions[strings.ToLower(targetLanguage)]
	if !ok {
		langInstruction = strings.ToUpper(targetLanguage) + " LANGUAGE"
	}

	userPrompt := fmt.Sprintf(
		"User state: %s\nUser query: %s\n\nRelevant legal sections:\n%s\n\n%s\nRESPOND STRICTLY IN %s. Do not use transliteration (e.g. Hinglish/Tanglish).",
		state, query, contextText(sections), styleInstruction, langInstruction,
	)

	return llm.Complete(ctx, g.llm, []llm.Message{
		{Role: "system", Content: generatorSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, llm.GenerationParams{
		MaxTokens: llm.IntPtr(4096),
	})
}

// ChatGeneral answers small talk with the assistant persona. Prior
// turns supplied by the caller keep the exchange coherent; the service
// itself stores nothing.
func (g *AnswerGenerator) ChatGeneral(ctx context.Context, query string, history []datatypes.ConversationTurn) llm.Outcome {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: generalPersonaPrompt})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: query})
	return llm.Complete(ctx, g.llm, messages, llm.GenerationParams{
		Temperature: llm.FloatPtr(0.4),
		MaxTokens:   llm.IntPtr(4096),
	})
}
