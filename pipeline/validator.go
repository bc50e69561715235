package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dacchu2004/lawGuide/datatypes"
	"github.com/Dacchu2004/lawGuide/llm"
)

// ValidationResult is the structured verdict over a draft answer.
// Produced exactly once per draft.
type ValidationResult struct {
	IsValid    bool    `json:"is_valid"`
	Confidence float64 `json:"confidence"`
	HighRisk   bool    `json:"high_risk"`
	Reason     string  `json:"reason,omitempty"`
}

const validatorSystemPrompt = `You are a safety and grounding validator for a legal information assistant in India.

You will receive:
1) The user's query.
2) The AI's answer.
3) The retrieved legal sections.

Your responsibilities:
A) Check if the AI's answer is Reasonably supported by the provided sections and general legal context.
   - You should ALLOW general procedural advice (e.g. 'visit police station', 'file written complaint') even if not explicitly in the retrieved text.
   - Only mark is_valid = false if the answer cites specific WRONG sections/penalties or makes up laws not in the text.
B) Check if the AI's answer is dangerously misleading.
C) Determine if the query is HIGH-RISK, which ONLY applies when:
   - The user asks how to commit a serious crime (e.g., murder, assault) or intentionally avoid legal punishment, OR
   - The user expresses intent to self-harm or suicide.
   Do NOT mark as high-risk when user is asking about consequences of a past action (e.g., crossing a red signal, not wearing helmet) or seeking general legal awareness.
   If the user is a VICTIM asking what legal action can be taken, this is NOT high-risk.

If you are unsure about grounding, set is_valid = false but keep high_risk = false unless the query itself indicates high-risk.

You MUST respond ONLY with a JSON object:
{ "is_valid": true or false, "confidence": number between 0 and 1, "high_risk": true or false }

- Do NOT add any explanation, text, or notes outside the JSON.`

// AnswerValidator asks the LLM collaborator to judge grounding
// fidelity and query risk.
//
// Validation failures are conservative: an unreachable collaborator,
// an empty draft, or an unparseable verdict all yield
// {is_valid:false, confidence:0, high_risk:false}. They never escalate
// to high_risk on their own — risk classification is about query
// intent, not answer-quality uncertainty, so only an affirmative
// verdict can assert it.
type AnswerValidator struct {
	llm llm.Client
}

func NewAnswerValidator(client llm.Client) *AnswerValidator {
	return &AnswerValidator{llm: client}
}

var conservativeVerdict = ValidationResult{IsValid: false, Confidence: 0, HighRisk: false}

// Validate returns the verdict for one draft answer.
func (v *AnswerValidator) Validate(ctx context.Context, answer string, sections []datatypes.ScoredSection, query string) ValidationResult {
	if strings.TrimSpace(answer) == "" {
		slog.Warn("Validation skipped, empty draft answer")
		return conservativeVerdict
	}

	userPrompt := fmt.Sprintf(
		"User query:\n%s\n\nAI answer:\n%s\n\nRetrieved legal sections:\n%s\n\nNow perform your evaluation and return ONLY the JSON object.",
		query, answer, contextText(sections),
	)

	out := llm.Complete(ctx, v.llm, []llm.Message{
		{Role: "system", Content: validatorSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, llm.GenerationParams{
		Temperature: llm.FloatPtr(0.0),
		MaxTokens:   llm.IntPtr(250),
	})
	if !out.OK() {
		slog.Warn("Validator collaborator unavailable, marking draft unconfirmed", "error", out.Err)
		return conservativeVerdict
	}

	verdict, err := parseVerdict(out.Text)
	if err != nil {
		slog.Warn("Failed to parse validator verdict, marking draft unconfirmed", "error", err)
		return conservativeVerdict
	}
	return verdict
}

// parseVerdict extracts the JSON verdict, tolerating code fences the
// model sometimes wraps around it.
func parseVerdict(raw string) (ValidationResult, error) {
	trimmed := strings.TrimSpace(raw)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			trimmed = trimmed[start : end+1]
		}
	}
	var verdict ValidationResult
	if err := json.Unmarshal([]byte(trimmed), &verdict); err != nil {
		return ValidationResult{}, fmt.Errorf("verdict is not valid JSON: %w", err)
	}
	return verdict, nil
}
