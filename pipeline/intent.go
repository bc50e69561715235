package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dacchu2004/lawGuide/llm"
)

// Intent labels a raw query. Derived once per query, never persisted.
type Intent string

const (
	IntentGeneral  Intent = "GENERAL"
	IntentLegal    Intent = "LEGAL"
	IntentOffTopic Intent = "OFF_TOPIC"
	IntentIllegal  Intent = "ILLEGAL"
)

const intentSystemPrompt = `You are an intent classifier for a legal AI assistant.

Classify the user query into exactly ONE of the following:

GENERAL → greetings, who are you, what can you do, thanks, small talk
LEGAL → laws, crimes, punishments, FIR, disputes, money, property, family conflicts, violence, police, court
OFF_TOPIC → coding, math, cooking, movies, sports, jokes, random facts
ILLEGAL → escaping crime, harming someone, fraud tactics

Rules:
- Any real-world problem involving money/property/violence/disputes = LEGAL
- Instructions to escape law = ILLEGAL
- Respond ONLY with one word from: GENERAL, LEGAL, OFF_TOPIC, ILLEGAL`

// IntentClassifier labels queries with the LLM collaborator. It fails
// open toward LEGAL: most traffic is legal in nature, so an unreachable
// or confused collaborator routes into the main pipeline rather than a
// refusal.
type IntentClassifier struct {
	llm llm.Client
}

func NewIntentClassifier(client llm.Client) *IntentClassifier {
	return &IntentClassifier{llm: client}
}

// Classify returns one of the four labels, LEGAL on any failure.
func (c *IntentClassifier) Classify(ctx context.Context, query string) Intent {
	out := llm.Complete(ctx, c.llm, []llm.Message{
		{Role: "system", Content: intentSystemPrompt},
		{Role: "user", Content: query},
	}, llm.GenerationParams{
		Temperature: llm.FloatPtr(0.0),
		MaxTokens:   llm.IntPtr(10),
	})
	if !out.OK() {
		slog.Warn("Intent classification unavailable, defaulting to LEGAL", "error", out.Err)
		return IntentLegal
	}

	label := Intent(strings.ToUpper(strings.TrimSpace(out.Text)))
	switch label {
	case IntentGeneral, IntentLegal, IntentOffTopic, IntentIllegal:
		return label
	}
	slog.Warn("Intent classifier returned an unrecognized label, defaulting to LEGAL", "label", string(label))
	return IntentLegal
}
