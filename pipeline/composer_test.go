package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dacchu2004/lawGuide/datatypes"
	"github.com/Dacchu2004/lawGuide/llm"
	"github.com/Dacchu2004/lawGuide/retrieval"
)

// =============================================================================
// Test Setup
// =============================================================================

// stageLLM scripts one response per pipeline role, dispatching on the
// system prompt of each call.
type stageLLM struct {
	intent  string
	draft   string
	verdict string
	general string
	err     error
}

func (s *stageLLM) Chat(ctx context.Context, messages []llm.Message, params llm.GenerationParams) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	system := messages[0].Content
	switch {
	case strings.Contains(system, "intent classifier"):
		return s.intent, nil
	case strings.Contains(system, "grounding validator"):
		return s.verdict, nil
	case strings.Contains(system, "You are LawGuide AI"):
		return s.general, nil
	default:
		return s.draft, nil
	}
}

// mockTranslator localizes by prefixing the language code, so tests can
// tell localized output from English passthrough.
type mockTranslator struct{}

func (mockTranslator) ToEnglish(ctx context.Context, text, sourceLang string) string {
	return strings.TrimSpace(text)
}

func (mockTranslator) FromEnglish(ctx context.Context, text, targetLang string) string {
	if targetLang == "en" {
		return text
	}
	return "[" + targetLang + "] " + text
}

type mockRetriever struct {
	sections []datatypes.RetrievedSection
	err      error
}

func (m *mockRetriever) Search(ctx context.Context, query, state string, topK int) ([]datatypes.RetrievedSection, error) {
	return m.sections, m.err
}

// mockReranker keeps retrieval order.
type mockReranker struct{}

func (mockReranker) Rerank(ctx context.Context, query string, sections []datatypes.RetrievedSection, topK int) []datatypes.ScoredSection {
	return retrieval.Truncate(retrieval.PassthroughScores(sections), topK)
}

func nSections(n int) []datatypes.RetrievedSection {
	out := make([]datatypes.RetrievedSection, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, datatypes.RetrievedSection{
			Act:          "Indian Penal Code",
			Section:      string(rune('A' + i)),
			Text:         "Section text",
			Jurisdiction: "central",
			State:        "India",
		})
	}
	return out
}

func newTestComposer(client llm.Client, retriever retrieval.SectionRetriever) *Composer {
	return NewComposer(client, mockTranslator{}, retriever, mockReranker{}, nil, nil, DefaultSettings())
}

func legalRequest(query string) *datatypes.QueryRequest {
	req := &datatypes.QueryRequest{QueryText: query}
	req.EnsureDefaults()
	return req
}

// =============================================================================
// Terminal branches before retrieval
// =============================================================================

func TestAnswer_EmptyQueryRefuses(t *testing.T) {
	c := newTestComposer(&stageLLM{}, &mockRetriever{})
	resp := c.Answer(context.Background(), legalRequest("   "))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeTranslationFailure, resp.ErrorType)
	assert.Zero(t, resp.Confidence)
	assert.Empty(t, resp.RetrievedSections)
}

func TestAnswer_GeneralIntentAnswersAtFullConfidence(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "GENERAL", general: "Hello! I'm LawGuide AI."}, &mockRetriever{})
	resp := c.Answer(context.Background(), legalRequest("hi there"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Equal(t, "Hello! I'm LawGuide AI.", resp.AnswerEnglish)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Empty(t, resp.ErrorType)
	assert.Empty(t, resp.RetrievedSections)
}

// TestAnswer_GeneralIntentFallsBackWhenLLMDown verifies small talk still
// answers with the canned greeting when the model is unreachable for the
// persona call but the classifier result is known.
func TestAnswer_GeneralIntentFallsBackWhenLLMDown(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "GENERAL", general: ""}, &mockRetriever{})
	resp := c.Answer(context.Background(), legalRequest("thanks"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Contains(t, resp.AnswerEnglish, "LawGuide AI")
	assert.Equal(t, 1.0, resp.Confidence)
}

func TestAnswer_OffTopicRefuses(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "OFF_TOPIC"}, &mockRetriever{})
	resp := c.Answer(context.Background(), legalRequest("write me a poem about the sea"))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeOffTopic, resp.ErrorType)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.False(t, resp.HighRisk)
}

func TestAnswer_IllegalIntentRefusesHighRisk(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "ILLEGAL"}, &mockRetriever{})
	resp := c.Answer(context.Background(), legalRequest("how do I hide evidence from the police"))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeIllegalRefusal, resp.ErrorType)
	assert.True(t, resp.HighRisk)
	assert.Empty(t, resp.RetrievedSections)
}

// =============================================================================
// Retrieval and generation branches
// =============================================================================

func TestAnswer_NoSectionsRefuses(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "LEGAL"}, &mockRetriever{sections: nil})
	resp := c.Answer(context.Background(), legalRequest("what is the punishment for theft"))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeRetrievalFailure, resp.ErrorType)
	assert.Zero(t, resp.Confidence)
}

func TestAnswer_RetrieverErrorRefusesLikeEmpty(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "LEGAL"}, &mockRetriever{err: errors.New("weaviate down")})
	resp := c.Answer(context.Background(), legalRequest("what is the punishment for theft"))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeRetrievalFailure, resp.ErrorType)
}

// TestAnswer_GeneratorDownStillReturnsSections verifies the sections-only
// degraded answer: fixed 0.4 confidence, llm_unavailable marker, and the
// full reranked shortlist so the caller can read the law directly.
func TestAnswer_GeneratorDownStillReturnsSections(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "LEGAL", draft: ""}, &mockRetriever{sections: nSections(3)})
	resp := c.Answer(context.Background(), legalRequest("what is the punishment for theft"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Equal(t, datatypes.ErrTypeLLMUnavailable, resp.ErrorType)
	assert.Equal(t, 0.4, resp.Confidence)
	assert.Len(t, resp.RetrievedSections, 3)
	assert.Contains(t, resp.AnswerEnglish, "unable to generate")
}

// =============================================================================
// Validation and confidence branches
// =============================================================================

func TestAnswer_FullConfidenceSuccess(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Theft is punishable under Section 303 of the BNS.",
		verdict: `{"is_valid": true, "confidence": 0.9, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(8)})
	resp := c.Answer(context.Background(), legalRequest("what is the punishment for theft"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Empty(t, resp.ErrorType)
	assert.Equal(t, 0.9, resp.Confidence)
	assert.Len(t, resp.RetrievedSections, 5)
	assert.Equal(t, "Theft is punishable under Section 303 of the BNS.", resp.AnswerEnglish)
	assert.NotContains(t, resp.AnswerEnglish, "NOTE")
}

func TestAnswer_ConfidenceClampedToOne(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": true, "confidence": 1.7, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(2)})
	resp := c.Answer(context.Background(), legalRequest("what is the punishment for theft"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Equal(t, 1.0, resp.Confidence)
}

// TestAnswer_ValidButTimidVerdictIsBoosted verifies a valid verdict
// below 0.3 is lifted to 0.5 and lands on the medium-confidence branch.
func TestAnswer_ValidButTimidVerdictIsBoosted(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": true, "confidence": 0.1, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(2)})
	resp := c.Answer(context.Background(), legalRequest("what is the punishment for theft"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Equal(t, datatypes.ErrTypeMediumConfidence, resp.ErrorType)
	assert.Equal(t, 0.5, resp.Confidence)
	assert.Contains(t, resp.AnswerEnglish, "NOTE")
}

func TestAnswer_MediumConfidenceCarriesDisclaimerAndFloor(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": true, "confidence": 0.6, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(2)})
	resp := c.Answer(context.Background(), legalRequest("what is the punishment for theft"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Equal(t, datatypes.ErrTypeMediumConfidence, resp.ErrorType)
	assert.Equal(t, 0.6, resp.Confidence)
	assert.Contains(t, resp.AnswerEnglish, "Consult a licensed lawyer")
}

// TestAnswer_HighRiskRefusesRegardlessOfConfidence verifies the risk
// branch wins even over a high-confidence valid verdict.
func TestAnswer_HighRiskRefusesRegardlessOfConfidence(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": true, "confidence": 0.95, "high_risk": true}`,
	}, &mockRetriever{sections: nSections(2)})
	resp := c.Answer(context.Background(), legalRequest("what happens if someone is hurt"))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeHighRiskRefusal, resp.ErrorType)
	assert.True(t, resp.HighRisk)
	assert.Equal(t, 0.95, resp.Confidence)
	assert.Empty(t, resp.RetrievedSections)
}

func TestAnswer_InvalidLowConfidenceRefuses(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": false, "confidence": 0.2, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(2)})
	resp := c.Answer(context.Background(), legalRequest("explain this obscure provision"))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeValidationRefusal, resp.ErrorType)
	assert.False(t, resp.HighRisk)
}

// TestAnswer_ProceduralOverrideBypassesValidationRefusal verifies the
// keyword escape hatch: a procedural query answers despite a failed
// grounding verdict, landing on the medium-confidence branch.
func TestAnswer_ProceduralOverrideBypassesValidationRefusal(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": false, "confidence": 0.2, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(2)})
	resp := c.Answer(context.Background(), legalRequest("how do I file an FIR for a stolen phone"))

	assert.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Equal(t, datatypes.ErrTypeMediumConfidence, resp.ErrorType)
	assert.Equal(t, 0.5, resp.Confidence)
}

// TestAnswer_ValidatorDownRefusesConservatively verifies a missing
// validator verdict is treated as invalid/zero-confidence: refusal,
// unless overrides fire.
func TestAnswer_ValidatorDownRefusesConservatively(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: "not json at all",
	}, &mockRetriever{sections: nSections(2)})
	resp := c.Answer(context.Background(), legalRequest("explain this obscure provision"))

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, datatypes.ErrTypeValidationRefusal, resp.ErrorType)
}

// =============================================================================
// Language handling
// =============================================================================

func TestAnswer_LocalizesPrimaryKeepsEnglish(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": true, "confidence": 0.9, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(1)})

	req := &datatypes.QueryRequest{QueryText: "chori ki saza kya hai", UserLanguage: "hindi"}
	req.EnsureDefaults()
	resp := c.Answer(context.Background(), req)

	require.Equal(t, datatypes.StatusAnswer, resp.Status)
	assert.Equal(t, "hi", resp.DetectedLanguage)
	assert.Equal(t, "[hi] Answer text.", resp.AnswerPrimary)
	assert.Equal(t, "Answer text.", resp.AnswerEnglish)
}

func TestAnswer_InlineDirectiveOverridesProfileLanguage(t *testing.T) {
	c := newTestComposer(&stageLLM{
		intent:  "LEGAL",
		draft:   "Answer text.",
		verdict: `{"is_valid": true, "confidence": 0.9, "high_risk": false}`,
	}, &mockRetriever{sections: nSections(1)})

	req := &datatypes.QueryRequest{QueryText: "what is the punishment for theft in Tamil", UserLanguage: "en"}
	req.EnsureDefaults()
	resp := c.Answer(context.Background(), req)

	assert.Equal(t, "ta", resp.DetectedLanguage)
	assert.True(t, strings.HasPrefix(resp.AnswerPrimary, "[ta] "))
}

func TestAnswer_RefusalsAreLocalizedToo(t *testing.T) {
	c := newTestComposer(&stageLLM{intent: "OFF_TOPIC"}, &mockRetriever{})

	req := &datatypes.QueryRequest{QueryText: "tell me a joke", UserLanguage: "kannada"}
	req.EnsureDefaults()
	resp := c.Answer(context.Background(), req)

	assert.Equal(t, datatypes.StatusRefusal, resp.Status)
	assert.Equal(t, "kn", resp.DetectedLanguage)
	assert.True(t, strings.HasPrefix(resp.AnswerPrimary, "[kn] "))
	assert.False(t, strings.HasPrefix(resp.AnswerEnglish, "[kn]"))
}
