// Package pipeline implements the query-resolution state machine: the
// decision logic that turns a raw user query into either a safe
// refusal or a validated, confidence-scored answer.
//
// One pipeline run is a strictly sequential chain of best-effort calls
// to external collaborators (classification → retrieval → reranking →
// generation → validation → translation). Every collaborator failure is
// caught at its call site and converted into the component's documented
// degraded value; the composer never sees a transport error. Runs share
// no mutable state, so re-running with the same input is safe.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Dacchu2004/lawGuide/datatypes"
	"github.com/Dacchu2004/lawGuide/language"
	"github.com/Dacchu2004/lawGuide/llm"
	"github.com/Dacchu2004/lawGuide/observability"
	"github.com/Dacchu2004/lawGuide/retrieval"
	"github.com/Dacchu2004/lawGuide/translate"
)

var tracer = otel.Tracer("lawguide.pipeline")

// answerContextSections caps the reranked context handed to the
// generator, bounding outbound prompt size.
const answerContextSections = 5

// lowConfidenceCutoff is the refusal threshold on the grounding branch.
const lowConfidenceCutoff = 0.4

// cautiousBoost lifts valid-but-timid verdicts: cautious-but-correct
// answers should not read as near-zero confidence.
const cautiousBoost = 0.5

// Settings are the tunable knobs of the decision policy.
type Settings struct {
	// ConfidenceThreshold separates full-confidence answers from
	// disclaimer-carrying medium-confidence answers.
	ConfidenceThreshold float64
	// RetrieveTopK is the candidate shortlist size requested from the
	// vector search backend.
	RetrieveTopK int
}

func DefaultSettings() Settings {
	return Settings{ConfidenceThreshold: 0.75, RetrieveTopK: 10}
}

// Composer sequences the pipeline components and applies the
// confidence/risk policy. All dependencies are injected; Composer
// itself is stateless and safe for concurrent use.
type Composer struct {
	classifier *IntentClassifier
	generator  *AnswerGenerator
	validator  *AnswerValidator
	translator translate.Translator
	retriever  retrieval.SectionRetriever
	reranker   retrieval.Reranker
	overrides  *OverridePolicy
	metrics    *observability.PipelineMetrics
	settings   Settings
}

func NewComposer(
	llmClient llm.Client,
	translator translate.Translator,
	retriever retrieval.SectionRetriever,
	reranker retrieval.Reranker,
	overrides *OverridePolicy,
	metrics *observability.PipelineMetrics,
	settings Settings,
) *Composer {
	if overrides == nil {
		overrides = DefaultOverridePolicy()
	}
	if settings.ConfidenceThreshold <= 0 || settings.ConfidenceThreshold > 1 {
		settings.ConfidenceThreshold = DefaultSettings().ConfidenceThreshold
	}
	if settings.RetrieveTopK <= 0 {
		settings.RetrieveTopK = DefaultSettings().RetrieveTopK
	}
	return &Composer{
		classifier: NewIntentClassifier(llmClient),
		generator:  NewAnswerGenerator(llmClient),
		validator:  NewAnswerValidator(llmClient),
		translator: translator,
		retriever:  retriever,
		reranker:   reranker,
		overrides:  overrides,
		metrics:    metrics,
		settings:   settings,
	}
}

// Answer runs the full pipeline for one query. It never returns an
// error: every failure mode terminates in a structured refusal.
func (c *Composer) Answer(ctx context.Context, req *datatypes.QueryRequest) *datatypes.QueryResponse {
	ctx, span := tracer.Start(ctx, "Composer.Answer")
	defer span.End()

	rawQuery := strings.TrimSpace(req.QueryText)
	lang := language.Detect(rawQuery, req.UserLanguage)
	span.SetAttributes(
		attribute.String("query.language", lang),
		attribute.String("query.state", req.UserState),
		attribute.String("query.mode", req.ExplanationMode),
	)

	if rawQuery == "" {
		return c.refuse(ctx, lang, msgTranslationFailure, datatypes.ErrTypeTranslationFailure, 0.0, false)
	}

	// Stage 1: classify intent and branch.
	intent := c.timedClassify(ctx, rawQuery)
	span.SetAttributes(attribute.String("query.intent", string(intent)))
	switch intent {
	case IntentGeneral:
		return c.generalReply(ctx, rawQuery, lang, req.Conversation)
	case IntentOffTopic:
		return c.refuse(ctx, lang, msgOffTopic, datatypes.ErrTypeOffTopic, 1.0, false)
	case IntentIllegal:
		return c.refuse(ctx, lang, msgIllegal, datatypes.ErrTypeIllegalRefusal, 1.0, true)
	}

	// Stage 2: normalize into English for grounded reasoning.
	// Translation is best-effort; an empty result falls back to the
	// original text rather than refusing.
	normalized := c.translator.ToEnglish(ctx, rawQuery, lang)
	if normalized == "" {
		normalized = rawQuery
	}
	if strings.TrimSpace(normalized) == "" {
		return c.refuse(ctx, lang, msgTranslationFailure, datatypes.ErrTypeTranslationFailure, 0.0, false)
	}

	// Stage 3: retrieve candidate sections. Empty is a valid outcome
	// of the backend but a refusal trigger here: no grounding exists.
	retrieved, err := c.timedRetrieve(ctx, normalized, req.UserState)
	if err != nil {
		slog.Error("Retrieval backend failed", "error", err)
		retrieved = nil
	}
	if len(retrieved) == 0 {
		return c.refuse(ctx, lang, msgRetrievalFailure, datatypes.ErrTypeRetrievalFailure, 0.0, false)
	}

	// Stage 4: rerank and generate the draft over the top sections.
	reranked := c.timedRerank(ctx, normalized, retrieved)
	answerContext := retrieval.Truncate(reranked, answerContextSections)

	draft := c.timedGenerate(ctx, normalized, answerContext, req.ExplanationMode, req.UserState)
	if !draft.OK() {
		c.metrics.ObserveFailure("llm", failureMode(draft))
		// Sections found but no explanation: answer anyway with the
		// full reranked list as grounding.
		return c.finish(ctx, &datatypes.QueryResponse{
			Status:            datatypes.StatusAnswer,
			AnswerEnglish:     msgLLMUnavailable,
			Confidence:        0.4,
			DetectedLanguage:  lang,
			RetrievedSections: datatypes.Sections(reranked),
			ErrorType:         datatypes.ErrTypeLLMUnavailable,
		}, msgLLMUnavailable)
	}

	// Stage 5: validate the draft and clamp confidence.
	verdict := c.timedValidate(ctx, draft.Text, answerContext, normalized)
	confidence := clamp01(verdict.Confidence)
	if verdict.IsValid && confidence < 0.3 {
		confidence = cautiousBoost
	}
	span.SetAttributes(
		attribute.Bool("verdict.is_valid", verdict.IsValid),
		attribute.Bool("verdict.high_risk", verdict.HighRisk),
		attribute.Float64("verdict.confidence", confidence),
	)

	// Stage 6: risk branch. High risk refuses unconditionally,
	// regardless of confidence, and surfaces no sections.
	if verdict.HighRisk {
		return c.refuse(ctx, lang, msgHighRisk, datatypes.ErrTypeHighRiskRefusal, confidence, true)
	}

	// Stage 7: grounding branch, subject to the heuristic overrides.
	if !verdict.IsValid && confidence < lowConfidenceCutoff {
		if fired := c.overrides.Matches(rawQuery); len(fired) > 0 {
			slog.Info("Validator overridden by intent heuristics", "markers", fired, "confidence", confidence)
		} else {
			return c.refuse(ctx, lang, msgValidationRefusal, datatypes.ErrTypeValidationRefusal, confidence, false)
		}
	}

	// Stage 8: confidence branch. Below threshold answers carry a
	// fixed disclaimer and a floored confidence.
	if confidence < c.settings.ConfidenceThreshold {
		enriched := draft.Text + mediumConfidenceDisclaimer
		return c.finish(ctx, &datatypes.QueryResponse{
			Status:            datatypes.StatusAnswer,
			AnswerEnglish:     enriched,
			Confidence:        maxFloat(confidence, 0.5),
			DetectedLanguage:  lang,
			RetrievedSections: datatypes.Sections(answerContext),
			ErrorType:         datatypes.ErrTypeMediumConfidence,
		}, enriched)
	}

	// Stage 9: success.
	return c.finish(ctx, &datatypes.QueryResponse{
		Status:            datatypes.StatusAnswer,
		AnswerEnglish:     draft.Text,
		Confidence:        confidence,
		DetectedLanguage:  lang,
		RetrievedSections: datatypes.Sections(answerContext),
	}, draft.Text)
}

// generalReply answers small talk at full confidence with no sections.
func (c *Composer) generalReply(ctx context.Context, query, lang string, history []datatypes.ConversationTurn) *datatypes.QueryResponse {
	reply := c.generator.ChatGeneral(ctx, query, history)
	text := msgGeneralFallback
	if reply.OK() {
		text = reply.Text
	} else {
		c.metrics.ObserveFailure("llm", failureMode(reply))
	}
	return c.finish(ctx, &datatypes.QueryResponse{
		Status:            datatypes.StatusAnswer,
		AnswerEnglish:     text,
		Confidence:        1.0,
		DetectedLanguage:  lang,
		RetrievedSections: []datatypes.RetrievedSection{},
	}, text)
}

// refuse assembles a localized refusal. Refusals never surface
// retrieved sections.
func (c *Composer) refuse(ctx context.Context, lang, englishMsg, errType string, confidence float64, highRisk bool) *datatypes.QueryResponse {
	return c.finish(ctx, &datatypes.QueryResponse{
		Status:            datatypes.StatusRefusal,
		AnswerEnglish:     englishMsg,
		Confidence:        clamp01(confidence),
		DetectedLanguage:  lang,
		RetrievedSections: []datatypes.RetrievedSection{},
		ErrorType:         errType,
		HighRisk:          highRisk,
	}, englishMsg)
}

// finish localizes the outgoing text and records the outcome. Every
// message type is localized when the working language is not English;
// answer_english always retains the English form.
func (c *Composer) finish(ctx context.Context, resp *datatypes.QueryResponse, englishText string) *datatypes.QueryResponse {
	start := time.Now()
	resp.AnswerPrimary = c.translator.FromEnglish(ctx, englishText, resp.DetectedLanguage)
	c.metrics.ObserveStage("localize", time.Since(start).Seconds())
	if resp.AnswerPrimary == "" {
		resp.AnswerPrimary = englishText
	}
	c.metrics.ObserveRun(resp.Status, resp.ErrorType, resp.Confidence)
	return resp
}

func (c *Composer) timedClassify(ctx context.Context, query string) Intent {
	start := time.Now()
	defer func() { c.metrics.ObserveStage("classify", time.Since(start).Seconds()) }()
	return c.classifier.Classify(ctx, query)
}

func (c *Composer) timedRetrieve(ctx context.Context, query, state string) ([]datatypes.RetrievedSection, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveStage("retrieve", time.Since(start).Seconds()) }()
	return c.retriever.Search(ctx, query, state, c.settings.RetrieveTopK)
}

func (c *Composer) timedRerank(ctx context.Context, query string, sections []datatypes.RetrievedSection) []datatypes.ScoredSection {
	start := time.Now()
	defer func() { c.metrics.ObserveStage("rerank", time.Since(start).Seconds()) }()
	return c.reranker.Rerank(ctx, query, sections, c.settings.RetrieveTopK)
}

func (c *Composer) timedGenerate(ctx context.Context, query string, sections []datatypes.ScoredSection, mode, state string) llm.Outcome {
	start := time.Now()
	defer func() { c.metrics.ObserveStage("generate", time.Since(start).Seconds()) }()
	return c.generator.Generate(ctx, query, sections, mode, state, "en")
}

func (c *Composer) timedValidate(ctx context.Context, answer string, sections []datatypes.ScoredSection, query string) ValidationResult {
	start := time.Now()
	defer func() { c.metrics.ObserveStage("validate", time.Since(start).Seconds()) }()
	return c.validator.Validate(ctx, answer, sections, query)
}

func failureMode(o llm.Outcome) string {
	if o.State == llm.StateMalformed {
		return "malformed"
	}
	return "unavailable"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
