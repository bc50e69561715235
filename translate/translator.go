// Package translate is the best-effort machine translation collaborator.
//
// Every call degrades to passthrough: on any failure (network, quota,
// unsupported language) the original trimmed text comes back unchanged,
// so downstream stages must tolerate untranslated text. No error is ever
// surfaced to the pipeline.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/textsplitter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("lawguide.translate")

// chunkSize bounds one translation request. The upstream service
// handles ~5000 chars reliably; stay under it.
const chunkSize = 4000

// Translator converts text between English and the user's language.
type Translator interface {
	// ToEnglish normalizes text into English. English input (code or
	// name, case-insensitive) is returned trimmed and untouched.
	ToEnglish(ctx context.Context, text, sourceLang string) string
	// FromEnglish localizes English text into the target language.
	FromEnglish(ctx context.Context, text, targetLang string) string
}

// HTTPTranslator calls a LibreTranslate-compatible /translate endpoint.
type HTTPTranslator struct {
	baseURL  string
	client   *http.Client
	splitter textsplitter.RecursiveCharacter
}

func NewHTTPTranslator(baseURL string) *HTTPTranslator {
	return &HTTPTranslator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(0),
		),
	}
}

func isEnglish(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en", "english":
		return true
	}
	return false
}

// ToEnglish implements Translator. Source is auto-detected so that
// mixed-script queries still translate.
func (t *HTTPTranslator) ToEnglish(ctx context.Context, text, sourceLang string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || isEnglish(sourceLang) {
		return trimmed
	}
	out, err := t.translate(ctx, trimmed, "auto", "en")
	if err != nil || out == "" {
		slog.Warn("Translation to English failed, passing text through", "error", err)
		return trimmed
	}
	return out
}

// FromEnglish implements Translator. Long texts are split into chunks
// before translation and re-joined.
func (t *HTTPTranslator) FromEnglish(ctx context.Context, text, targetLang string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || isEnglish(targetLang) {
		return trimmed
	}

	chunks := []string{trimmed}
	if len(trimmed) > chunkSize {
		split, err := t.splitter.SplitText(trimmed)
		if err != nil || len(split) == 0 {
			slog.Warn("Failed to chunk text for translation, sending as one request", "error", err)
		} else {
			chunks = split
		}
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out, err := t.translate(ctx, chunk, "en", strings.ToLower(targetLang))
		if err != nil || out == "" {
			// Keep the English response instead of breaking.
			slog.Warn("Localization failed, keeping English text", "target", targetLang, "error", err)
			return trimmed
		}
		parts = append(parts, out)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (t *HTTPTranslator) translate(ctx context.Context, text, source, target string) (string, error) {
	ctx, span := tracer.Start(ctx, "HTTPTranslator.translate")
	defer span.End()
	span.SetAttributes(
		attribute.String("translate.source", source),
		attribute.String("translate.target", target),
		attribute.Int("translate.chars", len(text)),
	)

	payload, err := json.Marshal(translateRequest{Q: text, Source: source, Target: target, Format: "text"})
	if err != nil {
		return "", fmt.Errorf("failed to marshal translate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/translate", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create translate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read translate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse translate response: %w", err)
	}
	return strings.TrimSpace(parsed.TranslatedText), nil
}
