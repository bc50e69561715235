package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Dacchu2004/lawGuide/datatypes"
)

// Reranker reorders candidates by cross-encoder relevance and truncates
// to topK. On scoring failure it degrades to the original order, never
// raising: the shortlist the vector search produced is still usable.
type Reranker interface {
	Rerank(ctx context.Context, query string, sections []datatypes.RetrievedSection, topK int) []datatypes.ScoredSection
}

// HTTPReranker calls the cross-encoder sidecar's /rerank endpoint.
type HTTPReranker struct {
	url    string
	client *http.Client
}

func NewHTTPReranker(serviceURL string) *HTTPReranker {
	return &HTTPReranker{
		url:    strings.TrimSuffix(serviceURL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Rerank implements Reranker.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, sections []datatypes.RetrievedSection, topK int) []datatypes.ScoredSection {
	ctx, span := tracer.Start(ctx, "HTTPReranker.Rerank")
	defer span.End()
	span.SetAttributes(
		attribute.Int("rerank.candidates", len(sections)),
		attribute.Int("rerank.top_k", topK),
	)

	if len(sections) == 0 {
		return nil
	}

	scores, err := r.score(ctx, query, sections)
	if err != nil {
		slog.Warn("Reranking failed, keeping retrieval order", "error", err)
		span.AddEvent("rerank_degraded")
		return Truncate(PassthroughScores(sections), topK)
	}
	return Truncate(ApplyScores(sections, scores), topK)
}

func (r *HTTPReranker) score(ctx context.Context, query string, sections []datatypes.RetrievedSection) ([]float64, error) {
	docs := make([]string, 0, len(sections))
	for _, s := range sections {
		docs = append(docs, s.Text)
	}
	payload, err := json.Marshal(rerankRequest{Query: query, Documents: docs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/rerank", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reranker service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rerank response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reranker service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed rerankResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rerank response: %w", err)
	}
	if len(parsed.Scores) != len(sections) {
		return nil, fmt.Errorf("reranker returned %d scores for %d documents", len(parsed.Scores), len(sections))
	}
	return parsed.Scores, nil
}

// ApplyScores attaches scores and sorts descending. The sort is stable:
// ties keep the original retrieval order.
func ApplyScores(sections []datatypes.RetrievedSection, scores []float64) []datatypes.ScoredSection {
	scored := make([]datatypes.ScoredSection, 0, len(sections))
	for i, s := range sections {
		scored = append(scored, datatypes.ScoredSection{RetrievedSection: s, Score: scores[i]})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// PassthroughScores wraps sections in retrieval order with zero scores,
// used when the cross encoder is unavailable.
func PassthroughScores(sections []datatypes.RetrievedSection) []datatypes.ScoredSection {
	scored := make([]datatypes.ScoredSection, 0, len(sections))
	for _, s := range sections {
		scored = append(scored, datatypes.ScoredSection{RetrievedSection: s})
	}
	return scored
}

// Truncate bounds the list to topK. topK <= 0 means no truncation.
func Truncate(scored []datatypes.ScoredSection, topK int) []datatypes.ScoredSection {
	if topK > 0 && len(scored) > topK {
		return scored[:topK]
	}
	return scored
}
